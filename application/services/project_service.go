package services

import (
	"context"

	"go.uber.org/zap"

	"concepter-backend/domain/core/entities"
	"concepter-backend/domain/serialization"
	appErrors "concepter-backend/pkg/errors"
)

// Project operations on GraphService: whole-graph persistence through
// the project repository port. Loading is two-pass - decode every
// record, register, then resolve pending edges against the loaded set.

// repo guards project calls against a missing repository; that is a
// setup error and propagates as fatal rather than being absorbed
func (s *GraphService) repo() error {
	if s.projects == nil {
		return appErrors.NewUnconfiguredError("project repository")
	}
	return nil
}

// ListProjects names every stored project
func (s *GraphService) ListProjects(ctx context.Context) ([]string, error) {
	if err := s.repo(); err != nil {
		return nil, err
	}
	return s.projects.ListProjects(ctx)
}

// LoadProject replaces the in-memory graph with a stored project
func (s *GraphService) LoadProject(ctx context.Context, name string) (int, error) {
	if err := s.repo(); err != nil {
		return 0, err
	}
	records, stateVars, err := s.projects.LoadProject(ctx, name)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	nodes := make([]*entities.Node, 0, len(records))
	for _, rec := range records {
		n, err := serialization.Decode(rec, s.registry)
		if err != nil {
			s.logger.Warn("skipping undecodable node record",
				zap.String("project", name),
				zap.String("recordID", rec.ID),
				zap.Error(err),
			)
			continue
		}
		nodes = append(nodes, n)
	}

	s.store.Replace(nodes)
	serialization.ResolvePendingEdges(s.store, nodes)
	if stateVars == nil {
		stateVars = make(map[string]interface{})
	}
	s.stateVars = stateVars

	s.logger.Info("loaded project",
		zap.String("project", name),
		zap.Int("nodes", len(nodes)),
	)
	return len(nodes), nil
}

// ImportProject extends the current graph with a stored project's
// nodes, then deduplicates colliding ids
func (s *GraphService) ImportProject(ctx context.Context, name string) (int, error) {
	if err := s.repo(); err != nil {
		return 0, err
	}
	records, _, err := s.projects.LoadProject(ctx, name)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	imported := make([]*entities.Node, 0, len(records))
	for _, rec := range records {
		n, err := serialization.Decode(rec, s.registry)
		if err != nil {
			s.logger.Warn("skipping undecodable node record",
				zap.String("project", name),
				zap.String("recordID", rec.ID),
				zap.Error(err),
			)
			continue
		}
		imported = append(imported, n)
	}

	s.store.Append(imported)
	serialization.ResolvePendingEdges(s.store, s.store.All())
	removed := s.store.Deduplicate(s.cfg.DedupKeepLast)

	s.logger.Info("imported project",
		zap.String("project", name),
		zap.Int("nodes", len(imported)),
		zap.Int("deduplicated", removed),
	)
	return len(imported), nil
}

// SaveProject persists every reachable node under the project name
func (s *GraphService) SaveProject(ctx context.Context, name string) error {
	if err := s.repo(); err != nil {
		return err
	}

	s.mu.Lock()
	nodes := s.store.AllReachable()
	records := make([]serialization.NodeRecord, 0, len(nodes))
	for _, n := range nodes {
		records = append(records, serialization.Encode(n))
	}
	stateVars := s.stateVars
	s.mu.Unlock()

	if err := s.projects.SaveProject(ctx, name, records, stateVars); err != nil {
		return err
	}
	s.logger.Info("saved project",
		zap.String("project", name),
		zap.Int("nodes", len(records)),
	)
	return nil
}

// DeleteProject removes a stored project; the in-memory graph is untouched
func (s *GraphService) DeleteProject(ctx context.Context, name string) error {
	if err := s.repo(); err != nil {
		return err
	}
	return s.projects.DeleteProject(ctx, name)
}

// ExportNodes encodes the named nodes, stripping edges pointing outside
// the exported set so the result is self-contained
func (s *GraphService) ExportNodes(ids []string) ([]serialization.NodeRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	included := make(map[string]bool, len(ids))
	nodes := make([]*entities.Node, 0, len(ids))
	for _, id := range ids {
		n, err := s.getNode(id)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
		included[n.ID().String()] = true
	}

	records := make([]serialization.NodeRecord, 0, len(nodes))
	for _, n := range nodes {
		rec := serialization.Encode(n)
		kept := rec.Edges[:0]
		for _, e := range rec.Edges {
			if included[e.ToID] {
				kept = append(kept, e)
			}
		}
		rec.Edges = kept
		records = append(records, rec)
	}
	return records, nil
}

// StateVariable reads one project-scoped variable
func (s *GraphService) StateVariable(key string) (interface{}, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.stateVars[key]
	return v, ok
}

// SetStateVariable writes one project-scoped variable
func (s *GraphService) SetStateVariable(key string, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stateVars[key] = value
}
