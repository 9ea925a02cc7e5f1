// Package memory provides an in-process ProjectRepository used by
// tests and single-binary deployments without a database.
package memory

import (
	"context"
	"sort"
	"sync"

	"concepter-backend/application/ports"
	"concepter-backend/domain/serialization"
	appErrors "concepter-backend/pkg/errors"
)

type storedProject struct {
	records        []serialization.NodeRecord
	stateVariables map[string]interface{}
}

// ProjectRepository keeps whole projects in a map. Contents are copied
// on the way in and out so callers cannot mutate stored state.
type ProjectRepository struct {
	mu       sync.RWMutex
	projects map[string]storedProject
}

// NewProjectRepository creates an empty in-memory repository
func NewProjectRepository() *ProjectRepository {
	return &ProjectRepository{projects: make(map[string]storedProject)}
}

var _ ports.ProjectRepository = (*ProjectRepository)(nil)

// ListProjects returns stored project names sorted for determinism
func (r *ProjectRepository) ListProjects(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.projects))
	for name := range r.projects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// LoadProject returns a copy of a stored project
func (r *ProjectRepository) LoadProject(ctx context.Context, name string) ([]serialization.NodeRecord, map[string]interface{}, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.projects[name]
	if !ok {
		return nil, nil, appErrors.NewNotFoundError("project " + name)
	}
	return copyRecords(stored.records), copyVariables(stored.stateVariables), nil
}

// SaveProject stores a copy of the project, replacing any prior version
func (r *ProjectRepository) SaveProject(ctx context.Context, name string, records []serialization.NodeRecord, stateVariables map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.projects[name] = storedProject{
		records:        copyRecords(records),
		stateVariables: copyVariables(stateVariables),
	}
	return nil
}

// DeleteProject removes a stored project; deleting an absent project is
// a no-op
func (r *ProjectRepository) DeleteProject(ctx context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.projects, name)
	return nil
}

func copyRecords(records []serialization.NodeRecord) []serialization.NodeRecord {
	out := make([]serialization.NodeRecord, len(records))
	copy(out, records)
	return out
}

func copyVariables(vars map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(vars))
	for k, v := range vars {
		out[k] = v
	}
	return out
}
