package services

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"concepter-backend/application/ports"
	"concepter-backend/domain/config"
	"concepter-backend/domain/core/aggregates"
	"concepter-backend/domain/core/entities"
	"concepter-backend/domain/core/valueobjects"
	"concepter-backend/domain/kinds"
	"concepter-backend/domain/states"
	appErrors "concepter-backend/pkg/errors"
)

// GraphService is the serialized-access boundary around one graph: a
// single mutex guards the store, every node's edges and the snapshot
// maps, so traversal never interleaves with mutation. All callers go
// through this service; domain types below it assume single-threaded
// use.
type GraphService struct {
	mu        sync.Mutex
	store     *aggregates.NodeStore
	states    *states.Manager
	registry  *kinds.Registry
	cfg       *config.DomainConfig
	projects  ports.ProjectRepository
	stateVars map[string]interface{}
	logger    *zap.Logger
}

// NewGraphService wires a service around a store. The project
// repository may be nil; project operations then fail as unconfigured.
func NewGraphService(
	store *aggregates.NodeStore,
	registry *kinds.Registry,
	projects ports.ProjectRepository,
	logger *zap.Logger,
) *GraphService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GraphService{
		store:     store,
		states:    states.NewManager(store, logger),
		registry:  registry,
		cfg:       store.Config(),
		projects:  projects,
		stateVars: make(map[string]interface{}),
		logger:    logger,
	}
}

// getNode resolves an id under the held lock, mapping the store's nil
// sentinel to a not-found error for API consumption
func (s *GraphService) getNode(id string) (*entities.Node, error) {
	n := s.store.GetByID(id)
	if n == nil {
		return nil, appErrors.NewNotFoundError("node " + id)
	}
	return n, nil
}

// CreateNode registers a new node of the given kind. An empty kind
// falls back to the default, an empty name to the default name.
func (s *GraphService) CreateNode(kind, name string) *entities.Node {
	s.mu.Lock()
	defer s.mu.Unlock()

	if kind == "" {
		kind = s.cfg.DefaultNodeKind
	}
	n := s.registry.New(kind)
	if name != "" {
		n.SetName(name)
	}
	s.store.Register(n)

	s.logger.Info("created node",
		zap.String("nodeID", n.ID().String()),
		zap.String("kind", n.Kind()),
		zap.String("name", n.Name()),
	)
	return n
}

// GetNode returns a node by id
func (s *GraphService) GetNode(id string) (*entities.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getNode(id)
}

// FindByName returns the first node whose name matches case-insensitively
func (s *GraphService) FindByName(name string) (*entities.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.store.GetByName(name)
	if n == nil {
		return nil, appErrors.NewNotFoundError("node named " + name)
	}
	return n, nil
}

// ListNodes returns the registered nodes in registration order
func (s *GraphService) ListNodes() []*entities.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.All()
}

// UpdateAttribute sets one attribute. Scheduling fields on project-like
// kinds go through the consistency rules; a malformed value is logged
// and leaves the node untouched.
func (s *GraphService) UpdateAttribute(id, key string, value interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.getNode(id)
	if err != nil {
		return err
	}

	if raw, isString := value.(string); isString && isSchedulingField(n, key) {
		if err := kinds.UpdateProjectField(n, key, raw); err != nil {
			s.logger.Warn("attribute update rejected",
				zap.String("nodeID", id),
				zap.String("field", key),
				zap.Error(err),
			)
			return err
		}
		return nil
	}

	n.Set(key, value)
	return nil
}

func isSchedulingField(n *entities.Node, key string) bool {
	switch n.Kind() {
	case kinds.KindProject, kinds.KindBudget, kinds.KindMonthlyBudget:
		return key == "StartDate" || key == "EndDate" || key == "TimeRequired"
	}
	return false
}

// DeleteNode unregisters a node and strips it from every edge list
func (s *GraphService) DeleteNode(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.getNode(id)
	if err != nil {
		return err
	}
	s.store.Delete(n)
	return nil
}

// CloneNode duplicates a node. A shallow clone copies attributes only;
// a deep clone copies the whole subtree, with the cloned descendants
// anchored only under the new parent.
func (s *GraphService) CloneNode(id string, deep bool) (*entities.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.getNode(id)
	if err != nil {
		return nil, err
	}

	var clone *entities.Node
	if deep {
		clone = n.CloneDeep(s.cfg.CloneNameSuffix)
	} else {
		clone = n.CloneShallow(s.cfg.CloneNameSuffix)
	}
	s.store.Register(clone)
	return clone, nil
}

// AddEdge links child under parent at the given position. An edge that
// closes a cycle is still inserted; the model tolerates cycles and
// traversal is depth-bounded everywhere.
func (s *GraphService) AddEdge(parentID, childID string, position valueobjects.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	parent, err := s.getNode(parentID)
	if err != nil {
		return err
	}
	child, err := s.getNode(childID)
	if err != nil {
		return err
	}

	if cycleClosed := parent.AddEdge(child, position); cycleClosed {
		s.logger.Warn("edge closes a cycle",
			zap.String("parentID", parentID),
			zap.String("childID", childID),
		)
	}
	return nil
}

// RemoveEdge unlinks child from parent; removing an absent edge is a no-op
func (s *GraphService) RemoveEdge(parentID, childID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	parent, err := s.getNode(parentID)
	if err != nil {
		return err
	}
	parent.RemoveEdgeByID(childID)
	return nil
}

// SetEdgePosition updates the position on an existing edge, adding the
// edge when absent
func (s *GraphService) SetEdgePosition(parentID, childID string, position valueobjects.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	parent, err := s.getNode(parentID)
	if err != nil {
		return err
	}
	child, err := s.getNode(childID)
	if err != nil {
		return err
	}
	parent.SetPosition(child, position)
	return nil
}

// EdgePosition reads the position on a direct edge between two nodes
func (s *GraphService) EdgePosition(parentID, childID string) (valueobjects.Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	parent, err := s.getNode(parentID)
	if err != nil {
		return valueobjects.Position{}, err
	}
	child, err := s.getNode(childID)
	if err != nil {
		return valueobjects.Position{}, err
	}
	position, ok := parent.PositionOf(child)
	if !ok {
		return valueobjects.Position{}, appErrors.NewNotFoundError("edge " + parentID + " -> " + childID)
	}
	return position, nil
}

// Children returns a node's direct children in edge order
func (s *GraphService) Children(id string) ([]*entities.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.getNode(id)
	if err != nil {
		return nil, err
	}
	return n.Children(), nil
}

// Parents returns every registered node listing id as a direct child
func (s *GraphService) Parents(id string) ([]*entities.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.getNode(id)
	if err != nil {
		return nil, err
	}
	return s.store.ParentsOf(n), nil
}

// IsDescendant reports whether node id sits in ancestorID's subtree
// within the configured depth limit. Deeper descendants report false.
func (s *GraphService) IsDescendant(id, ancestorID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.getNode(id)
	if err != nil {
		return false, err
	}
	ancestor, err := s.getNode(ancestorID)
	if err != nil {
		return false, err
	}
	return n.IsDescendantOf(ancestor, s.cfg.DescendantDepthLimit), nil
}

// AreCloseRelations reports identity, direct parenthood or childhood
func (s *GraphService) AreCloseRelations(aID, bID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.getNode(aID)
	if err != nil {
		return false, err
	}
	b, err := s.getNode(bID)
	if err != nil {
		return false, err
	}
	return s.store.AreCloseRelations(a, b), nil
}

// Deduplicate collapses registry entries sharing an id, returning how
// many were dropped
func (s *GraphService) Deduplicate() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Deduplicate(s.cfg.DedupKeepLast)
}

// RekeyAll assigns fresh ids to every reachable node
func (s *GraphService) RekeyAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.RekeyAll()
}

// MergeNodes folds source into target: edges move over (existing edges
// on target win), attributes fill gaps only, and source is deleted.
func (s *GraphService) MergeNodes(targetID, sourceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if targetID == sourceID {
		return appErrors.NewConflictError("cannot merge a node into itself")
	}
	target, err := s.getNode(targetID)
	if err != nil {
		return err
	}
	source, err := s.getNode(sourceID)
	if err != nil {
		return err
	}

	for _, e := range source.Edges() {
		if e.Child() == target || target.HasDirectChild(e.Child()) {
			continue
		}
		if cycleClosed := target.AddEdge(e.Child(), e.Position().Clone()); cycleClosed {
			s.logger.Warn("merged edge closes a cycle",
				zap.String("targetID", targetID),
				zap.String("childID", e.Child().ID().String()),
			)
		}
	}
	for key, value := range source.Attributes() {
		if key == entities.AttrName {
			continue
		}
		if n := target.GetRaw(key, nil); n == nil {
			target.Set(key, value)
		}
	}
	for _, rel := range source.Relationships() {
		target.AddRelationship(rel)
	}

	s.store.Delete(source)
	s.logger.Info("merged nodes",
		zap.String("targetID", targetID),
		zap.String("sourceID", sourceID),
	)
	return nil
}

// GroupNodes gathers the named nodes under a fresh parent linked by
// "contains" edges. The parent's name concatenates the members' names
// and its description records the group size. Ids that resolve to
// nothing are skipped with a warning.
func (s *GraphService) GroupNodes(ids []string) (*entities.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(ids) == 0 {
		return nil, appErrors.NewValidationError("no nodes to group")
	}

	parent := s.registry.New(s.cfg.DefaultNodeKind)
	name := ""
	grouped := 0
	for _, id := range ids {
		n := s.store.GetByID(id)
		if n == nil {
			s.logger.Warn("skipping unknown node in group", zap.String("nodeID", id))
			continue
		}
		parent.AddEdge(n, valueobjects.PositionFromLabel("contains"))
		if name != "" {
			name += ", "
		}
		name += n.Name()
		grouped++
	}
	if grouped == 0 {
		return nil, appErrors.NewNotFoundError("nodes to group")
	}

	parent.Set(entities.AttrName, name)
	parent.Set("Description", fmt.Sprintf("Brings together %d priorities.", grouped))
	s.store.Register(parent)

	s.logger.Info("grouped nodes",
		zap.String("parentID", parent.ID().String()),
		zap.Int("members", grouped),
	)
	return parent, nil
}
