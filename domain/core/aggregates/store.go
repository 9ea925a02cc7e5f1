package aggregates

import (
	"strings"

	"go.uber.org/zap"

	"concepter-backend/domain/config"
	"concepter-backend/domain/core/entities"
)

// NodeStore is the registry of live nodes for one graph: an ordered
// top-level list plus the structural operations that need visibility
// across the whole collection (parent scans, dedup, rekey, delete).
//
// The store replaces the historical process-global instance list so
// that independent graphs can coexist. It performs no locking itself;
// the application service serializes every operation touching a store
// and its nodes behind a single mutex. Traversal must never interleave
// with mutation of the same graph.
type NodeStore struct {
	nodes  []*entities.Node
	cfg    *config.DomainConfig
	logger *zap.Logger
}

// NewNodeStore creates an empty registry
func NewNodeStore(cfg *config.DomainConfig, logger *zap.Logger) *NodeStore {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NodeStore{cfg: cfg, logger: logger}
}

// Config returns the domain configuration the store was built with
func (s *NodeStore) Config() *config.DomainConfig {
	return s.cfg
}

// Register appends a node to the top-level listing
func (s *NodeStore) Register(n *entities.Node) {
	if n == nil {
		return
	}
	s.nodes = append(s.nodes, n)
	if s.cfg.MaxNodesPerProject > 0 && len(s.nodes) > s.cfg.MaxNodesPerProject {
		s.logger.Warn("registry exceeds configured node limit",
			zap.Int("count", len(s.nodes)),
			zap.Int("limit", s.cfg.MaxNodesPerProject),
		)
	}
}

// Unregister removes a node from the top-level listing without touching
// edges that reference it. Use Delete to also strip references.
func (s *NodeStore) Unregister(n *entities.Node) {
	kept := s.nodes[:0]
	for _, node := range s.nodes {
		if node != n {
			kept = append(kept, node)
		}
	}
	s.nodes = kept
}

// Contains reports whether n is in the top-level listing
func (s *NodeStore) Contains(n *entities.Node) bool {
	for _, node := range s.nodes {
		if node == n {
			return true
		}
	}
	return false
}

// Len returns the number of registered nodes
func (s *NodeStore) Len() int {
	return len(s.nodes)
}

// All returns a copy of the top-level listing in registration order
func (s *NodeStore) All() []*entities.Node {
	nodes := make([]*entities.Node, len(s.nodes))
	copy(nodes, s.nodes)
	return nodes
}

// Replace swaps the entire listing, used when loading a project
func (s *NodeStore) Replace(nodes []*entities.Node) {
	s.nodes = make([]*entities.Node, len(nodes))
	copy(s.nodes, nodes)
}

// Append extends the listing with additional nodes, used by imports
func (s *NodeStore) Append(nodes []*entities.Node) {
	s.nodes = append(s.nodes, nodes...)
}

// GetByID returns the first node whose id matches, comparing normalized
// string forms. A miss returns nil rather than an error: partial graphs
// degrade gracefully and callers skip absent targets.
func (s *NodeStore) GetByID(id string) *entities.Node {
	for _, node := range s.nodes {
		if node.ID().EqualsString(id) {
			return node
		}
	}
	return nil
}

// GetByName returns the first node whose name contains the given string
// case-insensitively, or nil
func (s *NodeStore) GetByName(name string) *entities.Node {
	needle := strings.ToLower(name)
	for _, node := range s.nodes {
		if strings.Contains(strings.ToLower(node.Name()), needle) {
			return node
		}
	}
	return nil
}

// AllReachable returns every node reachable from the top-level listing
// within the configured depth limit, including nodes that are only
// referenced through edges and not registered themselves.
func (s *NodeStore) AllReachable() []*entities.Node {
	return entities.Reachable(s.nodes, s.cfg.ReachableDepthLimit)
}

// ParentsOf returns every registered node listing n as a direct child.
// This is a full reverse scan of the registry, O(nodes x edges).
func (s *NodeStore) ParentsOf(n *entities.Node) []*entities.Node {
	var parents []*entities.Node
	for _, node := range s.nodes {
		if node != n && node.HasDirectChild(n) {
			parents = append(parents, node)
		}
	}
	return parents
}

// AreCloseRelations reports whether a and b are the same node, direct
// parent and child, or direct child and parent.
func (s *NodeStore) AreCloseRelations(a, b *entities.Node) bool {
	if a == b {
		return true
	}
	if a.HasDirectChild(b) || b.HasDirectChild(a) {
		return true
	}
	return false
}

// Deduplicate removes registry entries sharing an id, keeping either
// the first- or last-seen occurrence. Survivors keep their relative
// order. Applying it twice yields the same listing as applying it once.
func (s *NodeStore) Deduplicate(keepLast bool) int {
	seen := make(map[string]bool, len(s.nodes))
	unique := make([]*entities.Node, 0, len(s.nodes))

	scan := s.nodes
	if keepLast {
		scan = make([]*entities.Node, len(s.nodes))
		for i, node := range s.nodes {
			scan[len(s.nodes)-1-i] = node
		}
	}

	for _, node := range scan {
		id := node.ID().String()
		if !seen[id] {
			seen[id] = true
			unique = append(unique, node)
		}
	}

	// A reversed scan built the survivor list backwards
	if keepLast {
		for i, j := 0, len(unique)-1; i < j; i, j = i+1, j-1 {
			unique[i], unique[j] = unique[j], unique[i]
		}
	}

	removed := len(s.nodes) - len(unique)
	s.nodes = unique

	s.logger.Info("deduplication complete",
		zap.Bool("keepLast", keepLast),
		zap.Int("removed", removed),
		zap.Int("remaining", len(s.nodes)),
	)
	return removed
}

// RekeyAll assigns a fresh unique id to every reachable node, including
// nodes referenced only through edges. Collisions should be impossible
// by construction but are still checked and logged, never raised.
func (s *NodeStore) RekeyAll() {
	reachable := s.AllReachable()
	for _, node := range reachable {
		node.AssignNewID()
	}

	seen := make(map[string]bool, len(reachable))
	for _, node := range reachable {
		id := node.ID().String()
		if seen[id] {
			s.logger.Warn("duplicate id remains after rekeying", zap.String("nodeID", id))
		}
		seen[id] = true
	}

	s.logger.Info("rekeyed all reachable nodes", zap.Int("count", len(reachable)))
}

// Delete unregisters n and strips every edge to it from the remaining
// registered nodes. Relationship entries naming n are left in place;
// they are id-based and resolve to nothing once n is gone.
func (s *NodeStore) Delete(n *entities.Node) {
	s.Unregister(n)
	for _, node := range s.nodes {
		node.RemoveEdge(n)
	}
	s.logger.Debug("deleted node", zap.String("nodeID", n.ID().String()), zap.String("name", n.Name()))
}
