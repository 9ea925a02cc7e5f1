package entities

import (
	"concepter-backend/domain/config"
	"concepter-backend/domain/core/valueobjects"
)

// AttrName is the reserved attribute key carrying the display name
const AttrName = "Name"

// ValueResolver computes derived attribute values for a node kind.
// Resolve returns (value, true) when it handled the key; otherwise the
// raw attribute value is used. Budget-style kinds aggregate over the
// node's current children here.
type ValueResolver interface {
	Resolve(n *Node, key string) (interface{}, bool)
}

// Node is a graph vertex: an open attribute map plus an ordered list of
// positioned child edges. Hierarchy is expressed through edges only;
// the relationships list holds secondary links that never participate
// in traversal.
type Node struct {
	id            valueobjects.NodeID
	kind          string
	attrs         valueobjects.Attributes
	edges         []Edge
	relationships []Relationship
	pendingEdges  []PendingEdge
	states        map[string][]StateEntry
	activeState   string
	resolver      ValueResolver
}

// Edge is a (child, position) pair forming a containment relation
type Edge struct {
	child    *Node
	position valueobjects.Position
}

// NewEdge creates an edge to child with the given position
func NewEdge(child *Node, position valueobjects.Position) Edge {
	return Edge{child: child, position: position}
}

// Child returns the edge's target node
func (e Edge) Child() *Node {
	return e.child
}

// Position returns the edge's position descriptor
func (e Edge) Position() valueobjects.Position {
	return e.position
}

// Relationship is a secondary, non-hierarchical link between two nodes,
// held by id so it survives serialization independently of the edge list.
type Relationship struct {
	SourceID string                 `json:"source_id"`
	TargetID string                 `json:"target_id"`
	Position valueobjects.Position  `json:"position"`
}

// PendingEdge records an edge whose target id could not be resolved at
// load time. A resolution pass converts these to live edges once the
// full node set is available.
type PendingEdge struct {
	ToID     string
	Position valueobjects.Position
}

// NewNode creates a new node of the given kind with a fresh id.
// Registration with a store is the caller's responsibility.
func NewNode(kind string, resolver ValueResolver) *Node {
	n := &Node{
		id:       valueobjects.NewNodeID(),
		kind:     kind,
		attrs:    valueobjects.NewAttributes(),
		resolver: resolver,
	}
	n.attrs.Set(AttrName, config.DefaultDomainConfig().DefaultNodeName)
	return n
}

// ReconstructNode rebuilds a node from stored data with its persisted id.
// Edges are left empty; the deserializer attaches resolved edges and
// records the rest as pending.
func ReconstructNode(id valueobjects.NodeID, kind string, attrs valueobjects.Attributes, resolver ValueResolver) *Node {
	if attrs == nil {
		attrs = valueobjects.NewAttributes()
	}
	return &Node{
		id:       id,
		kind:     kind,
		attrs:    attrs,
		resolver: resolver,
	}
}

// ID returns the node's unique identifier
func (n *Node) ID() valueobjects.NodeID {
	return n.id
}

// Kind returns the node's type discriminator
func (n *Node) Kind() string {
	return n.kind
}

// AssignNewID replaces the node's id with a fresh one and returns it
func (n *Node) AssignNewID() valueobjects.NodeID {
	n.id = valueobjects.NewNodeID()
	return n.id
}

// SetID overwrites the node's id, used when rehydrating stored nodes
func (n *Node) SetID(id valueobjects.NodeID) {
	n.id = id
}

// Name returns the node's display name
func (n *Node) Name() string {
	return n.attrs.GetString(AttrName)
}

// SetName sets the node's display name
func (n *Node) SetName(name string) {
	n.attrs.Set(AttrName, name)
}

// Get returns the attribute value for key, consulting the node kind's
// resolver first so derived values (budget roll-ups, schedule fields)
// shadow the raw stored value.
func (n *Node) Get(key string, fallback interface{}) interface{} {
	if n.resolver != nil {
		if v, ok := n.resolver.Resolve(n, key); ok {
			return v
		}
	}
	return n.attrs.Get(key, fallback)
}

// GetRaw returns the stored attribute value, bypassing the resolver
func (n *Node) GetRaw(key string, fallback interface{}) interface{} {
	return n.attrs.Get(key, fallback)
}

// Set stores an attribute value
func (n *Node) Set(key string, value interface{}) {
	n.attrs.Set(key, value)
}

// Attributes returns a deep copy of the node's attribute map
func (n *Node) Attributes() valueobjects.Attributes {
	return n.attrs.Clone()
}

// AddEdge appends a positioned edge to child. When child is already an
// ancestor of n the edge closes a cycle; the model tolerates cycles, so
// the edge is inserted anyway and cycleClosed reports the condition for
// the caller to log.
func (n *Node) AddEdge(child *Node, position valueobjects.Position) (cycleClosed bool) {
	cycleClosed = n.IsDescendantOf(child, config.DefaultDomainConfig().DescendantDepthLimit)
	n.edges = append(n.edges, Edge{child: child, position: position})
	return cycleClosed
}

// RemoveEdge removes every edge pointing at child
func (n *Node) RemoveEdge(child *Node) {
	kept := n.edges[:0]
	for _, e := range n.edges {
		if e.child != child {
			kept = append(kept, e)
		}
	}
	n.edges = kept
}

// RemoveEdgeByID removes every edge whose target carries the given id
func (n *Node) RemoveEdgeByID(childID string) {
	kept := n.edges[:0]
	for _, e := range n.edges {
		if e.child == nil || !e.child.ID().EqualsString(childID) {
			kept = append(kept, e)
		}
	}
	n.edges = kept
}

// Edges returns a copy of the node's edge list
func (n *Node) Edges() []Edge {
	edges := make([]Edge, len(n.edges))
	copy(edges, n.edges)
	return edges
}

// SetEdges replaces the node's edge list, used by snapshot restore
func (n *Node) SetEdges(edges []Edge) {
	n.edges = make([]Edge, len(edges))
	copy(n.edges, edges)
}

// Children returns the edge targets in edge order
func (n *Node) Children() []*Node {
	children := make([]*Node, 0, len(n.edges))
	for _, e := range n.edges {
		children = append(children, e.child)
	}
	return children
}

// PositionOf returns the position of the first edge pointing at target
func (n *Node) PositionOf(target *Node) (valueobjects.Position, bool) {
	for _, e := range n.edges {
		if e.child == target {
			return e.position, true
		}
	}
	return valueobjects.Position{}, false
}

// SetPosition upserts the position of the edge to target. When no edge
// to target exists one is appended; updated reports whether an existing
// edge was changed rather than added.
func (n *Node) SetPosition(target *Node, position valueobjects.Position) (updated bool) {
	for i, e := range n.edges {
		if e.child == target {
			n.edges[i].position = position
			return true
		}
	}
	n.edges = append(n.edges, Edge{child: target, position: position})
	return false
}

// IsDescendantOf reports whether n appears in ancestor's subtree within
// depthLimit recursive hops. The walk is bounded by depth only, with no
// visited-set: a true descendant beyond the limit yields false, and on
// cyclic graphs the bound is what terminates the recursion. This
// mirrors the historical behavior and is relied on, not a bug to fix.
func (n *Node) IsDescendantOf(ancestor *Node, depthLimit int) bool {
	return isDescendant(ancestor, n, depthLimit, 0)
}

func isDescendant(root, target *Node, depthLimit, currentDepth int) bool {
	if currentDepth > depthLimit {
		return false
	}
	for _, e := range root.edges {
		if e.child == target {
			return true
		}
		if isDescendant(e.child, target, depthLimit, currentDepth+1) {
			return true
		}
	}
	return false
}

// HasDirectChild reports whether target is a direct child of n
func (n *Node) HasDirectChild(target *Node) bool {
	for _, e := range n.edges {
		if e.child == target {
			return true
		}
	}
	return false
}

// AddRelationship appends a secondary link
func (n *Node) AddRelationship(rel Relationship) {
	n.relationships = append(n.relationships, rel)
}

// Relationships returns a copy of the node's secondary links
func (n *Node) Relationships() []Relationship {
	rels := make([]Relationship, len(n.relationships))
	copy(rels, n.relationships)
	return rels
}

// SetRelationships replaces the relationship list, used by deserialization
func (n *Node) SetRelationships(rels []Relationship) {
	n.relationships = make([]Relationship, len(rels))
	copy(n.relationships, rels)
}

// AddPendingEdge records an edge whose target is not yet loaded
func (n *Node) AddPendingEdge(toID string, position valueobjects.Position) {
	n.pendingEdges = append(n.pendingEdges, PendingEdge{ToID: toID, Position: position})
}

// PendingEdges returns a copy of the unresolved edge records
func (n *Node) PendingEdges() []PendingEdge {
	pending := make([]PendingEdge, len(n.pendingEdges))
	copy(pending, n.pendingEdges)
	return pending
}

// SetPendingEdges replaces the unresolved edge records
func (n *Node) SetPendingEdges(pending []PendingEdge) {
	n.pendingEdges = make([]PendingEdge, len(pending))
	copy(n.pendingEdges, pending)
}

// CloneShallow creates a new node with deep-copied attributes, a fresh
// id, an empty edge list and the clone suffix appended to its name.
// Snapshots belong to the original and are not carried over.
func (n *Node) CloneShallow(suffix string) *Node {
	clone := &Node{
		id:       valueobjects.NewNodeID(),
		kind:     n.kind,
		attrs:    n.attrs.Clone(),
		resolver: n.resolver,
	}
	clone.SetName(n.Name() + suffix)
	return clone
}

// CloneDeep clones the whole subtree rooted at n. Shared descendants
// are cloned once and re-linked, which also terminates the walk on
// cyclic graphs. Only the returned root should be registered with a
// store: cloned descendants stay anchored under their new parent.
func (n *Node) CloneDeep(suffix string) *Node {
	return cloneDeep(n, suffix, make(map[*Node]*Node))
}

func cloneDeep(n *Node, suffix string, cloned map[*Node]*Node) *Node {
	if existing, ok := cloned[n]; ok {
		return existing
	}
	clone := n.CloneShallow(suffix)
	cloned[n] = clone
	for _, e := range n.edges {
		child := cloneDeep(e.child, suffix, cloned)
		clone.edges = append(clone.edges, Edge{child: child, position: e.position.Clone()})
	}
	return clone
}
