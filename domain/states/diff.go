package states

import (
	"concepter-backend/domain/core/aggregates"
	"concepter-backend/domain/core/entities"
	"concepter-backend/domain/core/valueobjects"
)

// Status classifies one edge difference between two snapshots
type Status string

const (
	StatusAdded   Status = "added"
	StatusChanged Status = "changed"
	StatusRemoved Status = "removed"
)

// Entry is one diffed edge. Position carries the target-side position
// for added and changed entries and the source-side position for
// removed entries; PreviousPosition is set only on changed entries.
type Entry struct {
	Status           Status                `json:"status"`
	Position         valueobjects.Position `json:"position"`
	PreviousPosition valueobjects.Position `json:"previous_position,omitempty"`
}

// ChildDiff maps a child id to its diff entry for one parent node
type ChildDiff map[string]Entry

// GraphDiff maps a parent node id to that node's child diff
type GraphDiff map[string]ChildDiff

// ForNode wraps a single node's child diff into graph-diff form
func (d ChildDiff) ForNode(nodeID string) GraphDiff {
	return GraphDiff{nodeID: d}
}

// Diff compares two snapshots of the same node's edge list. Positions
// are compared in normalized label-only form, so enriching an edge's
// description or embedding alone does not register as a change.
func Diff(source, target []entities.StateEntry) ChildDiff {
	sourcePos := make(map[string]valueobjects.Position, len(source))
	for _, entry := range source {
		sourcePos[entry.ChildID] = entry.Position
	}
	targetPos := make(map[string]valueobjects.Position, len(target))
	for _, entry := range target {
		targetPos[entry.ChildID] = entry.Position
	}

	diff := make(ChildDiff)
	for id, pos := range targetPos {
		prev, inSource := sourcePos[id]
		switch {
		case !inSource:
			diff[id] = Entry{Status: StatusAdded, Position: pos.Clone()}
		case !prev.Equals(pos):
			diff[id] = Entry{Status: StatusChanged, Position: pos.Clone(), PreviousPosition: prev.Clone()}
		}
	}
	for id, pos := range sourcePos {
		if _, inTarget := targetPos[id]; !inTarget {
			diff[id] = Entry{Status: StatusRemoved, Position: pos.Clone()}
		}
	}
	return diff
}

// Apply replays the diff entries keyed to n's id onto n's live edges:
// added and changed edges take the new position, removed edges are
// dropped. Children that no longer resolve are skipped.
func Apply(store *aggregates.NodeStore, n *entities.Node, diff GraphDiff) {
	childDiff, ok := diff[n.ID().String()]
	if !ok {
		return
	}
	for childID, entry := range childDiff {
		switch entry.Status {
		case StatusAdded, StatusChanged:
			if child := store.GetByID(childID); child != nil {
				n.SetPosition(child, entry.Position.Clone())
			}
		case StatusRemoved:
			n.RemoveEdgeByID(childID)
		}
	}
}

// Revert undoes the diff entries keyed to n's id: added edges are
// removed, changed edges regain their previous position, removed edges
// come back with the position they were removed with.
func Revert(store *aggregates.NodeStore, n *entities.Node, diff GraphDiff) {
	childDiff, ok := diff[n.ID().String()]
	if !ok {
		return
	}
	for childID, entry := range childDiff {
		switch entry.Status {
		case StatusAdded:
			n.RemoveEdgeByID(childID)
		case StatusChanged:
			if child := store.GetByID(childID); child != nil {
				n.SetPosition(child, entry.PreviousPosition.Clone())
			}
		case StatusRemoved:
			if child := store.GetByID(childID); child != nil {
				n.SetPosition(child, entry.Position.Clone())
			}
		}
	}
}

// ApplyAll fans Apply out over a node list; every node only consumes
// entries keyed to its own id
func ApplyAll(store *aggregates.NodeStore, nodes []*entities.Node, diff GraphDiff) {
	for _, n := range nodes {
		Apply(store, n, diff)
	}
}

// RevertAll fans Revert out over a node list
func RevertAll(store *aggregates.NodeStore, nodes []*entities.Node, diff GraphDiff) {
	for _, n := range nodes {
		Revert(store, n, diff)
	}
}
