// Package states implements named edge-list snapshots per node, the
// diff engine comparing two snapshots, and the propagated change
// scorer ranking how much each subtree moved between configurations.
package states

import (
	"go.uber.org/zap"

	"concepter-backend/domain/config"
	"concepter-backend/domain/core/aggregates"
	"concepter-backend/domain/core/entities"
)

// Manager drives snapshot capture and restore for nodes in one store.
// Restore resolves snapshot entries handle-first, then by id through
// the store, so snapshots survive a save/load round trip.
type Manager struct {
	store  *aggregates.NodeStore
	cfg    *config.DomainConfig
	logger *zap.Logger
}

// NewManager creates a snapshot manager bound to a store
func NewManager(store *aggregates.NodeStore, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{store: store, cfg: store.Config(), logger: logger}
}

// activeName maps the never-switched empty state to the base name
func (m *Manager) activeName(n *entities.Node) string {
	if name := n.ActiveState(); name != "" {
		return name
	}
	return m.cfg.BaseStateName
}

// capture converts the node's live edge list into snapshot entries,
// deep-copying positions so later edits do not bleed into the snapshot
func capture(n *entities.Node) []entities.StateEntry {
	edges := n.Edges()
	entries := make([]entities.StateEntry, 0, len(edges))
	for _, e := range edges {
		entries = append(entries, entities.NewStateEntry(e.Child().ID().String(), e.Child(), e.Position().Clone()))
	}
	return entries
}

// SwitchState saves the node's current edges under its active state
// name, then makes newName current. An existing snapshot of newName is
// restored into the live edge list; a brand-new name starts as a copy
// of the configuration being switched away from.
func (m *Manager) SwitchState(n *entities.Node, newName string) {
	current := m.activeName(n)
	captured := capture(n)
	n.SetSnapshot(current, captured)

	if stored, ok := n.Snapshot(newName); ok {
		n.SetEdges(m.restore(n, stored))
	} else {
		n.SetSnapshot(newName, captured)
	}
	n.SetActiveState(newName)
}

// restore rebuilds an edge list from snapshot entries. Each entry is
// resolved by its in-process handle first and by id lookup as the
// fallback; entries resolving to nothing are dropped.
func (m *Manager) restore(n *entities.Node, entries []entities.StateEntry) []entities.Edge {
	edges := make([]entities.Edge, 0, len(entries))
	for _, entry := range entries {
		child := entry.Handle()
		if child == nil {
			child = m.store.GetByID(entry.ChildID)
		}
		if child == nil {
			m.logger.Debug("dropping unresolvable snapshot entry",
				zap.String("nodeID", n.ID().String()),
				zap.String("childID", entry.ChildID),
			)
			continue
		}
		edges = append(edges, entities.NewEdge(child, entry.Position.Clone()))
	}
	return edges
}

// RemoveState deletes a stored snapshot, leaving the live edges alone
func (m *Manager) RemoveState(n *entities.Node, name string) {
	n.DeleteSnapshot(name)
}

// ClearStates wipes every snapshot and resets the node to base
func (m *Manager) ClearStates(n *entities.Node) {
	n.ClearSnapshots()
	n.SetActiveState(m.cfg.BaseStateName)
}

// RenameState rekeys a snapshot, reporting whether the old name existed
func (m *Manager) RenameState(n *entities.Node, oldName, newName string) bool {
	return n.RenameSnapshot(oldName, newName)
}

// ListStates returns the node's snapshot names. A node that has never
// snapshotted gets its base state materialized first, so listing is a
// mutating call on fresh nodes.
func (m *Manager) ListStates(n *entities.Node) []string {
	if _, ok := n.Snapshot(m.cfg.BaseStateName); !ok {
		m.SwitchState(n, m.cfg.BaseStateName)
	}
	return n.StateNames()
}

// CompareTwoStates diffs two stored snapshots of the same node. The
// second return is false when either name has no stored snapshot.
func (m *Manager) CompareTwoStates(n *entities.Node, sourceName, targetName string) (ChildDiff, bool) {
	source, okSource := n.Snapshot(sourceName)
	target, okTarget := n.Snapshot(targetName)
	if !okSource || !okTarget {
		return nil, false
	}
	return Diff(source, target), true
}

// CompareWithState diffs the node's live edge list against a stored
// snapshot, without persisting the live edges anywhere.
func (m *Manager) CompareWithState(n *entities.Node, targetName string) (ChildDiff, bool) {
	target, ok := n.Snapshot(targetName)
	if !ok {
		return nil, false
	}
	return Diff(capture(n), target), true
}
