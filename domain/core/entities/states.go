package entities

import (
	"sort"

	"concepter-backend/domain/core/valueobjects"
)

// StateEntry is one captured edge inside a named snapshot. The handle
// is a same-run-only identity hint: it resolves instantly while the
// original child object is alive, and the durable child id is the
// fallback once a persistence boundary has been crossed.
type StateEntry struct {
	ChildID  string
	handle   *Node
	Position valueobjects.Position
}

// NewStateEntry captures an edge as a snapshot entry
func NewStateEntry(childID string, handle *Node, position valueobjects.Position) StateEntry {
	return StateEntry{ChildID: childID, handle: handle, Position: position}
}

// Handle returns the ephemeral node reference, nil after a reload
func (e StateEntry) Handle() *Node {
	return e.handle
}

// ActiveState returns the name of the node's current snapshot, "" when
// the node has never switched state (the manager treats "" as base).
func (n *Node) ActiveState() string {
	return n.activeState
}

// SetActiveState records the current snapshot name
func (n *Node) SetActiveState(name string) {
	n.activeState = name
}

// Snapshot returns the stored entries for name
func (n *Node) Snapshot(name string) ([]StateEntry, bool) {
	entries, ok := n.states[name]
	return entries, ok
}

// SetSnapshot stores entries under name, overwriting any prior snapshot
func (n *Node) SetSnapshot(name string, entries []StateEntry) {
	if n.states == nil {
		n.states = make(map[string][]StateEntry)
	}
	n.states[name] = entries
}

// DeleteSnapshot removes the snapshot stored under name
func (n *Node) DeleteSnapshot(name string) {
	delete(n.states, name)
}

// RenameSnapshot rekeys a snapshot, reporting whether old existed
func (n *Node) RenameSnapshot(oldName, newName string) bool {
	entries, ok := n.states[oldName]
	if !ok {
		return false
	}
	delete(n.states, oldName)
	n.SetSnapshot(newName, entries)
	if n.activeState == oldName {
		n.activeState = newName
	}
	return true
}

// ClearSnapshots wipes every stored snapshot
func (n *Node) ClearSnapshots() {
	n.states = nil
}

// StateNames returns the stored snapshot names sorted for determinism
func (n *Node) StateNames() []string {
	names := make([]string, 0, len(n.states))
	for name := range n.states {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasStates reports whether the node carries any snapshot
func (n *Node) HasStates() bool {
	return len(n.states) > 0
}
