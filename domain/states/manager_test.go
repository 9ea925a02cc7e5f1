package states

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"concepter-backend/domain/config"
	"concepter-backend/domain/core/aggregates"
	"concepter-backend/domain/core/entities"
	"concepter-backend/domain/core/valueobjects"
)

func setup() (*aggregates.NodeStore, *Manager) {
	store := aggregates.NewNodeStore(config.DefaultDomainConfig(), zap.NewNop())
	return store, NewManager(store, zap.NewNop())
}

func registered(store *aggregates.NodeStore, name string) *entities.Node {
	n := entities.NewNode("concept", nil)
	n.SetName(name)
	store.Register(n)
	return n
}

func childIDs(n *entities.Node) []string {
	var ids []string
	for _, c := range n.Children() {
		ids = append(ids, c.ID().String())
	}
	return ids
}

func TestSwitchState_NewNameStartsAsCopy(t *testing.T) {
	store, mgr := setup()
	parent := registered(store, "parent")
	child := registered(store, "child")
	parent.AddEdge(child, valueobjects.PositionFromLabel("supports"))

	mgr.SwitchState(parent, "draft")

	assert.Equal(t, "draft", parent.ActiveState())
	// live edges untouched, both snapshots hold the same entry
	assert.Equal(t, []string{child.ID().String()}, childIDs(parent))
	base, ok := parent.Snapshot("base")
	require.True(t, ok)
	draft, ok := parent.Snapshot("draft")
	require.True(t, ok)
	assert.Len(t, base, 1)
	assert.Len(t, draft, 1)
}

func TestSwitchState_RoundTripRestoresEdges(t *testing.T) {
	store, mgr := setup()
	parent := registered(store, "parent")
	b := registered(store, "b")
	c := registered(store, "c")
	d := registered(store, "d")
	parent.AddEdge(b, valueobjects.PositionFromLabel("supports"))
	parent.AddEdge(c, valueobjects.PositionFromLabel("blocks"))

	mgr.SwitchState(parent, "revised")
	parent.RemoveEdge(c)
	parent.AddEdge(d, valueobjects.PositionFromLabel("blocks-alt"))
	mgr.SwitchState(parent, "base")

	assert.Equal(t, []string{b.ID().String(), c.ID().String()}, childIDs(parent))
	pos, ok := parent.PositionOf(c)
	require.True(t, ok)
	assert.Equal(t, "blocks", pos.Label)

	mgr.SwitchState(parent, "revised")
	assert.Equal(t, []string{b.ID().String(), d.ID().String()}, childIDs(parent))
}

func TestSwitchState_ResolvesByIDWhenHandleGone(t *testing.T) {
	store, mgr := setup()
	parent := registered(store, "parent")
	child := registered(store, "child")
	parent.AddEdge(child, valueobjects.PositionFromLabel("supports"))
	mgr.SwitchState(parent, "draft")

	// simulate a reload boundary: snapshot entries carry only the id
	entries, _ := parent.Snapshot("draft")
	stripped := make([]entities.StateEntry, len(entries))
	for i, e := range entries {
		stripped[i] = entities.NewStateEntry(e.ChildID, nil, e.Position)
	}
	parent.SetSnapshot("draft", stripped)
	parent.SetEdges(nil)

	mgr.SwitchState(parent, "base")
	mgr.SwitchState(parent, "draft")

	assert.Equal(t, []string{child.ID().String()}, childIDs(parent))
}

func TestSwitchState_DropsUnresolvableEntries(t *testing.T) {
	store, mgr := setup()
	parent := registered(store, "parent")
	parent.SetSnapshot("ghosts", []entities.StateEntry{
		entities.NewStateEntry("never-loaded", nil, valueobjects.PositionFromLabel("supports")),
	})

	mgr.SwitchState(parent, "ghosts")

	assert.Empty(t, parent.Edges())
	assert.Equal(t, "ghosts", parent.ActiveState())
}

func TestClearStates_ResetsToBase(t *testing.T) {
	store, mgr := setup()
	parent := registered(store, "parent")
	mgr.SwitchState(parent, "draft")

	mgr.ClearStates(parent)

	assert.Equal(t, "base", parent.ActiveState())
	assert.False(t, parent.HasStates())
}

func TestListStates_MaterializesBaseOnFreshNode(t *testing.T) {
	store, mgr := setup()
	parent := registered(store, "parent")
	child := registered(store, "child")
	parent.AddEdge(child, valueobjects.PositionFromLabel("supports"))

	names := mgr.ListStates(parent)

	assert.Equal(t, []string{"base"}, names)
	base, ok := parent.Snapshot("base")
	require.True(t, ok)
	assert.Len(t, base, 1)
}

func TestCompareTwoStates_MissingSnapshot(t *testing.T) {
	store, mgr := setup()
	parent := registered(store, "parent")

	_, ok := mgr.CompareTwoStates(parent, "base", "nope")

	assert.False(t, ok)
}

func TestCompareWithState_LiveVersusStored(t *testing.T) {
	store, mgr := setup()
	parent := registered(store, "parent")
	child := registered(store, "child")
	parent.AddEdge(child, valueobjects.PositionFromLabel("supports"))
	mgr.SwitchState(parent, "base")

	extra := registered(store, "extra")
	parent.AddEdge(extra, valueobjects.PositionFromLabel("blocks"))

	diff, ok := mgr.CompareWithState(parent, "base")

	require.True(t, ok)
	// live edges are the source side: the extra edge is absent from base
	require.Len(t, diff, 1)
	assert.Equal(t, StatusRemoved, diff[extra.ID().String()].Status)
}
