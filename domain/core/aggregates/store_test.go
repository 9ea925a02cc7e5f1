package aggregates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"concepter-backend/domain/config"
	"concepter-backend/domain/core/entities"
	"concepter-backend/domain/core/valueobjects"
)

func newStore() *NodeStore {
	return NewNodeStore(config.DefaultDomainConfig(), zap.NewNop())
}

func addNode(s *NodeStore, name string) *entities.Node {
	n := entities.NewNode("concept", nil)
	n.SetName(name)
	s.Register(n)
	return n
}

func TestGetByID(t *testing.T) {
	s := newStore()
	a := addNode(s, "a")
	addNode(s, "b")

	assert.Same(t, a, s.GetByID(a.ID().String()))
}

func TestGetByID_NormalizedComparison(t *testing.T) {
	s := newStore()
	a := addNode(s, "a")

	got := s.GetByID("  " + a.ID().String() + " ")

	assert.Same(t, a, got)
}

func TestGetByID_MissReturnsNil(t *testing.T) {
	s := newStore()
	addNode(s, "a")

	assert.Nil(t, s.GetByID("no-such-id"))
}

func TestGetByName_CaseInsensitiveSubstring(t *testing.T) {
	s := newStore()
	addNode(s, "Quarterly Budget")
	target := addNode(s, "Launch Plan")

	assert.Same(t, target, s.GetByName("launch"))
	assert.Nil(t, s.GetByName("missing"))
}

func TestParentsOf(t *testing.T) {
	s := newStore()
	p1 := addNode(s, "p1")
	p2 := addNode(s, "p2")
	other := addNode(s, "other")
	child := addNode(s, "child")
	p1.AddEdge(child, valueobjects.PositionFromLabel("supports"))
	p2.AddEdge(child, valueobjects.PositionFromLabel("blocks"))
	_ = other

	parents := s.ParentsOf(child)

	require.Len(t, parents, 2)
	assert.Same(t, p1, parents[0])
	assert.Same(t, p2, parents[1])
}

func TestAreCloseRelations(t *testing.T) {
	s := newStore()
	parent := addNode(s, "parent")
	child := addNode(s, "child")
	stranger := addNode(s, "stranger")
	parent.AddEdge(child, valueobjects.PositionFromLabel("supports"))

	assert.True(t, s.AreCloseRelations(parent, parent))
	assert.True(t, s.AreCloseRelations(parent, child))
	assert.True(t, s.AreCloseRelations(child, parent))
	assert.False(t, s.AreCloseRelations(parent, stranger))
}

func TestDeduplicate_KeepFirst(t *testing.T) {
	s := newStore()
	a := addNode(s, "a")
	dup := entities.NewNode("concept", nil)
	dup.SetName("a-dup")
	dup.SetID(a.ID())
	s.Register(dup)
	b := addNode(s, "b")

	removed := s.Deduplicate(false)

	assert.Equal(t, 1, removed)
	all := s.All()
	require.Len(t, all, 2)
	assert.Same(t, a, all[0])
	assert.Same(t, b, all[1])
}

func TestDeduplicate_KeepLast(t *testing.T) {
	s := newStore()
	a := addNode(s, "a")
	b := addNode(s, "b")
	dup := entities.NewNode("concept", nil)
	dup.SetName("a-dup")
	dup.SetID(a.ID())
	s.Register(dup)

	removed := s.Deduplicate(true)

	assert.Equal(t, 1, removed)
	all := s.All()
	require.Len(t, all, 2)
	// survivor order follows last occurrences
	assert.Same(t, b, all[0])
	assert.Same(t, dup, all[1])
}

func TestDeduplicate_Idempotent(t *testing.T) {
	s := newStore()
	addNode(s, "a")
	addNode(s, "b")

	assert.Equal(t, 0, s.Deduplicate(true))
	assert.Equal(t, 2, s.Len())
}

func TestRekeyAll_ReachableNodesGetFreshIDs(t *testing.T) {
	s := newStore()
	root := addNode(s, "root")
	hidden := entities.NewNode("concept", nil)
	hidden.SetName("hidden")
	root.AddEdge(hidden, valueobjects.PositionFromLabel("supports"))

	oldRoot := root.ID().String()
	oldHidden := hidden.ID().String()

	s.RekeyAll()

	assert.NotEqual(t, oldRoot, root.ID().String())
	assert.NotEqual(t, oldHidden, hidden.ID().String())
	assert.NotEqual(t, root.ID().String(), hidden.ID().String())
}

func TestDelete_StripsEdgesFromRegisteredNodes(t *testing.T) {
	s := newStore()
	parent := addNode(s, "parent")
	victim := addNode(s, "victim")
	parent.AddEdge(victim, valueobjects.PositionFromLabel("supports"))

	s.Delete(victim)

	assert.False(t, s.Contains(victim))
	assert.Empty(t, parent.Edges())
}

func TestAllReachable_IncludesEdgeOnlyNodes(t *testing.T) {
	s := newStore()
	root := addNode(s, "root")
	hidden := entities.NewNode("concept", nil)
	hidden.SetName("hidden")
	root.AddEdge(hidden, valueobjects.PositionFromLabel("supports"))

	got := s.AllReachable()

	require.Len(t, got, 2)
	assert.Same(t, root, got[0])
	assert.Same(t, hidden, got[1])
}
