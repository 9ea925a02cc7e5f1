package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"concepter-backend/domain/core/valueobjects"
)

func newNamed(name string) *Node {
	n := NewNode("concept", nil)
	n.SetName(name)
	return n
}

func TestNewNode_Defaults(t *testing.T) {
	n := NewNode("concept", nil)

	assert.False(t, n.ID().IsZero())
	assert.Equal(t, "concept", n.Kind())
	assert.Equal(t, "Unnamed", n.Name())
	assert.Empty(t, n.Edges())
	assert.Empty(t, n.ActiveState())
}

func TestNewNode_FreshIDPerNode(t *testing.T) {
	a := NewNode("concept", nil)
	b := NewNode("concept", nil)

	assert.NotEqual(t, a.ID().String(), b.ID().String())
}

func TestAddEdge_AppendsInOrder(t *testing.T) {
	parent := newNamed("parent")
	first := newNamed("first")
	second := newNamed("second")

	cycle := parent.AddEdge(first, valueobjects.PositionFromLabel("supports"))
	assert.False(t, cycle)
	cycle = parent.AddEdge(second, valueobjects.PositionFromLabel("blocks"))
	assert.False(t, cycle)

	children := parent.Children()
	require.Len(t, children, 2)
	assert.Same(t, first, children[0])
	assert.Same(t, second, children[1])
}

func TestAddEdge_CycleStillInserted(t *testing.T) {
	// a -> b -> c, then adding c -> a closes a cycle. The edge is kept;
	// the caller decides whether to warn.
	a := newNamed("a")
	b := newNamed("b")
	c := newNamed("c")
	a.AddEdge(b, valueobjects.PositionFromLabel("supports"))
	b.AddEdge(c, valueobjects.PositionFromLabel("supports"))

	cycle := c.AddEdge(a, valueobjects.PositionFromLabel("refines"))

	assert.True(t, cycle)
	assert.True(t, c.HasDirectChild(a))
}

func TestAddEdge_SelfLoopDetected(t *testing.T) {
	n := newNamed("self")

	cycle := n.AddEdge(n, valueobjects.PositionFromLabel("supports"))

	assert.True(t, cycle)
	assert.Len(t, n.Edges(), 1)
}

func TestRemoveEdge(t *testing.T) {
	parent := newNamed("parent")
	child := newNamed("child")
	other := newNamed("other")
	parent.AddEdge(child, valueobjects.PositionFromLabel("supports"))
	parent.AddEdge(other, valueobjects.PositionFromLabel("blocks"))

	parent.RemoveEdge(child)

	children := parent.Children()
	require.Len(t, children, 1)
	assert.Same(t, other, children[0])
}

func TestRemoveEdge_AbsentChildIsNoop(t *testing.T) {
	parent := newNamed("parent")
	child := newNamed("child")
	parent.AddEdge(child, valueobjects.PositionFromLabel("supports"))

	parent.RemoveEdge(newNamed("stranger"))

	assert.Len(t, parent.Edges(), 1)
}

func TestRemoveEdgeByID(t *testing.T) {
	parent := newNamed("parent")
	child := newNamed("child")
	parent.AddEdge(child, valueobjects.PositionFromLabel("supports"))

	parent.RemoveEdgeByID(child.ID().String())

	assert.Empty(t, parent.Edges())
}

func TestSetPosition_UpdatesExistingEdge(t *testing.T) {
	parent := newNamed("parent")
	child := newNamed("child")
	parent.AddEdge(child, valueobjects.PositionFromLabel("supports"))

	updated := parent.SetPosition(child, valueobjects.PositionFromLabel("blocks"))

	assert.True(t, updated)
	pos, ok := parent.PositionOf(child)
	require.True(t, ok)
	assert.Equal(t, "blocks", pos.Label)
	assert.Len(t, parent.Edges(), 1)
}

func TestSetPosition_AppendsWhenMissing(t *testing.T) {
	parent := newNamed("parent")
	child := newNamed("child")

	updated := parent.SetPosition(child, valueobjects.PositionFromLabel("supports"))

	assert.False(t, updated)
	assert.True(t, parent.HasDirectChild(child))
}

func TestIsDescendantOf_WithinDepthLimit(t *testing.T) {
	// chain of five: n0 -> n1 -> n2 -> n3 -> n4
	chain := make([]*Node, 5)
	for i := range chain {
		chain[i] = newNamed("n")
	}
	for i := 0; i < len(chain)-1; i++ {
		chain[i].AddEdge(chain[i+1], valueobjects.PositionFromLabel("supports"))
	}

	assert.True(t, chain[4].IsDescendantOf(chain[0], 4))
	assert.True(t, chain[1].IsDescendantOf(chain[0], 4))
	assert.False(t, chain[0].IsDescendantOf(chain[4], 4))
}

func TestIsDescendantOf_BeyondDepthLimitIsFalse(t *testing.T) {
	chain := make([]*Node, 7)
	for i := range chain {
		chain[i] = newNamed("n")
	}
	for i := 0; i < len(chain)-1; i++ {
		chain[i].AddEdge(chain[i+1], valueobjects.PositionFromLabel("supports"))
	}

	// six hops away, limit four: reported as not a descendant
	assert.False(t, chain[6].IsDescendantOf(chain[0], 4))
}

func TestGet_ResolverTakesPrecedence(t *testing.T) {
	n := NewNode("budget", resolverFunc(func(node *Node, key string) (interface{}, bool) {
		if key == "value" {
			return 42.0, true
		}
		return nil, false
	}))
	n.Set("value", 7.0)

	assert.Equal(t, 42.0, n.Get("value", nil))
	assert.Equal(t, 7.0, n.GetRaw("value", nil))
}

func TestGet_FallbackWhenAbsent(t *testing.T) {
	n := NewNode("concept", nil)

	assert.Equal(t, "none", n.Get("missing", "none"))
}

type resolverFunc func(*Node, string) (interface{}, bool)

func (f resolverFunc) Resolve(n *Node, key string) (interface{}, bool) { return f(n, key) }

func TestCloneShallow(t *testing.T) {
	n := newNamed("original")
	n.Set("value", 100.0)
	child := newNamed("child")
	n.AddEdge(child, valueobjects.PositionFromLabel("supports"))
	n.SetSnapshot("alt", []StateEntry{NewStateEntry(child.ID().String(), child, valueobjects.PositionFromLabel("supports"))})

	clone := n.CloneShallow(" (Clone)")

	assert.Equal(t, "original (Clone)", clone.Name())
	assert.NotEqual(t, n.ID().String(), clone.ID().String())
	assert.Equal(t, 100.0, clone.GetRaw("value", nil))
	assert.Empty(t, clone.Edges())
	assert.False(t, clone.HasStates())

	// attribute maps do not alias
	clone.Set("value", 1.0)
	assert.Equal(t, 100.0, n.GetRaw("value", nil))
}

func TestCloneDeep_CopiesSubtree(t *testing.T) {
	root := newNamed("root")
	child := newNamed("child")
	grandchild := newNamed("grandchild")
	root.AddEdge(child, valueobjects.PositionFromLabel("supports"))
	child.AddEdge(grandchild, valueobjects.PositionFromLabel("blocks"))

	clone := root.CloneDeep(" (Clone)")

	assert.Equal(t, "root (Clone)", clone.Name())
	require.Len(t, clone.Children(), 1)
	clonedChild := clone.Children()[0]
	assert.NotSame(t, child, clonedChild)
	assert.Equal(t, "child (Clone)", clonedChild.Name())
	require.Len(t, clonedChild.Children(), 1)
	assert.NotSame(t, grandchild, clonedChild.Children()[0])
}

func TestCloneDeep_SharedDescendantClonedOnce(t *testing.T) {
	// diamond: root -> a -> shared, root -> b -> shared
	root := newNamed("root")
	a := newNamed("a")
	b := newNamed("b")
	shared := newNamed("shared")
	root.AddEdge(a, valueobjects.PositionFromLabel("supports"))
	root.AddEdge(b, valueobjects.PositionFromLabel("supports"))
	a.AddEdge(shared, valueobjects.PositionFromLabel("supports"))
	b.AddEdge(shared, valueobjects.PositionFromLabel("supports"))

	clone := root.CloneDeep("")

	ca := clone.Children()[0]
	cb := clone.Children()[1]
	require.Len(t, ca.Children(), 1)
	require.Len(t, cb.Children(), 1)
	assert.Same(t, ca.Children()[0], cb.Children()[0])
}

func TestCloneDeep_CycleTerminates(t *testing.T) {
	a := newNamed("a")
	b := newNamed("b")
	a.AddEdge(b, valueobjects.PositionFromLabel("supports"))
	b.AddEdge(a, valueobjects.PositionFromLabel("supports"))

	clone := a.CloneDeep("")

	require.Len(t, clone.Children(), 1)
	back := clone.Children()[0]
	require.Len(t, back.Children(), 1)
	assert.Same(t, clone, back.Children()[0])
}
