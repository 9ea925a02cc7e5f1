package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"concepter-backend/domain/config"
	"concepter-backend/domain/core/aggregates"
	"concepter-backend/domain/core/valueobjects"
	"concepter-backend/domain/kinds"
	"concepter-backend/domain/states"
	"concepter-backend/infrastructure/persistence/memory"
	appErrors "concepter-backend/pkg/errors"
)

func newService() *GraphService {
	store := aggregates.NewNodeStore(config.DefaultDomainConfig(), zap.NewNop())
	return NewGraphService(store, kinds.DefaultRegistry(), memory.NewProjectRepository(), zap.NewNop())
}

func TestCreateNode_Defaults(t *testing.T) {
	svc := newService()

	n := svc.CreateNode("", "")

	assert.Equal(t, "concept", n.Kind())
	assert.Equal(t, "Unnamed", n.Name())
	assert.Len(t, svc.ListNodes(), 1)
}

func TestGetNode_NotFound(t *testing.T) {
	svc := newService()

	_, err := svc.GetNode("missing")

	require.Error(t, err)
	assert.True(t, appErrors.IsNotFound(err))
}

func TestAddEdge_And_Children(t *testing.T) {
	svc := newService()
	parent := svc.CreateNode("concept", "parent")
	child := svc.CreateNode("concept", "child")

	err := svc.AddEdge(parent.ID().String(), child.ID().String(), valueobjects.PositionFromLabel("supports"))
	require.NoError(t, err)

	children, err := svc.Children(parent.ID().String())
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Same(t, child, children[0])
}

func TestAddEdge_CycleIsInsertedNotRejected(t *testing.T) {
	svc := newService()
	a := svc.CreateNode("concept", "a")
	b := svc.CreateNode("concept", "b")
	require.NoError(t, svc.AddEdge(a.ID().String(), b.ID().String(), valueobjects.PositionFromLabel("supports")))

	err := svc.AddEdge(b.ID().String(), a.ID().String(), valueobjects.PositionFromLabel("supports"))

	require.NoError(t, err)
	assert.True(t, b.HasDirectChild(a))
}

func TestDeleteNode_StripsEdges(t *testing.T) {
	svc := newService()
	parent := svc.CreateNode("concept", "parent")
	child := svc.CreateNode("concept", "child")
	require.NoError(t, svc.AddEdge(parent.ID().String(), child.ID().String(), valueobjects.PositionFromLabel("supports")))

	require.NoError(t, svc.DeleteNode(child.ID().String()))

	assert.Empty(t, parent.Edges())
	assert.Len(t, svc.ListNodes(), 1)
}

func TestCloneNode_Shallow(t *testing.T) {
	svc := newService()
	n := svc.CreateNode("concept", "original")

	clone, err := svc.CloneNode(n.ID().String(), false)

	require.NoError(t, err)
	assert.Equal(t, "original (Clone)", clone.Name())
	assert.Len(t, svc.ListNodes(), 2)
}

func TestUpdateAttribute_ProjectDateConsistency(t *testing.T) {
	svc := newService()
	n := svc.CreateNode("project", "launch")
	require.NoError(t, svc.UpdateAttribute(n.ID().String(), "TimeRequired", 10.0))

	err := svc.UpdateAttribute(n.ID().String(), "StartDate", "2026-06-01")

	require.NoError(t, err)
	assert.NotNil(t, n.Get("EndDate", nil))
}

func TestUpdateAttribute_InvalidDateReturnsValidationError(t *testing.T) {
	svc := newService()
	n := svc.CreateNode("project", "launch")

	err := svc.UpdateAttribute(n.ID().String(), "StartDate", "not a date")

	require.Error(t, err)
	assert.True(t, appErrors.IsValidation(err))
	assert.Nil(t, n.Get("StartDate", nil))
}

func TestMergeNodes(t *testing.T) {
	svc := newService()
	target := svc.CreateNode("concept", "target")
	source := svc.CreateNode("concept", "source")
	child := svc.CreateNode("concept", "child")
	require.NoError(t, svc.AddEdge(source.ID().String(), child.ID().String(), valueobjects.PositionFromLabel("supports")))
	require.NoError(t, svc.UpdateAttribute(source.ID().String(), "note", "keep me"))

	err := svc.MergeNodes(target.ID().String(), source.ID().String())

	require.NoError(t, err)
	assert.True(t, target.HasDirectChild(child))
	assert.Equal(t, "keep me", target.Get("note", nil))
	assert.Equal(t, "target", target.Name())
	assert.Len(t, svc.ListNodes(), 2)
}

func TestMergeNodes_SelfMergeConflicts(t *testing.T) {
	svc := newService()
	n := svc.CreateNode("concept", "n")

	err := svc.MergeNodes(n.ID().String(), n.ID().String())

	require.Error(t, err)
	assert.True(t, appErrors.IsConflict(err))
}

func TestStateFlow_SwitchCompareScore(t *testing.T) {
	svc := newService()
	a := svc.CreateNode("concept", "A")
	b := svc.CreateNode("concept", "B")
	c := svc.CreateNode("concept", "C")
	d := svc.CreateNode("concept", "D")
	require.NoError(t, svc.AddEdge(a.ID().String(), b.ID().String(), valueobjects.PositionFromLabel("supports")))
	require.NoError(t, svc.AddEdge(a.ID().String(), c.ID().String(), valueobjects.PositionFromLabel("blocks")))
	require.NoError(t, svc.SwitchState(a.ID().String(), "base"))

	require.NoError(t, svc.RemoveEdge(a.ID().String(), c.ID().String()))
	require.NoError(t, svc.AddEdge(a.ID().String(), d.ID().String(), valueobjects.PositionFromLabel("blocks-alt")))
	require.NoError(t, svc.SwitchState(a.ID().String(), "revised"))

	diff, err := svc.CompareStates(a.ID().String(), "base", "revised")
	require.NoError(t, err)
	require.Len(t, diff, 2)
	assert.Equal(t, states.StatusRemoved, diff[c.ID().String()].Status)
	assert.Equal(t, states.StatusAdded, diff[d.ID().String()].Status)

	scores := svc.ScoreChanges(diff.ForNode(a.ID().String()))
	assert.Equal(t, 2, scores[a.ID().String()])
}

func TestProjectRoundTrip(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	parent := svc.CreateNode("project", "plan")
	child := svc.CreateNode("concept", "step")
	require.NoError(t, svc.AddEdge(parent.ID().String(), child.ID().String(), valueobjects.PositionFromLabel("contains")))
	svc.SetStateVariable("theme", "dark")

	require.NoError(t, svc.SaveProject(ctx, "demo"))

	// wipe and reload into a fresh service sharing the repository
	names, err := svc.ListProjects(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"demo"}, names)

	count, err := svc.LoadProject(ctx, "demo")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	reloaded, err := svc.FindByName("plan")
	require.NoError(t, err)
	require.Len(t, reloaded.Children(), 1)
	assert.Equal(t, "step", reloaded.Children()[0].Name())

	theme, ok := svc.StateVariable("theme")
	require.True(t, ok)
	assert.Equal(t, "dark", theme)
}

func TestImportProject_Deduplicates(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	svc.CreateNode("concept", "alpha")
	require.NoError(t, svc.SaveProject(ctx, "demo"))

	// importing the same project collides on every id
	count, err := svc.ImportProject(ctx, "demo")

	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Len(t, svc.ListNodes(), 1)
}

func TestProjectOps_UnconfiguredRepository(t *testing.T) {
	store := aggregates.NewNodeStore(config.DefaultDomainConfig(), zap.NewNop())
	svc := NewGraphService(store, kinds.DefaultRegistry(), nil, zap.NewNop())

	err := svc.SaveProject(context.Background(), "demo")

	require.Error(t, err)
	assert.True(t, appErrors.IsUnconfigured(err))
}

func TestExportNodes_StripsOutsideEdges(t *testing.T) {
	svc := newService()
	parent := svc.CreateNode("concept", "parent")
	inside := svc.CreateNode("concept", "inside")
	outside := svc.CreateNode("concept", "outside")
	require.NoError(t, svc.AddEdge(parent.ID().String(), inside.ID().String(), valueobjects.PositionFromLabel("supports")))
	require.NoError(t, svc.AddEdge(parent.ID().String(), outside.ID().String(), valueobjects.PositionFromLabel("supports")))

	records, err := svc.ExportNodes([]string{parent.ID().String(), inside.ID().String()})

	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Len(t, records[0].Edges, 1)
	assert.Equal(t, inside.ID().String(), records[0].Edges[0].ToID)
}

func TestGroupNodes_CreatesContainingParent(t *testing.T) {
	svc := newService()
	a := svc.CreateNode("concept", "alpha")
	b := svc.CreateNode("concept", "beta")

	parent, err := svc.GroupNodes([]string{a.ID().String(), "missing", b.ID().String()})

	require.NoError(t, err)
	assert.Equal(t, "alpha, beta", parent.Name())
	assert.Equal(t, "Brings together 2 priorities.", parent.GetRaw("Description", nil))
	children, err := svc.Children(parent.ID().String())
	require.NoError(t, err)
	require.Len(t, children, 2)
	for _, e := range parent.Edges() {
		assert.Equal(t, "contains", e.Position().Label)
	}
}

func TestGroupNodes_NothingResolvable(t *testing.T) {
	svc := newService()

	_, err := svc.GroupNodes([]string{"missing"})

	require.Error(t, err)
	assert.True(t, appErrors.IsNotFound(err))
}
