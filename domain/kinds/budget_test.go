package kinds

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"concepter-backend/domain/core/valueobjects"
)

func TestRegistry_NewUnknownKindFallsBack(t *testing.T) {
	r := DefaultRegistry()

	n := r.New("hologram")

	assert.Equal(t, KindConcept, n.Kind())
}

func TestRegistry_NewAppliesDefaults(t *testing.T) {
	r := DefaultRegistry()

	n := r.New(KindProject)

	assert.Equal(t, KindProject, n.Kind())
	assert.Equal(t, 0.0, n.GetRaw("TimeRequired", nil))
	assert.Equal(t, "", n.GetRaw("Lead", nil))
}

func TestBudget_SumsChildBudgets(t *testing.T) {
	r := DefaultRegistry()
	parent := r.New(KindBudget)
	a := r.New(KindBudget)
	b := r.New(KindBudget)
	a.Set("Budget", 100.0)
	b.Set("Budget", 250.0)
	parent.AddEdge(a, valueobjects.PositionFromLabel("contains"))
	parent.AddEdge(b, valueobjects.PositionFromLabel("contains"))
	parent.Set("Budget", 9999.0) // shadowed by the roll-up

	assert.Equal(t, 350.0, parent.Get("Budget", nil))
}

func TestBudget_NoContributingChildrenReturnsRaw(t *testing.T) {
	r := DefaultRegistry()
	parent := r.New(KindBudget)
	concept := r.New(KindConcept)
	parent.AddEdge(concept, valueobjects.PositionFromLabel("contains"))
	parent.Set("Budget", 500.0)

	assert.Equal(t, 500.0, parent.Get("Budget", nil))
}

func TestBudget_RollUpIsRecursive(t *testing.T) {
	r := DefaultRegistry()
	top := r.New(KindBudget)
	mid := r.New(KindBudget)
	leaf := r.New(KindBudget)
	leaf.Set("Budget", 40.0)
	mid.AddEdge(leaf, valueobjects.PositionFromLabel("contains"))
	top.AddEdge(mid, valueobjects.PositionFromLabel("contains"))

	assert.Equal(t, 40.0, top.Get("Budget", nil))
}

func TestBudget_UnsetMonthGetsEvenShareOfRemainder(t *testing.T) {
	r := DefaultRegistry()
	n := r.New(KindBudget)
	n.Set("Budget", 120.0)
	n.Set("Apr", 20.0)
	n.Set("May", 10.0)

	// 120 - 30 = 90 split over the ten unset months
	got, ok := toFloat(n.Get("Jun", nil))
	require.True(t, ok)
	assert.InDelta(t, 9.0, got, 1e-9)
}

func TestBudget_SetMonthKeepsItsRawValue(t *testing.T) {
	r := DefaultRegistry()
	n := r.New(KindBudget)
	n.Set("Budget", 120.0)
	n.Set("Apr", 20.0)

	assert.Equal(t, 20.0, n.Get("Apr", nil))
}

func TestBudget_AllMonthsUnsetFallsBackToRaw(t *testing.T) {
	r := DefaultRegistry()
	n := r.New(KindBudget)
	n.Set("Budget", 120.0)

	assert.Nil(t, n.Get("Jun", nil))
}

func TestMonthlyBudget_TotalIsSumOfSetMonths(t *testing.T) {
	r := DefaultRegistry()
	n := r.New(KindMonthlyBudget)
	n.Set("Apr", 10.0)
	n.Set("Dec", 15.0)

	assert.Equal(t, 25.0, n.Get("Budget", nil))
}

func TestMonthlyBudget_NoMonthsSetReturnsRawBudget(t *testing.T) {
	r := DefaultRegistry()
	n := r.New(KindMonthlyBudget)
	n.Set("Budget", 77.0)

	assert.Equal(t, 77.0, n.Get("Budget", nil))
}
