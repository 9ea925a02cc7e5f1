package kinds

import (
	"strconv"

	"concepter-backend/domain/core/entities"
)

// FiscalMonths is the month ordering used by budget attributes,
// starting at the fiscal year boundary in April
var FiscalMonths = []string{
	"Apr", "May", "Jun", "Jul", "Aug", "Sep",
	"Oct", "Nov", "Dec", "Jan", "Feb", "Mar",
}

// IsFiscalMonth reports whether key names one of the month attributes
func IsFiscalMonth(key string) bool {
	for _, m := range FiscalMonths {
		if m == key {
			return true
		}
	}
	return false
}

func toFloat(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// budgetResolver derives a budget node's value attributes:
//   - Budget is the sum over children that expose a budget themselves;
//     a node with no contributing children reports its raw value.
//   - An unset month gets an even share of what remains after the set
//     months are subtracted from the total budget.
type budgetResolver struct{}

func (budgetResolver) Resolve(n *entities.Node, key string) (interface{}, bool) {
	switch {
	case key == "Budget":
		return rolledUpBudget(n)
	case IsFiscalMonth(key):
		return allocatedMonth(n, key)
	}
	return nil, false
}

func rolledUpBudget(n *entities.Node) (interface{}, bool) {
	sum := 0.0
	contributing := false
	for _, child := range n.Children() {
		if value, ok := toFloat(child.Get("Budget", nil)); ok {
			sum += value
			contributing = true
		}
	}
	if !contributing {
		return nil, false
	}
	return sum, true
}

func allocatedMonth(n *entities.Node, key string) (interface{}, bool) {
	if n.GetRaw(key, nil) != nil {
		return nil, false
	}

	setTotal := 0.0
	setCount := 0
	for _, month := range FiscalMonths {
		if value, ok := toFloat(n.GetRaw(month, nil)); ok {
			setTotal += value
			setCount++
		}
	}
	budget, hasBudget := toFloat(n.Get("Budget", nil))
	if setCount == 0 || !hasBudget {
		return nil, false
	}

	remaining := budget - setTotal
	return remaining / float64(len(FiscalMonths)-setCount), true
}

// monthlyBudgetResolver inverts the budget relation: the total is the
// sum of whatever months are set, and unset months allocate the same
// way budget nodes do.
type monthlyBudgetResolver struct{}

func (monthlyBudgetResolver) Resolve(n *entities.Node, key string) (interface{}, bool) {
	switch {
	case key == "Budget":
		sum := 0.0
		count := 0
		for _, month := range FiscalMonths {
			if value, ok := toFloat(n.GetRaw(month, nil)); ok {
				sum += value
				count++
			}
		}
		if count == 0 {
			return nil, false
		}
		return sum, true
	case IsFiscalMonth(key):
		return allocatedMonth(n, key)
	}
	return nil, false
}
