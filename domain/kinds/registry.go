// Package kinds maps node kind discriminators to constructors and
// derived-value resolvers. The registry is what deserialization uses to
// rebuild the right behavior from a stored kind string.
package kinds

import (
	"concepter-backend/domain/core/entities"
	"concepter-backend/domain/core/valueobjects"
)

const (
	KindConcept       = "concept"
	KindProject       = "project"
	KindBudget        = "budget"
	KindMonthlyBudget = "monthly_budget"
)

// Kind bundles a discriminator with its default attributes and its
// derived-value resolver (nil for kinds with no computed attributes)
type Kind struct {
	Name     string
	Defaults func() valueobjects.Attributes
	Resolver entities.ValueResolver
}

// Registry resolves kind discriminators to their Kind definitions
type Registry struct {
	kinds    map[string]Kind
	fallback string
}

// NewRegistry creates an empty registry with the given fallback kind
func NewRegistry(fallback string) *Registry {
	return &Registry{kinds: make(map[string]Kind), fallback: fallback}
}

// Register adds or replaces a kind definition
func (r *Registry) Register(k Kind) {
	r.kinds[k.Name] = k
}

// Lookup returns the definition for a discriminator
func (r *Registry) Lookup(name string) (Kind, bool) {
	k, ok := r.kinds[name]
	return k, ok
}

// New constructs a registered node kind with its default attributes.
// Unknown discriminators fall back to the registry's fallback kind so a
// project saved by a newer build still loads.
func (r *Registry) New(name string) *entities.Node {
	k, ok := r.kinds[name]
	if !ok {
		k = r.kinds[r.fallback]
	}
	n := entities.NewNode(k.Name, k.Resolver)
	if k.Defaults != nil {
		for key, value := range k.Defaults() {
			n.Set(key, value)
		}
	}
	return n
}

// Reconstruct rebuilds a node from persisted parts, attaching the
// resolver matching the stored discriminator
func (r *Registry) Reconstruct(id valueobjects.NodeID, name string, attrs valueobjects.Attributes) *entities.Node {
	k, ok := r.kinds[name]
	if !ok {
		k = r.kinds[r.fallback]
	}
	return entities.ReconstructNode(id, k.Name, attrs, k.Resolver)
}

// DefaultRegistry returns the registry with every built-in kind
func DefaultRegistry() *Registry {
	r := NewRegistry(KindConcept)
	r.Register(Kind{Name: KindConcept})
	r.Register(Kind{Name: KindProject, Defaults: projectDefaults})
	r.Register(Kind{Name: KindBudget, Defaults: budgetDefaults, Resolver: budgetResolver{}})
	r.Register(Kind{Name: KindMonthlyBudget, Defaults: budgetDefaults, Resolver: monthlyBudgetResolver{}})
	return r
}

func projectDefaults() valueobjects.Attributes {
	return valueobjects.Attributes{
		"Lead":         "",
		"TimeRequired": 0.0,
		"Impact":       0.0,
		"Effort":       0.0,
	}
}

func budgetDefaults() valueobjects.Attributes {
	attrs := projectDefaults()
	attrs["Budget"] = 0.0
	return attrs
}
