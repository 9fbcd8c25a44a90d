package engine

import "fmt"

// Registry holds the static, ordered rule catalog. It is validated once at
// construction: catalog defects are programming errors surfaced at startup,
// never per scan.
type Registry struct {
	rules []Rule
}

// NewRegistry validates the catalog and returns an immutable registry.
func NewRegistry(rules []Rule) (*Registry, error) {
	seen := map[string]bool{}
	sums := map[Category]int{}

	for _, r := range rules {
		if r.ID == "" {
			return nil, fmt.Errorf("%w: rule with empty id", ErrInternalConsistency)
		}
		if seen[r.ID] {
			return nil, fmt.Errorf("%w: duplicate rule id %s", ErrInternalConsistency, r.ID)
		}
		seen[r.ID] = true
		if !r.Category.valid() {
			return nil, fmt.Errorf("%w: rule %s references unknown category %d", ErrInternalConsistency, r.ID, int(r.Category))
		}
		if r.Severity != Warning && r.Severity != Critical {
			return nil, fmt.Errorf("%w: rule %s has invalid failure severity %s", ErrInternalConsistency, r.ID, r.Severity)
		}
		if r.Weight <= 0 {
			return nil, fmt.Errorf("%w: rule %s has non-positive weight %d", ErrInternalConsistency, r.ID, r.Weight)
		}
		if r.Detect == nil {
			return nil, fmt.Errorf("%w: rule %s has no detector", ErrInternalConsistency, r.ID)
		}
		sums[r.Category] += r.Weight
	}

	for cat, sum := range sums {
		if sum != cat.Max() {
			return nil, fmt.Errorf("%w: category %q weights sum to %d, declared max is %d",
				ErrInternalConsistency, cat, sum, cat.Max())
		}
	}

	out := make([]Rule, len(rules))
	copy(out, rules)
	return &Registry{rules: out}, nil
}

// All returns the full catalog in registry order.
func (r *Registry) All() []Rule {
	out := make([]Rule, len(r.rules))
	copy(out, r.rules)
	return out
}

// ForCategories returns the order-preserving subsequence of rules whose
// category is in the given set.
func (r *Registry) ForCategories(cats map[Category]bool) []Rule {
	var out []Rule
	for _, rule := range r.rules {
		if cats[rule.Category] {
			out = append(out, rule)
		}
	}
	return out
}
