// Package flags provides feature-flag snapshots and typed accessors.
package flags

// Flag keys consulted by the checkout session.
const (
	KeyLeadResubmission    = "lead-resubmission"
	KeyChurnedPromo        = "churned-promo"
	KeyPromoCodeExperiment = "promo-code-experiment"
)

// Flag values with special meaning.
const (
	PromoExperimentVariant = "variant"
	ChurnedPromoNone       = "none"
)

// Set maps flag keys to evaluated values. A Set is never mutated after it is
// published; callers may read it concurrently.
type Set map[string]any

// Get returns the value of key in s when it holds a T, otherwise def.
func Get[T any](s Set, key string, def T) T {
	v, ok := s[key]
	if !ok {
		return def
	}
	t, ok := v.(T)
	if !ok {
		return def
	}
	return t
}

// Bool is Get for boolean flags.
func (s Set) Bool(key string, def bool) bool {
	return Get(s, key, def)
}

// String is Get for string flags.
func (s Set) String(key, def string) string {
	return Get(s, key, def)
}

// merge returns a new Set holding base overlaid with over.
func merge(base, over Set) Set {
	out := make(Set, len(base)+len(over))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range over {
		out[k] = v
	}
	return out
}
