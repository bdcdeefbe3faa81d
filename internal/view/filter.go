package view

import "slices"

// Predicate decides whether a column value is accepted.
type Predicate interface {
	Match(value any, present bool) bool
}

// OneOf accepts values whose stringified form is one of Values. A list value
// is accepted when any element is.
type OneOf struct {
	Values []string `json:"values"`
}

// In builds a OneOf predicate.
func In(values ...string) OneOf {
	return OneOf{Values: values}
}

func (p OneOf) Match(value any, present bool) bool {
	if !present {
		return false
	}
	if list, ok := value.([]string); ok {
		for _, item := range list {
			if slices.Contains(p.Values, item) {
				return true
			}
		}
		return false
	}
	return slices.Contains(p.Values, Stringify(value))
}

// Range accepts values within [Min, Max]; a nil bound is open.
type Range struct {
	Min any `json:"min,omitempty"`
	Max any `json:"max,omitempty"`
}

func (p Range) Match(value any, present bool) bool {
	if !present {
		return false
	}
	if p.Min != nil && Compare(value, p.Min) < 0 {
		return false
	}
	if p.Max != nil && Compare(value, p.Max) > 0 {
		return false
	}
	return true
}

// FilterSet is a set of per-column predicates combined with AND.
type FilterSet struct {
	order      []string
	predicates map[string]Predicate
}

// Set installs or replaces the predicate for field.
func (f *FilterSet) Set(field string, p Predicate) {
	if f.predicates == nil {
		f.predicates = make(map[string]Predicate)
	}
	if _, exists := f.predicates[field]; !exists {
		f.order = append(f.order, field)
	}
	f.predicates[field] = p
}

// Remove drops the predicate for field.
func (f *FilterSet) Remove(field string) {
	if _, exists := f.predicates[field]; !exists {
		return
	}
	delete(f.predicates, field)
	f.order = slices.DeleteFunc(f.order, func(name string) bool { return name == field })
}

// Len returns the number of active predicates.
func (f *FilterSet) Len() int { return len(f.order) }

// Match reports whether r satisfies every predicate.
func (f *FilterSet) Match(r Row) bool {
	for _, field := range f.order {
		value, ok := r.Field(field)
		if !f.predicates[field].Match(value, ok) {
			return false
		}
	}
	return true
}

// Snapshot returns the active predicates keyed by field.
func (f *FilterSet) Snapshot() map[string]Predicate {
	out := make(map[string]Predicate, len(f.order))
	for _, field := range f.order {
		out[field] = f.predicates[field]
	}
	return out
}
