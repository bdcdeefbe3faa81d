package view

import (
	"slices"
	"strings"
)

// Direction is a sort direction.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// SortSpec names the single active sort column.
type SortSpec struct {
	Field     string    `json:"field"`
	Direction Direction `json:"direction"`
}

// State is a serializable snapshot of the engine configuration.
type State struct {
	Filters  map[string]Predicate `json:"filters,omitempty"`
	Search   string               `json:"search,omitempty"`
	Sort     *SortSpec            `json:"sort,omitempty"`
	GroupBy  string               `json:"groupBy,omitempty"`
	Expanded []string             `json:"expanded,omitempty"`
}

// Engine holds the view configuration of one table and projects snapshots through it.
// An Engine is not safe for concurrent use.
type Engine[R Row] struct {
	filters  FilterSet
	search   string
	sort     *SortSpec
	groupBy  string
	expanded map[string]bool
	last     *Result[R]
}

// NewEngine returns an engine with no filters, no sort and no grouping.
func NewEngine[R Row]() *Engine[R] {
	return &Engine[R]{expanded: make(map[string]bool)}
}

// SetFilter installs a predicate for field, replacing any existing one.
func (e *Engine[R]) SetFilter(field string, p Predicate) {
	e.filters.Set(field, p)
}

// SetFilterValues selects accepted values for field. An empty selection clears the filter.
func (e *Engine[R]) SetFilterValues(field string, values ...string) {
	if len(values) == 0 {
		e.filters.Remove(field)
		return
	}
	e.filters.Set(field, In(values...))
}

// ClearFilter removes the predicate on field.
func (e *Engine[R]) ClearFilter(field string) {
	e.filters.Remove(field)
}

// SetSearch sets the global search term.
func (e *Engine[R]) SetSearch(term string) {
	e.search = term
}

// SetSort activates a sort on field; an empty field clears sorting.
func (e *Engine[R]) SetSort(field string, dir Direction) {
	if field == "" {
		e.sort = nil
		return
	}
	if dir != Descending {
		dir = Ascending
	}
	e.sort = &SortSpec{Field: field, Direction: dir}
}

// ToggleSort advances field through unsorted, ascending, descending and back to unsorted.
// Toggling a different field than the active one starts it at ascending.
func (e *Engine[R]) ToggleSort(field string) *SortSpec {
	switch {
	case e.sort == nil || e.sort.Field != field:
		e.sort = &SortSpec{Field: field, Direction: Ascending}
	case e.sort.Direction == Ascending:
		e.sort = &SortSpec{Field: field, Direction: Descending}
	default:
		e.sort = nil
	}
	if e.sort == nil {
		return nil
	}
	spec := *e.sort
	return &spec
}

// SetGroupBy groups by field; an empty field disables grouping. Expansion state is reset
// when the group column changes.
func (e *Engine[R]) SetGroupBy(field string) {
	if field != e.groupBy {
		e.expanded = make(map[string]bool)
	}
	e.groupBy = field
}

// State reports the current configuration.
func (e *Engine[R]) State() State {
	st := State{Search: e.search, GroupBy: e.groupBy}
	if e.filters.Len() > 0 {
		st.Filters = e.filters.Snapshot()
	}
	if e.sort != nil {
		spec := *e.sort
		st.Sort = &spec
	}
	for key, open := range e.expanded {
		if open {
			st.Expanded = append(st.Expanded, key)
		}
	}
	slices.Sort(st.Expanded)
	return st
}

// Project filters, searches, sorts and groups rows. The input slice is not modified.
func (e *Engine[R]) Project(rows []R) Result[R] {
	out := make([]R, 0, len(rows))
	term := strings.ToLower(e.search)
	for _, r := range rows {
		if !e.filters.Match(r) {
			continue
		}
		if term != "" && !strings.Contains(searchText(r), term) {
			continue
		}
		out = append(out, r)
	}

	if e.sort != nil {
		sortRows(out, *e.sort)
	}

	res := Result[R]{Rows: out, Total: len(rows)}
	if e.groupBy != "" {
		res.Groups = partition(out, e.groupBy)
	}
	e.applyExpansion(&res)
	e.last = &res
	return res
}

// Last returns the most recent projection.
func (e *Engine[R]) Last() (Result[R], bool) {
	if e.last == nil {
		return Result[R]{}, false
	}
	return *e.last, true
}

// ToggleGroup flips the expansion of the group with key and re-derives the visible
// lines of the last projection without filtering or sorting again.
func (e *Engine[R]) ToggleGroup(key string) (Result[R], bool) {
	if e.last == nil || e.last.Groups == nil {
		return Result[R]{}, false
	}
	found := false
	for _, g := range e.last.Groups {
		if g.Key == key {
			found = true
			break
		}
	}
	if !found {
		return *e.last, false
	}
	e.expanded[key] = !e.expanded[key]
	e.applyExpansion(e.last)
	return *e.last, true
}

func (e *Engine[R]) applyExpansion(res *Result[R]) {
	if res.Groups == nil {
		res.Lines = make([]Line[R], 0, len(res.Rows))
		for i := range res.Rows {
			res.Lines = append(res.Lines, Line[R]{Kind: LineRow, Row: &res.Rows[i]})
		}
		return
	}
	// clone so results handed out earlier keep their flags
	res.Groups = slices.Clone(res.Groups)
	res.Lines = make([]Line[R], 0, len(res.Groups))
	for gi := range res.Groups {
		g := &res.Groups[gi]
		g.Expanded = e.expanded[g.Key]
		res.Lines = append(res.Lines, Line[R]{
			Kind:  LineGroup,
			Group: &GroupHeader{Key: g.Key, Count: len(g.Rows), Expanded: g.Expanded},
		})
		if !g.Expanded {
			continue
		}
		for i := range g.Rows {
			res.Lines = append(res.Lines, Line[R]{Kind: LineRow, Row: &g.Rows[i]})
		}
	}
}

func sortRows[R Row](rows []R, spec SortSpec) {
	slices.SortStableFunc(rows, func(a, b R) int {
		av, aok := a.Field(spec.Field)
		bv, bok := b.Field(spec.Field)
		// rows without a value trail in both directions
		switch {
		case !aok && !bok:
			return 0
		case !aok:
			return 1
		case !bok:
			return -1
		}
		c := Compare(av, bv)
		if spec.Direction == Descending {
			return -c
		}
		return c
	})
}

// partition groups rows by the stringified value of field in first-seen order.
// It returns nil when no row has a value for field.
func partition[R Row](rows []R, field string) []Group[R] {
	var groups []Group[R]
	index := make(map[string]int)
	anyValue := false
	for _, r := range rows {
		v, ok := r.Field(field)
		if ok {
			anyValue = true
		}
		key := Stringify(v)
		i, seen := index[key]
		if !seen {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group[R]{Key: key})
		}
		groups[i].Rows = append(groups[i].Rows, r)
	}
	if !anyValue {
		return nil
	}
	return groups
}
