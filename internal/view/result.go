package view

// LineKind distinguishes group headers from data rows in a rendered projection.
type LineKind string

const (
	LineRow   LineKind = "row"
	LineGroup LineKind = "group"
)

// GroupHeader summarises one group.
type GroupHeader struct {
	Key      string `json:"key"`
	Count    int    `json:"count"`
	Expanded bool   `json:"expanded"`
}

// Line is one visible table line: either a group header or a row.
type Line[R Row] struct {
	Kind  LineKind     `json:"kind"`
	Row   *R           `json:"row,omitempty"`
	Group *GroupHeader `json:"group,omitempty"`
}

// Group is an ordered partition of the projected rows.
type Group[R Row] struct {
	Key      string `json:"key"`
	Rows     []R    `json:"rows"`
	Expanded bool   `json:"expanded"`
}

// Result is a projection. Rows is the flat filtered and sorted sequence, Groups is nil
// when ungrouped, and Lines is what a table currently shows.
type Result[R Row] struct {
	Rows   []R        `json:"-"`
	Groups []Group[R] `json:"-"`
	Lines  []Line[R]  `json:"lines"`
	Total  int        `json:"total"`
}

// Matched returns the number of rows that passed filtering and search.
func (r Result[R]) Matched() int {
	return len(r.Rows)
}

// Grouped reports whether the projection is partitioned.
func (r Result[R]) Grouped() bool {
	return r.Groups != nil
}
