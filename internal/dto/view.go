package dto

import "github.com/noah-isme/maintenance-tracker-api/internal/view"

// ViewQuery describes a table projection.
type ViewQuery struct {
	Filters   map[string][]string   `json:"filters,omitempty"`
	Ranges    map[string]RangeQuery `json:"ranges,omitempty"`
	Search    string                `json:"search"`
	Sort      string                `json:"sort,omitempty"`
	Direction view.Direction        `json:"direction,omitempty"`
	GroupBy   string                `json:"groupBy,omitempty"`
	Expand    []string              `json:"expand,omitempty"`
}

// RangeQuery bounds a numeric or date column. Bounds are parsed per column type.
type RangeQuery struct {
	Min string `json:"min,omitempty"`
	Max string `json:"max,omitempty"`
}

// ViewResponse is a rendered projection.
type ViewResponse[R view.Row] struct {
	Collection string         `json:"collection"`
	Columns    []string       `json:"columns"`
	Lines      []view.Line[R] `json:"lines"`
	Total      int            `json:"total"`
	Matched    int            `json:"matched"`
	Grouped    bool           `json:"grouped"`
	State      view.State     `json:"state"`
}
