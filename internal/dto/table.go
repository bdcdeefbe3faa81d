package dto

import (
	"encoding/json"
	"time"

	"github.com/noah-isme/maintenance-tracker-api/internal/view"
)

// CreateTableRequest opens a server-held table session.
type CreateTableRequest struct {
	View *ViewQuery `json:"view,omitempty"`
}

// TableViewRequest updates the view configuration of a table session. Nil members are left unchanged.
type TableViewRequest struct {
	Filters   map[string][]string   `json:"filters,omitempty"`
	Ranges    map[string]RangeQuery `json:"ranges,omitempty"`
	Search    *string               `json:"search,omitempty"`
	Sort      *string               `json:"sort,omitempty"`
	Direction *string               `json:"direction,omitempty"`
	GroupBy   *string               `json:"groupBy,omitempty"`
}

// BeginEditRequest starts editing one cell.
type BeginEditRequest struct {
	RowID string `json:"rowId" validate:"required"`
	Field string `json:"field" validate:"required"`
}

// EditValueRequest replaces the buffered value of the active edit.
type EditValueRequest struct {
	Value json.RawMessage `json:"value" validate:"required"`
}

// EditState reports the edit session of a table.
type EditState struct {
	Phase string          `json:"phase"`
	RowID string          `json:"rowId,omitempty"`
	Field string          `json:"field,omitempty"`
	Value json.RawMessage `json:"value,omitempty"`
	Error string          `json:"error,omitempty"`
}

// TableLine is one visible line of a table session. Cells reflect pending edits.
type TableLine struct {
	Kind  view.LineKind     `json:"kind"`
	Group *view.GroupHeader `json:"group,omitempty"`
	ID    string            `json:"id,omitempty"`
	Cells map[string]any    `json:"cells,omitempty"`
}

// TableView is the rendered projection of a table session.
type TableView struct {
	Lines   []TableLine `json:"lines"`
	Total   int         `json:"total"`
	Matched int         `json:"matched"`
	Grouped bool        `json:"grouped"`
	State   view.State  `json:"state"`
}

// TableResponse is the current state of a table session.
type TableResponse struct {
	ID         string    `json:"id"`
	Collection string    `json:"collection"`
	Columns    []string  `json:"columns"`
	Editable   []string  `json:"editable"`
	View       TableView `json:"view"`
	Edit       EditState `json:"edit"`
	Stale      bool      `json:"stale"`
	FetchError string    `json:"fetchError,omitempty"`
	LoadedAt   time.Time `json:"loadedAt"`
}
