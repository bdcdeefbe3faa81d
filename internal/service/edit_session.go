package service

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/noah-isme/maintenance-tracker-api/internal/dto"
	"github.com/noah-isme/maintenance-tracker-api/internal/repository"
	"github.com/noah-isme/maintenance-tracker-api/internal/view"
	appErrors "github.com/noah-isme/maintenance-tracker-api/pkg/errors"
)

// EditPhase is the state of an EditSession.
type EditPhase string

const (
	EditViewing EditPhase = "viewing"
	EditEditing EditPhase = "editing"
	EditSaving  EditPhase = "saving"
)

var (
	// ErrSaveInProgress rejects edit transitions while a save is outstanding.
	ErrSaveInProgress = appErrors.Clone(appErrors.ErrConflict, "a save is already in progress")
	// ErrNoActiveEdit rejects value changes and saves outside the editing phase.
	ErrNoActiveEdit = appErrors.Clone(appErrors.ErrConflict, "no edit in progress")
)

// EditableRow is a table row that can be written back by id.
type EditableRow interface {
	view.Row
	RecordID() string
}

// SaveFunc writes a single-field patch and returns the store-confirmed record.
type SaveFunc[R any] func(ctx context.Context, id string, patch repository.Patch) (R, error)

// EditSession buffers an inline edit of one cell of a table snapshot.
//
// Viewing -> Editing on Begin; Editing -> Saving on Save; Saving -> Viewing on success,
// Saving -> Editing with the error retained on failure. Begin on another cell while
// Editing abandons the previous buffer.
type EditSession[R EditableRow] struct {
	mu       sync.Mutex
	editable []string
	save     SaveFunc[R]
	rows     []R

	phase EditPhase
	rowID string
	field string
	value json.RawMessage
	err   error
}

// NewEditSession constructs a session allowing edits of the editable fields.
func NewEditSession[R EditableRow](editable []string, save SaveFunc[R]) *EditSession[R] {
	return &EditSession[R]{editable: editable, save: save, phase: EditViewing}
}

// Editable lists the inline-editable fields.
func (s *EditSession[R]) Editable() []string {
	return slices.Clone(s.editable)
}

// SetRows replaces the local snapshot.
func (s *EditSession[R]) SetRows(rows []R) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = slices.Clone(rows)
}

// Rows returns a copy of the local snapshot.
func (s *EditSession[R]) Rows() []R {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.rows)
}

// Phase reports the current state.
func (s *EditSession[R]) Phase() EditPhase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Begin starts editing field of the row with rowID, buffering its current value.
func (s *EditSession[R]) Begin(rowID, field string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == EditSaving {
		return ErrSaveInProgress
	}
	if !slices.Contains(s.editable, field) {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("field %q is not editable", field))
	}
	i := s.indexOf(rowID)
	if i < 0 {
		return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("row %s not found", rowID))
	}
	current, _ := s.rows[i].Field(field)
	raw, err := json.Marshal(current)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to buffer value")
	}
	s.phase = EditEditing
	s.rowID = rowID
	s.field = field
	s.value = raw
	s.err = nil
	return nil
}

// SetValue replaces the buffered value.
func (s *EditSession[R]) SetValue(value json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.phase {
	case EditSaving:
		return ErrSaveInProgress
	case EditViewing:
		return ErrNoActiveEdit
	}
	if !json.Valid(value) {
		return appErrors.Clone(appErrors.ErrValidation, "value must be valid JSON")
	}
	s.value = slices.Clone(value)
	return nil
}

// Cancel abandons the buffer and returns to viewing.
func (s *EditSession[R]) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == EditSaving {
		return ErrSaveInProgress
	}
	s.reset()
	return nil
}

// Save writes the buffered value. The session stays in the saving phase until the
// store answers; on failure it returns to editing and keeps the buffer.
func (s *EditSession[R]) Save(ctx context.Context) (R, error) {
	var zero R
	s.mu.Lock()
	switch s.phase {
	case EditSaving:
		s.mu.Unlock()
		return zero, ErrSaveInProgress
	case EditViewing:
		s.mu.Unlock()
		return zero, ErrNoActiveEdit
	}
	s.phase = EditSaving
	s.err = nil
	rowID, field, value := s.rowID, s.field, s.value
	s.mu.Unlock()

	saved, err := s.save(ctx, rowID, repository.Patch{field: value})

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.phase = EditEditing
		s.err = err
		return zero, err
	}
	if i := s.indexOf(rowID); i >= 0 {
		s.rows[i] = saved
	}
	s.reset()
	return saved, nil
}

// DisplayValue returns what a table shows for field of row: the buffered value while that
// cell is being edited or saved, otherwise the row's own value.
func (s *EditSession[R]) DisplayValue(row R, field string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != EditViewing && row.RecordID() == s.rowID && field == s.field {
		var v any
		if err := json.Unmarshal(s.value, &v); err == nil {
			return v, true
		}
	}
	return row.Field(field)
}

// State reports the session for clients.
func (s *EditSession[R]) State() dto.EditState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := dto.EditState{Phase: string(s.phase)}
	if s.phase == EditViewing {
		return st
	}
	st.RowID = s.rowID
	st.Field = s.field
	st.Value = slices.Clone(s.value)
	if s.err != nil {
		st.Error = s.err.Error()
	}
	return st
}

func (s *EditSession[R]) reset() {
	s.phase = EditViewing
	s.rowID = ""
	s.field = ""
	s.value = nil
	s.err = nil
}

func (s *EditSession[R]) indexOf(id string) int {
	for i, row := range s.rows {
		if row.RecordID() == id {
			return i
		}
	}
	return -1
}
