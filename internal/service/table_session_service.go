package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/maintenance-tracker-api/internal/dto"
	"github.com/noah-isme/maintenance-tracker-api/internal/models"
	"github.com/noah-isme/maintenance-tracker-api/internal/repository"
	"github.com/noah-isme/maintenance-tracker-api/internal/view"
	appErrors "github.com/noah-isme/maintenance-tracker-api/pkg/errors"
)

// Inline-editable columns per collection.
var (
	EquipmentEditable   = []string{"status"}
	MaintenanceEditable = []string{"completionStatus"}
)

type equipmentTableSource interface {
	List(ctx context.Context) ([]models.Equipment, error)
	Update(ctx context.Context, id string, patch repository.Patch) (models.Equipment, error)
}

type maintenanceTableSource interface {
	Enriched(ctx context.Context) ([]models.EnrichedMaintenanceRecord, error)
	UpdateEnriched(ctx context.Context, id string, patch repository.Patch) (models.EnrichedMaintenanceRecord, error)
}

// tableSession is the collection-independent surface of a server-held table.
type tableSession interface {
	collectionName() string
	lastUsed() time.Time
	markStale()
	response() dto.TableResponse
	applyView(req dto.TableViewRequest) error
	toggleSort(field string) error
	toggleGroup(key string) error
	refresh(ctx context.Context) error
	beginEdit(rowID, field string) error
	setEditValue(value json.RawMessage) error
	saveEdit(ctx context.Context) error
	cancelEdit() error
}

// TableSessionConfig tunes session lifetime.
type TableSessionConfig struct {
	TTL         time.Duration
	MaxSessions int
}

// TableSessionService keeps ViewEngine and EditSession state per open table.
type TableSessionService struct {
	mu          sync.Mutex
	sessions    map[string]tableSession
	equipment   equipmentTableSource
	maintenance maintenanceTableSource
	metrics     *MetricsService
	logger      *zap.Logger
	cfg         TableSessionConfig
	now         func() time.Time
}

// NewTableSessionService constructs the service.
func NewTableSessionService(equipment equipmentTableSource, maintenance maintenanceTableSource, metrics *MetricsService, cfg TableSessionConfig, logger *zap.Logger) *TableSessionService {
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Minute
	}
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = 256
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TableSessionService{
		sessions:    make(map[string]tableSession),
		equipment:   equipment,
		maintenance: maintenance,
		metrics:     metrics,
		logger:      logger,
		cfg:         cfg,
		now:         time.Now,
	}
}

// Open loads a collection snapshot into a new table session.
func (s *TableSessionService) Open(ctx context.Context, collection string, req dto.CreateTableRequest) (*dto.TableResponse, error) {
	id := repository.NewRecordID()
	var session tableSession
	switch collection {
	case CollectionEquipment:
		session = newTable(id, collection, EquipmentEditable, s.equipment.List, s.equipment.Update, s.now)
	case CollectionMaintenance:
		session = newTable(id, collection, MaintenanceEditable, s.maintenance.Enriched, s.maintenance.UpdateEnriched, s.now)
	default:
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("unknown collection %q", collection))
	}
	if err := session.refresh(ctx); err != nil {
		return nil, err
	}
	if req.View != nil {
		if err := session.applyView(viewRequest(*req.View)); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	s.evictLocked()
	s.sessions[id] = session
	count := len(s.sessions)
	s.mu.Unlock()

	s.metrics.SetTableSessions(count)
	s.logger.Debug("table session opened", zap.String("table_id", id), zap.String("collection", collection))
	resp := session.response()
	return &resp, nil
}

// Get returns the current state of a table.
func (s *TableSessionService) Get(id string) (*dto.TableResponse, error) {
	return s.with(id, func(t tableSession) error { return nil })
}

// UpdateView applies filter, search, sort and grouping changes.
func (s *TableSessionService) UpdateView(id string, req dto.TableViewRequest) (*dto.TableResponse, error) {
	return s.with(id, func(t tableSession) error { return t.applyView(req) })
}

// ToggleSort cycles the sort of field.
func (s *TableSessionService) ToggleSort(id, field string) (*dto.TableResponse, error) {
	return s.with(id, func(t tableSession) error { return t.toggleSort(field) })
}

// ToggleGroup expands or collapses a group.
func (s *TableSessionService) ToggleGroup(id, key string) (*dto.TableResponse, error) {
	return s.with(id, func(t tableSession) error { return t.toggleGroup(key) })
}

// Refresh reloads the snapshot. On failure the previous snapshot is kept and the error is
// reported both as the return value and in the table's fetchError.
func (s *TableSessionService) Refresh(ctx context.Context, id string) (*dto.TableResponse, error) {
	return s.with(id, func(t tableSession) error { return t.refresh(ctx) })
}

// BeginEdit starts an inline edit.
func (s *TableSessionService) BeginEdit(id string, req dto.BeginEditRequest) (*dto.TableResponse, error) {
	return s.with(id, func(t tableSession) error { return t.beginEdit(req.RowID, req.Field) })
}

// SetEditValue changes the buffered value of the active edit.
func (s *TableSessionService) SetEditValue(id string, req dto.EditValueRequest) (*dto.TableResponse, error) {
	return s.with(id, func(t tableSession) error { return t.setEditValue(req.Value) })
}

// SaveEdit writes the active edit through the record store.
func (s *TableSessionService) SaveEdit(ctx context.Context, id string) (*dto.TableResponse, error) {
	return s.with(id, func(t tableSession) error { return t.saveEdit(ctx) })
}

// CancelEdit drops the active edit.
func (s *TableSessionService) CancelEdit(id string) (*dto.TableResponse, error) {
	return s.with(id, func(t tableSession) error { return t.cancelEdit() })
}

// Close discards a table session.
func (s *TableSessionService) Close(id string) error {
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	count := len(s.sessions)
	s.mu.Unlock()
	if !ok {
		return s.notFound(id)
	}
	s.metrics.SetTableSessions(count)
	return nil
}

// CollectionChanged flags every table of the collection as stale.
func (s *TableSessionService) CollectionChanged(_ context.Context, event ChangeEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.sessions {
		if t.collectionName() == event.Collection {
			t.markStale()
		}
	}
}

// Len reports the number of open sessions.
func (s *TableSessionService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// with runs fn on a session and returns its state. The state is returned alongside
// fn's error so callers can still render it.
func (s *TableSessionService) with(id string, fn func(tableSession) error) (*dto.TableResponse, error) {
	s.mu.Lock()
	t, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok {
		return nil, s.notFound(id)
	}
	err := fn(t)
	resp := t.response()
	return &resp, err
}

func (s *TableSessionService) notFound(id string) error {
	return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("table %s not found", id))
}

// evictLocked drops expired sessions, then the least recently used ones above capacity.
func (s *TableSessionService) evictLocked() {
	cutoff := s.now().Add(-s.cfg.TTL)
	for id, t := range s.sessions {
		if t.lastUsed().Before(cutoff) {
			delete(s.sessions, id)
		}
	}
	if len(s.sessions) < s.cfg.MaxSessions {
		return
	}
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return s.sessions[ids[i]].lastUsed().Before(s.sessions[ids[j]].lastUsed())
	})
	for _, id := range ids[:len(ids)-s.cfg.MaxSessions+1] {
		delete(s.sessions, id)
	}
}

func viewRequest(q dto.ViewQuery) dto.TableViewRequest {
	dir := string(q.Direction)
	return dto.TableViewRequest{
		Filters:   q.Filters,
		Ranges:    q.Ranges,
		Search:    &q.Search,
		Sort:      &q.Sort,
		Direction: &dir,
		GroupBy:   &q.GroupBy,
	}
}

// table is a tableSession over one row type.
type table[R EditableRow] struct {
	mu         sync.Mutex
	id         string
	collection string
	columns    []string
	engine     *view.Engine[R]
	edit       *EditSession[R]
	load       func(ctx context.Context) ([]R, error)
	now        func() time.Time
	used       time.Time
	loadedAt   time.Time
	stale      bool
	fetchErr   error
}

func newTable[R EditableRow](id, collection string, editable []string, load func(context.Context) ([]R, error), save SaveFunc[R], now func() time.Time) *table[R] {
	var zero R
	return &table[R]{
		id:         id,
		collection: collection,
		columns:    zero.Fields(),
		engine:     view.NewEngine[R](),
		edit:       NewEditSession(editable, save),
		load:       load,
		now:        now,
		used:       now(),
	}
}

func (t *table[R]) collectionName() string { return t.collection }

func (t *table[R]) lastUsed() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.used
}

func (t *table[R]) markStale() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stale = true
}

// project re-runs the pipeline over the edit snapshot. Callers hold t.mu.
func (t *table[R]) project() {
	t.engine.Project(t.edit.Rows())
	t.used = t.now()
}

func (t *table[R]) applyView(req dto.TableViewRequest) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	plan, err := planView(t.columns, req)
	if err != nil {
		return err
	}
	applyPlan(t.engine, plan)
	t.project()
	return nil
}

func (t *table[R]) toggleSort(field string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := checkColumn(t.columns, field); err != nil {
		return err
	}
	t.engine.ToggleSort(field)
	t.project()
	return nil
}

func (t *table[R]) toggleGroup(key string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.engine.ToggleGroup(key); !ok {
		return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("group %q not found", key))
	}
	t.used = t.now()
	return nil
}

func (t *table[R]) refresh(ctx context.Context) error {
	rows, err := t.load(ctx)
	t.mu.Lock()
	defer t.mu.Unlock()
	if err != nil {
		t.fetchErr = err
		t.used = t.now()
		return err
	}
	t.fetchErr = nil
	t.stale = false
	t.loadedAt = t.now()
	t.edit.SetRows(rows)
	t.project()
	return nil
}

func (t *table[R]) beginEdit(rowID, field string) error {
	t.touch()
	return t.edit.Begin(rowID, field)
}

func (t *table[R]) setEditValue(value json.RawMessage) error {
	t.touch()
	return t.edit.SetValue(value)
}

func (t *table[R]) cancelEdit() error {
	t.touch()
	return t.edit.Cancel()
}

// saveEdit does not hold t.mu while the store call is outstanding so readers observe
// the saving phase.
func (t *table[R]) saveEdit(ctx context.Context) error {
	t.touch()
	if _, err := t.edit.Save(ctx); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.project()
	return nil
}

func (t *table[R]) touch() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.used = t.now()
}

func (t *table[R]) response() dto.TableResponse {
	t.mu.Lock()
	defer t.mu.Unlock()
	resp := dto.TableResponse{
		ID:         t.id,
		Collection: t.collection,
		Columns:    t.columns,
		Editable:   t.edit.Editable(),
		Edit:       t.edit.State(),
		Stale:      t.stale,
		LoadedAt:   t.loadedAt,
	}
	if t.fetchErr != nil {
		resp.FetchError = appErrors.FromError(t.fetchErr).Message
	}
	result, ok := t.engine.Last()
	if !ok {
		resp.View = dto.TableView{Lines: []dto.TableLine{}, State: t.engine.State()}
		return resp
	}
	lines := make([]dto.TableLine, 0, len(result.Lines))
	for _, line := range result.Lines {
		if line.Kind == view.LineGroup {
			lines = append(lines, dto.TableLine{Kind: line.Kind, Group: line.Group})
			continue
		}
		row := *line.Row
		cells := make(map[string]any, len(t.columns))
		for _, column := range t.columns {
			if v, ok := t.edit.DisplayValue(row, column); ok {
				cells[column] = v
			}
		}
		lines = append(lines, dto.TableLine{Kind: line.Kind, ID: row.RecordID(), Cells: cells})
	}
	resp.View = dto.TableView{
		Lines:   lines,
		Total:   result.Total,
		Matched: result.Matched(),
		Grouped: result.Grouped(),
		State:   t.engine.State(),
	}
	return resp
}
