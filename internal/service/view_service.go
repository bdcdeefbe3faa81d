package service

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/noah-isme/maintenance-tracker-api/internal/dto"
	"github.com/noah-isme/maintenance-tracker-api/internal/models"
	"github.com/noah-isme/maintenance-tracker-api/internal/view"
	appErrors "github.com/noah-isme/maintenance-tracker-api/pkg/errors"
)

type equipmentLister interface {
	List(ctx context.Context) ([]models.Equipment, error)
}

type enrichedLister interface {
	Enriched(ctx context.Context) ([]models.EnrichedMaintenanceRecord, error)
}

// ViewService renders stateless projections of the collections. The maintenance
// collection is projected through the equipment join.
type ViewService struct {
	equipment   equipmentLister
	maintenance enrichedLister
}

// NewViewService constructs a ViewService.
func NewViewService(equipment equipmentLister, maintenance enrichedLister) *ViewService {
	return &ViewService{equipment: equipment, maintenance: maintenance}
}

// Equipment projects the equipment collection.
func (s *ViewService) Equipment(ctx context.Context, q dto.ViewQuery) (*dto.ViewResponse[models.Equipment], error) {
	rows, err := s.equipment.List(ctx)
	if err != nil {
		return nil, err
	}
	return renderView(CollectionEquipment, rows, q)
}

// Maintenance projects the joined maintenance collection.
func (s *ViewService) Maintenance(ctx context.Context, q dto.ViewQuery) (*dto.ViewResponse[models.EnrichedMaintenanceRecord], error) {
	rows, err := s.maintenance.Enriched(ctx)
	if err != nil {
		return nil, err
	}
	return renderView(CollectionMaintenance, rows, q)
}

// Columns lists the projectable columns of a collection.
func Columns(collection string) ([]string, error) {
	switch collection {
	case CollectionEquipment:
		return models.Equipment{}.Fields(), nil
	case CollectionMaintenance:
		return models.EnrichedMaintenanceRecord{}.Fields(), nil
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("unknown collection %q", collection))
}

func renderView[R view.Row](collection string, rows []R, q dto.ViewQuery) (*dto.ViewResponse[R], error) {
	columns, err := Columns(collection)
	if err != nil {
		return nil, err
	}
	engine := view.NewEngine[R]()
	if err := ApplyQuery(engine, columns, q); err != nil {
		return nil, err
	}
	result := engine.Project(rows)
	for _, key := range uniq(q.Expand) {
		if toggled, ok := engine.ToggleGroup(key); ok {
			result = toggled
		}
	}
	return newViewResponse(collection, columns, result, engine.State()), nil
}

func newViewResponse[R view.Row](collection string, columns []string, result view.Result[R], state view.State) *dto.ViewResponse[R] {
	return &dto.ViewResponse[R]{
		Collection: collection,
		Columns:    columns,
		Lines:      result.Lines,
		Total:      result.Total,
		Matched:    result.Matched(),
		Grouped:    result.Grouped(),
		State:      state,
	}
}

// ApplyQuery configures engine from q. Unknown columns are rejected and leave engine untouched.
func ApplyQuery[R view.Row](engine *view.Engine[R], columns []string, q dto.ViewQuery) error {
	plan, err := planView(columns, viewRequest(q))
	if err != nil {
		return err
	}
	applyPlan(engine, plan)
	return nil
}

// viewPlan is a fully validated view update. Nil members leave the engine unchanged.
type viewPlan struct {
	filters map[string][]string
	ranges  map[string]*view.Range
	search  *string
	sort    *view.SortSpec
	groupBy *string
}

// planView checks every part of req before anything is applied, so a rejected request
// changes nothing.
func planView(columns []string, req dto.TableViewRequest) (viewPlan, error) {
	plan := viewPlan{search: req.Search, groupBy: req.GroupBy}
	for _, field := range sortedKeys(req.Filters) {
		if err := checkColumn(columns, field); err != nil {
			return viewPlan{}, err
		}
	}
	plan.filters = req.Filters
	if len(req.Ranges) > 0 {
		plan.ranges = make(map[string]*view.Range, len(req.Ranges))
	}
	for _, field := range sortedKeys(req.Ranges) {
		if err := checkColumn(columns, field); err != nil {
			return viewPlan{}, err
		}
		bounds := req.Ranges[field]
		if bounds.Min == "" && bounds.Max == "" {
			plan.ranges[field] = nil
			continue
		}
		lo, err := parseBound(field, bounds.Min, false)
		if err != nil {
			return viewPlan{}, err
		}
		hi, err := parseBound(field, bounds.Max, true)
		if err != nil {
			return viewPlan{}, err
		}
		plan.ranges[field] = &view.Range{Min: lo, Max: hi}
	}
	if req.Sort != nil {
		spec := view.SortSpec{Field: *req.Sort}
		if spec.Field != "" {
			if err := checkColumn(columns, spec.Field); err != nil {
				return viewPlan{}, err
			}
			dir := ""
			if req.Direction != nil {
				dir = *req.Direction
			}
			direction, err := ParseDirection(dir)
			if err != nil {
				return viewPlan{}, err
			}
			spec.Direction = direction
		}
		plan.sort = &spec
	}
	if req.GroupBy != nil && *req.GroupBy != "" {
		if err := checkColumn(columns, *req.GroupBy); err != nil {
			return viewPlan{}, err
		}
	}
	return plan, nil
}

func applyPlan[R view.Row](engine *view.Engine[R], plan viewPlan) {
	for _, field := range sortedKeys(plan.filters) {
		engine.SetFilterValues(field, plan.filters[field]...)
	}
	for _, field := range sortedKeys(plan.ranges) {
		if r := plan.ranges[field]; r != nil {
			engine.SetFilter(field, *r)
		} else {
			engine.ClearFilter(field)
		}
	}
	if plan.search != nil {
		engine.SetSearch(*plan.search)
	}
	if plan.sort != nil {
		engine.SetSort(plan.sort.Field, plan.sort.Direction)
	}
	if plan.groupBy != nil {
		engine.SetGroupBy(*plan.groupBy)
	}
}

// ParseDirection accepts asc, desc or empty (ascending).
func ParseDirection(raw string) (view.Direction, error) {
	switch strings.ToLower(raw) {
	case "", string(view.Ascending):
		return view.Ascending, nil
	case string(view.Descending):
		return view.Descending, nil
	}
	return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid sort direction %q", raw))
}

func checkColumn(columns []string, field string) error {
	if slices.Contains(columns, field) {
		return nil
	}
	return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown column %q", field))
}

// Columns holding calendar dates; their bounds are parsed as dates before numbers.
var dateColumns = map[string]bool{"installDate": true, "date": true}

// parseBound reads a range bound. Date columns accept YYYY, YYYY-MM, YYYY-MM-DD or RFC 3339;
// a partial upper bound extends to the end of its year or month. Other columns read a number,
// then plain text.
func parseBound(field, raw string, upper bool) (any, error) {
	if raw == "" {
		return nil, nil
	}
	if dateColumns[field] {
		return parseDateBound(field, raw, upper)
	}
	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		return n, nil
	}
	return raw, nil
}

func parseDateBound(field, raw string, upper bool) (any, error) {
	raw = strings.TrimSpace(raw)
	for _, partial := range []struct {
		layout string
		next   func(time.Time) time.Time
	}{
		{"2006", func(t time.Time) time.Time { return t.AddDate(1, 0, 0) }},
		{"2006-01", func(t time.Time) time.Time { return t.AddDate(0, 1, 0) }},
	} {
		if t, err := time.Parse(partial.layout, raw); err == nil {
			if upper {
				return partial.next(t).Add(-time.Nanosecond), nil
			}
			return t, nil
		}
	}
	d, err := models.ParseDate(raw)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid %s bound %q", field, raw))
	}
	return d.Time, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func uniq(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
