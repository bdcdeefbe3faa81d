package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRow struct {
	id     string
	values map[string]any
}

func (r testRow) Fields() []string {
	return []string{"id", "name", "status", "hours", "installed", "parts"}
}

func (r testRow) Field(name string) (any, bool) {
	if name == "id" {
		return r.id, true
	}
	v, ok := r.values[name]
	return v, ok
}

func row(id string, kv ...any) testRow {
	values := map[string]any{}
	for i := 0; i+1 < len(kv); i += 2 {
		values[kv[i].(string)] = kv[i+1]
	}
	return testRow{id: id, values: values}
}

func ids(rows []testRow) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.id)
	}
	return out
}

func fixture() []testRow {
	return []testRow{
		row("1", "name", "Lathe", "status", "Down", "hours", 4.0, "installed", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)),
		row("2", "name", "Press", "status", "Operational", "hours", 10.0, "installed", time.Date(2019, 5, 1, 0, 0, 0, 0, time.UTC)),
		row("3", "name", "Conveyor", "status", "Down", "hours", 4.0, "installed", time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)),
		row("4", "name", "Welder", "status", "Retired", "hours", 2.0),
		row("5", "name", "Drill", "status", "Operational", "hours", 4.0, "parts", []string{"bit", "chuck"}),
	}
}

func TestProjectWithoutStateKeepsStorageOrder(t *testing.T) {
	engine := NewEngine[testRow]()
	res := engine.Project(fixture())

	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, ids(res.Rows))
	assert.False(t, res.Grouped())
	assert.Len(t, res.Lines, 5)
	assert.Equal(t, LineRow, res.Lines[0].Kind)
	assert.Equal(t, 5, res.Total)
}

func TestFiltersAreANDedAndIdempotent(t *testing.T) {
	engine := NewEngine[testRow]()
	engine.SetFilterValues("status", "Down", "Operational")
	engine.SetFilter("hours", Range{Max: 5.0})

	first := engine.Project(fixture())
	assert.Equal(t, []string{"1", "3", "5"}, ids(first.Rows))

	second := engine.Project(first.Rows)
	assert.Equal(t, ids(first.Rows), ids(second.Rows))
}

func TestFilterOnMissingFieldNeverMatches(t *testing.T) {
	engine := NewEngine[testRow]()
	engine.SetFilterValues("parts", "bit")
	res := engine.Project(fixture())
	assert.Equal(t, []string{"5"}, ids(res.Rows))

	engine.SetFilterValues("parts")
	res = engine.Project(fixture())
	assert.Len(t, res.Rows, 5, "empty selection clears the filter")
}

func TestGlobalSearch(t *testing.T) {
	engine := NewEngine[testRow]()
	engine.SetSearch("")
	assert.Len(t, engine.Project(fixture()).Rows, 5)

	engine.SetSearch("PRESS")
	assert.Equal(t, []string{"2"}, ids(engine.Project(fixture()).Rows))

	engine.SetSearch("2021-03")
	assert.Equal(t, []string{"3"}, ids(engine.Project(fixture()).Rows))
}

func TestSortIsStable(t *testing.T) {
	engine := NewEngine[testRow]()
	engine.SetSort("hours", Ascending)
	res := engine.Project(fixture())
	assert.Equal(t, []string{"4", "1", "3", "5", "2"}, ids(res.Rows))

	engine.SetSort("hours", Descending)
	res = engine.Project(fixture())
	assert.Equal(t, []string{"2", "1", "3", "5", "4"}, ids(res.Rows))
}

func TestSortNumbersNumericallyAndMissingLast(t *testing.T) {
	rows := []testRow{
		row("a", "hours", 10.0),
		row("b"),
		row("c", "hours", 9.0),
	}
	engine := NewEngine[testRow]()
	engine.SetSort("hours", Ascending)
	assert.Equal(t, []string{"c", "a", "b"}, ids(engine.Project(rows).Rows))
	engine.SetSort("hours", Descending)
	assert.Equal(t, []string{"a", "c", "b"}, ids(engine.Project(rows).Rows))
}

func TestSortDatesByInstant(t *testing.T) {
	engine := NewEngine[testRow]()
	engine.SetFilterValues("status", "Down", "Operational")
	engine.SetSort("installed", Ascending)
	res := engine.Project(fixture())
	assert.Equal(t, []string{"2", "1", "3", "5"}, ids(res.Rows))
}

func TestToggleSortCycles(t *testing.T) {
	engine := NewEngine[testRow]()

	spec := engine.ToggleSort("name")
	require.NotNil(t, spec)
	assert.Equal(t, Ascending, spec.Direction)

	spec = engine.ToggleSort("name")
	require.NotNil(t, spec)
	assert.Equal(t, Descending, spec.Direction)

	assert.Nil(t, engine.ToggleSort("name"))
	assert.Nil(t, engine.State().Sort)

	engine.ToggleSort("name")
	spec = engine.ToggleSort("hours")
	require.NotNil(t, spec)
	assert.Equal(t, SortSpec{Field: "hours", Direction: Ascending}, *spec)
}

func TestGroupingPreservesFirstSeenOrderAndDefaultsCollapsed(t *testing.T) {
	engine := NewEngine[testRow]()
	engine.SetGroupBy("status")
	res := engine.Project(fixture())

	require.True(t, res.Grouped())
	keys := []string{}
	for _, g := range res.Groups {
		keys = append(keys, g.Key)
		assert.False(t, g.Expanded)
	}
	assert.Equal(t, []string{"Down", "Operational", "Retired"}, keys)
	assert.Len(t, res.Lines, 3)
	assert.Equal(t, 2, res.Lines[0].Group.Count)
}

func TestToggleGroupDoesNotReproject(t *testing.T) {
	engine := NewEngine[testRow]()
	engine.SetGroupBy("status")
	rows := fixture()
	before := engine.Project(rows)

	// mutate the input; a toggle must reuse the cached projection
	rows[0].values["status"] = "Retired"

	res, ok := engine.ToggleGroup("Down")
	require.True(t, ok)
	require.Len(t, res.Lines, 5)
	assert.Equal(t, LineGroup, res.Lines[0].Kind)
	assert.True(t, res.Lines[0].Group.Expanded)
	assert.Equal(t, "1", res.Lines[1].Row.id)
	assert.Equal(t, "3", res.Lines[2].Row.id)
	assert.False(t, before.Groups[0].Expanded, "earlier results are not mutated")

	res, ok = engine.ToggleGroup("Down")
	require.True(t, ok)
	assert.Len(t, res.Lines, 3)

	_, ok = engine.ToggleGroup("Unknown")
	assert.False(t, ok)
}

func TestGroupingRoundTripRestoresOrder(t *testing.T) {
	engine := NewEngine[testRow]()
	engine.SetSort("hours", Descending)
	plain := engine.Project(fixture())

	engine.SetGroupBy("status")
	grouped := engine.Project(fixture())
	assert.True(t, grouped.Grouped())

	engine.SetGroupBy("")
	restored := engine.Project(fixture())
	assert.Equal(t, ids(plain.Rows), ids(restored.Rows))
	assert.Equal(t, ids(plain.Rows), ids(grouped.Rows))
	assert.Len(t, restored.Lines, len(plain.Lines))
}

func TestGroupingByFieldWithoutValuesIsUngrouped(t *testing.T) {
	engine := NewEngine[testRow]()
	engine.SetGroupBy("nonexistent")
	res := engine.Project(fixture())
	assert.False(t, res.Grouped())
	assert.Len(t, res.Lines, 5)

	_, ok := engine.ToggleGroup("")
	assert.False(t, ok)
}

func TestStateSnapshot(t *testing.T) {
	engine := NewEngine[testRow]()
	engine.SetFilterValues("status", "Down")
	engine.SetSearch("lathe")
	engine.SetGroupBy("status")
	engine.Project(fixture())
	engine.ToggleGroup("Down")

	st := engine.State()
	assert.Equal(t, In("Down"), st.Filters["status"])
	assert.Equal(t, "lathe", st.Search)
	assert.Equal(t, []string{"Down"}, st.Expanded)

	engine.SetGroupBy("name")
	assert.Empty(t, engine.State().Expanded)
}

func TestCompareAndStringify(t *testing.T) {
	assert.Equal(t, -1, Compare(2.0, 10.0))
	assert.Equal(t, 1, Compare("b", "a"))
	assert.Equal(t, "bit, chuck", Stringify([]string{"bit", "chuck"}))
	assert.Equal(t, "2.5", Stringify(2.5))
	assert.Equal(t, "", Stringify(time.Time{}))
}
