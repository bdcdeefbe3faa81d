package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/maintenance-tracker-api/internal/dto"
	"github.com/noah-isme/maintenance-tracker-api/internal/models"
	"github.com/noah-isme/maintenance-tracker-api/internal/view"
	appErrors "github.com/noah-isme/maintenance-tracker-api/pkg/errors"
)

func newTableFixture(t *testing.T) (*TableSessionService, testStores) {
	t.Helper()
	stores := newTestStores(t)
	equipment := NewEquipmentService(stores.equipment, nil, nil, nil)
	maintenance := NewMaintenanceService(stores.maintenance, stores.equipment, nil, nil, nil)
	return NewTableSessionService(equipment, maintenance, nil, TableSessionConfig{}, nil), stores
}

func lineIDs(resp *dto.TableResponse) []string {
	ids := []string{}
	for _, line := range resp.View.Lines {
		if line.Kind == view.LineRow {
			ids = append(ids, line.ID)
		}
	}
	return ids
}

func TestTableSessionOpenAndProject(t *testing.T) {
	svc, _ := newTableFixture(t)
	ctx := context.Background()

	resp, err := svc.Open(ctx, CollectionEquipment, dto.CreateTableRequest{})
	require.NoError(t, err)
	assert.Equal(t, []string{"e1", "e2", "e3"}, lineIDs(resp))
	assert.Equal(t, []string{"status"}, resp.Editable)
	assert.Equal(t, 1, svc.Len())

	status := "status"
	resp, err = svc.UpdateView(resp.ID, dto.TableViewRequest{Filters: map[string][]string{"status": {"Operational"}}, Sort: &status})
	require.NoError(t, err)
	assert.Equal(t, []string{"e1", "e3"}, lineIDs(resp))
	assert.Equal(t, 3, resp.View.Total)
	assert.Equal(t, 2, resp.View.Matched)

	_, err = svc.UpdateView(resp.ID, dto.TableViewRequest{Filters: map[string][]string{"colour": {"red"}}})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Open(ctx, "widgets", dto.CreateTableRequest{})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestTableSessionRejectedViewChangesNothing(t *testing.T) {
	svc, _ := newTableFixture(t)
	resp, err := svc.Open(context.Background(), CollectionEquipment, dto.CreateTableRequest{})
	require.NoError(t, err)

	bad := "nope"
	_, err = svc.UpdateView(resp.ID, dto.TableViewRequest{Filters: map[string][]string{"status": {"Retired"}}, Sort: &bad})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	name, sideways := "name", "sideways"
	_, err = svc.UpdateView(resp.ID, dto.TableViewRequest{Ranges: map[string]dto.RangeQuery{"installDate": {Min: "2020"}}, Sort: &name, Direction: &sideways})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	current, err := svc.Get(resp.ID)
	require.NoError(t, err)
	assert.Empty(t, current.View.State.Filters)
	assert.Nil(t, current.View.State.Sort)

	sorted, err := svc.ToggleSort(resp.ID, "name")
	require.NoError(t, err)
	assert.Equal(t, []string{"e1", "e2", "e3"}, lineIDs(sorted))
}

func TestTableSessionToggleSortCycle(t *testing.T) {
	svc, _ := newTableFixture(t)
	resp, err := svc.Open(context.Background(), CollectionEquipment, dto.CreateTableRequest{})
	require.NoError(t, err)

	resp, err = svc.ToggleSort(resp.ID, "name")
	require.NoError(t, err)
	assert.Equal(t, []string{"e1", "e2", "e3"}, lineIDs(resp))
	require.NotNil(t, resp.View.State.Sort)
	assert.Equal(t, view.Ascending, resp.View.State.Sort.Direction)

	resp, err = svc.ToggleSort(resp.ID, "name")
	require.NoError(t, err)
	assert.Equal(t, []string{"e3", "e2", "e1"}, lineIDs(resp))

	resp, err = svc.ToggleSort(resp.ID, "name")
	require.NoError(t, err)
	assert.Nil(t, resp.View.State.Sort)
	assert.Equal(t, []string{"e1", "e2", "e3"}, lineIDs(resp))
}

func TestTableSessionGrouping(t *testing.T) {
	svc, _ := newTableFixture(t)
	group := "status"
	resp, err := svc.Open(context.Background(), CollectionEquipment, dto.CreateTableRequest{View: &dto.ViewQuery{GroupBy: group}})
	require.NoError(t, err)
	require.True(t, resp.View.Grouped)
	require.Len(t, resp.View.Lines, 2)
	assert.Equal(t, "Operational", resp.View.Lines[0].Group.Key)
	assert.Equal(t, 2, resp.View.Lines[0].Group.Count)

	resp, err = svc.ToggleGroup(resp.ID, "Operational")
	require.NoError(t, err)
	assert.Equal(t, []string{"e1", "e3"}, lineIDs(resp))

	_, err = svc.ToggleGroup(resp.ID, "Retired")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	none := ""
	resp, err = svc.UpdateView(resp.ID, dto.TableViewRequest{GroupBy: &none})
	require.NoError(t, err)
	assert.False(t, resp.View.Grouped)
	assert.Equal(t, []string{"e1", "e2", "e3"}, lineIDs(resp))
}

func TestTableSessionInlineEdit(t *testing.T) {
	svc, stores := newTableFixture(t)
	ctx := context.Background()
	resp, err := svc.Open(ctx, CollectionEquipment, dto.CreateTableRequest{})
	require.NoError(t, err)

	resp, err = svc.BeginEdit(resp.ID, dto.BeginEditRequest{RowID: "e2", Field: "status"})
	require.NoError(t, err)
	assert.Equal(t, string(EditEditing), resp.Edit.Phase)

	resp, err = svc.SetEditValue(resp.ID, dto.EditValueRequest{Value: json.RawMessage(`"Operational"`)})
	require.NoError(t, err)
	assert.Equal(t, "Operational", resp.View.Lines[1].Cells["status"], "cells show the pending value")

	resp, err = svc.SaveEdit(ctx, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, string(EditViewing), resp.Edit.Phase)
	assert.Equal(t, "Operational", resp.View.Lines[1].Cells["status"])

	persisted, err := stores.equipment.FindByID(ctx, "e2")
	require.NoError(t, err)
	assert.Equal(t, models.StatusOperational, persisted.Status)
}

func TestTableSessionMaintenanceEditKeepsJoin(t *testing.T) {
	svc, _ := newTableFixture(t)
	ctx := context.Background()
	resp, err := svc.Open(ctx, CollectionMaintenance, dto.CreateTableRequest{})
	require.NoError(t, err)
	assert.Equal(t, "Lathe", resp.View.Lines[0].Cells["equipmentName"])
	assert.Equal(t, models.UnresolvedEquipmentName, resp.View.Lines[2].Cells["equipmentName"])
	_, hasDept := resp.View.Lines[2].Cells["department"]
	assert.False(t, hasDept)

	_, err = svc.BeginEdit(resp.ID, dto.BeginEditRequest{RowID: "m1", Field: "completionStatus"})
	require.NoError(t, err)
	_, err = svc.SetEditValue(resp.ID, dto.EditValueRequest{Value: json.RawMessage(`"Incomplete"`)})
	require.NoError(t, err)
	resp, err = svc.SaveEdit(ctx, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, "Incomplete", resp.View.Lines[0].Cells["completionStatus"])
	assert.Equal(t, "Lathe", resp.View.Lines[0].Cells["equipmentName"])
}

func TestTableSessionRefreshFailureKeepsSnapshot(t *testing.T) {
	stores := newTestStores(t)
	equipment := NewEquipmentService(stores.equipment, nil, nil, nil)
	svc := NewTableSessionService(equipment, nil, nil, TableSessionConfig{}, nil)
	ctx := context.Background()
	resp, err := svc.Open(ctx, CollectionEquipment, dto.CreateTableRequest{})
	require.NoError(t, err)

	equipment.store = failingStore[models.Equipment]{}
	resp, err = svc.Refresh(ctx, resp.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrStoreUnavailable)
	require.NotNil(t, resp)
	assert.Equal(t, "backend offline", resp.FetchError)
	assert.Equal(t, []string{"e1", "e2", "e3"}, lineIDs(resp))

	equipment.store = stores.equipment
	resp, err = svc.Refresh(ctx, resp.ID)
	require.NoError(t, err)
	assert.Empty(t, resp.FetchError)
}

func TestTableSessionStaleAndClose(t *testing.T) {
	svc, _ := newTableFixture(t)
	ctx := context.Background()
	resp, err := svc.Open(ctx, CollectionEquipment, dto.CreateTableRequest{})
	require.NoError(t, err)
	assert.False(t, resp.Stale)

	svc.CollectionChanged(ctx, ChangeEvent{Collection: CollectionMaintenance})
	resp, err = svc.Get(resp.ID)
	require.NoError(t, err)
	assert.False(t, resp.Stale)

	svc.CollectionChanged(ctx, ChangeEvent{Collection: CollectionEquipment})
	resp, err = svc.Get(resp.ID)
	require.NoError(t, err)
	assert.True(t, resp.Stale)

	require.NoError(t, svc.Close(resp.ID))
	_, err = svc.Get(resp.ID)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	assert.ErrorIs(t, svc.Close(resp.ID), appErrors.ErrNotFound)
}

func TestTableSessionEviction(t *testing.T) {
	stores := newTestStores(t)
	equipment := NewEquipmentService(stores.equipment, nil, nil, nil)
	svc := NewTableSessionService(equipment, nil, nil, TableSessionConfig{TTL: time.Minute, MaxSessions: 2}, nil)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	ctx := context.Background()

	first, err := svc.Open(ctx, CollectionEquipment, dto.CreateTableRequest{})
	require.NoError(t, err)
	now = now.Add(time.Second)
	second, err := svc.Open(ctx, CollectionEquipment, dto.CreateTableRequest{})
	require.NoError(t, err)
	now = now.Add(time.Second)
	_, err = svc.Open(ctx, CollectionEquipment, dto.CreateTableRequest{})
	require.NoError(t, err)

	assert.Equal(t, 2, svc.Len())
	_, err = svc.Get(first.ID)
	assert.ErrorIs(t, err, appErrors.ErrNotFound, "least recently used table is evicted")

	now = now.Add(2 * time.Minute)
	_, err = svc.Open(ctx, CollectionEquipment, dto.CreateTableRequest{})
	require.NoError(t, err)
	_, err = svc.Get(second.ID)
	assert.ErrorIs(t, err, appErrors.ErrNotFound, "expired tables are evicted")
	assert.Equal(t, 1, svc.Len())
}
