package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/maintenance-tracker-api/internal/models"
	"github.com/noah-isme/maintenance-tracker-api/internal/repository"
	appErrors "github.com/noah-isme/maintenance-tracker-api/pkg/errors"
)

func TestEditSessionSaveReplacesRowWithMergedRecord(t *testing.T) {
	stores := newTestStores(t)
	svc := NewEquipmentService(stores.equipment, nil, nil, nil)
	session := NewEditSession[models.Equipment](EquipmentEditable, svc.Update)
	session.SetRows(equipmentFixture())

	require.NoError(t, session.Begin("e1", "status"))
	assert.Equal(t, EditEditing, session.Phase())
	assert.JSONEq(t, `"Operational"`, string(session.State().Value))

	require.NoError(t, session.SetValue(json.RawMessage(`"Down"`)))
	saved, err := session.Save(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.StatusDown, saved.Status)
	assert.Equal(t, EditViewing, session.Phase())
	assert.Equal(t, models.StatusDown, session.Rows()[0].Status)

	persisted, err := stores.equipment.FindByID(context.Background(), "e1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusDown, persisted.Status)
}

func TestEditSessionRejectsNonEditableFieldsAndUnknownRows(t *testing.T) {
	session := NewEditSession[models.Equipment](EquipmentEditable, nil)
	session.SetRows(equipmentFixture())

	err := session.Begin("e1", "name")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	err = session.Begin("zzz", "status")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	assert.Equal(t, EditViewing, session.Phase())

	assert.ErrorIs(t, session.SetValue(json.RawMessage(`"Down"`)), ErrNoActiveEdit)
	_, err = session.Save(context.Background())
	assert.ErrorIs(t, err, ErrNoActiveEdit)
}

func TestEditSessionBeginElsewhereAbandonsBuffer(t *testing.T) {
	session := NewEditSession[models.Equipment](EquipmentEditable, nil)
	session.SetRows(equipmentFixture())

	require.NoError(t, session.Begin("e1", "status"))
	require.NoError(t, session.SetValue(json.RawMessage(`"Retired"`)))
	require.NoError(t, session.Begin("e2", "status"))

	st := session.State()
	assert.Equal(t, "e2", st.RowID)
	assert.JSONEq(t, `"Down"`, string(st.Value))

	value, ok := session.DisplayValue(equipmentFixture()[0], "status")
	require.True(t, ok)
	assert.Equal(t, "Operational", value)

	require.NoError(t, session.Cancel())
	assert.Equal(t, EditViewing, session.Phase())
}

func TestEditSessionWhileSaving(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	save := func(ctx context.Context, id string, patch repository.Patch) (models.Equipment, error) {
		close(started)
		<-release
		return models.Equipment{}, errors.New("disk full")
	}
	session := NewEditSession[models.Equipment](EquipmentEditable, save)
	session.SetRows(equipmentFixture())
	require.NoError(t, session.Begin("e1", "status"))
	require.NoError(t, session.SetValue(json.RawMessage(`"Maintenance"`)))

	done := make(chan error, 1)
	go func() {
		_, err := session.Save(context.Background())
		done <- err
	}()
	<-started

	assert.Equal(t, EditSaving, session.Phase())
	value, ok := session.DisplayValue(equipmentFixture()[0], "status")
	require.True(t, ok)
	assert.Equal(t, "Maintenance", value, "buffered value is displayed while saving")

	assert.ErrorIs(t, session.Begin("e2", "status"), ErrSaveInProgress)
	assert.ErrorIs(t, session.SetValue(json.RawMessage(`"Down"`)), ErrSaveInProgress)
	assert.ErrorIs(t, session.Cancel(), ErrSaveInProgress)
	_, err := session.Save(context.Background())
	assert.ErrorIs(t, err, ErrSaveInProgress)

	close(release)
	require.EqualError(t, <-done, "disk full")

	st := session.State()
	assert.Equal(t, string(EditEditing), st.Phase)
	assert.Equal(t, "e1", st.RowID)
	assert.JSONEq(t, `"Maintenance"`, string(st.Value))
	assert.Equal(t, "disk full", st.Error)
	assert.Equal(t, models.StatusOperational, session.Rows()[0].Status, "snapshot is unchanged after a failed save")
}

func TestEditSessionSaveFailureFromStore(t *testing.T) {
	stores := newTestStores(t)
	svc := NewEquipmentService(stores.equipment, nil, nil, nil)
	session := NewEditSession[models.Equipment](EquipmentEditable, svc.Update)
	session.SetRows(equipmentFixture())

	require.NoError(t, session.Begin("e1", "status"))
	require.NoError(t, session.SetValue(json.RawMessage(`"Exploded"`)))
	_, err := session.Save(context.Background())
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Equal(t, EditEditing, session.Phase())
	assert.NotEmpty(t, session.State().Error)

	require.NoError(t, session.SetValue(json.RawMessage(`"Retired"`)))
	saved, err := session.Save(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.StatusRetired, saved.Status)
}
