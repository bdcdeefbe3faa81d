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
	"github.com/noah-isme/maintenance-tracker-api/internal/repository"
	appErrors "github.com/noah-isme/maintenance-tracker-api/pkg/errors"
)

func validEquipmentRequest() dto.CreateEquipmentRequest {
	return dto.CreateEquipmentRequest{
		Name:         "Drill press",
		Location:     "Bay 4",
		Department:   models.DepartmentShipping,
		Model:        "DP-9",
		SerialNumber: "DP9000",
		InstallDate:  models.NewDate(2022, time.April, 4),
		Status:       models.StatusMaintenance,
	}
}

func TestEquipmentServiceCreatePublishes(t *testing.T) {
	stores := newTestStores(t)
	feed := NewChangeFeed()
	listener := &recordingListener{}
	feed.Subscribe(listener)
	svc := NewEquipmentService(stores.equipment, nil, feed, nil)

	created, err := svc.Create(context.Background(), validEquipmentRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Drill press", created.Name)

	all, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, created.ID, all[3].ID)

	require.Len(t, listener.events, 1)
	assert.Equal(t, ChangeEvent{Type: ChangeEventType, Collection: CollectionEquipment, ID: created.ID, Op: ChangeCreated}, listener.events[0])
}

func TestEquipmentServiceCreateValidation(t *testing.T) {
	stores := newTestStores(t)
	svc := NewEquipmentService(stores.equipment, nil, nil, nil)

	cases := map[string]func(*dto.CreateEquipmentRequest){
		"short name":        func(r *dto.CreateEquipmentRequest) { r.Name = "ab" },
		"missing location":  func(r *dto.CreateEquipmentRequest) { r.Location = "" },
		"serial with dash":  func(r *dto.CreateEquipmentRequest) { r.SerialNumber = "SN-1" },
		"future install":    func(r *dto.CreateEquipmentRequest) { r.InstallDate = models.Date{Time: time.Now().AddDate(0, 0, 2)} },
		"unknown status":    func(r *dto.CreateEquipmentRequest) { r.Status = "Broken" },
		"unknown dept":      func(r *dto.CreateEquipmentRequest) { r.Department = "Paint" },
		"missing installed": func(r *dto.CreateEquipmentRequest) { r.InstallDate = models.Date{} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := validEquipmentRequest()
			mutate(&req)
			_, err := svc.Create(context.Background(), req)
			assert.ErrorIs(t, err, appErrors.ErrValidation)
		})
	}

	all, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestEquipmentServiceUpdateAndReplace(t *testing.T) {
	stores := newTestStores(t)
	feed := NewChangeFeed()
	listener := &recordingListener{}
	feed.Subscribe(listener)
	svc := NewEquipmentService(stores.equipment, nil, feed, nil)
	ctx := context.Background()

	_, err := svc.Update(ctx, "", repository.Patch{})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Update(ctx, "nope", repository.Patch{"status": json.RawMessage(`"Down"`)})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	assert.Empty(t, listener.events, "failed writes publish nothing")

	updated, err := svc.Update(ctx, "e3", repository.Patch{"location": json.RawMessage(`"Dock"`)})
	require.NoError(t, err)
	assert.Equal(t, "Dock", updated.Location)

	require.NoError(t, svc.ReplaceAll(ctx, equipmentFixture()[:1]))
	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
	require.Len(t, listener.events, 2)
	assert.Equal(t, ChangeReplaced, listener.events[1].Op)
	assert.Empty(t, listener.events[1].ID)
}

func validMaintenanceRequest() dto.CreateMaintenanceRequest {
	return dto.CreateMaintenanceRequest{
		EquipmentID:      "e3",
		Date:             models.NewDate(2024, time.June, 1),
		Type:             models.TypeRepair,
		Technician:       "Di",
		HoursSpent:       2.5,
		Description:      "Replaced film roller",
		Priority:         models.PriorityMedium,
		CompletionStatus: models.CompletionComplete,
	}
}

func TestMaintenanceServiceCreateAndEnrich(t *testing.T) {
	stores := newTestStores(t)
	svc := NewMaintenanceService(stores.maintenance, stores.equipment, nil, nil, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, validMaintenanceRequest())
	require.NoError(t, err)
	assert.Equal(t, []string{}, created.PartsReplaced)

	enriched, err := svc.Enriched(ctx)
	require.NoError(t, err)
	require.Len(t, enriched, 4)
	assert.Equal(t, "Wrapper", enriched[3].EquipmentName())

	dangling := validMaintenanceRequest()
	dangling.EquipmentID = "retired-and-removed"
	created, err = svc.Create(ctx, dangling)
	require.NoError(t, err, "references are resolved at read time")
	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "retired-and-removed", got.EquipmentID)
}

func TestMaintenanceServiceCreateValidation(t *testing.T) {
	stores := newTestStores(t)
	svc := NewMaintenanceService(stores.maintenance, stores.equipment, nil, nil, nil)

	cases := map[string]func(*dto.CreateMaintenanceRequest){
		"too many hours":    func(r *dto.CreateMaintenanceRequest) { r.HoursSpent = 25 },
		"negative hours":    func(r *dto.CreateMaintenanceRequest) { r.HoursSpent = -1 },
		"short technician":  func(r *dto.CreateMaintenanceRequest) { r.Technician = "D" },
		"short description": func(r *dto.CreateMaintenanceRequest) { r.Description = "fixed" },
		"empty part":        func(r *dto.CreateMaintenanceRequest) { r.PartsReplaced = []string{""} },
		"unknown priority":  func(r *dto.CreateMaintenanceRequest) { r.Priority = "Urgent" },
		"future date":       func(r *dto.CreateMaintenanceRequest) { r.Date = models.Date{Time: time.Now().AddDate(0, 1, 0)} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := validMaintenanceRequest()
			mutate(&req)
			_, err := svc.Create(context.Background(), req)
			assert.ErrorIs(t, err, appErrors.ErrValidation)
		})
	}
}

func TestMaintenanceServiceUpdateEnriched(t *testing.T) {
	stores := newTestStores(t)
	svc := NewMaintenanceService(stores.maintenance, stores.equipment, nil, nil, nil)

	updated, err := svc.UpdateEnriched(context.Background(), "m3", repository.Patch{"equipmentId": json.RawMessage(`"e2"`)})
	require.NoError(t, err)
	assert.Equal(t, "Press", updated.EquipmentName())

	_, err = svc.UpdateEnriched(context.Background(), "m3", repository.Patch{"hoursSpent": json.RawMessage(`30`)})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestMaintenanceServiceKeepsPartsReplacedAnArray(t *testing.T) {
	stores := newTestStores(t)
	svc := NewMaintenanceService(stores.maintenance, stores.equipment, nil, nil, nil)
	ctx := context.Background()

	_, err := svc.Update(ctx, "m1", repository.Patch{"partsReplaced": json.RawMessage(`null`)})
	require.NoError(t, err)

	raw, err := stores.backend.Read(ctx, stores.maintenance.Document())
	require.NoError(t, err)
	assert.NotContains(t, string(raw), `"partsReplaced": null`)
	assert.Contains(t, string(raw), `"partsReplaced": []`)
}
