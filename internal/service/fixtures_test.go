package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/maintenance-tracker-api/internal/models"
	"github.com/noah-isme/maintenance-tracker-api/internal/repository"
	appErrors "github.com/noah-isme/maintenance-tracker-api/pkg/errors"
	"github.com/noah-isme/maintenance-tracker-api/pkg/storage"
)

type stubCacheRepo struct {
	mu        sync.Mutex
	store     map[string][]byte
	deleteErr error
}

func (s *stubCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	payload, ok := s.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (s *stubCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		s.store = make(map[string][]byte)
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.store[key] = payload
	return nil
}

func (s *stubCacheRepo) DeleteByPattern(_ context.Context, pattern string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range s.store {
		if strings.HasPrefix(key, prefix) {
			delete(s.store, key)
		}
	}
	return nil
}

func equipmentFixture() []models.Equipment {
	return []models.Equipment{
		{ID: "e1", Name: "Lathe", Location: "Bay 1", Department: models.DepartmentMachining, Model: "L-1", SerialNumber: "SN1", InstallDate: models.NewDate(2020, time.March, 1), Status: models.StatusOperational},
		{ID: "e2", Name: "Press", Location: "Bay 2", Department: models.DepartmentAssembly, Model: "P-2", SerialNumber: "SN2", InstallDate: models.NewDate(2019, time.June, 5), Status: models.StatusDown},
		{ID: "e3", Name: "Wrapper", Location: "Bay 3", Department: models.DepartmentPackaging, Model: "W-3", SerialNumber: "SN3", InstallDate: models.NewDate(2021, time.January, 9), Status: models.StatusOperational},
	}
}

func maintenanceFixture() []models.MaintenanceRecord {
	return []models.MaintenanceRecord{
		{ID: "m1", EquipmentID: "e1", Date: models.NewDate(2024, time.May, 1), Type: models.TypePreventive, Technician: "Ana", HoursSpent: 3, Description: "Oil change and belts", PartsReplaced: []string{"belt"}, Priority: models.PriorityLow, CompletionStatus: models.CompletionComplete},
		{ID: "m2", EquipmentID: "e2", Date: models.NewDate(2024, time.May, 3), Type: models.TypeRepair, Technician: "Bo", HoursSpent: 5, Description: "Hydraulic seal replaced", PartsReplaced: []string{}, Priority: models.PriorityHigh, CompletionStatus: models.CompletionIncomplete},
		{ID: "m3", EquipmentID: "ghost", Date: models.NewDate(2024, time.May, 2), Type: models.TypeEmergency, Technician: "Cy", HoursSpent: 7, Description: "Unknown machine fault", PartsReplaced: []string{}, Priority: models.PriorityHigh, CompletionStatus: models.CompletionPendingParts},
	}
}

type testStores struct {
	backend     *storage.MemoryStorage
	equipment   *repository.CollectionStore[models.Equipment]
	maintenance *repository.CollectionStore[models.MaintenanceRecord]
}

func newTestStores(t *testing.T) testStores {
	t.Helper()
	backend := storage.NewMemoryStorage()
	validate := models.NewValidator()
	stores := testStores{
		backend: backend,
		equipment: repository.NewCollectionStore[models.Equipment](backend, repository.StoreOptions{
			Collection: CollectionEquipment, Serialize: true, Validator: validate,
		}),
		maintenance: repository.NewCollectionStore[models.MaintenanceRecord](backend, repository.StoreOptions{
			Collection: CollectionMaintenance, Serialize: true, Validator: validate,
		}),
	}
	ctx := context.Background()
	require.NoError(t, stores.equipment.ReplaceAll(ctx, equipmentFixture()))
	require.NoError(t, stores.maintenance.ReplaceAll(ctx, maintenanceFixture()))
	return stores
}

// failingStore reports the store as unavailable for every call.
type failingStore[T any] struct{}

func (failingStore[T]) err() error {
	return appErrors.Clone(appErrors.ErrStoreUnavailable, "backend offline")
}

func (f failingStore[T]) ReadAll(context.Context) ([]T, error) { return nil, f.err() }
func (f failingStore[T]) FindByID(context.Context, string) (T, error) {
	var zero T
	return zero, f.err()
}
func (f failingStore[T]) Append(context.Context, T) (T, error) {
	var zero T
	return zero, f.err()
}
func (f failingStore[T]) Update(context.Context, string, repository.Patch) (T, error) {
	var zero T
	return zero, f.err()
}
func (f failingStore[T]) ReplaceAll(context.Context, []T) error { return f.err() }

type recordingListener struct {
	mu     sync.Mutex
	events []ChangeEvent
}

func (l *recordingListener) CollectionChanged(_ context.Context, event ChangeEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
}
