package repository

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/maintenance-tracker-api/internal/models"
	appErrors "github.com/noah-isme/maintenance-tracker-api/pkg/errors"
	"github.com/noah-isme/maintenance-tracker-api/pkg/storage"
)

const equipmentDoc = "equipment.json"

type recordingObserver struct {
	mu    sync.Mutex
	calls []string
}

func (o *recordingObserver) ObserveStoreOperation(collection, op, outcome string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, collection+"/"+op+"/"+outcome)
}

func seedEquipment(t *testing.T, backend storage.DocumentBackend, records ...models.Equipment) {
	t.Helper()
	if records == nil {
		records = []models.Equipment{}
	}
	payload, err := json.MarshalIndent(records, "", "  ")
	require.NoError(t, err)
	require.NoError(t, backend.Write(context.Background(), equipmentDoc, payload))
}

func lathe(id string) models.Equipment {
	return models.Equipment{
		ID:           id,
		Name:         "Lathe",
		Location:     "Bay 1",
		Department:   models.DepartmentMachining,
		Model:        "L-200",
		SerialNumber: "SN123",
		InstallDate:  models.NewDate(2020, time.January, 15),
		Status:       models.StatusOperational,
	}
}

func newEquipmentStore(backend storage.DocumentBackend, serialize bool) *CollectionStore[models.Equipment] {
	return NewCollectionStore[models.Equipment](backend, StoreOptions{
		Collection: "equipment",
		Document:   equipmentDoc,
		Serialize:  serialize,
		Validator:  models.NewValidator(),
	})
}

func TestCollectionStoreReadAllKeepsStorageOrder(t *testing.T) {
	backend := storage.NewMemoryStorage()
	seedEquipment(t, backend, lathe("b"), lathe("a"), lathe("c"))
	observer := &recordingObserver{}
	store := NewCollectionStore[models.Equipment](backend, StoreOptions{Collection: "equipment", Document: equipmentDoc, Observer: observer})

	records, err := store.ReadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "b", records[0].ID)
	assert.Equal(t, "c", records[2].ID)
	assert.Equal(t, []string{"equipment/read_all/ok"}, observer.calls)
}

func TestCollectionStoreMissingOrCorruptDocumentIsUnavailable(t *testing.T) {
	backend := storage.NewMemoryStorage()
	store := newEquipmentStore(backend, true)

	_, err := store.ReadAll(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrStoreUnavailable)
	assert.True(t, appErrors.FromError(err).Retryable)

	require.NoError(t, backend.Write(context.Background(), equipmentDoc, []byte("{not json")))
	_, err = store.ReadAll(context.Background())
	assert.ErrorIs(t, err, appErrors.ErrStoreUnavailable)

	_, err = store.Append(context.Background(), lathe(""))
	assert.ErrorIs(t, err, appErrors.ErrStoreUnavailable)
}

func TestCollectionStoreFindByID(t *testing.T) {
	backend := storage.NewMemoryStorage()
	seedEquipment(t, backend, lathe("a1"))
	store := newEquipmentStore(backend, true)

	found, err := store.FindByID(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, "Lathe", found.Name)

	_, err = store.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestCollectionStoreAppendAssignsID(t *testing.T) {
	backend := storage.NewMemoryStorage()
	seedEquipment(t, backend)
	store := newEquipmentStore(backend, true)

	created, err := store.Append(context.Background(), lathe(""))
	require.NoError(t, err)
	assert.Regexp(t, `^[0-9a-f]{12}$`, created.ID)

	raw, err := backend.Read(context.Background(), equipmentDoc)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "\n  {\n    \"id\": \""+created.ID+"\"")

	records, err := store.ReadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, created, records[0])
}

func TestCollectionStoreAppendRejectsInvalidRecord(t *testing.T) {
	backend := storage.NewMemoryStorage()
	seedEquipment(t, backend)
	store := newEquipmentStore(backend, true)

	invalid := lathe("")
	invalid.Status = "Broken"
	_, err := store.Append(context.Background(), invalid)
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	records, err := store.ReadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestCollectionStoreUpdateMergesPresentFields(t *testing.T) {
	backend := storage.NewMemoryStorage()
	seedEquipment(t, backend, lathe("a1"), lathe("b2"))
	store := newEquipmentStore(backend, true)

	updated, err := store.Update(context.Background(), "a1", Patch{
		"status": json.RawMessage(`"Down"`),
		"id":     json.RawMessage(`"hijack"`),
	})
	require.NoError(t, err)
	assert.Equal(t, "a1", updated.ID)
	assert.Equal(t, models.StatusDown, updated.Status)
	assert.Equal(t, "Lathe", updated.Name)
	assert.Equal(t, models.NewDate(2020, time.January, 15), updated.InstallDate)

	records, err := store.ReadAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.StatusDown, records[0].Status)
	assert.Equal(t, models.StatusOperational, records[1].Status)
}

func TestCollectionStoreUpdateNotFoundLeavesDocumentUntouched(t *testing.T) {
	backend := storage.NewMemoryStorage()
	seedEquipment(t, backend, lathe("a1"))
	store := newEquipmentStore(backend, true)
	before, err := backend.Read(context.Background(), equipmentDoc)
	require.NoError(t, err)

	_, err = store.Update(context.Background(), "zzz", Patch{"status": json.RawMessage(`"Down"`)})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	after, err := backend.Read(context.Background(), equipmentDoc)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestCollectionStoreUpdateRejectsUnknownFieldsAndValues(t *testing.T) {
	backend := storage.NewMemoryStorage()
	seedEquipment(t, backend, lathe("a1"))
	store := newEquipmentStore(backend, true)
	before, _ := backend.Read(context.Background(), equipmentDoc)

	_, err := store.Update(context.Background(), "a1", Patch{"colour": json.RawMessage(`"red"`)})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = store.Update(context.Background(), "a1", Patch{"status": json.RawMessage(`"Exploded"`)})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	after, _ := backend.Read(context.Background(), equipmentDoc)
	assert.Equal(t, before, after)
}

func TestCollectionStoreReplaceAll(t *testing.T) {
	backend := storage.NewMemoryStorage()
	seedEquipment(t, backend, lathe("a1"))
	store := newEquipmentStore(backend, true)

	require.NoError(t, store.ReplaceAll(context.Background(), []models.Equipment{lathe("x"), lathe("y")}))
	records, err := store.ReadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "x", records[0].ID)

	require.NoError(t, store.ReplaceAll(context.Background(), nil))
	raw, _ := backend.Read(context.Background(), equipmentDoc)
	assert.Equal(t, "[]", string(raw))
}

func TestCollectionStoreReplaceAllRejectsDuplicateIDs(t *testing.T) {
	backend := storage.NewMemoryStorage()
	seedEquipment(t, backend, lathe("a1"))
	store := newEquipmentStore(backend, true)
	before, _ := backend.Read(context.Background(), equipmentDoc)

	press := lathe("dup")
	press.Name = "Press"
	err := store.ReplaceAll(context.Background(), []models.Equipment{lathe("dup"), press})

	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	after, _ := backend.Read(context.Background(), equipmentDoc)
	assert.Equal(t, before, after)
}

// barrierBackend holds every reader until n reads are in flight.
type barrierBackend struct {
	*storage.MemoryStorage
	reads sync.WaitGroup
}

func newBarrierBackend(n int) *barrierBackend {
	b := &barrierBackend{MemoryStorage: storage.NewMemoryStorage()}
	b.reads.Add(n)
	return b
}

func (b *barrierBackend) Read(ctx context.Context, name string) ([]byte, error) {
	data, err := b.MemoryStorage.Read(ctx, name)
	b.reads.Done()
	b.reads.Wait()
	return data, err
}

func TestCollectionStoreUnserializedAppendsLoseUpdates(t *testing.T) {
	backend := newBarrierBackend(2)
	require.NoError(t, backend.MemoryStorage.Write(context.Background(), equipmentDoc, []byte("[]")))
	store := newEquipmentStore(backend, false)

	var wg sync.WaitGroup
	for _, name := range []string{"Lathe", "Press"} {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			record := lathe("")
			record.Name = name
			_, err := store.Append(context.Background(), record)
			assert.NoError(t, err)
		}(name)
	}
	wg.Wait()

	raw, err := backend.MemoryStorage.Read(context.Background(), equipmentDoc)
	require.NoError(t, err)
	var records []models.Equipment
	require.NoError(t, json.Unmarshal(raw, &records))
	assert.Len(t, records, 1, "the later writer overwrites the earlier append")
}

func TestCollectionStoreSerializedAppendsKeepEveryRecord(t *testing.T) {
	backend := storage.NewMemoryStorage()
	seedEquipment(t, backend)
	store := newEquipmentStore(backend, true)

	const writers = 20
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Append(context.Background(), lathe(""))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	records, err := store.ReadAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, writers)
}

func TestNewRecordID(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := NewRecordID()
		assert.Len(t, id, 12)
		assert.False(t, seen[id])
		seen[id] = true
	}
}
