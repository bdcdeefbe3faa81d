package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/maintenance-tracker-api/pkg/errors"
	"github.com/noah-isme/maintenance-tracker-api/pkg/storage"
)

// Identifiable is a record that carries its own persisted id.
type Identifiable[T any] interface {
	RecordID() string
	WithID(id string) T
}

// Patch holds the top-level fields of a partial update keyed by wire name.
type Patch map[string]json.RawMessage

// StoreObserver receives the timing of every store operation.
type StoreObserver interface {
	ObserveStoreOperation(collection, op, outcome string, duration time.Duration)
}

// StoreOptions configures a CollectionStore.
type StoreOptions struct {
	Collection string
	Document   string
	// Serialize guards each read-modify-write span with a mutex. Without it,
	// concurrent writers overwrite each other (last write wins).
	Serialize bool
	Validator *validator.Validate
	Logger    *zap.Logger
	Observer  StoreObserver
	NewID     func() string
}

// CollectionStore persists one collection as a single JSON array document.
type CollectionStore[T Identifiable[T]] struct {
	backend    storage.DocumentBackend
	collection string
	document   string
	serialize  bool
	validate   *validator.Validate
	logger     *zap.Logger
	observer   StoreObserver
	newID      func() string
	mu         sync.Mutex
}

// NewCollectionStore constructs a store over backend.
func NewCollectionStore[T Identifiable[T]](backend storage.DocumentBackend, opts StoreOptions) *CollectionStore[T] {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.NewID == nil {
		opts.NewID = NewRecordID
	}
	if opts.Document == "" {
		opts.Document = opts.Collection + ".json"
	}
	return &CollectionStore[T]{
		backend:    backend,
		collection: opts.Collection,
		document:   opts.Document,
		serialize:  opts.Serialize,
		validate:   opts.Validator,
		logger:     opts.Logger,
		observer:   opts.Observer,
		newID:      opts.NewID,
	}
}

// Collection returns the collection name.
func (s *CollectionStore[T]) Collection() string { return s.collection }

// Document returns the backing document name.
func (s *CollectionStore[T]) Document() string { return s.document }

// ReadAll returns every record in storage order.
func (s *CollectionStore[T]) ReadAll(ctx context.Context) (records []T, err error) {
	defer s.track("read_all", time.Now(), &err)
	return s.load(ctx)
}

// FindByID returns the record with id.
func (s *CollectionStore[T]) FindByID(ctx context.Context, id string) (record T, err error) {
	defer s.track("find_by_id", time.Now(), &err)
	records, err := s.load(ctx)
	if err != nil {
		return record, err
	}
	if i := indexOf(records, id); i >= 0 {
		return records[i], nil
	}
	return record, s.notFound(id)
}

// Append assigns a fresh id to record, appends it and rewrites the document.
func (s *CollectionStore[T]) Append(ctx context.Context, record T) (created T, err error) {
	defer s.track("append", time.Now(), &err)
	created = record.WithID(s.newID())
	if err := s.check(created); err != nil {
		return created, err
	}

	s.lock()
	defer s.unlock()

	records, err := s.load(ctx)
	if err != nil {
		return created, err
	}
	records = append(records, created)
	if err := s.save(ctx, records); err != nil {
		return created, err
	}
	return created, nil
}

// Update merges the fields present in patch into the record with id. The id key is
// ignored. A missing record leaves the document untouched.
func (s *CollectionStore[T]) Update(ctx context.Context, id string, patch Patch) (updated T, err error) {
	defer s.track("update", time.Now(), &err)

	s.lock()
	defer s.unlock()

	records, err := s.load(ctx)
	if err != nil {
		return updated, err
	}
	i := indexOf(records, id)
	if i < 0 {
		return updated, s.notFound(id)
	}
	updated, err = merge(records[i], patch)
	if err != nil {
		return updated, err
	}
	updated = updated.WithID(id)
	if err := s.check(updated); err != nil {
		return updated, err
	}
	records[i] = updated
	if err := s.save(ctx, records); err != nil {
		return updated, err
	}
	return updated, nil
}

// ReplaceAll overwrites the whole collection. Ids must be unique across records.
func (s *CollectionStore[T]) ReplaceAll(ctx context.Context, records []T) (err error) {
	defer s.track("replace_all", time.Now(), &err)
	seen := make(map[string]struct{}, len(records))
	for _, record := range records {
		if err := s.check(record); err != nil {
			return err
		}
		id := record.RecordID()
		if _, dup := seen[id]; dup {
			return validationFailure(fmt.Errorf("duplicate %s id %q", s.collection, id))
		}
		seen[id] = struct{}{}
	}

	s.lock()
	defer s.unlock()
	return s.save(ctx, records)
}

func (s *CollectionStore[T]) lock() {
	if s.serialize {
		s.mu.Lock()
	}
}

func (s *CollectionStore[T]) unlock() {
	if s.serialize {
		s.mu.Unlock()
	}
}

func (s *CollectionStore[T]) load(ctx context.Context) ([]T, error) {
	raw, err := s.backend.Read(ctx, s.document)
	if err != nil {
		if errors.Is(err, storage.ErrDocumentNotFound) {
			return nil, appErrors.Unavailable(err, fmt.Sprintf("%s document %s is missing", s.collection, s.document))
		}
		return nil, appErrors.Unavailable(err, fmt.Sprintf("failed to read %s", s.collection))
	}
	var records []T
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, appErrors.Unavailable(err, fmt.Sprintf("%s document %s is corrupt", s.collection, s.document))
	}
	if records == nil {
		records = []T{}
	}
	return records, nil
}

func (s *CollectionStore[T]) save(ctx context.Context, records []T) error {
	if records == nil {
		records = []T{}
	}
	payload, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode records")
	}
	if err := s.backend.Write(ctx, s.document, payload); err != nil {
		return appErrors.Unavailable(err, fmt.Sprintf("failed to write %s", s.collection))
	}
	return nil
}

func (s *CollectionStore[T]) check(record T) error {
	if s.validate == nil {
		return nil
	}
	if err := s.validate.Struct(record); err != nil {
		return validationFailure(err)
	}
	return nil
}

func (s *CollectionStore[T]) notFound(id string) error {
	return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("%s record %s not found", s.collection, id))
}

func (s *CollectionStore[T]) track(op string, start time.Time, errp *error) {
	duration := time.Since(start)
	outcome := "ok"
	if *errp != nil {
		outcome = appErrors.FromError(*errp).Code
	}
	if s.observer != nil {
		s.observer.ObserveStoreOperation(s.collection, op, outcome, duration)
	}
	s.logger.Debug("store operation",
		zap.String("collection", s.collection),
		zap.String("op", op),
		zap.String("outcome", outcome),
		zap.Duration("duration", duration),
	)
}

func indexOf[T Identifiable[T]](records []T, id string) int {
	for i, record := range records {
		if record.RecordID() == id {
			return i
		}
	}
	return -1
}

// merge overlays patch on the wire form of current and decodes the result strictly.
func merge[T any](current T, patch Patch) (T, error) {
	var merged T
	base, err := json.Marshal(current)
	if err != nil {
		return merged, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode record")
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(base, &fields); err != nil {
		return merged, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode record")
	}
	for key, value := range patch {
		if key == "id" {
			continue
		}
		fields[key] = value
	}
	combined, err := json.Marshal(fields)
	if err != nil {
		return merged, validationFailure(err)
	}
	dec := json.NewDecoder(bytes.NewReader(combined))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&merged); err != nil {
		return merged, validationFailure(err)
	}
	return merged, nil
}

func validationFailure(err error) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
}
