package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/maintenance-tracker-api/internal/dto"
	"github.com/noah-isme/maintenance-tracker-api/internal/models"
	"github.com/noah-isme/maintenance-tracker-api/internal/repository"
	appErrors "github.com/noah-isme/maintenance-tracker-api/pkg/errors"
)

// Collection names used in routes, events and cache keys.
const (
	CollectionEquipment   = "equipment"
	CollectionMaintenance = "maintenance"
)

type recordStore[T any] interface {
	ReadAll(ctx context.Context) ([]T, error)
	FindByID(ctx context.Context, id string) (T, error)
	Append(ctx context.Context, record T) (T, error)
	Update(ctx context.Context, id string, patch repository.Patch) (T, error)
	ReplaceAll(ctx context.Context, records []T) error
}

// EquipmentService exposes the equipment collection.
type EquipmentService struct {
	store     recordStore[models.Equipment]
	validator *validator.Validate
	feed      *ChangeFeed
	logger    *zap.Logger
}

// NewEquipmentService constructs the service.
func NewEquipmentService(store recordStore[models.Equipment], validate *validator.Validate, feed *ChangeFeed, logger *zap.Logger) *EquipmentService {
	if validate == nil {
		validate = models.NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EquipmentService{store: store, validator: validate, feed: feed, logger: logger}
}

// List returns all equipment in storage order.
func (s *EquipmentService) List(ctx context.Context) ([]models.Equipment, error) {
	return s.store.ReadAll(ctx)
}

// Get returns one piece of equipment.
func (s *EquipmentService) Get(ctx context.Context, id string) (models.Equipment, error) {
	return s.store.FindByID(ctx, id)
}

// Create validates req and appends a new record.
func (s *EquipmentService) Create(ctx context.Context, req dto.CreateEquipmentRequest) (models.Equipment, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.Equipment{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid equipment payload")
	}
	created, err := s.store.Append(ctx, req.ToModel())
	if err != nil {
		return models.Equipment{}, err
	}
	s.logger.Info("equipment created", zap.String("id", created.ID), zap.String("name", created.Name))
	s.feed.Publish(ctx, CollectionEquipment, created.ID, ChangeCreated)
	return created, nil
}

// Update merges patch into the record with id.
func (s *EquipmentService) Update(ctx context.Context, id string, patch repository.Patch) (models.Equipment, error) {
	if id == "" {
		return models.Equipment{}, appErrors.Clone(appErrors.ErrValidation, "id is required")
	}
	updated, err := s.store.Update(ctx, id, patch)
	if err != nil {
		return models.Equipment{}, err
	}
	s.feed.Publish(ctx, CollectionEquipment, id, ChangeUpdated)
	return updated, nil
}

// ReplaceAll overwrites the collection.
func (s *EquipmentService) ReplaceAll(ctx context.Context, records []models.Equipment) error {
	if err := s.store.ReplaceAll(ctx, records); err != nil {
		return err
	}
	s.logger.Warn("equipment collection replaced", zap.Int("count", len(records)))
	s.feed.Publish(ctx, CollectionEquipment, "", ChangeReplaced)
	return nil
}
