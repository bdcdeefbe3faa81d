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

// MaintenanceService exposes the maintenance collection and its equipment join.
type MaintenanceService struct {
	store     recordStore[models.MaintenanceRecord]
	equipment recordStore[models.Equipment]
	validator *validator.Validate
	feed      *ChangeFeed
	logger    *zap.Logger
}

// NewMaintenanceService constructs the service.
func NewMaintenanceService(store recordStore[models.MaintenanceRecord], equipment recordStore[models.Equipment], validate *validator.Validate, feed *ChangeFeed, logger *zap.Logger) *MaintenanceService {
	if validate == nil {
		validate = models.NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MaintenanceService{store: store, equipment: equipment, validator: validate, feed: feed, logger: logger}
}

// List returns all maintenance records in storage order.
func (s *MaintenanceService) List(ctx context.Context) ([]models.MaintenanceRecord, error) {
	return s.store.ReadAll(ctx)
}

// Get returns one maintenance record.
func (s *MaintenanceService) Get(ctx context.Context, id string) (models.MaintenanceRecord, error) {
	return s.store.FindByID(ctx, id)
}

// Enriched returns every record joined with its equipment.
func (s *MaintenanceService) Enriched(ctx context.Context) ([]models.EnrichedMaintenanceRecord, error) {
	records, err := s.store.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	equipment, err := s.equipment.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	return NewJoinResolver(equipment).ResolveAll(records), nil
}

// Create validates req and appends a new record. The equipment reference is not checked.
func (s *MaintenanceService) Create(ctx context.Context, req dto.CreateMaintenanceRequest) (models.MaintenanceRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.MaintenanceRecord{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid maintenance payload")
	}
	created, err := s.store.Append(ctx, req.ToModel())
	if err != nil {
		return models.MaintenanceRecord{}, err
	}
	s.logger.Info("maintenance recorded", zap.String("id", created.ID), zap.String("equipment_id", created.EquipmentID))
	s.feed.Publish(ctx, CollectionMaintenance, created.ID, ChangeCreated)
	return created, nil
}

// Update merges patch into the record with id.
func (s *MaintenanceService) Update(ctx context.Context, id string, patch repository.Patch) (models.MaintenanceRecord, error) {
	if id == "" {
		return models.MaintenanceRecord{}, appErrors.Clone(appErrors.ErrValidation, "id is required")
	}
	updated, err := s.store.Update(ctx, id, patch)
	if err != nil {
		return models.MaintenanceRecord{}, err
	}
	s.feed.Publish(ctx, CollectionMaintenance, id, ChangeUpdated)
	return updated, nil
}

// UpdateEnriched merges patch and joins the result against the current equipment.
func (s *MaintenanceService) UpdateEnriched(ctx context.Context, id string, patch repository.Patch) (models.EnrichedMaintenanceRecord, error) {
	updated, err := s.Update(ctx, id, patch)
	if err != nil {
		return models.EnrichedMaintenanceRecord{}, err
	}
	equipment, err := s.equipment.ReadAll(ctx)
	if err != nil {
		return models.EnrichedMaintenanceRecord{}, err
	}
	return Resolve(updated, equipment), nil
}

// ReplaceAll overwrites the collection.
func (s *MaintenanceService) ReplaceAll(ctx context.Context, records []models.MaintenanceRecord) error {
	if err := s.store.ReplaceAll(ctx, records); err != nil {
		return err
	}
	s.logger.Warn("maintenance collection replaced", zap.Int("count", len(records)))
	s.feed.Publish(ctx, CollectionMaintenance, "", ChangeReplaced)
	return nil
}
