package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/maintenance-tracker-api/internal/dto"
	"github.com/noah-isme/maintenance-tracker-api/internal/models"
)

const dashboardCachePattern = "dashboard:*"

type snapshotReader[T any] interface {
	ReadAll(ctx context.Context) ([]T, error)
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL    time.Duration
	RecentLimit int
}

// DashboardService composes chart aggregates from both collections.
type DashboardService struct {
	equipment   snapshotReader[models.Equipment]
	maintenance snapshotReader[models.MaintenanceRecord]
	cache       *CacheService
	logger      *zap.Logger
	cfg         DashboardServiceConfig
	retry       ChangeListener

	// generation is part of every cache key; bumping it retires all cached aggregates at once.
	generation atomic.Uint64
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Equipment   snapshotReader[models.Equipment]
	Maintenance snapshotReader[models.MaintenanceRecord]
	Cache       *CacheService
	Logger      *zap.Logger
	Config      DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	cfg := params.Config
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Minute
	}
	if cfg.RecentLimit <= 0 {
		cfg.RecentLimit = 5
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &DashboardService{
		equipment:   params.Equipment,
		maintenance: params.Maintenance,
		cache:       params.Cache,
		logger:      logger,
		cfg:         cfg,
	}
	// Seeded from the clock so a restarted process never reads a previous process's keys.
	svc.generation.Store(uint64(time.Now().UnixNano()))
	return svc
}

// RetryFailedPurges hands cache purges that failed during CollectionChanged to retry.
func (s *DashboardService) RetryFailedPurges(retry ChangeListener) {
	s.retry = retry
}

// Summary returns every aggregate and reports whether it was served from cache.
func (s *DashboardService) Summary(ctx context.Context) (*dto.DashboardResponse, bool, error) {
	gen := s.generation.Load()
	key := cacheKey(gen, "summary")
	var cached dto.DashboardResponse
	if s.tryCache(ctx, key, &cached) {
		return &cached, true, nil
	}

	equipment, records, err := s.snapshots(ctx)
	if err != nil {
		return nil, false, err
	}
	summary := &dto.DashboardResponse{
		EquipmentCount:         len(equipment),
		MaintenanceCount:       len(records),
		StatusDistribution:     StatusDistribution(equipment),
		HoursByDepartment:      HoursByDepartment(records, equipment),
		TypeDistribution:       TypeDistribution(records),
		PriorityDistribution:   PriorityDistribution(records),
		CompletionDistribution: CompletionDistribution(records),
		RecentMaintenance:      RecentMaintenance(records, equipment, s.cfg.RecentLimit),
	}
	s.persistCache(ctx, gen, key, summary)
	return summary, false, nil
}

// StatusDistribution returns the equipment status chart series.
func (s *DashboardService) StatusDistribution(ctx context.Context) ([]dto.Bucket, bool, error) {
	gen := s.generation.Load()
	key := cacheKey(gen, "status-distribution")
	var cached []dto.Bucket
	if s.tryCache(ctx, key, &cached) {
		return cached, true, nil
	}
	equipment, err := s.equipment.ReadAll(ctx)
	if err != nil {
		return nil, false, err
	}
	buckets := StatusDistribution(equipment)
	s.persistCache(ctx, gen, key, buckets)
	return buckets, false, nil
}

// HoursByDepartment returns the maintenance hours chart series.
func (s *DashboardService) HoursByDepartment(ctx context.Context) ([]dto.Bucket, bool, error) {
	gen := s.generation.Load()
	key := cacheKey(gen, "hours-by-department")
	var cached []dto.Bucket
	if s.tryCache(ctx, key, &cached) {
		return cached, true, nil
	}
	equipment, records, err := s.snapshots(ctx)
	if err != nil {
		return nil, false, err
	}
	buckets := HoursByDepartment(records, equipment)
	s.persistCache(ctx, gen, key, buckets)
	return buckets, false, nil
}

// CollectionChanged retires cached aggregates before the write returns to its caller.
// Purging the old keys is best effort; failures go to the retry listener when one is set.
func (s *DashboardService) CollectionChanged(ctx context.Context, event ChangeEvent) {
	s.generation.Add(1)
	if err := s.Invalidate(ctx, event); err != nil {
		s.logger.Warn("dashboard cache purge failed", zap.String("collection", event.Collection), zap.Error(err))
		if s.retry != nil {
			s.retry.CollectionChanged(ctx, event)
		}
	}
}

// Invalidate purges cached aggregates and reports cache failures to the caller.
func (s *DashboardService) Invalidate(ctx context.Context, _ ChangeEvent) error {
	return s.cache.Invalidate(ctx, dashboardCachePattern)
}

func (s *DashboardService) snapshots(ctx context.Context) ([]models.Equipment, []models.MaintenanceRecord, error) {
	equipment, err := s.equipment.ReadAll(ctx)
	if err != nil {
		return nil, nil, err
	}
	records, err := s.maintenance.ReadAll(ctx)
	if err != nil {
		return nil, nil, err
	}
	return equipment, records, nil
}

// tryCache treats cache failures as misses; the store stays the source of truth.
func (s *DashboardService) tryCache(ctx context.Context, key string, dest interface{}) bool {
	hit, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		return false
	}
	return hit
}

// persistCache skips the write when a change landed after gen was read; the value may predate it.
func (s *DashboardService) persistCache(ctx context.Context, gen uint64, key string, value interface{}) {
	if s.generation.Load() != gen {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func cacheKey(gen uint64, name string) string {
	return fmt.Sprintf("dashboard:%d:%s", gen, name)
}
