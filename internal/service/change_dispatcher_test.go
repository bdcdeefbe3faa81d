package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/maintenance-tracker-api/pkg/jobs"
)

func TestChangeDispatcherRetriesUntilHandled(t *testing.T) {
	var (
		mu       sync.Mutex
		attempts int
		handled  []ChangeEvent
	)
	dispatcher := NewChangeDispatcher("dashboard-invalidation", func(_ context.Context, event ChangeEvent) error {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		if attempts == 1 {
			return errors.New("redis unreachable")
		}
		handled = append(handled, event)
		return nil
	}, jobs.QueueConfig{RetryDelay: time.Millisecond})
	dispatcher.Start(context.Background())
	defer dispatcher.Stop()

	feed := NewChangeFeed()
	feed.Subscribe(dispatcher)
	feed.Publish(context.Background(), CollectionEquipment, "e1", ChangeUpdated)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(handled) == 1
	}, time.Second, 5*time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, attempts)
	assert.Equal(t, ChangeEvent{Type: ChangeEventType, Collection: CollectionEquipment, ID: "e1", Op: ChangeUpdated}, handled[0])
}

func TestChangeDispatcherDropsWhenNotStarted(t *testing.T) {
	called := false
	dispatcher := NewChangeDispatcher("idle", func(context.Context, ChangeEvent) error {
		called = true
		return nil
	}, jobs.QueueConfig{})

	dispatcher.CollectionChanged(context.Background(), ChangeEvent{Collection: CollectionMaintenance})

	assert.False(t, called)
}

func TestDashboardInvalidateReportsCacheErrors(t *testing.T) {
	repo := &stubCacheRepo{deleteErr: errors.New("redis down")}
	cache := NewCacheService(repo, nil, time.Minute, nil, true)
	stores := newTestStores(t)
	dashboard := NewDashboardService(DashboardServiceParams{Equipment: stores.equipment, Maintenance: stores.maintenance, Cache: cache})

	err := dashboard.Invalidate(context.Background(), ChangeEvent{Collection: CollectionEquipment})

	assert.Error(t, err)
}
