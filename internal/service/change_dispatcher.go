package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/maintenance-tracker-api/pkg/jobs"
)

// ChangeHandler processes a change event and may fail transiently.
type ChangeHandler func(ctx context.Context, event ChangeEvent) error

// ChangeDispatcher delivers change events to handler on a background queue so
// writes never wait on slow side effects. Failed deliveries are retried.
type ChangeDispatcher struct {
	queue  *jobs.Queue[ChangeEvent]
	logger *zap.Logger
}

// NewChangeDispatcher constructs a dispatcher; call Start before publishing.
func NewChangeDispatcher(name string, handler ChangeHandler, cfg jobs.QueueConfig) *ChangeDispatcher {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 500 * time.Millisecond
	}
	queue := jobs.NewQueue(name, func(ctx context.Context, job jobs.Job[ChangeEvent]) error {
		return handler(ctx, job.Payload)
	}, cfg)
	return &ChangeDispatcher{queue: queue, logger: cfg.Logger}
}

// Start launches the workers. They stop when ctx ends or Stop is called.
func (d *ChangeDispatcher) Start(ctx context.Context) { d.queue.Start(ctx) }

// Stop waits for in-flight deliveries.
func (d *ChangeDispatcher) Stop() { d.queue.Stop() }

// CollectionChanged queues event. A full queue drops the event with a warning.
func (d *ChangeDispatcher) CollectionChanged(_ context.Context, event ChangeEvent) {
	job := jobs.Job[ChangeEvent]{ID: uuid.NewString(), Type: string(event.Op), Payload: event}
	if err := d.queue.TryEnqueue(job); err != nil {
		d.logger.Warn("change event dropped",
			zap.String("queue", d.queue.Name()),
			zap.String("collection", event.Collection),
			zap.Error(err),
		)
	}
}
