package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campusdesk/booking-api/internal/models"
	"github.com/campusdesk/booking-api/pkg/jobs"
)

type auditRepository interface {
	Create(ctx context.Context, log *models.AuditLog) error
}

// AuditService records audit trail entries asynchronously through a worker
// queue so request handlers never block on audit writes.
type AuditService struct {
	queue  *jobs.Queue
	logger *zap.Logger
}

// AuditQueueConfig sizes the background audit writer.
type AuditQueueConfig struct {
	Workers    int
	BufferSize int
	MaxRetries int
}

// NewAuditService wires the audit repository behind a jobs queue.
func NewAuditService(repo auditRepository, cfg AuditQueueConfig, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	handler := func(ctx context.Context, job jobs.Job) error {
		entry, ok := job.Payload.(*models.AuditLog)
		if !ok {
			logger.Warn("audit job carried unexpected payload", zap.String("job_id", job.ID))
			return nil
		}
		return repo.Create(ctx, entry)
	}
	queue := jobs.NewQueue("audit", handler, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: cfg.BufferSize,
		MaxRetries: cfg.MaxRetries,
		Logger:     logger,
	})
	return &AuditService{queue: queue, logger: logger}
}

// Start launches the background writers.
func (s *AuditService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the workers.
func (s *AuditService) Stop() {
	s.queue.Stop()
}

// Record enqueues an audit entry. Failures are logged, never surfaced:
// audit writes must not fail the request that triggered them.
func (s *AuditService) Record(entry *models.AuditLog) {
	if entry == nil {
		return
	}
	job := jobs.Job{ID: uuid.NewString(), Type: entry.Action, Payload: entry}
	if err := s.queue.Enqueue(job); err != nil {
		s.logger.Warn("failed to enqueue audit entry", zap.String("action", entry.Action), zap.Error(err))
	}
}
