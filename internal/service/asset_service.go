package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/center-cms-api/pkg/jobs"
)

// JobTypeAssetDelete tags asset cleanup jobs.
const JobTypeAssetDelete = "asset.delete"

type assetDeleter interface {
	Delete(ctx context.Context, assetID string) error
}

type jobEnqueuer interface {
	Enqueue(job jobs.Job) error
}

// AssetCleanupService removes assets orphaned by purges and overwrites. It is
// best-effort: failures are logged and counted, never returned to callers.
type AssetCleanupService struct {
	host    assetDeleter
	queue   jobEnqueuer
	metrics *MetricsService
	logger  *zap.Logger
}

// NewAssetCleanupService constructs the service. Attach a queue before
// scheduling; without one, deletions run inline.
func NewAssetCleanupService(host assetDeleter, metrics *MetricsService, logger *zap.Logger) *AssetCleanupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssetCleanupService{host: host, metrics: metrics, logger: logger}
}

// Attach routes scheduled deletions through queue.
func (s *AssetCleanupService) Attach(queue jobEnqueuer) {
	s.queue = queue
}

// Schedule queues deletion of assetID. Empty ids are ignored.
func (s *AssetCleanupService) Schedule(ctx context.Context, assetID string) {
	assetID = strings.TrimSpace(assetID)
	if s == nil || assetID == "" {
		return
	}
	if s.queue == nil {
		if err := s.Handle(ctx, jobs.Job{Type: JobTypeAssetDelete, Payload: assetID}); err != nil {
			s.GiveUp(jobs.Job{Type: JobTypeAssetDelete, Payload: assetID}, err)
		}
		return
	}
	if err := s.queue.Enqueue(jobs.Job{Type: JobTypeAssetDelete, Payload: assetID}); err != nil {
		s.metrics.RecordAssetCleanup(false)
		s.logger.Warn("failed to schedule asset deletion", zap.String("asset_id", assetID), zap.Error(err))
	}
}

// Handle is the queue handler performing one deletion attempt.
func (s *AssetCleanupService) Handle(ctx context.Context, job jobs.Job) error {
	if job.Type != JobTypeAssetDelete {
		return nil
	}
	if s.host == nil {
		return errors.New("asset host not configured")
	}
	if err := s.host.Delete(ctx, job.Payload); err != nil {
		return err
	}
	s.metrics.RecordAssetCleanup(true)
	return nil
}

// GiveUp records a deletion that will not be retried again.
func (s *AssetCleanupService) GiveUp(job jobs.Job, err error) {
	s.metrics.RecordAssetCleanup(false)
	s.logger.Warn("asset deletion abandoned",
		zap.String("asset_id", job.Payload),
		zap.Int("attempts", job.Attempt),
		zap.Error(err),
	)
}
