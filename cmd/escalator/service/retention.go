package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/careline/engine/common/config"
	"github.com/careline/engine/common/logger"
	"github.com/careline/engine/common/metrics"
)

// RetentionService prunes check-in history and its attached proof media past
// the subscription tier's retention period. Standard and premium classes are
// swept independently; re-running with nothing newly expired is a no-op.
type RetentionService struct {
	checkins CheckInStore
	media    MediaStore
	cfg      config.RetentionConfig
	metrics  metrics.Provider
	log      *logger.Logger
	now      func() time.Time
}

// NewRetentionService creates a new retention sweeper
func NewRetentionService(checkins CheckInStore, media MediaStore, cfg config.RetentionConfig, m metrics.Provider, log *logger.Logger) *RetentionService {
	return &RetentionService{
		checkins: checkins,
		media:    media,
		cfg:      cfg,
		metrics:  m,
		log:      log.WithJob(JobRetention),
		now:      time.Now,
	}
}

// Run executes one retention sweep across both subscription classes
func (s *RetentionService) Run(ctx context.Context) (*SweepSummary, error) {
	now := s.now()
	summary := &SweepSummary{
		Job:      JobRetention,
		PerClass: map[string]int{},
	}

	classes := []struct {
		name    string
		premium bool
		months  int
	}{
		{"standard", false, s.cfg.StandardMonths},
		{"premium", true, s.cfg.PremiumMonths},
	}

	for _, class := range classes {
		cutoff := now.AddDate(0, -class.months, 0)

		deleted, mediaDeleted, err := s.sweepClass(ctx, class.premium, cutoff)
		if err != nil {
			return nil, fmt.Errorf("sweep %s class: %w", class.name, err)
		}

		summary.RowsDeleted += deleted
		summary.MediaDeleted += mediaDeleted
		summary.PerClass[class.name] = deleted

		s.metrics.AddRowsPruned(class.name, deleted)
		s.metrics.AddMediaPruned(mediaDeleted)
	}

	s.log.Info("retention sweep complete",
		"rows_deleted", summary.RowsDeleted,
		"media_deleted", summary.MediaDeleted)

	return summary, nil
}

// sweepClass deletes one class's expired rows, attempting media cleanup
// first. Storage failure is logged and skipped: orphaned media is a lesser
// failure than unbounded table growth, and the rows never grow back.
func (s *RetentionService) sweepClass(ctx context.Context, premium bool, cutoff time.Time) (rows, media int, err error) {
	expired, err := s.checkins.ListExpired(ctx, cutoff, premium)
	if err != nil {
		return 0, 0, fmt.Errorf("list expired logs: %w", err)
	}

	if len(expired) == 0 {
		return 0, 0, nil
	}

	ids := make([]uuid.UUID, 0, len(expired))
	var paths []string
	for _, log := range expired {
		ids = append(ids, log.ID)
		if log.ProofURL == nil {
			continue
		}
		if path := s.media.PathFromPublicURL(*log.ProofURL); path != "" {
			paths = append(paths, path)
		}
	}

	if len(paths) > 0 {
		if err := s.media.DeleteBatch(ctx, paths); err != nil {
			s.log.Error("media cleanup failed, proceeding with row deletion",
				"error", err,
				"path_count", len(paths))
		} else {
			media = len(paths)
		}
	}

	if err := s.checkins.DeleteByIDs(ctx, ids); err != nil {
		return 0, media, fmt.Errorf("delete expired logs: %w", err)
	}

	return len(ids), media, nil
}
