package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/logger"
)

const (
	notificationRetentionDays = 90
	defaultCleanupBatch       = 500
	// maxCleanupBatches bounds one cycle; leftovers go to the next tick.
	maxCleanupBatches = 50
)

type notificationsCleanupRepo interface {
	DeleteReadOlderThan(ctx context.Context, cutoff time.Time, limit int) (int64, error)
}

type NotificationCleanupJobParams struct {
	Logger     *logger.Logger
	Repository notificationsCleanupRepo
	// Retention is in days.
	Retention int
	BatchSize int
}

// notificationCleanupJob deletes notifications read more than the retention
// window ago. Unread notifications are never removed.
type notificationCleanupJob struct {
	logg      *logger.Logger
	repo      notificationsCleanupRepo
	retention time.Duration
	batch     int
	now       func() time.Time
}

func NewNotificationCleanupJob(params NotificationCleanupJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	days := params.Retention
	if days <= 0 {
		days = notificationRetentionDays
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = defaultCleanupBatch
	}
	return &notificationCleanupJob{
		logg:      params.Logger,
		repo:      params.Repository,
		retention: time.Duration(days) * 24 * time.Hour,
		batch:     batch,
		now:       time.Now,
	}, nil
}

func (j *notificationCleanupJob) Name() string { return "notification-cleanup" }

func (j *notificationCleanupJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.retention)
	var total int64
	batches := 0
	for batches < maxCleanupBatches {
		if err := ctx.Err(); err != nil {
			return err
		}
		deleted, err := j.repo.DeleteReadOlderThan(ctx, cutoff, j.batch)
		if err != nil {
			return fmt.Errorf("notification cleanup after %d rows: %w", total, err)
		}
		batches++
		total += deleted
		if deleted < int64(j.batch) {
			break
		}
	}
	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"cutoff":       cutoff,
		"batches":      batches,
		"rows_deleted": total,
	}), "notification cleanup complete")
	return nil
}
