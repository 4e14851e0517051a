package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/db/models"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/dispatch"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/logger"
)

const defaultAbandonedAfter = 24 * time.Hour

type abandonedCartStore interface {
	ListAbandoned(ctx context.Context, now, idleBefore time.Time, limit int) ([]models.Cart, error)
	MarkReminded(ctx context.Context, ids []uuid.UUID, at time.Time) error
}

type cartReminder interface {
	AbandonedCart(ctx context.Context, cart *models.Cart) error
}

type AbandonedCartJobParams struct {
	Logger         *logger.Logger
	Repository     abandonedCartStore
	Reminder       cartReminder
	AbandonedAfter time.Duration
	BatchSize      int
}

func NewAbandonedCartJob(params AbandonedCartJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if params.Reminder == nil {
		return nil, fmt.Errorf("cart reminder required")
	}
	after := params.AbandonedAfter
	if after <= 0 {
		after = defaultAbandonedAfter
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = defaultBatchSize
	}
	return &abandonedCartJob{
		logg:     params.Logger,
		repo:     params.Repository,
		reminder: params.Reminder,
		after:    after,
		batch:    batch,
		now:      time.Now,
	}, nil
}

type abandonedCartJob struct {
	logg     *logger.Logger
	repo     abandonedCartStore
	reminder cartReminder
	after    time.Duration
	batch    int
	now      func() time.Time
}

func (j *abandonedCartJob) Name() string { return "abandoned-cart" }

// Run reminds idle carts batch by batch. A full dispatch queue ends the run;
// carts not yet submitted stay unmarked for the next cycle.
func (j *abandonedCartJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	idleBefore := now.Add(-j.after)

	var errs error
	reminded := 0
	queueFull := false
	for i := 0; i < maxBatchesPerRun && !queueFull; i++ {
		carts, err := j.repo.ListAbandoned(ctx, now, idleBefore, j.batch)
		if err != nil {
			return multierr.Append(errs, fmt.Errorf("list abandoned carts: %w", err))
		}
		if len(carts) == 0 {
			break
		}

		submitted := make([]uuid.UUID, 0, len(carts))
		for idx := range carts {
			err := j.reminder.AbandonedCart(ctx, &carts[idx])
			if errors.Is(err, dispatch.ErrQueueFull) {
				queueFull = true
				break
			}
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("remind cart %s: %w", carts[idx].ID, err))
				continue
			}
			submitted = append(submitted, carts[idx].ID)
		}

		if err := j.repo.MarkReminded(ctx, submitted, now); err != nil {
			return multierr.Append(errs, fmt.Errorf("mark carts reminded: %w", err))
		}
		reminded += len(submitted)
		if len(submitted) == 0 || len(carts) < j.batch {
			break
		}
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"carts_reminded": reminded,
		"queue_full":     queueFull,
	})
	if queueFull {
		j.logg.Warn(logCtx, "dispatch queue full, abandoned cart sweep stopped early")
	} else {
		j.logg.Info(logCtx, "abandoned cart sweep complete")
	}
	return errs
}
