package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/internal/cart"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/logger"
)

type expiredCartStore interface {
	ListExpiredIDs(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error)
	WithTx(tx *gorm.DB) cart.CartRepository
}

type CartExpiryJobParams struct {
	Logger     *logger.Logger
	DB         txRunner
	Repository expiredCartStore
	BatchSize  int
}

func NewCartExpiryJob(params CartExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = defaultBatchSize
	}
	return &cartExpiryJob{
		logg:  params.Logger,
		db:    params.DB,
		repo:  params.Repository,
		batch: batch,
		now:   time.Now,
	}, nil
}

type cartExpiryJob struct {
	logg  *logger.Logger
	db    txRunner
	repo  expiredCartStore
	batch int
	now   func() time.Time
}

func (j *cartExpiryJob) Name() string { return "cart-expiry" }

func (j *cartExpiryJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	deleted := 0
	for i := 0; i < maxBatchesPerRun; i++ {
		ids, err := j.repo.ListExpiredIDs(ctx, now, j.batch)
		if err != nil {
			return fmt.Errorf("list expired carts: %w", err)
		}
		if len(ids) == 0 {
			break
		}
		if err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
			return j.repo.WithTx(tx).DeleteCarts(ctx, ids)
		}); err != nil {
			return fmt.Errorf("delete expired carts: %w", err)
		}
		deleted += len(ids)
		if len(ids) < j.batch {
			break
		}
	}
	j.logg.Info(j.logg.WithField(ctx, "carts_deleted", deleted), "cart expiry sweep complete")
	return nil
}
