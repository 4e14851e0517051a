// Package analytics aggregates order and payment data for the admin
// dashboard.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/enums"
	pkgerrors "github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/errors"
)

const (
	topProductsLimit = 5
	defaultRange     = 30 * 24 * time.Hour
	maxRange         = 366 * 24 * time.Hour
)

// SummaryRequest bounds the report. Zero values default to the last 30 days.
type SummaryRequest struct {
	From time.Time
	To   time.Time
}

type TopProduct struct {
	ProductID   uuid.UUID       `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int64           `json:"quantity"`
	Revenue     decimal.Decimal `json:"revenue"`
}

type Summary struct {
	From          time.Time                   `json:"from"`
	To            time.Time                   `json:"to"`
	TotalOrders   int64                       `json:"totalOrders"`
	OrdersByState map[enums.OrderStatus]int64 `json:"ordersByStatus"`
	GrossRevenue  decimal.Decimal             `json:"grossRevenue"`
	TopProducts   []TopProduct                `json:"topProducts"`
}

// Service produces admin reports.
type Service interface {
	Summary(ctx context.Context, req SummaryRequest) (*Summary, error)
}

type service struct {
	repo *Repository
	now  func() time.Time
}

func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("analytics repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) Summary(ctx context.Context, req SummaryRequest) (*Summary, error) {
	from, to, err := s.resolveRange(req)
	if err != nil {
		return nil, err
	}

	counts, err := s.repo.CountByStatus(ctx, from, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count orders by status")
	}
	revenue, err := s.repo.CompletedRevenue(ctx, from, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum completed payments")
	}
	top, err := s.repo.TopProducts(ctx, from, to, topProductsLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rank products")
	}

	summary := &Summary{
		From:          from,
		To:            to,
		OrdersByState: make(map[enums.OrderStatus]int64, len(enums.OrderStatuses())),
		GrossRevenue:  revenue,
		TopProducts:   make([]TopProduct, 0, len(top)),
	}
	for _, status := range enums.OrderStatuses() {
		summary.OrdersByState[status] = 0
	}
	for _, row := range counts {
		summary.OrdersByState[row.Status] = row.Count
		summary.TotalOrders += row.Count
	}
	for _, row := range top {
		summary.TopProducts = append(summary.TopProducts, TopProduct(row))
	}
	return summary, nil
}

func (s *service) resolveRange(req SummaryRequest) (time.Time, time.Time, error) {
	to := req.To.UTC()
	if req.To.IsZero() {
		to = s.now().UTC()
	}
	from := req.From.UTC()
	if req.From.IsZero() {
		from = to.Add(-defaultRange)
	}
	if !from.Before(to) {
		return time.Time{}, time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "from must be before to")
	}
	if to.Sub(from) > maxRange {
		return time.Time{}, time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "range must not exceed 366 days")
	}
	return from, to, nil
}
