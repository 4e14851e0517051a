package dispatch

import (
	"context"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/logger"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/metrics"
)

// Resource categories bounded by the admission gate.
const (
	CategoryCart         = "cart"
	CategoryOrder        = "order"
	CategoryEmail        = "email"
	CategoryNotification = "notification"
)

const defaultAcquireTimeout = 2 * time.Second

// Gate bounds concurrent operations per resource category. When a permit
// cannot be had within the acquire timeout the operation runs ungated.
type Gate struct {
	sems    map[string]*semaphore.Weighted
	timeout time.Duration
	logg    *logger.Logger
	metrics *metrics.DispatchMetrics
}

type GateParams struct {
	Permits        map[string]int
	AcquireTimeout time.Duration
	Logger         *logger.Logger
	Metrics        *metrics.DispatchMetrics
}

func NewGate(params GateParams) *Gate {
	timeout := params.AcquireTimeout
	if timeout <= 0 {
		timeout = defaultAcquireTimeout
	}
	sems := make(map[string]*semaphore.Weighted, len(params.Permits))
	for category, n := range params.Permits {
		if n > 0 {
			sems[category] = semaphore.NewWeighted(int64(n))
		}
	}
	return &Gate{sems: sems, timeout: timeout, logg: params.Logger, metrics: params.Metrics}
}

// Do runs fn under a permit for category. Unknown categories and a nil gate
// run fn directly. Only a cancelled parent context stops fn from running.
func (g *Gate) Do(ctx context.Context, category string, fn func(context.Context) error) error {
	if g == nil {
		return fn(ctx)
	}
	sem, ok := g.sems[category]
	if !ok {
		return fn(ctx)
	}

	start := time.Now()
	acquireCtx, cancel := context.WithTimeout(ctx, g.timeout)
	err := sem.Acquire(acquireCtx, 1)
	cancel()
	g.metrics.ObserveGateWait(category, time.Since(start))

	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		g.metrics.IncGateBypass(category)
		if g.logg != nil {
			g.logg.Warn(g.logg.WithField(ctx, "category", category), "admission gate timeout, running ungated")
		}
		return fn(ctx)
	}
	defer sem.Release(1)
	return fn(ctx)
}
