package dispatch

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/logger"
)

func TestGateBoundsConcurrency(t *testing.T) {
	gate := NewGate(GateParams{
		Permits:        map[string]int{CategoryEmail: 2},
		AcquireTimeout: 5 * time.Second,
		Logger:         logger.Nop(),
	})

	var inFlight, peak int32
	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = gate.Do(context.Background(), CategoryEmail, func(context.Context) error {
				n := atomic.AddInt32(&inFlight, 1)
				for {
					p := atomic.LoadInt32(&peak)
					if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
						break
					}
				}
				time.Sleep(20 * time.Millisecond)
				atomic.AddInt32(&inFlight, -1)
				return nil
			})
		}()
	}
	wg.Wait()

	if peak > 2 {
		t.Fatalf("expected at most 2 concurrent operations, saw %d", peak)
	}
}

func TestGateTimeoutRunsUngated(t *testing.T) {
	gate := NewGate(GateParams{
		Permits:        map[string]int{CategoryNotification: 1},
		AcquireTimeout: 10 * time.Millisecond,
		Logger:         logger.Nop(),
	})

	hold := make(chan struct{})
	held := make(chan struct{})
	go func() {
		_ = gate.Do(context.Background(), CategoryNotification, func(context.Context) error {
			close(held)
			<-hold
			return nil
		})
	}()
	<-held
	defer close(hold)

	ran := false
	if err := gate.Do(context.Background(), CategoryNotification, func(context.Context) error {
		ran = true
		return nil
	}); err != nil {
		t.Fatalf("bypass should not fail: %v", err)
	}
	if !ran {
		t.Fatalf("operation should run ungated after acquire timeout")
	}
}

func TestGateCancelledContextDoesNotRun(t *testing.T) {
	gate := NewGate(GateParams{Permits: map[string]int{CategoryOrder: 1}, AcquireTimeout: time.Second})

	hold := make(chan struct{})
	held := make(chan struct{})
	go func() {
		_ = gate.Do(context.Background(), CategoryOrder, func(context.Context) error {
			close(held)
			<-hold
			return nil
		})
	}()
	<-held
	defer close(hold)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ran := false
	err := gate.Do(ctx, CategoryOrder, func(context.Context) error {
		ran = true
		return nil
	})
	if err == nil || ran {
		t.Fatalf("cancelled caller should not run, err=%v ran=%v", err, ran)
	}
}

func TestGateUnknownCategoryAndNilGate(t *testing.T) {
	gate := NewGate(GateParams{Permits: map[string]int{CategoryCart: 1}})
	calls := 0
	fn := func(context.Context) error { calls++; return nil }
	_ = gate.Do(context.Background(), "inventory", fn)
	var nilGate *Gate
	_ = nilGate.Do(context.Background(), CategoryCart, fn)
	if calls != 2 {
		t.Fatalf("expected both calls to run, got %d", calls)
	}
}
