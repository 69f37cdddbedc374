package resilience_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vportela/empresas-backoffice-go/internal/infra/resilience"
)

func TestCircuitBreaker_OpensAfterFailures(t *testing.T) {
	cb := resilience.NewCircuitBreaker("test")

	fail := func() (any, error) { return nil, errors.New("boom") }

	// Trip the breaker: 5+ requests with >=60% failure ratio.
	for i := 0; i < 6; i++ {
		cb.Execute(fail)
	}

	_, err := cb.Execute(func() (any, error) { return "ok", nil })
	if err == nil {
		t.Fatal("expected open circuit to reject the call")
	}
}

func TestBulkhead_LimitsConcurrency(t *testing.T) {
	b := resilience.NewBulkhead(1)

	if err := b.Acquire(context.Background()); err != nil {
		t.Fatalf("first acquire failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := b.Acquire(ctx); err == nil {
		t.Fatal("expected second acquire to block until context deadline")
	}

	b.Release()

	if err := b.Acquire(context.Background()); err != nil {
		t.Fatalf("acquire after release failed: %v", err)
	}
}

func TestBulkhead_AcquireCancelled(t *testing.T) {
	b := resilience.NewBulkhead(1)
	if err := b.Acquire(context.Background()); err != nil {
		t.Fatalf("acquire failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := b.Acquire(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
