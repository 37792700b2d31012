package remote

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/abgdnv/stocksync/internal/product"
	"github.com/sony/gobreaker/v2"
)

// BreakerConfig configures WithCircuitBreaker.
type BreakerConfig struct {
	ConsecutiveFailures uint32
	OpenTimeout         time.Duration
}

// breakerService guards a Service with a circuit breaker.
type breakerService struct {
	next Service
	cb   *gobreaker.CircuitBreaker[any]
}

// WithCircuitBreaker wraps next so that repeated communication failures open the circuit.
// Breaker state lives in memory, so it only matters to processes that keep one Service for many
// calls. The stock CLI makes at most one remote call per run and is never affected by it.
// Server answers, including unsuccessful ones, never trip it.
// While the circuit is open, calls fail immediately with a communication failure.
func WithCircuitBreaker(next Service, cfg BreakerConfig, logger *slog.Logger) Service {
	st := gobreaker.Settings{
		Name:        "remote-products",
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
		IsSuccessful: func(err error) bool {
			if err == nil || errors.Is(err, context.Canceled) {
				return true
			}
			return !IsTransport(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	}
	return &breakerService{
		next: next,
		cb:   gobreaker.NewCircuitBreaker[any](st),
	}
}

func (b *breakerService) ListAll(ctx context.Context) ([]product.Product, error) {
	return execute(b.cb, func() ([]product.Product, error) {
		return b.next.ListAll(ctx)
	})
}

func (b *breakerService) Create(ctx context.Context, p product.Product) (product.Product, error) {
	return execute(b.cb, func() (product.Product, error) {
		return b.next.Create(ctx, p)
	})
}

func (b *breakerService) Update(ctx context.Context, id int64, p product.Product) (product.Product, error) {
	return execute(b.cb, func() (product.Product, error) {
		return b.next.Update(ctx, id, p)
	})
}

func (b *breakerService) Delete(ctx context.Context, id int64) error {
	_, err := execute(b.cb, func() (struct{}, error) {
		return struct{}{}, b.next.Delete(ctx, id)
	})
	return err
}

func execute[T any](cb *gobreaker.CircuitBreaker[any], fn func() (T, error)) (T, error) {
	var zero T
	v, err := cb.Execute(func() (any, error) {
		res, err := fn()
		return res, err
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, transportError(err)
		}
		return zero, err
	}
	return v.(T), nil
}
