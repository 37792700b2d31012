// Package repository implements the local-first synchronization of products between the
// local store and the remote endpoint.
package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/abgdnv/stocksync/internal/localstore"
	"github.com/abgdnv/stocksync/internal/product"
	"github.com/abgdnv/stocksync/internal/remote"
	"github.com/abgdnv/stocksync/pkg/result"
	"github.com/abgdnv/stocksync/pkg/worker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Repository keeps the local store in step with the remote endpoint.
// Local store calls always run on the worker pool; remote changes are applied locally only
// after the server confirmed them.
type Repository struct {
	local  localstore.Store
	remote remote.Service
	pool   *worker.Pool
	logger *slog.Logger

	remoteFailures  metric.Int64Counter
	reconciliations metric.Int64Counter
}

// New creates a Repository.
func New(local localstore.Store, remote remote.Service, pool *worker.Pool, logger *slog.Logger) *Repository {
	meter := otel.Meter("stock-sync")
	remoteFailures, err := meter.Int64Counter("stock_sync_remote_failures_total",
		metric.WithDescription("Remote calls that ended in an unsuccessful response or a communication failure"))
	if err != nil {
		panic(fmt.Sprintf("failed to create stock_sync_remote_failures_total counter: %v", err))
	}
	reconciliations, err := meter.Int64Counter("stock_sync_reconciliations_total",
		metric.WithDescription("Local store writes applied after a confirmed remote change"))
	if err != nil {
		panic(fmt.Sprintf("failed to create stock_sync_reconciliations_total counter: %v", err))
	}
	return &Repository{
		local:           local,
		remote:          remote,
		pool:            pool,
		logger:          logger.With("component", "repository"),
		remoteFailures:  remoteFailures,
		reconciliations: reconciliations,
	}
}

// FetchAll delivers the cached products first and then, once the remote list has replaced the
// cache, the refreshed products. If the remote call fails, the second Result is that failure.
// The channel receives one or two Results and is closed afterwards.
func (r *Repository) FetchAll(ctx context.Context) <-chan result.Result[[]product.Product] {
	out := make(chan result.Result[[]product.Product], 2)
	go func() {
		defer close(out)

		cached := worker.Submit(ctx, r.pool, r.local.ListAll).Await(ctx)
		if cached.Err != nil {
			cached = result.Fail[[]product.Product](r.localFailure(ctx, "fetchAll", cached.Err))
		} else {
			r.logger.DebugContext(ctx, "Delivering cached products", "count", len(cached.Value))
		}
		out <- cached
		if err := ctx.Err(); err != nil {
			out <- result.Fail[[]product.Product](err)
			return
		}

		fresh, err := r.remote.ListAll(ctx)
		if err == nil {
			err = checkConfirmed(fresh)
		}
		if err != nil {
			out <- result.Fail[[]product.Product](r.remoteFailure(ctx, "fetchAll", err))
			return
		}

		refreshed := worker.Submit(ctx, r.pool, func(ctx context.Context) ([]product.Product, error) {
			if err := r.local.ReplaceAll(ctx, fresh); err != nil {
				return nil, err
			}
			return r.local.ListAll(ctx)
		}).Await(ctx)
		if refreshed.Err != nil {
			out <- result.Fail[[]product.Product](r.localFailure(ctx, "fetchAll", refreshed.Err))
			return
		}
		r.reconciled(ctx, "fetchAll")
		r.logger.DebugContext(ctx, "Delivering refreshed products", "count", len(refreshed.Value))
		out <- refreshed
	}()
	return out
}

// Create sends p to the remote endpoint and, once the server has assigned an ID, stores the
// product under that ID. The stored copy is the result.
func (r *Repository) Create(ctx context.Context, p product.Product) *result.Future[product.Product] {
	saved := result.Go(ctx, func(ctx context.Context) (product.Product, error) {
		saved, err := r.remote.Create(ctx, p)
		if err != nil {
			return product.Product{}, r.remoteFailure(ctx, "create", err)
		}
		return saved, nil
	})
	created := result.Then(ctx, saved, func(ctx context.Context, saved product.Product) (product.Product, error) {
		if !saved.Confirmed() {
			return product.Product{}, r.remoteFailure(ctx, "create",
				fmt.Errorf("%w: response carried no product id", product.ErrUnsuccessfulResponse))
		}
		return p.WithID(saved.ID), nil
	})

	return result.ThenFuture(ctx, created, func(ctx context.Context, merged product.Product) *result.Future[product.Product] {
		stored := worker.Submit(ctx, r.pool, func(ctx context.Context) (product.Product, error) {
			id, err := r.local.Upsert(ctx, merged)
			if err != nil {
				return product.Product{}, err
			}
			return r.local.GetByID(ctx, id)
		})
		return checkLocalResult(ctx, r, "create", stored)
	})
}

// Update sends p to the remote endpoint and, once confirmed, overwrites the cached row.
// The submitted product is the result.
func (r *Repository) Update(ctx context.Context, p product.Product) *result.Future[product.Product] {
	if !p.Confirmed() {
		return result.Resolved(result.Fail[product.Product](product.ErrNotConfirmed))
	}

	updated := result.Go(ctx, func(ctx context.Context) (product.Product, error) {
		if _, err := r.remote.Update(ctx, p.ID, p); err != nil {
			return product.Product{}, r.remoteFailure(ctx, "update", err)
		}
		return p, nil
	})

	return result.ThenFuture(ctx, updated, func(ctx context.Context, p product.Product) *result.Future[product.Product] {
		stored := worker.Submit(ctx, r.pool, func(ctx context.Context) (product.Product, error) {
			err := r.local.Update(ctx, p)
			if errors.Is(err, product.ErrNotFound) {
				_, err = r.local.Upsert(ctx, p)
			}
			if err != nil {
				return product.Product{}, err
			}
			return p, nil
		})
		return checkLocalResult(ctx, r, "update", stored)
	})
}

// Delete removes p on the remote endpoint and, once confirmed, from the local store.
func (r *Repository) Delete(ctx context.Context, p product.Product) *result.Future[struct{}] {
	if !p.Confirmed() {
		return result.Resolved(result.Fail[struct{}](product.ErrNotConfirmed))
	}

	deleted := result.Go(ctx, func(ctx context.Context) (int64, error) {
		if err := r.remote.Delete(ctx, p.ID); err != nil {
			return 0, r.remoteFailure(ctx, "delete", err)
		}
		return p.ID, nil
	})

	return result.ThenFuture(ctx, deleted, func(ctx context.Context, id int64) *result.Future[struct{}] {
		removed := worker.Run(ctx, r.pool, func(ctx context.Context) error {
			return r.local.Delete(ctx, id)
		})
		return checkLocalResult(ctx, r, "delete", removed)
	})
}

// checkLocalResult marks a failed local reconciliation as a local store failure.
func checkLocalResult[T any](ctx context.Context, r *Repository, op string, f *result.Future[T]) *result.Future[T] {
	return result.Go(ctx, func(ctx context.Context) (T, error) {
		v, err := f.Await(ctx).Unwrap()
		if err != nil {
			return v, r.localFailure(ctx, op, err)
		}
		r.reconciled(ctx, op)
		return v, nil
	})
}

// checkConfirmed rejects a remote list holding products without a server-assigned ID.
func checkConfirmed(products []product.Product) error {
	for i, p := range products {
		if !p.Confirmed() {
			return fmt.Errorf("%w: product at position %d (%q) carried no id", product.ErrUnsuccessfulResponse, i, p.Name)
		}
	}
	return nil
}

// canceled reports whether err comes from the caller's context ending.
func canceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func (r *Repository) remoteFailure(ctx context.Context, op string, err error) error {
	if canceled(err) {
		return err
	}
	r.remoteFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", op)))
	r.logger.WarnContext(ctx, "Remote call failed", "operation", op, "error", err)
	return err
}

// localFailure marks err as a local store failure. Context cancellation passes through unchanged.
func (r *Repository) localFailure(ctx context.Context, op string, err error) error {
	if canceled(err) {
		return err
	}
	r.logger.ErrorContext(ctx, "Local store failed", "operation", op, "error", err)
	if errors.Is(err, product.ErrLocalStore) {
		return err
	}
	return fmt.Errorf("%w: %w", product.ErrLocalStore, err)
}

func (r *Repository) reconciled(ctx context.Context, op string) {
	r.reconciliations.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", op)))
}
