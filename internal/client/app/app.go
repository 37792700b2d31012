// Package app wires the stock client: local store, remote endpoint, worker pool and repository.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/abgdnv/stocksync/internal/client/config"
	"github.com/abgdnv/stocksync/internal/localstore"
	"github.com/abgdnv/stocksync/internal/remote"
	"github.com/abgdnv/stocksync/internal/repository"
	pkgconfig "github.com/abgdnv/stocksync/pkg/config"
	"github.com/abgdnv/stocksync/pkg/worker"
)

// App owns the client resources behind a Repository.
type App struct {
	Repository *repository.Repository
	pool       *worker.Pool
	store      *localstore.SQLiteStore
}

// Open opens the local database and connects the repository to the configured endpoint.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	st, err := localstore.OpenSQLite(ctx, cfg.LocalStore.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}
	pool := worker.NewPool(cfg.Worker.Size)
	return &App{
		Repository: repository.New(st, NewRemote(cfg.Remote, logger), pool, logger),
		pool:       pool,
		store:      st,
	}, nil
}

// NewRemote builds the remote Service, behind a circuit breaker when enabled.
func NewRemote(cfg pkgconfig.RemoteConfig, logger *slog.Logger) remote.Service {
	var svc remote.Service = remote.NewClient(remote.Config{
		BaseURL:   cfg.BaseURL,
		Timeout:   cfg.Timeout,
		LogBodies: cfg.LogBodies,
	}, logger)
	if cfg.CircuitBreaker.Enabled {
		svc = remote.WithCircuitBreaker(svc, remote.BreakerConfig{
			ConsecutiveFailures: cfg.CircuitBreaker.ConsecutiveFailures,
			OpenTimeout:         cfg.CircuitBreaker.OpenTimeout,
		}, logger)
	}
	return svc
}

// Close stops the worker pool and then closes the local database.
func (a *App) Close() error {
	a.pool.Close()
	return a.store.Close()
}
