// Package app wires the stockd product endpoint together.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/abgdnv/stocksync/internal/server/config"
	"github.com/abgdnv/stocksync/internal/server/service"
	"github.com/abgdnv/stocksync/internal/server/store"
	"github.com/abgdnv/stocksync/internal/server/transport/rest"
	"github.com/abgdnv/stocksync/pkg/bootstrap"
	"github.com/abgdnv/stocksync/pkg/messaging"
	pnats "github.com/abgdnv/stocksync/pkg/nats"
	"github.com/abgdnv/stocksync/pkg/server"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type Dependencies struct {
	ProductService service.ProductService
	Logger         *slog.Logger
	// MetricsPath and MetricsHandler expose Prometheus metrics when both are set.
	MetricsPath    string
	MetricsHandler http.Handler
}

// SetupDependencies builds the product service on top of the given store and publisher.
func SetupDependencies(productStore store.ProductStore, publisher messaging.Publisher, logger *slog.Logger) *Dependencies {
	return &Dependencies{
		ProductService: service.NewService(productStore, publisher, logger),
		Logger:         logger,
	}
}

// Resources holds the external connections opened by OpenResources.
type Resources struct {
	Store     store.ProductStore
	Publisher messaging.Publisher
	closers   []func()
}

// Close releases the connections in reverse order of opening.
func (r *Resources) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
}

// OpenResources connects the configured store and event publisher.
func OpenResources(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Resources, error) {
	res := &Resources{Publisher: messaging.NopPublisher{}}

	if cfg.Database.InMemory {
		logger.Warn("Using the in-memory product store, data is lost on shutdown")
		res.Store = store.NewMemoryStore()
	} else {
		if cfg.Database.Migrate {
			if err := store.Migrate(cfg.Database.URL); err != nil {
				return nil, err
			}
			logger.Info("Database migrations applied")
		}
		dbPool, err := bootstrap.NewDbPool(ctx, cfg.Database.URL, config.ServiceName, cfg.Database.Timeout)
		if err != nil {
			return nil, err
		}
		res.closers = append(res.closers, dbPool.Close)
		res.Store = store.NewPgStore(dbPool)
		logger.Info("Successfully connected to the database!")
	}

	if cfg.NATS.Enabled {
		nc, err := pnats.NewClient(cfg.NATS.Url, cfg.NATS.Timeout)
		if err != nil {
			res.Close()
			return nil, err
		}
		res.closers = append(res.closers, nc.Close)
		js, err := pnats.NewJetStreamContext(nc)
		if err != nil {
			res.Close()
			return nil, err
		}
		if err := pnats.EnsureStream(ctx, js, cfg.NATS.Stream, messaging.ProductsSubjects); err != nil {
			res.Close()
			return nil, fmt.Errorf("failed to prepare event stream: %w", err)
		}
		res.Publisher = pnats.NewNatsPublisher(js)
		logger.Info("Publishing product changes to NATS", "stream", cfg.NATS.Stream)
	}
	return res, nil
}

// SetupHttpHandler builds the router with middleware and product routes, instrumented with otelhttp.
// Used by E2E tests to set up the HTTP server with the necessary routes and middleware.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps)
	return otelhttp.NewHandler(mux, "stockd",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}

// wireRoutes sets up the HTTP routes for the product endpoint.
func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	productHandler := rest.NewHandler(deps.ProductService, deps.Logger)
	productHandler.RegisterRoutes(mux)
	if deps.MetricsPath != "" && deps.MetricsHandler != nil {
		mux.Method(http.MethodGet, deps.MetricsPath, deps.MetricsHandler)
	}
}

// SetupHttpServer creates and configures the HTTP server of the product endpoint.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	mux := SetupHttpHandler(deps)

	httpCfg := server.HTTPConfig{
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}

	return server.NewHTTPServer(httpCfg, mux)
}
