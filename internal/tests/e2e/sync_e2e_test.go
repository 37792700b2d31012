// Package e2e runs the client repository against a real stockd endpoint.
// The suite starts PostgreSQL with testcontainers-go, applies the embedded migrations, serves the stockd
// handler from an httptest.Server and drives it through the resty client and a temp-dir SQLite cache.
// Each test starts from empty server and client stores.
package e2e

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/abgdnv/stocksync/internal/localstore"
	"github.com/abgdnv/stocksync/internal/product"
	"github.com/abgdnv/stocksync/internal/remote"
	"github.com/abgdnv/stocksync/internal/repository"
	"github.com/abgdnv/stocksync/internal/server/app"
	"github.com/abgdnv/stocksync/internal/server/store"
	"github.com/abgdnv/stocksync/pkg/bootstrap"
	"github.com/abgdnv/stocksync/pkg/messaging"
	"github.com/abgdnv/stocksync/pkg/result"
	"github.com/abgdnv/stocksync/pkg/worker"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// skipE2ETests is the environment variable that can be set to skip E2E tests.
const skipE2ETests = "STOCKD_SKIP_E2E_TESTS"

type SyncE2ESuite struct {
	suite.Suite
	pgContainer *postgres.PostgresContainer
	dbPool      *pgxpool.Pool
	server      *httptest.Server
	serverStore store.ProductStore
	logger      *slog.Logger
	ctx         context.Context

	local *localstore.SQLiteStore
	pool  *worker.Pool
	repo  *repository.Repository
}

func (s *SyncE2ESuite) SetupSuite() {
	s.ctx = context.Background()
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))

	var err error
	s.pgContainer, err = postgres.Run(s.ctx,
		"postgres:17.5-alpine",
		postgres.WithDatabase("products"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
	)
	require.NoError(s.T(), err, "Failed to run PostgreSQL container")

	connStr, err := s.pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(s.T(), err)
	require.NoError(s.T(), store.Migrate(connStr), "Failed to apply migrations")

	s.dbPool, err = bootstrap.NewDbPool(s.ctx, connStr, "stockd-e2e", 10*time.Second)
	require.NoError(s.T(), err)

	s.serverStore = store.NewPgStore(s.dbPool)
	deps := app.SetupDependencies(s.serverStore, messaging.NopPublisher{}, s.logger)
	s.server = httptest.NewServer(app.SetupHttpHandler(deps))
}

func (s *SyncE2ESuite) TearDownSuite() {
	if s.server != nil {
		s.server.Close()
	}
	if s.dbPool != nil {
		s.dbPool.Close()
	}
	if s.pgContainer != nil {
		if err := s.pgContainer.Terminate(s.ctx); err != nil {
			s.T().Logf("failed to terminate PostgreSQL container: %v", err)
		}
	}
}

// SetupTest empties the server table and opens a fresh client cache.
func (s *SyncE2ESuite) SetupTest() {
	_, err := s.dbPool.Exec(s.ctx, "TRUNCATE TABLE products RESTART IDENTITY CASCADE")
	require.NoError(s.T(), err)

	s.local, err = localstore.OpenSQLite(s.ctx, filepath.Join(s.T().TempDir(), "stock.db"))
	require.NoError(s.T(), err)
	s.pool = worker.NewPool(2)
	client := remote.NewClient(remote.Config{BaseURL: s.server.URL, Timeout: 5 * time.Second}, s.logger)
	s.repo = repository.New(s.local, client, s.pool, s.logger)
}

func (s *SyncE2ESuite) TearDownTest() {
	s.pool.Close()
	s.NoError(s.local.Close())
}

func TestSyncE2E(t *testing.T) {
	if os.Getenv(skipE2ETests) == "1" {
		t.Skip("Skipping E2E tests based on " + skipE2ETests + " env var")
	}
	suite.Run(t, new(SyncE2ESuite))
}

func (s *SyncE2ESuite) fetchAll() []result.Result[[]product.Product] {
	var out []result.Result[[]product.Product]
	for r := range s.repo.FetchAll(s.ctx) {
		out = append(out, r)
	}
	return out
}

func (s *SyncE2ESuite) cached() []product.Product {
	list, err := s.local.ListAll(s.ctx)
	s.Require().NoError(err)
	return list
}

func (s *SyncE2ESuite) TestFetchAll_RefreshesStaleCache() {
	// given
	mouse, err := s.serverStore.Create(s.ctx, "Mouse", 5)
	s.Require().NoError(err)
	_, err = s.local.Upsert(s.ctx, product.Product{ID: mouse.ID, Name: "Mouse", Quantity: 3})
	s.Require().NoError(err)
	_, err = s.local.Upsert(s.ctx, product.Product{ID: 99, Name: "Gone", Quantity: 1})
	s.Require().NoError(err)

	// when
	results := s.fetchAll()

	// then
	s.Require().Len(results, 2)
	s.Require().NoError(results[0].Err)
	s.Equal([]product.Product{{ID: mouse.ID, Name: "Mouse", Quantity: 3}, {ID: 99, Name: "Gone", Quantity: 1}}, results[0].Value)
	s.Require().NoError(results[1].Err)
	s.Equal([]product.Product{*mouse}, results[1].Value)
	s.Equal([]product.Product{*mouse}, s.cached())
}

func (s *SyncE2ESuite) TestCreateUpdateDelete() {
	// create
	created, err := s.repo.Create(s.ctx, product.Product{Name: "Keyboard", Quantity: 2}).Await(s.ctx).Unwrap()
	s.Require().NoError(err)
	s.NotZero(created.ID)
	onServer, err := s.serverStore.FindByID(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Equal(created, *onServer)
	s.Equal([]product.Product{created}, s.cached())

	// update
	changed := created
	changed.Quantity = 7
	updated, err := s.repo.Update(s.ctx, changed).Await(s.ctx).Unwrap()
	s.Require().NoError(err)
	s.Equal(changed, updated)
	onServer, err = s.serverStore.FindByID(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Equal(int32(7), onServer.Quantity)
	s.Equal([]product.Product{changed}, s.cached())

	// delete
	s.Require().NoError(s.repo.Delete(s.ctx, changed).Await(s.ctx).Err)
	_, err = s.serverStore.FindByID(s.ctx, created.ID)
	s.ErrorIs(err, product.ErrNotFound)
	s.Empty(s.cached())
}

func (s *SyncE2ESuite) TestDelete_AbsentOnServerKeepsCache() {
	// given
	ghost := product.Product{ID: 1234, Name: "Ghost", Quantity: 1}
	_, err := s.local.Upsert(s.ctx, ghost)
	s.Require().NoError(err)

	// when
	r := s.repo.Delete(s.ctx, ghost).Await(s.ctx)

	// then
	s.ErrorIs(r.Err, product.ErrUnsuccessfulResponse)
	s.Equal([]product.Product{ghost}, s.cached())
}

func (s *SyncE2ESuite) TestCreate_RejectedByServerKeepsCache() {
	// when
	r := s.repo.Create(s.ctx, product.Product{Name: "", Quantity: 1}).Await(s.ctx)

	// then
	s.ErrorIs(r.Err, product.ErrUnsuccessfulResponse)
	s.Contains(r.Message(), "400")
	s.Empty(s.cached())
}
