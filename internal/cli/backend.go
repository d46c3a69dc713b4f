package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/cimillas/ticket-ledger/internal/app"
	"github.com/cimillas/ticket-ledger/internal/clock"
	"github.com/cimillas/ticket-ledger/internal/config"
	"github.com/cimillas/ticket-ledger/internal/storage/memory"
	"github.com/cimillas/ticket-ledger/internal/storage/postgres"
	"github.com/cimillas/ticket-ledger/internal/storage/sqlite"
	transporthttp "github.com/cimillas/ticket-ledger/internal/transport/http"
	"github.com/cimillas/ticket-ledger/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// ledgerStore is what every backend provides for records.
type ledgerStore interface {
	app.EventRepository
	app.TicketRepository
	app.ResaleRepository
	app.RoyaltyRepository
}

// accountStore is the balance table plus its transfer primitive.
type accountStore interface {
	app.AccountRepository
	app.Transferer
}

// Backend is an opened storage driver.
type Backend struct {
	Records  ledgerStore
	Accounts accountStore
	migrate  func(ctx context.Context) ([]string, error)
	close    func()
}

func (b *Backend) Migrate(ctx context.Context) ([]string, error) {
	return b.migrate(ctx)
}

func (b *Backend) Close() {
	if b.close != nil {
		b.close()
	}
}

// OpenBackend connects the storage driver named in cfg. Postgres migrations
// are not applied here; sqlite applies its own on open.
func OpenBackend(ctx context.Context, cfg config.Config) (*Backend, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		startupCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		pool, err := pgxpool.New(startupCtx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect to db: %w", err)
		}
		if err := pool.Ping(startupCtx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("db ping: %w", err)
		}
		return &Backend{
			Records:  postgres.NewResaleRepository(pool),
			Accounts: postgres.NewAccountRepository(pool),
			migrate: func(ctx context.Context) ([]string, error) {
				return migrations.Apply(ctx, pool)
			},
			close: pool.Close,
		}, nil

	case config.DriverSQLite:
		store, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &Backend{
			Records:  store,
			Accounts: store,
			migrate:  store.Migrate,
			close:    func() { _ = store.Close() },
		}, nil

	case config.DriverMemory:
		store := memory.NewStore()
		return &Backend{
			Records:  store,
			Accounts: store,
			migrate:  func(context.Context) ([]string, error) { return nil, nil },
		}, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

// Services wires the ledger operations over a backend.
func Services(b *Backend, cfg config.Config, clk clock.Clock, logger *logrus.Logger) transporthttp.Services {
	return transporthttp.Services{
		Events:  app.NewEventRegistry(b.Records, logger, app.WithRoyaltyMode(app.RoyaltyMode(cfg.RoyaltyMode))),
		Tickets: app.NewTicketIssuer(b.Records, clk, logger),
		Resales: app.NewResaleEngine(b.Records, clk, logger),
		Royalties: app.NewRoyaltyDistributor(b.Records, b.Accounts, clk, logger,
			app.WithDistributionPolicy(app.DistributionPolicy(cfg.Policy))),
		Accounts: app.NewAccountService(b.Accounts, logger),
	}
}
