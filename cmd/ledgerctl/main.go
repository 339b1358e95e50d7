// ledgerctl: tareas administrativas del ledger de stock (migraciones, reconstrucción, ajustes).
package main

import (
	"context"
	"os"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/metrics"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

func main() {
	if err := newRootCmd(postgresServices).Execute(); err != nil {
		os.Exit(1)
	}
}

// postgresServices conecta a PostgreSQL con la configuración del entorno (mismas variables que la API).
func postgresServices(ctx context.Context) (*services, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logger.New(logger.Config{App: cfg.App.Name, Env: cfg.App.Env, Level: cfg.App.LogLevel, Output: os.Stderr})

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	itemRepo := postgres.NewItemRepository(pool)
	locationRepo := postgres.NewLocationRepository(pool)
	txRunner := postgres.NewTxRunner(pool, cfg.DB.LockTimeout)
	m := metrics.New()

	return &services{
		reconciler: inventory.NewReconciler(txRunner, itemRepo, locationRepo, m,
			log.Named("reconciler"), cfg.Ledger.RebuildConcurrency),
		adjuster: inventory.NewAbsoluteAdjuster(txRunner, itemRepo, locationRepo, m),
		migrate: func(ctx context.Context) ([]string, error) {
			return postgres.Migrate(ctx, pool)
		},
		close: pool.Close,
	}, nil
}
