package postgres_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	app "github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-ledger/pkg/config"
)

// ─────────────────────────────────────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────────────────────────────────────

func startPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("prueba de integración: se omite con -short")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("ledger"),
		tcpostgres.WithUsername("ledger"),
		tcpostgres.WithPassword("ledger"),
		tcpostgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: dsn, MaxConns: 20})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	applied, err := postgres.Migrate(ctx, pool)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_stock_ledger"}, applied)

	again, err := postgres.Migrate(ctx, pool)
	require.NoError(t, err)
	assert.Empty(t, again)

	var version int64
	require.NoError(t, pool.QueryRow(ctx, `SELECT max(version_id) FROM goose_db_version`).Scan(&version))
	assert.Equal(t, int64(1), version)

	_, err = pool.Exec(ctx, `
		INSERT INTO locations (id, kind, name) VALUES ('loc-a', 'STORE', 'Tienda Centro'), ('loc-b', 'CENTRAL', 'Cocina Central');
		INSERT INTO items (id, code, name, base_unit) VALUES ('item-harina', 'HAR-01', 'Harina', 'g');
		INSERT INTO item_measurements (id, item_id, uom_id, uom_name, conversion_factor)
		VALUES ('box', 'item-harina', 'uom-box', 'caja', 12), ('pack', 'item-harina', 'uom-pack', 'paquete', 6);`)
	require.NoError(t, err)
	return pool
}

type services struct {
	writer     *app.LedgerWriter
	transfers  *app.TransferCoordinator
	reconciler *app.Reconciler
	adjuster   *app.AbsoluteAdjuster
	query      *app.LedgerQueryUseCase
}

func newServices(pool *pgxpool.Pool, lockTimeout time.Duration) services {
	runner := postgres.NewTxRunner(pool, lockTimeout)
	items := postgres.NewItemRepository(pool)
	locations := postgres.NewLocationRepository(pool)
	return services{
		writer:     app.NewLedgerWriter(runner, items, locations, nil),
		transfers:  app.NewTransferCoordinator(runner, items, locations, nil),
		reconciler: app.NewReconciler(runner, items, locations, nil, nil, 2),
		adjuster:   app.NewAbsoluteAdjuster(runner, items, locations, nil),
		query: app.NewLedgerQueryUseCase(postgres.NewLedgerEntryRepository(pool), postgres.NewStockAccountRepository(pool),
			items, locations, nil, 50, 500),
	}
}

func qty(s string) inventory.QuantitySpec {
	v := decimal.RequireFromString(s)
	return inventory.QuantitySpec{RawBaseAmount: &v}
}

// ─────────────────────────────────────────────────────────────────────────────
// Ledger sobre PostgreSQL
// ─────────────────────────────────────────────────────────────────────────────

func TestPostgresLedger_FlujoCompleto(t *testing.T) {
	pool := startPostgres(t)
	svc := newServices(pool, 5*time.Second)
	ctx := context.Background()

	_, err := svc.writer.Apply(ctx, app.MutationInput{LocationID: "loc-a", ItemID: "item-harina", Kind: entity.MovementTypeIN, Quantity: qty("44")})
	require.NoError(t, err)

	// salida mayor al saldo: no escribe nada
	_, err = svc.writer.Apply(ctx, app.MutationInput{LocationID: "loc-a", ItemID: "item-harina", Kind: entity.MovementTypeOUT, Quantity: qty("50")})
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	res, err := svc.writer.Apply(ctx, app.MutationInput{
		LocationID: "loc-a", ItemID: "item-harina", Kind: entity.MovementTypeOUT,
		Quantity: inventory.QuantitySpec{Entries: []inventory.MeasurementEntry{{MeasurementUnitID: "box", Count: decimal.NewFromInt(3)}}},
	})
	require.NoError(t, err)
	assert.Equal(t, "8", res.NewBalance.String())
	require.NotNil(t, res.Entry.MeasurementUnitID)
	assert.Positive(t, res.Entry.Seq)

	tr, err := svc.transfers.Transfer(ctx, app.TransferInput{FromLocationID: "loc-a", ToLocationID: "loc-b", ItemID: "item-harina", Quantity: qty("5")})
	require.NoError(t, err)
	assert.Equal(t, "3", tr.From.Balance.String())
	assert.Equal(t, "5", tr.To.Balance.String())

	adj, err := svc.adjuster.SetAbsolute(ctx, app.SetAbsoluteInput{LocationID: "loc-a", ItemID: "item-harina", TargetBalance: decimal.NewFromInt(100)})
	require.NoError(t, err)
	assert.Equal(t, "97", adj.Entry.ConvertedQuantity.String())

	page, err := svc.query.ListLedger(ctx, "loc-a", "item-harina", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 4, page.Total)
	assert.Equal(t, entity.MovementTypeADJUSTMENT, page.Entries[0].Kind)
	assert.Equal(t, "box", page.Entries[2].Breakdown.MeasurementEntries[0].MeasurementUnitID)

	for _, loc := range []string{"loc-a", "loc-b"} {
		rb, err := svc.reconciler.Rebuild(ctx, loc, "item-harina")
		require.NoError(t, err)
		assert.False(t, rb.Drifted(), loc)
	}

	stock, err := svc.query.ListLocationStock(ctx, "loc-a", 1, 10)
	require.NoError(t, err)
	require.Len(t, stock.Levels, 1)
	assert.Equal(t, "HAR-01", stock.Levels[0].ItemCode)
}

func TestPostgresLedger_TrasladosOpuestosConcurrentes(t *testing.T) {
	pool := startPostgres(t)
	svc := newServices(pool, 5*time.Second)
	ctx := context.Background()

	for _, loc := range []string{"loc-a", "loc-b"} {
		_, err := svc.writer.Apply(ctx, app.MutationInput{LocationID: loc, ItemID: "item-harina", Kind: entity.MovementTypeIN, Quantity: qty("500")})
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 40)
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := svc.transfers.Transfer(ctx, app.TransferInput{FromLocationID: "loc-a", ToLocationID: "loc-b", ItemID: "item-harina", Quantity: qty("3")})
			errs <- err
		}()
		go func() {
			defer wg.Done()
			_, err := svc.transfers.Transfer(ctx, app.TransferInput{FromLocationID: "loc-b", ToLocationID: "loc-a", ItemID: "item-harina", Quantity: qty("1")})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	a, _, err := svc.query.GetAccount(ctx, "loc-a", "item-harina")
	require.NoError(t, err)
	b, _, err := svc.query.GetAccount(ctx, "loc-b", "item-harina")
	require.NoError(t, err)
	assert.Equal(t, "460", a.Balance.String())
	assert.Equal(t, "540", b.Balance.String())
}

func TestPostgresLedger_LockTimeoutEsContencion(t *testing.T) {
	pool := startPostgres(t)
	ctx := context.Background()
	runner := postgres.NewTxRunner(pool, 100*time.Millisecond)

	locked := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = runner.Run(ctx, func(_ repository.LedgerEntryRepository, accounts repository.StockAccountRepository, _ repository.ItemRepository) error {
			_, err := accounts.LockOrCreate(ctx, "loc-a", "item-harina")
			close(locked)
			<-release
			return err
		})
	}()
	<-locked

	err := runner.Run(ctx, func(_ repository.LedgerEntryRepository, accounts repository.StockAccountRepository, _ repository.ItemRepository) error {
		_, err := accounts.LockOrCreate(ctx, "loc-a", "item-harina")
		return err
	})
	close(release)

	assert.True(t, domain.IsRetryable(err), "got %v", err)
}

func TestPostgresLedger_LedgerEsAppendOnly(t *testing.T) {
	pool := startPostgres(t)
	svc := newServices(pool, 0)
	ctx := context.Background()

	res, err := svc.writer.Apply(ctx, app.MutationInput{LocationID: "loc-a", ItemID: "item-harina", Kind: entity.MovementTypeIN, Quantity: qty("1")})
	require.NoError(t, err)

	_, err = pool.Exec(ctx, `UPDATE ledger_entries SET converted_quantity = 2 WHERE id = $1`, res.Entry.ID)
	assert.Error(t, err)
	_, err = pool.Exec(ctx, `DELETE FROM ledger_entries WHERE id = $1`, res.Entry.ID)
	assert.Error(t, err)

	got, err := postgres.NewLedgerEntryRepository(pool).GetByID(ctx, res.Entry.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "1", got.ConvertedQuantity.String())
}
