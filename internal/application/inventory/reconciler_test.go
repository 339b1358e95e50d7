package inventory_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	app "github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

func TestRebuild_CoincideConLaCacheTrasOperaciones(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.receive(t, locA, "100")
	_, err := f.writer.Apply(ctx, app.MutationInput{LocationID: locA, ItemID: itemID, Kind: entity.MovementTypeOUT, Quantity: boxes("3")})
	require.NoError(t, err)
	_, err = f.transfers.Transfer(ctx, app.TransferInput{FromLocationID: locA, ToLocationID: locB, ItemID: itemID, Quantity: raw("14")})
	require.NoError(t, err)
	_, err = f.adjuster.SetAbsolute(ctx, app.SetAbsoluteInput{LocationID: locA, ItemID: itemID, TargetBalance: d("40")})
	require.NoError(t, err)
	_, err = f.writer.Apply(ctx, app.MutationInput{LocationID: locA, ItemID: itemID, Kind: entity.MovementTypeADJUSTMENT,
		Quantity: raw("2.5"), Direction: entity.DirectionIncrease})
	require.NoError(t, err)

	cached := f.balance(t, locA)
	res, err := f.reconciler.Rebuild(ctx, locA, itemID)
	require.NoError(t, err)
	assert.Equal(t, cached, res.NewBalance.String())
	assert.Equal(t, "42.5", res.NewBalance.String())
	assert.False(t, res.Drifted())
	assert.Equal(t, 5, res.EntryCount)

	res, err = f.reconciler.Rebuild(ctx, locB, itemID)
	require.NoError(t, err)
	assert.Equal(t, "14", res.NewBalance.String())
}

func TestRebuild_CorrigeCacheDesviadaYEsIdempotente(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.receive(t, locA, "20")
	f.store.SetBalance(locA, itemID, d("999"))
	entries := f.store.EntryCount()

	rep, err := f.reconciler.Drift(ctx, locA, itemID)
	require.NoError(t, err)
	assert.False(t, rep.InSync())
	assert.Equal(t, "979", rep.Drift.String())

	first, err := f.reconciler.Rebuild(ctx, locA, itemID)
	require.NoError(t, err)
	assert.Equal(t, "999", first.PreviousBalance.String())
	assert.Equal(t, "20", first.NewBalance.String())
	assert.Equal(t, 1, f.observer.drifts)

	second, err := f.reconciler.Rebuild(ctx, locA, itemID)
	require.NoError(t, err)
	assert.True(t, first.NewBalance.Equal(second.NewBalance))
	assert.False(t, second.Drifted())
	assert.Equal(t, entries, f.store.EntryCount())
}

func TestRebuild_DesvioSeRegistraConLaCuenta(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.receive(t, locA, "20")
	f.store.SetBalance(locA, itemID, d("7"))

	var buf bytes.Buffer
	log := logger.New(logger.Config{App: "stock-ledger", Env: "production", Level: "info", Output: &buf})
	r := app.NewReconciler(memory.NewTxRunner(f.store), f.store.Items(), f.store.Locations(), nil, log.Named("reconciler"), 1)

	_, err := r.Rebuild(ctx, locA, itemID)
	require.NoError(t, err)

	line := buf.String()
	assert.Contains(t, line, `"level":"warn"`)
	assert.Contains(t, line, `"app":"stock-ledger"`)
	assert.Contains(t, line, `"component":"reconciler"`)
	assert.Contains(t, line, `"location_id":"`+locA+`"`)
	assert.Contains(t, line, `"item_id":"`+itemID+`"`)
	assert.Contains(t, line, `"previous_balance":"7"`)
}

func TestRebuild_CuentaSinHistoriaQuedaEnCero(t *testing.T) {
	f := newFixture()
	res, err := f.reconciler.Rebuild(context.Background(), locB, "item-azucar")
	require.NoError(t, err)
	assert.True(t, res.NewBalance.IsZero())
	assert.Zero(t, res.EntryCount)

	_, err = f.reconciler.Rebuild(context.Background(), locB, "nada")
	assert.True(t, errors.Is(err, domain.ErrItemNotFound))
}

func TestRebuildLocation_ReconstruyeTodasLasCuentas(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.receive(t, locA, "10")
	_, err := f.writer.Apply(ctx, app.MutationInput{LocationID: locA, ItemID: "item-azucar", Kind: entity.MovementTypeIN,
		Quantity: boxesOf("saco", "2")})
	require.NoError(t, err)
	f.store.SetBalance(locA, "item-azucar", d("1"))

	results, err := f.reconciler.RebuildLocation(ctx, locA)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "item-azucar", results[0].ItemID)
	assert.Equal(t, "2000", results[0].NewBalance.String())
	assert.True(t, results[0].Drifted())
	assert.Equal(t, "10", results[1].NewBalance.String())

	_, err = f.reconciler.RebuildLocation(ctx, "nada")
	assert.True(t, errors.Is(err, domain.ErrLocationNotFound))
}
