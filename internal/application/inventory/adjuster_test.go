package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	app "github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

func TestSetAbsolute_EscribeAjustePorLaDiferencia(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.receive(t, locA, "44")
	before := f.store.EntryCount()

	res, err := f.adjuster.SetAbsolute(ctx, app.SetAbsoluteInput{LocationID: locA, ItemID: itemID, TargetBalance: d("100"), ActorID: "admin-1"})
	require.NoError(t, err)
	require.NotNil(t, res.Entry)
	assert.Equal(t, "44", res.PreviousBalance.String())
	assert.Equal(t, "100", res.NewBalance.String())
	assert.Equal(t, entity.MovementTypeADJUSTMENT, res.Entry.Kind)
	assert.Equal(t, entity.DirectionIncrease, res.Entry.Direction)
	assert.Equal(t, "56", res.Entry.ConvertedQuantity.String())
	assert.Equal(t, app.ReferenceSetAbsolute, res.Entry.Reference)
	assert.Equal(t, "Set absolute stock from 44 -> 100", res.Entry.Note)
	assert.Equal(t, before+1, f.store.EntryCount())

	again, err := f.adjuster.SetAbsolute(ctx, app.SetAbsoluteInput{LocationID: locA, ItemID: itemID, TargetBalance: d("100")})
	require.NoError(t, err)
	assert.Nil(t, again.Entry)
	assert.Equal(t, "100", again.NewBalance.String())
	assert.Equal(t, before+1, f.store.EntryCount())
}

func TestSetAbsolute_HaciaAbajoYNegativo(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.receive(t, locA, "10")

	res, err := f.adjuster.SetAbsolute(ctx, app.SetAbsoluteInput{LocationID: locA, ItemID: itemID, TargetBalance: d("-4"), Reason: "conteo físico"})
	require.NoError(t, err)
	assert.Equal(t, entity.DirectionDecrease, res.Entry.Direction)
	assert.Equal(t, "14", res.Entry.ConvertedQuantity.String())
	assert.Equal(t, "conteo físico", res.Entry.Note)

	rebuilt, err := f.reconciler.Rebuild(ctx, locA, itemID)
	require.NoError(t, err)
	assert.Equal(t, "-4", rebuilt.NewBalance.String())
}
