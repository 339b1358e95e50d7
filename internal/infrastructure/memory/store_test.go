package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

func TestTxRunner_RollbackDescartaEscrituras(t *testing.T) {
	s := NewStore(0)
	runner := NewTxRunner(s)
	ctx := context.Background()

	boom := errors.New("boom")
	err := runner.Run(ctx, func(entries repository.LedgerEntryRepository, accounts repository.StockAccountRepository, _ repository.ItemRepository) error {
		_, err := accounts.LockOrCreate(ctx, "loc-a", "item-1")
		require.NoError(t, err)
		require.NoError(t, entries.Create(ctx, &entity.LedgerEntry{
			ID: "e-1", LocationID: "loc-a", ItemID: "item-1",
			Kind: entity.MovementTypeIN, Direction: entity.DirectionIncrease, ConvertedQuantity: decimal.NewFromInt(5),
		}))
		require.NoError(t, accounts.UpdateBalance(ctx, "loc-a", "item-1", decimal.NewFromInt(5)))
		return boom
	})
	require.ErrorIs(t, err, boom)

	assert.Equal(t, 0, s.EntryCount())
	acct, err := s.Accounts().Get(ctx, "loc-a", "item-1")
	require.NoError(t, err)
	assert.True(t, acct.Balance.IsZero())
}

func TestTxRunner_LecturaVePendientesDeLaTransaccion(t *testing.T) {
	s := NewStore(0)
	runner := NewTxRunner(s)
	ctx := context.Background()

	err := runner.Run(ctx, func(entries repository.LedgerEntryRepository, accounts repository.StockAccountRepository, _ repository.ItemRepository) error {
		_, err := accounts.LockOrCreate(ctx, "loc-a", "item-1")
		require.NoError(t, err)
		require.NoError(t, accounts.UpdateBalance(ctx, "loc-a", "item-1", decimal.NewFromInt(7)))
		require.NoError(t, entries.Create(ctx, &entity.LedgerEntry{
			ID: "e-1", LocationID: "loc-a", ItemID: "item-1",
			Kind: entity.MovementTypeIN, Direction: entity.DirectionIncrease, ConvertedQuantity: decimal.NewFromInt(7),
		}))

		acct, err := accounts.Get(ctx, "loc-a", "item-1")
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(7).Equal(acct.Balance))
		all, err := entries.ListAllByAccount(ctx, "loc-a", "item-1")
		require.NoError(t, err)
		assert.Len(t, all, 1)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, s.EntryCount())
}

func TestAcquire_TimeoutEsContencion(t *testing.T) {
	s := NewStore(20 * time.Millisecond)
	runner := NewTxRunner(s)
	ctx := context.Background()

	locked := make(chan struct{})
	done := make(chan struct{})
	go func() {
		_ = runner.Run(ctx, func(_ repository.LedgerEntryRepository, accounts repository.StockAccountRepository, _ repository.ItemRepository) error {
			_, err := accounts.LockOrCreate(ctx, "loc-a", "item-1")
			close(locked)
			<-done
			return err
		})
	}()
	<-locked

	err := runner.Run(ctx, func(_ repository.LedgerEntryRepository, accounts repository.StockAccountRepository, _ repository.ItemRepository) error {
		_, err := accounts.LockOrCreate(ctx, "loc-a", "item-1")
		return err
	})
	close(done)

	assert.True(t, errors.Is(err, domain.ErrConcurrentContention))
	assert.True(t, domain.IsRetryable(err))
}

func TestUpdateBalance_SinBloqueoFalla(t *testing.T) {
	s := NewStore(0)
	err := NewTxRunner(s).Run(context.Background(), func(_ repository.LedgerEntryRepository, accounts repository.StockAccountRepository, _ repository.ItemRepository) error {
		return accounts.UpdateBalance(context.Background(), "loc-a", "item-1", decimal.NewFromInt(1))
	})
	assert.Error(t, err)
}

func TestPaginate(t *testing.T) {
	in := []int{1, 2, 3, 4, 5}
	assert.Equal(t, []int{3, 4}, paginate(in, 2, 2))
	assert.Equal(t, []int{5}, paginate(in, 2, 4))
	assert.Empty(t, paginate(in, 2, 10))
}
