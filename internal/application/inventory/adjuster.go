package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// SetAbsoluteInput saldo objetivo para una cuenta. Se permiten objetivos negativos.
type SetAbsoluteInput struct {
	LocationID    string
	ItemID        string
	TargetBalance decimal.Decimal
	Reason        string
	ActorID       string
}

// SetAbsoluteResult Entry es nil cuando el saldo ya era el objetivo.
type SetAbsoluteResult struct {
	PreviousBalance decimal.Decimal
	NewBalance      decimal.Decimal
	Entry           *entity.LedgerEntry
}

// AbsoluteAdjuster fija el saldo de una cuenta a un valor dado con un único ADJUSTMENT por la diferencia.
// Restringir a usuarios privilegiados es responsabilidad de quien lo invoca.
type AbsoluteAdjuster struct {
	txRunner TxRunner
	catalog  catalog
	observer Observer
}

// NewAbsoluteAdjuster construye el caso de uso. observer puede ser nil.
func NewAbsoluteAdjuster(
	txRunner TxRunner,
	itemRepo repository.ItemRepository,
	locationRepo repository.LocationRepository,
	observer Observer,
) *AbsoluteAdjuster {
	return &AbsoluteAdjuster{
		txRunner: txRunner,
		catalog:  catalog{itemRepo: itemRepo, locationRepo: locationRepo},
		observer: orNop(observer),
	}
}

// SetAbsolute bloquea la cuenta, calcula diff = objetivo - actual y, si no es cero,
// escribe el ajuste y fija el saldo.
func (uc *AbsoluteAdjuster) SetAbsolute(ctx context.Context, input SetAbsoluteInput) (res *SetAbsoluteResult, err error) {
	start := time.Now()
	defer func() { observe(uc.observer, OpSetAbsolute, start, err) }()

	if _, _, err := uc.catalog.account(ctx, input.LocationID, input.ItemID); err != nil {
		return nil, err
	}

	err = uc.txRunner.Run(ctx, func(
		entryRepo repository.LedgerEntryRepository,
		accountRepo repository.StockAccountRepository,
		_ repository.ItemRepository,
	) error {
		acct, err := accountRepo.LockOrCreate(ctx, input.LocationID, input.ItemID)
		if err != nil {
			return err
		}
		diff := input.TargetBalance.Sub(acct.Balance)
		res = &SetAbsoluteResult{PreviousBalance: acct.Balance, NewBalance: acct.Balance}
		if diff.IsZero() {
			return nil
		}

		dir := entity.DirectionIncrease
		if diff.IsNegative() {
			dir = entity.DirectionDecrease
		}
		magnitude := diff.Abs()
		note := input.Reason
		if note == "" {
			note = fmt.Sprintf("Set absolute stock from %s -> %s", acct.Balance.String(), input.TargetBalance.String())
		}
		entry := &entity.LedgerEntry{
			ID:                uuid.New().String(),
			LocationID:        input.LocationID,
			ItemID:            input.ItemID,
			Kind:              entity.MovementTypeADJUSTMENT,
			Direction:         dir,
			ConvertedQuantity: magnitude,
			Breakdown: entity.Breakdown{
				MeasurementEntries: []entity.BreakdownTerm{},
				RawBaseAmount:      &magnitude,
			},
			BalanceAfter: input.TargetBalance,
			Reference:    ReferenceSetAbsolute,
			Note:         note,
			ActorID:      input.ActorID,
			CreatedAt:    time.Now().UTC(),
		}
		if err := entryRepo.Create(ctx, entry); err != nil {
			return err
		}
		if err := accountRepo.UpdateBalance(ctx, input.LocationID, input.ItemID, input.TargetBalance); err != nil {
			return err
		}
		res.NewBalance = input.TargetBalance
		res.Entry = entry
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
