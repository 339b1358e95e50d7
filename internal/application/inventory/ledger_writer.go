package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// MutationInput entrada de un movimiento sobre una sola ubicación.
// Kind es IN, OUT o ADJUSTMENT; Direction solo aplica (y es obligatoria) para ADJUSTMENT.
type MutationInput struct {
	LocationID    string
	ItemID        string
	Kind          entity.MovementType
	Quantity      inventory.QuantitySpec
	Direction     entity.Direction
	AllowNegative bool
	Reference     string
	Note          string
	ActorID       string
}

// MutationResult movimiento creado y saldo resultante.
type MutationResult struct {
	Entry             *entity.LedgerEntry
	ConvertedQuantity decimal.Decimal
	NewBalance        decimal.Decimal
}

// LedgerWriter registra movimientos de inventario de forma transaccional
// con bloqueo de fila (SELECT FOR UPDATE) y Commit/Rollback.
type LedgerWriter struct {
	txRunner  TxRunner
	catalog   catalog
	converter *inventory.UnitConverter
	observer  Observer
}

// NewLedgerWriter construye el caso de uso. observer puede ser nil.
func NewLedgerWriter(
	txRunner TxRunner,
	itemRepo repository.ItemRepository,
	locationRepo repository.LocationRepository,
	observer Observer,
) *LedgerWriter {
	return &LedgerWriter{
		txRunner:  txRunner,
		catalog:   catalog{itemRepo: itemRepo, locationRepo: locationRepo},
		converter: inventory.NewUnitConverter(itemRepo),
		observer:  orNop(observer),
	}
}

// Apply convierte la cantidad, bloquea la cuenta, valida el saldo y escribe un movimiento
// más la actualización del saldo en la misma transacción.
func (uc *LedgerWriter) Apply(ctx context.Context, input MutationInput) (res *MutationResult, err error) {
	start := time.Now()
	defer func() { observe(uc.observer, OpApply, start, err) }()

	dir, err := mutationDirection(input)
	if err != nil {
		return nil, err
	}
	_, item, err := uc.catalog.account(ctx, input.LocationID, input.ItemID)
	if err != nil {
		return nil, err
	}
	conv, err := uc.converter.Convert(ctx, item, input.Quantity)
	if err != nil {
		return nil, err
	}
	unitID, rawQty := conv.SingleMeasurement()

	err = uc.txRunner.Run(ctx, func(
		entryRepo repository.LedgerEntryRepository,
		accountRepo repository.StockAccountRepository,
		_ repository.ItemRepository,
	) error {
		// Bloquea la fila de la cuenta; a partir de aquí el saldo leído es el vigente
		acct, err := accountRepo.LockOrCreate(ctx, input.LocationID, input.ItemID)
		if err != nil {
			return err
		}
		newBalance := inventory.ApplyDelta(acct.Balance, dir, conv.Quantity)
		// Ningún movimiento sin AllowNegative puede dejar el saldo negativo, tampoco una entrada a un déficit.
		if !input.AllowNegative && newBalance.IsNegative() {
			return &domain.InsufficientStockError{
				LocationID: input.LocationID,
				ItemID:     input.ItemID,
				Available:  acct.Balance,
				Requested:  conv.Quantity,
				Unit:       item.BaseUnit,
			}
		}

		entry := &entity.LedgerEntry{
			ID:                uuid.New().String(),
			LocationID:        input.LocationID,
			ItemID:            input.ItemID,
			Kind:              input.Kind,
			Direction:         dir,
			MeasurementUnitID: unitID,
			RawQuantity:       rawQty,
			ConvertedQuantity: conv.Quantity,
			Breakdown:         conv.Breakdown,
			BalanceAfter:      newBalance,
			Reference:         input.Reference,
			Note:              input.Note,
			ActorID:           input.ActorID,
			CreatedAt:         time.Now().UTC(),
		}
		if err := entryRepo.Create(ctx, entry); err != nil {
			return err
		}
		if err := accountRepo.UpdateBalance(ctx, input.LocationID, input.ItemID, newBalance); err != nil {
			return err
		}
		res = &MutationResult{Entry: entry, ConvertedQuantity: conv.Quantity, NewBalance: newBalance}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// mutationDirection valida el tipo y devuelve el signo con que afecta el saldo.
func mutationDirection(input MutationInput) (entity.Direction, error) {
	switch input.Kind {
	case entity.MovementTypeIN, entity.MovementTypeOUT:
		return entity.DirectionOf(input.Kind), nil
	case entity.MovementTypeADJUSTMENT:
		if !input.Direction.Valid() {
			return 0, domain.Errorf(domain.CodeValidation, "un ajuste requiere direction +1 o -1")
		}
		return input.Direction, nil
	case entity.MovementTypeTransferIN, entity.MovementTypeTransferOUT:
		return 0, domain.Errorf(domain.CodeUnsupportedOperation, "%s solo se registra mediante un traslado", input.Kind)
	}
	return 0, domain.Errorf(domain.CodeUnsupportedOperation, "tipo de movimiento no soportado: %q", input.Kind)
}
