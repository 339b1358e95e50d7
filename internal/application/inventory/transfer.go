package inventory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// TransferInput entrada de un traslado entre dos ubicaciones del mismo item.
type TransferInput struct {
	FromLocationID string
	ToLocationID   string
	ItemID         string
	Quantity       inventory.QuantitySpec
	AllowNegative  bool
	Reference      string
	Note           string
	ActorID        string
}

// TransferResult los dos movimientos enlazados y los saldos resultantes.
type TransferResult struct {
	TransferID        string
	OutEntry          *entity.LedgerEntry
	InEntry           *entity.LedgerEntry
	ConvertedQuantity decimal.Decimal
	From              *entity.StockAccount
	To                *entity.StockAccount
}

// TransferCoordinator mueve stock entre ubicaciones: resta en origen, suma en destino y
// guarda dos movimientos (TRANSFER_OUT/TRANSFER_IN) en una sola transacción.
type TransferCoordinator struct {
	txRunner  TxRunner
	catalog   catalog
	converter *inventory.UnitConverter
	observer  Observer
}

// NewTransferCoordinator construye el caso de uso. observer puede ser nil.
func NewTransferCoordinator(
	txRunner TxRunner,
	itemRepo repository.ItemRepository,
	locationRepo repository.LocationRepository,
	observer Observer,
) *TransferCoordinator {
	return &TransferCoordinator{
		txRunner:  txRunner,
		catalog:   catalog{itemRepo: itemRepo, locationRepo: locationRepo},
		converter: inventory.NewUnitConverter(itemRepo),
		observer:  orNop(observer),
	}
}

// Transfer ejecuta el traslado. Ambas cuentas se bloquean en orden (ubicación, item) ascendente,
// nunca en el orden del llamador, para que dos traslados opuestos no se bloqueen mutuamente.
func (uc *TransferCoordinator) Transfer(ctx context.Context, input TransferInput) (res *TransferResult, err error) {
	start := time.Now()
	defer func() { observe(uc.observer, OpTransfer, start, err) }()

	if input.FromLocationID == "" || input.ToLocationID == "" || input.ItemID == "" {
		return nil, domain.Errorf(domain.CodeValidation, "from_location_id, to_location_id e item_id son obligatorios")
	}
	if input.FromLocationID == input.ToLocationID {
		return nil, domain.Errorf(domain.CodeValidation, "origen y destino deben ser distintos")
	}
	from, item, err := uc.catalog.account(ctx, input.FromLocationID, input.ItemID)
	if err != nil {
		return nil, err
	}
	to, err := uc.catalog.location(ctx, input.ToLocationID)
	if err != nil {
		return nil, err
	}
	conv, err := uc.converter.Convert(ctx, item, input.Quantity)
	if err != nil {
		return nil, err
	}
	unitID, rawQty := conv.SingleMeasurement()
	transferID := uuid.New().String()

	outNote, inNote := input.Note, input.Note
	if outNote == "" {
		outNote = fmt.Sprintf("Transfer to %s %s", strings.ToLower(to.Kind), to.ID)
		inNote = fmt.Sprintf("Transfer from %s %s", strings.ToLower(from.Kind), from.ID)
	}

	err = uc.txRunner.Run(ctx, func(
		entryRepo repository.LedgerEntryRepository,
		accountRepo repository.StockAccountRepository,
		_ repository.ItemRepository,
	) error {
		accts, err := lockInOrder(ctx, accountRepo, input.ItemID, input.FromLocationID, input.ToLocationID)
		if err != nil {
			return err
		}
		src, dst := accts[input.FromLocationID], accts[input.ToLocationID]

		srcBalance := src.Balance.Sub(conv.Quantity)
		if !input.AllowNegative && srcBalance.IsNegative() {
			return &domain.InsufficientStockError{
				LocationID: input.FromLocationID,
				ItemID:     input.ItemID,
				Available:  src.Balance,
				Requested:  conv.Quantity,
				Unit:       item.BaseUnit,
			}
		}
		dstBalance := dst.Balance.Add(conv.Quantity)
		now := time.Now().UTC()

		outEntry := &entity.LedgerEntry{
			ID:                     uuid.New().String(),
			TransferID:             strPtr(transferID),
			LocationID:             input.FromLocationID,
			ItemID:                 input.ItemID,
			Kind:                   entity.MovementTypeTransferOUT,
			Direction:              entity.DirectionDecrease,
			MeasurementUnitID:      unitID,
			RawQuantity:            rawQty,
			ConvertedQuantity:      conv.Quantity,
			CounterpartyLocationID: strPtr(input.ToLocationID),
			Breakdown:              conv.Breakdown,
			BalanceAfter:           srcBalance,
			Reference:              input.Reference,
			Note:                   outNote,
			ActorID:                input.ActorID,
			CreatedAt:              now,
		}
		if err := entryRepo.Create(ctx, outEntry); err != nil {
			return err
		}
		if err := accountRepo.UpdateBalance(ctx, input.FromLocationID, input.ItemID, srcBalance); err != nil {
			return err
		}

		inEntry := *outEntry
		inEntry.ID = uuid.New().String()
		inEntry.LocationID = input.ToLocationID
		inEntry.Kind = entity.MovementTypeTransferIN
		inEntry.Direction = entity.DirectionIncrease
		inEntry.CounterpartyLocationID = strPtr(input.FromLocationID)
		inEntry.BalanceAfter = dstBalance
		inEntry.Note = inNote
		if err := entryRepo.Create(ctx, &inEntry); err != nil {
			return err
		}
		if err := accountRepo.UpdateBalance(ctx, input.ToLocationID, input.ItemID, dstBalance); err != nil {
			return err
		}

		src.Balance, src.UpdatedAt = srcBalance, now
		dst.Balance, dst.UpdatedAt = dstBalance, now
		res = &TransferResult{
			TransferID:        transferID,
			OutEntry:          outEntry,
			InEntry:           &inEntry,
			ConvertedQuantity: conv.Quantity,
			From:              src,
			To:                dst,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// lockInOrder bloquea (o crea) las cuentas del item en las ubicaciones dadas,
// ordenadas por (locationID, itemID).
func lockInOrder(ctx context.Context, accountRepo repository.StockAccountRepository, itemID string, locationIDs ...string) (map[string]*entity.StockAccount, error) {
	type key struct{ locationID, itemID string }
	keys := make([]key, 0, len(locationIDs))
	for _, id := range locationIDs {
		keys = append(keys, key{id, itemID})
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].locationID != keys[j].locationID {
			return keys[i].locationID < keys[j].locationID
		}
		return keys[i].itemID < keys[j].itemID
	})

	out := make(map[string]*entity.StockAccount, len(keys))
	for _, k := range keys {
		acct, err := accountRepo.LockOrCreate(ctx, k.locationID, k.itemID)
		if err != nil {
			return nil, err
		}
		out[k.locationID] = acct
	}
	return out, nil
}
