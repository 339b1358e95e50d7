package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// MeasurementEntryRequest un término del desglose: count unidades de la medida indicada.
type MeasurementEntryRequest struct {
	MeasurementUnitID string          `json:"measurement_unit_id" validate:"required"`
	Count             decimal.Decimal `json:"count"`
}

// QuantityRequest cantidad de un movimiento. Formas aceptadas:
//   - measurement_unit_id + quantity
//   - quantity sola (unidad base)
//   - measurement_entries y/o raw_base_amount (se suman)
type QuantityRequest struct {
	MeasurementUnitID  string                    `json:"measurement_unit_id,omitempty"`
	Quantity           *decimal.Decimal          `json:"quantity,omitempty"`
	MeasurementEntries []MeasurementEntryRequest `json:"measurement_entries,omitempty" validate:"omitempty,dive"`
	RawBaseAmount      *decimal.Decimal          `json:"raw_base_amount,omitempty"`
}

// MutateRequest body para POST /api/locations/:locationId/movements.
type MutateRequest struct {
	ItemID string `json:"item_id" validate:"required"`
	Kind   string `json:"kind" validate:"required"`
	// Direction solo para ADJUSTMENT: 1 incrementa, -1 decrementa.
	Direction     int8   `json:"direction,omitempty" validate:"omitempty,oneof=-1 1"`
	AllowNegative bool   `json:"allow_negative,omitempty"`
	Reference     string `json:"reference,omitempty" validate:"max=120"`
	Note          string `json:"note,omitempty" validate:"max=500"`
	QuantityRequest
}

// MutateResponse respuesta de un movimiento registrado.
type MutateResponse struct {
	LedgerEntryID     string          `json:"ledger_entry_id"`
	ConvertedQuantity decimal.Decimal `json:"converted_quantity"`
	NewBalance        decimal.Decimal `json:"new_balance"`
}

// TransferRequest body para POST /api/transfers.
type TransferRequest struct {
	FromLocationID string `json:"from_location_id" validate:"required"`
	ToLocationID   string `json:"to_location_id" validate:"required,nefield=FromLocationID"`
	ItemID         string `json:"item_id" validate:"required"`
	AllowNegative  bool   `json:"allow_negative,omitempty"`
	Reference      string `json:"reference,omitempty" validate:"max=120"`
	Note           string `json:"note,omitempty" validate:"max=500"`
	QuantityRequest
}

// TransferResponse respuesta de una transferencia.
type TransferResponse struct {
	TransferID        string          `json:"transfer_id"`
	OutEntryID        string          `json:"out_entry_id"`
	InEntryID         string          `json:"in_entry_id"`
	ConvertedQuantity decimal.Decimal `json:"converted_quantity"`
	FromBalance       decimal.Decimal `json:"from_balance"`
	ToBalance         decimal.Decimal `json:"to_balance"`
}

// SetAbsoluteRequest body para PUT /api/locations/:locationId/items/:itemId/balance.
type SetAbsoluteRequest struct {
	TargetBalance *decimal.Decimal `json:"target_balance" validate:"required"`
	Reason        string           `json:"reason,omitempty" validate:"max=500"`
}

// SetAbsoluteResponse adjustment_entry_id se omite cuando no hubo diferencia.
type SetAbsoluteResponse struct {
	PreviousBalance   decimal.Decimal `json:"previous_balance"`
	NewBalance        decimal.Decimal `json:"new_balance"`
	AdjustmentEntryID *string         `json:"adjustment_entry_id,omitempty"`
}

// RebuildResponse resultado de reconstruir una cuenta desde el ledger.
type RebuildResponse struct {
	LocationID      string          `json:"location_id"`
	ItemID          string          `json:"item_id"`
	PreviousBalance decimal.Decimal `json:"previous_balance"`
	NewBalance      decimal.Decimal `json:"new_balance"`
	EntryCount      int             `json:"entry_count"`
	Drifted         bool            `json:"drifted"`
}

// RebuildLocationResponse resultado de reconstruir todas las cuentas de una ubicación.
type RebuildLocationResponse struct {
	LocationID string            `json:"location_id"`
	Accounts   []RebuildResponse `json:"accounts"`
	Drifted    int               `json:"drifted"`
}

// DriftResponse comparación entre el saldo en caché y el reproducido desde el ledger.
type DriftResponse struct {
	LocationID      string          `json:"location_id"`
	ItemID          string          `json:"item_id"`
	CachedBalance   decimal.Decimal `json:"cached_balance"`
	ReplayedBalance decimal.Decimal `json:"replayed_balance"`
	Drift           decimal.Decimal `json:"drift"`
	EntryCount      int             `json:"entry_count"`
	InSync          bool            `json:"in_sync"`
}

// BreakdownTermResponse término del desglose persistido.
type BreakdownTermResponse struct {
	MeasurementUnitID string          `json:"measurement_unit_id"`
	Count             decimal.Decimal `json:"count"`
	ConversionFactor  decimal.Decimal `json:"conversion_factor"`
	Subtotal          decimal.Decimal `json:"subtotal"`
}

// BreakdownResponse desglose de la cantidad convertida.
type BreakdownResponse struct {
	MeasurementEntries []BreakdownTermResponse `json:"measurement_entries"`
	RawBaseAmount      *decimal.Decimal        `json:"raw_base_amount,omitempty"`
}

// LedgerEntryResponse fila del ledger para auditoría.
type LedgerEntryResponse struct {
	Seq                    int64             `json:"seq"`
	ID                     string            `json:"id"`
	LocationID             string            `json:"location_id"`
	ItemID                 string            `json:"item_id"`
	TransferID             *string           `json:"transfer_id,omitempty"`
	Kind                   string            `json:"kind"`
	Direction              int8              `json:"direction"`
	MeasurementUnitID      *string           `json:"measurement_unit_id,omitempty"`
	RawQuantity            *decimal.Decimal  `json:"raw_quantity,omitempty"`
	ConvertedQuantity      decimal.Decimal   `json:"converted_quantity"`
	SignedQuantity         decimal.Decimal   `json:"signed_quantity"`
	CounterpartyLocationID *string           `json:"counterparty_location_id,omitempty"`
	Breakdown              BreakdownResponse `json:"breakdown"`
	BalanceAfter           decimal.Decimal   `json:"balance_after"`
	Reference              string            `json:"reference,omitempty"`
	Note                   string            `json:"note,omitempty"`
	ActorID                string            `json:"actor_id,omitempty"`
	CreatedAt              time.Time         `json:"created_at"`
}

// LedgerPageResponse página del ledger, seq descendente.
type LedgerPageResponse struct {
	LocationID string                `json:"location_id"`
	ItemID     string                `json:"item_id"`
	Entries    []LedgerEntryResponse `json:"entries"`
	PageResponse
}

// AccountResponse saldo actual de una cuenta de stock.
type AccountResponse struct {
	LocationID string          `json:"location_id"`
	ItemID     string          `json:"item_id"`
	ItemCode   string          `json:"item_code,omitempty"`
	ItemName   string          `json:"item_name,omitempty"`
	BaseUnit   string          `json:"base_unit,omitempty"`
	Balance    decimal.Decimal `json:"balance"`
	UpdatedAt  *time.Time      `json:"updated_at,omitempty"`
}

// StockPageResponse saldos de una ubicación.
type StockPageResponse struct {
	LocationID string            `json:"location_id"`
	Accounts   []AccountResponse `json:"accounts"`
	PageResponse
}
