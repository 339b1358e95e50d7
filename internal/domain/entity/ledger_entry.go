package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementType tipo de movimiento registrado en el ledger.
type MovementType string

// Tipos de movimiento de inventario.
const (
	MovementTypeIN          MovementType = "IN"           // entrada
	MovementTypeOUT         MovementType = "OUT"          // salida
	MovementTypeADJUSTMENT  MovementType = "ADJUSTMENT"   // ajuste
	MovementTypeTransferIN  MovementType = "TRANSFER_IN"  // traslado, lado destino
	MovementTypeTransferOUT MovementType = "TRANSFER_OUT" // traslado, lado origen
)

// Valid indica si el tipo es uno de los conocidos.
func (t MovementType) Valid() bool {
	switch t {
	case MovementTypeIN, MovementTypeOUT, MovementTypeADJUSTMENT, MovementTypeTransferIN, MovementTypeTransferOUT:
		return true
	}
	return false
}

// Direction signo con el que un movimiento afecta el saldo.
type Direction int8

const (
	DirectionIncrease Direction = 1
	DirectionDecrease Direction = -1
)

// Valid indica si la dirección es +1 o -1.
func (d Direction) Valid() bool {
	return d == DirectionIncrease || d == DirectionDecrease
}

// DirectionOf devuelve la dirección implícita del tipo. ADJUSTMENT no tiene una y devuelve 0.
func DirectionOf(t MovementType) Direction {
	switch t {
	case MovementTypeIN, MovementTypeTransferIN:
		return DirectionIncrease
	case MovementTypeOUT, MovementTypeTransferOUT:
		return DirectionDecrease
	}
	return 0
}

// BreakdownTerm un término de medida que aportó a la cantidad convertida.
type BreakdownTerm struct {
	MeasurementUnitID string          `json:"measurementUnitId"`
	Count             decimal.Decimal `json:"count"`
	ConversionFactor  decimal.Decimal `json:"conversionFactor"`
	Subtotal          decimal.Decimal `json:"subtotal"`
}

// Breakdown registro de auditoría de cómo se obtuvo ConvertedQuantity. Se persiste como JSON.
type Breakdown struct {
	MeasurementEntries []BreakdownTerm   `json:"measurementEntries"`
	RawBaseAmount      *decimal.Decimal `json:"rawBaseAmount,omitempty"`
}

// LedgerEntry movimiento inmutable de inventario; fuente de verdad del saldo.
// ConvertedQuantity es siempre una magnitud >= 0 en unidad base; Direction lleva el signo.
// Seq es monotónico y define el orden de reproducción.
type LedgerEntry struct {
	Seq                    int64
	ID                     string
	TransferID             *string
	LocationID             string
	ItemID                 string
	Kind                   MovementType
	Direction              Direction
	MeasurementUnitID      *string
	RawQuantity            *decimal.Decimal
	ConvertedQuantity      decimal.Decimal
	CounterpartyLocationID *string
	Breakdown              Breakdown
	BalanceAfter           decimal.Decimal
	Reference              string
	Note                   string
	ActorID                string
	CreatedAt              time.Time
}

// Signed devuelve la cantidad con signo que el movimiento aporta al saldo.
func (e *LedgerEntry) Signed() decimal.Decimal {
	if e.Direction == DirectionDecrease {
		return e.ConvertedQuantity.Neg()
	}
	return e.ConvertedQuantity
}
