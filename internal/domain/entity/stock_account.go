package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockAccount es el saldo actual (en unidad base) de un item en una ubicación.
// Es una caché materializada del ledger; solo se modifica junto a una escritura de LedgerEntry
// o desde la reconstrucción.
type StockAccount struct {
	LocationID string
	ItemID     string
	Balance    decimal.Decimal
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// StockLevel es un StockAccount con los datos del item para listados por ubicación.
type StockLevel struct {
	StockAccount
	ItemCode string
	ItemName string
	BaseUnit string
}
