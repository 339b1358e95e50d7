package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// StockAccountRepository define el puerto para consultar/actualizar saldos por ubicación+item.
// LockOrCreate y UpdateBalance solo tienen sentido dentro de una transacción.
type StockAccountRepository interface {
	// Get devuelve el saldo sin bloquear; si no existe la fila devuelve una cuenta en cero.
	Get(ctx context.Context, locationID, itemID string) (*entity.StockAccount, error)
	// LockOrCreate crea la fila en cero si no existe y la bloquea (SELECT FOR UPDATE).
	LockOrCreate(ctx context.Context, locationID, itemID string) (*entity.StockAccount, error)
	UpdateBalance(ctx context.Context, locationID, itemID string, balance decimal.Decimal) error
	ListByLocation(ctx context.Context, locationID string, limit, offset int) ([]*entity.StockLevel, int, error)
}
