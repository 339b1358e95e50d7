package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.StockAccountRepository = (*StockAccountRepo)(nil)

// StockAccountRepo implementación de StockAccountRepository sobre PostgreSQL (usable con pool o tx).
type StockAccountRepo struct {
	q Querier
}

// NewStockAccountRepository construye el adaptador de saldos. Pasar pool o tx (Querier).
func NewStockAccountRepository(q Querier) *StockAccountRepo {
	return &StockAccountRepo{q: q}
}

const selectAccount = `
		SELECT location_id, item_id, balance, created_at, updated_at
		FROM stock_accounts WHERE location_id = $1 AND item_id = $2`

// Get obtiene el saldo actual; si no hay fila devuelve una cuenta en cero.
func (r *StockAccountRepo) Get(ctx context.Context, locationID, itemID string) (*entity.StockAccount, error) {
	var a entity.StockAccount
	err := r.q.QueryRow(ctx, selectAccount, locationID, itemID).Scan(
		&a.LocationID, &a.ItemID, &a.Balance, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.StockAccount{LocationID: locationID, ItemID: itemID, Balance: decimal.Zero}, nil
		}
		return nil, wrapErr("get stock account", err)
	}
	return &a, nil
}

// LockOrCreate crea la fila en cero si no existe y la bloquea (SELECT FOR UPDATE).
// El INSERT ... ON CONFLICT DO NOTHING espera a que confirme otra tx que esté creando la misma fila.
func (r *StockAccountRepo) LockOrCreate(ctx context.Context, locationID, itemID string) (*entity.StockAccount, error) {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_accounts (location_id, item_id, balance, created_at, updated_at)
		VALUES ($1, $2, 0, now(), now())
		ON CONFLICT (location_id, item_id) DO NOTHING`, locationID, itemID)
	if err != nil {
		return nil, wrapErr("create stock account", err)
	}

	var a entity.StockAccount
	err = r.q.QueryRow(ctx, selectAccount+"\n\t\tFOR UPDATE", locationID, itemID).Scan(
		&a.LocationID, &a.ItemID, &a.Balance, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, wrapErr("lock stock account", err)
	}
	return &a, nil
}

// UpdateBalance fija el saldo de una cuenta existente.
func (r *StockAccountRepo) UpdateBalance(ctx context.Context, locationID, itemID string, balance decimal.Decimal) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE stock_accounts SET balance = $3, updated_at = now()
		WHERE location_id = $1 AND item_id = $2`, locationID, itemID, balance)
	if err != nil {
		return wrapErr("update stock account", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update stock account: cuenta %s/%s inexistente", locationID, itemID)
	}
	return nil
}

// ListByLocation lista los saldos de una ubicación con código y nombre del item.
func (r *StockAccountRepo) ListByLocation(ctx context.Context, locationID string, limit, offset int) ([]*entity.StockLevel, int, error) {
	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM stock_accounts WHERE location_id = $1`, locationID).Scan(&total); err != nil {
		return nil, 0, wrapErr("count stock accounts", err)
	}

	rows, err := r.q.Query(ctx, `
		SELECT sa.location_id, sa.item_id, sa.balance, sa.created_at, sa.updated_at,
		       i.code, i.name, i.base_unit
		FROM stock_accounts sa
		JOIN items i ON i.id = sa.item_id
		WHERE sa.location_id = $1
		ORDER BY i.code, sa.item_id
		LIMIT $2 OFFSET $3`, locationID, limit, offset)
	if err != nil {
		return nil, 0, wrapErr("list stock accounts", err)
	}
	defer rows.Close()

	var list []*entity.StockLevel
	for rows.Next() {
		var l entity.StockLevel
		if err := rows.Scan(
			&l.LocationID, &l.ItemID, &l.Balance, &l.CreatedAt, &l.UpdatedAt,
			&l.ItemCode, &l.ItemName, &l.BaseUnit,
		); err != nil {
			return nil, 0, fmt.Errorf("scan stock level: %w", err)
		}
		list = append(list, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, wrapErr("list stock accounts", err)
	}
	return list, total, nil
}
