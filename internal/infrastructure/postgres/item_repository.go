package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.ItemRepository = (*ItemRepo)(nil)

// ItemRepo lectura del catálogo de items y sus medidas.
type ItemRepo struct {
	q Querier
}

// NewItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewItemRepository(q Querier) *ItemRepo {
	return &ItemRepo{q: q}
}

// GetByID obtiene el item con sus medidas. Devuelve nil, nil si no existe.
func (r *ItemRepo) GetByID(ctx context.Context, id string) (*entity.Item, error) {
	var it entity.Item
	err := r.q.QueryRow(ctx, `
		SELECT id, code, name, base_unit, is_production, created_at, updated_at
		FROM items WHERE id = $1`, id).Scan(
		&it.ID, &it.Code, &it.Name, &it.BaseUnit, &it.IsProduction, &it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get item", err)
	}

	rows, err := r.q.Query(ctx, `
		SELECT id, item_id, uom_id, uom_name, conversion_factor
		FROM item_measurements WHERE item_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, wrapErr("list item measurements", err)
	}
	defer rows.Close()
	for rows.Next() {
		var m entity.MeasurementUnit
		if err := rows.Scan(&m.ID, &m.ItemID, &m.UomID, &m.UomName, &m.ConversionFactor); err != nil {
			return nil, fmt.Errorf("scan measurement: %w", err)
		}
		it.Measurements = append(it.Measurements, m)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list item measurements", err)
	}
	return &it, nil
}

// GetMeasurementByID obtiene una medida de cualquier item. Devuelve nil, nil si no existe.
func (r *ItemRepo) GetMeasurementByID(ctx context.Context, id string) (*entity.MeasurementUnit, error) {
	var m entity.MeasurementUnit
	err := r.q.QueryRow(ctx, `
		SELECT id, item_id, uom_id, uom_name, conversion_factor
		FROM item_measurements WHERE id = $1`, id).Scan(
		&m.ID, &m.ItemID, &m.UomID, &m.UomName, &m.ConversionFactor,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get measurement", err)
	}
	return &m, nil
}
