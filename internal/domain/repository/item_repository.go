package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// ItemRepository puerto de lectura del catálogo de items. Devuelve nil, nil si no existe.
type ItemRepository interface {
	// GetByID incluye las medidas del item.
	GetByID(ctx context.Context, id string) (*entity.Item, error)
	GetMeasurementByID(ctx context.Context, id string) (*entity.MeasurementUnit, error)
}
