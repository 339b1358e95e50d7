package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// LedgerEntryRepository define el puerto de persistencia del ledger. Solo inserta y lee.
type LedgerEntryRepository interface {
	// Create inserta el movimiento y asigna Seq y CreatedAt.
	Create(ctx context.Context, entry *entity.LedgerEntry) error
	GetByID(ctx context.Context, id string) (*entity.LedgerEntry, error)
	// ListByAccount pagina por Seq descendente.
	ListByAccount(ctx context.Context, locationID, itemID string, limit, offset int) ([]*entity.LedgerEntry, error)
	CountByAccount(ctx context.Context, locationID, itemID string) (int, error)
	// ListAllByAccount devuelve toda la historia por Seq ascendente (orden de reproducción).
	ListAllByAccount(ctx context.Context, locationID, itemID string) ([]*entity.LedgerEntry, error)
	// ListItemIDsByLocation items con cuenta o movimientos en la ubicación.
	ListItemIDsByLocation(ctx context.Context, locationID string) ([]string, error)
}
