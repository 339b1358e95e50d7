package inventory

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// Nombres de operación para métricas y logs.
const (
	OpApply       = "apply"
	OpTransfer    = "transfer"
	OpRebuild     = "rebuild"
	OpSetAbsolute = "set_absolute"
)

// ReferenceSetAbsolute referencia de los ajustes creados por SetAbsolute.
const ReferenceSetAbsolute = "setAbsoluteStock"

// ErrStatementsDisabled lo devuelve Statement cuando no hay generador de PDF configurado.
var ErrStatementsDisabled = errors.New("generador de extractos no configurado")

func orNop(o Observer) Observer {
	if o == nil {
		return nopObserver{}
	}
	return o
}

// observe registra la duración y el resultado de una operación.
func observe(o Observer, op string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
		if code := domain.CodeOf(err); code != "" {
			outcome = strings.ToLower(string(code))
		}
	}
	o.ObserveOperation(op, outcome, time.Since(start))
}

// catalog lecturas de catálogo compartidas por los casos de uso.
type catalog struct {
	itemRepo     repository.ItemRepository
	locationRepo repository.LocationRepository
}

func (c catalog) item(ctx context.Context, id string) (*entity.Item, error) {
	item, err := c.itemRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.Errorf(domain.CodeItemNotFound, "item %s no encontrado", id)
	}
	return item, nil
}

func (c catalog) location(ctx context.Context, id string) (*entity.Location, error) {
	loc, err := c.locationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, domain.Errorf(domain.CodeLocationNotFound, "ubicación %s no encontrada", id)
	}
	return loc, nil
}

// account valida que existan ubicación e item.
func (c catalog) account(ctx context.Context, locationID, itemID string) (*entity.Location, *entity.Item, error) {
	if locationID == "" || itemID == "" {
		return nil, nil, domain.Errorf(domain.CodeValidation, "location_id e item_id son obligatorios")
	}
	loc, err := c.location(ctx, locationID)
	if err != nil {
		return nil, nil, err
	}
	item, err := c.item(ctx, itemID)
	if err != nil {
		return nil, nil, err
	}
	return loc, item, nil
}

func strPtr(s string) *string { return &s }
