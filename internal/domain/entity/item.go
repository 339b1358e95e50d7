package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item representa un insumo o producto del catálogo. Desde el ledger es de solo lectura.
// BaseUnit es la unidad canónica en la que se lleva el saldo (gramos, piezas...).
type Item struct {
	ID           string
	Code         string // único global
	Name         string
	BaseUnit     string
	IsProduction bool
	Measurements []MeasurementUnit
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// MeasurementUnit es una unidad alterna para registrar movimientos de un Item (caja, paquete...).
// ConversionFactor multiplica la cantidad para llevarla a la unidad base; debe ser > 0.
type MeasurementUnit struct {
	ID               string
	ItemID           string
	UomID            string
	UomName          string
	ConversionFactor decimal.Decimal
}

// Measurement busca una medida propia del item por id.
func (i *Item) Measurement(id string) (*MeasurementUnit, bool) {
	for k := range i.Measurements {
		if i.Measurements[k].ID == id {
			return &i.Measurements[k], true
		}
	}
	return nil, false
}
