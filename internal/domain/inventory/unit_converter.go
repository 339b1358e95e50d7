package inventory

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// MeasurementEntry cantidad expresada en una medida del item.
type MeasurementEntry struct {
	MeasurementUnitID string
	Count             decimal.Decimal
}

// QuantitySpec las formas admitidas de expresar "cuánto":
//   - MeasurementUnitID + Quantity: una sola medida (forma heredada).
//   - Quantity sin MeasurementUnitID: cantidad directa en unidad base (forma heredada).
//   - Entries: lista de medidas mixtas.
//   - RawBaseAmount: cantidad directa en unidad base (p. ej. gramos sueltos).
//
// Entries y RawBaseAmount se suman. Las formas heredadas no se combinan con su equivalente moderno.
type QuantitySpec struct {
	MeasurementUnitID string
	Quantity          *decimal.Decimal
	Entries           []MeasurementEntry
	RawBaseAmount     *decimal.Decimal
}

// Conversion resultado de convertir una QuantitySpec: magnitud en unidad base y su desglose.
type Conversion struct {
	Quantity  decimal.Decimal
	Breakdown entity.Breakdown
}

// SingleMeasurement devuelve la medida y la cantidad original solo cuando el desglose es
// exactamente un término de medida sin cantidad base suelta.
func (c *Conversion) SingleMeasurement() (*string, *decimal.Decimal) {
	if len(c.Breakdown.MeasurementEntries) != 1 || c.Breakdown.RawBaseAmount != nil {
		return nil, nil
	}
	t := c.Breakdown.MeasurementEntries[0]
	id, count := t.MeasurementUnitID, t.Count
	return &id, &count
}

// MeasurementFinder lectura de medidas que no pertenecen al item, para distinguir
// una medida inexistente de una ajena.
type MeasurementFinder interface {
	GetMeasurementByID(ctx context.Context, id string) (*entity.MeasurementUnit, error)
}

// UnitConverter convierte cantidades a la unidad base del item. No escribe nada.
type UnitConverter struct {
	finder MeasurementFinder
}

// NewUnitConverter construye el conversor. finder puede ser nil.
func NewUnitConverter(finder MeasurementFinder) *UnitConverter {
	return &UnitConverter{finder: finder}
}

// Convert calcula Σ(factor·count) + rawBaseAmount para el item.
func (c *UnitConverter) Convert(ctx context.Context, item *entity.Item, spec QuantitySpec) (*Conversion, error) {
	if item == nil {
		return nil, domain.ErrItemNotFound
	}
	entries, raw, err := normalize(spec)
	if err != nil {
		return nil, err
	}

	out := &Conversion{Breakdown: entity.Breakdown{MeasurementEntries: make([]entity.BreakdownTerm, 0, len(entries))}}
	for _, e := range entries {
		m, err := c.resolve(ctx, item, e.MeasurementUnitID)
		if err != nil {
			return nil, err
		}
		subtotal := m.ConversionFactor.Mul(e.Count)
		out.Breakdown.MeasurementEntries = append(out.Breakdown.MeasurementEntries, entity.BreakdownTerm{
			MeasurementUnitID: m.ID,
			Count:             e.Count,
			ConversionFactor:  m.ConversionFactor,
			Subtotal:          subtotal,
		})
		out.Quantity = out.Quantity.Add(subtotal)
	}
	if raw != nil && (len(entries) == 0 || !raw.IsZero()) {
		r := *raw
		out.Breakdown.RawBaseAmount = &r
		out.Quantity = out.Quantity.Add(r)
	}

	if !out.Quantity.IsPositive() {
		return nil, domain.Errorf(domain.CodeMissingQuantity, "la cantidad convertida es cero")
	}
	return out, nil
}

func (c *UnitConverter) resolve(ctx context.Context, item *entity.Item, id string) (*entity.MeasurementUnit, error) {
	m, ok := item.Measurement(id)
	if !ok {
		if c.finder != nil {
			other, err := c.finder.GetMeasurementByID(ctx, id)
			if err != nil {
				return nil, err
			}
			if other != nil {
				return nil, domain.Errorf(domain.CodeInvalidMeasurement, "la medida %s no pertenece al item %s", id, item.ID)
			}
		}
		return nil, domain.Errorf(domain.CodeMeasurementNotFound, "medida %s no encontrada", id)
	}
	if !m.ConversionFactor.IsPositive() {
		return nil, domain.Errorf(domain.CodeInvalidMeasurement, "la medida %s no tiene factor de conversión positivo", id)
	}
	return m, nil
}

// normalize lleva las formas heredadas a Entries/RawBaseAmount y valida la forma de la entrada.
func normalize(spec QuantitySpec) ([]MeasurementEntry, *decimal.Decimal, error) {
	entries := spec.Entries
	raw := spec.RawBaseAmount

	switch {
	case spec.MeasurementUnitID != "" && spec.Quantity == nil:
		return nil, nil, domain.Errorf(domain.CodeValidation, "measurement_unit_id requiere quantity")
	case spec.MeasurementUnitID != "":
		if len(entries) > 0 {
			return nil, nil, domain.Errorf(domain.CodeValidation, "measurement_unit_id/quantity y measurement_entries son excluyentes")
		}
		entries = []MeasurementEntry{{MeasurementUnitID: spec.MeasurementUnitID, Count: *spec.Quantity}}
	case spec.Quantity != nil:
		if raw != nil {
			return nil, nil, domain.Errorf(domain.CodeValidation, "quantity y raw_base_amount son excluyentes")
		}
		raw = spec.Quantity
	}

	if len(entries) == 0 && raw == nil {
		return nil, nil, domain.Errorf(domain.CodeMissingQuantity, "no se indicó ninguna cantidad")
	}
	for i, e := range entries {
		if e.MeasurementUnitID == "" {
			return nil, nil, domain.Errorf(domain.CodeValidation, "measurement_entries[%d]: falta measurement_unit_id", i)
		}
		if !e.Count.IsPositive() {
			return nil, nil, domain.Errorf(domain.CodeValidation, "measurement_entries[%d]: count debe ser mayor a cero", i)
		}
	}
	if raw != nil && raw.IsNegative() {
		return nil, nil, domain.Errorf(domain.CodeValidation, "raw_base_amount no puede ser negativo")
	}
	return entries, raw, nil
}
