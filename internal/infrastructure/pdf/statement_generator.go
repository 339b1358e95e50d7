// Package pdf genera el extracto (kardex) de una cuenta de stock.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Ubicación + tipo    │  Item + código + fecha        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: # | Fecha | Tipo | Medida | Cantidad | Saldo | Ref   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: Entradas / Salidas / Saldo en caché + QR           │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorRed     = &props.Color{Red: 170, Green: 30, Blue: 30}
)

// ── Generator ─────────────────────────────────────────────────────────────────

var _ inventory.StatementGenerator = (*StatementGenerator)(nil)

// StatementGenerator implementa inventory.StatementGenerator usando Maroto v2.
type StatementGenerator struct{}

// NewStatementGenerator construye el generador.
func NewStatementGenerator() *StatementGenerator { return &StatementGenerator{} }

// Generate genera el PDF y devuelve sus bytes.
func (g *StatementGenerator) Generate(data inventory.StatementData) ([]byte, error) {
	if data.Location == nil || data.Item == nil || data.Account == nil {
		return nil, fmt.Errorf("pdf: extracto incompleto")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 8}).
		WithTitle("Kardex "+data.Item.Code, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(data))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow(data.Item.BaseUnit))
	m.AddRows(entryRows(data.Entries)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(summaryRow(data))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: ubicación (izq) e item + fecha de emisión (der).
func headerRow(data inventory.StatementData) core.Row {
	return row.New(18).Add(
		col.New(6).Add(
			text.New(data.Location.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("%s · %s", data.Location.Kind, data.Location.ID), props.Text{
				Size: 8, Top: 9, Color: colorGray,
			}),
		),
		col.New(6).Add(
			text.New("KARDEX DE INVENTARIO", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("%s  %s", data.Item.Code, data.Item.Name), props.Text{
				Style: fontstyle.Bold, Size: 11, Align: align.Right, Top: 6,
			}),
			text.New("Emitido: "+data.GeneratedAt.Format("02/01/2006 15:04 MST"), props.Text{
				Size: 7, Align: align.Right, Top: 13, Color: colorGray,
			}),
		),
	)
}

func tableHeaderRow(baseUnit string) core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 7.5, Align: a, Color: colorPrimary, Top: 1.5,
		}))
	}
	return row.New(7).Add(
		h("#", 1, align.Left),
		h("Fecha", 2, align.Left),
		h("Tipo", 2, align.Left),
		h("Medida", 2, align.Left),
		h("Cantidad ("+nonEmpty(baseUnit, "u")+")", 2, align.Right),
		h("Saldo", 1, align.Right),
		h("Referencia", 2, align.Left),
	)
}

// entryRows: una fila por movimiento, las salidas en rojo y con signo.
func entryRows(entries []*entity.LedgerEntry) []core.Row {
	rows := make([]core.Row, 0, len(entries))
	for _, e := range entries {
		cell := func(s string, size int, a align.Type, c *props.Color) core.Col {
			return col.New(size).Add(text.New(s, props.Text{Size: 7, Align: a, Top: 1, Color: c}))
		}
		var qtyColor *props.Color
		if e.Direction == entity.DirectionDecrease {
			qtyColor = colorRed
		}
		rows = append(rows, row.New(5).Add(
			cell(fmt.Sprintf("%d", e.Seq), 1, align.Left, colorGray),
			cell(e.CreatedAt.Format("02/01/06 15:04"), 2, align.Left, nil),
			cell(kindLabel(e), 2, align.Left, nil),
			cell(measurementLabel(e), 2, align.Left, colorGray),
			cell(e.Signed().String(), 2, align.Right, qtyColor),
			cell(e.BalanceAfter.String(), 1, align.Right, nil),
			cell(truncate(nonEmpty(e.Reference, e.Note), 28), 2, align.Left, colorGray),
		))
	}
	return rows
}

// summaryRow: totales por dirección, saldo reproducido vs caché y QR de verificación.
func summaryRow(data inventory.StatementData) core.Row {
	in, out := decimal.Zero, decimal.Zero
	for _, e := range data.Entries {
		if e.Direction == entity.DirectionDecrease {
			out = out.Add(e.ConvertedQuantity)
		} else {
			in = in.Add(e.ConvertedQuantity)
		}
	}
	replayed := in.Sub(out)
	label := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Right, Right: 2, Top: top})
	}
	value := func(s string, top float64, c *props.Color) core.Component {
		return text.New(s, props.Text{Size: 8, Align: align.Right, Right: 1, Top: top, Color: c})
	}
	var cachedColor *props.Color
	if !replayed.Equal(data.Account.Balance) {
		cachedColor = colorRed
	}

	return row.New(30).Add(
		col.New(3).Add(code.NewQr(verificationCode(data, replayed), props.Rect{Percent: 90, Center: true})),
		col.New(3),
		col.New(3).Add(
			label("Entradas:", 2),
			label("Salidas:", 8),
			label("Saldo según ledger:", 14),
			label("Saldo en caché:", 20),
		),
		col.New(3).Add(
			value(in.String(), 2, nil),
			value(out.Neg().String(), 8, colorRed),
			value(replayed.String(), 14, colorPrimary),
			value(data.Account.Balance.String(), 20, cachedColor),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func kindLabel(e *entity.LedgerEntry) string {
	if e.CounterpartyLocationID != nil {
		return fmt.Sprintf("%s ↔ %s", e.Kind, *e.CounterpartyLocationID)
	}
	return string(e.Kind)
}

// measurementLabel: "3 × box" si hubo una sola medida; "mixta" si el desglose tiene varios términos.
func measurementLabel(e *entity.LedgerEntry) string {
	if e.MeasurementUnitID != nil && e.RawQuantity != nil {
		return fmt.Sprintf("%s × %s", e.RawQuantity.String(), *e.MeasurementUnitID)
	}
	if len(e.Breakdown.MeasurementEntries) > 0 {
		return "mixta"
	}
	return "-"
}

func verificationCode(data inventory.StatementData, replayed decimal.Decimal) string {
	var lastSeq int64
	if n := len(data.Entries); n > 0 {
		lastSeq = data.Entries[n-1].Seq
	}
	return strings.Join([]string{
		data.Location.ID, data.Item.ID,
		fmt.Sprintf("seq=%d", lastSeq),
		"balance=" + replayed.String(),
		data.GeneratedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}, "|")
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
