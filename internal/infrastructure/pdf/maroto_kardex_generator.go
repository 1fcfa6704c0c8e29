// Package pdf implementa la generación del kardex de producto.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Producto + código  │  Fecha de emisión             │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: Disponible / Costo promedio / Último costo         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  LOTES: Código | Vencimiento | Cantidad | Costo unit.        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  KARDEX: Fecha | Tipo | Lote | Cantidad | Saldo              │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
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

	"github.com/barratec/barra-api/internal/application/report"
	"github.com/barratec/barra-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 20, Green: 60, Blue: 100}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoKardexGenerator implementa report.KardexPDFGenerator usando Maroto v2.
type MarotoKardexGenerator struct{}

// NewMarotoKardexGenerator construye el generador.
func NewMarotoKardexGenerator() *MarotoKardexGenerator { return &MarotoKardexGenerator{} }

// GenerateKardexPDF genera el PDF y devuelve sus bytes.
func (g *MarotoKardexGenerator) GenerateKardexPDF(_ context.Context, data *report.KardexData) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Kardex de producto", true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(data))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(summaryRow(data.Stock))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	if len(data.Stock.Batches) > 0 {
		m.AddRows(batchHeaderRow())
		for _, r := range batchRows(data.Stock.Batches) {
			m.AddRows(r)
		}
		m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	}

	m.AddRows(kardexHeaderRow())
	for _, r := range kardexRows(data.Lines) {
		m.AddRows(r)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: nombre del producto (izq) y fecha de emisión (der).
func headerRow(data *report.KardexData) core.Row {
	sub := data.Product.Unit
	if data.Product.Code != "" {
		sub = data.Product.Code + "   |   " + sub
	}
	return row.New(16).Add(
		col.New(8).Add(
			text.New(data.Product.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(sub, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(4).Add(
			text.New("KARDEX DE PRODUCTO", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New("Emitido: "+data.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 8, Color: colorGray,
			}),
		),
	)
}

// summaryRow: disponible, costo promedio y último costo.
func summaryRow(stock *entity.Stock) core.Row {
	cell := func(label, value string) core.Col {
		return col.New(4).Add(
			text.New(label, props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(value, props.Text{Size: 10, Top: 7}),
		)
	}
	return row.New(14).Add(
		cell("DISPONIBLE", stock.TotalAvailable().String()+" "+stock.Unit),
		cell("COSTO PROMEDIO", "$"+stock.AverageCost.StringFixed(2)),
		cell("ÚLTIMO COSTO", "$"+stock.LastUnitCost.StringFixed(2)),
	)
}

// batchHeaderRow: cabecera de la tabla de lotes.
func batchHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Lote", 4, align.Left),
		h("Vencimiento", 3, align.Center),
		h("Cantidad", 2, align.Right),
		h("Costo unit.", 3, align.Right),
	)
}

// batchRows: una fila por lote vigente.
func batchRows(batches []entity.Batch) []core.Row {
	result := make([]core.Row, 0, len(batches))
	for _, b := range batches {
		code := b.Code
		if code == "" {
			code = "(sin lote)"
		}
		expiry := "—"
		if b.ExpiryDate != nil {
			expiry = b.ExpiryDate.Format("02/01/2006")
		}
		result = append(result, row.New(6).Add(
			col.New(4).Add(text.New(code, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(3).Add(text.New(expiry, props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(b.Quantity.String(), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(3).Add(text.New("$"+b.UnitCost.StringFixed(2), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return result
}

// kardexHeaderRow: cabecera de la tabla de movimientos.
func kardexHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Fecha", 3, align.Left),
		h("Tipo", 2, align.Left),
		h("Lote", 3, align.Left),
		h("Cantidad", 2, align.Right),
		h("Saldo", 2, align.Right),
	)
}

// kardexRows: una fila por movimiento, en orden cronológico.
func kardexRows(lines []report.KardexLine) []core.Row {
	result := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		m := l.Movement
		lote := m.BatchCode
		if lote == "" {
			lote = "—"
		}
		result = append(result, row.New(6).Add(
			col.New(3).Add(text.New(m.CreatedAt.Format("02/01/2006 15:04"), props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(m.Type, props.Text{Size: 8, Top: 1})),
			col.New(3).Add(text.New(lote, props.Text{Size: 8, Top: 1})),
			col.New(2).Add(text.New(m.Quantity.String(), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(l.Balance.String(), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return result
}
