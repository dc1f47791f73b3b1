// Package pdf genera el certificado PDF del libro de liberaciones de un plan de trabajo.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Producto + Área     │  Estado + Fecha de emisión   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  PLAN: Color / LF / PT / LP / Pedido / Cliente               │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Fecha | Movimiento | Responsable | Cant. | Reversible│
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Objetivo / Liberado / Pendiente / % Avance         │
//	│  FOOTER: QR con el ID del plan + leyenda                     │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"
	"time"

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

	"github.com/jhoicas/control-calidad/internal/application/dto"
	"github.com/jhoicas/control-calidad/internal/application/planning"
	"github.com/jhoicas/control-calidad/internal/domain/ledger"
)

var _ planning.LedgerPDFGenerator = (*MarotoPDFGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
	colorRed     = &props.Color{Red: 170, Green: 30, Blue: 30}
	colorHeader  = &props.Color{Red: 0, Green: 70, Blue: 127}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa planning.LedgerPDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	company string
	now     func() time.Time
}

// NewMarotoPDFGenerator construye el generador. company aparece como autor del documento.
func NewMarotoPDFGenerator(company string) *MarotoPDFGenerator {
	return &MarotoPDFGenerator{company: nonEmpty(company, "Control de Calidad"), now: time.Now}
}

// GeneratePlanLedgerPDF genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GeneratePlanLedgerPDF(_ context.Context, plan dto.PlanDetailResponse) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Libro de liberaciones - "+plan.Product, true).
		WithAuthor(g.company, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(plan, g.now()))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(planRow(plan))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableEntryRows(plan.Entries)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(plan))

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(plan))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: producto + área (izq) y estado + fecha de emisión (der).
func headerRow(plan dto.PlanDetailResponse, now time.Time) core.Row {
	status, statusColor := "EN PROCESO", colorGray
	if plan.Status == ledger.StatusCompleted {
		status, statusColor = "COMPLETADO", colorPrimary
	}

	return row.New(18).Add(
		col.New(7).Add(
			text.New(plan.Product, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Área: "+plan.Area, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("LIBRO DE LIBERACIONES", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(status, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7, Color: statusColor,
			}),
			text.New("Emitido: "+now.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// planRow: identificación del lote.
func planRow(plan dto.PlanDetailResponse) core.Row {
	return row.New(14).Add(
		col.New(12).Add(
			text.New("DATOS DEL PLAN", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("Color: %s   |   LF: %s   |   PT: %s   |   LP: %s",
				nonEmpty(plan.Color, "—"),
				nonEmpty(plan.LF, "—"),
				nonEmpty(plan.PT, "—"),
				nonEmpty(plan.LP, "—"),
			), props.Text{Size: 8, Top: 6, Color: colorGray}),
			text.New(fmt.Sprintf("Pedido: %s   |   Cliente: %s   |   Creado: %s",
				nonEmpty(plan.Order, "—"),
				nonEmpty(plan.Client, "—"),
				plan.CreatedAt.Format("02/01/2006"),
			), props.Text{Size: 8, Top: 10, Color: colorGray}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla del libro.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).WithStyle(&props.Cell{BackgroundColor: colorHeader}).Add(
		h("Fecha", 3, align.Left),
		h("Movimiento", 2, align.Left),
		h("Responsable", 4, align.Left),
		h("Cant.", 1, align.Right),
		h("Reversible", 2, align.Right),
	)
}

// tableEntryRows: una fila por asiento, más antiguo primero. Las reversiones van en rojo.
func tableEntryRows(entries []dto.ReleaseEntryResponse) []core.Row {
	if len(entries) == 0 {
		return []core.Row{row.New(7).Add(col.New(12).Add(
			text.New("Sin liberaciones registradas", props.Text{
				Size: 8, Align: align.Center, Top: 1, Color: colorGray,
			}),
		))}
	}

	result := make([]core.Row, 0, len(entries))
	for _, e := range entries {
		kind, color, reversible := "Liberación", (*props.Color)(nil), strconv.Itoa(e.Reversible)
		if e.ReversalOfID != nil {
			kind, color, reversible = "Reversión", colorRed, "—"
		}
		result = append(result, row.New(7).Add(
			col.New(3).Add(text.New(
				e.CreatedAt.Format("02/01/2006 15:04"),
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(2).Add(text.New(kind, props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1, Color: color})),
			col.New(4).Add(text.New(
				nonEmpty(e.Label, "—"),
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(1).Add(text.New(
				formatQty(e.Amount),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1, Color: color},
			)),
			col.New(2).Add(text.New(reversible, props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return result
}

// totalsRow: bloque de totales alineado a la derecha.
func totalsRow(plan dto.PlanDetailResponse) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2,
		})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	grand := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 1,
		})
	}

	return row.New(26).Add(
		col.New(6),
		col.New(3).Add(
			label("Objetivo:"),
			label("Liberado:"),
			label("Pendiente:"),
			label("Avance:"),
		),
		col.New(3).Add(
			value(formatQty(plan.TargetQuantity)),
			value(formatQty(plan.Released)),
			value(formatQty(plan.Pending)),
			grand(plan.Percentage.StringFixed(1)+"%"),
		),
	)
}

// footerRow: QR con el ID del plan para ubicarlo en la aplicación.
func footerRow(plan dto.PlanDetailResponse) core.Row {
	return row.New(40).Add(
		col.New(3).Add(code.NewQr(plan.ID, props.Rect{Percent: 95, Center: true})),
		col.New(9).Add(
			text.New("Plan "+plan.ID, props.Text{Size: 7, Top: 4, Left: 3, Color: colorGray}),
			text.New(fmt.Sprintf("Versión del libro: %d", plan.Version), props.Text{
				Size: 7, Top: 9, Left: 3, Color: colorGray,
			}),
			text.New("Las reversiones descuentan unidades de la liberación original; "+
				"el historial no se modifica.", props.Text{
				Size: 7, Top: 16, Left: 3, Color: colorGray,
			}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatQty inserta puntos de miles, conservando el signo.
// Ej: 25000 → "25.000", -1500 → "-1.500"
func formatQty(n int) string {
	s := strconv.Itoa(n)
	sign := ""
	if n < 0 {
		sign, s = "-", s[1:]
	}
	k := len(s)
	if k <= 3 {
		return sign + s
	}
	buf := make([]byte, 0, k+k/3)
	for i, c := range []byte(s) {
		if i > 0 && (k-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return sign + string(buf)
}
