// Package excel genera los libros .xlsx de reportes de defectos y de planes de trabajo.
package excel

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/control-calidad/internal/application/analytics"
	"github.com/jhoicas/control-calidad/internal/application/dto"
	"github.com/jhoicas/control-calidad/internal/application/planning"
)

var (
	_ analytics.DefectSpreadsheet = (*Exporter)(nil)
	_ planning.PlanSpreadsheet    = (*Exporter)(nil)
)

// Nombres de hojas.
const (
	SheetDefects  = "Reportes de Defectos"
	SheetPlans    = "Planes"
	SheetReleases = "Liberaciones"
)

// DefectColumns encabezados de la hoja de reportes, en orden.
var DefectColumns = []string{
	"Fecha", "Fecha Creación", "Área", "Producto", "Color", "LF", "PT", "LP",
	"Pedido", "Cliente", "Defectos", "Descripción", "Fotos",
}

// PlanColumns encabezados de la hoja de planes.
var PlanColumns = []string{
	"Área", "Producto", "Color", "LF", "PT", "LP", "Pedido", "Cliente",
	"Objetivo", "Liberado", "Pendiente", "% Avance", "Estado", "Creado",
}

// ReleaseColumns encabezados de la hoja de liberaciones.
var ReleaseColumns = []string{
	"Producto", "Pedido", "Fecha", "Movimiento", "Cantidad", "Responsable", "Revertido", "Reversible",
}

const (
	colorHeader = "1F4E79"
	colorTitle  = "2E75B6"
)

// Exporter genera libros con título de periodo (fila 1) y encabezado (fila 2) con estilo.
type Exporter struct{}

// NewExporter construye el generador.
func NewExporter() *Exporter { return &Exporter{} }

// ExportDefects hoja "Reportes de Defectos" con una fila por reporte.
func (e *Exporter) ExportDefects(title string, reports []dto.DefectReportResponse) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetDefects); err != nil {
		return nil, err
	}
	s, err := newSheet(f, SheetDefects, title, DefectColumns)
	if err != nil {
		return nil, err
	}
	for i, r := range reports {
		urls := make([]string, 0, len(r.Photos))
		for _, p := range r.Photos {
			urls = append(urls, p.URL)
		}
		if err := s.row(i, []any{
			r.Date,
			r.CreatedAt.Format(dto.DateLayout),
			r.Area, r.Product, r.Color, r.LF, r.PT, r.LP, r.Order, r.Client,
			strings.Join(r.Defects, ", "),
			r.Description,
			strings.Join(urls, "\n"),
		}); err != nil {
			return nil, err
		}
	}
	if err := s.widths(map[string]float64{"A": 12, "B": 14, "D": 28, "K": 40, "L": 40, "M": 60}); err != nil {
		return nil, err
	}
	return write(f)
}

// ExportPlans hojas "Planes" (avance por plan) y "Liberaciones" (cada asiento del libro).
func (e *Exporter) ExportPlans(title string, plans []dto.PlanDetailResponse) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetPlans); err != nil {
		return nil, err
	}
	ps, err := newSheet(f, SheetPlans, title, PlanColumns)
	if err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(SheetReleases); err != nil {
		return nil, err
	}
	rs, err := newSheet(f, SheetReleases, title, ReleaseColumns)
	if err != nil {
		return nil, err
	}

	n := 0
	for i, p := range plans {
		pct, _ := p.Percentage.Float64()
		if err := ps.row(i, []any{
			p.Area, p.Product, p.Color, p.LF, p.PT, p.LP, p.Order, p.Client,
			p.TargetQuantity, p.Released, p.Pending, pct, p.Status,
			p.CreatedAt.Format(dto.DateLayout),
		}); err != nil {
			return nil, err
		}
		for _, en := range p.Entries {
			kind := "Liberación"
			if en.ReversalOfID != nil {
				kind = "Reversión"
			}
			if err := rs.row(n, []any{
				p.Product, p.Order,
				en.CreatedAt.Format("2006-01-02 15:04"),
				kind, en.Amount, en.Label, en.Reversed, en.Reversible,
			}); err != nil {
				return nil, err
			}
			n++
		}
	}
	if err := ps.widths(map[string]float64{"B": 28, "H": 24}); err != nil {
		return nil, err
	}
	if err := rs.widths(map[string]float64{"A": 28, "C": 18, "F": 28}); err != nil {
		return nil, err
	}
	return write(f)
}

type sheet struct {
	f    *excelize.File
	name string
	cols int
}

// newSheet escribe título combinado y encabezados con estilo, y congela el encabezado.
func newSheet(f *excelize.File, name, title string, headers []string) (*sheet, error) {
	s := &sheet{f: f, name: name, cols: len(headers)}
	last, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return nil, err
	}

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{colorTitle}},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{colorHeader}},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return nil, err
	}

	if err := f.SetCellValue(name, "A1", title); err != nil {
		return nil, err
	}
	if err := f.MergeCell(name, "A1", last+"1"); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(name, "A1", last+"1", titleStyle); err != nil {
		return nil, err
	}
	if err := f.SetRowHeight(name, 1, 24); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(name, "A2", &headers); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(name, "A2", last+"2", headerStyle); err != nil {
		return nil, err
	}
	if err := f.SetPanes(name, &excelize.Panes{
		Freeze: true, YSplit: 2, TopLeftCell: "A3", ActivePane: "bottomLeft",
	}); err != nil {
		return nil, err
	}
	return s, nil
}

// row escribe la fila de datos i (0 = primera fila bajo el encabezado).
func (s *sheet) row(i int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, i+3)
	if err != nil {
		return err
	}
	return s.f.SetSheetRow(s.name, cell, &values)
}

func (s *sheet) widths(w map[string]float64) error {
	last, err := excelize.ColumnNumberToName(s.cols)
	if err != nil {
		return err
	}
	if err := s.f.SetColWidth(s.name, "A", last, 14); err != nil {
		return err
	}
	for col, width := range w {
		if err := s.f.SetColWidth(s.name, col, col, width); err != nil {
			return err
		}
	}
	return nil
}

func write(f *excelize.File) ([]byte, error) {
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("excel: escribir libro: %w", err)
	}
	return buf.Bytes(), nil
}
