// Package analytics agrega los reportes de defectos para el tablero y su exportación a Excel.
package analytics

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/control-calidad/internal/application/dto"
	"github.com/jhoicas/control-calidad/internal/application/quality"
	"github.com/jhoicas/control-calidad/internal/domain/entity"
)

// ErrExportUnavailable no hay generador de Excel configurado.
var ErrExportUnavailable = errors.New("exportación no disponible")

// ReportSource consulta de reportes filtrados (implementada por quality.DefectUseCase).
type ReportSource interface {
	Filter(ctx context.Context, from, to, area, client, order string) ([]*entity.DefectReport, error)
}

// DefectSpreadsheet genera el Excel de reportes de defectos.
type DefectSpreadsheet interface {
	ExportDefects(title string, reports []dto.DefectReportResponse) ([]byte, error)
}

// DashboardUseCase resumen del tablero y exportación del periodo filtrado.
type DashboardUseCase struct {
	source ReportSource
	sheets DefectSpreadsheet
}

// NewDashboardUseCase construye el caso de uso. sheets nil deshabilita la exportación.
func NewDashboardUseCase(source ReportSource, sheets DefectSpreadsheet) *DashboardUseCase {
	return &DashboardUseCase{source: source, sheets: sheets}
}

// GetSummary agrega los reportes del rango (inclusivo) y área indicados.
func (uc *DashboardUseCase) GetSummary(ctx context.Context, in dto.DashboardFilter) (*dto.DashboardSummaryResponse, error) {
	reports, err := uc.source.Filter(ctx, in.From, in.To, in.Area, "", "")
	if err != nil {
		return nil, fmt.Errorf("dashboard: reportes: %w", err)
	}
	out := Aggregate(reports)
	return &out, nil
}

// Export genera el Excel del periodo con el nombre reporte_defectos_<desde|todos>_<hasta|todos>.xlsx.
func (uc *DashboardUseCase) Export(ctx context.Context, in dto.DashboardFilter) ([]byte, string, error) {
	if uc.sheets == nil {
		return nil, "", ErrExportUnavailable
	}
	reports, err := uc.source.Filter(ctx, in.From, in.To, in.Area, "", "")
	if err != nil {
		return nil, "", fmt.Errorf("dashboard: reportes: %w", err)
	}
	rows := make([]dto.DefectReportResponse, 0, len(reports))
	for _, r := range reports {
		rows = append(rows, quality.ToReportResponse(r))
	}
	doc, err := uc.sheets.ExportDefects(periodTitle(in), rows)
	if err != nil {
		return nil, "", fmt.Errorf("dashboard: generar Excel: %w", err)
	}
	return doc, ExportFilename(in.From, in.To), nil
}

// ExportFilename nombre del archivo exportado para el rango dado.
func ExportFilename(from, to string) string {
	return fmt.Sprintf("reporte_defectos_%s_%s.xlsx", orTodos(from), orTodos(to))
}

func orTodos(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "todos"
	}
	return s
}

// periodTitle título de la hoja, ej. "Reportes de Defectos - Mayo 2024" cuando el rango es un solo mes.
func periodTitle(in dto.DashboardFilter) string {
	title := "Reportes de Defectos"
	if a := strings.ToUpper(strings.TrimSpace(in.Area)); a != "" {
		title += " " + a
	}
	from, errFrom := time.Parse(dto.DateLayout, strings.TrimSpace(in.From))
	to, errTo := time.Parse(dto.DateLayout, strings.TrimSpace(in.To))
	if errFrom == nil && errTo == nil && from.Year() == to.Year() && from.Month() == to.Month() &&
		from.Day() == 1 && to.AddDate(0, 0, 1).Month() != to.Month() {
		return title + " - " + monthLabel(from)
	}
	return fmt.Sprintf("%s - %s a %s", title, orTodos(in.From), orTodos(in.To))
}

// monthLabel devuelve una etiqueta legible del mes, ej: "Febrero 2026".
func monthLabel(t time.Time) string {
	months := [...]string{
		"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
		"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
	}
	return fmt.Sprintf("%s %d", months[t.Month()-1], t.Year())
}
