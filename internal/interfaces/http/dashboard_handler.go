package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/control-calidad/internal/application/analytics"
	"github.com/jhoicas/control-calidad/internal/application/dto"
)

// DashboardHandler maneja el tablero de defectos y su exportación.
type DashboardHandler struct {
	uc *appanalytics.DashboardUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *appanalytics.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// GetSummary devuelve total, reportes por área, top 10 de defectos y los 10 reportes más recientes.
// GET /api/dashboard/summary?from=&to=&area=
//
// Sin filtros agrega todos los reportes.
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	var in dto.DashboardFilter
	if ok, err := parseQuery(c, &in); !ok {
		return err
	}
	summary, err := h.uc.GetSummary(c.Context(), in)
	if err != nil {
		return writeError(c, err, "")
	}
	return c.JSON(summary)
}

// Export descarga el Excel de los reportes del periodo filtrado.
// GET /api/dashboard/export?from=&to=&area=
func (h *DashboardHandler) Export(c *fiber.Ctx) error {
	var in dto.DashboardFilter
	if ok, err := parseQuery(c, &in); !ok {
		return err
	}
	doc, name, err := h.uc.Export(c.Context(), in)
	if err != nil {
		return writeError(c, err, "")
	}
	return sendFile(c, doc, name, mimeXLSX)
}
