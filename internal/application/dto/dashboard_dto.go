package dto

import "github.com/shopspring/decimal"

// DashboardFilter filtros del tablero.
type DashboardFilter struct {
	From string `query:"from"`
	To   string `query:"to"`
	Area string `query:"area"`
}

// AreaCount reportes de un área y su porcentaje del total.
type AreaCount struct {
	Area       string          `json:"area"`
	Count      int             `json:"count"`
	Percentage decimal.Decimal `json:"percentage"`
}

// DefectCount frecuencia de una etiqueta de defecto.
type DefectCount struct {
	Defect     string          `json:"defect"`
	Label      string          `json:"label"`
	Count      int             `json:"count"`
	Percentage decimal.Decimal `json:"percentage"`
}

// DashboardSummaryResponse agregados del tablero de defectos.
type DashboardSummaryResponse struct {
	Total      int                    `json:"total"`
	ByArea     []AreaCount            `json:"by_area"`
	TopDefects []DefectCount          `json:"top_defects"`
	Recent     []DefectReportResponse `json:"recent"`
}
