package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreatePlanRequest entrada para crear un plan de trabajo.
type CreatePlanRequest struct {
	Area           string `json:"area" validate:"required"`
	TargetQuantity int    `json:"target_quantity" validate:"min=0"`
	Product        string `json:"product" validate:"required,max=200"`
	Color          string `json:"color" validate:"max=100"`
	LF             string `json:"lf" validate:"max=100"`
	PT             string `json:"pt" validate:"max=100"`
	LP             string `json:"lp" validate:"max=100"`
	Order          string `json:"order" validate:"max=100"`
	Client         string `json:"client" validate:"max=200"`
}

// ListPlansRequest filtros del listado de planes.
type ListPlansRequest struct {
	PageRequest
	Area   string `query:"area"`
	Status string `query:"status" validate:"omitempty,oneof=EN_PROCESO COMPLETADO"`
	Q      string `query:"q" validate:"max=200"`
}

// PlanResponse plan con su avance calculado desde el libro.
type PlanResponse struct {
	ID             string          `json:"id"`
	Area           string          `json:"area"`
	TargetQuantity int             `json:"target_quantity"`
	Product        string          `json:"product"`
	Color          string          `json:"color"`
	LF             string          `json:"lf"`
	PT             string          `json:"pt"`
	LP             string          `json:"lp"`
	Order          string          `json:"order"`
	Client         string          `json:"client"`
	Version        int             `json:"version"`
	Released       int             `json:"released"`
	Pending        int             `json:"pending"`
	Percentage     decimal.Decimal `json:"percentage"`
	Status         string          `json:"status"`
	CreatedBy      string          `json:"created_by,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// PlanDetailResponse plan con el historial completo del libro (más antiguo primero).
type PlanDetailResponse struct {
	PlanResponse
	Entries []ReleaseEntryResponse `json:"entries"`
}

// PlanListResponse página de planes.
type PlanListResponse struct {
	Items []PlanResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}
