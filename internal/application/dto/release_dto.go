package dto

import "time"

// RecordReleaseRequest entrada para liberar piezas de un plan.
// ExpectedVersion opcional: si no coincide con la versión actual del plan la escritura se rechaza.
type RecordReleaseRequest struct {
	Amount          int    `json:"amount"`
	Actor           string `json:"actor" validate:"max=120"`
	ExpectedVersion *int   `json:"expected_version,omitempty" validate:"omitempty,min=0"`
}

// RecordReversalRequest entrada para revertir (total o parcialmente) una liberación.
type RecordReversalRequest struct {
	Amount          int    `json:"amount"`
	Actor           string `json:"actor" validate:"max=120"`
	ExpectedVersion *int   `json:"expected_version,omitempty" validate:"omitempty,min=0"`
}

// ReleaseEntryResponse asiento del libro para mostrar en el historial.
type ReleaseEntryResponse struct {
	ID           string    `json:"id"`
	PlanID       string    `json:"plan_id"`
	Amount       int       `json:"amount"`
	Actor        string    `json:"actor"`
	Label        string    `json:"label"`
	ReversalOfID *string   `json:"reversal_of_id,omitempty"`
	Reversed     int       `json:"reversed"`
	Reversible   int       `json:"reversible"`
	CanRevert    bool      `json:"can_revert"`
	CreatedBy    string    `json:"created_by,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// ReleaseResultResponse asiento recién anexado y estado resultante del plan.
type ReleaseResultResponse struct {
	Entry ReleaseEntryResponse `json:"entry"`
	Plan  PlanResponse         `json:"plan"`
}
