package entity

import "time"

// ReleaseEntry es un asiento del libro de liberaciones de un plan.
// Amount > 0 es una liberación; Amount < 0 es una reversión y ReversalOfID apunta a la liberación revertida.
// Los asientos nunca se modifican ni se borran.
type ReleaseEntry struct {
	ID           string
	PlanID       string
	Amount       int
	Actor        string // nombre libre de quien libera o revierte
	ReversalOfID *string
	CreatedBy    string // usuario autenticado que registró el asiento
	CreatedAt    time.Time
}

// IsReversal indica si el asiento es una reversión.
func (e *ReleaseEntry) IsReversal() bool {
	return e.Amount < 0
}
