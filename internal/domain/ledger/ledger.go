// Package ledger calcula cantidades liberadas y pendientes de un plan de trabajo
// a partir de su libro de liberaciones (asientos con signo, solo anexión).
//
// Todas las funciones son puras: el mismo libro produce siempre el mismo resultado.
package ledger

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/control-calidad/internal/domain"
	"github.com/jhoicas/control-calidad/internal/domain/entity"
)

// Estados de avance de un plan.
const (
	StatusInProgress = "EN_PROCESO"
	StatusCompleted  = "COMPLETADO"
)

// Códigos de ValidationError del libro.
const (
	CodeAmountNotPositive  = "AMOUNT_NOT_POSITIVE"
	CodeExceedsPending     = "EXCEEDS_PENDING"
	CodeActorRequired      = "ACTOR_REQUIRED"
	CodeExceedsReversible  = "EXCEEDS_REVERSIBLE"
	CodeReversalOfReversal = "REVERSAL_OF_REVERSAL"
	CodePlanMismatch       = "PLAN_MISMATCH"
)

// Released suma todos los asientos (las reversiones restan).
func Released(entries []*entity.ReleaseEntry) int {
	total := 0
	for _, e := range entries {
		total += e.Amount
	}
	return total
}

// Pending cantidad objetivo menos lo liberado neto.
func Pending(plan *entity.WorkPlan, entries []*entity.ReleaseEntry) int {
	return plan.TargetQuantity - Released(entries)
}

// ReversedAgainst suma la magnitud de las reversiones que apuntan a entryID.
func ReversedAgainst(entries []*entity.ReleaseEntry, entryID string) int {
	total := 0
	for _, e := range entries {
		if e.ReversalOfID != nil && *e.ReversalOfID == entryID {
			total += -e.Amount
		}
	}
	return total
}

// Reversible cantidad que aún puede revertirse de entry. Cero para reversiones.
func Reversible(entry *entity.ReleaseEntry, entries []*entity.ReleaseEntry) int {
	return remaining(entry, ReversedAgainst(entries, entry.ID))
}

func remaining(entry *entity.ReleaseEntry, reversed int) int {
	if entry.Amount <= 0 {
		return 0
	}
	if r := entry.Amount - reversed; r > 0 {
		return r
	}
	return 0
}

// reversedByEntry suma en una pasada las reversiones de cada asiento original.
func reversedByEntry(entries []*entity.ReleaseEntry) map[string]int {
	out := make(map[string]int)
	for _, e := range entries {
		if e.ReversalOfID != nil {
			out[*e.ReversalOfID] += -e.Amount
		}
	}
	return out
}

// EntryView asiento con su remanente reversible.
type EntryView struct {
	Entry      *entity.ReleaseEntry
	Reversed   int
	Reversible int
}

// Summary estado agregado de un plan.
type Summary struct {
	Target     int
	Released   int
	Pending    int
	Percentage decimal.Decimal // liberado / objetivo * 100, un decimal
	Status     string
	Entries    []EntryView
}

// Summarize calcula el resumen del plan y el remanente reversible de cada asiento,
// conservando el orden recibido.
func Summarize(plan *entity.WorkPlan, entries []*entity.ReleaseEntry) Summary {
	released := Released(entries)
	s := Summary{
		Target:     plan.TargetQuantity,
		Released:   released,
		Pending:    plan.TargetQuantity - released,
		Percentage: Percentage(released, plan.TargetQuantity),
		Status:     StatusInProgress,
		Entries:    make([]EntryView, 0, len(entries)),
	}
	if s.Pending <= 0 {
		s.Status = StatusCompleted
	}
	reversed := reversedByEntry(entries)
	for _, e := range entries {
		s.Entries = append(s.Entries, EntryView{
			Entry:      e,
			Reversed:   reversed[e.ID],
			Reversible: remaining(e, reversed[e.ID]),
		})
	}
	return s
}

// Percentage part/total*100 redondeado a un decimal. total <= 0 devuelve 100 si no hay nada pendiente.
func Percentage(part, total int) decimal.Decimal {
	if total <= 0 {
		if part >= total {
			return decimal.NewFromInt(100)
		}
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(part)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(total))).
		Round(1)
}

// ValidateRelease verifica que se pueda liberar amount del plan.
func ValidateRelease(plan *entity.WorkPlan, entries []*entity.ReleaseEntry, amount int, actor string) error {
	if amount <= 0 {
		return domain.NewValidationError(CodeAmountNotPositive, "amount", "la cantidad a liberar debe ser mayor a 0")
	}
	if strings.TrimSpace(actor) == "" {
		return domain.NewValidationError(CodeActorRequired, "actor", "debes ingresar quién libera")
	}
	if amount > Pending(plan, entries) {
		return domain.NewValidationError(CodeExceedsPending, "amount", "no puedes liberar más piezas de las pendientes")
	}
	return nil
}

// ValidateReversal verifica que se pueda revertir amount del asiento entry.
// entries debe ser el libro completo del plan de entry.
func ValidateReversal(entry *entity.ReleaseEntry, entries []*entity.ReleaseEntry, amount int, actor string) error {
	if entry.Amount <= 0 {
		return domain.NewValidationError(CodeReversalOfReversal, "entry_id", "no se puede revertir una reversión")
	}
	if amount <= 0 {
		return domain.NewValidationError(CodeAmountNotPositive, "amount", "la cantidad a revertir debe ser mayor a 0")
	}
	if strings.TrimSpace(actor) == "" {
		return domain.NewValidationError(CodeActorRequired, "actor", "debes ingresar quién revierte")
	}
	if amount > Reversible(entry, entries) {
		return domain.NewValidationError(CodeExceedsReversible, "amount", "la cantidad excede lo que queda por revertir de esta liberación")
	}
	return nil
}
