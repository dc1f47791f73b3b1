package entity

import "time"

// WorkPlan es un plan de trabajo (lote de producción) con una cantidad objetivo.
// Inmutable una vez creado; Version solo avanza al anexar movimientos a su libro de liberaciones.
type WorkPlan struct {
	ID             string
	Area           string // SILLAS, SALAS
	TargetQuantity int
	Product        string
	Color          string
	LF             string
	PT             string
	LP             string
	Order          string // pedido
	Client         string // cliente
	Version        int
	CreatedBy      string
	CreatedAt      time.Time
}
