package repository

import (
	"context"

	"github.com/jhoicas/control-calidad/internal/domain/entity"
)

// WorkPlanRepository define el puerto de persistencia para planes de trabajo.
// Los planes no se actualizan salvo su Version, que avanza con cada asiento del libro.
type WorkPlanRepository interface {
	Create(ctx context.Context, plan *entity.WorkPlan) error
	// GetByID devuelve (nil, nil) si el plan no existe.
	GetByID(ctx context.Context, id string) (*entity.WorkPlan, error)
	// GetForUpdate bloquea la fila del plan hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.WorkPlan, error)
	// BumpVersion incrementa la versión del plan y devuelve la nueva.
	BumpVersion(ctx context.Context, id string) (int, error)
	// List devuelve los planes del área (todas si area es vacío), más recientes primero.
	List(ctx context.Context, area string) ([]*entity.WorkPlan, error)
}
