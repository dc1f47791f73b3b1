package repository

import (
	"context"

	"github.com/jhoicas/control-calidad/internal/domain/entity"
)

// ReleaseRepository define el puerto del libro de liberaciones. Solo anexión: no hay Update ni Delete.
type ReleaseRepository interface {
	Create(ctx context.Context, entry *entity.ReleaseEntry) error
	// GetByID devuelve (nil, nil) si el asiento no existe.
	GetByID(ctx context.Context, id string) (*entity.ReleaseEntry, error)
	// ListByPlan devuelve el libro completo del plan en orden de registro.
	ListByPlan(ctx context.Context, planID string) ([]*entity.ReleaseEntry, error)
	// ListByPlans carga los libros de varios planes en una sola consulta.
	ListByPlans(ctx context.Context, planIDs []string) (map[string][]*entity.ReleaseEntry, error)
}
