package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/control-calidad/internal/domain"
	"github.com/jhoicas/control-calidad/internal/domain/entity"
	"github.com/jhoicas/control-calidad/internal/domain/repository"
)

var _ repository.ReleaseRepository = (*ReleaseRepo)(nil)

const releaseColumns = `id, plan_id, amount, actor, reversal_of_id::text, COALESCE(created_by::text, ''), created_at`

// ReleaseRepo libro de liberaciones sobre PostgreSQL. Solo INSERT y SELECT.
type ReleaseRepo struct {
	q Querier
}

// NewReleaseRepository construye el adaptador del libro. Pasar pool o tx (Querier).
func NewReleaseRepository(q Querier) *ReleaseRepo {
	return &ReleaseRepo{q: q}
}

// Create anexa un asiento al libro.
func (r *ReleaseRepo) Create(ctx context.Context, e *entity.ReleaseEntry) error {
	query := `
		INSERT INTO release_entries (id, plan_id, amount, actor, reversal_of_id, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, '')::uuid, $7)`
	_, err := r.q.Exec(ctx, query, e.ID, e.PlanID, e.Amount, e.Actor, e.ReversalOfID, e.CreatedBy, e.CreatedAt)
	if err != nil {
		switch {
		case isForeignKeyViolation(err):
			return domain.ErrNotFound
		case isCheckViolation(err):
			return fmt.Errorf("insert release entry: %w", domain.ErrInvalidInput)
		}
		return fmt.Errorf("insert release entry: %w", err)
	}
	return nil
}

// GetByID obtiene un asiento por ID.
func (r *ReleaseRepo) GetByID(ctx context.Context, id string) (*entity.ReleaseEntry, error) {
	e, err := scanRelease(r.q.QueryRow(ctx, `SELECT `+releaseColumns+` FROM release_entries WHERE id = $1`, id))
	if err != nil {
		if isNoRow(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get release entry: %w", err)
	}
	return e, nil
}

// ListByPlan devuelve el libro del plan en orden de registro.
func (r *ReleaseRepo) ListByPlan(ctx context.Context, planID string) ([]*entity.ReleaseEntry, error) {
	rows, err := r.q.Query(ctx, `SELECT `+releaseColumns+` FROM release_entries WHERE plan_id = $1 ORDER BY seq`, planID)
	if err != nil {
		return nil, fmt.Errorf("list release entries: %w", err)
	}
	defer rows.Close()

	var list []*entity.ReleaseEntry
	for rows.Next() {
		e, err := scanRelease(rows)
		if err != nil {
			return nil, fmt.Errorf("scan release entry: %w", err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// ListByPlans agrupa por plan los libros de planIDs.
func (r *ReleaseRepo) ListByPlans(ctx context.Context, planIDs []string) (map[string][]*entity.ReleaseEntry, error) {
	out := make(map[string][]*entity.ReleaseEntry, len(planIDs))
	if len(planIDs) == 0 {
		return out, nil
	}
	rows, err := r.q.Query(ctx,
		`SELECT `+releaseColumns+` FROM release_entries WHERE plan_id = ANY($1::uuid[]) ORDER BY plan_id, seq`,
		planIDs)
	if err != nil {
		return nil, fmt.Errorf("list release entries by plans: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		e, err := scanRelease(rows)
		if err != nil {
			return nil, fmt.Errorf("scan release entry: %w", err)
		}
		out[e.PlanID] = append(out[e.PlanID], e)
	}
	return out, rows.Err()
}

func scanRelease(row pgx.Row) (*entity.ReleaseEntry, error) {
	var e entity.ReleaseEntry
	if err := row.Scan(&e.ID, &e.PlanID, &e.Amount, &e.Actor, &e.ReversalOfID, &e.CreatedBy, &e.CreatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}
