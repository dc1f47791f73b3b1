package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/control-calidad/internal/domain"
	"github.com/jhoicas/control-calidad/internal/domain/entity"
	"github.com/jhoicas/control-calidad/internal/domain/repository"
)

var _ repository.WorkPlanRepository = (*WorkPlanRepo)(nil)

const workPlanColumns = `id, area, target_quantity, product, color, lf, pt, lp, order_number, client,
	version, COALESCE(created_by::text, ''), created_at`

// WorkPlanRepo implementación de WorkPlanRepository sobre PostgreSQL (usable con pool o tx).
type WorkPlanRepo struct {
	q Querier
}

// NewWorkPlanRepository construye el adaptador de planes. Pasar pool o tx (Querier).
func NewWorkPlanRepository(q Querier) *WorkPlanRepo {
	return &WorkPlanRepo{q: q}
}

// Create persiste un plan nuevo.
func (r *WorkPlanRepo) Create(ctx context.Context, p *entity.WorkPlan) error {
	query := `
		INSERT INTO work_plans (id, area, target_quantity, product, color, lf, pt, lp, order_number, client,
			version, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NULLIF($12, '')::uuid, $13)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.Area, p.TargetQuantity, p.Product, p.Color, p.LF, p.PT, p.LP, p.Order, p.Client,
		p.Version, p.CreatedBy, p.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isCheckViolation(err) {
			return fmt.Errorf("insert work plan: %w", domain.ErrInvalidInput)
		}
		return fmt.Errorf("insert work plan: %w", err)
	}
	return nil
}

// GetByID obtiene un plan por ID.
func (r *WorkPlanRepo) GetByID(ctx context.Context, id string) (*entity.WorkPlan, error) {
	return r.get(ctx, `SELECT `+workPlanColumns+` FROM work_plans WHERE id = $1`, id)
}

// GetForUpdate obtiene el plan y bloquea su fila (SELECT FOR UPDATE). Solo tiene efecto dentro de una tx.
func (r *WorkPlanRepo) GetForUpdate(ctx context.Context, id string) (*entity.WorkPlan, error) {
	return r.get(ctx, `SELECT `+workPlanColumns+` FROM work_plans WHERE id = $1 FOR UPDATE`, id)
}

func (r *WorkPlanRepo) get(ctx context.Context, query, id string) (*entity.WorkPlan, error) {
	p, err := scanWorkPlan(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRow(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get work plan: %w", err)
	}
	return p, nil
}

// BumpVersion incrementa la versión del plan.
func (r *WorkPlanRepo) BumpVersion(ctx context.Context, id string) (int, error) {
	var v int
	err := r.q.QueryRow(ctx, `UPDATE work_plans SET version = version + 1 WHERE id = $1 RETURNING version`, id).Scan(&v)
	if err != nil {
		if isNoRow(err) {
			return 0, domain.ErrNotFound
		}
		return 0, fmt.Errorf("bump work plan version: %w", err)
	}
	return v, nil
}

// List devuelve los planes del área (todas si area es vacío), más recientes primero.
func (r *WorkPlanRepo) List(ctx context.Context, area string) ([]*entity.WorkPlan, error) {
	query := `SELECT ` + workPlanColumns + ` FROM work_plans
		WHERE ($1 = '' OR area = $1)
		ORDER BY created_at DESC, id`
	rows, err := r.q.Query(ctx, query, area)
	if err != nil {
		return nil, fmt.Errorf("list work plans: %w", err)
	}
	defer rows.Close()

	var list []*entity.WorkPlan
	for rows.Next() {
		p, err := scanWorkPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan work plan: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func scanWorkPlan(row pgx.Row) (*entity.WorkPlan, error) {
	var p entity.WorkPlan
	err := row.Scan(
		&p.ID, &p.Area, &p.TargetQuantity, &p.Product, &p.Color, &p.LF, &p.PT, &p.LP, &p.Order, &p.Client,
		&p.Version, &p.CreatedBy, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
