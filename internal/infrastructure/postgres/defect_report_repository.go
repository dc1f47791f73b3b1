package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/control-calidad/internal/domain/entity"
	"github.com/jhoicas/control-calidad/internal/domain/repository"
)

var (
	_ repository.DefectReportRepository = (*DefectReportRepo)(nil)
	_ repository.DefectPhotoRepository  = (*DefectPhotoRepo)(nil)
)

const defectReportColumns = `id, report_date, area, product, color, lf, pt, lp, order_number, client,
	defects, description, COALESCE(created_by::text, ''), created_at`

const defectPhotoColumns = `id, report_id, object_key, url, thumbnail_url, created_at`

// DefectReportRepo reportes de defectos sobre PostgreSQL.
type DefectReportRepo struct {
	pool *pgxpool.Pool
}

// NewDefectReportRepository construye el adaptador de reportes.
func NewDefectReportRepository(pool *pgxpool.Pool) *DefectReportRepo {
	return &DefectReportRepo{pool: pool}
}

// Create persiste un reporte (sin fotos; se agregan luego con DefectPhotoRepo).
func (r *DefectReportRepo) Create(ctx context.Context, d *entity.DefectReport) error {
	query := `
		INSERT INTO defect_reports (id, report_date, area, product, color, lf, pt, lp, order_number, client,
			defects, description, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NULLIF($13, '')::uuid, $14)`
	_, err := r.pool.Exec(ctx, query,
		d.ID, d.Date, d.Area, d.Product, d.Color, d.LF, d.PT, d.LP, d.Order, d.Client,
		d.Defects, d.Description, d.CreatedBy, d.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert defect report: %w", err)
	}
	return nil
}

// GetByID obtiene un reporte con sus fotos.
func (r *DefectReportRepo) GetByID(ctx context.Context, id string) (*entity.DefectReport, error) {
	d, err := scanDefectReport(r.pool.QueryRow(ctx, `SELECT `+defectReportColumns+` FROM defect_reports WHERE id = $1`, id))
	if err != nil {
		if isNoRow(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get defect report: %w", err)
	}
	photos, err := listPhotos(ctx, r.pool, []string{d.ID})
	if err != nil {
		return nil, err
	}
	d.Photos = photos[d.ID]
	return d, nil
}

// List reportes filtrados por rango de fechas y área, más recientes primero, con fotos.
func (r *DefectReportRepo) List(ctx context.Context, f repository.DefectFilter) ([]*entity.DefectReport, error) {
	query := `SELECT ` + defectReportColumns + ` FROM defect_reports
		WHERE ($1::date IS NULL OR report_date >= $1::date)
		  AND ($2::date IS NULL OR report_date <= $2::date)
		  AND ($3 = '' OR area = $3)
		ORDER BY report_date DESC, created_at DESC`
	rows, err := r.pool.Query(ctx, query, f.From, f.To, f.Area)
	if err != nil {
		return nil, fmt.Errorf("list defect reports: %w", err)
	}
	defer rows.Close()

	var list []*entity.DefectReport
	ids := make([]string, 0)
	for rows.Next() {
		d, err := scanDefectReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan defect report: %w", err)
		}
		list = append(list, d)
		ids = append(ids, d.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list defect reports: %w", err)
	}

	photos, err := listPhotos(ctx, r.pool, ids)
	if err != nil {
		return nil, err
	}
	for _, d := range list {
		d.Photos = photos[d.ID]
	}
	return list, nil
}

// DeleteAll borra todos los reportes y sus fotos en una transacción.
func (r *DefectReportRepo) DeleteAll(ctx context.Context) (int, []entity.DefectPhoto, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, `DELETE FROM defect_photos RETURNING `+defectPhotoColumns)
	if err != nil {
		return 0, nil, fmt.Errorf("delete defect photos: %w", err)
	}
	var photos []entity.DefectPhoto
	for rows.Next() {
		p, err := scanDefectPhoto(rows)
		if err != nil {
			rows.Close()
			return 0, nil, fmt.Errorf("scan defect photo: %w", err)
		}
		photos = append(photos, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, nil, fmt.Errorf("delete defect photos: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM defect_reports`)
	if err != nil {
		return 0, nil, fmt.Errorf("delete defect reports: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, nil, fmt.Errorf("commit transaction: %w", err)
	}
	return int(tag.RowsAffected()), photos, nil
}

func scanDefectReport(row pgx.Row) (*entity.DefectReport, error) {
	var d entity.DefectReport
	err := row.Scan(
		&d.ID, &d.Date, &d.Area, &d.Product, &d.Color, &d.LF, &d.PT, &d.LP, &d.Order, &d.Client,
		&d.Defects, &d.Description, &d.CreatedBy, &d.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// DefectPhotoRepo fotos de reportes sobre PostgreSQL (usable con pool o tx).
type DefectPhotoRepo struct {
	q Querier
}

// NewDefectPhotoRepository construye el adaptador de fotos. Pasar pool o tx (Querier).
func NewDefectPhotoRepository(q Querier) *DefectPhotoRepo {
	return &DefectPhotoRepo{q: q}
}

// Create registra una foto ya almacenada en el bucket.
func (r *DefectPhotoRepo) Create(ctx context.Context, p *entity.DefectPhoto) error {
	query := `
		INSERT INTO defect_photos (id, report_id, object_key, url, thumbnail_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := r.q.Exec(ctx, query, p.ID, p.ReportID, p.ObjectKey, p.URL, p.ThumbnailURL, p.CreatedAt); err != nil {
		return fmt.Errorf("insert defect photo: %w", err)
	}
	return nil
}

// ListByReport fotos de un reporte en orden de carga.
func (r *DefectPhotoRepo) ListByReport(ctx context.Context, reportID string) ([]entity.DefectPhoto, error) {
	photos, err := listPhotos(ctx, r.q, []string{reportID})
	if err != nil {
		return nil, err
	}
	return photos[reportID], nil
}

func listPhotos(ctx context.Context, q Querier, reportIDs []string) (map[string][]entity.DefectPhoto, error) {
	out := make(map[string][]entity.DefectPhoto, len(reportIDs))
	if len(reportIDs) == 0 {
		return out, nil
	}
	rows, err := q.Query(ctx,
		`SELECT `+defectPhotoColumns+` FROM defect_photos WHERE report_id = ANY($1::uuid[]) ORDER BY report_id, created_at, id`,
		reportIDs)
	if err != nil {
		return nil, fmt.Errorf("list defect photos: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanDefectPhoto(rows)
		if err != nil {
			return nil, fmt.Errorf("scan defect photo: %w", err)
		}
		out[p.ReportID] = append(out[p.ReportID], p)
	}
	return out, rows.Err()
}

func scanDefectPhoto(row pgx.Row) (entity.DefectPhoto, error) {
	var p entity.DefectPhoto
	err := row.Scan(&p.ID, &p.ReportID, &p.ObjectKey, &p.URL, &p.ThumbnailURL, &p.CreatedAt)
	return p, err
}
