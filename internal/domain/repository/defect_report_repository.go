package repository

import (
	"context"
	"time"

	"github.com/jhoicas/control-calidad/internal/domain/entity"
)

// DefectFilter filtros de consulta de reportes. From y To son inclusivos (por día).
type DefectFilter struct {
	From *time.Time
	To   *time.Time
	Area string
}

// DefectReportRepository define el puerto de persistencia para reportes de defectos.
type DefectReportRepository interface {
	Create(ctx context.Context, report *entity.DefectReport) error
	// GetByID devuelve (nil, nil) si el reporte no existe.
	GetByID(ctx context.Context, id string) (*entity.DefectReport, error)
	// List devuelve los reportes filtrados, más recientes primero, con sus fotos.
	List(ctx context.Context, f DefectFilter) ([]*entity.DefectReport, error)
	// DeleteAll borra todos los reportes y sus fotos en una transacción.
	// Devuelve cuántos reportes se borraron y las fotos eliminadas para limpiar el bucket.
	DeleteAll(ctx context.Context) (int, []entity.DefectPhoto, error)
}

// DefectPhotoRepository define el puerto de persistencia para fotos de reportes.
type DefectPhotoRepository interface {
	Create(ctx context.Context, photo *entity.DefectPhoto) error
	ListByReport(ctx context.Context, reportID string) ([]entity.DefectPhoto, error)
}
