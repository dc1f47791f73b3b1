package quality

import (
	"github.com/jhoicas/control-calidad/internal/application/dto"
	"github.com/jhoicas/control-calidad/internal/domain/entity"
)

// ToReportResponse convierte un reporte de dominio a su DTO de salida.
func ToReportResponse(r *entity.DefectReport) dto.DefectReportResponse {
	defects := r.Defects
	if defects == nil {
		defects = []string{}
	}
	return dto.DefectReportResponse{
		ID:          r.ID,
		Date:        r.Date.Format(dto.DateLayout),
		Area:        r.Area,
		Product:     r.Product,
		Color:       r.Color,
		LF:          r.LF,
		PT:          r.PT,
		LP:          r.LP,
		Order:       r.Order,
		Client:      r.Client,
		Defects:     defects,
		Description: r.Description,
		Photos:      ToPhotoResponses(r.Photos),
		CreatedBy:   r.CreatedBy,
		CreatedAt:   r.CreatedAt,
	}
}

// ToPhotoResponses convierte fotos de dominio a DTOs (nunca nil).
func ToPhotoResponses(photos []entity.DefectPhoto) []dto.DefectPhotoResponse {
	out := make([]dto.DefectPhotoResponse, 0, len(photos))
	for _, p := range photos {
		out = append(out, dto.DefectPhotoResponse{
			ID:           p.ID,
			URL:          p.URL,
			ThumbnailURL: p.ThumbnailURL,
			CreatedAt:    p.CreatedAt,
		})
	}
	return out
}
