package defect

import (
	"strings"

	"github.com/jhoicas/control-calidad/internal/domain"
	"github.com/jhoicas/control-calidad/internal/domain/entity"
)

// Códigos de ValidationError de reportes de defectos.
const (
	CodeAreaRequired    = "AREA_REQUIRED"
	CodeUnknownArea     = "UNKNOWN_AREA"
	CodeProductRequired = "PRODUCT_REQUIRED"
	CodeDefectRequired  = "DEFECT_REQUIRED"
	CodeUnknownDefect   = "UNKNOWN_DEFECT"
)

// NormalizeTags recorta, pasa a mayúsculas y elimina etiquetas vacías o repetidas conservando el orden.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// Validate normaliza y valida un reporte contra el catálogo.
// Deja en r.Area y r.Defects los valores normalizados.
func (c *Catalog) Validate(r *entity.DefectReport) error {
	r.Area = strings.ToUpper(strings.TrimSpace(r.Area))
	r.Product = strings.TrimSpace(r.Product)
	r.Defects = NormalizeTags(r.Defects)

	if r.Area == "" {
		return domain.NewValidationError(CodeAreaRequired, "area", "el área es obligatoria")
	}
	if !c.HasArea(r.Area) {
		return domain.NewValidationError(CodeUnknownArea, "area", "área desconocida: "+r.Area)
	}
	if r.Product == "" {
		return domain.NewValidationError(CodeProductRequired, "product", "el producto es obligatorio")
	}
	if len(r.Defects) == 0 {
		return domain.NewValidationError(CodeDefectRequired, "defects", "selecciona al menos un defecto")
	}
	for _, tag := range r.Defects {
		if !c.Allows(r.Area, tag) {
			return domain.NewValidationError(CodeUnknownDefect, "defects", "el defecto '"+tag+"' no pertenece al área "+r.Area)
		}
	}
	return nil
}
