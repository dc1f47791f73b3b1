package planning

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/control-calidad/internal/application/dto"
	"github.com/jhoicas/control-calidad/internal/domain"
	"github.com/jhoicas/control-calidad/internal/domain/defect"
	"github.com/jhoicas/control-calidad/internal/domain/entity"
	"github.com/jhoicas/control-calidad/internal/domain/repository"
	"github.com/jhoicas/control-calidad/pkg/textnorm"
)

// CodeTargetNegative código de ValidationError para cantidades objetivo negativas.
const CodeTargetNegative = "TARGET_NEGATIVE"

// ErrExportUnavailable no hay generador configurado para el formato pedido.
var ErrExportUnavailable = errors.New("exportación no disponible")

// PlanUseCase casos de uso de lectura y alta de planes de trabajo.
type PlanUseCase struct {
	plans    repository.WorkPlanRepository
	releases repository.ReleaseRepository
	catalog  *defect.Catalog
	pdf      LedgerPDFGenerator
	sheets   PlanSpreadsheet
	now      func() time.Time
}

// NewPlanUseCase construye el caso de uso. pdf y sheets pueden ser nil (exportación deshabilitada).
func NewPlanUseCase(
	plans repository.WorkPlanRepository,
	releases repository.ReleaseRepository,
	catalog *defect.Catalog,
	pdf LedgerPDFGenerator,
	sheets PlanSpreadsheet,
) *PlanUseCase {
	if catalog == nil {
		catalog = defect.Default()
	}
	return &PlanUseCase{
		plans:    plans,
		releases: releases,
		catalog:  catalog,
		pdf:      pdf,
		sheets:   sheets,
		now:      time.Now,
	}
}

// Create registra un plan nuevo con el libro vacío.
func (uc *PlanUseCase) Create(ctx context.Context, userID string, in dto.CreatePlanRequest) (*dto.PlanResponse, error) {
	plan := &entity.WorkPlan{
		ID:             uuid.New().String(),
		Area:           strings.ToUpper(strings.TrimSpace(in.Area)),
		TargetQuantity: in.TargetQuantity,
		Product:        strings.TrimSpace(in.Product),
		Color:          strings.TrimSpace(in.Color),
		LF:             strings.TrimSpace(in.LF),
		PT:             strings.TrimSpace(in.PT),
		LP:             strings.TrimSpace(in.LP),
		Order:          strings.TrimSpace(in.Order),
		Client:         strings.TrimSpace(in.Client),
		CreatedBy:      userID,
		CreatedAt:      uc.now(),
	}
	if err := uc.validate(plan); err != nil {
		return nil, err
	}
	if err := uc.plans.Create(ctx, plan); err != nil {
		return nil, err
	}
	out := toDetail(plan, nil).PlanResponse
	return &out, nil
}

func (uc *PlanUseCase) validate(p *entity.WorkPlan) error {
	if p.Area == "" {
		return domain.NewValidationError(defect.CodeAreaRequired, "area", "el área es obligatoria")
	}
	if !uc.catalog.HasArea(p.Area) {
		return domain.NewValidationError(defect.CodeUnknownArea, "area", "área desconocida: "+p.Area)
	}
	if p.TargetQuantity < 0 {
		return domain.NewValidationError(CodeTargetNegative, "target_quantity", "la cantidad objetivo no puede ser negativa")
	}
	if p.Product == "" {
		return domain.NewValidationError(defect.CodeProductRequired, "product", "el producto es obligatorio")
	}
	return nil
}

// Get devuelve el plan con su historial (más antiguo primero) y remanentes reversibles.
func (uc *PlanUseCase) Get(ctx context.Context, id string) (*dto.PlanDetailResponse, error) {
	plan, err := uc.plans.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, domain.ErrNotFound
	}
	entries, err := uc.releases.ListByPlan(ctx, plan.ID)
	if err != nil {
		return nil, err
	}
	out := toDetail(plan, entries)
	return &out, nil
}

// List lista planes filtrados por área, estado y texto, paginados.
func (uc *PlanUseCase) List(ctx context.Context, in dto.ListPlansRequest) (*dto.PlanListResponse, error) {
	in.DefaultPage()
	all, err := uc.load(ctx, in)
	if err != nil {
		return nil, err
	}
	from, to := in.Window(len(all))
	items := make([]dto.PlanResponse, 0, to-from)
	for _, p := range all[from:to] {
		items = append(items, p.PlanResponse)
	}
	return &dto.PlanListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset, Total: len(all)},
	}, nil
}

// load trae los planes del área con sus libros (una consulta por tabla) y aplica estado y texto.
func (uc *PlanUseCase) load(ctx context.Context, in dto.ListPlansRequest) ([]dto.PlanDetailResponse, error) {
	plans, err := uc.plans.List(ctx, strings.ToUpper(strings.TrimSpace(in.Area)))
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(plans))
	for _, p := range plans {
		ids = append(ids, p.ID)
	}
	byPlan, err := uc.releases.ListByPlans(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]dto.PlanDetailResponse, 0, len(plans))
	for _, p := range plans {
		if !textnorm.Contains(in.Q, p.Product, p.Color, p.LF, p.PT, p.LP, p.Order, p.Client) {
			continue
		}
		d := toDetail(p, byPlan[p.ID])
		if in.Status != "" && d.Status != in.Status {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

// LedgerPDF genera el certificado PDF del libro del plan.
func (uc *PlanUseCase) LedgerPDF(ctx context.Context, id string) ([]byte, string, error) {
	if uc.pdf == nil {
		return nil, "", ErrExportUnavailable
	}
	detail, err := uc.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	doc, err := uc.pdf.GeneratePlanLedgerPDF(ctx, *detail)
	if err != nil {
		return nil, "", fmt.Errorf("generar PDF del plan: %w", err)
	}
	return doc, fmt.Sprintf("libro_plan_%s.pdf", shortID(detail.ID)), nil
}

// Export genera el Excel de los planes filtrados (sin paginar) con todas sus liberaciones.
func (uc *PlanUseCase) Export(ctx context.Context, in dto.ListPlansRequest) ([]byte, string, error) {
	if uc.sheets == nil {
		return nil, "", ErrExportUnavailable
	}
	plans, err := uc.load(ctx, in)
	if err != nil {
		return nil, "", err
	}
	area := strings.ToUpper(strings.TrimSpace(in.Area))
	if area == "" {
		area = "TODAS"
	}
	day := uc.now().Format(dto.DateLayout)
	doc, err := uc.sheets.ExportPlans(fmt.Sprintf("Planes de trabajo - %s - %s", area, day), plans)
	if err != nil {
		return nil, "", fmt.Errorf("generar Excel de planes: %w", err)
	}
	return doc, fmt.Sprintf("planes_%s_%s.xlsx", strings.ToLower(area), day), nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
