package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/control-calidad/internal/application/dto"
	"github.com/jhoicas/control-calidad/internal/application/planning"
)

const planNotFound = "plan no encontrado"

// PlanHandler maneja planes de trabajo y su libro de liberaciones.
type PlanHandler struct {
	plans    *planning.PlanUseCase
	releases *planning.ReleaseUseCase
}

// NewPlanHandler construye el handler.
func NewPlanHandler(plans *planning.PlanUseCase, releases *planning.ReleaseUseCase) *PlanHandler {
	return &PlanHandler{plans: plans, releases: releases}
}

// Create godoc
// @Summary      Crear plan de trabajo
// @Tags         plans
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreatePlanRequest  true  "Datos del plan"
// @Success      201   {object}  dto.PlanResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/plans [post]
func (h *PlanHandler) Create(c *fiber.Ctx) error {
	var in dto.CreatePlanRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.plans.Create(c.Context(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err, planNotFound)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar planes
// @Tags         plans
// @Security     Bearer
// @Produce      json
// @Param        area    query  string  false  "Área (SILLAS, SALAS)"
// @Param        status  query  string  false  "EN_PROCESO | COMPLETADO"
// @Param        q       query  string  false  "Texto en producto, color, lotes, pedido o cliente"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200     {object}  dto.PlanListResponse
// @Router       /api/plans [get]
func (h *PlanHandler) List(c *fiber.Ctx) error {
	var in dto.ListPlansRequest
	if ok, err := parseQuery(c, &in); !ok {
		return err
	}
	out, err := h.plans.List(c.Context(), in)
	if err != nil {
		return writeError(c, err, planNotFound)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Plan con historial de liberaciones
// @Tags         plans
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del plan"
// @Success      200  {object}  dto.PlanDetailResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/plans/{id} [get]
func (h *PlanHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.plans.Get(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err, planNotFound)
	}
	return c.JSON(out)
}

// LedgerPDF godoc
// @Summary      Certificado PDF del libro del plan
// @Tags         plans
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID del plan"
// @Success      200  {file}  file
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/plans/{id}/ledger.pdf [get]
func (h *PlanHandler) LedgerPDF(c *fiber.Ctx) error {
	doc, name, err := h.plans.LedgerPDF(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err, planNotFound)
	}
	return sendFile(c, doc, name, mimePDF)
}

// Export godoc
// @Summary      Exportar planes a Excel
// @Tags         plans
// @Security     Bearer
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        area    query  string  false  "Área"
// @Param        status  query  string  false  "EN_PROCESO | COMPLETADO"
// @Param        q       query  string  false  "Texto libre"
// @Success      200     {file}  file
// @Router       /api/plans/export [get]
func (h *PlanHandler) Export(c *fiber.Ctx) error {
	var in dto.ListPlansRequest
	if ok, err := parseQuery(c, &in); !ok {
		return err
	}
	doc, name, err := h.plans.Export(c.Context(), in)
	if err != nil {
		return writeError(c, err, planNotFound)
	}
	return sendFile(c, doc, name, mimeXLSX)
}

// RecordRelease godoc
// @Summary      Liberar piezas de un plan
// @Tags         releases
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "ID del plan"
// @Param        body  body  dto.RecordReleaseRequest  true  "Cantidad y responsable"
// @Success      201   {object}  dto.ReleaseResultResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse  "EXCEEDS_PENDING o STALE_PLAN"
// @Failure      423   {object}  dto.ErrorResponse
// @Router       /api/plans/{id}/releases [post]
func (h *PlanHandler) RecordRelease(c *fiber.Ctx) error {
	var in dto.RecordReleaseRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.releases.RecordRelease(c.Context(), planning.ReleaseInput{
		PlanID:          c.Params("id"),
		Amount:          in.Amount,
		Actor:           in.Actor,
		UserID:          GetUserID(c),
		ExpectedVersion: in.ExpectedVersion,
	})
	if err != nil {
		return writeError(c, err, planNotFound)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// RecordReversal godoc
// @Summary      Revertir (total o parcialmente) una liberación
// @Tags         releases
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "ID de la liberación"
// @Param        body  body  dto.RecordReversalRequest  true  "Cantidad y responsable"
// @Success      201   {object}  dto.ReleaseResultResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse  "EXCEEDS_REVERSIBLE o STALE_PLAN"
// @Router       /api/releases/{id}/reversals [post]
func (h *PlanHandler) RecordReversal(c *fiber.Ctx) error {
	return h.reverse(c, "", c.Params("id"))
}

// RecordPlanReversal godoc
// @Summary      Revertir una liberación indicando el plan
// @Tags         releases
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id       path  string                     true  "ID del plan"
// @Param        entryId  path  string                     true  "ID de la liberación"
// @Param        body     body  dto.RecordReversalRequest  true  "Cantidad y responsable"
// @Success      201      {object}  dto.ReleaseResultResponse
// @Failure      400      {object}  dto.ErrorResponse  "PLAN_MISMATCH si la liberación es de otro plan"
// @Router       /api/plans/{id}/releases/{entryId}/reversals [post]
func (h *PlanHandler) RecordPlanReversal(c *fiber.Ctx) error {
	return h.reverse(c, c.Params("id"), c.Params("entryId"))
}

func (h *PlanHandler) reverse(c *fiber.Ctx, planID, entryID string) error {
	var in dto.RecordReversalRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.releases.RecordReversal(c.Context(), planning.ReversalInput{
		EntryID:         entryID,
		PlanID:          planID,
		Amount:          in.Amount,
		Actor:           in.Actor,
		UserID:          GetUserID(c),
		ExpectedVersion: in.ExpectedVersion,
	})
	if err != nil {
		return writeError(c, err, "liberación no encontrada")
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}
