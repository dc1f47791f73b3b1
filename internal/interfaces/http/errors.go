package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/control-calidad/internal/application/analytics"
	"github.com/jhoicas/control-calidad/internal/application/dto"
	"github.com/jhoicas/control-calidad/internal/application/planning"
	"github.com/jhoicas/control-calidad/internal/domain"
	"github.com/jhoicas/control-calidad/internal/domain/ledger"
)

// Reglas del libro que chocan con el estado actual del plan.
var conflictCodes = map[string]bool{
	ledger.CodeExceedsPending:    true,
	ledger.CodeExceedsReversible: true,
}

// writeError traduce errores de dominio a la respuesta HTTP.
// notFound es el mensaje para ErrNotFound.
func writeError(c *fiber.Ctx, err error, notFound string) error {
	if ve, ok := domain.AsValidation(err); ok {
		status := fiber.StatusBadRequest
		if conflictCodes[ve.Code] {
			status = fiber.StatusConflict
		}
		return c.Status(status).JSON(dto.ErrorResponse{Code: ve.Code, Message: ve.Message, Field: ve.Field})
	}

	switch {
	case errors.Is(err, domain.ErrStaleVersion):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "STALE_PLAN", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: notFound})
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "EMAIL_EXISTS", Message: "el email ya está registrado"})
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()})
	case errors.Is(err, domain.ErrLockNotObtained):
		return c.Status(fiber.StatusLocked).JSON(dto.ErrorResponse{Code: "PLAN_LOCKED", Message: err.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "credenciales inválidas"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "cuenta inactiva o suspendida"})
	case errors.Is(err, planning.ErrExportUnavailable), errors.Is(err, analytics.ErrExportUnavailable):
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "EXPORT_UNAVAILABLE", Message: err.Error()})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}

// sendFile responde un adjunto con su nombre de descarga.
func sendFile(c *fiber.Ctx, data []byte, filename, contentType string) error {
	c.Attachment(filename)
	c.Set(fiber.HeaderContentType, contentType)
	return c.Send(data)
}

const (
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimePDF  = "application/pdf"
)
