package dto

import (
	"strings"
	"time"

	"github.com/jhoicas/control-calidad/internal/domain"
)

// DateLayout formato de fechas en query strings y exportaciones (YYYY-MM-DD).
const DateLayout = "2006-01-02"

// CodeInvalidDate código de ValidationError para fechas mal formadas o rangos invertidos.
const CodeInvalidDate = "INVALID_DATE"

// ParseDate interpreta s como YYYY-MM-DD. Vacío devuelve nil.
func ParseDate(field, s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil, domain.NewValidationError(CodeInvalidDate, field, "fecha inválida, use AAAA-MM-DD")
	}
	return &t, nil
}

// ParseDateRange interpreta from/to (ambos opcionales, inclusivos) y rechaza rangos invertidos.
func ParseDateRange(from, to string) (*time.Time, *time.Time, error) {
	f, err := ParseDate("from", from)
	if err != nil {
		return nil, nil, err
	}
	t, err := ParseDate("to", to)
	if err != nil {
		return nil, nil, err
	}
	if f != nil && t != nil && f.After(*t) {
		return nil, nil, domain.NewValidationError(CodeInvalidDate, "from", "la fecha inicial es posterior a la final")
	}
	return f, t, nil
}
