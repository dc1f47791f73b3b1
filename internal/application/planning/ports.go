package planning

import (
	"context"

	"github.com/jhoicas/control-calidad/internal/application/dto"
	"github.com/jhoicas/control-calidad/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Todo anexo al libro ocurre dentro de Run con la fila del plan bloqueada.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		plans repository.WorkPlanRepository,
		releases repository.ReleaseRepository,
	) error) error
}

// PlanLocker serializa las escrituras sobre un mismo plan entre instancias del servicio.
// unlock debe llamarse siempre que err sea nil.
type PlanLocker interface {
	Lock(ctx context.Context, planID string) (unlock func(), err error)
}

// NoopLocker no bloquea: la serialización queda a cargo del SELECT FOR UPDATE de la transacción.
type NoopLocker struct{}

// Lock no hace nada.
func (NoopLocker) Lock(context.Context, string) (func(), error) { return func() {}, nil }

// LedgerPDFGenerator genera el certificado PDF del libro de un plan.
type LedgerPDFGenerator interface {
	GeneratePlanLedgerPDF(ctx context.Context, plan dto.PlanDetailResponse) ([]byte, error)
}

// PlanSpreadsheet genera el libro de Excel de planes y liberaciones.
type PlanSpreadsheet interface {
	ExportPlans(title string, plans []dto.PlanDetailResponse) ([]byte, error)
}
