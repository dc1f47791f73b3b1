package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/control-calidad/internal/application/analytics"
	"github.com/jhoicas/control-calidad/internal/application/auth"
	"github.com/jhoicas/control-calidad/internal/application/planning"
	"github.com/jhoicas/control-calidad/internal/application/quality"
	"github.com/jhoicas/control-calidad/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC        *auth.AuthUseCase
	PlanUC        *planning.PlanUseCase
	ReleaseUC     *planning.ReleaseUseCase
	DefectUC      *quality.DefectUseCase
	DashboardUC   *appanalytics.DashboardUseCase
	JWTSecret     string
	MaxPhotoBytes int64
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	const (
		admin      = entity.RoleAdmin
		supervisor = entity.RoleSupervisor
		operario   = entity.RoleOperario
	)
	anyRole := RequireRole(admin, supervisor, operario)
	managers := RequireRole(admin, supervisor)
	adminOnly := RequireRole(admin)

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	protected.Get("/auth/me", authHandler.Me)

	// Usuarios (solo admin)
	users := protected.Group("/users", adminOnly)
	users.Post("/", authHandler.CreateUser)
	users.Get("/", authHandler.ListUsers)

	// Catálogo y reportes de defectos
	defectHandler := NewDefectHandler(deps.DefectUC, deps.MaxPhotoBytes)
	dashboardHandler := NewDashboardHandler(deps.DashboardUC)
	protected.Get("/catalog/areas", anyRole, defectHandler.Catalog)

	defects := protected.Group("/defects")
	defects.Post("/", anyRole, defectHandler.Register)
	defects.Get("/", anyRole, defectHandler.List)
	defects.Delete("/", adminOnly, defectHandler.DeleteAll)
	defects.Get("/export", managers, dashboardHandler.Export)
	defects.Get("/:id/photos", anyRole, defectHandler.Photos)

	// Dashboard
	dashboard := protected.Group("/dashboard", managers)
	dashboard.Get("/summary", dashboardHandler.GetSummary)
	dashboard.Get("/export", dashboardHandler.Export)

	// Planes de trabajo y libro de liberaciones
	planHandler := NewPlanHandler(deps.PlanUC, deps.ReleaseUC)
	plans := protected.Group("/plans", managers)
	plans.Post("/", planHandler.Create)
	plans.Get("/", planHandler.List)
	plans.Get("/export", planHandler.Export)
	plans.Get("/:id", planHandler.GetByID)
	plans.Get("/:id/ledger.pdf", planHandler.LedgerPDF)
	plans.Post("/:id/releases", planHandler.RecordRelease)
	plans.Post("/:id/releases/:entryId/reversals", planHandler.RecordPlanReversal)

	protected.Post("/releases/:id/reversals", managers, planHandler.RecordReversal)
}
