package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	_ "github.com/jhoicas/control-calidad/docs"
	appanalytics "github.com/jhoicas/control-calidad/internal/application/analytics"
	"github.com/jhoicas/control-calidad/internal/application/auth"
	"github.com/jhoicas/control-calidad/internal/application/planning"
	"github.com/jhoicas/control-calidad/internal/application/quality"
	"github.com/jhoicas/control-calidad/internal/domain/defect"
	infraexcel "github.com/jhoicas/control-calidad/internal/infrastructure/excel"
	infralock "github.com/jhoicas/control-calidad/internal/infrastructure/lock"
	infrapdf "github.com/jhoicas/control-calidad/internal/infrastructure/pdf"
	"github.com/jhoicas/control-calidad/internal/infrastructure/postgres"
	infrastorage "github.com/jhoicas/control-calidad/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/control-calidad/internal/interfaces/http"
	"github.com/jhoicas/control-calidad/pkg/config"
	"github.com/jhoicas/control-calidad/pkg/logger"
)

// @title                       Control de Calidad API
// @version                     1.0
// @description                 Reportes de defectos, planes de trabajo y libro de liberaciones.
// @BasePath                    /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if cfg.DB.AutoMigrate {
		applied, err := postgres.Migrate(ctx, pool)
		if err != nil {
			log.Fatal().Err(err).Msg("aplicar migraciones")
		}
		log.Info().Strs("applied", applied).Msg("migraciones al día")
	}

	// Bloqueo por plan: Redis si está configurado; si no, solo el bloqueo de fila.
	var locker planning.PlanLocker = planning.NoopLocker{}
	if cfg.Redis.Enabled() {
		rdb, err := infralock.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer rdb.Close()
		locker = infralock.NewRedisPlanLocker(rdb, cfg.Redis.LockTTL(), log.Named("lock"))
		log.Info().Str("address", cfg.Redis.Address).Msg("bloqueo distribuido por plan activo")
	}

	// Fotos: sin bucket los reportes se guardan igual y las fotos se informan como fallidas.
	var photoStorage quality.PhotoStorage
	if cfg.Storage.Enabled() {
		gcs, err := infrastorage.NewGCSPhotoStorage(ctx, cfg.Storage, log.Named("storage"))
		if err != nil {
			log.Fatal().Err(err).Msg("bucket de fotos")
		}
		defer gcs.Close()
		photoStorage = gcs
	} else {
		log.Warn().Msg("GCS_BUCKET vacío: las fotos de defectos no se almacenarán")
	}

	userRepo := postgres.NewUserRepository(pool)
	planRepo := postgres.NewWorkPlanRepository(pool)
	releaseRepo := postgres.NewReleaseRepository(pool)
	reportRepo := postgres.NewDefectReportRepository(pool)
	photoRepo := postgres.NewDefectPhotoRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	catalog := defect.Default()
	sheets := infraexcel.NewExporter()
	pdfGenerator := infrapdf.NewMarotoPDFGenerator(cfg.App.Company)

	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	planUC := planning.NewPlanUseCase(planRepo, releaseRepo, catalog, pdfGenerator, sheets)
	releaseUC := planning.NewReleaseUseCase(txRunner, releaseRepo, locker)
	defectUC := quality.NewDefectUseCase(reportRepo, photoRepo, photoStorage, catalog, quality.Options{
		UploadConcurrency: cfg.Storage.UploadConcurrency,
		MaxPhotoBytes:     cfg.Storage.MaxPhotoBytes(),
	}, log.Named("defects"))
	dashboardUC := appanalytics.NewDashboardUseCase(defectUC, sheets)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 30,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
		// Formulario + hasta 10 fotos del tamaño máximo.
		BodyLimit: int(cfg.Storage.MaxPhotoBytes())*10 + 1<<20,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.Named("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Control de Calidad API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:        authUC,
		PlanUC:        planUC,
		ReleaseUC:     releaseUC,
		DefectUC:      defectUC,
		DashboardUC:   dashboardUC,
		JWTSecret:     cfg.JWT.Secret,
		MaxPhotoBytes: cfg.Storage.MaxPhotoBytes(),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
