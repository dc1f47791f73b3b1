package quality

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/control-calidad/internal/application/dto"
	"github.com/jhoicas/control-calidad/internal/domain"
	"github.com/jhoicas/control-calidad/internal/domain/defect"
	"github.com/jhoicas/control-calidad/internal/domain/entity"
	"github.com/jhoicas/control-calidad/internal/domain/repository"
	"github.com/jhoicas/control-calidad/pkg/logger"
	"github.com/jhoicas/control-calidad/pkg/textnorm"
)

// Options límites de carga de fotos.
type Options struct {
	UploadConcurrency int
	MaxPhotoBytes     int64
}

// DefectUseCase registro, consulta y borrado de reportes de defectos.
type DefectUseCase struct {
	reports repository.DefectReportRepository
	photos  repository.DefectPhotoRepository
	storage PhotoStorage
	catalog *defect.Catalog
	opts    Options
	log     *logger.Logger
	now     func() time.Time
}

// NewDefectUseCase construye el caso de uso. storage nil deshabilita las fotos.
func NewDefectUseCase(
	reports repository.DefectReportRepository,
	photos repository.DefectPhotoRepository,
	storage PhotoStorage,
	catalog *defect.Catalog,
	opts Options,
	log *logger.Logger,
) *DefectUseCase {
	if catalog == nil {
		catalog = defect.Default()
	}
	if opts.UploadConcurrency <= 0 {
		opts.UploadConcurrency = 4
	}
	if log == nil {
		log = logger.Nop()
	}
	return &DefectUseCase{
		reports: reports,
		photos:  photos,
		storage: storage,
		catalog: catalog,
		opts:    opts,
		log:     log,
		now:     time.Now,
	}
}

// WithClock reemplaza el reloj usado para la fecha por defecto y CreatedAt.
func (uc *DefectUseCase) WithClock(now func() time.Time) *DefectUseCase {
	uc.now = now
	return uc
}

// Catalog áreas y vocabularios para el formulario de registro.
func (uc *DefectUseCase) Catalog() []dto.AreaCatalogResponse {
	areas := uc.catalog.Areas()
	out := make([]dto.AreaCatalogResponse, 0, len(areas))
	for _, a := range areas {
		out = append(out, dto.AreaCatalogResponse{Area: a, Defects: uc.catalog.Defects(a)})
	}
	return out
}

// Register valida y guarda el reporte y luego sube sus fotos en paralelo.
// Una foto que falla se informa en PhotosFailed; el reporte queda guardado.
func (uc *DefectUseCase) Register(ctx context.Context, userID string, in dto.CreateDefectRequest, uploads []PhotoUpload) (*dto.RegisterDefectResponse, error) {
	now := uc.now().UTC()
	date := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if d, err := dto.ParseDate("date", in.Date); err != nil {
		return nil, err
	} else if d != nil {
		date = *d
	}

	report := &entity.DefectReport{
		ID:          uuid.New().String(),
		Date:        date,
		Area:        in.Area,
		Product:     in.Product,
		Color:       strings.TrimSpace(in.Color),
		LF:          strings.TrimSpace(in.LF),
		PT:          strings.TrimSpace(in.PT),
		LP:          strings.TrimSpace(in.LP),
		Order:       strings.TrimSpace(in.Order),
		Client:      strings.TrimSpace(in.Client),
		Defects:     in.Defects,
		Description: strings.TrimSpace(in.Description),
		CreatedBy:   userID,
		CreatedAt:   now,
	}
	if err := uc.catalog.Validate(report); err != nil {
		return nil, err
	}
	if err := uc.reports.Create(ctx, report); err != nil {
		return nil, err
	}

	photos, failed := uc.storePhotos(ctx, report.ID, uploads)
	report.Photos = photos

	uc.log.Info().
		Str("report_id", report.ID).
		Str("area", report.Area).
		Int("photos", len(photos)).
		Int("photos_failed", len(failed)).
		Msg("reporte de defecto registrado")

	return &dto.RegisterDefectResponse{Report: ToReportResponse(report), PhotosFailed: failed}, nil
}

// storePhotos sube las fotos con a lo sumo opts.UploadConcurrency cargas simultáneas.
// Conserva el orden de carga en el resultado.
func (uc *DefectUseCase) storePhotos(ctx context.Context, reportID string, uploads []PhotoUpload) ([]entity.DefectPhoto, []dto.PhotoFailure) {
	failed := make([]dto.PhotoFailure, 0)
	if len(uploads) == 0 {
		return nil, failed
	}
	if uc.storage == nil {
		uc.log.Warn().Str("report_id", reportID).Int("photos", len(uploads)).Msg("almacenamiento de fotos no configurado, fotos omitidas")
		for _, u := range uploads {
			failed = append(failed, dto.PhotoFailure{Filename: u.Filename, Reason: domain.ErrStorageUnavailable.Error()})
		}
		return nil, failed
	}

	results := make([]*entity.DefectPhoto, len(uploads))
	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(uc.opts.UploadConcurrency)
	for i, u := range uploads {
		g.Go(func() error {
			photo, err := uc.storePhoto(ctx, reportID, u)
			if err != nil {
				uc.log.Error().Err(err).Str("report_id", reportID).Str("file", u.Filename).Msg("no se pudo guardar la foto")
				mu.Lock()
				failed = append(failed, dto.PhotoFailure{Filename: u.Filename, Reason: err.Error()})
				mu.Unlock()
				return nil
			}
			results[i] = photo
			return nil
		})
	}
	_ = g.Wait()

	photos := make([]entity.DefectPhoto, 0, len(uploads))
	for _, p := range results {
		if p != nil {
			photos = append(photos, *p)
		}
	}
	return photos, failed
}

func (uc *DefectUseCase) storePhoto(ctx context.Context, reportID string, u PhotoUpload) (*entity.DefectPhoto, error) {
	contentType, ext, err := sniffPhoto(u.Data, uc.opts.MaxPhotoBytes)
	if err != nil {
		return nil, err
	}
	key := photoObjectKey(reportID, ext)
	obj, err := uc.storage.Store(ctx, key, u.Data, contentType)
	if err != nil {
		return nil, err
	}
	photo := &entity.DefectPhoto{
		ID:           uuid.New().String(),
		ReportID:     reportID,
		ObjectKey:    key,
		URL:          obj.URL,
		ThumbnailURL: obj.ThumbnailURL,
		CreatedAt:    uc.now(),
	}
	if err := uc.photos.Create(ctx, photo); err != nil {
		if delErr := uc.storage.Delete(ctx, key); delErr != nil {
			uc.log.Warn().Err(delErr).Str("object_key", key).Msg("objeto huérfano en el bucket")
		}
		return nil, err
	}
	return photo, nil
}

// List reportes filtrados, más recientes primero, paginados.
func (uc *DefectUseCase) List(ctx context.Context, in dto.ListDefectsRequest) (*dto.DefectListResponse, error) {
	in.DefaultPage()
	reports, err := uc.Filter(ctx, in.From, in.To, in.Area, in.Client, in.Order)
	if err != nil {
		return nil, err
	}
	from, to := in.Window(len(reports))
	items := make([]dto.DefectReportResponse, 0, to-from)
	for _, r := range reports[from:to] {
		items = append(items, ToReportResponse(r))
	}
	return &dto.DefectListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset, Total: len(reports)},
	}, nil
}

// Filter aplica rango de fechas y área en la consulta y cliente/pedido sin acentos ni mayúsculas.
func (uc *DefectUseCase) Filter(ctx context.Context, fromDate, toDate, area, client, order string) ([]*entity.DefectReport, error) {
	from, to, err := dto.ParseDateRange(fromDate, toDate)
	if err != nil {
		return nil, err
	}
	reports, err := uc.reports.List(ctx, repository.DefectFilter{
		From: from,
		To:   to,
		Area: strings.ToUpper(strings.TrimSpace(area)),
	})
	if err != nil {
		return nil, err
	}
	out := reports[:0]
	for _, r := range reports {
		if textnorm.Contains(client, r.Client) && textnorm.Contains(order, r.Order) {
			out = append(out, r)
		}
	}
	return out, nil
}

// Photos fotos de un reporte.
func (uc *DefectUseCase) Photos(ctx context.Context, reportID string) ([]dto.DefectPhotoResponse, error) {
	report, err := uc.reports.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, domain.ErrNotFound
	}
	photos, err := uc.photos.ListByReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	return ToPhotoResponses(photos), nil
}

// DeleteAll borra todos los reportes y luego, sin garantía, sus objetos del bucket.
func (uc *DefectUseCase) DeleteAll(ctx context.Context, userID string) (*dto.DeleteAllDefectsResponse, error) {
	count, photos, err := uc.reports.DeleteAll(ctx)
	if err != nil {
		return nil, err
	}
	out := &dto.DeleteAllDefectsResponse{ReportsDeleted: count, PhotosDeleted: len(photos)}
	if uc.storage != nil {
		for _, p := range photos {
			if err := uc.storage.Delete(ctx, p.ObjectKey); err != nil {
				out.ObjectsFailed++
				uc.log.Warn().Err(err).Str("object_key", p.ObjectKey).Msg("no se pudo borrar el objeto")
			}
		}
	}
	uc.log.Warn().
		Str("user_id", userID).
		Int("reports", count).
		Int("photos", len(photos)).
		Int("objects_failed", out.ObjectsFailed).
		Msg("reportes de defectos borrados")
	return out, nil
}
