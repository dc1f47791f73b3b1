package quality_test

import (
	"bytes"
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/control-calidad/internal/application/dto"
	"github.com/jhoicas/control-calidad/internal/application/quality"
	"github.com/jhoicas/control-calidad/internal/domain"
	"github.com/jhoicas/control-calidad/internal/domain/defect"
	"github.com/jhoicas/control-calidad/internal/domain/entity"
	"github.com/jhoicas/control-calidad/pkg/logger"
)

type fixture struct {
	reports *fakeReports
	photos  *fakePhotos
	storage *fakeStorage
	logs    *bytes.Buffer
	uc      *quality.DefectUseCase
}

func newFixture(t *testing.T, withStorage bool, opts quality.Options) *fixture {
	t.Helper()
	f := &fixture{photos: &fakePhotos{}, logs: &bytes.Buffer{}}
	f.reports = &fakeReports{photos: f.photos}
	var storage quality.PhotoStorage
	if withStorage {
		f.storage = newFakeStorage()
		storage = f.storage
	}
	f.uc = quality.NewDefectUseCase(f.reports, f.photos, storage, defect.Default(), opts, logger.FromWriter(f.logs))
	return f
}

func validRequest() dto.CreateDefectRequest {
	return dto.CreateDefectRequest{
		Date:    "2024-05-10",
		Area:    "sillas",
		Product: "Silla Milán",
		Client:  "Muebles Peñalosa",
		Order:   "PED-778",
		Defects: []string{"despostillado", "DESPOSTILLADO", " Laca Mancha "},
	}
}

var keyPattern = regexp.MustCompile(`^defects/[0-9a-f-]{36}/[0-9a-f-]{36}\.(jpg|png|webp)$`)

func TestRegister_GuardaReporteYFotos(t *testing.T) {
	f := newFixture(t, true, quality.Options{UploadConcurrency: 2, MaxPhotoBytes: 1 << 20})

	res, err := f.uc.Register(context.Background(), "u1", validRequest(), []quality.PhotoUpload{
		{Filename: "a.jpg", Data: jpegBytes},
		{Filename: "b.png", Data: pngBytes},
	})
	require.NoError(t, err)

	assert.Equal(t, "SILLAS", res.Report.Area)
	assert.Equal(t, "2024-05-10", res.Report.Date)
	assert.Equal(t, []string{"DESPOSTILLADO", "LACA MANCHA"}, res.Report.Defects)
	assert.Equal(t, "u1", res.Report.CreatedBy)
	assert.Empty(t, res.PhotosFailed)
	require.Len(t, res.Report.Photos, 2)
	assert.Contains(t, res.Report.Photos[0].URL, ".jpg")
	assert.Contains(t, res.Report.Photos[1].URL, ".png")
	assert.NotEmpty(t, res.Report.Photos[0].ThumbnailURL)

	require.Len(t, f.storage.objects, 2)
	for key, ct := range f.storage.objects {
		assert.Regexp(t, keyPattern, key)
		assert.Contains(t, []string{"image/jpeg", "image/png"}, ct)
	}
	assert.Len(t, f.photos.photos, 2)
	assert.Len(t, f.reports.reports, 1)
}

func TestRegister_FechaPorDefectoHoy(t *testing.T) {
	f := newFixture(t, true, quality.Options{})
	req := validRequest()
	req.Date = ""
	res, err := f.uc.Register(context.Background(), "u1", req, nil)
	require.NoError(t, err)
	assert.Equal(t, time.Now().UTC().Format(dto.DateLayout), res.Report.Date)
	assert.Empty(t, res.Report.Photos)
	assert.NotNil(t, res.PhotosFailed)
}

func TestRegister_FechaPorDefectoEsElDiaUTC(t *testing.T) {
	f := newFixture(t, true, quality.Options{})
	bogota := time.FixedZone("COT", -5*3600)
	// 23:30 del 10 en Bogotá ya es el 11 en UTC
	f.uc.WithClock(func() time.Time { return time.Date(2024, 5, 10, 23, 30, 0, 0, bogota) })

	req := validRequest()
	req.Date = ""
	res, err := f.uc.Register(context.Background(), "u1", req, nil)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-11", res.Report.Date)
	require.Len(t, f.reports.reports, 1)
	assert.Equal(t, time.Date(2024, 5, 11, 0, 0, 0, 0, time.UTC), f.reports.reports[0].Date)
}

func TestRegister_ValidacionNoGuardaNada(t *testing.T) {
	f := newFixture(t, true, quality.Options{})

	req := validRequest()
	req.Defects = nil
	_, err := f.uc.Register(context.Background(), "u1", req, []quality.PhotoUpload{{Filename: "a.jpg", Data: jpegBytes}})
	ve, ok := domain.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, defect.CodeDefectRequired, ve.Code)

	req = validRequest()
	req.Defects = []string{"TELA MANCHADA"} // solo existe en SALAS
	_, err = f.uc.Register(context.Background(), "u1", req, nil)
	ve, ok = domain.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, defect.CodeUnknownDefect, ve.Code)

	req = validRequest()
	req.Date = "10/05/2024"
	_, err = f.uc.Register(context.Background(), "u1", req, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	assert.Empty(t, f.reports.reports)
	assert.Empty(t, f.storage.objects)
}

func TestRegister_FallosParcialesNoRevierten(t *testing.T) {
	f := newFixture(t, true, quality.Options{UploadConcurrency: 4, MaxPhotoBytes: 100})
	broken := append([]byte{0xFF, 0xD8, 0xFF, 0xE1}, bytes.Repeat([]byte{0x09}, 10)...)
	f.storage.failData = [][]byte{broken}

	big := append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, bytes.Repeat([]byte{0x01}, 200)...)
	res, err := f.uc.Register(context.Background(), "u1", validRequest(), []quality.PhotoUpload{
		{Filename: "ok.jpg", Data: jpegBytes},
		{Filename: "nota.txt", Data: textBytes},
		{Filename: "grande.jpg", Data: big},
		{Filename: "bucket.jpg", Data: broken},
		{Filename: "vacia.jpg", Data: nil},
	})
	require.NoError(t, err)

	require.Len(t, res.Report.Photos, 1)
	assert.Len(t, f.reports.reports, 1, "el reporte se conserva")

	failed := map[string]string{}
	for _, p := range res.PhotosFailed {
		failed[p.Filename] = p.Reason
	}
	assert.Len(t, failed, 4)
	assert.Contains(t, failed["nota.txt"], "no permitido")
	assert.Contains(t, failed["grande.jpg"], "tamaño máximo")
	assert.Contains(t, failed["bucket.jpg"], "bucket no disponible")
	assert.Contains(t, failed["vacia.jpg"], "vacío")
	assert.Contains(t, f.logs.String(), "no se pudo guardar la foto")
	assert.Contains(t, f.logs.String(), res.Report.ID)
}

func TestRegister_FilaDeFotoFallidaBorraObjeto(t *testing.T) {
	f := newFixture(t, true, quality.Options{})
	f.photos.fail = true

	res, err := f.uc.Register(context.Background(), "u1", validRequest(), []quality.PhotoUpload{{Filename: "a.jpg", Data: jpegBytes}})
	require.NoError(t, err)
	assert.Len(t, res.PhotosFailed, 1)
	assert.Empty(t, f.storage.objects)
	assert.Len(t, f.storage.deleted, 1)
}

func TestRegister_ConcurrenciaAcotada(t *testing.T) {
	f := newFixture(t, true, quality.Options{UploadConcurrency: 2})
	f.storage.delay = 20 * time.Millisecond

	uploads := make([]quality.PhotoUpload, 8)
	for i := range uploads {
		uploads[i] = quality.PhotoUpload{Filename: "f.jpg", Data: jpegBytes}
	}
	res, err := f.uc.Register(context.Background(), "u1", validRequest(), uploads)
	require.NoError(t, err)
	assert.Len(t, res.Report.Photos, 8)
	assert.LessOrEqual(t, f.storage.maxFlight, 2)
}

func TestRegister_SinAlmacenamiento(t *testing.T) {
	f := newFixture(t, false, quality.Options{})
	res, err := f.uc.Register(context.Background(), "u1", validRequest(), []quality.PhotoUpload{{Filename: "a.jpg", Data: jpegBytes}})
	require.NoError(t, err)
	assert.Empty(t, res.Report.Photos)
	require.Len(t, res.PhotosFailed, 1)
	assert.Equal(t, domain.ErrStorageUnavailable.Error(), res.PhotosFailed[0].Reason)
	assert.Contains(t, f.logs.String(), "almacenamiento de fotos no configurado")
}

func seedReport(f *fixture, id, date, area, client, order string, created time.Time) {
	d, _ := time.Parse(dto.DateLayout, date)
	f.reports.reports = append(f.reports.reports, &entity.DefectReport{
		ID: id, Date: d, Area: area, Product: "P", Client: client, Order: order,
		Defects: []string{"DESPOSTILLADO"}, CreatedAt: created,
	})
}

func TestList_FiltrosYOrden(t *testing.T) {
	f := newFixture(t, true, quality.Options{})
	base := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	seedReport(f, "r1", "2024-05-01", "SILLAS", "Muebles Peñalosa", "PED-1", base)
	seedReport(f, "r2", "2024-05-03", "SALAS", "Hogar Ñuñoa", "PED-2", base.Add(time.Hour))
	seedReport(f, "r3", "2024-05-03", "SILLAS", "Casa Bonita", "ped-33", base.Add(2*time.Hour))
	seedReport(f, "r4", "2024-05-09", "SILLAS", "Muebles Peñalosa", "PED-4", base.Add(3*time.Hour))

	ctx := context.Background()

	all, err := f.uc.List(ctx, dto.ListDefectsRequest{})
	require.NoError(t, err)
	require.Len(t, all.Items, 4)
	assert.Equal(t, []string{"r4", "r3", "r2", "r1"}, ids(all.Items))

	rng, err := f.uc.List(ctx, dto.ListDefectsRequest{From: "2024-05-02", To: "2024-05-03"})
	require.NoError(t, err)
	assert.Equal(t, []string{"r3", "r2"}, ids(rng.Items))

	cli, err := f.uc.List(ctx, dto.ListDefectsRequest{Client: "penalosa"})
	require.NoError(t, err)
	assert.Equal(t, []string{"r4", "r1"}, ids(cli.Items))

	ord, err := f.uc.List(ctx, dto.ListDefectsRequest{Order: "PED-3", Area: "sillas"})
	require.NoError(t, err)
	assert.Equal(t, []string{"r3"}, ids(ord.Items))

	page, err := f.uc.List(ctx, dto.ListDefectsRequest{PageRequest: dto.PageRequest{Limit: 3, Offset: 3}})
	require.NoError(t, err)
	assert.Equal(t, []string{"r1"}, ids(page.Items))
	assert.Equal(t, 4, page.Page.Total)

	_, err = f.uc.List(ctx, dto.ListDefectsRequest{From: "2024-05-09", To: "2024-05-01"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func ids(items []dto.DefectReportResponse) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func TestPhotos(t *testing.T) {
	f := newFixture(t, true, quality.Options{})
	res, err := f.uc.Register(context.Background(), "u1", validRequest(), []quality.PhotoUpload{{Filename: "a.jpg", Data: jpegBytes}})
	require.NoError(t, err)

	photos, err := f.uc.Photos(context.Background(), res.Report.ID)
	require.NoError(t, err)
	require.Len(t, photos, 1)
	assert.Equal(t, res.Report.Photos[0].URL, photos[0].URL)

	_, err = f.uc.Photos(context.Background(), "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteAll_BorraFilasYObjetos(t *testing.T) {
	f := newFixture(t, true, quality.Options{})
	for i := 0; i < 2; i++ {
		_, err := f.uc.Register(context.Background(), "u1", validRequest(), []quality.PhotoUpload{{Filename: "a.jpg", Data: jpegBytes}})
		require.NoError(t, err)
	}

	res, err := f.uc.DeleteAll(context.Background(), "admin-1")
	require.NoError(t, err)
	assert.Equal(t, 2, res.ReportsDeleted)
	assert.Equal(t, 2, res.PhotosDeleted)
	assert.Equal(t, 0, res.ObjectsFailed)
	assert.Empty(t, f.storage.objects)
	assert.Empty(t, f.reports.reports)
}

func TestDeleteAll_ObjetosFallidosSeInforman(t *testing.T) {
	f := newFixture(t, true, quality.Options{})
	_, err := f.uc.Register(context.Background(), "u1", validRequest(), []quality.PhotoUpload{{Filename: "a.jpg", Data: jpegBytes}})
	require.NoError(t, err)
	f.storage.failDel = true

	res, err := f.uc.DeleteAll(context.Background(), "admin-1")
	require.NoError(t, err)
	assert.Equal(t, 1, res.ReportsDeleted)
	assert.Equal(t, 1, res.ObjectsFailed)
	assert.Contains(t, f.logs.String(), "no se pudo borrar el objeto")
}

func TestCatalog(t *testing.T) {
	f := newFixture(t, false, quality.Options{})
	cat := f.uc.Catalog()
	require.Len(t, cat, 2)
	assert.Equal(t, "SALAS", cat[0].Area)
	assert.Len(t, cat[0].Defects, 18)
	assert.Equal(t, "SILLAS", cat[1].Area)
	assert.Len(t, cat[1].Defects, 27)
}
