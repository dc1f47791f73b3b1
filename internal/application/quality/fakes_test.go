package quality_test

import (
	"bytes"
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/control-calidad/internal/application/quality"
	"github.com/jhoicas/control-calidad/internal/domain/entity"
	"github.com/jhoicas/control-calidad/internal/domain/repository"
)

var (
	jpegBytes = append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, bytes.Repeat([]byte{0x01}, 64)...)
	pngBytes  = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0x02}, 64)...)
	textBytes = []byte("esto no es una imagen")
)

type fakeReports struct {
	mu      sync.Mutex
	reports []*entity.DefectReport
	photos  *fakePhotos
}

func (f *fakeReports) Create(_ context.Context, r *entity.DefectReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *r
	f.reports = append(f.reports, &cp)
	return nil
}

func (f *fakeReports) GetByID(_ context.Context, id string) (*entity.DefectReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.reports {
		if r.ID == id {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeReports) List(_ context.Context, flt repository.DefectFilter) ([]*entity.DefectReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.DefectReport
	for _, r := range f.reports {
		if flt.From != nil && r.Date.Before(*flt.From) {
			continue
		}
		if flt.To != nil && r.Date.After(*flt.To) {
			continue
		}
		if flt.Area != "" && r.Area != flt.Area {
			continue
		}
		cp := *r
		if f.photos != nil {
			cp.Photos = f.photos.byReport(r.ID)
		}
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (f *fakeReports) DeleteAll(context.Context) (int, []entity.DefectPhoto, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := len(f.reports)
	f.reports = nil
	var photos []entity.DefectPhoto
	if f.photos != nil {
		photos = f.photos.drain()
	}
	return n, photos, nil
}

type fakePhotos struct {
	mu     sync.Mutex
	photos []entity.DefectPhoto
	fail   bool
}

func (f *fakePhotos) Create(_ context.Context, p *entity.DefectPhoto) error {
	if f.fail {
		return errors.New("insert defect photo: conexión perdida")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.photos = append(f.photos, *p)
	return nil
}

func (f *fakePhotos) ListByReport(_ context.Context, id string) ([]entity.DefectPhoto, error) {
	return f.byReport(id), nil
}

func (f *fakePhotos) byReport(id string) []entity.DefectPhoto {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.DefectPhoto
	for _, p := range f.photos {
		if p.ReportID == id {
			out = append(out, p)
		}
	}
	return out
}

func (f *fakePhotos) drain() []entity.DefectPhoto {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.photos
	f.photos = nil
	return out
}

// fakeStorage guarda en memoria; falla para los objetos cuyo contenido esté en failData.
type fakeStorage struct {
	mu        sync.Mutex
	objects   map[string]string // key -> content type
	deleted   []string
	failData  [][]byte
	failDel   bool
	delay     time.Duration
	inFlight  int
	maxFlight int
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string]string{}}
}

func (s *fakeStorage) Store(_ context.Context, key string, data []byte, contentType string) (quality.StoredObject, error) {
	s.mu.Lock()
	s.inFlight++
	if s.inFlight > s.maxFlight {
		s.maxFlight = s.inFlight
	}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.inFlight--
		s.mu.Unlock()
	}()
	time.Sleep(s.delay)

	for _, f := range s.failData {
		if bytes.Equal(f, data) {
			return quality.StoredObject{}, errors.New("bucket no disponible")
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = contentType
	return quality.StoredObject{URL: "https://cdn/" + key, ThumbnailURL: "https://cdn/thumbs/" + key}, nil
}

func (s *fakeStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failDel {
		return errors.New("delete falló")
	}
	delete(s.objects, key)
	s.deleted = append(s.deleted, key)
	return nil
}
