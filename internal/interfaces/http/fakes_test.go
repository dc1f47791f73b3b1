package http_test

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/jhoicas/control-calidad/internal/domain"
	"github.com/jhoicas/control-calidad/internal/domain/entity"
	"github.com/jhoicas/control-calidad/internal/domain/repository"
)

// memDB implementa los puertos de persistencia en memoria. Un único mutex serializa todo.
type memDB struct {
	mu      sync.Mutex
	users   map[string]*entity.User
	plans   map[string]*entity.WorkPlan
	entries []*entity.ReleaseEntry
	reports []*entity.DefectReport
	photos  []entity.DefectPhoto
}

func newMemDB() *memDB {
	return &memDB{users: map[string]*entity.User{}, plans: map[string]*entity.WorkPlan{}}
}

// Run ejecuta fn con el mutex tomado; sin rollback, los fakes solo fallan antes de escribir.
func (db *memDB) Run(_ context.Context, fn func(repository.WorkPlanRepository, repository.ReleaseRepository) error) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	return fn(memPlans{db}, memReleases{db})
}

// ── usuarios ─────────────────────────────────────────────────────────────────

type memUsers struct{ db *memDB }

func (r memUsers) Create(_ context.Context, u *entity.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	cp := *u
	r.db.users[u.ID] = &cp
	return nil
}

func (r memUsers) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r memUsers) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, u := range r.db.users {
		if u.Email == strings.ToLower(email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r memUsers) List(_ context.Context, limit, offset int) ([]*entity.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]*entity.User, 0, len(r.db.users))
	for _, u := range r.db.users {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

// ── planes y libro (sin mutex: se usan dentro de Run o vía lockedPlans) ──────

type memPlans struct{ db *memDB }

func (r memPlans) Create(_ context.Context, p *entity.WorkPlan) error {
	cp := *p
	r.db.plans[p.ID] = &cp
	return nil
}

func (r memPlans) GetByID(_ context.Context, id string) (*entity.WorkPlan, error) {
	p, ok := r.db.plans[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r memPlans) GetForUpdate(ctx context.Context, id string) (*entity.WorkPlan, error) {
	return r.GetByID(ctx, id)
}

func (r memPlans) BumpVersion(_ context.Context, id string) (int, error) {
	p, ok := r.db.plans[id]
	if !ok {
		return 0, domain.ErrNotFound
	}
	p.Version++
	return p.Version, nil
}

func (r memPlans) List(_ context.Context, area string) ([]*entity.WorkPlan, error) {
	out := make([]*entity.WorkPlan, 0, len(r.db.plans))
	for _, p := range r.db.plans {
		if area == "" || p.Area == area {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type memReleases struct{ db *memDB }

func (r memReleases) Create(_ context.Context, e *entity.ReleaseEntry) error {
	cp := *e
	r.db.entries = append(r.db.entries, &cp)
	return nil
}

func (r memReleases) GetByID(_ context.Context, id string) (*entity.ReleaseEntry, error) {
	for _, e := range r.db.entries {
		if e.ID == id {
			cp := *e
			return &cp, nil
		}
	}
	return nil, nil
}

func (r memReleases) ListByPlan(_ context.Context, planID string) ([]*entity.ReleaseEntry, error) {
	var out []*entity.ReleaseEntry
	for _, e := range r.db.entries {
		if e.PlanID == planID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r memReleases) ListByPlans(ctx context.Context, planIDs []string) (map[string][]*entity.ReleaseEntry, error) {
	out := make(map[string][]*entity.ReleaseEntry, len(planIDs))
	for _, id := range planIDs {
		list, _ := r.ListByPlan(ctx, id)
		out[id] = list
	}
	return out, nil
}

// lockedPlans y lockedReleases toman el mutex en cada llamada (lecturas fuera de transacción).
type lockedPlans struct{ db *memDB }

func (r lockedPlans) Create(ctx context.Context, p *entity.WorkPlan) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return memPlans(r).Create(ctx, p)
}

func (r lockedPlans) GetByID(ctx context.Context, id string) (*entity.WorkPlan, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return memPlans(r).GetByID(ctx, id)
}

func (r lockedPlans) GetForUpdate(ctx context.Context, id string) (*entity.WorkPlan, error) {
	return r.GetByID(ctx, id)
}

func (r lockedPlans) BumpVersion(ctx context.Context, id string) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return memPlans(r).BumpVersion(ctx, id)
}

func (r lockedPlans) List(ctx context.Context, area string) ([]*entity.WorkPlan, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return memPlans(r).List(ctx, area)
}

type lockedReleases struct{ db *memDB }

func (r lockedReleases) Create(ctx context.Context, e *entity.ReleaseEntry) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return memReleases(r).Create(ctx, e)
}

func (r lockedReleases) GetByID(ctx context.Context, id string) (*entity.ReleaseEntry, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return memReleases(r).GetByID(ctx, id)
}

func (r lockedReleases) ListByPlan(ctx context.Context, planID string) ([]*entity.ReleaseEntry, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return memReleases(r).ListByPlan(ctx, planID)
}

func (r lockedReleases) ListByPlans(ctx context.Context, ids []string) (map[string][]*entity.ReleaseEntry, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return memReleases(r).ListByPlans(ctx, ids)
}

// ── reportes de defectos ─────────────────────────────────────────────────────

type memReports struct{ db *memDB }

func (r memReports) Create(_ context.Context, rep *entity.DefectReport) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	cp := *rep
	r.db.reports = append(r.db.reports, &cp)
	return nil
}

func (r memReports) GetByID(_ context.Context, id string) (*entity.DefectReport, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, rep := range r.db.reports {
		if rep.ID == id {
			cp := *rep
			return &cp, nil
		}
	}
	return nil, nil
}

func (r memReports) List(_ context.Context, f repository.DefectFilter) ([]*entity.DefectReport, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]*entity.DefectReport, 0, len(r.db.reports))
	for i := len(r.db.reports) - 1; i >= 0; i-- {
		rep := r.db.reports[i]
		if f.Area != "" && rep.Area != f.Area {
			continue
		}
		if f.From != nil && rep.Date.Before(*f.From) {
			continue
		}
		if f.To != nil && rep.Date.After(*f.To) {
			continue
		}
		cp := *rep
		out = append(out, &cp)
	}
	return out, nil
}

func (r memReports) DeleteAll(_ context.Context) (int, []entity.DefectPhoto, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	n, photos := len(r.db.reports), r.db.photos
	r.db.reports, r.db.photos = nil, nil
	return n, photos, nil
}

type memPhotos struct{ db *memDB }

func (r memPhotos) Create(_ context.Context, p *entity.DefectPhoto) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.photos = append(r.db.photos, *p)
	return nil
}

func (r memPhotos) ListByReport(_ context.Context, reportID string) ([]entity.DefectPhoto, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []entity.DefectPhoto
	for _, p := range r.db.photos {
		if p.ReportID == reportID {
			out = append(out, p)
		}
	}
	return out, nil
}

// busyLocker simula otro proceso sosteniendo el bloqueo del plan.
type busyLocker struct{ asked *[]string }

func (l busyLocker) Lock(_ context.Context, planID string) (func(), error) {
	*l.asked = append(*l.asked, planID)
	return nil, domain.ErrLockNotObtained
}
