package planning_test

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/jhoicas/control-calidad/internal/application/dto"
	"github.com/jhoicas/control-calidad/internal/domain"
	"github.com/jhoicas/control-calidad/internal/domain/entity"
	"github.com/jhoicas/control-calidad/internal/domain/repository"
)

// store base de datos en memoria. Run serializa las transacciones con un mutex,
// lo que equivale a bloquear la fila del plan, y deshace los cambios si fn falla.
type store struct {
	mu      sync.Mutex
	plans   map[string]*entity.WorkPlan
	entries []*entity.ReleaseEntry
	failOn  string // "create" o "bump" fuerza un error de persistencia
}

func newStore() *store {
	return &store{plans: map[string]*entity.WorkPlan{}}
}

func (s *store) addPlan(id string, target int) *entity.WorkPlan {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &entity.WorkPlan{ID: id, Area: "SILLAS", Product: "Silla " + id, TargetQuantity: target}
	s.plans[id] = p
	return p
}

func (s *store) Run(ctx context.Context, fn func(repository.WorkPlanRepository, repository.ReleaseRepository) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshotEntries := append([]*entity.ReleaseEntry(nil), s.entries...)
	snapshotPlans := make(map[string]entity.WorkPlan, len(s.plans))
	for id, p := range s.plans {
		snapshotPlans[id] = *p
	}

	if err := fn(planRepo{s}, releaseRepo{s}); err != nil {
		s.entries = snapshotEntries
		for id, p := range snapshotPlans {
			cp := p
			s.plans[id] = &cp
		}
		return err
	}
	return nil
}

// locked devuelve una vista que usa el mutex en cada llamada (fuera de transacción).
func (s *store) locked() (repository.WorkPlanRepository, repository.ReleaseRepository) {
	return lockedPlanRepo{s}, lockedReleaseRepo{s}
}

type planRepo struct{ s *store }

func (r planRepo) Create(_ context.Context, p *entity.WorkPlan) error {
	if _, ok := r.s.plans[p.ID]; ok {
		return domain.ErrDuplicate
	}
	cp := *p
	r.s.plans[p.ID] = &cp
	return nil
}

func (r planRepo) GetByID(_ context.Context, id string) (*entity.WorkPlan, error) {
	p, ok := r.s.plans[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r planRepo) GetForUpdate(ctx context.Context, id string) (*entity.WorkPlan, error) {
	return r.GetByID(ctx, id)
}

func (r planRepo) BumpVersion(_ context.Context, id string) (int, error) {
	if r.s.failOn == "bump" {
		return 0, errors.New("bump falló")
	}
	p, ok := r.s.plans[id]
	if !ok {
		return 0, domain.ErrNotFound
	}
	p.Version++
	return p.Version, nil
}

func (r planRepo) List(_ context.Context, area string) ([]*entity.WorkPlan, error) {
	var out []*entity.WorkPlan
	for _, p := range r.s.plans {
		if area == "" || p.Area == area {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type releaseRepo struct{ s *store }

func (r releaseRepo) Create(_ context.Context, e *entity.ReleaseEntry) error {
	if r.s.failOn == "create" {
		return errors.New("insert falló")
	}
	cp := *e
	r.s.entries = append(r.s.entries, &cp)
	return nil
}

func (r releaseRepo) GetByID(_ context.Context, id string) (*entity.ReleaseEntry, error) {
	for _, e := range r.s.entries {
		if e.ID == id {
			cp := *e
			return &cp, nil
		}
	}
	return nil, nil
}

func (r releaseRepo) ListByPlan(_ context.Context, planID string) ([]*entity.ReleaseEntry, error) {
	var out []*entity.ReleaseEntry
	for _, e := range r.s.entries {
		if e.PlanID == planID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r releaseRepo) ListByPlans(ctx context.Context, ids []string) (map[string][]*entity.ReleaseEntry, error) {
	out := map[string][]*entity.ReleaseEntry{}
	for _, id := range ids {
		list, _ := r.ListByPlan(ctx, id)
		if len(list) > 0 {
			out[id] = list
		}
	}
	return out, nil
}

type lockedPlanRepo struct{ s *store }

func (r lockedPlanRepo) Create(ctx context.Context, p *entity.WorkPlan) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return planRepo(r).Create(ctx, p)
}

func (r lockedPlanRepo) GetByID(ctx context.Context, id string) (*entity.WorkPlan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return planRepo(r).GetByID(ctx, id)
}

func (r lockedPlanRepo) GetForUpdate(ctx context.Context, id string) (*entity.WorkPlan, error) {
	return r.GetByID(ctx, id)
}

func (r lockedPlanRepo) BumpVersion(ctx context.Context, id string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return planRepo(r).BumpVersion(ctx, id)
}

func (r lockedPlanRepo) List(ctx context.Context, area string) ([]*entity.WorkPlan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return planRepo(r).List(ctx, area)
}

type lockedReleaseRepo struct{ s *store }

func (r lockedReleaseRepo) Create(ctx context.Context, e *entity.ReleaseEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return releaseRepo(r).Create(ctx, e)
}

func (r lockedReleaseRepo) GetByID(ctx context.Context, id string) (*entity.ReleaseEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return releaseRepo(r).GetByID(ctx, id)
}

func (r lockedReleaseRepo) ListByPlan(ctx context.Context, planID string) ([]*entity.ReleaseEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return releaseRepo(r).ListByPlan(ctx, planID)
}

func (r lockedReleaseRepo) ListByPlans(ctx context.Context, ids []string) (map[string][]*entity.ReleaseEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return releaseRepo(r).ListByPlans(ctx, ids)
}

// failingLocker simula que otra instancia tiene el bloqueo del plan.
type failingLocker struct{}

func (failingLocker) Lock(context.Context, string) (func(), error) {
	return nil, domain.ErrLockNotObtained
}

// countingLocker registra los planes bloqueados y liberados.
type countingLocker struct {
	mu       sync.Mutex
	locked   []string
	released int
}

func (l *countingLocker) Lock(_ context.Context, planID string) (func(), error) {
	l.mu.Lock()
	l.locked = append(l.locked, planID)
	l.mu.Unlock()
	return func() {
		l.mu.Lock()
		l.released++
		l.mu.Unlock()
	}, nil
}

type fakePDF struct {
	got dto.PlanDetailResponse
}

func (f *fakePDF) GeneratePlanLedgerPDF(_ context.Context, plan dto.PlanDetailResponse) ([]byte, error) {
	f.got = plan
	return []byte("%PDF-fake"), nil
}

type fakeSheet struct {
	title string
	plans []dto.PlanDetailResponse
}

func (f *fakeSheet) ExportPlans(title string, plans []dto.PlanDetailResponse) ([]byte, error) {
	f.title = title
	f.plans = plans
	return []byte("xlsx"), nil
}
