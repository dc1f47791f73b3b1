package planning_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/control-calidad/internal/application/planning"
	"github.com/jhoicas/control-calidad/internal/domain"
	"github.com/jhoicas/control-calidad/internal/domain/ledger"
)

func newReleaseUC(s *store, locker planning.PlanLocker) *planning.ReleaseUseCase {
	_, releases := s.locked()
	return planning.NewReleaseUseCase(s, releases, locker)
}

func intPtr(v int) *int { return &v }

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	ve, ok := domain.AsValidation(err)
	require.True(t, ok, "se esperaba ValidationError, llegó %v", err)
	assert.Equal(t, code, ve.Code)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestRecordRelease_EscenarioCompleto(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	s.addPlan("p1", 100)
	uc := newReleaseUC(s, nil)

	r1, err := uc.RecordRelease(ctx, planning.ReleaseInput{PlanID: "p1", Amount: 40, Actor: "Ana", UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, 40, r1.Plan.Released)
	assert.Equal(t, 60, r1.Plan.Pending)
	assert.Equal(t, 1, r1.Plan.Version)
	assert.Equal(t, "Ana", r1.Entry.Label)
	assert.True(t, r1.Entry.CanRevert)
	assert.Equal(t, 40, r1.Entry.Reversible)

	_, err = uc.RecordRelease(ctx, planning.ReleaseInput{PlanID: "p1", Amount: 70, Actor: "Luis"})
	requireCode(t, err, ledger.CodeExceedsPending)

	rev, err := uc.RecordReversal(ctx, planning.ReversalInput{EntryID: r1.Entry.ID, Amount: 15, Actor: "Carlos"})
	require.NoError(t, err)
	assert.Equal(t, -15, rev.Entry.Amount)
	assert.Equal(t, "Reversión de Ana", rev.Entry.Label)
	assert.Equal(t, "Carlos", rev.Entry.Actor)
	require.NotNil(t, rev.Entry.ReversalOfID)
	assert.Equal(t, r1.Entry.ID, *rev.Entry.ReversalOfID)
	assert.False(t, rev.Entry.CanRevert)
	assert.Equal(t, 25, rev.Plan.Released)
	assert.Equal(t, 75, rev.Plan.Pending)
	assert.Equal(t, 2, rev.Plan.Version)

	done, err := uc.RecordRelease(ctx, planning.ReleaseInput{PlanID: "p1", Amount: 75, Actor: "Luis"})
	require.NoError(t, err)
	assert.Equal(t, 0, done.Plan.Pending)
	assert.Equal(t, ledger.StatusCompleted, done.Plan.Status)
	assert.Equal(t, "100", done.Plan.Percentage.String())

	assert.Len(t, s.entries, 3, "los rechazos no anexan asientos")
}

func TestRecordRelease_Rechazos(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	s.addPlan("p1", 10)
	uc := newReleaseUC(s, nil)

	_, err := uc.RecordRelease(ctx, planning.ReleaseInput{PlanID: "p1", Amount: 0, Actor: "Ana"})
	requireCode(t, err, ledger.CodeAmountNotPositive)

	_, err = uc.RecordRelease(ctx, planning.ReleaseInput{PlanID: "p1", Amount: 3, Actor: "   "})
	requireCode(t, err, ledger.CodeActorRequired)

	_, err = uc.RecordRelease(ctx, planning.ReleaseInput{PlanID: "no-existe", Amount: 3, Actor: "Ana"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = uc.RecordRelease(ctx, planning.ReleaseInput{PlanID: "", Amount: 3, Actor: "Ana"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.Empty(t, s.entries)
	assert.Equal(t, 0, s.plans["p1"].Version)
}

func TestRecordRelease_VersionEsperada(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	s.addPlan("p1", 10)
	uc := newReleaseUC(s, nil)

	_, err := uc.RecordRelease(ctx, planning.ReleaseInput{PlanID: "p1", Amount: 2, Actor: "Ana", ExpectedVersion: intPtr(0)})
	require.NoError(t, err)

	_, err = uc.RecordRelease(ctx, planning.ReleaseInput{PlanID: "p1", Amount: 2, Actor: "Ana", ExpectedVersion: intPtr(0)})
	assert.ErrorIs(t, err, domain.ErrStaleVersion)
	assert.Len(t, s.entries, 1)

	r, err := uc.RecordRelease(ctx, planning.ReleaseInput{PlanID: "p1", Amount: 2, Actor: "Ana", ExpectedVersion: intPtr(1)})
	require.NoError(t, err)
	assert.Equal(t, 2, r.Plan.Version)
}

func TestRecordRelease_ErrorDePersistenciaNoDejaRastro(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	s.addPlan("p1", 10)
	s.failOn = "bump"
	uc := newReleaseUC(s, nil)

	_, err := uc.RecordRelease(ctx, planning.ReleaseInput{PlanID: "p1", Amount: 2, Actor: "Ana"})
	require.Error(t, err)
	assert.Empty(t, s.entries, "la transacción se deshace completa")
}

func TestRecordReversal_Rechazos(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	s.addPlan("p1", 100)
	s.addPlan("p2", 100)
	uc := newReleaseUC(s, nil)

	r1, err := uc.RecordRelease(ctx, planning.ReleaseInput{PlanID: "p1", Amount: 20, Actor: "Ana"})
	require.NoError(t, err)

	_, err = uc.RecordReversal(ctx, planning.ReversalInput{EntryID: r1.Entry.ID, Amount: 21, Actor: "Carlos"})
	requireCode(t, err, ledger.CodeExceedsReversible)

	_, err = uc.RecordReversal(ctx, planning.ReversalInput{EntryID: r1.Entry.ID, Amount: 0, Actor: "Carlos"})
	requireCode(t, err, ledger.CodeAmountNotPositive)

	_, err = uc.RecordReversal(ctx, planning.ReversalInput{EntryID: r1.Entry.ID, Amount: 5, Actor: ""})
	requireCode(t, err, ledger.CodeActorRequired)

	_, err = uc.RecordReversal(ctx, planning.ReversalInput{EntryID: r1.Entry.ID, PlanID: "p2", Amount: 5, Actor: "Carlos"})
	requireCode(t, err, ledger.CodePlanMismatch)

	_, err = uc.RecordReversal(ctx, planning.ReversalInput{EntryID: "no-existe", Amount: 5, Actor: "Carlos"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	rev, err := uc.RecordReversal(ctx, planning.ReversalInput{EntryID: r1.Entry.ID, PlanID: "p1", Amount: 20, Actor: "Carlos"})
	require.NoError(t, err)

	_, err = uc.RecordReversal(ctx, planning.ReversalInput{EntryID: rev.Entry.ID, Amount: 1, Actor: "Carlos"})
	requireCode(t, err, ledger.CodeReversalOfReversal)

	_, err = uc.RecordReversal(ctx, planning.ReversalInput{EntryID: r1.Entry.ID, Amount: 1, Actor: "Carlos"})
	requireCode(t, err, ledger.CodeExceedsReversible)

	assert.Len(t, s.entries, 2)
}

func TestRecordRelease_BloqueoDelPlan(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	s.addPlan("p1", 10)

	_, err := newReleaseUC(s, failingLocker{}).RecordRelease(ctx, planning.ReleaseInput{PlanID: "p1", Amount: 1, Actor: "Ana"})
	assert.ErrorIs(t, err, domain.ErrLockNotObtained)
	assert.Empty(t, s.entries)

	locker := &countingLocker{}
	uc := newReleaseUC(s, locker)
	r, err := uc.RecordRelease(ctx, planning.ReleaseInput{PlanID: "p1", Amount: 1, Actor: "Ana"})
	require.NoError(t, err)
	_, err = uc.RecordReversal(ctx, planning.ReversalInput{EntryID: r.Entry.ID, Amount: 1, Actor: "Ana"})
	require.NoError(t, err)
	_, err = uc.RecordRelease(ctx, planning.ReleaseInput{PlanID: "p1", Amount: 100, Actor: "Ana"})
	require.Error(t, err)

	assert.Equal(t, []string{"p1", "p1", "p1"}, locker.locked)
	assert.Equal(t, 3, locker.released, "el bloqueo se libera también cuando la validación falla")
}

func TestRecordRelease_ConcurrenciaNoSobrepasaObjetivo(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	s.addPlan("p1", 100)
	uc := newReleaseUC(s, nil)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok       int
		rejected int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.RecordRelease(ctx, planning.ReleaseInput{PlanID: "p1", Amount: 3, Actor: "Operario"})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
				return
			}
			if ve, isVE := domain.AsValidation(err); isVE && ve.Code == ledger.CodeExceedsPending {
				rejected++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 33, ok)
	assert.Equal(t, 17, rejected)
	assert.Equal(t, 99, ledger.Released(s.entries))
	assert.Equal(t, 33, s.plans["p1"].Version)
}

func TestRecordReversal_ConcurrenciaNoSobrepasaLiberado(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	s.addPlan("p1", 100)
	uc := newReleaseUC(s, nil)

	r, err := uc.RecordRelease(ctx, planning.ReleaseInput{PlanID: "p1", Amount: 10, Actor: "Ana"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = uc.RecordReversal(ctx, planning.ReversalInput{EntryID: r.Entry.ID, Amount: 1, Actor: "Carlos"})
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, ledger.Released(s.entries))
	assert.Equal(t, 10, ledger.ReversedAgainst(s.entries, r.Entry.ID))
}
