package planning

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/control-calidad/internal/application/dto"
	"github.com/jhoicas/control-calidad/internal/domain"
	"github.com/jhoicas/control-calidad/internal/domain/entity"
	"github.com/jhoicas/control-calidad/internal/domain/ledger"
	"github.com/jhoicas/control-calidad/internal/domain/repository"
)

// ReleaseUseCase anexa liberaciones y reversiones al libro de un plan.
// Cada escritura toma el bloqueo del plan, abre una transacción, bloquea la fila del plan
// (SELECT FOR UPDATE), relee el libro, valida, anexa y sube la versión del plan.
type ReleaseUseCase struct {
	txRunner TxRunner
	releases repository.ReleaseRepository
	locker   PlanLocker
	now      func() time.Time
}

// NewReleaseUseCase construye el caso de uso. locker nil equivale a NoopLocker.
func NewReleaseUseCase(txRunner TxRunner, releases repository.ReleaseRepository, locker PlanLocker) *ReleaseUseCase {
	if locker == nil {
		locker = NoopLocker{}
	}
	return &ReleaseUseCase{
		txRunner: txRunner,
		releases: releases,
		locker:   locker,
		now:      time.Now,
	}
}

// ReleaseInput entrada de RecordRelease.
type ReleaseInput struct {
	PlanID          string
	Amount          int
	Actor           string
	UserID          string
	ExpectedVersion *int
}

// ReversalInput entrada de RecordReversal. PlanID es opcional; si viene debe ser el plan del asiento.
type ReversalInput struct {
	EntryID         string
	PlanID          string
	Amount          int
	Actor           string
	UserID          string
	ExpectedVersion *int
}

// RecordRelease anexa una liberación positiva al plan.
func (uc *ReleaseUseCase) RecordRelease(ctx context.Context, in ReleaseInput) (*dto.ReleaseResultResponse, error) {
	if strings.TrimSpace(in.PlanID) == "" {
		return nil, domain.ErrNotFound
	}

	var result *dto.ReleaseResultResponse
	err := uc.withPlanLock(ctx, in.PlanID, func() error {
		return uc.txRunner.Run(ctx, func(plans repository.WorkPlanRepository, releases repository.ReleaseRepository) error {
			plan, entries, err := lockPlan(ctx, plans, releases, in.PlanID, in.ExpectedVersion)
			if err != nil {
				return err
			}
			if err := ledger.ValidateRelease(plan, entries, in.Amount, in.Actor); err != nil {
				return err
			}
			entry := &entity.ReleaseEntry{
				ID:        uuid.New().String(),
				PlanID:    plan.ID,
				Amount:    in.Amount,
				Actor:     strings.TrimSpace(in.Actor),
				CreatedBy: in.UserID,
				CreatedAt: uc.now(),
			}
			result, err = appendEntry(ctx, plans, releases, plan, entries, entry)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RecordReversal anexa una reversión (cantidad negativa) contra una liberación existente.
func (uc *ReleaseUseCase) RecordReversal(ctx context.Context, in ReversalInput) (*dto.ReleaseResultResponse, error) {
	target, err := uc.releases.GetByID(ctx, in.EntryID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, domain.ErrNotFound
	}
	if in.PlanID != "" && in.PlanID != target.PlanID {
		return nil, domain.NewValidationError(ledger.CodePlanMismatch, "entry_id", "la liberación no pertenece a este plan")
	}

	var result *dto.ReleaseResultResponse
	err = uc.withPlanLock(ctx, target.PlanID, func() error {
		return uc.txRunner.Run(ctx, func(plans repository.WorkPlanRepository, releases repository.ReleaseRepository) error {
			plan, entries, err := lockPlan(ctx, plans, releases, target.PlanID, in.ExpectedVersion)
			if err != nil {
				return err
			}
			original := findEntry(entries, target.ID)
			if original == nil {
				return domain.NewValidationError(ledger.CodePlanMismatch, "entry_id", "la liberación no pertenece a este plan")
			}
			if err := ledger.ValidateReversal(original, entries, in.Amount, in.Actor); err != nil {
				return err
			}
			originalID := original.ID
			entry := &entity.ReleaseEntry{
				ID:           uuid.New().String(),
				PlanID:       plan.ID,
				Amount:       -in.Amount,
				Actor:        strings.TrimSpace(in.Actor),
				ReversalOfID: &originalID,
				CreatedBy:    in.UserID,
				CreatedAt:    uc.now(),
			}
			result, err = appendEntry(ctx, plans, releases, plan, entries, entry)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (uc *ReleaseUseCase) withPlanLock(ctx context.Context, planID string, fn func() error) error {
	unlock, err := uc.locker.Lock(ctx, planID)
	if err != nil {
		return err
	}
	defer unlock()
	return fn()
}

// lockPlan bloquea la fila del plan, verifica la versión esperada y lee el libro dentro de la tx.
func lockPlan(
	ctx context.Context,
	plans repository.WorkPlanRepository,
	releases repository.ReleaseRepository,
	planID string,
	expectedVersion *int,
) (*entity.WorkPlan, []*entity.ReleaseEntry, error) {
	plan, err := plans.GetForUpdate(ctx, planID)
	if err != nil {
		return nil, nil, err
	}
	if plan == nil {
		return nil, nil, domain.ErrNotFound
	}
	if expectedVersion != nil && *expectedVersion != plan.Version {
		return nil, nil, domain.ErrStaleVersion
	}
	entries, err := releases.ListByPlan(ctx, plan.ID)
	if err != nil {
		return nil, nil, err
	}
	return plan, entries, nil
}

func appendEntry(
	ctx context.Context,
	plans repository.WorkPlanRepository,
	releases repository.ReleaseRepository,
	plan *entity.WorkPlan,
	entries []*entity.ReleaseEntry,
	entry *entity.ReleaseEntry,
) (*dto.ReleaseResultResponse, error) {
	if err := releases.Create(ctx, entry); err != nil {
		return nil, err
	}
	version, err := plans.BumpVersion(ctx, plan.ID)
	if err != nil {
		return nil, err
	}
	updated := *plan
	updated.Version = version

	detail := toDetail(&updated, append(entries, entry))
	return &dto.ReleaseResultResponse{
		Entry: detail.Entries[len(detail.Entries)-1],
		Plan:  detail.PlanResponse,
	}, nil
}

func findEntry(entries []*entity.ReleaseEntry, id string) *entity.ReleaseEntry {
	for _, e := range entries {
		if e.ID == id {
			return e
		}
	}
	return nil
}
