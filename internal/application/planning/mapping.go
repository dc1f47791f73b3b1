package planning

import (
	"github.com/jhoicas/control-calidad/internal/application/dto"
	"github.com/jhoicas/control-calidad/internal/domain/entity"
	"github.com/jhoicas/control-calidad/internal/domain/ledger"
)

// ReversalLabelPrefix prefijo del texto mostrado para una reversión.
const ReversalLabelPrefix = "Reversión de "

func toPlanResponse(p *entity.WorkPlan, s ledger.Summary) dto.PlanResponse {
	return dto.PlanResponse{
		ID:             p.ID,
		Area:           p.Area,
		TargetQuantity: p.TargetQuantity,
		Product:        p.Product,
		Color:          p.Color,
		LF:             p.LF,
		PT:             p.PT,
		LP:             p.LP,
		Order:          p.Order,
		Client:         p.Client,
		Version:        p.Version,
		Released:       s.Released,
		Pending:        s.Pending,
		Percentage:     s.Percentage,
		Status:         s.Status,
		CreatedBy:      p.CreatedBy,
		CreatedAt:      p.CreatedAt,
	}
}

// toDetail arma el plan con su historial en el orden del libro.
func toDetail(p *entity.WorkPlan, entries []*entity.ReleaseEntry) dto.PlanDetailResponse {
	s := ledger.Summarize(p, entries)
	actors := make(map[string]string, len(entries))
	for _, e := range entries {
		actors[e.ID] = e.Actor
	}
	out := dto.PlanDetailResponse{
		PlanResponse: toPlanResponse(p, s),
		Entries:      make([]dto.ReleaseEntryResponse, 0, len(s.Entries)),
	}
	for _, v := range s.Entries {
		out.Entries = append(out.Entries, toEntryResponse(v, actors))
	}
	return out
}

func toEntryResponse(v ledger.EntryView, actors map[string]string) dto.ReleaseEntryResponse {
	e := v.Entry
	label := e.Actor
	if e.ReversalOfID != nil {
		label = ReversalLabelPrefix + actors[*e.ReversalOfID]
	}
	return dto.ReleaseEntryResponse{
		ID:           e.ID,
		PlanID:       e.PlanID,
		Amount:       e.Amount,
		Actor:        e.Actor,
		Label:        label,
		ReversalOfID: e.ReversalOfID,
		Reversed:     v.Reversed,
		Reversible:   v.Reversible,
		CanRevert:    v.Reversible > 0,
		CreatedBy:    e.CreatedBy,
		CreatedAt:    e.CreatedAt,
	}
}
