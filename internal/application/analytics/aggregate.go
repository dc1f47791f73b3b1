package analytics

import (
	"sort"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/control-calidad/internal/application/dto"
	"github.com/jhoicas/control-calidad/internal/application/quality"
	"github.com/jhoicas/control-calidad/internal/domain/entity"
)

const (
	topDefectsLimit = 10 // barras del gráfico de defectos
	recentLimit     = 10 // filas de "reportes recientes"
	labelMaxRunes   = 20
)

// Aggregate resume los reportes ya filtrados: total, conteo por área, defectos más frecuentes
// y reportes recientes. Los porcentajes son sobre el total de reportes con un decimal.
// reports debe venir ordenado del más reciente al más antiguo.
func Aggregate(reports []*entity.DefectReport) dto.DashboardSummaryResponse {
	total := len(reports)
	out := dto.DashboardSummaryResponse{
		Total:      total,
		ByArea:     []dto.AreaCount{},
		TopDefects: []dto.DefectCount{},
		Recent:     []dto.DefectReportResponse{},
	}
	if total == 0 {
		return out
	}

	byArea := map[string]int{}
	byDefect := map[string]int{}
	for _, r := range reports {
		byArea[r.Area]++
		seen := make(map[string]struct{}, len(r.Defects))
		for _, d := range r.Defects {
			if _, dup := seen[d]; dup {
				continue
			}
			seen[d] = struct{}{}
			byDefect[d]++
		}
	}

	for _, k := range sortedByCount(byArea) {
		out.ByArea = append(out.ByArea, dto.AreaCount{
			Area:       k,
			Count:      byArea[k],
			Percentage: percentOf(byArea[k], total),
		})
	}

	defects := sortedByCount(byDefect)
	if len(defects) > topDefectsLimit {
		defects = defects[:topDefectsLimit]
	}
	for _, k := range defects {
		out.TopDefects = append(out.TopDefects, dto.DefectCount{
			Defect:     k,
			Label:      truncateLabel(k),
			Count:      byDefect[k],
			Percentage: percentOf(byDefect[k], total),
		})
	}

	recent := reports
	if len(recent) > recentLimit {
		recent = recent[:recentLimit]
	}
	for _, r := range recent {
		out.Recent = append(out.Recent, quality.ToReportResponse(r))
	}
	return out
}

// sortedByCount claves ordenadas por frecuencia descendente; empates por nombre.
func sortedByCount(counts map[string]int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}

func percentOf(part, total int) decimal.Decimal {
	if total == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(part)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(total))).
		Round(1)
}

// truncateLabel recorta a 20 caracteres y agrega "..." para las etiquetas del gráfico.
func truncateLabel(s string) string {
	if utf8.RuneCountInString(s) <= labelMaxRunes {
		return s
	}
	return string([]rune(s)[:labelMaxRunes]) + "..."
}
