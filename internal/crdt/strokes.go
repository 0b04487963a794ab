package crdt

import (
	"cmp"
	"slices"

	"github.com/iudanet/bandsync/internal/models"
)

// StrokeOverlap результат сравнения двух наборов штрихов
type StrokeOverlap struct {
	Shared      []string // id штрихов, присутствующих в обоих наборах с одинаковым содержимым
	Conflicting []string // id штрихов, присутствующих в обоих наборах с разным содержимым
}

// Disjoint сообщает, можно ли объединить наборы без потери данных
func (o StrokeOverlap) Disjoint() bool {
	return len(o.Conflicting) == 0
}

// CompareStrokes находит общие и конфликтующие штрихи
func CompareStrokes(local, remote []models.Stroke) StrokeOverlap {
	byID := make(map[string]models.Stroke, len(local))
	for _, s := range local {
		byID[s.ID] = s
	}

	var overlap StrokeOverlap
	for _, r := range remote {
		l, ok := byID[r.ID]
		if !ok {
			continue
		}
		if l.Equal(r) {
			overlap.Shared = append(overlap.Shared, r.ID)
		} else {
			overlap.Conflicting = append(overlap.Conflicting, r.ID)
		}
	}
	return overlap
}

// UnionStrokes объединяет наборы штрихов, дубликаты по id отбрасываются.
// Результат отсортирован по id и не зависит от того, какая сторона локальная.
// Для конфликтующего id выигрывает версия из preferRemote стороны.
func UnionStrokes(local, remote []models.Stroke, preferRemote bool) []models.Stroke {
	remoteByID := make(map[string]models.Stroke, len(remote))
	for _, s := range remote {
		remoteByID[s.ID] = s
	}

	seen := make(map[string]struct{}, len(local)+len(remote))
	out := make([]models.Stroke, 0, len(local)+len(remote))

	for _, s := range local {
		if _, dup := seen[s.ID]; dup {
			continue
		}
		seen[s.ID] = struct{}{}
		if r, ok := remoteByID[s.ID]; ok && preferRemote {
			s = r
		}
		out = append(out, s)
	}

	for _, s := range remote {
		if _, dup := seen[s.ID]; dup {
			continue
		}
		seen[s.ID] = struct{}{}
		out = append(out, s)
	}

	slices.SortStableFunc(out, func(a, b models.Stroke) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}
