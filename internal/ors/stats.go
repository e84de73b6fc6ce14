package ors

import (
	"context"
	"math"
	"strconv"
	"strings"
)

// Stats is the on-demand report over the full record corpus.
type Stats struct {
	Total             int            `json:"total"`
	AvgScore          int            `json:"avgScore"`
	GradeDistribution map[string]int `json:"gradeDistribution"`
	NeedsAction       int            `json:"needsAction"`
}

// needsActionThreshold marks a record as requiring attention when its parsed
// score is strictly below this value.
const needsActionThreshold = 80

// Stats recomputes reporting metrics with a full scan on every call; nothing
// is cached or invalidated. Records whose stored score fails to parse (legacy
// data predating the write-time format check) still count toward total and
// the grade distribution but are skipped for avgScore and needsAction.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	records, err := s.store.List(ctx, Filter{})
	if err != nil {
		return Stats{}, err
	}

	dist := make(map[string]int, len(Grades))
	for _, g := range Grades {
		dist[g] = 0
	}

	var (
		sum    int
		scored int
		needs  int
	)
	for _, rec := range records {
		if _, ok := dist[rec.OverallTrafficScore]; ok {
			dist[rec.OverallTrafficScore]++
		}
		score, ok := parseScore(rec.RoadWorthinessScore)
		if !ok {
			continue
		}
		sum += score
		scored++
		if score < needsActionThreshold {
			needs++
		}
	}

	avg := 0
	if scored > 0 {
		avg = int(math.Round(float64(sum) / float64(scored)))
	}
	return Stats{
		Total:             len(records),
		AvgScore:          avg,
		GradeDistribution: dist,
		NeedsAction:       needs,
	}, nil
}

// parseScore strips one trailing percent sign and parses the remainder as an
// integer.
func parseScore(raw string) (int, bool) {
	raw = strings.TrimSuffix(strings.TrimSpace(raw), "%")
	if raw == "" {
		return 0, false
	}
	score, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return score, true
}
