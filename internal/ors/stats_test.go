package ors

import (
	"context"
	"testing"
	"time"
)

func TestStatsEmptyCorpus(t *testing.T) {
	now := time.Now()
	svc := newServiceWithClock(t, &now)

	st, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.Total != 0 || st.AvgScore != 0 || st.NeedsAction != 0 {
		t.Fatalf("empty stats: %+v", st)
	}
	if len(st.GradeDistribution) != len(Grades) {
		t.Fatalf("distribution must carry every grade: %+v", st.GradeDistribution)
	}
	for _, g := range Grades {
		if st.GradeDistribution[g] != 0 {
			t.Fatalf("grade %s should be zero: %+v", g, st.GradeDistribution)
		}
	}
}

func TestStatsAggregation(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newServiceWithClock(t, &now)
	ctx := context.Background()

	for _, s := range []struct{ score, grade string }{
		{"85%", "A"},
		{"55%", "D"},
		{"91", "A"},
	} {
		in := validInput()
		in.RoadWorthinessScore = s.score
		in.OverallTrafficScore = s.grade
		if _, err := svc.Create(ctx, in, testInspector); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	st, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.Total != 3 {
		t.Fatalf("total = %d, want 3", st.Total)
	}
	// (85+55+91)/3 = 77.0, percent signs stripped before parsing.
	if st.AvgScore != 77 {
		t.Fatalf("avgScore = %d, want 77", st.AvgScore)
	}
	if st.NeedsAction != 1 {
		t.Fatalf("needsAction = %d, want 1", st.NeedsAction)
	}
	if st.GradeDistribution["A"] != 2 || st.GradeDistribution["D"] != 1 {
		t.Fatalf("distribution: %+v", st.GradeDistribution)
	}
	if st.GradeDistribution["B"] != 0 || st.GradeDistribution["C"] != 0 || st.GradeDistribution["F"] != 0 {
		t.Fatalf("untouched grades must stay zero: %+v", st.GradeDistribution)
	}
}

func TestStatsRounding(t *testing.T) {
	now := time.Now()
	svc := newServiceWithClock(t, &now)
	ctx := context.Background()

	// 80 and 85 average to 82.5, which rounds half away from zero to 83.
	for _, score := range []string{"80", "85"} {
		in := validInput()
		in.RoadWorthinessScore = score
		if _, err := svc.Create(ctx, in, testInspector); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	st, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.AvgScore != 83 {
		t.Fatalf("avgScore = %d, want 83", st.AvgScore)
	}
}

func TestStatsSkipsMalformedLegacyScores(t *testing.T) {
	now := time.Now()
	svc := newServiceWithClock(t, &now)
	ctx := context.Background()

	rec, err := svc.Create(ctx, validInput(), testInspector)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Plant a pre-validation score directly in the store, bypassing the
	// service's write-time format check.
	rec.RoadWorthinessScore = "unknown"
	if _, err := svc.store.Update(ctx, rec); err != nil {
		t.Fatalf("plant legacy record: %v", err)
	}
	in := validInput()
	in.RoadWorthinessScore = "60"
	in.OverallTrafficScore = "C"
	if _, err := svc.Create(ctx, in, testInspector); err != nil {
		t.Fatalf("create: %v", err)
	}

	st, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.Total != 2 {
		t.Fatalf("total = %d, want 2 (legacy record still counted)", st.Total)
	}
	if st.GradeDistribution["A"] != 1 || st.GradeDistribution["C"] != 1 {
		t.Fatalf("legacy record must keep its grade: %+v", st.GradeDistribution)
	}
	if st.AvgScore != 60 || st.NeedsAction != 1 {
		t.Fatalf("legacy score must be skipped for averages: %+v", st)
	}
}
