package ors

import (
	"context"
	"errors"
	"testing"
	"time"

	"roadward.org/internal/identity"
)

var (
	testAdmin     = identity.User{ID: "u-admin", Username: "amina", Email: "amina@example.com", Role: identity.RoleAdmin}
	testInspector = identity.User{ID: "u-nora", Username: "nora", Email: "nora@example.com", Role: identity.RoleInspector}
	testOther     = identity.User{ID: "u-timur", Username: "timur", Email: "timur@example.com", Role: identity.RoleInspector}
)

func newServiceWithClock(t *testing.T, now *time.Time) *Service {
	t.Helper()
	svc, err := NewService(NewMemoryStore(nil), WithClock(func() time.Time { return *now }))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func validInput() CreateInput {
	return CreateInput{
		Vehicle:             "KZ-001-A",
		RoadWorthinessScore: "85%",
		OverallTrafficScore: "A",
		ActionRequired:      "none",
	}
}

func TestCreateRecord(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newServiceWithClock(t, &now)
	ctx := context.Background()

	rec, err := svc.Create(ctx, validInput(), testInspector)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.ID == "" {
		t.Fatalf("no id assigned")
	}
	if rec.Inspector.ID != testInspector.ID || rec.Inspector.Username != "nora" {
		t.Fatalf("inspector not taken from actor: %+v", rec.Inspector)
	}
	if rec.Documents == nil || len(rec.Documents) != 0 {
		t.Fatalf("documents should default to empty slice, got %#v", rec.Documents)
	}
	if !rec.CreatedAt.Equal(now) || !rec.UpdatedAt.Equal(now) {
		t.Fatalf("timestamps not set from clock: %v / %v", rec.CreatedAt, rec.UpdatedAt)
	}
}

func TestCreateValidation(t *testing.T) {
	now := time.Now()
	svc := newServiceWithClock(t, &now)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*CreateInput)
	}{
		{"blank vehicle", func(in *CreateInput) { in.Vehicle = "  " }},
		{"non-numeric score", func(in *CreateInput) { in.RoadWorthinessScore = "excellent" }},
		{"negative score", func(in *CreateInput) { in.RoadWorthinessScore = "-10" }},
		{"double percent", func(in *CreateInput) { in.RoadWorthinessScore = "85%%" }},
		{"unknown grade", func(in *CreateInput) { in.OverallTrafficScore = "Z" }},
		{"lowercase grade", func(in *CreateInput) { in.OverallTrafficScore = "a" }},
		{"blank action", func(in *CreateInput) { in.ActionRequired = "" }},
	}
	for _, tc := range cases {
		in := validInput()
		tc.mutate(&in)
		if _, err := svc.Create(ctx, in, testInspector); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%s: err = %v, want ErrInvalidInput", tc.name, err)
		}
	}

	// Scores are stored verbatim; both bare and percent forms are accepted.
	for _, score := range []string{"0", "100", "91", "85%"} {
		in := validInput()
		in.RoadWorthinessScore = score
		rec, err := svc.Create(ctx, in, testInspector)
		if err != nil {
			t.Fatalf("score %q rejected: %v", score, err)
		}
		if rec.RoadWorthinessScore != score {
			t.Fatalf("score mangled: %q -> %q", score, rec.RoadWorthinessScore)
		}
	}
}

func TestUpdatePartialPatch(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newServiceWithClock(t, &now)
	ctx := context.Background()

	rec, err := svc.Create(ctx, validInput(), testInspector)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	now = now.Add(time.Hour)
	vehicle := "KZ-002-B"
	updated, err := svc.Update(ctx, rec.ID, UpdateInput{Vehicle: &vehicle}, testInspector)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Vehicle != "KZ-002-B" {
		t.Fatalf("vehicle not patched: %q", updated.Vehicle)
	}
	if updated.RoadWorthinessScore != "85%" || updated.OverallTrafficScore != "A" {
		t.Fatalf("absent fields must stay untouched: %+v", updated)
	}
	if !updated.CreatedAt.Equal(rec.CreatedAt) {
		t.Fatalf("createdAt must not move on update")
	}
	if !updated.UpdatedAt.Equal(now) {
		t.Fatalf("updatedAt = %v, want %v", updated.UpdatedAt, now)
	}

	// Documents replace wholesale, never merge.
	docs := []Document{{TextDoc: []TextDoc{{Label: "brakes", Description: "rear pads worn"}}}}
	updated, err = svc.Update(ctx, rec.ID, UpdateInput{Documents: &docs}, testInspector)
	if err != nil {
		t.Fatalf("Update documents: %v", err)
	}
	if len(updated.Documents) != 1 || updated.Documents[0].TextDoc[0].Label != "brakes" {
		t.Fatalf("documents not replaced: %+v", updated.Documents)
	}
	empty := []Document{}
	updated, err = svc.Update(ctx, rec.ID, UpdateInput{Documents: &empty}, testInspector)
	if err != nil {
		t.Fatalf("Update empty documents: %v", err)
	}
	if len(updated.Documents) != 0 {
		t.Fatalf("explicit empty documents must clear: %+v", updated.Documents)
	}
}

func TestUpdateValidationAndOwnership(t *testing.T) {
	now := time.Now()
	svc := newServiceWithClock(t, &now)
	ctx := context.Background()

	rec, err := svc.Create(ctx, validInput(), testInspector)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	bad := "nonsense"
	if _, err := svc.Update(ctx, rec.ID, UpdateInput{RoadWorthinessScore: &bad}, testInspector); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("invalid patch: err = %v, want ErrInvalidInput", err)
	}

	vehicle := "HIJACK"
	if _, err := svc.Update(ctx, rec.ID, UpdateInput{Vehicle: &vehicle}, testOther); !errors.Is(err, ErrForbidden) {
		t.Fatalf("foreign inspector: err = %v, want ErrForbidden", err)
	}
	if _, err := svc.Update(ctx, rec.ID, UpdateInput{Vehicle: &vehicle}, testAdmin); err != nil {
		t.Fatalf("admin update: %v", err)
	}

	if _, err := svc.Update(ctx, "missing", UpdateInput{Vehicle: &vehicle}, testAdmin); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing record: err = %v, want ErrNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	now := time.Now()
	svc := newServiceWithClock(t, &now)
	ctx := context.Background()

	rec, err := svc.Create(ctx, validInput(), testInspector)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.Delete(ctx, rec.ID, testOther); !errors.Is(err, ErrForbidden) {
		t.Fatalf("foreign delete: err = %v, want ErrForbidden", err)
	}
	if err := svc.Delete(ctx, rec.ID, testInspector); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if err := svc.Delete(ctx, rec.ID, testInspector); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete: err = %v, want ErrNotFound", err)
	}
	if _, err := svc.Get(ctx, rec.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get after delete: err = %v, want ErrNotFound", err)
	}
}

func TestListOrderingAndFilters(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newServiceWithClock(t, &now)
	ctx := context.Background()

	mk := func(vehicle, grade string, owner identity.User) Record {
		t.Helper()
		in := validInput()
		in.Vehicle = vehicle
		in.OverallTrafficScore = grade
		rec, err := svc.Create(ctx, in, owner)
		if err != nil {
			t.Fatalf("create %s: %v", vehicle, err)
		}
		now = now.Add(time.Minute)
		return rec
	}

	mk("KZ-100-ALA", "A", testInspector)
	mk("KZ-200-AST", "D", testInspector)
	mk("KZ-300-ala", "B", testOther)

	all, err := svc.List(ctx, Filter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len = %d, want 3", len(all))
	}
	if all[0].Vehicle != "KZ-300-ala" || all[2].Vehicle != "KZ-100-ALA" {
		t.Fatalf("not newest-first: %s .. %s", all[0].Vehicle, all[2].Vehicle)
	}

	byVehicle, err := svc.List(ctx, Filter{Vehicle: "ALA"})
	if err != nil {
		t.Fatalf("List vehicle: %v", err)
	}
	if len(byVehicle) != 2 {
		t.Fatalf("vehicle filter len = %d, want 2", len(byVehicle))
	}

	byOwner, err := svc.List(ctx, Filter{InspectorID: testOther.ID})
	if err != nil {
		t.Fatalf("List inspector: %v", err)
	}
	if len(byOwner) != 1 || byOwner[0].Vehicle != "KZ-300-ala" {
		t.Fatalf("inspector filter: %+v", byOwner)
	}

	byGrade, err := svc.List(ctx, Filter{TrafficScore: "D"})
	if err != nil {
		t.Fatalf("List grade: %v", err)
	}
	if len(byGrade) != 1 || byGrade[0].Vehicle != "KZ-200-AST" {
		t.Fatalf("grade filter: %+v", byGrade)
	}
}
