package ors

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"roadward.org/internal/identity"
)

var recordTestColumns = []string{
	"id", "vehicle", "road_worthiness_score", "overall_traffic_score",
	"action_required", "documents", "created_at", "updated_at",
	"u_id", "u_username", "u_email", "u_role",
}

func recordRow(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(recordTestColumns).AddRow(
		"r-1", "KZ-001-A", "85%", "A",
		"none", []byte(`[{"textDoc":[{"label":"brakes","description":"rear pads worn"}],"attachments":[]}]`), now, now,
		"u-nora", "nora", "nora@example.com", "inspector",
	)
}

func TestPGStoreCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rec := Record{
		ID:                  "r-1",
		Vehicle:             "KZ-001-A",
		RoadWorthinessScore: "85%",
		OverallTrafficScore: "A",
		ActionRequired:      "none",
		Inspector:           Inspector{ID: "u-nora"},
		Documents:           []Document{},
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	mock.ExpectExec("insert into ors_records").
		WithArgs(rec.ID, rec.Vehicle, rec.RoadWorthinessScore, rec.OverallTrafficScore,
			rec.ActionRequired, rec.Inspector.ID, sqlmock.AnyArg(), rec.CreatedAt, rec.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("select (.+) from ors_records r join users u").
		WithArgs("r-1").
		WillReturnRows(recordRow(now))

	store := NewPGStore(db)
	created, err := store.Create(context.Background(), rec)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Inspector.Username != "nora" || created.Inspector.Role != identity.RoleInspector {
		t.Fatalf("inspector not expanded: %+v", created.Inspector)
	}
	if len(created.Documents) != 1 || created.Documents[0].TextDoc[0].Label != "brakes" {
		t.Fatalf("documents not decoded: %+v", created.Documents)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPGStoreCreateMissingInspector(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("insert into ors_records").
		WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: "ors_records_inspector_id_fkey"})

	store := NewPGStore(db)
	_, err = store.Create(context.Background(), Record{ID: "r-1", Inspector: Inspector{ID: "ghost"}})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestPGStoreListFilters(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery(`where r.vehicle ilike (.+) and r.inspector_id = (.+) and r.overall_traffic_score = (.+) order by r.created_at desc`).
		WithArgs("ala", "u-nora", "A").
		WillReturnRows(recordRow(now))

	store := NewPGStore(db)
	records, err := store.List(context.Background(), Filter{Vehicle: "ala", InspectorID: "u-nora", TrafficScore: "A"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 1 || records[0].ID != "r-1" {
		t.Fatalf("unexpected records: %+v", records)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPGStoreFindNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("select (.+) from ors_records r join users u").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(recordTestColumns))

	store := NewPGStore(db)
	if _, err := store.Find(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestPGStoreUpdateNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("update ors_records").
		WillReturnResult(sqlmock.NewResult(0, 0))

	store := NewPGStore(db)
	if _, err := store.Update(context.Background(), Record{ID: "missing"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestPGStoreDelete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("delete from ors_records").
		WithArgs("r-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("delete from ors_records").
		WithArgs("r-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	store := NewPGStore(db)
	if err := store.Delete(context.Background(), "r-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := store.Delete(context.Background(), "r-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete: err = %v, want ErrNotFound", err)
	}
}
