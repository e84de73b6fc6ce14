package ors

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgErrUniqueViolation     = "23505"
	pgErrForeignKeyViolation = "23503"
)

const recordColumns = `r.id, r.vehicle, r.road_worthiness_score, r.overall_traffic_score,
	r.action_required, r.documents, r.created_at, r.updated_at,
	u.id, u.username, u.email, u.role`

// PGStore implements Store using PostgreSQL. Documents are persisted as a
// JSONB column and the inspector reference is expanded with a join against
// the users table on every read.
type PGStore struct {
	db *sql.DB
}

var _ Store = (*PGStore)(nil)

// NewPGStore constructs a postgres-backed store.
func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Create(ctx context.Context, rec Record) (Record, error) {
	if s.db == nil {
		return Record{}, errors.New("database connection unavailable")
	}
	docs, err := json.Marshal(rec.Documents)
	if err != nil {
		return Record{}, fmt.Errorf("marshal documents: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		insert into ors_records (id, vehicle, road_worthiness_score, overall_traffic_score,
			action_required, inspector_id, documents, created_at, updated_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, rec.ID, rec.Vehicle, rec.RoadWorthinessScore, rec.OverallTrafficScore,
		rec.ActionRequired, rec.Inspector.ID, docs, rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrForeignKeyViolation {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	return s.Find(ctx, rec.ID)
}

func (s *PGStore) List(ctx context.Context, f Filter) ([]Record, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}
	var (
		where []string
		args  []any
		idx   = 1
	)
	if f.Vehicle != "" {
		where = append(where, fmt.Sprintf("r.vehicle ilike '%%' || $%d || '%%'", idx))
		args = append(args, f.Vehicle)
		idx++
	}
	if f.InspectorID != "" {
		where = append(where, fmt.Sprintf("r.inspector_id = $%d", idx))
		args = append(args, f.InspectorID)
		idx++
	}
	if f.TrafficScore != "" {
		where = append(where, fmt.Sprintf("r.overall_traffic_score = $%d", idx))
		args = append(args, f.TrafficScore)
		idx++
	}
	query := `
		select ` + recordColumns + `
		from ors_records r
		join users u on u.id = r.inspector_id
	`
	if len(where) > 0 {
		query += " where " + strings.Join(where, " and ")
	}
	query += " order by r.created_at desc, r.id desc"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *PGStore) Find(ctx context.Context, id string) (Record, error) {
	if s.db == nil {
		return Record{}, errors.New("database connection unavailable")
	}
	row := s.db.QueryRowContext(ctx, `
		select `+recordColumns+`
		from ors_records r
		join users u on u.id = r.inspector_id
		where r.id = $1
	`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (s *PGStore) Update(ctx context.Context, rec Record) (Record, error) {
	if s.db == nil {
		return Record{}, errors.New("database connection unavailable")
	}
	docs, err := json.Marshal(rec.Documents)
	if err != nil {
		return Record{}, fmt.Errorf("marshal documents: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `
		update ors_records
		set vehicle = $1, road_worthiness_score = $2, overall_traffic_score = $3,
			action_required = $4, documents = $5, updated_at = $6
		where id = $7
	`, rec.Vehicle, rec.RoadWorthinessScore, rec.OverallTrafficScore,
		rec.ActionRequired, docs, rec.UpdatedAt, rec.ID)
	if err != nil {
		return Record{}, err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return Record{}, err
	}
	if aff == 0 {
		return Record{}, ErrNotFound
	}
	return s.Find(ctx, rec.ID)
}

func (s *PGStore) Delete(ctx context.Context, id string) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	res, err := s.db.ExecContext(ctx, `delete from ors_records where id = $1`, id)
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var (
		rec  Record
		docs []byte
	)
	err := row.Scan(&rec.ID, &rec.Vehicle, &rec.RoadWorthinessScore, &rec.OverallTrafficScore,
		&rec.ActionRequired, &docs, &rec.CreatedAt, &rec.UpdatedAt,
		&rec.Inspector.ID, &rec.Inspector.Username, &rec.Inspector.Email, &rec.Inspector.Role)
	if err != nil {
		return Record{}, err
	}
	rec.Documents = []Document{}
	if len(docs) > 0 {
		if err := json.Unmarshal(docs, &rec.Documents); err != nil {
			return Record{}, fmt.Errorf("decode documents: %w", err)
		}
	}
	return rec, nil
}

func maybePgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}
