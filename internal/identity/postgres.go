package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

const pgErrUniqueViolation = "23505"

// PGStore implements Store using PostgreSQL.
type PGStore struct {
	db *sql.DB
}

var _ Store = (*PGStore)(nil)

// NewPGStore constructs a postgres-backed store.
func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Create(ctx context.Context, u User) (User, error) {
	if s.db == nil {
		return User{}, errors.New("database connection unavailable")
	}
	row := s.db.QueryRowContext(ctx, `
		insert into users (id, username, email, password_hash, role, created_at, updated_at)
		values ($1, $2, $3, $4, $5, $6, $7)
		returning id, username, email, password_hash, role, created_at, updated_at
	`, u.ID, u.Username, u.Email, u.PasswordHash, u.Role, u.CreatedAt, u.UpdatedAt)
	created, err := scanUser(row)
	if err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
			return User{}, fmt.Errorf("%w: user with this email or username already exists", ErrConflict)
		}
		return User{}, err
	}
	return created, nil
}

func (s *PGStore) Find(ctx context.Context, id string) (User, error) {
	return s.findBy(ctx, "id", id)
}

func (s *PGStore) FindByEmail(ctx context.Context, email string) (User, error) {
	return s.findBy(ctx, "email", email)
}

func (s *PGStore) FindByUsername(ctx context.Context, username string) (User, error) {
	return s.findBy(ctx, "username", username)
}

func (s *PGStore) findBy(ctx context.Context, column, value string) (User, error) {
	if s.db == nil {
		return User{}, errors.New("database connection unavailable")
	}
	row := s.db.QueryRowContext(ctx, fmt.Sprintf(`
		select id, username, email, password_hash, role, created_at, updated_at
		from users
		where %s = $1
	`, column), value)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	return u, nil
}

func scanUser(row *sql.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func maybePgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}
