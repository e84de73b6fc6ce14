package identity

import "context"

// Store describes persistence operations required for user accounts.
// Implementations must enforce username and email uniqueness at write time
// and surface ErrConflict when either is taken.
type Store interface {
	Create(ctx context.Context, u User) (User, error)
	Find(ctx context.Context, id string) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	FindByUsername(ctx context.Context, username string) (User, error)
}
