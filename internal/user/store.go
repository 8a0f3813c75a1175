package user

import (
	"context"

	"github.com/google/uuid"
)

// Store is the persistence port for user accounts.
//
// IncrementIdvAttempts must be atomic under concurrent submissions for the
// same user (double-submit from duplicate requests): implementations use an
// atomic increment-and-read so no update is lost.
type Store interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, u *User) error

	// IncrementIdvAttempts adds one to the persisted attempt counter and
	// returns the new value.
	IncrementIdvAttempts(ctx context.Context, id uuid.UUID) (int, error)

	// IdvAttempts returns the current persisted attempt counter.
	IdvAttempts(ctx context.Context, id uuid.UUID) (int, error)
}
