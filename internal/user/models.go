package user

import (
	"time"

	"github.com/google/uuid"
)

// User is the account entity. The IdV attempt counter lives here because the
// proofing flow rate limits per user and the count must survive the session.
type User struct {
	ID                   uuid.UUID
	Email                string
	Phone                string
	IdvAttempts          int
	TOTPSecret           string
	MFAEnabled           bool
	PersonalKeyIssuedAt  *time.Time
	PasswordResetPending bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// TwoFactorEnabled reports whether the user has completed MFA setup.
func (u *User) TwoFactorEnabled() bool {
	return u.MFAEnabled
}

// PersonalKeyConfigured reports whether a personal key has ever been issued.
func (u *User) PersonalKeyConfigured() bool {
	return u.PersonalKeyIssuedAt != nil
}
