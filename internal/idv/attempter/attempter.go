// Package attempter counts and rate limits proofing submissions per user.
//
// The counter is persisted against the user entity and is monotonically
// increasing: it is never decremented, only compared against the configured
// maximum to derive "exceeded" status. Structural validation failures never
// reach this package; only submissions that proceed to the vendor stage are
// counted.
package attempter

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	dErrors "idport/pkg/domain-errors"
)

// DefaultMaxAttempts matches the proofing flow's production lockout budget.
const DefaultMaxAttempts = 3

// Store is the subset of the user store the attempter needs. Increment must
// be atomic (increment-and-read) so concurrent duplicate submissions cannot
// lose updates.
type Store interface {
	IncrementIdvAttempts(ctx context.Context, id uuid.UUID) (int, error)
	IdvAttempts(ctx context.Context, id uuid.UUID) (int, error)
}

// Attempter decides whether a user may keep submitting proofing attempts.
type Attempter struct {
	store       Store
	maxAttempts int
	logger      *slog.Logger
}

// Option configures the Attempter.
type Option func(*Attempter)

// WithMaxAttempts overrides the attempt budget.
func WithMaxAttempts(n int) Option {
	return func(a *Attempter) {
		if n > 0 {
			a.maxAttempts = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Attempter) {
		a.logger = l
	}
}

// New creates an Attempter over the given store.
func New(store Store, opts ...Option) *Attempter {
	a := &Attempter{
		store:       store,
		maxAttempts: DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Exceeded reports whether the user's persisted attempt count has reached the
// configured maximum. It has no side effects and is stable between submits.
func (a *Attempter) Exceeded(ctx context.Context, userID uuid.UUID) (bool, error) {
	count, err := a.store.IdvAttempts(ctx, userID)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read idv attempts")
	}
	return count >= a.maxAttempts, nil
}

// Increment records one vendor-stage submission and returns whether the
// budget is now exceeded. It is invoked exactly once per submit call that
// reaches the vendor stage, regardless of the vendor outcome.
func (a *Attempter) Increment(ctx context.Context, userID uuid.UUID) (exceeded bool, err error) {
	count, err := a.store.IncrementIdvAttempts(ctx, userID)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to increment idv attempts")
	}

	exceeded = count >= a.maxAttempts
	if exceeded && a.logger != nil {
		a.logger.Warn("idv attempt budget exhausted",
			"user_id", userID.String(),
			"attempts", count,
			"max_attempts", a.maxAttempts,
		)
	}
	return exceeded, nil
}

// MaxAttempts exposes the configured budget for handlers that report
// remaining attempts.
func (a *Attempter) MaxAttempts() int {
	return a.maxAttempts
}

// Remaining returns how many vendor-stage submissions the user has left.
func (a *Attempter) Remaining(ctx context.Context, userID uuid.UUID) (int, error) {
	count, err := a.store.IdvAttempts(ctx, userID)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read idv attempts")
	}
	remaining := a.maxAttempts - count
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}
