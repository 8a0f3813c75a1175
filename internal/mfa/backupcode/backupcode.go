// Package backupcode issues and verifies single-use recovery codes. Codes are
// shown to the user exactly once at generation time; only bcrypt hashes are
// persisted, so a leaked database cannot be replayed.
package backupcode

import (
	"context"
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	dErrors "idport/pkg/domain-errors"
)

const (
	// SetSize is how many codes a regeneration issues.
	SetSize = 10

	// codeBytes of entropy per code, rendered as base32 without padding.
	codeBytes = 10

	groupLen = 4
)

var codeEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// StoredCode is one persisted hash with its usage state.
type StoredCode struct {
	ID       int64
	CodeHash string
	Used     bool
}

// Store is the persistence port for backup code hashes. Replace atomically
// swaps the user's full code set; MarkUsed burns one code.
type Store interface {
	Replace(ctx context.Context, userID uuid.UUID, hashes []string) error
	ListUnused(ctx context.Context, userID uuid.UUID) ([]StoredCode, error)
	MarkUsed(ctx context.Context, codeID int64) error
}

// Generator creates and verifies backup code sets.
type Generator struct {
	store Store
	cost  int
}

// Option configures the Generator.
type Option func(*Generator)

// WithCost overrides the bcrypt cost. Tests use bcrypt.MinCost.
func WithCost(cost int) Option {
	return func(g *Generator) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			g.cost = cost
		}
	}
}

// New creates a Generator over the given store.
func New(store Store, opts ...Option) *Generator {
	g := &Generator{store: store, cost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate issues a fresh set of codes for the user, replacing any existing
// set. The plaintext codes are returned once and never stored.
func (g *Generator) Generate(ctx context.Context, userID uuid.UUID) ([]string, error) {
	codes := make([]string, 0, SetSize)
	hashes := make([]string, 0, SetSize)

	for i := 0; i < SetSize; i++ {
		code, err := newCode()
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate backup code")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(normalize(code)), g.cost)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash backup code")
		}
		codes = append(codes, code)
		hashes = append(hashes, string(hash))
	}

	if err := g.store.Replace(ctx, userID, hashes); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store backup codes")
	}
	return codes, nil
}

// Verify checks a submitted code against the user's unused set and burns it
// on match. A code can only ever succeed once.
func (g *Generator) Verify(ctx context.Context, userID uuid.UUID, submitted string) (bool, error) {
	stored, err := g.store.ListUnused(ctx, userID)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load backup codes")
	}

	needle := []byte(normalize(submitted))
	for _, sc := range stored {
		if bcrypt.CompareHashAndPassword([]byte(sc.CodeHash), needle) == nil {
			if err := g.store.MarkUsed(ctx, sc.ID); err != nil {
				return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to burn backup code")
			}
			return true, nil
		}
	}
	return false, nil
}

// Remaining reports how many unused codes the user holds.
func (g *Generator) Remaining(ctx context.Context, userID uuid.UUID) (int, error) {
	stored, err := g.store.ListUnused(ctx, userID)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load backup codes")
	}
	return len(stored), nil
}

// newCode renders random bytes as base32 in dash-separated groups, e.g.
// "K7ZT-Q2MA-9XWD-3FGH".
func newCode() (string, error) {
	raw := make([]byte, codeBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	encoded := codeEncoding.EncodeToString(raw)

	var b strings.Builder
	for i, r := range encoded {
		if i > 0 && i%groupLen == 0 {
			b.WriteByte('-')
		}
		b.WriteRune(r)
	}
	return b.String(), nil
}

// normalize makes verification forgiving of case and grouping dashes.
func normalize(code string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(code), "-", ""))
}
