// Package sso issues signed identity assertions to relying parties after a
// completed proofing flow.
package sso

import (
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"idport/internal/idv/models"
	dErrors "idport/pkg/domain-errors"
	"idport/pkg/privacy"
)

// Identity assurance levels per the federal profile. IAL2 requires a
// vendor-approved identity resolution; IAL1 is self-asserted.
const (
	IAL1 = "1"
	IAL2 = "2"
)

const issuer = "idport"

// DefaultAssertionTTL bounds how long a relying party may accept an
// assertion.
const DefaultAssertionTTL = 5 * time.Minute

// Claims is the assertion payload. Profile attributes are present only on
// IAL2 assertions.
type Claims struct {
	jwt.RegisteredClaims

	IAL string `json:"ial"`

	GivenName  string `json:"given_name,omitempty"`
	FamilyName string `json:"family_name,omitempty"`
	Birthdate  string `json:"birthdate,omitempty"`
	SSN        string `json:"social_security_number,omitempty"`
	Address    string `json:"address,omitempty"`
}

// Issuer signs identity assertions with a shared HS256 key.
type Issuer struct {
	signingKey []byte
	ttl        time.Duration
	logger     *slog.Logger
}

// Option configures the Issuer.
type Option func(*Issuer)

// WithTTL overrides the assertion lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(i *Issuer) {
		if ttl > 0 {
			i.ttl = ttl
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(i *Issuer) { i.logger = l }
}

// NewIssuer creates an assertion Issuer.
func NewIssuer(signingKey []byte, opts ...Option) *Issuer {
	i := &Issuer{
		signingKey: signingKey,
		ttl:        DefaultAssertionTTL,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Issue signs an assertion for the user toward the given audience. When the
// session carries a confirmed profile the assertion is IAL2 and includes the
// verified attributes; otherwise it is IAL1 with no profile claims.
func (i *Issuer) Issue(userID uuid.UUID, audience string, session *models.Session) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID.String(),
			Audience:  jwt.ClaimStrings{audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
			ID:        uuid.NewString(),
		},
		IAL: IAL1,
	}

	if session != nil && session.ProfileConfirmation() {
		applicant := session.Applicant()
		if applicant == nil {
			return "", dErrors.New(dErrors.CodeInternal, "confirmed session has no applicant")
		}
		claims.IAL = IAL2
		claims.GivenName = applicant.FirstName
		claims.FamilyName = applicant.LastName
		claims.SSN = applicant.SSN
		claims.Address = formatAddress(applicant)
		if !applicant.DOB.IsZero() {
			claims.Birthdate = applicant.DOB.Format("2006-01-02")
		}
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.signingKey)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign assertion")
	}

	i.logger.Info("assertion issued",
		"user_id", userID.String(),
		"audience", audience,
		"ial", claims.IAL,
		"ssn", privacy.MaskSSN(claims.SSN),
	)
	return token, nil
}

// Verify parses and validates an assertion. Used by tests and by relying
// parties that share the key.
func (i *Issuer) Verify(token string) (*Claims, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "unexpected signing method")
		}
		return i.signingKey, nil
	}, jwt.WithIssuer(issuer))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnauthorized, "invalid assertion")
	}
	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid assertion")
	}
	return &claims, nil
}

func formatAddress(a *models.Applicant) string {
	addr := a.Address1
	if a.Address2 != "" {
		addr += " " + a.Address2
	}
	return addr + ", " + a.City + ", " + a.State + " " + a.Zipcode
}
