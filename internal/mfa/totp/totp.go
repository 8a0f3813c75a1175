// Package totp handles authenticator-app enrollment and code verification.
package totp

import (
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	dErrors "idport/pkg/domain-errors"
)

// Issuer is the name shown in authenticator apps.
const Issuer = "idport"

// Skew is how many 30 second steps of clock drift verification tolerates in
// each direction.
const Skew = 1

// Enrollment is the material handed to the user during setup. The secret is
// persisted on the user record; the URL feeds the QR code.
type Enrollment struct {
	Secret string
	URL    string
}

// Enroll provisions a new TOTP secret for the account.
func Enroll(accountName string) (*Enrollment, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      Issuer,
		AccountName: accountName,
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to provision totp secret")
	}
	return &Enrollment{
		Secret: key.Secret(),
		URL:    key.URL(),
	}, nil
}

// Verify checks a submitted code against the secret, allowing one step of
// clock drift either way.
func Verify(code, secret string) bool {
	return VerifyAt(code, secret, time.Now())
}

// VerifyAt is Verify with an explicit reference time, for tests.
func VerifyAt(code, secret string, at time.Time) bool {
	ok, err := totp.ValidateCustom(code, secret, at, totp.ValidateOpts{
		Period:    30,
		Skew:      Skew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && ok
}
