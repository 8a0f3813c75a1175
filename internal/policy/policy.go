// Package policy holds the pure decision rules for post-authentication
// navigation and credential setup. Every policy is a function of explicit
// inputs so the rules are trivially testable and carry no I/O.
package policy

import "idport/internal/user"

// SignInContext is the slice of session state the navigation policies read.
type SignInContext struct {
	// NewUser is true during the session in which the account was created.
	NewUser bool

	// ServiceProviderURL is the relying party's return URL when the sign-in
	// was initiated by an SP, empty for direct sign-ins.
	ServiceProviderURL string

	// PersonalKeyAcknowledged is true once the user has confirmed they
	// stored their personal key during this session.
	PersonalKeyAcknowledged bool
}

// MFAPolicy decides whether a user still needs to set up a second factor.
type MFAPolicy struct{}

// TwoFactorEnabled reports whether the user has any second factor configured.
func (MFAPolicy) TwoFactorEnabled(u *user.User) bool {
	return u != nil && u.TwoFactorEnabled()
}

// PersonalKeyPolicy decides whether a user holds a usable personal key.
type PersonalKeyPolicy struct{}

// Configured reports whether a personal key has been issued to the user.
func (PersonalKeyPolicy) Configured(u *user.User) bool {
	return u != nil && u.PersonalKeyConfigured()
}

// PersonalKeyForNewUserPolicy decides whether to interrupt a fresh account's
// first session with the personal key screen.
type PersonalKeyForNewUserPolicy struct{}

// ShowPersonalKeyAfterInitialSetup reports whether the personal key screen
// must be shown before the user proceeds. Only new users who have a key
// issued but have not acknowledged it are interrupted.
func (PersonalKeyForNewUserPolicy) ShowPersonalKeyAfterInitialSetup(u *user.User, sctx SignInContext) bool {
	if !sctx.NewUser || sctx.PersonalKeyAcknowledged {
		return false
	}
	return (PersonalKeyPolicy{}).Configured(u)
}

// Destination is where a user lands after signing in.
type Destination string

const (
	DestinationTwoFactorOptions  Destination = "two_factor_options"
	DestinationPersonalKey       Destination = "personal_key"
	DestinationReactivateAccount Destination = "reactivate_account"
	DestinationServiceProvider   Destination = "service_provider"
	DestinationAccount           Destination = "account"
)

// PostLoginDestination resolves the landing page for a just-authenticated
// user. Checks are ordered: missing MFA always wins, then a pending password
// reset, then the new-user personal key interruption, then the SP handoff.
func PostLoginDestination(u *user.User, sctx SignInContext) Destination {
	if !(MFAPolicy{}).TwoFactorEnabled(u) {
		return DestinationTwoFactorOptions
	}
	if u != nil && u.PasswordResetPending {
		return DestinationReactivateAccount
	}
	if (PersonalKeyForNewUserPolicy{}).ShowPersonalKeyAfterInitialSetup(u, sctx) {
		return DestinationPersonalKey
	}
	if sctx.ServiceProviderURL != "" {
		return DestinationServiceProvider
	}
	return DestinationAccount
}
