// Package proofer defines the identity-proofing vendor contract and its
// adapters. The vendor is a black box: it either returns an adjudication
// (pass or fail, with reasons) or an error. Vendor unavailability is always
// an error, never a negative Resolution, so an outage can never be mistaken
// for an identity rejection.
package proofer

import (
	"context"

	"idport/internal/idv/models"
)

// Proofer resolves an applicant against the vendor. Implementations must
// honor context cancellation; the orchestrator bounds every call with a
// timeout.
type Proofer interface {
	Resolve(ctx context.Context, applicant models.Applicant) (*models.Resolution, error)
}

// Vendor reason phrases shared by the mock vendor and tests. The production
// adapter maps whatever the vendor sends onto models.ReasonCode; these
// strings ride along for display only.
const (
	ReasonAllGood        = "Everything looks good"
	ReasonSSNSuspicious  = "The SSN was suspicious"
	ReasonNameSuspicious = "The name was suspicious"
	ReasonZipSuspicious  = "The ZIP code was suspicious"
)
