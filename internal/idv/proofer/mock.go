package proofer

import (
	"context"
	"time"

	"idport/internal/idv/models"
)

// MockProofer is the deterministic vendor used in development and tests. It
// mirrors the sandbox vendor's trigger values: SSN 666-66-6666, first name
// "Bad", and ZIP 00000 (on either address) are treated as suspicious. A
// configurable latency mimics real-world calls.
type MockProofer struct {
	Latency time.Duration

	// Err, when set, is returned instead of a resolution. Used to simulate
	// vendor outages.
	Err error
}

const (
	mockSuspiciousSSN  = "666666666"
	mockSuspiciousName = "Bad"
	mockSuspiciousZip  = "00000"
)

func (m MockProofer) Resolve(ctx context.Context, applicant models.Applicant) (*models.Resolution, error) {
	if m.Latency > 0 {
		select {
		case <-time.After(m.Latency):
		case <-ctx.Done():
			return nil, NewVendorError(ErrorTimeout, "vendor call timed out", ctx.Err())
		}
	}

	if m.Err != nil {
		return nil, m.Err
	}

	switch {
	case applicant.SSN == mockSuspiciousSSN:
		return &models.Resolution{
			Success: false,
			Reasons: []string{ReasonSSNSuspicious},
			Codes:   []models.ReasonCode{models.ReasonSSNSuspicious},
		}, nil
	case applicant.FirstName == mockSuspiciousName:
		return &models.Resolution{
			Success: false,
			Reasons: []string{ReasonNameSuspicious},
			Codes:   []models.ReasonCode{models.ReasonNameSuspicious},
		}, nil
	case applicant.Zipcode == mockSuspiciousZip || applicant.PrevZipcode == mockSuspiciousZip:
		return &models.Resolution{
			Success: false,
			Reasons: []string{ReasonZipSuspicious},
			Codes:   []models.ReasonCode{models.ReasonZipSuspicious},
		}, nil
	}

	return &models.Resolution{
		Success: true,
		Reasons: []string{ReasonAllGood},
	}, nil
}
