package proofer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"idport/internal/idv/models"
)

// HTTPProofer submits applicants to a remote proofing vendor over HTTP.
// Latency and availability are the vendor's concern; every call is bounded
// by the configured timeout and failures surface as VendorError, never as a
// negative resolution.
type HTTPProofer struct {
	baseURL string
	client  *http.Client
}

// NewHTTP creates an HTTP-backed proofer. The timeout bounds the whole
// request including body read.
func NewHTTP(baseURL string, timeout time.Duration) *HTTPProofer {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPProofer{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// resolveRequest is the wire form of an applicant submission.
type resolveRequest struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	SSN         string `json:"ssn"`
	DOB         string `json:"dob"`
	Address1    string `json:"address1"`
	Address2    string `json:"address2,omitempty"`
	City        string `json:"city"`
	State       string `json:"state"`
	Zipcode     string `json:"zipcode"`
	PrevAddress string `json:"prev_address,omitempty"`
	PrevZipcode string `json:"prev_zipcode,omitempty"`
}

// resolveResponse is the vendor's wire response. ReasonCodes carries the
// vendor's machine-readable codes; Reasons the display text.
type resolveResponse struct {
	Success     bool     `json:"success"`
	Reasons     []string `json:"reasons"`
	ReasonCodes []string `json:"reason_codes"`
}

// reasonCodeTable maps vendor wire codes onto the tagged enum. Unknown codes
// are dropped rather than guessed so a silent vendor change cannot blame the
// wrong field.
var reasonCodeTable = map[string]models.ReasonCode{
	"ssn.suspicious":  models.ReasonSSNSuspicious,
	"name.suspicious": models.ReasonNameSuspicious,
	"zip.suspicious":  models.ReasonZipSuspicious,
}

func (p *HTTPProofer) Resolve(ctx context.Context, applicant models.Applicant) (*models.Resolution, error) {
	payload := resolveRequest{
		FirstName:   applicant.FirstName,
		LastName:    applicant.LastName,
		SSN:         applicant.SSN,
		DOB:         applicant.DOB.Format("2006-01-02"),
		Address1:    applicant.Address1,
		Address2:    applicant.Address2,
		City:        applicant.City,
		State:       applicant.State,
		Zipcode:     applicant.Zipcode,
		PrevAddress: applicant.PrevAddress,
		PrevZipcode: applicant.PrevZipcode,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, NewVendorError(ErrorInternal, "marshal applicant", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/resolutions", bytes.NewReader(body))
	if err != nil {
		return nil, NewVendorError(ErrorInternal, "build vendor request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return nil, NewVendorError(ErrorTimeout, "vendor call timed out", err)
		}
		return nil, NewVendorError(ErrorOutage, "vendor unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, NewVendorError(ErrorOutage, fmt.Sprintf("vendor returned %d", resp.StatusCode), nil)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, NewVendorError(ErrorBadData, fmt.Sprintf("vendor returned %d", resp.StatusCode), nil)
	}

	var wire resolveResponse
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, NewVendorError(ErrorBadData, "malformed vendor response", err)
	}

	resolution := &models.Resolution{
		Success: wire.Success,
		Reasons: wire.Reasons,
	}
	for _, code := range wire.ReasonCodes {
		if mapped, ok := reasonCodeTable[code]; ok {
			resolution.Codes = append(resolution.Codes, mapped)
		}
	}

	// A rejection the adapter cannot attribute to a field is indistinguishable
	// from a contract change on the vendor side.
	if !wire.Success && len(resolution.Codes) == 0 {
		return nil, NewVendorError(ErrorBadData, "vendor rejection carried no known reason code", nil)
	}

	return resolution, nil
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
