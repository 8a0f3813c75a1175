package models

import (
	"strings"
	"time"
)

// ProfileParams is the raw field mapping collected from the proofing form.
// All values are string-typed; optional fields may be absent or empty.
type ProfileParams struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	SSN         string `json:"ssn"`
	DOB         string `json:"dob"`
	Address1    string `json:"address1"`
	Address2    string `json:"address2"`
	City        string `json:"city"`
	State       string `json:"state"`
	Zipcode     string `json:"zipcode"`
	PrevAddress string `json:"prev_address"`
	PrevCity    string `json:"prev_city"`
	PrevState   string `json:"prev_state"`
	PrevZipcode string `json:"prev_zipcode"`
}

// Applicant is the canonical PII record submitted to the proofing vendor.
// It is immutable once built for a given submission and constructed fresh per
// submit call.
type Applicant struct {
	FirstName   string
	LastName    string
	SSN         string
	DOB         time.Time
	Address1    string
	Address2    string
	City        string
	State       string
	Zipcode     string
	PrevAddress string
	PrevCity    string
	PrevState   string
	PrevZipcode string
}

// dobLayouts are the accepted date-of-birth input forms, tried in order.
var dobLayouts = []string{"20060102", "2006-01-02", "01/02/2006"}

// NewApplicant normalizes validated raw fields into an Applicant. It trusts
// its input: callers must run the profile form validation first.
func NewApplicant(p ProfileParams) Applicant {
	return Applicant{
		FirstName:   strings.TrimSpace(p.FirstName),
		LastName:    strings.TrimSpace(p.LastName),
		SSN:         normalizeSSN(p.SSN),
		DOB:         parseDOB(p.DOB),
		Address1:    strings.TrimSpace(p.Address1),
		Address2:    strings.TrimSpace(p.Address2),
		City:        strings.TrimSpace(p.City),
		State:       strings.ToUpper(strings.TrimSpace(p.State)),
		Zipcode:     strings.TrimSpace(p.Zipcode),
		PrevAddress: strings.TrimSpace(p.PrevAddress),
		PrevCity:    strings.TrimSpace(p.PrevCity),
		PrevState:   strings.ToUpper(strings.TrimSpace(p.PrevState)),
		PrevZipcode: strings.TrimSpace(p.PrevZipcode),
	}
}

// HasPrevAddress reports whether the applicant supplied a previous address.
func (a Applicant) HasPrevAddress() bool {
	return a.PrevAddress != "" || a.PrevZipcode != ""
}

func normalizeSSN(ssn string) string {
	return strings.ReplaceAll(strings.TrimSpace(ssn), "-", "")
}

func parseDOB(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	for _, layout := range dobLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}
