package models

// ReasonCode is a tagged vendor rejection reason. The vendor adapter maps
// free-text vendor reasons onto this enum so the orchestrator never inspects
// strings to decide which form field to blame.
type ReasonCode string

const (
	ReasonSSNSuspicious  ReasonCode = "ssn_suspicious"
	ReasonNameSuspicious ReasonCode = "name_suspicious"
	ReasonZipSuspicious  ReasonCode = "zip_suspicious"
)

// Resolution is the vendor's adjudication for one applicant submission.
// Reasons carries the vendor's human-readable explanations in order. Codes is
// empty for a pass; for a rejection the first code is the dominant reason.
type Resolution struct {
	Success bool
	Reasons []string
	Codes   []ReasonCode
}

// DominantCode returns the reason code that decides which field is surfaced
// to the user. Vendors return a single dominant reason per rejection.
func (r *Resolution) DominantCode() (ReasonCode, bool) {
	if r == nil || len(r.Codes) == 0 {
		return "", false
	}
	return r.Codes[0], true
}
