// Package form applies structural validation to raw proofing input before any
// vendor call is made. Validation is a pure function of its input: it never
// consults the vendor and never touches the attempt counter, so structural
// failures are free retries.
package form

import (
	"regexp"

	"idport/internal/idv/models"
)

var (
	// ssnPattern accepts nine digits with optional dashes in the usual
	// 3-2-4 grouping.
	ssnPattern = regexp.MustCompile(`^\d{3}-?\d{2}-?\d{4}$`)

	// zipPattern accepts five digits with an optional plus-four extension.
	zipPattern = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
)

// Error messages surfaced per field. Kept as package constants so handler and
// step tests can assert against them.
const (
	MsgRequired      = "This field is required."
	MsgSSNFormat     = "The SSN entered does not match the required format."
	MsgZipcodeFormat = "The ZIP code entered does not match the required format."
	MsgDOBFormat     = "The date of birth entered is not a valid date."
	MsgStateFormat   = "The state entered is not a valid two-letter abbreviation."
)

var statePattern = regexp.MustCompile(`^[A-Za-z]{2}$`)

// requiredFields lists field name and accessor for the non-empty checks, in
// the order errors should be reported.
var requiredFields = []struct {
	name string
	get  func(models.ProfileParams) string
}{
	{"first_name", func(p models.ProfileParams) string { return p.FirstName }},
	{"last_name", func(p models.ProfileParams) string { return p.LastName }},
	{"ssn", func(p models.ProfileParams) string { return p.SSN }},
	{"dob", func(p models.ProfileParams) string { return p.DOB }},
	{"address1", func(p models.ProfileParams) string { return p.Address1 }},
	{"city", func(p models.ProfileParams) string { return p.City }},
	{"state", func(p models.ProfileParams) string { return p.State }},
	{"zipcode", func(p models.ProfileParams) string { return p.Zipcode }},
}

// Validate applies the structural rules to raw params. It returns a mapping
// from field name to one or more error messages; an empty map means the
// params may proceed to the vendor.
func Validate(p models.ProfileParams) map[string][]string {
	errs := map[string][]string{}

	for _, f := range requiredFields {
		if f.get(p) == "" {
			errs[f.name] = append(errs[f.name], MsgRequired)
		}
	}

	if p.SSN != "" && !ssnPattern.MatchString(p.SSN) {
		errs["ssn"] = append(errs["ssn"], MsgSSNFormat)
	}
	if p.Zipcode != "" && !zipPattern.MatchString(p.Zipcode) {
		errs["zipcode"] = append(errs["zipcode"], MsgZipcodeFormat)
	}
	if p.PrevZipcode != "" && !zipPattern.MatchString(p.PrevZipcode) {
		errs["prev_zipcode"] = append(errs["prev_zipcode"], MsgZipcodeFormat)
	}
	if p.State != "" && !statePattern.MatchString(p.State) {
		errs["state"] = append(errs["state"], MsgStateFormat)
	}
	if p.DOB != "" {
		if a := models.NewApplicant(models.ProfileParams{DOB: p.DOB}); a.DOB.IsZero() {
			errs["dob"] = append(errs["dob"], MsgDOBFormat)
		}
	}

	return errs
}

// Valid reports whether params pass structural validation.
func Valid(p models.ProfileParams) bool {
	return len(Validate(p)) == 0
}
