package models

// VendorExtra carries vendor context alongside a Result. Reasons is nil when
// structural validation failed before any vendor call was made.
type VendorExtra struct {
	Reasons []string `json:"reasons"`
}

// Extra is the non-field payload of a Result.
type Extra struct {
	IdvAttemptsExceeded bool        `json:"idv_attempts_exceeded"`
	Vendor              VendorExtra `json:"vendor"`
}

// Result is the uniform outcome of a profile submission. Errors maps field
// names to ordered error messages and is empty on success.
type Result struct {
	Success bool                `json:"success"`
	Errors  map[string][]string `json:"errors"`
	Extra   Extra               `json:"extra"`
}

// NewResult builds a Result, normalizing a nil error map to an empty one so
// callers can always range over Errors.
func NewResult(success bool, errs map[string][]string, extra Extra) Result {
	if errs == nil {
		errs = map[string][]string{}
	}
	return Result{Success: success, Errors: errs, Extra: extra}
}
