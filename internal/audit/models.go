package audit

import "time"

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out. PII never belongs in
// an event; use masked values (see pkg/privacy) where context is needed.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	UserID    string    `json:"user_id"`
	Action    Action    `json:"action"`
	Decision  string    `json:"decision,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
}

// Action identifies what happened.
type Action string

const (
	ActionIdvSubmitted         Action = "idv_submitted"
	ActionIdvPassed            Action = "idv_passed"
	ActionIdvFailed            Action = "idv_failed"
	ActionIdvVendorUnavailable Action = "idv_vendor_unavailable"
	ActionIdvAttemptsExceeded  Action = "idv_attempts_exceeded"
	ActionMFAEnrolled          Action = "mfa_enrolled"
	ActionBackupCodesIssued    Action = "backup_codes_issued"
	ActionNewDeviceSignIn      Action = "new_device_sign_in"
	ActionAssertionIssued      Action = "assertion_issued"
)
