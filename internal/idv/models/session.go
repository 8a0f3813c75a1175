package models

import "sync"

// Session is the mutable state of one in-progress verification attempt for
// one user. It is owned exclusively by that user's proofing flow and is not
// shared across users. Update replaces all fields atomically so a concurrent
// reader within the process never observes a partial write; if concurrent
// submits occur the last writer wins.
type Session struct {
	mu sync.RWMutex

	params              ProfileParams
	applicant           *Applicant
	profileConfirmation bool
	resolution          *Resolution
}

// NewSession creates an empty session for the start of an IdV flow.
func NewSession() *Session {
	return &Session{}
}

// Update replaces the session state in one step.
func (s *Session) Update(params ProfileParams, applicant *Applicant, confirmed bool, resolution *Resolution) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.params = params
	s.applicant = applicant
	s.profileConfirmation = confirmed
	s.resolution = resolution
}

// Params returns the last-submitted raw fields.
func (s *Session) Params() ProfileParams {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.params
}

// Applicant returns the last-built applicant, or nil before the first
// structurally valid submission.
func (s *Session) Applicant() *Applicant {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.applicant
}

// ProfileConfirmation is true iff the most recent submission both validated
// and was vendor-approved.
func (s *Session) ProfileConfirmation() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profileConfirmation
}

// Resolution returns the last vendor resolution, or nil if none was reached.
func (s *Session) Resolution() *Resolution {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resolution
}

// Snapshot captures the session state for checkpointing.
func (s *Session) Snapshot() SessionSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return SessionSnapshot{
		Params:              s.params,
		Applicant:           s.applicant,
		ProfileConfirmation: s.profileConfirmation,
		Resolution:          s.resolution,
	}
}

// Restore replaces the session state from a checkpoint.
func (s *Session) Restore(snap SessionSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.params = snap.Params
	s.applicant = snap.Applicant
	s.profileConfirmation = snap.ProfileConfirmation
	s.resolution = snap.Resolution
}

// SessionSnapshot is the serializable form of a Session, used by the
// checkpoint store.
type SessionSnapshot struct {
	Params              ProfileParams `json:"params"`
	Applicant           *Applicant    `json:"applicant,omitempty"`
	ProfileConfirmation bool          `json:"profile_confirmation"`
	Resolution          *Resolution   `json:"resolution,omitempty"`
}
