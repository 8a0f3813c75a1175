// Package step orchestrates one profile proofing submission end to end:
// structural validation, applicant construction, the vendor call, attempt
// accounting, and the session update. All outcomes funnel into a uniform
// Result except vendor unavailability, which is surfaced as a domain error so
// callers can distinguish "try again later" from "your identity was rejected".
package step

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"idport/internal/audit"
	"idport/internal/idv/form"
	"idport/internal/idv/metrics"
	"idport/internal/idv/models"
	"idport/internal/idv/proofer"
	"idport/internal/platform/middleware"
	dErrors "idport/pkg/domain-errors"
)

// DefaultVendorTimeout bounds a single proofing vendor call.
const DefaultVendorTimeout = 10 * time.Second

// Field error messages surfaced for vendor rejections.
const (
	MsgUnverifiedSSN       = "Unverified SSN."
	MsgUnverifiedFirstName = "Unverified first name."
	MsgUnverifiedZipcode   = "Unverified ZIP code."
)

// reasonFields maps a vendor reason code onto the form field it discredits
// and the message shown for it. Codes the table does not know are dropped by
// the vendor adapter before they reach here.
var reasonFields = map[models.ReasonCode]struct {
	field   string
	message string
}{
	models.ReasonSSNSuspicious:  {"ssn", MsgUnverifiedSSN},
	models.ReasonNameSuspicious: {"first_name", MsgUnverifiedFirstName},
	models.ReasonZipSuspicious:  {"zipcode", MsgUnverifiedZipcode},
}

//go:generate mockgen -source=step.go -destination=mocks/mocks.go -package=mocks AttemptCounter

// AttemptCounter is the attempt-budget port. Increment is invoked exactly
// once per submission that receives a vendor adjudication; Exceeded and
// Remaining are side-effect-free reads.
type AttemptCounter interface {
	Increment(ctx context.Context, userID uuid.UUID) (bool, error)
	Exceeded(ctx context.Context, userID uuid.UUID) (bool, error)
	Remaining(ctx context.Context, userID uuid.UUID) (int, error)
}

// Step runs the profile proofing state machine. It is stateless across users;
// per-user state lives in the Session passed to Submit.
type Step struct {
	proofer       proofer.Proofer
	attempts      AttemptCounter
	vendorTimeout time.Duration
	logger        *slog.Logger
	metrics       *metrics.Metrics
	auditor       *audit.Publisher
}

// Option configures the Step.
type Option func(*Step)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Step) { s.logger = l }
}

// WithMetrics attaches proofing metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Step) { s.metrics = m }
}

// WithAuditPublisher attaches the security audit sink.
func WithAuditPublisher(p *audit.Publisher) Option {
	return func(s *Step) { s.auditor = p }
}

// WithVendorTimeout overrides the per-call vendor deadline.
func WithVendorTimeout(d time.Duration) Option {
	return func(s *Step) {
		if d > 0 {
			s.vendorTimeout = d
		}
	}
}

// New creates a Step over the given vendor and attempt counter.
func New(p proofer.Proofer, attempts AttemptCounter, opts ...Option) *Step {
	s := &Step{
		proofer:       p,
		attempts:      attempts,
		vendorTimeout: DefaultVendorTimeout,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit runs one proofing submission for the user and updates the session to
// reflect the outcome. The returned Result is uniform across validation
// failures, vendor rejections, and passes. A vendor-unavailable condition
// returns a CodeUnavailable domain error instead; the session keeps the
// submitted params but records no adjudication, and the attempt counter does
// not move.
func (s *Step) Submit(ctx context.Context, userID uuid.UUID, session *models.Session, params models.ProfileParams) (models.Result, error) {
	s.emit(ctx, userID, audit.Event{Action: audit.ActionIdvSubmitted})

	if errs := form.Validate(params); len(errs) > 0 {
		session.Update(params, nil, false, nil)
		s.observe(metrics.OutcomeValidationFailed)

		exceeded, err := s.attempts.Exceeded(ctx, userID)
		if err != nil {
			return models.Result{}, err
		}
		return models.NewResult(false, errs, models.Extra{
			IdvAttemptsExceeded: exceeded,
		}), nil
	}

	applicant := models.NewApplicant(params)

	resolution, err := s.resolve(ctx, applicant)
	if err != nil {
		if proofer.IsUnavailable(err) {
			session.Update(params, &applicant, false, nil)
			s.observe(metrics.OutcomeVendorUnavailable)
			s.emit(ctx, userID, audit.Event{
				Action: audit.ActionIdvVendorUnavailable,
				Reason: string(proofer.GetCategory(err)),
			})
			s.logger.Warn("proofing vendor unavailable",
				"user_id", userID.String(),
				"category", proofer.GetCategory(err),
				"error", err,
			)
			return models.Result{}, dErrors.Wrap(err, dErrors.CodeUnavailable,
				"identity verification is temporarily unavailable")
		}
		return models.Result{}, dErrors.Wrap(err, dErrors.CodeInternal, "vendor resolution failed")
	}

	// An adjudication was received: this submission spends an attempt,
	// pass or fail alike.
	exceeded, err := s.attempts.Increment(ctx, userID)
	if err != nil {
		return models.Result{}, err
	}
	if exceeded {
		if s.metrics != nil {
			s.metrics.AttemptsExceeded.Inc()
		}
		s.emit(ctx, userID, audit.Event{Action: audit.ActionIdvAttemptsExceeded})
	}

	extra := models.Extra{
		IdvAttemptsExceeded: exceeded,
		Vendor:              models.VendorExtra{Reasons: resolution.Reasons},
	}

	if resolution.Success {
		session.Update(params, &applicant, true, resolution)
		s.observe(metrics.OutcomeVendorApproved)
		s.emit(ctx, userID, audit.Event{
			Action:   audit.ActionIdvPassed,
			Decision: "approved",
		})
		return models.NewResult(true, nil, extra), nil
	}

	session.Update(params, &applicant, false, resolution)
	s.observe(metrics.OutcomeVendorRejected)

	errs := map[string][]string{}
	if code, ok := resolution.DominantCode(); ok {
		if rf, known := reasonFields[code]; known {
			errs[rf.field] = append(errs[rf.field], rf.message)
		}
	}
	s.emit(ctx, userID, audit.Event{
		Action:   audit.ActionIdvFailed,
		Decision: "rejected",
		Reason:   firstReason(resolution.Reasons),
	})
	return models.NewResult(false, errs, extra), nil
}

// AttemptsExceeded reports whether the user has used up their submission
// budget. It never mutates the counter.
func (s *Step) AttemptsExceeded(ctx context.Context, userID uuid.UUID) (bool, error) {
	return s.attempts.Exceeded(ctx, userID)
}

// AttemptsRemaining reports how many vendor-stage submissions the user has
// left.
func (s *Step) AttemptsRemaining(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.attempts.Remaining(ctx, userID)
}

func (s *Step) resolve(ctx context.Context, applicant models.Applicant) (*models.Resolution, error) {
	ctx, cancel := context.WithTimeout(ctx, s.vendorTimeout)
	defer cancel()

	start := time.Now()
	resolution, err := s.proofer.Resolve(ctx, applicant)
	if s.metrics != nil {
		s.metrics.ObserveVendorLatency(time.Since(start))
	}
	return resolution, err
}

func (s *Step) observe(outcome string) {
	if s.metrics != nil {
		s.metrics.ObserveSubmission(outcome)
	}
}

// emit records an audit event, filling in the user and request context.
// Audit failures are logged but never fail the submission.
func (s *Step) emit(ctx context.Context, userID uuid.UUID, event audit.Event) {
	if s.auditor == nil {
		return
	}
	event.UserID = userID.String()
	event.RequestID = middleware.GetRequestID(ctx)
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.Warn("audit emit failed", "action", event.Action, "error", err)
	}
}

func firstReason(reasons []string) string {
	if len(reasons) == 0 {
		return ""
	}
	return reasons[0]
}
