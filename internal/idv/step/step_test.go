package step_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"idport/internal/audit"
	"idport/internal/idv/attempter"
	"idport/internal/idv/form"
	"idport/internal/idv/models"
	"idport/internal/idv/proofer"
	"idport/internal/idv/step"
	"idport/internal/idv/step/mocks"
	"idport/internal/user"
	dErrors "idport/pkg/domain-errors"
)

type StepSuite struct {
	suite.Suite

	ctx     context.Context
	users   *user.MemoryStore
	events  *audit.MemoryStore
	userID  uuid.UUID
	session *models.Session
}

func TestStepSuite(t *testing.T) {
	suite.Run(t, new(StepSuite))
}

func (s *StepSuite) SetupTest() {
	s.ctx = context.Background()
	s.users = user.NewMemoryStore()
	s.events = audit.NewMemoryStore()
	s.session = models.NewSession()

	u := &user.User{ID: uuid.New(), Email: "proofing@example.com"}
	s.Require().NoError(s.users.Create(s.ctx, u))
	s.userID = u.ID
}

func (s *StepSuite) newStep(p proofer.Proofer, opts ...step.Option) *step.Step {
	counter := attempter.New(s.users)
	opts = append([]step.Option{
		step.WithAuditPublisher(audit.NewPublisher(s.events)),
	}, opts...)
	return step.New(p, counter, opts...)
}

func validParams() models.ProfileParams {
	return models.ProfileParams{
		FirstName: "Some",
		LastName:  "One",
		SSN:       "666-66-1234",
		DOB:       "19720329",
		Address1:  "123 Main St",
		City:      "Somewhere",
		State:     "KS",
		Zipcode:   "66044",
	}
}

func (s *StepSuite) attempts() int {
	count, err := s.users.IdvAttempts(s.ctx, s.userID)
	s.Require().NoError(err)
	return count
}

func (s *StepSuite) TestSubmitPass() {
	st := s.newStep(proofer.MockProofer{})

	result, err := st.Submit(s.ctx, s.userID, s.session, validParams())
	s.Require().NoError(err)

	s.True(result.Success)
	s.Empty(result.Errors)
	s.Equal([]string{proofer.ReasonAllGood}, result.Extra.Vendor.Reasons)
	s.False(result.Extra.IdvAttemptsExceeded)

	s.Equal(1, s.attempts())
	s.True(s.session.ProfileConfirmation())
	s.Require().NotNil(s.session.Applicant())
	s.Equal("666661234", s.session.Applicant().SSN)
	s.Require().NotNil(s.session.Resolution())
	s.True(s.session.Resolution().Success)
}

func (s *StepSuite) TestSubmitVendorRejections() {
	cases := []struct {
		name    string
		mutate  func(*models.ProfileParams)
		field   string
		message string
		reason  string
	}{
		{
			name:    "suspicious ssn",
			mutate:  func(p *models.ProfileParams) { p.SSN = "666-66-6666" },
			field:   "ssn",
			message: step.MsgUnverifiedSSN,
			reason:  proofer.ReasonSSNSuspicious,
		},
		{
			name:    "suspicious first name",
			mutate:  func(p *models.ProfileParams) { p.FirstName = "Bad" },
			field:   "first_name",
			message: step.MsgUnverifiedFirstName,
			reason:  proofer.ReasonNameSuspicious,
		},
		{
			name:    "suspicious zipcode",
			mutate:  func(p *models.ProfileParams) { p.Zipcode = "00000" },
			field:   "zipcode",
			message: step.MsgUnverifiedZipcode,
			reason:  proofer.ReasonZipSuspicious,
		},
		{
			name: "suspicious previous zipcode",
			mutate: func(p *models.ProfileParams) {
				p.PrevAddress = "456 Old Rd"
				p.PrevCity = "Elsewhere"
				p.PrevState = "KS"
				p.PrevZipcode = "00000"
			},
			field:   "zipcode",
			message: step.MsgUnverifiedZipcode,
			reason:  proofer.ReasonZipSuspicious,
		},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			s.SetupTest()
			st := s.newStep(proofer.MockProofer{})

			params := validParams()
			tc.mutate(&params)
			before := s.attempts()

			result, err := st.Submit(s.ctx, s.userID, s.session, params)
			s.Require().NoError(err)

			s.False(result.Success)
			s.Equal(map[string][]string{tc.field: {tc.message}}, result.Errors)
			s.Equal([]string{tc.reason}, result.Extra.Vendor.Reasons)

			s.Equal(before+1, s.attempts())
			s.False(s.session.ProfileConfirmation())
			s.NotNil(s.session.Applicant())
			s.Require().NotNil(s.session.Resolution())
			s.False(s.session.Resolution().Success)
		})
	}
}

func (s *StepSuite) TestSubmitStructurallyInvalid() {
	st := s.newStep(proofer.MockProofer{})

	params := validParams()
	params.SSN = "6666"

	result, err := st.Submit(s.ctx, s.userID, s.session, params)
	s.Require().NoError(err)

	s.False(result.Success)
	s.Equal([]string{form.MsgSSNFormat}, result.Errors["ssn"])
	s.Nil(result.Extra.Vendor.Reasons, "no vendor call is made for invalid input")

	s.Equal(0, s.attempts(), "structural failures are free retries")
	s.False(s.session.ProfileConfirmation())
	s.Nil(s.session.Applicant())
	s.Nil(s.session.Resolution())
	s.Equal(params, s.session.Params())
}

func (s *StepSuite) TestSubmitMissingFields() {
	st := s.newStep(proofer.MockProofer{})

	result, err := st.Submit(s.ctx, s.userID, s.session, models.ProfileParams{})
	s.Require().NoError(err)

	s.False(result.Success)
	for _, field := range []string{"first_name", "last_name", "ssn", "dob", "address1", "city", "state", "zipcode"} {
		s.Contains(result.Errors, field)
	}
	s.Equal(0, s.attempts())
}

func (s *StepSuite) TestSubmitVendorUnavailable() {
	st := s.newStep(proofer.MockProofer{
		Err: proofer.NewVendorError(proofer.ErrorOutage, "vendor down for maintenance", nil),
	})

	params := validParams()
	result, err := st.Submit(s.ctx, s.userID, s.session, params)

	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
	s.Zero(result)

	s.Equal(0, s.attempts(), "no adjudication was received")
	s.False(s.session.ProfileConfirmation())
	s.Nil(s.session.Resolution())
	s.Equal(params, s.session.Params())
}

func (s *StepSuite) TestSubmitVendorTimeout() {
	st := s.newStep(
		proofer.MockProofer{Latency: time.Second},
		step.WithVendorTimeout(5*time.Millisecond),
	)

	_, err := st.Submit(s.ctx, s.userID, s.session, validParams())

	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
	s.Equal(proofer.ErrorTimeout, proofer.GetCategory(err))
	s.Equal(0, s.attempts())
}

func (s *StepSuite) TestAttemptBudget() {
	st := s.newStep(proofer.MockProofer{})

	// Burn through the budget with repeated rejections.
	params := validParams()
	params.SSN = "666-66-6666"

	for i := 1; i < attempter.DefaultMaxAttempts; i++ {
		result, err := st.Submit(s.ctx, s.userID, s.session, params)
		s.Require().NoError(err)
		s.False(result.Extra.IdvAttemptsExceeded)
	}

	result, err := st.Submit(s.ctx, s.userID, s.session, params)
	s.Require().NoError(err)
	s.True(result.Extra.IdvAttemptsExceeded)

	exceeded, err := st.AttemptsExceeded(s.ctx, s.userID)
	s.Require().NoError(err)
	s.True(exceeded)
}

func (s *StepSuite) TestPassOnFinalAttemptStillReportsExceeded() {
	st := s.newStep(proofer.MockProofer{})

	params := validParams()
	params.SSN = "666-66-6666"
	for i := 1; i < attempter.DefaultMaxAttempts; i++ {
		_, err := st.Submit(s.ctx, s.userID, s.session, params)
		s.Require().NoError(err)
	}

	result, err := st.Submit(s.ctx, s.userID, s.session, validParams())
	s.Require().NoError(err)

	s.True(result.Success)
	s.True(result.Extra.IdvAttemptsExceeded)
	s.True(s.session.ProfileConfirmation())
}

func (s *StepSuite) TestCounterFailureSurfaces() {
	ctrl := gomock.NewController(s.T())
	counter := mocks.NewMockAttemptCounter(ctrl)
	counter.EXPECT().
		Increment(gomock.Any(), s.userID).
		Return(false, errors.New("connection reset"))

	st := step.New(proofer.MockProofer{}, counter)

	_, err := st.Submit(s.ctx, s.userID, s.session, validParams())
	s.Error(err)
}

func (s *StepSuite) TestExceededReadFailureSurfaces() {
	ctrl := gomock.NewController(s.T())
	counter := mocks.NewMockAttemptCounter(ctrl)
	counter.EXPECT().
		Exceeded(gomock.Any(), s.userID).
		Return(false, errors.New("connection reset"))

	st := step.New(proofer.MockProofer{}, counter)

	params := validParams()
	params.SSN = "6666"
	_, err := st.Submit(s.ctx, s.userID, s.session, params)
	s.Error(err)
}

func (s *StepSuite) TestAuditTrail() {
	st := s.newStep(proofer.MockProofer{})

	_, err := st.Submit(s.ctx, s.userID, s.session, validParams())
	s.Require().NoError(err)

	events, err := s.events.ListByUser(s.ctx, s.userID.String())
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.Equal(audit.ActionIdvSubmitted, events[0].Action)
	s.Equal(audit.ActionIdvPassed, events[1].Action)
}
