//go:build integration

package user_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"idport/internal/user"
	dErrors "idport/pkg/domain-errors"
	"idport/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite

	ctx   context.Context
	pg    *containers.PostgresContainer
	store *user.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	pg := containers.NewPostgresContainer(t)
	suite.Run(t, &PostgresStoreSuite{pg: pg})
}

func (s *PostgresStoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = user.NewPostgres(s.pg.DB)
	s.Require().NoError(s.pg.TruncateTables(s.ctx, "users"))
}

func (s *PostgresStoreSuite) newUser(email string) *user.User {
	u := &user.User{ID: uuid.New(), Email: email, Phone: "+15551230000"}
	s.Require().NoError(s.store.Create(s.ctx, u))
	return u
}

func (s *PostgresStoreSuite) TestCreateAndFind() {
	u := s.newUser("proofing@example.com")
	s.False(u.CreatedAt.IsZero())

	byID, err := s.store.FindByID(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Equal(u.Email, byID.Email)
	s.Equal(0, byID.IdvAttempts)

	byEmail, err := s.store.FindByEmail(s.ctx, "PROOFING@example.com")
	s.Require().NoError(err)
	s.Equal(u.ID, byEmail.ID)
}

func (s *PostgresStoreSuite) TestCreateDuplicateEmail() {
	s.newUser("proofing@example.com")

	err := s.store.Create(s.ctx, &user.User{ID: uuid.New(), Email: "proofing@example.com"})
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *PostgresStoreSuite) TestUpdate() {
	u := s.newUser("proofing@example.com")

	issued := time.Now().UTC().Truncate(time.Second)
	u.MFAEnabled = true
	u.TOTPSecret = "JBSWY3DPEHPK3PXP"
	u.PersonalKeyIssuedAt = &issued
	s.Require().NoError(s.store.Update(s.ctx, u))

	got, err := s.store.FindByID(s.ctx, u.ID)
	s.Require().NoError(err)
	s.True(got.MFAEnabled)
	s.Equal("JBSWY3DPEHPK3PXP", got.TOTPSecret)
	s.Require().NotNil(got.PersonalKeyIssuedAt)
	s.WithinDuration(issued, *got.PersonalKeyIssuedAt, time.Second)
}

func (s *PostgresStoreSuite) TestUpdateMissingUser() {
	err := s.store.Update(s.ctx, &user.User{ID: uuid.New(), Email: "ghost@example.com"})
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *PostgresStoreSuite) TestIncrementIdvAttemptsIsAtomic() {
	u := s.newUser("proofing@example.com")

	const submits = 20
	var wg sync.WaitGroup
	wg.Add(submits)
	for i := 0; i < submits; i++ {
		go func() {
			defer wg.Done()
			_, err := s.store.IncrementIdvAttempts(s.ctx, u.ID)
			s.NoError(err)
		}()
	}
	wg.Wait()

	count, err := s.store.IdvAttempts(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Equal(submits, count)
}

func (s *PostgresStoreSuite) TestIncrementUnknownUser() {
	_, err := s.store.IncrementIdvAttempts(s.ctx, uuid.New())
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}
