package sso_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idport/internal/idv/models"
	"idport/internal/sso"
)

var signingKey = []byte("test-signing-key-with-enough-length")

func confirmedSession() *models.Session {
	params := models.ProfileParams{
		FirstName: "Some",
		LastName:  "One",
		SSN:       "666-66-1234",
		DOB:       "19720329",
		Address1:  "123 Main St",
		City:      "Somewhere",
		State:     "KS",
		Zipcode:   "66044",
	}
	applicant := models.NewApplicant(params)
	session := models.NewSession()
	session.Update(params, &applicant, true, &models.Resolution{Success: true})
	return session
}

func TestIssueIAL2(t *testing.T) {
	issuer := sso.NewIssuer(signingKey)
	userID := uuid.New()

	token, err := issuer.Issue(userID, "https://sp.example.com", confirmedSession())
	require.NoError(t, err)

	claims, err := issuer.Verify(token)
	require.NoError(t, err)

	assert.Equal(t, sso.IAL2, claims.IAL)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.Equal(t, "Some", claims.GivenName)
	assert.Equal(t, "One", claims.FamilyName)
	assert.Equal(t, "666661234", claims.SSN)
	assert.Equal(t, "1972-03-29", claims.Birthdate)
	assert.Equal(t, "123 Main St, Somewhere, KS 66044", claims.Address)
	assert.Contains(t, claims.Audience, "https://sp.example.com")
}

func TestIssueIAL1WithoutConfirmedProfile(t *testing.T) {
	issuer := sso.NewIssuer(signingKey)

	cases := []struct {
		name    string
		session *models.Session
	}{
		{"nil session", nil},
		{"empty session", models.NewSession()},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			token, err := issuer.Issue(uuid.New(), "https://sp.example.com", tc.session)
			require.NoError(t, err)

			claims, err := issuer.Verify(token)
			require.NoError(t, err)
			assert.Equal(t, sso.IAL1, claims.IAL)
			assert.Empty(t, claims.GivenName)
			assert.Empty(t, claims.SSN)
		})
	}
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	issuer := sso.NewIssuer(signingKey)
	token, err := issuer.Issue(uuid.New(), "https://sp.example.com", nil)
	require.NoError(t, err)

	other := sso.NewIssuer([]byte("a-completely-different-signing-key"))
	_, err = other.Verify(token)
	assert.Error(t, err)

	_, err = issuer.Verify(token + "x")
	assert.Error(t, err)
}

func TestAssertionExpiry(t *testing.T) {
	issuer := sso.NewIssuer(signingKey, sso.WithTTL(time.Minute))
	token, err := issuer.Issue(uuid.New(), "https://sp.example.com", nil)
	require.NoError(t, err)

	claims, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Minute), claims.ExpiresAt.Time, 5*time.Second)
}
