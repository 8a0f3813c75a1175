package sessionstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idport/internal/idv/models"
	"idport/internal/idv/sessionstore"
	dErrors "idport/pkg/domain-errors"
)

func snapshotFixture() models.SessionSnapshot {
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
	return models.SessionSnapshot{
		Params:              params,
		Applicant:           &applicant,
		ProfileConfirmation: true,
		Resolution: &models.Resolution{
			Success: true,
			Reasons: []string{"Everything looks good"},
		},
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := sessionstore.NewMemoryStore(time.Minute)
	userID := uuid.New()

	_, err := store.Load(ctx, userID)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))

	snap := snapshotFixture()
	require.NoError(t, store.Save(ctx, userID, snap))

	loaded, err := store.Load(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, snap.Params, loaded.Params)
	assert.True(t, loaded.ProfileConfirmation)
	require.NotNil(t, loaded.Resolution)
	assert.True(t, loaded.Resolution.Success)

	require.NoError(t, store.Delete(ctx, userID))
	_, err = store.Load(ctx, userID)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := sessionstore.NewMemoryStore(10 * time.Millisecond)
	userID := uuid.New()

	require.NoError(t, store.Save(ctx, userID, snapshotFixture()))
	time.Sleep(25 * time.Millisecond)

	_, err := store.Load(ctx, userID)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestSessionRestoreFromSnapshot(t *testing.T) {
	ctx := context.Background()
	store := sessionstore.NewMemoryStore(time.Minute)
	userID := uuid.New()

	snap := snapshotFixture()
	require.NoError(t, store.Save(ctx, userID, snap))

	loaded, err := store.Load(ctx, userID)
	require.NoError(t, err)

	session := models.NewSession()
	session.Restore(loaded)
	assert.True(t, session.ProfileConfirmation())
	require.NotNil(t, session.Applicant())
	assert.Equal(t, "666661234", session.Applicant().SSN)
}
