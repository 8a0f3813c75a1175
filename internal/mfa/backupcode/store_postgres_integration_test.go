//go:build integration

package backupcode_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"idport/internal/mfa/backupcode"
	"idport/internal/user"
	"idport/pkg/testutil/containers"
)

func TestPostgresStoreLifecycle(t *testing.T) {
	pg := containers.NewPostgresContainer(t)
	ctx := context.Background()

	users := user.NewPostgres(pg.DB)
	owner := &user.User{ID: uuid.New(), Email: "codes@example.com"}
	require.NoError(t, users.Create(ctx, owner))

	gen := backupcode.New(backupcode.NewPostgres(pg.DB), backupcode.WithCost(bcrypt.MinCost))

	codes, err := gen.Generate(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, codes, backupcode.SetSize)

	ok, err := gen.Verify(ctx, owner.ID, codes[3])
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = gen.Verify(ctx, owner.ID, codes[3])
	require.NoError(t, err)
	assert.False(t, ok, "a code is single use")

	remaining, err := gen.Remaining(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, backupcode.SetSize-1, remaining)

	t.Run("regeneration invalidates the old set", func(t *testing.T) {
		fresh, err := gen.Generate(ctx, owner.ID)
		require.NoError(t, err)

		ok, err := gen.Verify(ctx, owner.ID, codes[4])
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = gen.Verify(ctx, owner.ID, fresh[0])
		require.NoError(t, err)
		assert.True(t, ok)
	})
}
