package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sfformation_backend/internals/constants"
	authModel "sfformation_backend/internals/features/users/auth/model"
	"sfformation_backend/internals/testutil"
)

func TestBlacklistLifecycle(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, BlacklistToken(ctx, db, "jeton-a", "s", now.Add(time.Hour)))
	require.NoError(t, BlacklistToken(ctx, db, "jeton-a", "s", now.Add(2*time.Hour)))
	require.NoError(t, BlacklistToken(ctx, db, "jeton-b", "s", now.Add(-48*time.Hour)))

	var rows []authModel.TokenBlacklistModel
	require.NoError(t, db.Order("token_blacklist_id").Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.Len(t, rows[0].TokenBlacklistDigest, 64)
	assert.NotContains(t, rows[0].TokenBlacklistDigest, "jeton")

	ok, err := IsBlacklisted(ctx, db, "jeton-a", "s")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = IsBlacklisted(ctx, db, "jeton-a", "autre-secret")
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = IsBlacklisted(ctx, db, "jeton-b", "s")
	require.NoError(t, err)
	assert.False(t, ok, "expired rows no longer block")

	n, err := CleanupExpiredBlacklist(ctx, db, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestSetFirstLoginPassword(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, db, "lea.moreau", constants.RoleTrainee, false)

	n, err := SetFirstLoginPassword(ctx, db, u.ID, "hash")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = SetFirstLoginPassword(ctx, db, u.ID, "autre")
	require.NoError(t, err)
	assert.Zero(t, n)

	got, err := FindUserByID(ctx, db, u.ID)
	require.NoError(t, err)
	assert.True(t, got.FirstLoginDone)
	assert.Equal(t, "hash", got.PasswordHash)
}
