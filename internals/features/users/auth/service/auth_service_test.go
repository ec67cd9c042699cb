package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sfformation_backend/internals/configs"
	"sfformation_backend/internals/constants"
	authHelper "sfformation_backend/internals/features/users/auth/helper"
	authRepo "sfformation_backend/internals/features/users/auth/repository"
	userModel "sfformation_backend/internals/features/users/user/model"
	helper "sfformation_backend/internals/helpers"
	"sfformation_backend/internals/testutil"
)

func withSecret(t *testing.T) {
	t.Helper()
	prev := configs.JWTSecret
	configs.JWTSecret = "test-secret"
	t.Cleanup(func() { configs.JWTSecret = prev })
}

func TestIssueAndParseToken(t *testing.T) {
	withSecret(t)
	u := userModel.UserModel{UserName: "jean.dupont", Role: constants.RoleTrainee}
	u.ID = uuid.New()

	raw, exp, err := IssueToken(u, false, time.Now())
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(configs.TokenTTL), exp, time.Minute)

	claims, err := ParseToken(raw)
	require.NoError(t, err)
	assert.Equal(t, constants.RoleTrainee, claims.Role)
	assert.False(t, claims.FirstLoginDone)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, u.ID, id)

	configs.JWTSecret = "autre"
	_, err = ParseToken(raw)
	assert.Error(t, err)
}

func TestParseToken_RejectsExpiredAndNoneAlg(t *testing.T) {
	withSecret(t)
	u := userModel.UserModel{UserName: "x", Role: constants.RoleAdmin}
	u.ID = uuid.New()

	raw, _, err := IssueToken(u, true, time.Now().Add(-2*configs.TokenTTL))
	require.NoError(t, err)
	_, err = ParseToken(raw)
	assert.Error(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: u.ID.String()}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = ParseToken(unsigned)
	assert.Error(t, err)
}

func TestIssueToken_MissingSecret(t *testing.T) {
	prev := configs.JWTSecret
	configs.JWTSecret = ""
	t.Cleanup(func() { configs.JWTSecret = prev })

	_, _, err := IssueToken(userModel.UserModel{}, true, time.Now())
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestLogin(t *testing.T) {
	withSecret(t)
	db := testutil.NewDB(t)
	ctx := context.Background()

	hash, err := authHelper.HashPassword("motdepasse")
	require.NoError(t, err)
	admin := testutil.CreateUser(t, db, "admin", constants.RoleAdmin, true)
	require.NoError(t, db.Model(&admin).Update("password_hash", hash).Error)

	s, err := Login(ctx, db, " ADMIN ", "motdepasse")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, s.User.ID)
	assert.Empty(t, s.Redirect())

	_, err = Login(ctx, db, "admin", "mauvais")
	assert.ErrorIs(t, err, helper.ErrUnauthenticated)
	_, err = Login(ctx, db, "inconnu", "motdepasse")
	assert.ErrorIs(t, err, helper.ErrUnauthenticated)

	// Pending first login: any password opens a restricted session.
	trainee := testutil.CreateUser(t, db, "lea.moreau", constants.RoleTrainee, false)
	s, err = Login(ctx, db, "lea.moreau", "")
	require.NoError(t, err)
	assert.Equal(t, trainee.ID, s.User.ID)
	assert.Equal(t, "/stagiaire/first-login", s.Redirect())

	require.NoError(t, db.Model(&trainee).Update("is_active", false).Error)
	_, err = Login(ctx, db, "lea.moreau", "")
	assert.ErrorIs(t, err, helper.ErrAuthorization)
}

func TestRequestFirstLoginAndFirstLogin(t *testing.T) {
	withSecret(t)
	db := testutil.NewDB(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, db, "paul.roux", constants.RoleTrainer, false)

	_, err := RequestFirstLogin(ctx, db, "paul.roux", constants.RoleAdmin)
	assert.True(t, helper.IsValidation(err))
	_, err = RequestFirstLogin(ctx, db, "paul.roux", constants.RoleTrainee)
	assert.ErrorIs(t, err, helper.ErrUnauthenticated)

	s, err := RequestFirstLogin(ctx, db, "Paul.Roux", constants.RoleTrainer)
	require.NoError(t, err)
	assert.Equal(t, "/formateur/first-login", s.Redirect())

	_, err = FirstLogin(ctx, db, u.ID, "abc", "abc")
	assert.True(t, helper.IsValidation(err))
	_, err = FirstLogin(ctx, db, u.ID, "motdepasse", "autre")
	assert.True(t, helper.IsValidation(err))

	s, err = FirstLogin(ctx, db, u.ID, "motdepasse", "motdepasse")
	require.NoError(t, err)
	assert.True(t, s.User.FirstLoginDone)
	claims, err := ParseToken(s.Token)
	require.NoError(t, err)
	assert.True(t, claims.FirstLoginDone)

	_, err = FirstLogin(ctx, db, u.ID, "motdepasse", "motdepasse")
	assert.True(t, helper.IsValidation(err))

	_, err = RequestFirstLogin(ctx, db, "paul.roux", constants.RoleTrainer)
	assert.True(t, helper.IsValidation(err))

	_, err = Login(ctx, db, "paul.roux", "mauvais")
	assert.ErrorIs(t, err, helper.ErrUnauthenticated)
	_, err = Login(ctx, db, "paul.roux", "motdepasse")
	require.NoError(t, err)
}

func TestLogoutBlacklistsToken(t *testing.T) {
	withSecret(t)
	db := testutil.NewDB(t)
	ctx := context.Background()

	require.NoError(t, Logout(ctx, db, "", time.Time{}))
	require.NoError(t, Logout(ctx, db, "jeton", time.Time{}))
	require.NoError(t, Logout(ctx, db, "jeton", time.Now().Add(time.Hour)))

	ok, err := authRepo.IsBlacklisted(ctx, db, "jeton", configs.JWTSecret)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = authRepo.IsBlacklisted(ctx, db, "autre", configs.JWTSecret)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetMe(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.SeedSession(t, db, 1, 1)
	ctx := context.Background()

	me, err := GetMe(ctx, db, fx.TrainerUser.ID)
	require.NoError(t, err)
	require.NotNil(t, me.ProfileID)
	assert.Equal(t, fx.Trainer.TrainerID.String(), *me.ProfileID)
	assert.Equal(t, "Martin", me.LastName)

	me, err = GetMe(ctx, db, fx.Trainees[0].User.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.RoleTrainee, me.Role)

	_, err = GetMe(ctx, db, uuid.New())
	assert.True(t, helper.IsNotFound(err))
}
