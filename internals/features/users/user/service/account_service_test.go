package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sfformation_backend/internals/constants"
	authHelper "sfformation_backend/internals/features/users/auth/helper"
	helper "sfformation_backend/internals/helpers"
	"sfformation_backend/internals/testutil"
)

func TestBuildUsername(t *testing.T) {
	cases := []struct{ first, last, want string }{
		{"Jean", "Dupont", "jean.dupont"},
		{"Éloïse", "Lefèvre", "eloise.lefevre"},
		{" Marie Claire ", "De La Tour", "marieclaire.delatour"},
		{"François", "N'Diaye", "francois.n'diaye"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, BuildUsername(c.first, c.last))
	}
	assert.Equal(t, "admin", NormalizeUsername("  Admin "))
}

func TestCreateAccount_Trainee(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()

	out, err := CreateAccount(ctx, db, constants.RoleTrainee, NewAccount{FirstName: "Léa", LastName: "Moreau"})
	require.NoError(t, err)
	assert.Equal(t, "lea.moreau", out.User.UserName)
	assert.False(t, out.User.FirstLoginDone)
	assert.NotEmpty(t, out.TempPassword)
	require.NotNil(t, out.Trainee)
	assert.Nil(t, out.Trainer)
	assert.NoError(t, authHelper.CheckPasswordHash(out.User.PasswordHash, out.TempPassword))

	found, err := FindTraineeByUserID(ctx, db, out.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Léa Moreau", found.FullName())

	_, err = CreateAccount(ctx, db, constants.RoleTrainee, NewAccount{FirstName: "Lea", LastName: "Moreau"})
	assert.True(t, helper.IsDuplicate(err))
}

func TestCreateAccount_Trainer(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()

	out, err := CreateAccount(ctx, db, constants.RoleTrainer, NewAccount{FirstName: "Paul", LastName: "Roux"})
	require.NoError(t, err)
	require.NotNil(t, out.Trainer)

	trainers, err := ListTrainers(ctx, db)
	require.NoError(t, err)
	require.Len(t, trainers, 1)
	require.NotNil(t, trainers[0].User)
	assert.Equal(t, "paul.roux", trainers[0].User.UserName)

	_, err = FindTrainerByUserID(ctx, db, uuid.New())
	assert.True(t, helper.IsNotFound(err))
}

func TestCreateAccount_Rejects(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()

	_, err := CreateAccount(ctx, db, constants.RoleAdmin, NewAccount{FirstName: "A", LastName: "B"})
	assert.True(t, helper.IsValidation(err))

	_, err = CreateAccount(ctx, db, constants.RoleTrainee, NewAccount{FirstName: " ", LastName: "B"})
	assert.True(t, helper.IsValidation(err))
}

func TestCreateAdmin(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()

	u, err := CreateAdmin(ctx, db, " Admin ", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "admin", u.UserName)
	assert.True(t, u.FirstLoginDone)

	found, err := FindUserByUsername(ctx, db, "ADMIN")
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)

	_, err = CreateAdmin(ctx, db, "admin", "secret123")
	assert.True(t, helper.IsDuplicate(err))

	_, err = CreateAdmin(ctx, db, "autre", "123")
	assert.True(t, helper.IsValidation(err))
}
