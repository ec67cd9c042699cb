package service

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	authHelper "sfformation_backend/internals/features/users/auth/helper"
	authRepo "sfformation_backend/internals/features/users/auth/repository"
	helper "sfformation_backend/internals/helpers"
)

// FirstLogin sets the user's own password and re-issues a full session.
func FirstLogin(ctx context.Context, db *gorm.DB, userID uuid.UUID, password, confirm string) (*Session, error) {
	if err := authHelper.ValidateNewPassword(password, confirm); err != nil {
		return nil, helper.NewValidationError(err.Error())
	}
	u, err := authRepo.FindUserByID(ctx, db, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, helper.NewUnauthenticatedError("Non authentifié")
	}
	if err != nil {
		return nil, err
	}
	if u.FirstLoginDone {
		return nil, helper.NewValidationError("Mot de passe déjà défini")
	}

	hash, err := authHelper.HashPassword(password)
	if err != nil {
		return nil, err
	}
	n, err := authRepo.SetFirstLoginPassword(ctx, db, userID, hash)
	if err != nil {
		log.Printf("[ERROR] FirstLogin user=%s: %v", userID, err)
		return nil, err
	}
	if n == 0 {
		return nil, helper.NewValidationError("Mot de passe déjà défini")
	}
	u.PasswordHash = hash
	u.FirstLoginDone = true
	log.Printf("[INFO] Première connexion terminée pour %s", u.UserName)
	return issue(*u)
}
