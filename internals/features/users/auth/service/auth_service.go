package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"sfformation_backend/internals/configs"
	"sfformation_backend/internals/constants"
	authHelper "sfformation_backend/internals/features/users/auth/helper"
	authRepo "sfformation_backend/internals/features/users/auth/repository"
	userModel "sfformation_backend/internals/features/users/user/model"
	userService "sfformation_backend/internals/features/users/user/service"
	helper "sfformation_backend/internals/helpers"
)

const errBadCredentials = "Identifiant ou mot de passe incorrect"

// Session is what a successful login hands back to the controller.
type Session struct {
	User      userModel.UserModel
	Token     string
	ExpiresAt time.Time
}

// Redirect points trainers and trainees to their first-login page while
// their password is not set yet.
func (s *Session) Redirect() string {
	if s.User.FirstLoginDone || s.User.Role == constants.RoleAdmin {
		return ""
	}
	return "/" + s.User.Role + "/first-login"
}

func issue(u userModel.UserModel) (*Session, error) {
	token, exp, err := IssueToken(u, u.FirstLoginDone, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	return &Session{User: u, Token: token, ExpiresAt: exp}, nil
}

/* ==========================
   LOGIN
========================== */

// Login skips the password check while first login is pending; the user
// then has to set one through FirstLogin.
func Login(ctx context.Context, db *gorm.DB, username, password string) (*Session, error) {
	u, err := userService.FindUserByUsername(ctx, db, username)
	if helper.IsNotFound(err) {
		return nil, helper.NewUnauthenticatedError(errBadCredentials)
	}
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, helper.NewAuthorizationError("Compte désactivé")
	}
	if u.FirstLoginDone {
		if err := authHelper.CheckPasswordHash(u.PasswordHash, password); err != nil {
			return nil, helper.NewUnauthenticatedError(errBadCredentials)
		}
	}
	log.Printf("[INFO] Connexion %s role=%s first_login_done=%t", u.UserName, u.Role, u.FirstLoginDone)
	return issue(*u)
}

// RequestFirstLogin opens a first-login session from the username alone.
func RequestFirstLogin(ctx context.Context, db *gorm.DB, username, role string) (*Session, error) {
	if role != constants.RoleTrainer && role != constants.RoleTrainee {
		return nil, helper.NewValidationError("Rôle invalide")
	}
	u, err := userService.FindUserByUsername(ctx, db, username)
	if helper.IsNotFound(err) {
		return nil, helper.NewUnauthenticatedError("Identifiant introuvable ou première connexion déjà effectuée")
	}
	if err != nil {
		return nil, err
	}
	if u.Role != role {
		return nil, helper.NewUnauthenticatedError("Identifiant introuvable ou première connexion déjà effectuée")
	}
	if u.FirstLoginDone {
		return nil, helper.NewValidationError("Première connexion déjà effectuée. Utilisez le formulaire de connexion avec votre mot de passe.")
	}
	if !u.IsActive {
		return nil, helper.NewAuthorizationError("Compte désactivé")
	}
	return issue(*u)
}

/* ==========================
   LOGOUT / ME
========================== */

// Logout blacklists the raw token until it would have expired anyway.
func Logout(ctx context.Context, db *gorm.DB, rawToken string, exp time.Time) error {
	if rawToken == "" {
		return nil
	}
	if exp.IsZero() || exp.Before(time.Now()) {
		exp = time.Now().Add(time.Minute)
	}
	return authRepo.BlacklistToken(ctx, db, rawToken, configs.JWTSecret, exp)
}

type Me struct {
	ID             uuid.UUID `json:"id"`
	Username       string    `json:"username"`
	Role           string    `json:"role"`
	FirstLoginDone bool      `json:"firstLoginDone"`
	ProfileID      *string   `json:"profil_id,omitempty"`
	LastName       string    `json:"nom,omitempty"`
	FirstName      string    `json:"prenom,omitempty"`
}

func GetMe(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*Me, error) {
	u, err := authRepo.FindUserByID(ctx, db, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, helper.NewNotFoundError("Utilisateur non trouvé")
	}
	if err != nil {
		return nil, err
	}
	me := &Me{ID: u.ID, Username: u.UserName, Role: u.Role, FirstLoginDone: u.FirstLoginDone}
	switch u.Role {
	case constants.RoleTrainer:
		if t, err := userService.FindTrainerByUserID(ctx, db, u.ID); err == nil {
			id := t.TrainerID.String()
			me.ProfileID, me.LastName, me.FirstName = &id, t.TrainerLastName, t.TrainerFirstName
		} else if !helper.IsNotFound(err) {
			return nil, err
		}
	case constants.RoleTrainee:
		if t, err := userService.FindTraineeByUserID(ctx, db, u.ID); err == nil {
			id := t.TraineeID.String()
			me.ProfileID, me.LastName, me.FirstName = &id, t.TraineeLastName, t.TraineeFirstName
		} else if !helper.IsNotFound(err) {
			return nil, err
		}
	}
	return me, nil
}
