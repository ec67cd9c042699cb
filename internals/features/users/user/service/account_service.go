package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"

	"sfformation_backend/internals/constants"
	database "sfformation_backend/internals/databases"
	authHelper "sfformation_backend/internals/features/users/auth/helper"
	"sfformation_backend/internals/features/users/user/model"
	helper "sfformation_backend/internals/helpers"
)

/* ===== Lookups ===== */

func FindTrainerByUserID(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*model.TrainerModel, error) {
	var t model.TrainerModel
	err := db.WithContext(ctx).Where("trainer_user_id = ?", userID).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, helper.NewNotFoundError("Formateur non trouvé")
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func FindTraineeByUserID(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*model.TraineeModel, error) {
	var t model.TraineeModel
	err := db.WithContext(ctx).Where("trainee_user_id = ?", userID).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, helper.NewNotFoundError("Stagiaire non trouvé")
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func FindUserByUsername(ctx context.Context, db *gorm.DB, username string) (*model.UserModel, error) {
	var u model.UserModel
	err := db.WithContext(ctx).Where("username = ?", NormalizeUsername(username)).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, helper.NewNotFoundError("Utilisateur non trouvé")
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

/* ===== Usernames ===== */

var accentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func NormalizeUsername(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// BuildUsername gives "prenom.nom": lowercase, no accents, no spaces.
func BuildUsername(firstName, lastName string) string {
	clean := func(s string) string {
		out, _, err := transform.String(accentStripper, strings.TrimSpace(s))
		if err != nil {
			out = s
		}
		out = strings.ToLower(out)
		return strings.Map(func(r rune) rune {
			if unicode.IsSpace(r) {
				return -1
			}
			return r
		}, out)
	}
	return clean(firstName) + "." + clean(lastName)
}

/* ===== Accounts ===== */

type NewAccount struct {
	FirstName string
	LastName  string
}

type CreatedAccount struct {
	User         model.UserModel     `json:"user"`
	Trainer      *model.TrainerModel `json:"formateur,omitempty"`
	Trainee      *model.TraineeModel `json:"stagiaire,omitempty"`
	TempPassword string              `json:"-"`
}

// CreateAccount creates a trainer or trainee login plus its profile row.
// The user must set a password at first login.
func CreateAccount(ctx context.Context, db *gorm.DB, role string, in NewAccount) (*CreatedAccount, error) {
	if role != constants.RoleTrainer && role != constants.RoleTrainee {
		return nil, helper.NewValidationError("Rôle invalide")
	}
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	if in.FirstName == "" || in.LastName == "" {
		return nil, helper.NewValidationError("Nom et prénom requis")
	}

	temp := authHelper.TemporaryPassword()
	hash, err := authHelper.HashPassword(temp)
	if err != nil {
		return nil, err
	}

	out := &CreatedAccount{TempPassword: temp}
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		out.User = model.UserModel{
			UserName:       BuildUsername(in.FirstName, in.LastName),
			PasswordHash:   hash,
			Role:           role,
			FirstLoginDone: false,
			IsActive:       true,
		}
		if err := tx.Create(&out.User).Error; err != nil {
			return err
		}
		if role == constants.RoleTrainer {
			out.Trainer = &model.TrainerModel{
				TrainerUserID:    out.User.ID,
				TrainerLastName:  in.LastName,
				TrainerFirstName: in.FirstName,
			}
			return tx.Create(out.Trainer).Error
		}
		out.Trainee = &model.TraineeModel{
			TraineeUserID:    out.User.ID,
			TraineeLastName:  in.LastName,
			TraineeFirstName: in.FirstName,
		}
		return tx.Create(out.Trainee).Error
	})
	if database.IsUniqueViolation(err) {
		return nil, helper.NewDuplicateError("Un utilisateur avec ce nom existe déjà", err)
	}
	if err != nil {
		log.Printf("[ERROR] CreateAccount role=%s: %v", role, err)
		return nil, err
	}
	log.Printf("[INFO] Compte %s créé: %s", role, out.User.UserName)
	return out, nil
}

// CreateAdmin creates an admin account with a known password.
func CreateAdmin(ctx context.Context, db *gorm.DB, username, password string) (*model.UserModel, error) {
	username = NormalizeUsername(username)
	if username == "" {
		return nil, helper.NewValidationError("username requis")
	}
	if err := authHelper.ValidateNewPassword(password, password); err != nil {
		return nil, helper.NewValidationError(err.Error())
	}
	hash, err := authHelper.HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := model.UserModel{
		UserName:       username,
		PasswordHash:   hash,
		Role:           constants.RoleAdmin,
		FirstLoginDone: true,
		IsActive:       true,
	}
	if err := db.WithContext(ctx).Create(&u).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, helper.NewDuplicateError("Un utilisateur avec ce nom existe déjà", err)
		}
		return nil, err
	}
	return &u, nil
}

func ListTrainers(ctx context.Context, db *gorm.DB) ([]model.TrainerModel, error) {
	var rows []model.TrainerModel
	err := db.WithContext(ctx).Preload("User").
		Order("trainer_last_name ASC, trainer_first_name ASC").
		Find(&rows).Error
	return rows, err
}

func ListTrainees(ctx context.Context, db *gorm.DB) ([]model.TraineeModel, error) {
	var rows []model.TraineeModel
	err := db.WithContext(ctx).Preload("User").
		Order("trainee_last_name ASC, trainee_first_name ASC").
		Find(&rows).Error
	return rows, err
}
