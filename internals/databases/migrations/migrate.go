package migrations

import (
	"log"

	"gorm.io/gorm"

	formationModel "sfformation_backend/internals/features/formations/model"
	sessionModel "sfformation_backend/internals/features/sessions/model"
	stepModel "sfformation_backend/internals/features/steps/model"
	submissionModel "sfformation_backend/internals/features/submissions/model"
	authModel "sfformation_backend/internals/features/users/auth/model"
	userModel "sfformation_backend/internals/features/users/user/model"
)

// Models in dependency order.
func Models() []any {
	return []any{
		&userModel.UserModel{},
		&userModel.TrainerModel{},
		&userModel.TraineeModel{},
		&authModel.TokenBlacklistModel{},
		&formationModel.FormationModel{},
		&formationModel.FormationDocumentModel{},
		&formationModel.QuestionModel{},
		&sessionModel.SessionModel{},
		&sessionModel.SlotModel{},
		&sessionModel.SessionDateModel{},
		&sessionModel.EnrollmentModel{},
		&stepModel.TriggerModel{},
		&stepModel.CompletionModel{},
		&submissionModel.ResponseModel{},
		&submissionModel.SignatureModel{},
	}
}

// AutoMigrate creates or updates every table with its unique indexes.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		log.Printf("[ERROR] AutoMigrate: %v", err)
		return err
	}
	log.Println("[INFO] Migration terminée")
	return nil
}
