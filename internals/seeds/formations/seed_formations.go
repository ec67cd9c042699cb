package formations

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"gorm.io/gorm"

	"sfformation_backend/internals/features/formations/dto"
	"sfformation_backend/internals/features/formations/model"
	"sfformation_backend/internals/features/formations/service"
	stepModel "sfformation_backend/internals/features/steps/model"
	helper "sfformation_backend/internals/helpers"
)

type DocumentSeed struct {
	DocumentType string `json:"document_type"`
	dto.UpdateDocumentRequest
}

type FormationSeed struct {
	Name      string                      `json:"nom"`
	Documents []DocumentSeed              `json:"documents"`
	Questions []dto.CreateQuestionRequest `json:"questions"`
}

// SeedFormationsFromJSON creates each formation of the file that does not
// exist yet, with its document overrides and questions.
func SeedFormationsFromJSON(ctx context.Context, db *gorm.DB, filePath string) error {
	log.Println("📥 Lecture du fichier formations:", filePath)

	file, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("lecture %s: %w", filePath, err)
	}
	var seeds []FormationSeed
	if err := json.Unmarshal(file, &seeds); err != nil {
		return fmt.Errorf("décodage JSON: %w", err)
	}

	validate := helper.NewValidator()
	for _, s := range seeds {
		var existing int64
		if err := db.WithContext(ctx).Model(&model.FormationModel{}).
			Where("formation_name = ?", s.Name).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			log.Printf("ℹ️ Formation '%s' déjà présente, ignorée.", s.Name)
			continue
		}

		f, err := service.CreateFormation(ctx, db, s.Name)
		if err != nil {
			return fmt.Errorf("formation %q: %w", s.Name, err)
		}
		for _, d := range s.Documents {
			docType, err := stepModel.ParseDocumentType(d.DocumentType)
			if err != nil {
				return fmt.Errorf("formation %q: %w", s.Name, err)
			}
			if err := validate.Struct(&d.UpdateDocumentRequest); err != nil {
				return fmt.Errorf("formation %q document %s: %w", s.Name, docType, err)
			}
			if _, err := service.UpdateDocument(ctx, db, f.FormationID, docType, d.ToPatch()); err != nil {
				return err
			}
		}
		for i := range s.Questions {
			q := &s.Questions[i]
			if err := validate.Struct(q); err != nil {
				return fmt.Errorf("formation %q question %d: %w", s.Name, i+1, err)
			}
			if _, err := service.CreateQuestion(ctx, db, f.FormationID, q.ToInput()); err != nil {
				return fmt.Errorf("formation %q question %d: %w", s.Name, i+1, err)
			}
		}
		log.Printf("✅ Formation '%s' insérée (%d questions)", s.Name, len(s.Questions))
	}
	return nil
}
