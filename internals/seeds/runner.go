package seeds

import (
	"context"

	"gorm.io/gorm"

	formations "sfformation_backend/internals/seeds/formations"
)

const DefaultFormationsFile = "internals/seeds/formations/data_formations.json"

func RunAllSeeds(ctx context.Context, db *gorm.DB, formationsFile string) error {
	if formationsFile == "" {
		formationsFile = DefaultFormationsFile
	}
	//* Formations, documents, questions
	return formations.SeedFormationsFromJSON(ctx, db, formationsFile)
}
