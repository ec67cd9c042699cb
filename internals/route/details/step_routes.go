package details

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	stepRoute "sfformation_backend/internals/features/steps/route"
)

func TrainerRoutes(r fiber.Router, db *gorm.DB) {
	stepRoute.TrainerStepRoutes(r, db)
}

func TraineeRoutes(ctx context.Context, r fiber.Router, db *gorm.DB) {
	stepRoute.TraineeStepRoutes(ctx, r, db)
}
