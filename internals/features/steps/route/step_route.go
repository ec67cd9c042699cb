package route

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	stepController "sfformation_backend/internals/features/steps/controller"
)

// TrainerStepRoutes mounts the trainer dashboard on /api/formateur.
func TrainerStepRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := stepController.NewTrainerStepController(db)

	s := r.Group("/sessions")
	s.Get("/", ctrl.ListSessions)
	s.Get("/:id", ctrl.GetSession)
	s.Post("/:id/steps", ctrl.TriggerStep)
	s.Patch("/:id/creneaux/:creneau_id", ctrl.UpdateSlot)
	s.Get("/:id/bilan-final/:inscription_id", ctrl.GetFinalReview)
	s.Post("/:id/bilan-final/:inscription_id", ctrl.SubmitFinalReview)
}

// TraineeStepRoutes mounts the trainee side on /api/stagiaire. ctx bounds the
// lifetime of open pending-step streams.
func TraineeStepRoutes(ctx context.Context, r fiber.Router, db *gorm.DB) {
	ctrl := stepController.NewTraineeStepController(ctx, db)

	r.Get("/sessions", ctrl.ListSessions)
	r.Get("/pending-step", ctrl.GetPendingStep)
	r.Get("/pending-step/stream", ctrl.StreamPendingStep)
	r.Get("/questions", ctrl.GetQuestions)
	r.Post("/reponses", ctrl.SaveAnswers)
	r.Post("/emargement", ctrl.SignIn)
	r.Post("/complete-step", ctrl.CompleteStep)
}
