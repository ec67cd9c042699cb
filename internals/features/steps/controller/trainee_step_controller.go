package controller

import (
	"bufio"
	"context"
	"fmt"
	"log"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"sfformation_backend/internals/configs"
	"sfformation_backend/internals/features/steps/dto"
	"sfformation_backend/internals/features/steps/service"
	helper "sfformation_backend/internals/helpers"
)

type TraineeStepController struct {
	DB        *gorm.DB
	Workflow  *service.Workflow
	Validator *validator.Validate

	// streams end when this context is cancelled (server shutdown)
	base context.Context
}

func NewTraineeStepController(ctx context.Context, db *gorm.DB) *TraineeStepController {
	return &TraineeStepController{
		DB:        db,
		Workflow:  service.NewWorkflow(db),
		Validator: helper.NewValidator(),
		base:      ctx,
	}
}

// GET /api/stagiaire/sessions
func (ctl *TraineeStepController) ListSessions(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	rows, err := ctl.Workflow.TraineeSessions(c.UserContext(), userID)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "Sessions du stagiaire", rows)
}

// GET /api/stagiaire/pending-step
func (ctl *TraineeStepController) GetPendingStep(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	pending, err := ctl.Workflow.PendingStep(c.UserContext(), userID)
	if err != nil {
		log.Printf("[ERROR] pending-step user=%s: %v", userID, err)
		return helper.JsonAppError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"pending": pending,
	})
}

// GET /api/stagiaire/pending-step/stream (Server-Sent Events)
func (ctl *TraineeStepController) StreamPendingStep(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	base := ctl.base
	if base == nil {
		base = context.Background()
	}
	resolver := ctl.Workflow.Resolver

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		ctx, cancel := context.WithCancel(base)
		defer cancel()

		poller := service.NewPendingPoller(resolver, userID, configs.PendingPollInterval).
			WithHeartbeat(func() error {
				if _, err := w.WriteString(": ping\n\n"); err != nil {
					return err
				}
				return w.Flush()
			})

		log.Printf("[SSE] flux ouvert user=%s", userID)
		err := poller.Run(ctx, func(p *service.PendingStep) error {
			return writePendingEvent(w, p)
		})
		log.Printf("[SSE] flux fermé user=%s err=%v", userID, err)
	})
	return nil
}

func writePendingEvent(w *bufio.Writer, p *service.PendingStep) error {
	payload, err := sonic.Marshal(fiber.Map{"pending": p})
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: pending\ndata: %s\n\n", payload); err != nil {
		return err
	}
	return w.Flush()
}

// GET /api/stagiaire/questions?document_type=&inscription_id=
func (ctl *TraineeStepController) GetQuestions(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	enrollmentID, err := uuid.Parse(c.Query("inscription_id"))
	if err != nil {
		return helper.JsonErrorCode(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "inscription_id requis")
	}
	rows, err := ctl.Workflow.Questions(c.UserContext(), userID, enrollmentID, c.Query("document_type"))
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "Questions", rows)
}

// POST /api/stagiaire/reponses
func (ctl *TraineeStepController) SaveAnswers(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var req dto.AnswersRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Corps de requête invalide")
	}
	if err := ctl.Validator.Struct(&req); err != nil {
		return badRequest(c, err)
	}
	answers, err := dto.ToAnswerInputs(req.Answers)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	rows, err := ctl.Workflow.SaveAnswers(c.UserContext(), userID, uuid.MustParse(req.EnrollmentID), answers)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "Réponses enregistrées", rows)
}

// POST /api/stagiaire/emargement
func (ctl *TraineeStepController) SignIn(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var req dto.SignInRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Corps de requête invalide")
	}
	if err := ctl.Validator.Struct(&req); err != nil {
		return badRequest(c, err)
	}
	sig, err := ctl.Workflow.SignIn(c.UserContext(), userID,
		uuid.MustParse(req.EnrollmentID), uuid.MustParse(req.SlotID), req.SignatureData)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	log.Printf("[INFO] Émargement inscription=%s creneau=%s", sig.SignatureEnrollmentID, sig.SignatureSlotID)
	return helper.JsonCreated(c, "Émargement enregistré", sig)
}

// POST /api/stagiaire/complete-step
func (ctl *TraineeStepController) CompleteStep(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var req dto.CompleteStepRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Corps de requête invalide")
	}
	req.Normalize()
	if err := ctl.Validator.Struct(&req); err != nil {
		return badRequest(c, err)
	}
	slotID, err := dto.ParseOptionalUUID("creneau_id", req.SlotID)
	if err != nil {
		return helper.JsonAppError(c, err)
	}

	comp, err := ctl.Workflow.CompleteStep(c.UserContext(), userID, uuid.MustParse(req.EnrollmentID), req.StepType, slotID)
	if err != nil {
		if !helper.IsDuplicate(err) {
			log.Printf("[ERROR] complete-step user=%s: %v", userID, err)
		}
		return helper.JsonAppError(c, err)
	}
	return helper.JsonCreated(c, "Étape complétée", comp)
}
