package controller

import (
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	sessionDTO "sfformation_backend/internals/features/sessions/dto"
	"sfformation_backend/internals/features/steps/dto"
	"sfformation_backend/internals/features/steps/service"
	helper "sfformation_backend/internals/helpers"
)

type TrainerStepController struct {
	DB        *gorm.DB
	Workflow  *service.Workflow
	Validator *validator.Validate
}

func NewTrainerStepController(db *gorm.DB) *TrainerStepController {
	return &TrainerStepController{
		DB:        db,
		Workflow:  service.NewWorkflow(db),
		Validator: helper.NewValidator(),
	}
}

// badRequest renders validator failures as a 400 with the failing fields.
func badRequest(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(helper.ErrorResponse{
		Success:   false,
		Message:   "Champs invalides ou manquants",
		ErrorCode: "VALIDATION_ERROR",
		Errors:    helper.ValidationFieldErrors(err),
	})
}

// GET /api/formateur/sessions
func (ctl *TrainerStepController) ListSessions(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	rows, err := ctl.Workflow.TrainerSessions(c.UserContext(), userID)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "Sessions du formateur", rows)
}

// GET /api/formateur/sessions/:id
func (ctl *TrainerStepController) GetSession(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	sessionID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	snap, err := ctl.Workflow.Snapshot(c.UserContext(), userID, sessionID)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "Détail de la session", snap)
}

// POST /api/formateur/sessions/:id/steps
func (ctl *TrainerStepController) TriggerStep(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	sessionID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}

	var req dto.TriggerStepRequest
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

	t, err := ctl.Workflow.TriggerStep(c.UserContext(), userID, sessionID, req.StepType, slotID)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	log.Printf("[INFO] Étape déclenchée session=%s step=%s creneau=%v", sessionID, t.TriggerStepType, t.TriggerSlotID)
	return helper.JsonCreated(c, "Étape déclenchée", t)
}

// PATCH /api/formateur/sessions/:id/creneaux/:creneau_id
func (ctl *TrainerStepController) UpdateSlot(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	sessionID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	slotID, err := helper.ParseUUIDParam(c, "creneau_id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var req sessionDTO.SlotTimesRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Corps de requête invalide")
	}
	slot, err := ctl.Workflow.UpdateSlot(c.UserContext(), userID, sessionID, slotID, req.StartsAt, req.EndsAt)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonUpdated(c, "Créneau mis à jour", slot)
}

// GET /api/formateur/sessions/:id/bilan-final/:inscription_id
func (ctl *TrainerStepController) GetFinalReview(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	sessionID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	enrollmentID, err := helper.ParseUUIDParam(c, "inscription_id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	form, err := ctl.Workflow.FinalReview(c.UserContext(), userID, sessionID, enrollmentID)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "Bilan final", form)
}

// POST /api/formateur/sessions/:id/bilan-final/:inscription_id
func (ctl *TrainerStepController) SubmitFinalReview(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	sessionID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	enrollmentID, err := helper.ParseUUIDParam(c, "inscription_id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}

	var req dto.FinalReviewRequest
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

	comp, err := ctl.Workflow.SubmitFinalReview(c.UserContext(), userID, sessionID, enrollmentID, answers)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	if comp == nil {
		return helper.JsonOK(c, "Bilan final déjà enregistré", fiber.Map{"ok": true})
	}
	log.Printf("[INFO] Bilan final enregistré inscription=%s", enrollmentID)
	return helper.JsonCreated(c, "Bilan final enregistré", comp)
}
