package controller

import (
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	exportService "sfformation_backend/internals/features/exports/service"
	"sfformation_backend/internals/features/sessions/dto"
	"sfformation_backend/internals/features/sessions/service"
	stepService "sfformation_backend/internals/features/steps/service"
	helper "sfformation_backend/internals/helpers"
)

type SessionAdminController struct {
	DB        *gorm.DB
	Workflow  *stepService.Workflow
	Validator *validator.Validate
}

func NewSessionAdminController(db *gorm.DB) *SessionAdminController {
	return &SessionAdminController{
		DB:        db,
		Workflow:  stepService.NewWorkflow(db),
		Validator: helper.NewValidator(),
	}
}

/* ===== Sessions ===== */

// GET /api/admin/sessions?page=&per_page=
func (sc *SessionAdminController) ListSessions(c *fiber.Ctx) error {
	p := helper.ResolvePaging(c, 20, 100)
	rows, total, err := service.ListSessions(c.UserContext(), sc.DB, p)
	if err != nil {
		log.Println("[ERROR] ListSessions:", err)
		return helper.JsonAppError(c, err)
	}
	return helper.JsonList(c, "Liste des sessions", rows, helper.BuildPagination(total, p, len(rows)))
}

// POST /api/admin/sessions
func (sc *SessionAdminController) CreateSession(c *fiber.Ctx) error {
	var req dto.CreateSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Corps de requête invalide")
	}
	req.Normalize()
	if err := sc.Validator.Struct(&req); err != nil {
		return helper.JsonValidationError(c, helper.ValidationFieldErrors(err))
	}
	in, err := req.ToInput()
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	sess, err := service.CreateSession(c.UserContext(), sc.DB, in)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonCreated(c, "Session créée", sess)
}

// GET /api/admin/sessions/:id
func (sc *SessionAdminController) GetSession(c *fiber.Ctx) error {
	sessionID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	sess, err := service.GetSession(c.UserContext(), sc.DB, sessionID)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	snap, err := sc.Workflow.SessionSnapshot(c.UserContext(), sess)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "Détail de la session", snap)
}

// PATCH /api/admin/sessions/:id/creneaux/:creneau_id
func (sc *SessionAdminController) UpdateSlot(c *fiber.Ctx) error {
	sessionID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	slotID, err := helper.ParseUUIDParam(c, "creneau_id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var req dto.SlotTimesRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Corps de requête invalide")
	}
	slot, err := service.UpdateSlotTimes(c.UserContext(), sc.DB, sessionID, slotID, req.StartsAt, req.EndsAt)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonUpdated(c, "Créneau mis à jour", slot)
}

/* ===== Inscriptions ===== */

// GET /api/admin/sessions/:id/inscriptions
func (sc *SessionAdminController) ListEnrollments(c *fiber.Ctx) error {
	sessionID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	if _, err := service.GetSession(c.UserContext(), sc.DB, sessionID); err != nil {
		return helper.JsonAppError(c, err)
	}
	rows, err := service.ListEnrollments(c.UserContext(), sc.DB, sessionID)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "Inscriptions de la session", rows)
}

// POST /api/admin/sessions/:id/inscriptions
func (sc *SessionAdminController) Enroll(c *fiber.Ctx) error {
	sessionID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var req dto.EnrollRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Corps de requête invalide")
	}
	if err := sc.Validator.Struct(&req); err != nil {
		return helper.JsonValidationError(c, helper.ValidationFieldErrors(err))
	}
	e, err := service.Enroll(c.UserContext(), sc.DB, sessionID, uuid.MustParse(req.TraineeID))
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonCreated(c, "Stagiaire inscrit", e)
}

// PATCH /api/admin/inscriptions/:id
func (sc *SessionAdminController) UpdateNeedsAnalysis(c *fiber.Ctx) error {
	enrollmentID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var req dto.NeedsAnalysisRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Corps de requête invalide")
	}
	e, err := service.UpdateNeedsAnalysis(c.UserContext(), sc.DB, enrollmentID, req.NeedsAnalysis)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonUpdated(c, "Inscription mise à jour", e)
}

// GET /api/admin/inscriptions/:id/dossier
func (sc *SessionAdminController) GetDossier(c *fiber.Ctx) error {
	enrollmentID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	d, err := exportService.LoadDossier(c.UserContext(), sc.DB, enrollmentID)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "Dossier de l'inscription", d)
}
