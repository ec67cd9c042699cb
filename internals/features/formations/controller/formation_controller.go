package controller

import (
	"log"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"sfformation_backend/internals/features/formations/dto"
	"sfformation_backend/internals/features/formations/service"
	stepModel "sfformation_backend/internals/features/steps/model"
	helper "sfformation_backend/internals/helpers"
)

type FormationController struct {
	DB        *gorm.DB
	Validator *validator.Validate
}

func NewFormationController(db *gorm.DB) *FormationController {
	return &FormationController{DB: db, Validator: helper.NewValidator()}
}

/* ===== Formations ===== */

// GET /api/admin/formations
func (fc *FormationController) ListFormations(c *fiber.Ctx) error {
	rows, err := service.ListFormations(c.UserContext(), fc.DB)
	if err != nil {
		log.Println("[ERROR] ListFormations:", err)
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "Liste des formations", rows)
}

// POST /api/admin/formations
func (fc *FormationController) CreateFormation(c *fiber.Ctx) error {
	var req dto.CreateFormationRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Corps de requête invalide")
	}
	req.Normalize()
	if err := fc.Validator.Struct(&req); err != nil {
		return helper.JsonValidationError(c, helper.ValidationFieldErrors(err))
	}
	f, err := service.CreateFormation(c.UserContext(), fc.DB, req.Name)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonCreated(c, "Formation créée", f)
}

/* ===== Documents ===== */

// GET /api/admin/formations/:id/documents
func (fc *FormationController) ListDocuments(c *fiber.Ctx) error {
	formationID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	if _, err := service.GetFormation(c.UserContext(), fc.DB, formationID); err != nil {
		return helper.JsonAppError(c, err)
	}
	rows, err := service.ListDocuments(c.UserContext(), fc.DB, formationID)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "Documents de la formation", rows)
}

// PATCH /api/admin/formations/:id/documents/:type
func (fc *FormationController) UpdateDocument(c *fiber.Ctx) error {
	formationID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	docType, err := stepModel.ParseDocumentType(c.Params("type"))
	if err != nil {
		return helper.JsonErrorCode(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "document_type invalide")
	}
	var req dto.UpdateDocumentRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Corps de requête invalide")
	}
	if err := fc.Validator.Struct(&req); err != nil {
		return helper.JsonValidationError(c, helper.ValidationFieldErrors(err))
	}
	doc, err := service.UpdateDocument(c.UserContext(), fc.DB, formationID, docType, req.ToPatch())
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonUpdated(c, "Document mis à jour", doc)
}

/* ===== Questions ===== */

// GET /api/admin/formations/:id/questions?document_type=
func (fc *FormationController) ListQuestions(c *fiber.Ctx) error {
	formationID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var docType *stepModel.DocumentType
	if raw := strings.TrimSpace(c.Query("document_type")); raw != "" {
		dt, err := stepModel.ParseDocumentType(raw)
		if err != nil {
			return helper.JsonErrorCode(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "document_type invalide")
		}
		docType = &dt
	}
	rows, err := service.ListQuestions(c.UserContext(), fc.DB, formationID, docType)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "Questions", rows)
}

// POST /api/admin/formations/:id/questions
func (fc *FormationController) CreateQuestion(c *fiber.Ctx) error {
	formationID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var req dto.CreateQuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Corps de requête invalide")
	}
	if err := fc.Validator.Struct(&req); err != nil {
		return helper.JsonValidationError(c, helper.ValidationFieldErrors(err))
	}
	q, err := service.CreateQuestion(c.UserContext(), fc.DB, formationID, req.ToInput())
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonCreated(c, "Question créée", q)
}

// PATCH /api/admin/questions/:id
func (fc *FormationController) UpdateQuestion(c *fiber.Ctx) error {
	questionID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var req dto.UpdateQuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Corps de requête invalide")
	}
	if err := fc.Validator.Struct(&req); err != nil {
		return helper.JsonValidationError(c, helper.ValidationFieldErrors(err))
	}
	q, err := service.UpdateQuestion(c.UserContext(), fc.DB, questionID, req.ToPatch())
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonUpdated(c, "Question mise à jour", q)
}

// DELETE /api/admin/questions/:id
func (fc *FormationController) DeleteQuestion(c *fiber.Ctx) error {
	questionID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	if err := service.DeleteQuestion(c.UserContext(), fc.DB, questionID); err != nil {
		return helper.JsonAppError(c, err)
	}
	log.Printf("[INFO] Question supprimée id=%s", questionID)
	return helper.JsonDeleted(c, "Question supprimée", fiber.Map{"id": questionID})
}
