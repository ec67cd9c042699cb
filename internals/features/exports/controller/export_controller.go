package controller

import (
	"bytes"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"sfformation_backend/internals/features/exports/service"
	sessionService "sfformation_backend/internals/features/sessions/service"
	stepService "sfformation_backend/internals/features/steps/service"
	helper "sfformation_backend/internals/helpers"
)

type ExportController struct {
	DB       *gorm.DB
	Workflow *stepService.Workflow
}

func NewExportController(db *gorm.DB) *ExportController {
	return &ExportController{DB: db, Workflow: stepService.NewWorkflow(db)}
}

func optionalUUIDQuery(c *fiber.Ctx, name string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, helper.NewValidationError(name + " invalide")
	}
	return &id, nil
}

func (ec *ExportController) satisfactionFilter(c *fiber.Ctx) (service.SatisfactionFilter, error) {
	var (
		f   service.SatisfactionFilter
		err error
	)
	if f.FormationID, err = optionalUUIDQuery(c, "formation_id"); err != nil {
		return f, err
	}
	if f.SessionID, err = optionalUUIDQuery(c, "session_id"); err != nil {
		return f, err
	}
	return f, nil
}

/* ===== Satisfaction ===== */

// GET /api/admin/satisfaction?formation_id=&session_id=
func (ec *ExportController) Satisfaction(c *fiber.Ctx) error {
	f, err := ec.satisfactionFilter(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	rep, err := service.BuildSatisfactionReport(c.UserContext(), ec.DB, f)
	if err != nil {
		log.Println("[ERROR] satisfaction:", err)
		return helper.JsonAppError(c, err)
	}
	return c.JSON(rep)
}

// GET /api/admin/satisfaction/export.csv
func (ec *ExportController) SatisfactionCSV(c *fiber.Ctx) error {
	f, err := ec.satisfactionFilter(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	rep, err := service.BuildSatisfactionReport(c.UserContext(), ec.DB, f)
	if err != nil {
		log.Println("[ERROR] satisfaction csv:", err)
		return helper.JsonAppError(c, err)
	}
	var buf bytes.Buffer
	if err := service.WriteSatisfactionCSV(&buf, rep.RawResponses); err != nil {
		return helper.JsonAppError(c, err)
	}
	name := fmt.Sprintf("enquete_satisfaction_%s.csv", time.Now().Format("2006-01-02"))
	return sendAttachment(c, "text/csv; charset=utf-8", name, buf.Bytes())
}

/* ===== Dossier PDF ===== */

// GET /api/admin/inscriptions/:id/export.pdf?document=
func (ec *ExportController) DossierPDF(c *fiber.Ctx) error {
	enrollmentID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	section := strings.TrimSpace(c.Query("document"))
	if !service.ValidSection(section) {
		return helper.JsonErrorCode(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "document invalide")
	}
	d, err := service.LoadDossier(c.UserContext(), ec.DB, enrollmentID)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var buf bytes.Buffer
	if err := service.RenderDossierPDF(d, section, &buf); err != nil {
		log.Printf("[ERROR] export pdf inscription=%s: %v", enrollmentID, err)
		return helper.JsonAppError(c, err)
	}
	name := "dossier_" + enrollmentID.String()
	if section != "" {
		name += "_" + section
	}
	return sendAttachment(c, "application/pdf", name+".pdf", buf.Bytes())
}

/* ===== Ledger CSV ===== */

// GET /api/admin/sessions/:id/ledger.csv
func (ec *ExportController) LedgerCSV(c *fiber.Ctx) error {
	sessionID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	sess, err := sessionService.GetSession(c.UserContext(), ec.DB, sessionID)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	snap, err := ec.Workflow.SessionSnapshot(c.UserContext(), sess)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var buf bytes.Buffer
	if err := service.WriteLedgerCSV(&buf, service.LedgerRows{
		Slots:       sess.Slots,
		Enrollments: snap.Enrollments,
		Triggers:    snap.Triggers,
		Completions: snap.Completions,
	}); err != nil {
		return helper.JsonAppError(c, err)
	}
	return sendAttachment(c, "text/csv; charset=utf-8", "journal_"+sessionID.String()+".csv", buf.Bytes())
}

func sendAttachment(c *fiber.Ctx, contentType, filename string, body []byte) error {
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(body)
}
