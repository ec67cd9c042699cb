package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	exportController "sfformation_backend/internals/features/exports/controller"
)

func ExportAdminRoutes(admin fiber.Router, db *gorm.DB) {
	ctrl := exportController.NewExportController(db)

	admin.Get("/satisfaction", ctrl.Satisfaction)
	admin.Get("/satisfaction/export.csv", ctrl.SatisfactionCSV)
	admin.Get("/inscriptions/:id/export.pdf", ctrl.DossierPDF)
	admin.Get("/sessions/:id/ledger.csv", ctrl.LedgerCSV)
}
