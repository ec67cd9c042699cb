package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	exportRoute "sfformation_backend/internals/features/exports/route"
	formationRoute "sfformation_backend/internals/features/formations/route"
	sessionRoute "sfformation_backend/internals/features/sessions/route"
	accountRoute "sfformation_backend/internals/features/users/user/route"
)

// AdminRoutes expects a group already guarded by auth + role admin.
func AdminRoutes(admin fiber.Router, db *gorm.DB) {
	formationRoute.FormationAdminRoutes(admin, db)
	sessionRoute.SessionAdminRoutes(admin, db)
	accountRoute.AccountAdminRoutes(admin, db)
	exportRoute.ExportAdminRoutes(admin, db)
}
