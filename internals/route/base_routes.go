package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"sfformation_backend/internals/configs"
	helper "sfformation_backend/internals/helpers"
)

type healthReport struct {
	Status        string `json:"status"`
	Database      string `json:"database"`
	Driver        string `json:"driver"`
	ServerTime    string `json:"server_time"`
	UptimeSeconds int    `json:"uptime_seconds"`
	Environment   string `json:"environment"`
}

// BaseRoutes mounts the unauthenticated root and health probes.
func BaseRoutes(app *fiber.App, db *gorm.DB) {
	app.Get("/", func(c *fiber.Ctx) error {
		return helper.JsonOK(c, "API SF Formation", fiber.Map{"version": configs.GetEnv("APP_VERSION", "dev")})
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		report := healthReport{
			Status:        "OK",
			Database:      "connectée",
			Driver:        db.Dialector.Name(),
			ServerTime:    time.Now().UTC().Format(time.RFC3339),
			UptimeSeconds: int(time.Since(startTime).Seconds()),
			Environment:   configs.GetEnv("APP_ENV", "development"),
		}
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.UserContext())
		}
		if err != nil {
			report.Status = "DOWN"
			report.Database = "injoignable"
			return c.Status(fiber.StatusServiceUnavailable).JSON(report)
		}
		return c.JSON(report)
	})
}
