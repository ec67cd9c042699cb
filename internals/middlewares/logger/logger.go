package logger

import (
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

// LoggerMiddleware writes one access line per request. Health probes and
// the pending-step SSE stream are skipped, the stream would only log on close.
func LoggerMiddleware() fiber.Handler {
	return logger.New(logger.Config{
		Next: func(c *fiber.Ctx) bool {
			p := c.Path()
			return p == "/health" || p == "/api/stagiaire/pending-step/stream"
		},
		Output:     os.Stdout,
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "Europe/Paris",
		Format:     "[${time}] ${ip} ${method} ${path} ${status} ${latency} role=${locals:userRole} user=${locals:user_id}\n",
	})
}
