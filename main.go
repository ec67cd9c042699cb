package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"

	"sfformation_backend/internals/configs"
	database "sfformation_backend/internals/databases"
	"sfformation_backend/internals/databases/migrations"
	scheduler "sfformation_backend/internals/features/users/auth/scheduler"
	helper "sfformation_backend/internals/helpers"
	middlewares "sfformation_backend/internals/middlewares"
	routes "sfformation_backend/internals/route"
)

// errorHandler renders errors that escape a handler with the usual JSON shape.
func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return helper.JsonError(c, fe.Code, fe.Message)
	}
	log.Printf("[ERROR] %s %s: %v", c.Method(), c.OriginalURL(), err)
	return helper.JsonAppError(c, err)
}

func main() {
	configs.LoadEnv()

	// Cancelled on SIGINT/SIGTERM: stops schedulers and open SSE streams.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := fiber.New(fiber.Config{
		JSONEncoder:             sonic.Marshal,
		JSONDecoder:             sonic.Unmarshal,
		DisableStartupMessage:   true,
		ErrorHandler:            errorHandler,
		ProxyHeader:             fiber.HeaderXForwardedFor,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          []string{"0.0.0.0/0"},
	})

	middlewares.SetupMiddlewares(app)

	// 🔌 DB connect + pool + warm-up
	database.ConnectDB()
	database.TunePool()
	database.WarmUpQueries()

	if configs.GetEnvBool("AUTO_MIGRATE", false) {
		if err := migrations.AutoMigrate(database.DB); err != nil {
			log.Fatalf("❌ Migration échouée: %v", err)
		}
	}

	// ⏱ scheduler once the DB is ready
	scheduler.StartBlacklistCleanupScheduler(ctx, database.DB)

	routes.SetupRoutes(ctx, app, database.DB)

	// Keep-alive & timeouts. No WriteTimeout: it would cut SSE streams.
	app.Server().ReadTimeout = 15 * time.Second
	app.Server().IdleTimeout = 90 * time.Second

	port := configs.GetEnv("PORT", "3000")

	go func() {
		log.Printf("✅ Écoute sur :%s", port)
		if err := app.Listen("0.0.0.0:" + port); err != nil {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown + close DB pool
	<-ctx.Done()
	log.Println("[INFO] Arrêt du serveur...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = app.ShutdownWithContext(shutdownCtx)

	database.Close()
}
