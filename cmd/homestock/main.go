package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"homestock/internal/config"
	"homestock/internal/http/handlers"
	applog "homestock/internal/log"
	"homestock/internal/repos"
	"homestock/internal/services"
	"homestock/internal/telemetry"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	logFile, err := applog.Setup(cfg.LogFile)
	if err != nil {
		log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
	} else if logFile != nil {
		defer logFile.Close()
	}

	shutdownTracing, err := telemetry.Setup("homestock", cfg.TraceStdout)
	if err != nil {
		log.Fatal(err)
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()
	if cfg.SeedDemo {
		if err := repos.SeedDemo(db); err != nil {
			log.Fatal(err)
		}
		log.Printf("[seed] demo household ready")
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler,
		BodyLimit:    cfg.BodyLimit,
	})

	// ---------- Middlewares ----------
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(applog.Timer())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(limiter.New(limiter.Config{
		Max:        cfg.RatePerMin,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/healthz"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.global.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon", "code": "rate_limited"})
		},
	}))

	deps := handlers.NewDeps(db, services.SystemClock(cfg.Location()))
	handlers.Routes(app, deps)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.InviteSweep > 0 {
		go deps.Invites.RunSweeper(ctx, cfg.InviteSweep)
	}

	go func() {
		<-ctx.Done()
		log.Printf("[server] shutting down")
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Printf("[server] listen: %v", err)
	}

	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdownTracing(flushCtx); err != nil {
		log.Printf("[warn] tracing shutdown: %v", err)
	}
}
