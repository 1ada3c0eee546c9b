package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"alfredoptarigan/resume-intake/internal/middleware"
)

// multipartOverhead leaves room for form boundaries and headers on top of the file itself.
const multipartOverhead = 1 << 20

type AppConfig struct {
	AppName         string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	MaxFileSize     int64
	RateLimitMax    int
	RateLimitWindow time.Duration
}

type Handlers struct {
	Upload     *UploadHandler
	Candidates *CandidateHandler
	Ask        *AskHandler
	Health     *HealthHandler
}

// NewApp builds the Fiber app with middleware and every route registered.
func NewApp(cfg AppConfig, h Handlers) *fiber.App {
	if cfg.AppName == "" {
		cfg.AppName = "Resume Intake API"
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		BodyLimit:    int(cfg.MaxFileSize) + multipartOverhead,
		ErrorHandler: ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(healthcheck.New(healthcheck.Config{
		LivenessProbe: func(c *fiber.Ctx) bool {
			return true
		},
		LivenessEndpoint: "/livez",
		ReadinessProbe: func(c *fiber.Ctx) bool {
			return h.Health.Ready(c.UserContext())
		},
		ReadinessEndpoint: "/readyz",
	}))

	RegisterRoutes(app, cfg, h)
	return app
}

func RegisterRoutes(app *fiber.App, cfg AppConfig, h Handlers) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": cfg.AppName,
			"version": "1.0.0",
			"endpoints": []string{
				"POST /upload",
				"GET /candidates",
				"GET /candidate/:id",
				"POST /ask/:id",
				"GET /health",
			},
		})
	})

	app.Get("/health", h.Health.HandleHealth)

	app.Post("/upload", middleware.RateLimiter(cfg.RateLimitMax, cfg.RateLimitWindow), h.Upload.HandleUpload)
	app.Get("/candidates", h.Candidates.HandleList)
	app.Get("/candidate/:id", h.Candidates.HandleGet)
	app.Post("/ask/:id", middleware.RateLimiter(cfg.RateLimitMax, cfg.RateLimitWindow), h.Ask.HandleAsk)
}
