package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"alfredoptarigan/resume-intake/internal/repositories"
)

const pingTimeout = 3 * time.Second

type HealthHandler struct {
	repo repositories.CandidateRepository
}

func NewHealthHandler(repo repositories.CandidateRepository) *HealthHandler {
	return &HealthHandler{repo: repo}
}

// Ready reports whether the document store answers a ping.
func (h *HealthHandler) Ready(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := h.repo.Ping(ctx); err != nil {
		log.Warn().Err(err).Msg("document store ping failed")
		return false
	}
	return true
}

// HandleHealth handles GET /health
func (h *HealthHandler) HandleHealth(c *fiber.Ctx) error {
	if !h.Ready(c.UserContext()) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unhealthy",
			"time":   time.Now(),
		})
	}

	return c.JSON(fiber.Map{
		"status": "healthy",
		"time":   time.Now(),
	})
}
