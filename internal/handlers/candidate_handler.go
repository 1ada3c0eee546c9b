package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-intake/internal/models"
	"alfredoptarigan/resume-intake/internal/repositories"
)

type CandidateHandler struct {
	repo repositories.CandidateRepository
}

func NewCandidateHandler(repo repositories.CandidateRepository) *CandidateHandler {
	return &CandidateHandler{repo: repo}
}

// HandleList handles GET /candidates
func (h *CandidateHandler) HandleList(c *fiber.Ctx) error {
	candidates, err := h.repo.List(c.UserContext())
	if err != nil {
		return err
	}

	summaries := make([]models.CandidateSummary, 0, len(candidates))
	for _, candidate := range candidates {
		summaries = append(summaries, models.NewCandidateSummary(candidate))
	}

	return c.JSON(models.CandidateListResponse{
		Count:      len(summaries),
		Candidates: summaries,
	})
}

// HandleGet handles GET /candidate/:id
func (h *CandidateHandler) HandleGet(c *fiber.Ctx) error {
	candidate, err := h.repo.FindByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}

	return c.JSON(candidate)
}
