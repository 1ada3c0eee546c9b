package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-intake/internal/apperror"
	"alfredoptarigan/resume-intake/internal/models"
	"alfredoptarigan/resume-intake/internal/repositories"
	"alfredoptarigan/resume-intake/internal/services"
)

type AskHandler struct {
	repo repositories.CandidateRepository
	qa   services.QAService
}

func NewAskHandler(repo repositories.CandidateRepository, qa services.QAService) *AskHandler {
	return &AskHandler{
		repo: repo,
		qa:   qa,
	}
}

// HandleAsk handles POST /ask/:id
func (h *AskHandler) HandleAsk(c *fiber.Ctx) error {
	var req models.AskRequest
	if err := c.BodyParser(&req); err != nil {
		return apperror.Validation("invalid request payload")
	}

	question, err := services.ValidateQuestion(req.Question)
	if err != nil {
		return err
	}

	id := c.Params("id")
	candidate, err := h.repo.FindByID(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return apperror.CandidateNotFound(id, err)
		}
		return err
	}

	answer, err := h.qa.Answer(c.UserContext(), candidate, question)
	if err != nil {
		return err
	}

	return c.JSON(models.AskResponse{
		CandidateID: candidate.ID,
		Question:    question,
		Answer:      answer,
	})
}
