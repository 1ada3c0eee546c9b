package handlers

import (
	"io"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-intake/internal/apperror"
	"alfredoptarigan/resume-intake/internal/models"
	"alfredoptarigan/resume-intake/internal/services"
)

type UploadHandler struct {
	ingestion   services.IngestionService
	maxFileSize int64
}

func NewUploadHandler(ingestion services.IngestionService, maxFileSize int64) *UploadHandler {
	return &UploadHandler{
		ingestion:   ingestion,
		maxFileSize: maxFileSize,
	}
}

// HandleUpload handles POST /upload
func (h *UploadHandler) HandleUpload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return apperror.Validation(`multipart field "file" is required`)
	}

	if fileHeader.Size > h.maxFileSize {
		return apperror.Validationf("file too large: %d bytes exceeds the %d byte limit", fileHeader.Size, h.maxFileSize)
	}

	src, err := fileHeader.Open()
	if err != nil {
		return apperror.Validation("failed to read uploaded file")
	}
	defer src.Close()

	// One byte over the limit is enough for ValidateUpload to reject it.
	content, err := io.ReadAll(io.LimitReader(src, h.maxFileSize+1))
	if err != nil {
		return apperror.Validation("failed to read uploaded file")
	}

	candidate, err := h.ingestion.Ingest(c.UserContext(), services.UploadInput{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get(fiber.HeaderContentType),
		Content:     content,
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(models.UploadResponse{
		Message:     "Resume uploaded and processed successfully",
		CandidateID: candidate.ID,
		Filename:    candidate.Filename,
		BlobURL:     candidate.BlobURL,
		Summary:     candidate.Fields,
	})
}
