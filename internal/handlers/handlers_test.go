package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/resume-intake/internal/apperror"
	"alfredoptarigan/resume-intake/internal/models"
)

func TestUploadThenGetAndAsk(t *testing.T) {
	srv := newTestServer(t, 10)

	status, body := srv.upload(t, "resume.pdf", "application/pdf", fakePDF(50*1024))
	require.Equal(t, fiber.StatusCreated, status, string(body))

	uploaded := decode[models.UploadResponse](t, body)
	assert.Equal(t, "c1", uploaded.CandidateID)
	assert.Equal(t, "resume.pdf", uploaded.Filename)
	assert.Equal(t, "jane@example.com", uploaded.Summary.Email)
	assert.NotEmpty(t, uploaded.BlobURL)

	status, body = srv.get(t, "/candidate/c1")
	require.Equal(t, fiber.StatusOK, status)
	record := decode[models.Candidate](t, body)
	assert.Equal(t, "c1", record.ID)
	assert.Equal(t, "resume.pdf", record.Filename)
	assert.Equal(t, "Jane Doe", record.Fields.Name)
	assert.Equal(t, []string{"Go", "MongoDB"}, record.Fields.Skills)

	status, body = srv.ask(t, "c1", "What is the candidate's email?")
	require.Equal(t, fiber.StatusOK, status, string(body))
	answer := decode[models.AskResponse](t, body)
	assert.Equal(t, "c1", answer.CandidateID)
	assert.Equal(t, "What is the candidate's email?", answer.Question)
	assert.Contains(t, answer.Answer, "jane@example.com")
}

func TestUploadDOCX(t *testing.T) {
	srv := newTestServer(t, 10)

	status, body := srv.upload(t, "cv.docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document", fakeDOCX(2048))
	require.Equal(t, fiber.StatusCreated, status, string(body))

	id := decode[models.UploadResponse](t, body).CandidateID
	status, body = srv.get(t, "/candidate/"+id)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, id, decode[models.Candidate](t, body).ID)
}

func TestUploadRejectsInvalidFiles(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		contentType string
		content     []byte
		wantMessage string
	}{
		{"unsupported extension", "resume.exe", "application/octet-stream", []byte("MZ"), "exe"},
		{"mismatched mime", "resume.pdf", "image/png", fakePDF(1024), "image/png"},
		{"oversize", "resume.pdf", "application/pdf", fakePDF(testMaxFileSize + 1), "too large"},
		{"wrong signature", "resume.pdf", "application/pdf", []byte("plain text"), "PDF"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, 10)

			status, body := srv.upload(t, tt.filename, tt.contentType, tt.content)
			require.Equal(t, fiber.StatusBadRequest, status, string(body))

			errBody := decode[models.ErrorResponse](t, body)
			assert.Equal(t, apperror.CodeValidation, errBody.Kind)
			assert.Contains(t, errBody.Error, tt.wantMessage)
			assert.Zero(t, srv.extraction.calls)

			status, body = srv.get(t, "/candidates")
			require.Equal(t, fiber.StatusOK, status)
			assert.Equal(t, 0, decode[models.CandidateListResponse](t, body).Count)
		})
	}
}

func TestUploadRequiresFileField(t *testing.T) {
	srv := newTestServer(t, 10)

	req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	status, body := srv.do(t, req)

	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, decode[models.ErrorResponse](t, body).Error, `"file"`)
}

func TestUploadRollsBackBlobWhenInsertFails(t *testing.T) {
	srv := newTestServer(t, 10)
	srv.repo.insertErr = apperror.DocumentStoreUnavailable(errors.New("connection reset"))

	status, body := srv.upload(t, "resume.pdf", "application/pdf", fakePDF(4096))

	require.Equal(t, fiber.StatusBadGateway, status)
	errBody := decode[models.ErrorResponse](t, body)
	assert.Equal(t, apperror.CodeDocumentStoreUnavailable, errBody.Kind)
	assert.NotContains(t, errBody.Error, "connection reset")
	assert.Equal(t, 0, srv.blobs.count())

	status, body = srv.get(t, "/candidates")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 0, decode[models.CandidateListResponse](t, body).Count)
}

func TestUploadExtractionFailureStoresNothing(t *testing.T) {
	srv := newTestServer(t, 10)
	srv.extraction.err = apperror.ExtractionUnavailable(errors.New("503"))

	status, _ := srv.upload(t, "resume.pdf", "application/pdf", fakePDF(4096))

	assert.Equal(t, fiber.StatusBadGateway, status)
	assert.Equal(t, 0, srv.blobs.count())
}

func TestListCandidates(t *testing.T) {
	srv := newTestServer(t, 10)
	srv.extraction.fields.Introduction = strings.Repeat("x", 250)

	for _, name := range []string{"a.pdf", "b.pdf"} {
		status, _ := srv.upload(t, name, "application/pdf", fakePDF(1024))
		require.Equal(t, fiber.StatusCreated, status)
	}

	status, body := srv.get(t, "/candidates")
	require.Equal(t, fiber.StatusOK, status)

	list := decode[models.CandidateListResponse](t, body)
	require.Equal(t, 2, list.Count)
	require.Len(t, list.Candidates, 2)
	assert.Equal(t, "c1", list.Candidates[0].CandidateID)
	assert.Equal(t, "a.pdf", list.Candidates[0].Filename)
	assert.Equal(t, strings.Repeat("x", 200)+"...", list.Candidates[0].Introduction)
}

func TestListCandidatesEmpty(t *testing.T) {
	srv := newTestServer(t, 10)

	status, body := srv.get(t, "/candidates")

	require.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `{"count":0,"candidates":[]}`, string(body))
}

func TestGetCandidateIsStable(t *testing.T) {
	srv := newTestServer(t, 10)
	status, _ := srv.upload(t, "resume.pdf", "application/pdf", fakePDF(1024))
	require.Equal(t, fiber.StatusCreated, status)

	_, first := srv.get(t, "/candidate/c1")
	_, second := srv.get(t, "/candidate/c1")

	assert.Equal(t, first, second)
}

func TestGetUnknownCandidate(t *testing.T) {
	srv := newTestServer(t, 10)

	status, body := srv.get(t, "/candidate/missing")

	require.Equal(t, fiber.StatusNotFound, status)
	errBody := decode[models.ErrorResponse](t, body)
	assert.Equal(t, apperror.CodeNotFound, errBody.Kind)
	assert.Equal(t, fiber.StatusNotFound, errBody.Code)
}

func TestAskUnknownCandidateSkipsModel(t *testing.T) {
	srv := newTestServer(t, 10)

	status, body := srv.ask(t, "missing", "Where did they study?")

	require.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, apperror.CodeCandidateNotFound, decode[models.ErrorResponse](t, body).Kind)
	assert.Zero(t, srv.generator.callCount())
}

func TestAskRejectsBadQuestions(t *testing.T) {
	srv := newTestServer(t, 10)
	status, _ := srv.upload(t, "resume.pdf", "application/pdf", fakePDF(1024))
	require.Equal(t, fiber.StatusCreated, status)

	status, _ = srv.ask(t, "c1", "   ")
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = srv.ask(t, "c1", strings.Repeat("q", 1001))
	assert.Equal(t, fiber.StatusBadRequest, status)

	req := httptest.NewRequest(http.MethodPost, "/ask/c1", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	status, _ = srv.do(t, req)
	assert.Equal(t, fiber.StatusBadRequest, status)

	assert.Zero(t, srv.generator.callCount())
}

func TestAskModelUnavailable(t *testing.T) {
	srv := newTestServer(t, 10)
	status, _ := srv.upload(t, "resume.pdf", "application/pdf", fakePDF(1024))
	require.Equal(t, fiber.StatusCreated, status)
	srv.generator.err = apperror.New("", "upstream returned 503", apperror.ErrUpstreamUnavailable, nil)

	status, body := srv.ask(t, "c1", "Any certifications?")

	require.Equal(t, fiber.StatusBadGateway, status)
	assert.Equal(t, apperror.CodeQAUnavailable, decode[models.ErrorResponse](t, body).Kind)
}

func TestAskIsRateLimited(t *testing.T) {
	srv := newTestServer(t, 2)
	status, _ := srv.upload(t, "resume.pdf", "application/pdf", fakePDF(1024))
	require.Equal(t, fiber.StatusCreated, status)

	for i := 0; i < 2; i++ {
		status, _ = srv.ask(t, "c1", "Skills?")
		require.Equal(t, fiber.StatusOK, status)
	}

	status, body := srv.ask(t, "c1", "Skills?")
	assert.Equal(t, fiber.StatusTooManyRequests, status)
	assert.Equal(t, "RATE_LIMITED", decode[models.ErrorResponse](t, body).Kind)
	assert.Equal(t, 2, srv.generator.callCount())
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, 10)

	status, body := srv.get(t, "/health")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(body), `"healthy"`)

	status, _ = srv.get(t, "/readyz")
	assert.Equal(t, fiber.StatusOK, status)

	srv.repo.pingErr = errors.New("server selection timeout")

	status, body = srv.get(t, "/health")
	assert.Equal(t, fiber.StatusServiceUnavailable, status)
	assert.Contains(t, string(body), `"unhealthy"`)

	status, _ = srv.get(t, "/readyz")
	assert.Equal(t, fiber.StatusServiceUnavailable, status)

	status, _ = srv.get(t, "/livez")
	assert.Equal(t, fiber.StatusOK, status)
}

func TestRootListsEndpoints(t *testing.T) {
	srv := newTestServer(t, 10)

	status, body := srv.get(t, "/")

	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(body), "POST /ask/:id")
}

func TestErrorHandler(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/too-large", func(c *fiber.Ctx) error {
		return fiber.ErrRequestEntityTooLarge
	})
	app.Get("/teapot", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusTeapot, "short and stout")
	})
	app.Get("/plain", func(c *fiber.Ctx) error {
		return errors.New("dial tcp 10.0.0.3:27017: secret detail")
	})

	tests := []struct {
		path     string
		status   int
		kind     string
		contains string
	}{
		{"/too-large", fiber.StatusBadRequest, apperror.CodeValidation, "too large"},
		{"/teapot", fiber.StatusTeapot, "", "short and stout"},
		{"/plain", fiber.StatusInternalServerError, "", "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, tt.path, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)

			var body models.ErrorResponse
			require.NoError(t, jsonDecode(resp, &body))
			assert.Equal(t, tt.status, body.Code)
			assert.Equal(t, tt.kind, body.Kind)
			assert.Contains(t, body.Error, tt.contains)
			assert.NotContains(t, body.Error, "secret")
		})
	}
}
