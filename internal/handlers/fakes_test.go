package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/resume-intake/internal/apperror"
	"alfredoptarigan/resume-intake/internal/models"
	"alfredoptarigan/resume-intake/internal/services"
)

const testMaxFileSize = 100 * 1024

type stubExtraction struct {
	mu     sync.Mutex
	fields models.CandidateFields
	err    error
	calls  int
}

func (s *stubExtraction) Submit(_ context.Context, content []byte, _ models.DocumentType) (*models.ExtractionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &models.ExtractionResult{
		Fields:  s.fields,
		RawText: fmt.Sprintf("%d bytes of resume text", len(content)),
		Model:   "test-model",
	}, nil
}

type memoryBlobStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (m *memoryBlobStore) Store(_ context.Context, key string, content []byte, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = content
	return "https://blobs.test/" + key, nil
}

func (m *memoryBlobStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *memoryBlobStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

type memoryRepository struct {
	mu         sync.Mutex
	candidates []models.Candidate
	insertErr  error
	pingErr    error
}

func (m *memoryRepository) Insert(_ context.Context, candidate *models.Candidate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return m.insertErr
	}
	m.candidates = append(m.candidates, *candidate)
	return nil
}

func (m *memoryRepository) List(_ context.Context) ([]models.Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Candidate, len(m.candidates))
	copy(out, m.candidates)
	return out, nil
}

func (m *memoryRepository) FindByID(_ context.Context, id string) (*models.Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.candidates {
		if m.candidates[i].ID == id {
			candidate := m.candidates[i]
			return &candidate, nil
		}
	}
	return nil, apperror.NotFound(id)
}

func (m *memoryRepository) Ping(_ context.Context) error {
	return m.pingErr
}

type countingGenerator struct {
	mu     sync.Mutex
	answer string
	err    error
	calls  int
}

func (g *countingGenerator) Generate(_ context.Context, _, _ string, _ services.GenerateOptions) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	return g.answer, g.err
}

func (g *countingGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

type testServer struct {
	app        *fiber.App
	extraction *stubExtraction
	blobs      *memoryBlobStore
	repo       *memoryRepository
	generator  *countingGenerator
}

func newTestServer(t *testing.T, rateLimit int) *testServer {
	t.Helper()

	srv := &testServer{
		extraction: &stubExtraction{fields: models.CandidateFields{
			Name:         "Jane Doe",
			Email:        "jane@example.com",
			Introduction: "Backend engineer with eight years of Go.",
			Skills:       []string{"Go", "MongoDB"},
		}},
		blobs:     &memoryBlobStore{objects: map[string][]byte{}},
		repo:      &memoryRepository{},
		generator: &countingGenerator{answer: "Her email is jane@example.com."},
	}

	seq := 0
	ingestion := services.NewIngestionService(srv.extraction, srv.blobs, srv.repo, nil, services.IngestionOptions{
		MaxFileSize: testMaxFileSize,
		Now:         func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) },
		NewID: func() string {
			seq++
			return fmt.Sprintf("c%d", seq)
		},
	})
	qa := services.NewQAService(srv.generator, "test-qa-model")

	srv.app = NewApp(AppConfig{
		MaxFileSize:     testMaxFileSize,
		RateLimitMax:    rateLimit,
		RateLimitWindow: time.Minute,
	}, Handlers{
		Upload:     NewUploadHandler(ingestion, testMaxFileSize),
		Candidates: NewCandidateHandler(srv.repo),
		Ask:        NewAskHandler(srv.repo, qa),
		Health:     NewHealthHandler(srv.repo),
	})
	return srv
}

func (s *testServer) do(t *testing.T, req *http.Request) (int, []byte) {
	t.Helper()
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

func (s *testServer) upload(t *testing.T, filename, contentType string, content []byte) (int, []byte) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return s.do(t, req)
}

func (s *testServer) ask(t *testing.T, id, question string) (int, []byte) {
	t.Helper()
	payload, err := json.Marshal(models.AskRequest{Question: question})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/ask/"+id, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	return s.do(t, req)
}

func (s *testServer) get(t *testing.T, path string) (int, []byte) {
	t.Helper()
	return s.do(t, httptest.NewRequest(http.MethodGet, path, nil))
}

func fakePDF(size int) []byte {
	content := []byte("%PDF-1.4\n")
	return append(content, bytes.Repeat([]byte("a"), size-len(content))...)
}

func fakeDOCX(size int) []byte {
	content := []byte("PK\x03\x04")
	return append(content, bytes.Repeat([]byte{0}, size-len(content))...)
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(body, &out), string(body))
	return out
}

func jsonDecode(resp *http.Response, out interface{}) error {
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(out)
}
