package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nitishgarg26/pdf-mcq/internal/config"
	"github.com/nitishgarg26/pdf-mcq/internal/pipeline"
	"github.com/nitishgarg26/pdf-mcq/internal/segment"
)

const testKey = "test-api-key"

func newTestServer(t *testing.T) (*Server, *pipeline.Orchestrator) {
	t.Helper()
	cfg := config.Load()
	cfg.APIKey = testKey
	cfg.MaxUploadBytes = 1 << 20
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	orch := pipeline.NewOrchestrator(cfg, pipeline.Deps{}, log)
	return NewServer(orch, log, cfg), orch
}

func authGet(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", "Bearer "+testKey)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func uploadPDF(t *testing.T, s *Server, filename string, payload []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	fw.Write(payload)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/extract", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+testKey)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestHealthIsPublic(t *testing.T) {
	s, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("health status = %d", rec.Code)
	}
}

func TestAuthRequired(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/jobs", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("missing auth status = %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/jobs", nil)
	req.Header.Set("Authorization", "Bearer wrong-key")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong key status = %d", rec.Code)
	}
}

func TestExtractAcceptsPDF(t *testing.T) {
	s, orch := newTestServer(t)
	rec := uploadPDF(t, s, "exam.pdf", []byte("%PDF-1.7 test"))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	jobID, _ := resp["job_id"].(string)
	if jobID == "" {
		t.Fatal("response missing job_id")
	}
	if orch.GetJob(jobID) == nil {
		t.Error("job not registered")
	}

	status := authGet(t, s, "/api/extract/"+jobID+"/status")
	if status.Code != http.StatusOK {
		t.Errorf("status endpoint = %d", status.Code)
	}
}

func TestExtractRejectsNonPDF(t *testing.T) {
	s, _ := newTestServer(t)

	if rec := uploadPDF(t, s, "exam.txt", []byte("plain text")); rec.Code != http.StatusBadRequest {
		t.Errorf("wrong extension status = %d", rec.Code)
	}
	if rec := uploadPDF(t, s, "exam.pdf", []byte("not a pdf body")); rec.Code != http.StatusBadRequest {
		t.Errorf("bad payload status = %d", rec.Code)
	}
}

func TestExtractRejectsOversize(t *testing.T) {
	s, _ := newTestServer(t)
	big := append([]byte("%PDF-1.7 "), make([]byte, 2<<20)...)
	rec := uploadPDF(t, s, "big.pdf", big)
	if rec.Code != http.StatusRequestEntityTooLarge && rec.Code != http.StatusBadRequest {
		t.Errorf("oversize status = %d", rec.Code)
	}
}

func TestResultNotFoundAndConflict(t *testing.T) {
	s, orch := newTestServer(t)

	if rec := authGet(t, s, "/api/extract/nope/result"); rec.Code != http.StatusNotFound {
		t.Errorf("missing job status = %d", rec.Code)
	}

	job := orch.NewJob("exam.pdf", []byte("%PDF-1.7"))
	if err := orch.Submit(job); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if rec := authGet(t, s, "/api/extract/"+job.ID+"/result"); rec.Code != http.StatusConflict {
		t.Errorf("unfinished job status = %d", rec.Code)
	}
}

func TestResultWithConfidenceFilter(t *testing.T) {
	s, orch := newTestServer(t)

	job := orch.NewJob("exam.pdf", []byte("%PDF-1.7"))
	if err := orch.Submit(job); err != nil {
		t.Fatalf("submit: %v", err)
	}
	job.SetResult([]segment.Question{
		{Number: 1, Stem: "strong", Confidence: 90},
		{Number: 2, Stem: "weak", Confidence: 35},
	}, segment.Stats{TotalPages: 1, QuestionsFound: 2})
	job.SetStatus(pipeline.StatusCompleted, "done")

	rec := authGet(t, s, "/api/extract/"+job.ID+"/result?min_confidence=50")
	if rec.Code != http.StatusOK {
		t.Fatalf("result status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Questions []segment.Question `json:"questions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Questions) != 1 || resp.Questions[0].Stem != "strong" {
		t.Errorf("filtered questions = %+v", resp.Questions)
	}

	if rec := authGet(t, s, "/api/extract/"+job.ID+"/result?min_confidence=bogus"); rec.Code != http.StatusBadRequest {
		t.Errorf("bad filter status = %d", rec.Code)
	}
}

func TestXlsxAndPreview(t *testing.T) {
	s, orch := newTestServer(t)

	job := orch.NewJob("exam.pdf", []byte("%PDF-1.7"))
	orch.Submit(job)
	job.SetResult([]segment.Question{
		{Number: 1, Stem: "What is 2+2?", Options: []segment.Option{{Label: "A", Text: "4"}}, Confidence: 90},
	}, segment.Stats{TotalPages: 1, QuestionsFound: 1})
	job.SetStatus(pipeline.StatusCompleted, "done")

	xlsx := authGet(t, s, "/api/extract/"+job.ID+"/xlsx")
	if xlsx.Code != http.StatusOK {
		t.Errorf("xlsx status = %d", xlsx.Code)
	}
	if !bytes.HasPrefix(xlsx.Body.Bytes(), []byte("PK")) {
		t.Error("xlsx response is not a zip container")
	}

	preview := authGet(t, s, "/api/extract/"+job.ID+"/preview")
	if preview.Code != http.StatusOK {
		t.Errorf("preview status = %d", preview.Code)
	}
	if !bytes.Contains(preview.Body.Bytes(), []byte("What is 2+2?")) {
		t.Error("preview missing question text")
	}
}

func TestDocxMissing(t *testing.T) {
	s, orch := newTestServer(t)
	job := orch.NewJob("exam.pdf", []byte("%PDF-1.7"))
	orch.Submit(job)
	job.SetStatus(pipeline.StatusFailed, "done")

	if rec := authGet(t, s, "/api/extract/"+job.ID+"/docx"); rec.Code != http.StatusNotFound {
		t.Errorf("missing docx status = %d", rec.Code)
	}
}

func TestOCRStats(t *testing.T) {
	s, _ := newTestServer(t)
	rec := authGet(t, s, "/api/stats/ocr")
	if rec.Code != http.StatusOK {
		t.Errorf("stats status = %d", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("p95_ms")) {
		t.Errorf("stats payload = %s", rec.Body.String())
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"exam.pdf":        "exam.pdf",
		"../../etc/x.pdf": "x.pdf",
		"":                "unnamed",
	}
	for in, want := range cases {
		if got := sanitizeFilename(in); got != want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}
