package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/dgallion1/tocgest/internal/config"
	"github.com/dgallion1/tocgest/internal/doctree"
	"github.com/dgallion1/tocgest/internal/export"
	"github.com/dgallion1/tocgest/internal/pipeline"
)

const testKey = "test-key"

const contractText = `LIMITED LIABILITY COMPANY AGREEMENT
I. FORMATION 1
the company is formed.
A. Name 2
B. Purpose 2
II. CAPITAL 4
`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.Config{
		APIKey:            testKey,
		MaxFileBytes:      1024 * 1024,
		AllowedExtensions: []string{".txt", ".pdf"},
		ExtractContent:    true,
		IncludeMetadata:   true,
	}
	stats := pipeline.NewStats(time.Hour)
	proc := pipeline.NewProcessor(cfg, stats, log)
	orch := pipeline.NewOrchestrator(proc, 1, 4, time.Hour, log)
	orch.Start(context.Background())
	t.Cleanup(orch.Stop)
	return NewServer(orch, export.New(log), stats, log, cfg)
}

func do(t *testing.T, s *Server, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Authorization", "Bearer "+testKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func upload(t *testing.T, s *Server, filename, content string, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	fw.Write([]byte(content))
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	mw.Close()
	return do(t, s, http.MethodPost, "/api/documents", &buf, mw.FormDataContentType())
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

// waitForJob polls until the job leaves queued/running.
func waitForJob(t *testing.T, s *Server, id string) pipeline.JobSnapshot {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		rec := do(t, s, http.MethodGet, "/api/documents/"+id, nil, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 polling job, got %d", rec.Code)
		}
		snap := decode[pipeline.JobSnapshot](t, rec)
		if snap.Status == pipeline.StatusCompleted || snap.Status == pipeline.StatusFailed {
			return snap
		}
		if time.Now().After(deadline) {
			t.Fatalf("job %s still %s", id, snap.Status)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHealthIsPublic(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t)

	for _, auth := range []string{"", "Bearer wrong", "Basic " + testKey} {
		req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
		if auth != "" {
			req.Header.Set("Authorization", auth)
		}
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("auth %q: expected 401, got %d", auth, rec.Code)
		}
		if e := decode[doctree.ErrorResult](t, rec); e.Code != codeUnauthorized {
			t.Errorf("auth %q: expected code %s, got %q", auth, codeUnauthorized, e.Code)
		}
	}
}

func TestUploadAndResult(t *testing.T) {
	s := newTestServer(t)

	rec := upload(t, s, "LLC Agreement.txt", contractText, nil)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	accepted := decode[map[string]string](t, rec)
	id := accepted["job_id"]
	if id == "" || accepted["poll_url"] != "/api/documents/"+id {
		t.Fatalf("unexpected accept body %v", accepted)
	}

	snap := waitForJob(t, s, id)
	if snap.Status != pipeline.StatusCompleted {
		t.Fatalf("expected completed, got %s: %v", snap.Status, snap.Errors)
	}
	if snap.ContentHash != pipeline.ContentHashHex([]byte(contractText)) {
		t.Errorf("unexpected content hash %q", snap.ContentHash)
	}

	rec = do(t, s, http.MethodGet, "/api/documents/"+id+"/result", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	result := decode[doctree.Result](t, rec)
	if result.DocumentType != doctree.TypeLLCA {
		t.Errorf("expected LLCA, got %s", result.DocumentType)
	}
	if result.FileName != "LLC Agreement.txt" {
		t.Errorf("expected original file name, got %q", result.FileName)
	}
	if len(result.Sections) != 2 || len(result.Sections[0].Subsections) != 2 {
		t.Fatalf("unexpected outline %+v", result.Sections)
	}
	if result.Sections[0].Content != "the company is formed." {
		t.Errorf("expected filled content, got %q", result.Sections[0].Content)
	}
}

func TestUploadFormOverrides(t *testing.T) {
	s := newTestServer(t)

	rec := upload(t, s, "a.txt", contractText, map[string]string{"extract_content": "false"})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	id := decode[map[string]string](t, rec)["job_id"]
	waitForJob(t, s, id)

	result := decode[doctree.Result](t, do(t, s, http.MethodGet, "/api/documents/"+id+"/result", nil, ""))
	if c := result.Sections[0].Content; c != "" {
		t.Errorf("expected no content, got %q", c)
	}

	rec = upload(t, s, "a.txt", contractText, map[string]string{"max_pages": "-2"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad max_pages, got %d", rec.Code)
	}
}

func TestUploadRejectsBadInput(t *testing.T) {
	s := newTestServer(t)

	rec := upload(t, s, "notes.rtf", "x", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	e := decode[doctree.ErrorResult](t, rec)
	if e.Code != "INVALID_INPUT" || !strings.Contains(e.Message, "unsupported file extension: .rtf") {
		t.Errorf("unexpected error %+v", e)
	}

	rec = upload(t, s, "big.txt", strings.Repeat("x", 1024*1024+1), nil)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", rec.Code)
	}
}

func TestFailedJobResult(t *testing.T) {
	s := newTestServer(t)

	rec := upload(t, s, "broken.pdf", "definitely not a pdf", nil)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	id := decode[map[string]string](t, rec)["job_id"]
	snap := waitForJob(t, s, id)
	if snap.Status != pipeline.StatusFailed || snap.ErrorCode != "EXTRACTION_FAILED" {
		t.Fatalf("expected extraction failure, got %s/%s", snap.Status, snap.ErrorCode)
	}

	rec = do(t, s, http.MethodGet, "/api/documents/"+id+"/result", nil, "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", rec.Code)
	}
	if e := decode[doctree.ErrorResult](t, rec); !strings.HasPrefix(e.Message, "failed to process PDF: ") {
		t.Errorf("unexpected message %q", e.Message)
	}
}

func TestUnknownJob(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/api/documents/nope", "/api/documents/nope/result"} {
		if rec := do(t, s, http.MethodGet, path, nil, ""); rec.Code != http.StatusNotFound {
			t.Errorf("%s: expected 404, got %d", path, rec.Code)
		}
	}
}

func TestJobResultWhileRunning(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.Config{APIKey: testKey, MaxFileBytes: 1024, AllowedExtensions: []string{".txt"}}
	stats := pipeline.NewStats(time.Hour)
	// Never started, so submitted jobs stay queued.
	orch := pipeline.NewOrchestrator(pipeline.NewProcessor(cfg, stats, log), 1, 4, time.Hour, log)
	s := NewServer(orch, export.New(log), stats, log, cfg)

	rec := upload(t, s, "a.txt", contractText, nil)
	id := decode[map[string]string](t, rec)["job_id"]

	rec = do(t, s, http.MethodGet, "/api/documents/"+id+"/result", nil, "")
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", rec.Code)
	}
}

func TestJobExport(t *testing.T) {
	s := newTestServer(t)

	id := decode[map[string]string](t, upload(t, s, "deal.txt", contractText, nil))["job_id"]
	waitForJob(t, s, id)

	body := `{"section_ids":["section-2"],"layout":"single"}`
	rec := do(t, s, http.MethodPost, "/api/documents/"+id+"/export", strings.NewReader(body), "application/json")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Errorf("unexpected content type %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "deal-toc.xlsx") {
		t.Errorf("unexpected disposition %q", cd)
	}

	f, err := excelize.OpenReader(rec.Body)
	if err != nil {
		t.Fatalf("expected workbook: %v", err)
	}
	defer f.Close()
	rows, _ := f.GetRows(export.SheetSections)
	if len(rows) != 2 || rows[1][0] != "section-2" {
		t.Errorf("expected only section-2 exported, got %v", rows)
	}

	// Stored result is untouched by selection.
	result := decode[doctree.Result](t, do(t, s, http.MethodGet, "/api/documents/"+id+"/result", nil, ""))
	if result.Sections[0].Subsections[0].Selected {
		t.Error("expected stored result to stay unselected")
	}

	rec = do(t, s, http.MethodPost, "/api/documents/"+id+"/export", strings.NewReader(`{"section_ids":["section-99"]}`), "application/json")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown section, got %d", rec.Code)
	}
	rec = do(t, s, http.MethodPost, "/api/documents/"+id+"/export", strings.NewReader(`{"layout":"pivot"}`), "application/json")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown layout, got %d", rec.Code)
	}
}

func TestJobExportEmptyBodyMultiSheet(t *testing.T) {
	s := newTestServer(t)
	id := decode[map[string]string](t, upload(t, s, "deal.txt", contractText, nil))["job_id"]
	waitForJob(t, s, id)

	rec := do(t, s, http.MethodPost, "/api/documents/"+id+"/export", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	f, err := excelize.OpenReader(rec.Body)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, _ := f.GetRows(export.SheetSections)
	if len(rows) != 5 {
		t.Errorf("expected header + 4 sections, got %d rows", len(rows))
	}
}

func TestOutline(t *testing.T) {
	s := newTestServer(t)

	body := `{"text":"I. DEFINITIONS 1\nA. Scope 2\nII. CONTRIBUTIONS 5"}`
	rec := do(t, s, http.MethodPost, "/api/outline", strings.NewReader(body), "application/json")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decode[outlineResponse](t, rec)
	if resp.DocumentType != doctree.TypeUnknown {
		t.Errorf("expected UNKNOWN, got %s", resp.DocumentType)
	}
	if resp.TOC.Confidence != 0.85 || resp.TOC.DetectionMethod != "pattern-matching" {
		t.Errorf("unexpected detection info %+v", resp.TOC)
	}
	secs := resp.TOC.Sections
	if len(secs) != 2 || secs[0].Title != "I. DEFINITIONS 1" || len(secs[0].Subsections) != 1 || len(secs[1].Subsections) != 0 {
		t.Errorf("unexpected forest %+v", secs)
	}

	rec = do(t, s, http.MethodPost, "/api/outline", strings.NewReader(`{"text":`), "application/json")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad JSON, got %d", rec.Code)
	}
}

func TestOutlineEmptyText(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/api/outline", strings.NewReader(`{"text":""}`), "application/json")
	resp := decode[outlineResponse](t, rec)
	if resp.TOC.Sections == nil || len(resp.TOC.Sections) != 0 {
		t.Errorf("expected empty non-null sections, got %v", resp.TOC.Sections)
	}
	if resp.TOC.Confidence != 0.85 {
		t.Errorf("expected confidence still set, got %v", resp.TOC.Confidence)
	}
}

func TestExport(t *testing.T) {
	s := newTestServer(t)

	body := `{
		"fileName": "deal.pdf",
		"documentType": "ECCA",
		"exportDate": "2026-01-02T03:04:05Z",
		"sections": [
			{"id": "section-1", "title": "I. A", "level": 1, "pageNumber": 1, "selected": true,
			 "subsections": [{"id": "section-2", "title": "A. B", "level": 3, "pageNumber": 2}]}
		]
	}`
	rec := do(t, s, http.MethodPost, "/api/export?layout=multi", strings.NewReader(body), "application/json")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	f, err := excelize.OpenReader(rec.Body)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	toc, _ := f.GetRows(export.SheetTOC)
	if len(toc) != 3 {
		t.Errorf("expected header + 2 TOC rows, got %d", len(toc))
	}
	summary, _ := f.GetRows(export.SheetSummary)
	if summary[2][1] != "2026-01-02T03:04:05Z" {
		t.Errorf("expected supplied export date, got %q", summary[2][1])
	}
}

func TestExportSchemaRejects(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing fileName", `{"sections":[]}`},
		{"bad type", `{"fileName":"a","documentType":"NDA","sections":[]}`},
		{"level zero", `{"fileName":"a","sections":[{"id":"x","title":"t","level":0}]}`},
		{"nested missing id", `{"fileName":"a","sections":[{"id":"x","title":"t","level":1,"subsections":[{"title":"u","level":2}]}]}`},
		{"not json", `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/api/export", strings.NewReader(tt.body), "application/json")
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestStats(t *testing.T) {
	s := newTestServer(t)
	id := decode[map[string]string](t, upload(t, s, "a.txt", contractText, nil))["job_id"]
	waitForJob(t, s, id)

	rec := do(t, s, http.MethodGet, "/api/stats", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Processing pipeline.StatsSnapshot `json:"processing"`
		QueueDepth int                    `json:"queue_depth"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Processing.Count != 1 {
		t.Errorf("expected 1 processed document, got %d", body.Processing.Count)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct{ in, want string }{
		{"deal.pdf", "deal.pdf"},
		{"../../etc/passwd", "passwd"},
		{`C:\docs\deal.pdf`, "deal.pdf"},
		{"", "unnamed"},
		{"a..b.pdf", "a_b.pdf"},
	}
	for _, tt := range tests {
		if got := sanitizeFilename(tt.in); got != tt.want {
			t.Errorf("sanitizeFilename(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}
