package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/tocgest/internal/doctree"
	"github.com/dgallion1/tocgest/internal/export"
	"github.com/dgallion1/tocgest/internal/pipeline"
)

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	// Limit total request size; extra 1MB for form overhead.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxFileBytes+1024*1024)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, http.StatusRequestEntityTooLarge, codeTooLarge, s.sizeMessage())
			return
		}
		jsonError(w, http.StatusBadRequest, codeBadRequest, "invalid multipart form: "+err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, http.StatusBadRequest, codeBadRequest, "file is required: "+err.Error())
		return
	}
	defer file.Close()

	opts, err := s.formOptions(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxFileBytes+1))
	if err != nil {
		jsonError(w, http.StatusInternalServerError, codeInternal, "failed to read file")
		return
	}
	if int64(len(data)) > s.cfg.MaxFileBytes {
		jsonError(w, http.StatusRequestEntityTooLarge, codeTooLarge, s.sizeMessage())
		return
	}

	filename := sanitizeFilename(header.Filename)
	path, err := stageUpload(filename, data)
	if err != nil {
		s.log.Error("stage upload failed", "error", err)
		jsonError(w, http.StatusInternalServerError, codeInternal, "failed to store upload")
		return
	}

	// Reject bad input now rather than after a queue round trip.
	if err := s.orchestrator.Processor().Validate(path); err != nil {
		os.RemoveAll(filepath.Dir(path))
		processError(w, err)
		return
	}

	job := pipeline.NewJob(filename, path, opts)
	job.ContentHash = pipeline.ContentHashHex(data)
	if err := s.orchestrator.Submit(job); err != nil {
		os.RemoveAll(filepath.Dir(path))
		jsonError(w, http.StatusServiceUnavailable, codeUnavailable, err.Error())
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":   job.ID,
		"status":   pipeline.StatusQueued,
		"poll_url": fmt.Sprintf("/api/documents/%s", job.ID),
	})
}

func (s *Server) sizeMessage() string {
	return fmt.Sprintf("file size exceeds maximum allowed size of %dMB", s.cfg.MaxFileBytes/(1024*1024))
}

// formOptions applies optional form overrides to the configured defaults.
func (s *Server) formOptions(r *http.Request) (doctree.ProcessingOptions, error) {
	opts := s.cfg.Options()
	for _, f := range []struct {
		key string
		dst *bool
	}{
		{"extract_content", &opts.ExtractContent},
		{"include_metadata", &opts.IncludeMetadata},
	} {
		if v := r.FormValue(f.key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return opts, fmt.Errorf("invalid %s: %q", f.key, v)
			}
			*f.dst = b
		}
	}
	if v := r.FormValue("max_pages"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return opts, fmt.Errorf("invalid max_pages: %q", v)
		}
		opts.MaxPages = n
	}
	return opts, nil
}

// stageUpload writes data into a fresh temp directory under its original
// name, so the processor sees the real base name and extension.
func stageUpload(filename string, data []byte) (string, error) {
	dir, err := os.MkdirTemp("", "tocgest-upload-*")
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		os.RemoveAll(dir)
		return "", err
	}
	return path, nil
}

func (s *Server) job(w http.ResponseWriter, r *http.Request) *pipeline.Job {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, http.StatusNotFound, codeNotFound, "job not found")
	}
	return job
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	job := s.job(w, r)
	if job == nil {
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

// finishedResult writes an error response and returns nil unless the job
// completed.
func (s *Server) finishedResult(w http.ResponseWriter, job *pipeline.Job) *doctree.Result {
	snap := job.Snapshot()
	switch snap.Status {
	case pipeline.StatusCompleted:
		return job.Result()
	case pipeline.StatusFailed:
		msg := "processing failed"
		if len(snap.Errors) > 0 {
			msg = snap.Errors[len(snap.Errors)-1]
		}
		jsonError(w, statusForCode(snap.ErrorCode), snap.ErrorCode, msg)
	default:
		jsonError(w, http.StatusConflict, codeConflict,
			fmt.Sprintf("job is %s (%s, %d%%)", snap.Status, snap.Progress.Stage, snap.Progress.Progress))
	}
	return nil
}

func (s *Server) handleJobResult(w http.ResponseWriter, r *http.Request) {
	job := s.job(w, r)
	if job == nil {
		return
	}
	if result := s.finishedResult(w, job); result != nil {
		writeJSON(w, http.StatusOK, result)
	}
}

type jobExportRequest struct {
	SectionIDs []string `json:"section_ids"`
	Layout     string   `json:"layout"`
}

func (s *Server) handleJobExport(w http.ResponseWriter, r *http.Request) {
	job := s.job(w, r)
	if job == nil {
		return
	}

	var req jobExportRequest
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		jsonError(w, http.StatusBadRequest, codeBadRequest, "invalid JSON: "+err.Error())
		return
	}
	layout, err := export.ParseLayout(req.Layout)
	if err != nil {
		jsonError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	result := s.finishedResult(w, job)
	if result == nil {
		return
	}

	// Selection is applied to a copy; the stored result never changes.
	sections := doctree.Clone(result.Sections)
	data := doctree.ExportData{
		FileName:     result.FileName,
		DocumentType: result.DocumentType,
		Sections:     sections,
	}
	write := s.exporter.Write
	if len(req.SectionIDs) > 0 {
		doctree.SelectAll(sections, false)
		for _, id := range req.SectionIDs {
			if !doctree.SetSelected(sections, id, true) {
				jsonError(w, http.StatusBadRequest, codeBadRequest, "unknown section id: "+id)
				return
			}
		}
		write = s.exporter.WriteSelected
	}

	xlsxHeaders(w, result.FileName)
	if err := write(w, data, layout); err != nil {
		s.log.Error("export failed", "job_id", job.ID, "error", err)
	}
}
