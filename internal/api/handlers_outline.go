package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/dgallion1/tocgest/internal/classify"
	"github.com/dgallion1/tocgest/internal/doctree"
	"github.com/dgallion1/tocgest/internal/export"
	"github.com/dgallion1/tocgest/internal/outline"
)

type outlineRequest struct {
	Text           string `json:"text"`
	ExtractContent bool   `json:"extract_content"`
}

type outlineResponse struct {
	DocumentType doctree.DocumentType       `json:"document_type"`
	TOC          doctree.TOCDetectionResult `json:"toc"`
}

// handleOutline runs the classifier and hierarchy builder over raw text.
func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxFileBytes)

	var req outlineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, codeBadRequest, "invalid JSON: "+err.Error())
		return
	}

	toc := outline.Detect(req.Text)
	if req.ExtractContent {
		outline.FillContent(toc.Sections, req.Text)
	}
	writeJSON(w, http.StatusOK, outlineResponse{
		DocumentType: classify.Classify(req.Text),
		TOC:          toc,
	})
}

// handleExport turns a client-supplied ExportData body into a workbook.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	layout, err := export.ParseLayout(r.URL.Query().Get("layout"))
	if err != nil {
		jsonError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxFileBytes))
	if err != nil {
		jsonError(w, http.StatusRequestEntityTooLarge, codeTooLarge, "request body too large")
		return
	}
	if err := validateExportData(body); err != nil {
		jsonError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	var data doctree.ExportData
	if err := json.NewDecoder(bytes.NewReader(body)).Decode(&data); err != nil {
		jsonError(w, http.StatusBadRequest, codeBadRequest, fmt.Sprintf("invalid export data: %s", err))
		return
	}

	write := s.exporter.Write
	if r.URL.Query().Get("selected") == "true" {
		write = s.exporter.WriteSelected
	}
	xlsxHeaders(w, data.FileName)
	if err := write(w, data, layout); err != nil {
		s.log.Error("export failed", "file", data.FileName, "error", err)
	}
}
