package api

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/tocgest/internal/doctree"
	"github.com/dgallion1/tocgest/internal/export"
	"github.com/dgallion1/tocgest/internal/pipeline"
)

const (
	codeBadRequest   = "BAD_REQUEST"
	codeUnauthorized = "UNAUTHORIZED"
	codeNotFound     = "NOT_FOUND"
	codeConflict     = "NOT_READY"
	codeTooLarge     = "FILE_TOO_LARGE"
	codeUnavailable  = "UNAVAILABLE"
	codeInternal     = "INTERNAL"

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, doctree.ErrorResult{
		Error:   http.StatusText(status),
		Message: msg,
		Code:    code,
	})
}

// statusForCode maps a pipeline error code to an HTTP status.
func statusForCode(code string) int {
	if code == "INVALID_INPUT" {
		return http.StatusBadRequest
	}
	return http.StatusUnprocessableEntity
}

func processError(w http.ResponseWriter, err error) {
	code := pipeline.Code(err)
	jsonError(w, statusForCode(code), code, err.Error())
}

func xlsxHeaders(w http.ResponseWriter, source string) {
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.DefaultFileName(source)+`"`)
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." || name == "/" {
		name = "unnamed"
	}
	return name
}
