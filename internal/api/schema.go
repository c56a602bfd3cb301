package api

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const exportDataSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["fileName", "sections"],
  "properties": {
    "fileName": {"type": "string", "minLength": 1},
    "documentType": {"enum": ["ECCA", "MIPA", "LLCA", "UNKNOWN"]},
    "exportDate": {"type": "string"},
    "sections": {"type": "array", "items": {"$ref": "#/$defs/section"}}
  },
  "$defs": {
    "section": {
      "type": "object",
      "required": ["id", "title", "level"],
      "properties": {
        "id": {"type": "string", "minLength": 1},
        "title": {"type": "string"},
        "level": {"type": "integer", "minimum": 1},
        "pageNumber": {"type": "integer", "minimum": 1},
        "content": {"type": "string"},
        "selected": {"type": "boolean"},
        "subsections": {
          "anyOf": [
            {"type": "null"},
            {"type": "array", "items": {"$ref": "#/$defs/section"}}
          ]
        }
      }
    }
  }
}`

var exportSchema = jsonschema.MustCompileString("export-data.json", exportDataSchema)

// validateExportData checks a raw POST /api/export body against the
// ExportData schema.
func validateExportData(body []byte) error {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := exportSchema.Validate(doc); err != nil {
		return fmt.Errorf("export data does not match schema: %w", err)
	}
	return nil
}
