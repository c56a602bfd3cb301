package pipeline

import "errors"

// Error kinds returned by Processor. Match them with errors.Is.
var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrExtractionFailed = errors.New("text extraction failed")
	ErrMetadataFailed   = errors.New("metadata read failed")
)

// ProcessError is the single terminal failure of a pipeline run.
type ProcessError struct {
	Kind error
	Path string
	Err  error
}

func (e *ProcessError) Error() string {
	return "failed to process PDF: " + e.Err.Error()
}

func (e *ProcessError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

func newError(kind error, path string, err error) *ProcessError {
	return &ProcessError{Kind: kind, Path: path, Err: err}
}

// Code returns a stable machine-readable code for err, suitable for the code
// field of an error response.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return "INVALID_INPUT"
	case errors.Is(err, ErrExtractionFailed):
		return "EXTRACTION_FAILED"
	case errors.Is(err, ErrMetadataFailed):
		return "METADATA_FAILED"
	default:
		return "PROCESSING_FAILED"
	}
}
