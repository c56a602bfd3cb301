package doctree

import "time"

// DocumentType labels a contract by its template family.
type DocumentType string

const (
	TypeECCA    DocumentType = "ECCA"
	TypeMIPA    DocumentType = "MIPA"
	TypeLLCA    DocumentType = "LLCA"
	TypeUnknown DocumentType = "UNKNOWN"
)

// Section is a node in a document outline.
type Section struct {
	ID          string     `json:"id" yaml:"id"`
	Title       string     `json:"title" yaml:"title"`
	Level       int        `json:"level" yaml:"level"`
	PageNumber  int        `json:"pageNumber" yaml:"page_number"`
	Content     string     `json:"content" yaml:"content,omitempty"`
	Subsections []*Section `json:"subsections" yaml:"subsections,omitempty"`
	Selected    bool       `json:"selected" yaml:"selected"`
}

// TOCDetectionResult carries an outline together with how it was found.
type TOCDetectionResult struct {
	Sections        []*Section `json:"sections" yaml:"sections"`
	Confidence      float64    `json:"confidence" yaml:"confidence"`
	DetectionMethod string     `json:"detectionMethod" yaml:"detection_method"`
}

// ProcessingOptions controls a single pipeline run.
type ProcessingOptions struct {
	ExtractTOC      bool `json:"extractTOC"`
	ExtractContent  bool `json:"extractContent"`
	MaxPages        int  `json:"maxPages,omitempty"` // 0 means no cap
	IncludeMetadata bool `json:"includeMetadata"`
}

// DefaultOptions mirrors what the desktop tool always asked for.
func DefaultOptions() ProcessingOptions {
	return ProcessingOptions{
		ExtractTOC:      true,
		ExtractContent:  true,
		IncludeMetadata: true,
	}
}

// Metadata describes the source file.
type Metadata struct {
	Title            string    `json:"title,omitempty" yaml:"title,omitempty"`
	Author           string    `json:"author,omitempty" yaml:"author,omitempty"`
	Subject          string    `json:"subject,omitempty" yaml:"subject,omitempty"`
	Creator          string    `json:"creator,omitempty" yaml:"creator,omitempty"`
	Producer         string    `json:"producer,omitempty" yaml:"producer,omitempty"`
	CreationDate     time.Time `json:"creationDate,omitzero" yaml:"creation_date,omitempty"`
	ModificationDate time.Time `json:"modificationDate,omitzero" yaml:"modification_date,omitempty"`
	PageCount        int       `json:"pageCount" yaml:"page_count"`
	FileSize         int64     `json:"fileSize" yaml:"file_size"`
}

// Result is the full output of processing one document.
type Result struct {
	FileName        string       `json:"fileName" yaml:"file_name"`
	FilePath        string       `json:"filePath" yaml:"file_path"`
	DocumentType    DocumentType `json:"documentType" yaml:"document_type"`
	Sections        []*Section   `json:"sections" yaml:"sections"`
	TotalPages      int          `json:"totalPages" yaml:"total_pages"`
	ProcessingTime  int64        `json:"processingTime" yaml:"processing_time"`   // milliseconds
	Confidence      float64      `json:"confidence" yaml:"confidence"`
	DetectionMethod string       `json:"detectionMethod" yaml:"detection_method"`
	Metadata        Metadata     `json:"metadata" yaml:"metadata"`
}

// ExportData is what the spreadsheet exporter consumes.
type ExportData struct {
	FileName     string       `json:"fileName"`
	DocumentType DocumentType `json:"documentType"`
	Sections     []*Section   `json:"sections"`
	ExportDate   time.Time    `json:"exportDate"`
}

// ProcessingStage names a step of the pipeline for progress reporting.
type ProcessingStage string

const (
	StageInitializing      ProcessingStage = "INITIALIZING"
	StageExtractingText    ProcessingStage = "EXTRACTING_TEXT"
	StageDetectingTOC      ProcessingStage = "DETECTING_TOC"
	StageParsingSections   ProcessingStage = "PARSING_SECTIONS"
	StageExtractingContent ProcessingStage = "EXTRACTING_CONTENT"
	StageCompleted         ProcessingStage = "COMPLETED"
	StageError             ProcessingStage = "ERROR"
)

// Progress is a point-in-time report of where a run is.
type Progress struct {
	Stage       ProcessingStage `json:"stage"`
	Progress    int             `json:"progress"` // percent, 0-100
	Message     string          `json:"message"`
	CurrentPage int             `json:"currentPage,omitempty"`
	TotalPages  int             `json:"totalPages,omitempty"`
}

// ErrorResult is the wire shape of a failed request.
type ErrorResult struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}
