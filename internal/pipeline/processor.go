package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/dgallion1/tocgest/internal/classify"
	"github.com/dgallion1/tocgest/internal/config"
	"github.com/dgallion1/tocgest/internal/doctree"
	"github.com/dgallion1/tocgest/internal/metadata"
	"github.com/dgallion1/tocgest/internal/outline"
	"github.com/dgallion1/tocgest/internal/parser"
)

// ProgressFunc receives stage updates during Process. It is called on the
// processing goroutine and must not block.
type ProgressFunc func(doctree.Progress)

// Processor runs the single-document pipeline: validate, extract text,
// classify, build the outline, fill content and attach metadata.
type Processor struct {
	maxFileBytes      int64
	allowed           []string
	fallbackPdftotext bool
	stats             *Stats
	log               *slog.Logger
}

func NewProcessor(cfg config.Config, stats *Stats, log *slog.Logger) *Processor {
	return &Processor{
		maxFileBytes:      cfg.MaxFileBytes,
		allowed:           cfg.AllowedExtensions,
		fallbackPdftotext: cfg.PDFFallbackPdftotext,
		stats:             stats,
		log:               log,
	}
}

// Validate checks that path exists, is within the size limit and has an
// allowed extension. Failures carry ErrInvalidInput.
func (p *Processor) Validate(path string) error {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return newError(ErrInvalidInput, path, errors.New("file does not exist"))
	}
	if p.maxFileBytes > 0 && info.Size() > p.maxFileBytes {
		return newError(ErrInvalidInput, path,
			fmt.Errorf("file size exceeds maximum allowed size of %dMB", p.maxFileBytes/(1024*1024)))
	}
	ext := strings.ToLower(filepath.Ext(path))
	if !slices.Contains(p.allowed, ext) {
		if len(p.allowed) == 1 && p.allowed[0] == ".pdf" {
			return newError(ErrInvalidInput, path, errors.New("file must be a PDF"))
		}
		return newError(ErrInvalidInput, path, fmt.Errorf("unsupported file extension: %s", ext))
	}
	return nil
}

// Process runs the pipeline over the file at path. progress may be nil.
// Any failure aborts the run and is returned as a *ProcessError.
func (p *Processor) Process(ctx context.Context, path string, opts doctree.ProcessingOptions, progress ProgressFunc) (*doctree.Result, error) {
	start := time.Now()
	log := p.log.With("file", filepath.Base(path))
	report := func(stage doctree.ProcessingStage, pct int, msg string) {
		if progress != nil {
			progress(doctree.Progress{Stage: stage, Progress: pct, Message: msg})
		}
	}
	fail := func(err error) (*doctree.Result, error) {
		log.Error("processing failed", "error", err)
		if p.stats != nil {
			p.stats.RecordFailure()
		}
		report(doctree.StageError, 0, err.Error())
		return nil, err
	}

	report(doctree.StageInitializing, 0, "Validating file")
	log.Info("validating file")
	if err := p.Validate(path); err != nil {
		return fail(err)
	}

	report(doctree.StageExtractingText, 10, "Extracting text")
	text, err := p.extractText(ctx, path, opts.MaxPages)
	if err != nil {
		return fail(err)
	}
	log.Info("text extracted", "length", len(text))

	report(doctree.StageDetectingTOC, 40, "Detecting document type")
	docType := classify.Classify(text)
	log.Info("document type detected", "type", docType)

	toc := doctree.TOCDetectionResult{Sections: []*doctree.Section{}}
	if opts.ExtractTOC {
		report(doctree.StageParsingSections, 60, "Parsing sections")
		toc = outline.Detect(text)
		log.Info("outline detected", "sections", doctree.Count(toc.Sections))
	}

	if opts.ExtractContent && len(toc.Sections) > 0 {
		report(doctree.StageExtractingContent, 80, "Extracting section content")
		outline.FillContent(toc.Sections, text)
	}

	md, err := metadata.Read(path, opts.IncludeMetadata)
	if err != nil {
		return fail(newError(ErrMetadataFailed, path, err))
	}

	elapsed := time.Since(start)
	result := &doctree.Result{
		FileName:        filepath.Base(path),
		FilePath:        path,
		DocumentType:    docType,
		Sections:        toc.Sections,
		TotalPages:      md.PageCount,
		ProcessingTime:  elapsed.Milliseconds(),
		Confidence:      toc.Confidence,
		DetectionMethod: toc.DetectionMethod,
		Metadata:        md,
	}
	if p.stats != nil {
		p.stats.Record(elapsed.Milliseconds())
	}

	report(doctree.StageCompleted, 100, "Processing complete")
	log.Info("processing complete", "duration_ms", elapsed.Milliseconds())
	return result, nil
}

func (p *Processor) extractText(ctx context.Context, path string, maxPages int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", newError(ErrExtractionFailed, path, err)
	}
	pr, err := parser.ForFile(path, parser.Options{
		MaxPages:          maxPages,
		FallbackPdftotext: p.fallbackPdftotext,
	})
	if err != nil {
		return "", newError(ErrInvalidInput, path, err)
	}
	f, err := os.Open(path)
	if err != nil {
		return "", newError(ErrExtractionFailed, path, err)
	}
	defer f.Close()

	text, err := pr.Parse(f, filepath.Base(path))
	if err != nil {
		return "", newError(ErrExtractionFailed, path, err)
	}
	if err := ctx.Err(); err != nil {
		return "", newError(ErrExtractionFailed, path, err)
	}
	return text, nil
}
