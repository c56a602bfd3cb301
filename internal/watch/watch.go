// Package watch processes documents dropped into a directory and writes a
// workbook for each one.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dgallion1/tocgest/internal/doctree"
	"github.com/dgallion1/tocgest/internal/export"
	"github.com/dgallion1/tocgest/internal/parser"
	"github.com/dgallion1/tocgest/internal/pipeline"
)

// DefaultSettle is how long a file must go without writes before it is
// processed.
const DefaultSettle = 500 * time.Millisecond

type Options struct {
	OutDir     string // defaults to the watched directory
	Layout     export.Layout
	Processing doctree.ProcessingOptions
	Settle     time.Duration
}

type Watcher struct {
	proc     *pipeline.Processor
	exporter *export.Exporter
	opts     Options
	log      *slog.Logger
}

func New(proc *pipeline.Processor, exporter *export.Exporter, opts Options, log *slog.Logger) *Watcher {
	if opts.Settle <= 0 {
		opts.Settle = DefaultSettle
	}
	if opts.Layout == "" {
		opts.Layout = export.LayoutSingle
	}
	return &Watcher{proc: proc, exporter: exporter, opts: opts, log: log}
}

// Run watches dir until ctx is cancelled. Each created or rewritten file is
// processed once it settles.
func (w *Watcher) Run(ctx context.Context, dir string) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	if w.opts.OutDir == "" {
		w.opts.OutDir = dir
	}
	w.log.Info("watching directory", "dir", dir, "out", w.opts.OutDir)

	ready := make(chan string)
	pending := make(map[string]*time.Timer)
	defer func() {
		for _, t := range pending {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			if ignored(ev.Name) {
				continue
			}
			if t, ok := pending[ev.Name]; ok {
				t.Reset(w.opts.Settle)
				continue
			}
			name := ev.Name
			pending[name] = time.AfterFunc(w.opts.Settle, func() {
				select {
				case ready <- name:
				case <-ctx.Done():
				}
			})
		case path := <-ready:
			delete(pending, path)
			if _, err := w.HandleFile(ctx, path); err != nil && !errors.Is(err, pipeline.ErrInvalidInput) {
				w.log.Error("watch: processing failed", "path", path, "error", err)
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", "error", err)
		}
	}
}

// HandleFile processes one file and writes its workbook, returning the
// workbook path. Files the processor rejects return an ErrInvalidInput error.
func (w *Watcher) HandleFile(ctx context.Context, path string) (string, error) {
	if err := w.proc.Validate(path); err != nil {
		w.log.Debug("watch: skipping file", "path", path, "reason", err)
		return "", err
	}
	result, err := w.proc.Process(ctx, path, w.opts.Processing, nil)
	if err != nil {
		return "", err
	}

	outDir := w.opts.OutDir
	if outDir == "" {
		outDir = filepath.Dir(path)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	out := filepath.Join(outDir, export.DefaultFileName(path))

	data := doctree.ExportData{
		FileName:     result.FileName,
		DocumentType: result.DocumentType,
		Sections:     result.Sections,
	}
	switch w.opts.Layout {
	case export.LayoutMulti:
		err = w.exporter.ExportToMultipleSheets(data.Sections, data.DocumentType, data.FileName, out)
	default:
		err = w.exporter.ExportToExcel(data, out)
	}
	if err != nil {
		return "", err
	}
	w.log.Info("watch: exported", "source", path, "workbook", out, "type", result.DocumentType)
	return out, nil
}

// ignored filters out editor temp files and anything no parser reads,
// which includes our own .xlsx output.
func ignored(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "~$") {
		return true
	}
	return !parser.IsSupportedExtension(base)
}
