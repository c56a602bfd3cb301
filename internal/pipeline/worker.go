package pipeline

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
)

// Worker processes a single document job.
type Worker struct {
	proc *Processor
	log  *slog.Logger
}

func NewWorker(proc *Processor, log *slog.Logger) *Worker {
	return &Worker{proc: proc, log: log}
}

// Process runs the pipeline for a job and removes its upload afterwards.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)
	defer removeUpload(job.path, log)

	job.SetStatus(StatusRunning)
	result, err := w.proc.Process(ctx, job.path, job.opts, job.SetProgress)
	if err != nil {
		job.Fail(err)
		return
	}

	// The stored copy lives under a temp name; report what the client sent.
	result.FileName = job.Filename
	result.FilePath = ""
	job.Complete(result)
	log.Info("job completed", "sections", len(result.Sections), "type", result.DocumentType)
}

// removeUpload deletes the upload and, when it sits in its own temp
// directory, that directory too.
func removeUpload(path string, log *slog.Logger) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Warn("remove upload failed", "path", path, "error", err)
	}
	// Only succeeds when the directory is empty.
	_ = os.Remove(filepath.Dir(path))
}
