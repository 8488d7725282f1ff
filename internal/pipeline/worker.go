package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/markscan/internal/scheme"
	"github.com/dgallion1/markscan/internal/source"
	"github.com/dgallion1/markscan/internal/store"
)

// Worker processes a single indexing job.
type Worker struct {
	docs       *store.Store
	stats      *BuildStats
	log        *slog.Logger
	sourceOpts source.Options
	schemeOpts []scheme.Option
}

func NewWorker(docs *store.Store, stats *BuildStats, log *slog.Logger, sourceOpts source.Options, schemeOpts []scheme.Option) *Worker {
	return &Worker{
		docs:       docs,
		stats:      stats,
		log:        log,
		sourceOpts: sourceOpts,
		schemeOpts: schemeOpts,
	}
}

// Process loads the job's file, builds its element table and stores the result.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "doc_id", job.DocID, "filename", job.Filename)
	defer job.releaseFileData()

	// Phase 1: Load
	job.SetStatus(StatusLoading, "loading")
	l, err := source.ForFile(job.Filename, w.sourceOpts)
	if err != nil {
		log.Error("unsupported format", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "loading")
		return
	}

	markup, err := l.Load(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		log.Error("load failed", "error", err)
		job.AddError(fmt.Sprintf("load: %s", err))
		job.SetStatus(StatusFailed, "loading")
		return
	}
	job.SetMarkupBytes(len(markup))

	if err := ctx.Err(); err != nil {
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "loading")
		return
	}

	// Phase 1.5: Dedup check
	hash := ContentHashHex([]byte(markup))
	job.SetContentHash(hash)
	if existing := w.docs.ByHash(hash); existing != nil && !job.Force {
		log.Info("duplicate document, skipping", "existing_doc_id", existing.ID)
		job.SetDocID(existing.ID)
		job.SetBuilt(existing.Elements, 0)
		job.SetStatus(StatusDupSkipped, "dedup")
		return
	}

	// Phase 2: Index
	job.SetStatus(StatusIndexing, "indexing")
	opts := append([]scheme.Option{scheme.WithLogger(log)}, w.schemeOpts...)
	start := time.Now()
	s := scheme.New(markup, opts...)
	elapsed := time.Since(start).Milliseconds()
	w.stats.Record(elapsed)
	job.SetBuilt(s.Len(), elapsed)

	if s.Len() == 0 {
		log.Warn("no structural elements found")
	}

	title := job.Title
	if title == "" {
		title = job.Filename
	}
	w.docs.Put(&store.Document{
		ID:          job.DocID,
		Filename:    job.Filename,
		Title:       title,
		ContentHash: hash,
		Elements:    s.Len(),
		CreatedAt:   time.Now(),
		Scheme:      s,
	})

	log.Info("indexed document", "elements", s.Len(), "build_ms", elapsed)
	job.SetStatus(StatusCompleted, "done")
}
