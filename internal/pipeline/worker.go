package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dgallion1/pdfoutline/internal/convert"
	"github.com/dgallion1/pdfoutline/internal/stats"
)

// Worker converts one job at a time.
type Worker struct {
	conv  *convert.Converter
	stats *stats.Conversions
	log   *slog.Logger
}

func NewWorker(conv *convert.Converter, st *stats.Conversions, log *slog.Logger) *Worker {
	return &Worker{conv: conv, stats: st, log: log}
}

// Process runs the conversion for a job and records its outcome. The
// conversion itself is not interruptible; ctx is only checked before it
// starts.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)

	if err := ctx.Err(); err != nil {
		job.Finish(convert.Result{}, ErrStopped)
		return
	}

	job.SetStatus(StatusExtracting, "converting")
	start := time.Now()
	res, err := w.run(job)
	elapsed := time.Since(start)
	if w.stats != nil {
		w.stats.Record(elapsed, err)
	}

	if err != nil {
		log.Error("conversion failed", "kind", convert.KindOf(err), "error", err, "duration_ms", elapsed.Milliseconds())
		job.Finish(res, err)
		// Nothing to deliver; the input is no longer needed.
		if ws := job.Workspace(); ws != nil {
			if rmErr := ws.Remove(); rmErr != nil {
				log.Warn("workspace cleanup failed", "error", rmErr)
			}
		}
		return
	}

	log.Info("conversion complete",
		"lines", res.Lines,
		"rows", res.Rows,
		"merged", res.Merged,
		"mode", res.Mode,
		"depth", res.Depth,
		"duration_ms", elapsed.Milliseconds(),
	)
	job.Finish(res, nil)
}

func (w *Worker) run(job *Job) (res convert.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("conversion panicked: %v", r)
		}
	}()

	ws := job.Workspace()
	data, err := os.ReadFile(ws.InputPath())
	if err != nil {
		return convert.Result{}, fmt.Errorf("read upload: %w", err)
	}
	conv := w.conv
	if pw := job.Password(); pw != "" {
		conv = conv.WithPassword(pw)
	}
	return conv.Convert(data, ws.OutputPath())
}
