package async

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/joseph-ayodele/specs-importer/constants"
	"github.com/joseph-ayodele/specs-importer/internal/core"
	"github.com/joseph-ayodele/specs-importer/internal/entity"
	"github.com/joseph-ayodele/specs-importer/internal/ocr"
	"github.com/joseph-ayodele/specs-importer/internal/repository"
)

// Summary is the outcome of one batch.
type Summary struct {
	BatchID uuid.UUID
	Total   int
	OK      int
	Failed  int
	Specs   []entity.ProductSpec
}

// Importer runs a batch through the processor and records each document in the journal.
type Importer struct {
	proc    *core.Processor
	journal repository.ImportJobRepository // optional
	logger  *slog.Logger
}

func NewImporter(proc *core.Processor, journal repository.ImportJobRepository, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{proc: proc, journal: journal, logger: logger}
}

// Run parses docs sequentially. onEvent, when set, sees every batch event in order.
// Journal failures are logged and never fail the batch.
func (im *Importer) Run(ctx context.Context, batchID uuid.UUID, docs []ocr.Document, catalogue []entity.CatalogueEntry, instruction string, onEvent func(core.BatchEvent)) Summary {
	sum := Summary{BatchID: batchID, Total: len(docs)}
	jobs := map[int]uuid.UUID{}

	for ev := range im.proc.ParseBatch(ctx, docs, catalogue, instruction) {
		switch ev.Status {
		case constants.ImportStatusProcessing:
			im.start(ctx, batchID, ev, jobs)
		case constants.ImportStatusSuccess:
			sum.OK++
			sum.Specs = append(sum.Specs, *ev.Spec)
			im.finish(ctx, ev, jobs)
		case constants.ImportStatusError:
			sum.Failed++
			im.finish(ctx, ev, jobs)
		}
		if onEvent != nil {
			onEvent(ev)
		}
	}
	im.logger.Info("import.batch.done", "batch_id", batchID, "total", sum.Total, "ok", sum.OK, "failed", sum.Failed)
	return sum
}

func (im *Importer) start(ctx context.Context, batchID uuid.UUID, ev core.BatchEvent, jobs map[int]uuid.UUID) {
	if im.journal == nil {
		return
	}
	job, err := im.journal.Start(ctx, batchID, ev.File)
	if err != nil {
		im.logger.Warn("import.journal.start_failed", "file", ev.File, "error", err)
		return
	}
	jobs[ev.Index] = job.ID
}

func (im *Importer) finish(ctx context.Context, ev core.BatchEvent, jobs map[int]uuid.UUID) {
	id, ok := jobs[ev.Index]
	if im.journal == nil || !ok {
		return
	}
	var err error
	if ev.Status == constants.ImportStatusSuccess {
		err = im.journal.FinishSuccess(ctx, id, ev.Spec)
	} else {
		err = im.journal.FinishFailure(ctx, id, ev.Message)
	}
	if err != nil {
		im.logger.Warn("import.journal.finish_failed", "file", ev.File, "job_id", id, "error", err)
	}
}
