package core

import (
	"context"
	"time"

	"github.com/joseph-ayodele/specs-importer/constants"
	"github.com/joseph-ayodele/specs-importer/internal/common"
	"github.com/joseph-ayodele/specs-importer/internal/entity"
	"github.com/joseph-ayodele/specs-importer/internal/ocr"
)

// BatchEvent reports progress for one document of a batch.
type BatchEvent struct {
	Index   int // 0-based position in the batch
	Total   int
	File    string
	Status  constants.ImportStatus
	Message string
	Spec    *entity.ProductSpec // set on success
	Err     error               // set on error
}

// ParseBatch parses docs one after another. Each document yields a processing event
// followed by a success or error event. A failing document never stops the batch.
// The channel is closed after the last document, or early when ctx is cancelled.
func (p *Processor) ParseBatch(ctx context.Context, docs []ocr.Document, catalogue []entity.CatalogueEntry, customInstruction string) <-chan BatchEvent {
	events := make(chan BatchEvent)
	go func() {
		defer close(events)
		start := time.Now()
		var ok, failed int
		for i, doc := range docs {
			if ctx.Err() != nil {
				p.logger.Warn("processor.batch.cancelled", "done", i, "total", len(docs))
				return
			}
			ev := BatchEvent{Index: i, Total: len(docs), File: doc.Name}

			ev.Status, ev.Message = constants.ImportStatusProcessing, "Starting..."
			if !send(ctx, events, ev) {
				return
			}

			spec, err := p.ParseOne(ctx, doc, catalogue, customInstruction)
			if err != nil {
				failed++
				p.logger.Error("processor.batch.document.failed", "doc", doc.Name, "index", i, "error", err)
				ev.Status, ev.Message, ev.Err = constants.ImportStatusError, common.UserMessage(err), err
			} else {
				ok++
				ev.Status, ev.Message, ev.Spec = constants.ImportStatusSuccess, "Success - Product Code: "+spec.ProductCode, spec
			}
			if !send(ctx, events, ev) {
				return
			}
		}
		p.logger.Info("processor.batch.done",
			"total", len(docs),
			"ok", ok,
			"failed", failed,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	}()
	return events
}

func send(ctx context.Context, ch chan<- BatchEvent, ev BatchEvent) bool {
	select {
	case ch <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
