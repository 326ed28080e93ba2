package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/joseph-ayodele/specs-importer/internal/async"
	"github.com/joseph-ayodele/specs-importer/internal/common"
	"github.com/joseph-ayodele/specs-importer/internal/core"
	"github.com/joseph-ayodele/specs-importer/internal/entity"
	"github.com/joseph-ayodele/specs-importer/internal/ocr"
	"github.com/joseph-ayodele/specs-importer/internal/repository"
	"github.com/joseph-ayodele/specs-importer/internal/templates"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const maxBatchDocuments = 500

type SpecImporterService struct {
	proc      *core.Processor
	queue     async.Queue
	catalogue repository.CatalogueRepository
	templates *templates.Store
	logger    *slog.Logger
}

func NewSpecImporterService(proc *core.Processor, queue async.Queue, catalogue repository.CatalogueRepository, tmpl *templates.Store, logger *slog.Logger) *SpecImporterService {
	if logger == nil {
		logger = slog.Default()
	}
	if tmpl == nil {
		tmpl = templates.Default()
	}
	return &SpecImporterService{proc: proc, queue: queue, catalogue: catalogue, templates: tmpl, logger: logger}
}

func (s *SpecImporterService) ParseDocument(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in ParseDocumentRequest
	if err := FromStruct(req, &in); err != nil {
		return nil, common.ToStatus(err)
	}
	v := common.NewValidator()
	in.Document.validate(v, "document")
	if err := common.ValidateAndReturnError(v); err != nil {
		s.logger.Error("server.parse_document.invalid", "error", v.ErrorMessage())
		return nil, err
	}

	doc, err := in.Document.toDocument()
	if err != nil {
		return nil, common.ToStatus(err)
	}
	catalogue, instruction, err := s.resolve(ctx, in.Catalogue, in.Template)
	if err != nil {
		return nil, err
	}

	spec, err := s.proc.ParseOne(ctx, doc, catalogue, instruction)
	if err != nil {
		s.logger.Warn("server.parse_document.failed", "doc", doc.Name, "request_id", common.RequestIDFromContext(ctx), "error", err)
		return nil, common.ToStatus(err)
	}
	out, err := ToStruct(spec)
	if err != nil {
		return nil, common.InternalErrorf("encode spec: %v", err)
	}
	return out, nil
}

func (s *SpecImporterService) ParseBatch(req *structpb.Struct, stream grpc.ServerStream) error {
	ctx := stream.Context()
	var in ParseBatchRequest
	if err := FromStruct(req, &in); err != nil {
		return common.ToStatus(err)
	}
	v := common.NewValidator()
	v.Check(len(in.Documents) > 0, "documents", len(in.Documents), "at least one document is required")
	v.Check(len(in.Documents) <= maxBatchDocuments, "documents", len(in.Documents), fmt.Sprintf("at most %d documents per batch", maxBatchDocuments))
	docs := make([]ocr.Document, 0, len(in.Documents))
	for i, m := range in.Documents {
		m.validate(v, fmt.Sprintf("documents[%d]", i))
		doc, err := m.toDocument()
		if err != nil {
			v.Check(false, fmt.Sprintf("documents[%d].pdfBase64", i), m.Name, "is not valid base64")
		}
		docs = append(docs, doc)
	}
	if err := common.ValidateAndReturnError(v); err != nil {
		return err
	}

	catalogue, instruction, err := s.resolve(ctx, in.Catalogue, in.Template)
	if err != nil {
		return err
	}

	batchID := uuid.New()
	events := make(chan core.BatchEvent)
	job := async.Job{BatchID: batchID, Docs: docs, Catalogue: catalogue, Instruction: instruction, Events: events}
	if err := s.queue.Enqueue(ctx, job); err != nil {
		if ctx.Err() != nil {
			return status.FromContextError(ctx.Err()).Err()
		}
		return status.Error(codes.Unavailable, err.Error())
	}
	s.logger.Info("server.parse_batch.accepted", "batch_id", batchID, "docs", len(docs))

	for ev := range events {
		msg, err := ToStruct(eventMessage(batchID.String(), ev))
		if err == nil {
			err = stream.SendMsg(msg)
		}
		if err != nil {
			s.logger.Warn("server.parse_batch.stream_closed", "batch_id", batchID, "error", err)
			go drain(events)
			return err
		}
	}
	return nil
}

// resolve picks the request catalogue or the stored snapshot, validates it, and looks up the template.
func (s *SpecImporterService) resolve(ctx context.Context, catalogue []entity.CatalogueEntry, template string) ([]entity.CatalogueEntry, string, error) {
	if len(catalogue) == 0 && s.catalogue != nil {
		stored, err := s.catalogue.List(ctx)
		if err != nil {
			s.logger.Error("server.catalogue.load_failed", "error", err)
			return nil, "", common.InternalError("load catalogue failed")
		}
		catalogue = stored
	}
	if err := core.ValidateCatalogue(catalogue); err != nil {
		return nil, "", common.ToStatus(err)
	}
	instruction, err := s.templates.Instruction(template)
	if err != nil {
		return nil, "", common.ToStatus(err)
	}
	return catalogue, instruction, nil
}

func drain(ch <-chan core.BatchEvent) {
	for range ch {
	}
}
