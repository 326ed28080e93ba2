package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/joseph-ayodele/specs-importer/constants"
	"github.com/joseph-ayodele/specs-importer/internal/common"
	"github.com/joseph-ayodele/specs-importer/internal/core/assign"
	"github.com/joseph-ayodele/specs-importer/internal/core/matcher"
	"github.com/joseph-ayodele/specs-importer/internal/core/rules"
	"github.com/joseph-ayodele/specs-importer/internal/entity"
	"github.com/joseph-ayodele/specs-importer/internal/llm"
	"github.com/joseph-ayodele/specs-importer/internal/ocr"
)

// TextExtractor is the text acquisition stage; *ocr.Extractor satisfies it.
type TextExtractor interface {
	Extract(ctx context.Context, doc ocr.Document) (ocr.ExtractionResult, error)
}

// Processor coordinates text acquisition, structured extraction, matching and auto-assign.
type Processor struct {
	logger    *slog.Logger
	text      TextExtractor
	extractor llm.StructuredExtractor
	now       func() time.Time
}

func NewProcessor(logger *slog.Logger, text TextExtractor, extractor llm.StructuredExtractor) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		logger:    logger,
		text:      text,
		extractor: extractor,
		now:       time.Now,
	}
}

// ParseOne turns one document into a ProductSpec matched against catalogue.
// Errors carry common.ErrExtraction, common.ErrStructureParse or common.ErrTransport.
func (p *Processor) ParseOne(ctx context.Context, doc ocr.Document, catalogue []entity.CatalogueEntry, customInstruction string) (*entity.ProductSpec, error) {
	start := time.Now()

	res, err := p.text.Extract(ctx, doc)
	if err != nil {
		p.logger.Error("processor.text.failed", "doc", doc.Name, "error", err)
		if !errors.Is(err, common.ErrExtraction) {
			err = common.NewExtractionError("text acquisition failed", err)
		}
		return nil, err
	}
	p.logger.Debug("processor.text.ok",
		"doc", doc.Name,
		"method", res.Method,
		"pages", res.Pages,
		"chars", len(res.Text),
		"warnings", len(res.Warnings),
	)

	out, _, err := p.extractor.ExtractStructured(ctx, llm.ExtractRequest{Text: res.Text, CustomInstruction: customInstruction})
	if err != nil {
		p.logger.Error("processor.extract.failed", "doc", doc.Name, "error", err)
		if !errors.Is(err, common.ErrStructureParse) && !errors.Is(err, common.ErrTransport) {
			err = common.NewTransportError("structured extraction failed", err)
		}
		return nil, err
	}
	if out == nil {
		return nil, common.NewStructureParseError("extraction returned no structure", nil)
	}

	header := out.Header.WithDefaults(p.now())
	spec := &entity.ProductSpec{
		ProductCode:     header.ProductCode,
		ProductName:     header.ProductName,
		MaterialType:    header.MaterialType,
		Version:         header.Version,
		EffectiveDate:   header.EffectiveDate,
		PackDescription: header.PackDescription,
		Tests:           assign.AutoAssign(BuildTests(out.Rows, catalogue), catalogue),
	}

	matched, low, unmatched := spec.MatchCounts()
	p.logger.Info("processor.parse.ok",
		"doc", doc.Name,
		"batch_id", common.BatchIDFromContext(ctx),
		"product_code", spec.ProductCode,
		"tests", len(spec.Tests),
		"matched", matched,
		"low_confidence", low,
		"unmatched", unmatched,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return spec, nil
}

// BuildTests converts extracted rows into test items. Rows without code and description
// are skipped but still consume an index.
func BuildTests(rows []entity.ParsedLine, catalogue []entity.CatalogueEntry) []entity.TestItem {
	items := make([]entity.TestItem, 0, len(rows))
	for i, row := range rows {
		if row.IsBlank() {
			continue
		}
		items = append(items, buildTest(i, row, catalogue))
	}
	return items
}

func buildTest(index int, row entity.ParsedLine, catalogue []entity.CatalogueEntry) entity.TestItem {
	interp := rules.Interpret(row.LimitText())
	res, ok := matcher.Match(row, catalogue)
	confidence := 0
	if ok {
		confidence = res.Confidence
	}
	status := matcher.StatusFor(confidence, ok)

	item := entity.TestItem{
		ID:                   fmt.Sprintf("imported-%d-%s", index, uuid.NewString()),
		Order:                (index + 1) * 10,
		MatchStatus:          status,
		ConfidenceScore:      confidence,
		Suggestions:          []entity.Suggestion{},
		Description:          row.RawDescription,
		Rule:                 interp.Rule,
		Min:                  interp.Min,
		Max:                  interp.Max,
		TextSpec:             interp.TextSpec,
		ReportedNameAnalysis: row.RawDescription,
		CLitReference:        row.RawReference,
		Stage:                row.RawStage,
	}
	if status != constants.MatchStatusMatched {
		item.Suggestions = matcher.Suggest(row, catalogue)
	}

	if ok {
		e := res.Entry
		item.TestCode = e.TestCode
		item.Analysis = e.Analysis
		item.Component = e.Component
		item.Units = e.Units
		item.Category = e.Category
	}
	item.TestCode = firstNonEmpty(item.TestCode, row.RawTestCode, fmt.Sprintf("%s%d", constants.UnmatchedCodePrefix, index))
	item.Analysis = firstNonEmpty(item.Analysis, row.RawDescription, constants.UnmatchedAnalysis)
	item.Component = firstNonEmpty(item.Component, constants.NoComponent)
	item.Units = firstNonEmpty(item.Units, constants.NoUnits)
	item.Category = firstNonEmpty(item.Category, constants.Uncategorized)
	return item
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
