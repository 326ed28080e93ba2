package core

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/joseph-ayodele/specs-importer/constants"
	"github.com/joseph-ayodele/specs-importer/internal/common"
	"github.com/joseph-ayodele/specs-importer/internal/entity"
	"github.com/joseph-ayodele/specs-importer/internal/llm"
	"github.com/joseph-ayodele/specs-importer/internal/ocr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type textFunc func(ctx context.Context, doc ocr.Document) (ocr.ExtractionResult, error)

func (f textFunc) Extract(ctx context.Context, doc ocr.Document) (ocr.ExtractionResult, error) {
	return f(ctx, doc)
}

func passThrough() TextExtractor {
	return textFunc(func(_ context.Context, doc ocr.Document) (ocr.ExtractionResult, error) {
		if strings.TrimSpace(doc.Text) == "" {
			return ocr.ExtractionResult{}, common.NewExtractionError("document is empty", nil)
		}
		return ocr.ExtractionResult{Text: doc.Text, Method: ocr.MethodText, Pages: 1}, nil
	})
}

func fixed(out *llm.Extraction) llm.StructuredExtractor {
	return llm.ExtractorFunc(func(context.Context, llm.ExtractRequest) (*llm.Extraction, []byte, error) {
		return out, nil, nil
	})
}

func newTestProcessor(text TextExtractor, ex llm.StructuredExtractor) *Processor {
	p := NewProcessor(slog.New(slog.NewTextHandler(io.Discard, nil)), text, ex)
	p.now = func() time.Time { return time.UnixMilli(1718000012345).UTC() }
	return p
}

func phCatalogue() []entity.CatalogueEntry {
	return []entity.CatalogueEntry{
		{ID: "c1", TestCode: "APP01", Analysis: "Appearance", Component: "Visual", Units: "-", Category: "Physical"},
		{ID: "c2", TestCode: "PH01", Analysis: "pH", Component: "pH value", Units: "pH", Category: "Chemical", Synonyms: "Acidity"},
	}
}

func TestParseOneAcidityScenario(t *testing.T) {
	ex := fixed(&llm.Extraction{
		Header: entity.Header{ProductCode: "P-100", ProductName: "Vit D caps"},
		Rows:   []entity.ParsedLine{{RawDescription: "Acidity test", RawLimit: "7.2 - 7.6"}},
	})
	p := newTestProcessor(passThrough(), ex)

	spec, err := p.ParseOne(context.Background(), ocr.Document{Name: "a.txt", Text: "Acidity test 7.2 - 7.6"}, phCatalogue(), "")
	require.NoError(t, err)
	require.Len(t, spec.Tests, 1)

	got := spec.Tests[0]
	assert.Equal(t, constants.MatchStatusLowConfidence, got.MatchStatus)
	assert.Equal(t, 70, got.ConfidenceScore)
	assert.Equal(t, constants.RuleRange, got.Rule)
	assert.Equal(t, "7.2", got.Min)
	assert.Equal(t, "7.6", got.Max)
	assert.Equal(t, "PH01", got.TestCode)
	assert.Equal(t, "pH", got.Analysis)
	assert.Equal(t, "Acidity test", got.ReportedNameAnalysis)
	assert.Equal(t, 10, got.Order)
	assert.True(t, strings.HasPrefix(got.ID, "imported-0-"))
	require.NotEmpty(t, got.Suggestions)
	assert.Equal(t, "c2", got.Suggestions[0].ID)
}

func TestParseOneEmptyExtractionUsesHeaderDefaults(t *testing.T) {
	p := newTestProcessor(passThrough(), fixed(&llm.Extraction{}))

	spec, err := p.ParseOne(context.Background(), ocr.Document{Name: "a.txt", Text: "hello"}, nil, "")
	require.NoError(t, err)
	assert.Equal(t, "DRAFT-2345", spec.ProductCode)
	assert.Equal(t, constants.DefaultProductName, spec.ProductName)
	assert.Equal(t, constants.DefaultVersion, spec.Version)
	assert.Equal(t, constants.DefaultMaterialType, spec.MaterialType)
	assert.Equal(t, "2024-06-10", spec.EffectiveDate)
	assert.Empty(t, spec.Tests)
}

func TestParseOneRowDefaultsAndSkips(t *testing.T) {
	ex := fixed(&llm.Extraction{Rows: []entity.ParsedLine{
		{RawDescription: "Zinc content", RawTextSpec: "Complies", RawStage: "release", RawReference: "USP 44"},
		{},
		{RawTestCode: "APP01", RawLimit: ""},
	}})
	p := newTestProcessor(passThrough(), ex)

	spec, err := p.ParseOne(context.Background(), ocr.Document{Name: "a.txt", Text: "x"}, phCatalogue(), "")
	require.NoError(t, err)
	require.Len(t, spec.Tests, 2)

	unmatched := spec.Tests[0]
	assert.Equal(t, constants.MatchStatusUnmatched, unmatched.MatchStatus)
	assert.Equal(t, 0, unmatched.ConfidenceScore)
	assert.Equal(t, "UNMATCHED-0", unmatched.TestCode)
	assert.Equal(t, "Zinc content", unmatched.Analysis)
	assert.Equal(t, constants.NoComponent, unmatched.Component)
	assert.Equal(t, constants.NoUnits, unmatched.Units)
	assert.Equal(t, constants.Uncategorized, unmatched.Category)
	assert.Equal(t, constants.RuleText, unmatched.Rule)
	assert.Equal(t, "Complies", unmatched.TextSpec)
	assert.Equal(t, "release", unmatched.Stage)
	assert.Equal(t, "USP 44", unmatched.CLitReference)

	// the blank row still consumed index 1
	matched := spec.Tests[1]
	assert.Equal(t, 30, matched.Order)
	assert.True(t, strings.HasPrefix(matched.ID, "imported-2-"))
	assert.Equal(t, constants.MatchStatusMatched, matched.MatchStatus)
	assert.Equal(t, 100, matched.ConfidenceScore)
	assert.Empty(t, matched.Suggestions)
	assert.Equal(t, constants.RuleNA, matched.Rule)
}

func TestParseOneKeepsMatchedComponent(t *testing.T) {
	catalogue := []entity.CatalogueEntry{
		{ID: "a1", TestCode: "AS-CHOL", Analysis: "Assay", Component: "Cholecalciferol"},
		{ID: "a2", TestCode: "AS-VITE", Analysis: "Assay", Component: "Vitamin E"},
	}
	ex := fixed(&llm.Extraction{Rows: []entity.ParsedLine{
		{RawDescription: "Assay", RawLimit: "95% - 110%"},
		{RawDescription: "Assay", RawLimit: "90% - 110%"},
	}})
	p := newTestProcessor(passThrough(), ex)

	spec, err := p.ParseOne(context.Background(), ocr.Document{Name: "a.txt", Text: "x"}, catalogue, "")
	require.NoError(t, err)
	require.Len(t, spec.Tests, 2)
	// both rows match the first Assay entry; auto-assign respects a component already in the group
	assert.Equal(t, "Cholecalciferol", spec.Tests[0].Component)
	assert.Equal(t, "Cholecalciferol", spec.Tests[1].Component)
	assert.Equal(t, "AS-CHOL", spec.Tests[1].TestCode)
}

func TestParseOnePassesCustomInstruction(t *testing.T) {
	var got llm.ExtractRequest
	ex := llm.ExtractorFunc(func(_ context.Context, req llm.ExtractRequest) (*llm.Extraction, []byte, error) {
		got = req
		return &llm.Extraction{}, nil, nil
	})
	p := newTestProcessor(passThrough(), ex)

	_, err := p.ParseOne(context.Background(), ocr.Document{Name: "a.txt", Text: "body"}, nil, "Tests are in table 2.")
	require.NoError(t, err)
	assert.Equal(t, "body", got.Text)
	assert.Equal(t, "Tests are in table 2.", got.CustomInstruction)
}

func TestParseOneErrorKinds(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		ex      llm.StructuredExtractor
		kind    error
		message string
	}{
		{
			name:    "no text",
			text:    "  ",
			ex:      fixed(&llm.Extraction{}),
			kind:    common.ErrExtraction,
			message: "no text extracted",
		},
		{
			name: "bad structure",
			text: "x",
			ex: llm.ExtractorFunc(func(context.Context, llm.ExtractRequest) (*llm.Extraction, []byte, error) {
				return nil, []byte("nope"), common.NewStructureParseError("response is not a JSON object", nil)
			}),
			kind:    common.ErrStructureParse,
			message: "could not extract specification structure",
		},
		{
			name: "transport",
			text: "x",
			ex: llm.ExtractorFunc(func(context.Context, llm.ExtractRequest) (*llm.Extraction, []byte, error) {
				return nil, nil, errors.New("connection refused")
			}),
			kind:    common.ErrTransport,
			message: "could not extract specification structure",
		},
		{
			name:    "nil structure",
			text:    "x",
			ex:      fixed(nil),
			kind:    common.ErrStructureParse,
			message: "could not extract specification structure",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProcessor(passThrough(), tt.ex)
			spec, err := p.ParseOne(context.Background(), ocr.Document{Name: "a.txt", Text: tt.text}, nil, "")
			assert.Nil(t, spec)
			assert.ErrorIs(t, err, tt.kind)
			assert.Equal(t, tt.message, common.UserMessage(err))
		})
	}
}

func TestParseOneDoesNotMutateCatalogue(t *testing.T) {
	catalogue := []entity.CatalogueEntry{
		{ID: "a1", TestCode: "AS-CHOL", Analysis: "Assay", Component: "Cholecalciferol"},
		{ID: "a2", TestCode: "AS-VITE", Analysis: "Assay", Component: "Vitamin E"},
	}
	before := append([]entity.CatalogueEntry(nil), catalogue...)
	ex := fixed(&llm.Extraction{Rows: []entity.ParsedLine{{RawDescription: "Assay"}, {RawDescription: "Assay"}, {RawDescription: "Assay"}}})

	_, err := newTestProcessor(passThrough(), ex).ParseOne(context.Background(), ocr.Document{Name: "a.txt", Text: "x"}, catalogue, "")
	require.NoError(t, err)
	assert.Equal(t, before, catalogue)
}
