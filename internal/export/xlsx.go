package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/specs-importer/internal/entity"
	"github.com/xuri/excelize/v2"
)

const (
	ProductSheet = "PRODUCT"
	SpecSheet    = "PRODUCT_SPEC"
)

var (
	productHeaders = []string{
		"Product Code",
		"Product Name",
		"Version",
		"Effective Date",
		"Material Type",
		"Pack Description",
		"Tests",
	}
	specHeaders = []string{
		"Product Code",
		"Order",
		"Test Code",
		"Analysis",
		"Component",
		"Rule",
		"Min",
		"Max",
		"Text Spec",
		"Units",
		"Category",
		"Stage",
		"Reference",
		"Match Status",
		"Confidence",
	}
)

// Service renders parsed product specifications as an XLSX workbook.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// ExportSpecsXLSX returns a workbook with one PRODUCT row per spec and one PRODUCT_SPEC row per test.
func (s *Service) ExportSpecsXLSX(ctx context.Context, specs []entity.ProductSpec) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", ProductSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SpecSheet); err != nil {
		return nil, fmt.Errorf("add sheet: %w", err)
	}
	if err := writeRow(f, ProductSheet, 1, toAny(productHeaders)); err != nil {
		return nil, err
	}
	if err := writeRow(f, SpecSheet, 1, toAny(specHeaders)); err != nil {
		return nil, err
	}

	specRow := 2
	for i, p := range specs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		err := writeRow(f, ProductSheet, i+2, []any{
			p.ProductCode, p.ProductName, p.Version, p.EffectiveDate,
			p.MaterialType, p.PackDescription, len(p.Tests),
		})
		if err != nil {
			return nil, err
		}
		for _, t := range p.Tests {
			err := writeRow(f, SpecSheet, specRow, []any{
				p.ProductCode, t.Order, t.TestCode, t.Analysis, t.Component,
				string(t.Rule), t.Min, t.Max, t.TextSpec, t.Units, t.Category,
				t.Stage, t.CLitReference, string(t.MatchStatus), t.ConfidenceScore,
			})
			if err != nil {
				return nil, err
			}
			specRow++
		}
	}

	_ = f.SetColWidth(ProductSheet, "A", "A", 20)
	_ = f.SetColWidth(ProductSheet, "B", "B", 32)
	_ = f.SetColWidth(ProductSheet, "F", "F", 60)
	_ = f.SetColWidth(SpecSheet, "C", "E", 24)
	_ = f.SetColWidth(SpecSheet, "I", "I", 40)
	_ = f.SetColWidth(SpecSheet, "N", "N", 16)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"products", len(specs),
		"tests", specRow-2,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// writeRow stops at the first cell that cannot be written.
func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, row, err)
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("%s %s: %w", sheet, cell, err)
		}
	}
	return nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
