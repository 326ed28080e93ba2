package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joseph-ayodele/specs-importer/internal/common"
	"github.com/joseph-ayodele/specs-importer/internal/ingest"
	"github.com/joseph-ayodele/specs-importer/internal/ocr"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if len(os.Args) != 2 {
		logger.Error("usage", "cmd", "runocr <file.pdf|file.txt>")
		os.Exit(2)
	}
	path := os.Args[1]

	doc, err := ingest.ReadDocument(path)
	if err != nil {
		logger.Error("failed to read document", "path", path, "error", err)
		os.Exit(2)
	}

	cfg := common.LoadConfig()
	extractor := ocr.NewExtractor(ocr.Config{
		Pdftoppm:      cfg.OCR.Pdftoppm,
		Tesseract:     cfg.OCR.Tesseract,
		TesseractLang: cfg.OCR.TesseractLang,
		TessdataDir:   cfg.OCR.TessdataDir,
		Scale:         cfg.OCR.Scale,
	}, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	res, err := extractor.Extract(ctx, doc)
	if err != nil {
		logger.Error("text extraction failed", "error", err, "method", res.Method)
		os.Exit(1)
	}

	logger.Info("text extraction OK",
		"method", res.Method,
		"pages", res.Pages,
		"chars", len(res.Text),
		"flagged_pages", res.FlaggedPages,
		"warnings", len(res.Warnings),
		"duration_ms", res.Duration.Milliseconds(),
	)
	fmt.Println(res.Text)
}
