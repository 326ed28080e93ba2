package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
	"github.com/joseph-ayodele/specs-importer/internal/async"
	"github.com/joseph-ayodele/specs-importer/internal/catalogue"
	"github.com/joseph-ayodele/specs-importer/internal/common"
	"github.com/joseph-ayodele/specs-importer/internal/core"
	"github.com/joseph-ayodele/specs-importer/internal/entity"
	"github.com/joseph-ayodele/specs-importer/internal/export"
	"github.com/joseph-ayodele/specs-importer/internal/ingest"
	"github.com/joseph-ayodele/specs-importer/internal/llm/provider"
	"github.com/joseph-ayodele/specs-importer/internal/ocr"
	repo "github.com/joseph-ayodele/specs-importer/internal/repository"
	"github.com/joseph-ayodele/specs-importer/internal/templates"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		inmem      = flag.Bool("inmem", false, "use in-memory SQLite database")
		dir        = flag.String("dir", "", "directory of PDF/TXT/CSV specification files (required)")
		catPath    = flag.String("catalogue", "", "catalogue JSON or YAML file; replaces the stored catalogue (optional)")
		template   = flag.String("template", "", "parsing template id or name (optional)")
		out        = flag.String("out", "", "output XLSX file path (optional, defaults to parent directory)")
		skipHidden = flag.Bool("skip-hidden", true, "skip hidden files and directories")
		watch      = flag.Bool("watch", false, "keep running and import files added to --dir")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}
	if *out == "" {
		*out = filepath.Join(filepath.Dir(filepath.Clean(*dir)), "specs.xlsx")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := common.LoadConfig()
	if *inmem {
		cfg.Database.Driver = "sqlite"
		cfg.Database.DSN = "file::memory:"
	}
	if err := cfg.Validate(); err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}

	db, err := repo.Open(ctx, repo.ConfigFrom(cfg.Database), logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close(logger)
	if err := db.Migrate(ctx); err != nil {
		logger.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	catalogueRepo := repo.NewCatalogueRepository(db, logger)
	entries, err := loadCatalogue(ctx, *catPath, catalogueRepo)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	logger.Info("catalogue loaded", "entries", len(entries))

	store, err := templates.Load(cfg.Templates.Path)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	instruction, err := store.Instruction(*template)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}

	llmClient, err := provider.New(cfg.LLM, logger)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	textExtractor := ocr.NewExtractor(ocr.Config{
		Pdftoppm:      cfg.OCR.Pdftoppm,
		Tesseract:     cfg.OCR.Tesseract,
		TesseractLang: cfg.OCR.TesseractLang,
		TessdataDir:   cfg.OCR.TessdataDir,
		Scale:         cfg.OCR.Scale,
	}, logger)
	proc := core.NewProcessor(logger, textExtractor, llmClient)
	importer := async.NewImporter(proc, repo.NewImportJobRepository(db, logger), logger)
	exporter := export.NewService(logger)

	docs, failures, stats, err := ingest.CollectDirectory(*dir, *skipHidden, logger)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	for _, f := range failures {
		fmt.Printf("[%s] %s: %v\n", "error", filepath.Base(f.Path), f.Err)
	}
	fmt.Printf("Found %d files (%d skipped)\n", stats.Matched, stats.Skipped)

	var specs []entity.ProductSpec
	if len(docs) > 0 {
		sum := importer.Run(ctx, uuid.New(), docs, entries, instruction, printEvent)
		specs = append(specs, sum.Specs...)
		printSummary(sum)
		if err := writeWorkbook(ctx, exporter, specs, *out); err != nil {
			logger.Error("failed to write workbook", "error", err, "path", *out)
			os.Exit(1)
		}
	}

	if !*watch {
		return
	}

	paths, errs, err := ingest.Watch(ctx, ingest.WatchConfig{Roots: []string{*dir}, SkipHidden: *skipHidden}, logger)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Watching %s for new files (Ctrl+C to stop)\n", *dir)
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			logger.Warn("watch error", "error", err)
		case p, ok := <-paths:
			if !ok {
				return
			}
			doc, err := ingest.ReadDocument(p)
			if err != nil {
				fmt.Printf("[%s] %s: %v\n", "error", filepath.Base(p), err)
				continue
			}
			sum := importer.Run(ctx, uuid.New(), []ocr.Document{doc}, entries, instruction, printEvent)
			if len(sum.Specs) == 0 {
				continue
			}
			specs = append(specs, sum.Specs...)
			if err := writeWorkbook(ctx, exporter, specs, *out); err != nil {
				logger.Error("failed to write workbook", "error", err, "path", *out)
			}
		}
	}
}

// loadCatalogue reads the catalogue file into the store when one is given, else uses the stored snapshot.
func loadCatalogue(ctx context.Context, path string, r repo.CatalogueRepository) ([]entity.CatalogueEntry, error) {
	if path == "" {
		entries, err := r.List(ctx)
		if err != nil {
			return nil, err
		}
		if len(entries) == 0 {
			slog.Warn("catalogue is empty; every row will be UNMATCHED")
		}
		return entries, nil
	}
	entries, err := catalogue.Load(path)
	if err != nil {
		return nil, err
	}
	if err := core.ValidateCatalogue(entries); err != nil {
		return nil, err
	}
	if err := r.ReplaceAll(ctx, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func printEvent(ev core.BatchEvent) {
	fmt.Printf("[%s] %s: %s\n", ev.Status, ev.File, ev.Message)
}

func printSummary(sum async.Summary) {
	fmt.Println("\n=== Import Summary ===")
	fmt.Printf("Batch: %s\n", sum.BatchID)
	fmt.Printf("Files: %d\n", sum.Total)
	fmt.Printf("Succeeded: %d\n", sum.OK)
	fmt.Printf("Failed: %d\n", sum.Failed)
	for _, s := range sum.Specs {
		matched, low, unmatched := s.MatchCounts()
		fmt.Printf("  %s  %-30s tests=%d matched=%d low=%d unmatched=%d\n",
			s.ProductCode, s.ProductName, len(s.Tests), matched, low, unmatched)
	}
}

func writeWorkbook(ctx context.Context, exporter *export.Service, specs []entity.ProductSpec, path string) error {
	data, err := exporter.ExportSpecsXLSX(ctx, specs)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	fmt.Printf("Wrote %d specs to %s\n", len(specs), path)
	return nil
}
