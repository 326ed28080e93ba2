package main

import (
	"context"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joseph-ayodele/specs-importer/internal/async"
	"github.com/joseph-ayodele/specs-importer/internal/common"
	"github.com/joseph-ayodele/specs-importer/internal/core"
	"github.com/joseph-ayodele/specs-importer/internal/llm/provider"
	"github.com/joseph-ayodele/specs-importer/internal/ocr"
	repo "github.com/joseph-ayodele/specs-importer/internal/repository"
	"github.com/joseph-ayodele/specs-importer/internal/server"
	"github.com/joseph-ayodele/specs-importer/internal/templates"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

func main() {
	// Setup structured logger that outputs messages with variables but no time/level
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey || a.Key == slog.LevelKey {
				return slog.Attr{}
			}
			return a
		},
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}
	addr := cfg.Server.GRPCAddr
	if !strings.HasPrefix(addr, ":") && !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repo.Open(ctx, repo.ConfigFrom(cfg.Database), logger)
	if err != nil {
		logger.Error("failed to open database", "error", err, "driver", cfg.Database.Driver)
		os.Exit(1)
	}
	defer db.Close(logger)

	if err := db.HealthCheck(ctx, 5*time.Second, logger); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	if err := db.Migrate(ctx); err != nil {
		logger.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	store, err := templates.Load(cfg.Templates.Path)
	if err != nil {
		logger.Error("failed to load templates", "error", err, "path", cfg.Templates.Path)
		os.Exit(1)
	}
	llmClient, err := provider.New(cfg.LLM, logger)
	if err != nil {
		logger.Error("failed to build llm client", "error", err)
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
	queue := async.NewBatchQueue(importer, logger,
		async.WithQueueSize(64),
		async.WithBatchTimeout(time.Hour),
	)

	svc := server.NewSpecImporterService(proc, queue, repo.NewCatalogueRepository(db, logger), store, logger)
	grpcServer, healthServer := server.NewGRPCServer(svc, logger)
	// Reflection for grpcurl
	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		logger.Error("failed to listen on address", "addr", addr, "error", err)
		os.Exit(1)
	}
	logger.Info("specsd listening", "addr", addr, "llm_provider", cfg.LLM.Provider, "db_driver", cfg.Database.Driver)
	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			slog.Error("gRPC serve error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	healthServer.SetServingStatus(server.ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	queue.Shutdown(shutdownCtx)
	grpcServer.GracefulStop()
}
