package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joseph-ayodele/specs-importer/internal/common"
	"github.com/joseph-ayodele/specs-importer/internal/llm"
	"github.com/joseph-ayodele/specs-importer/internal/llm/provider"
	"github.com/joseph-ayodele/specs-importer/internal/templates"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	template := flag.String("template", "", "parsing template id or name (optional)")
	flag.Parse()
	if flag.NArg() != 1 {
		logger.Error("usage: llm [--template NAME] <file.txt>")
		os.Exit(2)
	}

	text, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		logger.Error("failed to read text file", "path", flag.Arg(0), "error", err)
		os.Exit(2)
	}

	cfg := common.LoadConfig()
	if cfg.LLM.APIKey == "" {
		logger.Error("LLM_API_KEY env var is required", "provider", cfg.LLM.Provider)
		os.Exit(2)
	}
	store, err := templates.Load(cfg.Templates.Path)
	if err != nil {
		logger.Error("failed to load templates", "error", err)
		os.Exit(1)
	}
	instruction, err := store.Instruction(*template)
	if err != nil {
		logger.Error("unknown template", "template", *template, "error", err)
		os.Exit(2)
	}

	client, err := provider.New(cfg.LLM, logger)
	if err != nil {
		logger.Error("failed to build llm client", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	start := time.Now()
	ext, raw, err := client.ExtractStructured(ctx, llm.ExtractRequest{Text: string(text), CustomInstruction: instruction})
	if err != nil {
		logger.Error("structured extraction failed", "error", err, "reason", common.UserMessage(err))
		if len(raw) > 0 {
			fmt.Fprintln(os.Stderr, string(raw))
		}
		os.Exit(1)
	}
	logger.Info("structured extraction OK",
		"provider", cfg.LLM.Provider,
		"model", cfg.LLM.Model,
		"rows", len(ext.Rows),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ext); err != nil {
		logger.Error("encode result", "error", err)
		os.Exit(1)
	}
	fmt.Print(buf.String())
}
