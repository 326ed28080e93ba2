package provider

import (
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/specs-importer/internal/common"
	"github.com/joseph-ayodele/specs-importer/internal/llm"
	"github.com/joseph-ayodele/specs-importer/internal/llm/anthropic"
	"github.com/joseph-ayodele/specs-importer/internal/llm/gemini"
	"github.com/joseph-ayodele/specs-importer/internal/llm/openai"
)

// New builds the structured extractor selected by cfg.Provider.
func New(cfg common.LLMConfig, logger *slog.Logger) (llm.StructuredExtractor, error) {
	switch cfg.Provider {
	case "gemini", "":
		return gemini.NewClient(gemini.Config{
			APIKey:            cfg.APIKey,
			BaseURL:           cfg.BaseURL,
			Model:             cfg.Model,
			Temperature:       cfg.Temperature,
			Timeout:           cfg.Timeout,
			RequestsPerMinute: cfg.RequestsPerMinute,
		}, logger), nil
	case "openai":
		return openai.NewClient(openai.Config{
			APIKey:            cfg.APIKey,
			BaseURL:           cfg.BaseURL,
			Model:             cfg.Model,
			Temperature:       cfg.Temperature,
			Timeout:           cfg.Timeout,
			RequestsPerMinute: cfg.RequestsPerMinute,
		}, logger), nil
	case "anthropic":
		return anthropic.NewClient(anthropic.Config{
			APIKey:            cfg.APIKey,
			BaseURL:           cfg.BaseURL,
			Model:             cfg.Model,
			Temperature:       cfg.Temperature,
			Timeout:           cfg.Timeout,
			RequestsPerMinute: cfg.RequestsPerMinute,
		}, logger), nil
	default:
		return nil, common.NewAppError("CONFIG_ERROR", fmt.Sprintf("unknown llm provider %q", cfg.Provider), common.ErrInvalidInput)
	}
}
