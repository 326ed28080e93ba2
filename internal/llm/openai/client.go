package openai

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joseph-ayodele/specs-importer/internal/common"
	"github.com/joseph-ayodele/specs-importer/internal/llm"
	"golang.org/x/time/rate"
)

// Config for the OpenAI client.
type Config struct {
	APIKey            string // if empty, falls back to env OPENAI_API_KEY
	BaseURL           string // default https://api.openai.com/v1
	Model             string
	Temperature       float32
	Timeout           time.Duration
	RequestsPerMinute int
}

type Client struct {
	cfg   Config
	http  *http.Client
	pacer *rate.Limiter
	log   *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 90 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:   cfg,
		http:  &http.Client{Timeout: cfg.Timeout},
		pacer: llm.NewPacer(cfg.RequestsPerMinute),
		log:   logger,
	}
}

// ExtractStructured implements llm.StructuredExtractor using chat/completions
// with a json_schema response format.
func (c *Client) ExtractStructured(ctx context.Context, req llm.ExtractRequest) (*llm.Extraction, []byte, error) {
	rid := uuid.New().String()
	start := time.Now()
	c.log.Info("llm.extract.start",
		"req_id", rid,
		"provider", "openai",
		"model", c.cfg.Model,
		"text_len", len(req.Text),
		"custom_instruction", req.CustomInstruction != "",
	)

	if err := llm.Wait(ctx, c.pacer); err != nil {
		return nil, nil, err
	}

	body := map[string]any{
		"model":       c.cfg.Model,
		"temperature": c.cfg.Temperature,
		"response_format": map[string]any{
			"type": "json_schema",
			"json_schema": map[string]any{
				"name":   "product_spec",
				"strict": false,
				"schema": llm.BuildExtractionJSONSchema(),
			},
		},
		"messages": []map[string]any{
			{"role": "system", "content": llm.BuildSystemPrompt(req.CustomInstruction)},
			{"role": "user", "content": llm.BuildUserPrompt(req.Text)},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	raw, err := llm.SendJSON(ctx, c.http, endpoint, body, map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}, c.log)
	if err != nil {
		c.log.Error("llm.extract.http_error", "req_id", rid, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, raw, err
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.log.Error("llm.extract.decode_error", "req_id", rid, "error", err, "raw_bytes", len(raw))
		return nil, raw, common.NewStructureParseError("decode openai response", err)
	}
	if len(cc.Choices) == 0 {
		c.log.Error("llm.extract.no_choices", "req_id", rid, "raw", string(raw))
		return nil, raw, common.NewStructureParseError("no choices in openai response", nil)
	}

	out, content, err := llm.DecodeExtraction(cc.Choices[0].Message.Content, c.log)
	if err != nil {
		c.log.Error("llm.extract.parse_failed", "req_id", rid, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, content, err
	}
	c.log.Info("llm.extract.ok",
		"req_id", rid,
		"product_code", out.Header.ProductCode,
		"rows", len(out.Rows),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, content, nil
}
