package gemini

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

// Config for the Gemini client.
type Config struct {
	APIKey            string // if empty, falls back to env GEMINI_API_KEY
	BaseURL           string // default https://generativelanguage.googleapis.com
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
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com"
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash"
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

// ExtractStructured implements llm.StructuredExtractor with a generateContent call
// constrained to JSON output.
func (c *Client) ExtractStructured(ctx context.Context, req llm.ExtractRequest) (*llm.Extraction, []byte, error) {
	rid := uuid.New().String()
	start := time.Now()
	c.log.Info("llm.extract.start",
		"req_id", rid,
		"provider", "gemini",
		"model", c.cfg.Model,
		"text_len", len(req.Text),
		"custom_instruction", req.CustomInstruction != "",
	)

	if err := llm.Wait(ctx, c.pacer); err != nil {
		return nil, nil, err
	}

	body := map[string]any{
		"systemInstruction": map[string]any{
			"parts": []map[string]any{{"text": llm.BuildSystemPrompt(req.CustomInstruction)}},
		},
		"contents": []map[string]any{{
			"role":  "user",
			"parts": []map[string]any{{"text": llm.BuildUserPrompt(req.Text)}},
		}},
		"generationConfig": map[string]any{
			"temperature":      c.cfg.Temperature,
			"responseMimeType": "application/json",
			"responseSchema":   responseSchema(),
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/v1beta/models/" + c.cfg.Model + ":generateContent"
	raw, err := llm.SendJSON(ctx, c.http, endpoint, body, map[string]string{"x-goog-api-key": c.cfg.APIKey}, c.log)
	if err != nil {
		c.log.Error("llm.extract.http_error", "req_id", rid, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, raw, err
	}

	var gc struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(raw, &gc); err != nil {
		c.log.Error("llm.extract.decode_error", "req_id", rid, "error", err, "raw_bytes", len(raw))
		return nil, raw, common.NewStructureParseError("decode gemini response", err)
	}
	if len(gc.Candidates) == 0 {
		c.log.Error("llm.extract.no_candidates", "req_id", rid, "raw", string(raw))
		return nil, raw, common.NewStructureParseError("no candidates in gemini response", nil)
	}
	var text strings.Builder
	for _, p := range gc.Candidates[0].Content.Parts {
		text.WriteString(p.Text)
	}

	out, content, err := llm.DecodeExtraction(text.String(), c.log)
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

// responseSchema is the OpenAPI-style schema Gemini accepts for constrained output.
func responseSchema() map[string]any {
	return map[string]any{
		"type": "OBJECT",
		"properties": map[string]any{
			"header": stringObject(llm.HeaderFields),
			"rows": map[string]any{
				"type":  "ARRAY",
				"items": stringObject(llm.RowFields),
			},
		},
		"required": []string{"header", "rows"},
	}
}

func stringObject(fields []string) map[string]any {
	props := map[string]any{}
	for _, f := range fields {
		props[f] = map[string]any{"type": "STRING"}
	}
	return map[string]any{"type": "OBJECT", "properties": props}
}
