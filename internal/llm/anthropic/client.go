package anthropic

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/uuid"
	"github.com/joseph-ayodele/specs-importer/internal/common"
	"github.com/joseph-ayodele/specs-importer/internal/llm"
	"golang.org/x/time/rate"
)

const maxTokens = 8192

// Config for the Anthropic client.
type Config struct {
	APIKey            string // if empty, falls back to env ANTHROPIC_API_KEY
	BaseURL           string // empty keeps the SDK default
	Model             string
	Temperature       float32
	Timeout           time.Duration
	RequestsPerMinute int
}

type Client struct {
	cfg    Config
	client anthropic.Client
	pacer  *rate.Limiter
	log    *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if cfg.Model == "" {
		cfg.Model = "claude-sonnet-4-5"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 90 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &Client{
		cfg:    cfg,
		client: anthropic.NewClient(opts...),
		pacer:  llm.NewPacer(cfg.RequestsPerMinute),
		log:    logger,
	}
}

// ExtractStructured implements llm.StructuredExtractor with the Messages API.
// The model is told to answer with bare JSON; fenced replies are tolerated.
func (c *Client) ExtractStructured(ctx context.Context, req llm.ExtractRequest) (*llm.Extraction, []byte, error) {
	rid := uuid.New().String()
	start := time.Now()
	c.log.Info("llm.extract.start",
		"req_id", rid,
		"provider", "anthropic",
		"model", c.cfg.Model,
		"text_len", len(req.Text),
		"custom_instruction", req.CustomInstruction != "",
	)

	if err := llm.Wait(ctx, c.pacer); err != nil {
		return nil, nil, err
	}

	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.cfg.Model),
		MaxTokens:   maxTokens,
		Temperature: anthropic.Float(float64(c.cfg.Temperature)),
		System: []anthropic.TextBlockParam{
			{Text: llm.BuildSystemPrompt(req.CustomInstruction)},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(llm.BuildUserPrompt(req.Text))),
		},
	})
	if err != nil {
		c.log.Error("llm.extract.http_error", "req_id", rid, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, nil, common.NewTransportError("anthropic messages call", err)
	}

	var text strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		c.log.Error("llm.extract.no_text", "req_id", rid, "stop_reason", message.StopReason)
		return nil, nil, common.NewStructureParseError("no text content in anthropic response", nil)
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
