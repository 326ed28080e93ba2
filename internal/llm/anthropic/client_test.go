package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/joseph-ayodele/specs-importer/internal/common"
	"github.com/joseph-ayodele/specs-importer/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractStructured(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "k", r.Header.Get("x-api-key"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":            "msg_1",
			"type":          "message",
			"role":          "assistant",
			"model":         "claude-test",
			"stop_reason":   "end_turn",
			"stop_sequence": nil,
			"usage":         map[string]any{"input_tokens": 10, "output_tokens": 20},
			"content": []any{map[string]any{
				"type": "text",
				"text": `{"header":{"productCode":"A-7"},"rows":[{"rawDescription":"Water","rawLimit":"NMT 5%"}]}`,
			}},
		})
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "k", BaseURL: srv.URL, Model: "claude-test"}, nil)
	out, _, err := c.ExtractStructured(context.Background(), llm.ExtractRequest{Text: "Water NMT 5%"})
	require.NoError(t, err)
	assert.Equal(t, "A-7", out.Header.ProductCode)
	require.Len(t, out.Rows, 1)
	assert.Equal(t, "NMT 5%", out.Rows[0].RawLimit)
}

func TestExtractStructuredServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"api_error","message":"boom"}}`))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "k", BaseURL: srv.URL}, nil)
	out, _, err := c.ExtractStructured(context.Background(), llm.ExtractRequest{Text: "x"})
	assert.Nil(t, out)
	assert.ErrorIs(t, err, common.ErrTransport)
}
