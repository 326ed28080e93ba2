package gemini

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
		assert.Equal(t, "/v1beta/models/gemini-test:generateContent", r.URL.Path)
		assert.Equal(t, "k", r.Header.Get("x-goog-api-key"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gen := body["generationConfig"].(map[string]any)
		assert.Equal(t, "application/json", gen["responseMimeType"])
		sys := body["systemInstruction"].(map[string]any)["parts"].([]any)[0].(map[string]any)["text"].(string)
		assert.Contains(t, sys, "Table 2 holds the tests.")

		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"{\"header\":{\"productCode\":\"P-1\"},\"rows\":[{\"rawDescription\":\"pH\",\"rawLimit\":\"7.2 - 7.6\"}]}"}]}}]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "k", BaseURL: srv.URL, Model: "gemini-test"}, nil)
	out, raw, err := c.ExtractStructured(context.Background(), llm.ExtractRequest{Text: "pH 7.2 - 7.6", CustomInstruction: "Table 2 holds the tests."})
	require.NoError(t, err)
	assert.NotEmpty(t, raw)
	assert.Equal(t, "P-1", out.Header.ProductCode)
	require.Len(t, out.Rows, 1)
	assert.Equal(t, "pH", out.Rows[0].RawDescription)
}

func TestExtractStructuredErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		kind   error
	}{
		{"server error", http.StatusInternalServerError, `{}`, common.ErrTransport},
		{"no candidates", http.StatusOK, `{"candidates":[]}`, common.ErrStructureParse},
		{"prose reply", http.StatusOK, `{"candidates":[{"content":{"parts":[{"text":"sorry"}]}}]}`, common.ErrStructureParse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewClient(Config{APIKey: "k", BaseURL: srv.URL}, nil)
			out, _, err := c.ExtractStructured(context.Background(), llm.ExtractRequest{Text: "x"})
			assert.Nil(t, out)
			assert.ErrorIs(t, err, tt.kind)
		})
	}
}
