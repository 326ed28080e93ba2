package llm

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/joseph-ayodele/specs-importer/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripCodeFence("Here you go:\n```\n{\"a\":1}\n```\nThanks"))
	assert.Equal(t, `{"a":1}`, StripCodeFence("  {\"a\":1}  "))
}

func TestDecodeExtraction(t *testing.T) {
	content := "```json\n" + `{
		"header": {"productCode": "S-H-CHB08001-02", "productName": "cap 1000IU", "version": 2, "extra": "x"},
		"rows": [
			{"rawTestCode": "PH", "rawDescription": "pH", "rawLimit": "7.2 - 7.6"},
			{"rawDescription": "Appearance", "rawTextSpec": "Clear", "rawStage": null},
			"not a row"
		]
	}` + "\n```"

	out, raw, err := DecodeExtraction(content, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, raw)

	assert.Equal(t, "S-H-CHB08001-02", out.Header.ProductCode)
	assert.Equal(t, "cap 1000IU", out.Header.ProductName)
	assert.Equal(t, "2", out.Header.Version)
	assert.Empty(t, out.Header.EffectiveDate)

	require.Len(t, out.Rows, 2)
	assert.Equal(t, "7.2 - 7.6", out.Rows[0].RawLimit)
	assert.Equal(t, "Clear", out.Rows[1].RawTextSpec)
	assert.Empty(t, out.Rows[1].RawStage)
	assert.NotContains(t, string(raw), "extra")
}

func TestDecodeExtractionStructureErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty", "   "},
		{"not json", "I could not find a specification."},
		{"array", `[{"rawDescription":"pH"}]`},
		{"missing header", `{"rows": []}`},
		{"missing rows", `{"header": {}}`},
		{"rows not array", `{"header": {}, "rows": {}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := DecodeExtraction(tt.content, nil)
			assert.Nil(t, out)
			assert.ErrorIs(t, err, common.ErrStructureParse)
		})
	}
}

func TestDecodeExtractionEmptyRows(t *testing.T) {
	out, _, err := DecodeExtraction(`{"header": {}, "rows": []}`, nil)
	require.NoError(t, err)
	assert.Empty(t, out.Rows)
	assert.Empty(t, out.Header.ProductCode)
}

func TestBuildSystemPrompt(t *testing.T) {
	base := BuildSystemPrompt("")
	assert.NotContains(t, base, "CUSTOM PARSING INSTRUCTIONS")

	custom := BuildSystemPrompt("  Tests are in the third table.  ")
	assert.True(t, len(custom) > len(base))
	assert.Contains(t, custom, "CUSTOM PARSING INSTRUCTIONS PROVIDED BY USER:\nTests are in the third table.\n")

	assert.Equal(t, "Extract the specification data from this text:\n\nabc", BuildUserPrompt("abc"))
}

func TestNewPacerUnlimited(t *testing.T) {
	p := NewPacer(0)
	for i := 0; i < 5; i++ {
		assert.True(t, p.Allow())
	}
	assert.NoError(t, Wait(t.Context(), nil))
}

func captureLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func TestDecodeExtractionStrictPass(t *testing.T) {
	logger, logs := captureLogger()
	content := `{"header": {"productCode": "P-1"}, "rows": [{"rawTestCode": "PH", "rawLimit": "7.2 - 7.6"}]}`

	out, raw, err := DecodeExtraction(content, logger)
	require.NoError(t, err)
	assert.Equal(t, "P-1", out.Header.ProductCode)
	require.Len(t, out.Rows, 1)
	assert.JSONEq(t, content, string(raw))
	assert.NotContains(t, logs.String(), "lenient_sanitize_applied")
}

func TestDecodeExtractionLenientRepairIsLogged(t *testing.T) {
	logger, logs := captureLogger()

	out, raw, err := DecodeExtraction(`{"header":{"productName":null,"version":3},"rows":[null,[1,2],{"rawLimit":"NMT 1%","extra":true}],"unexpectedTop":7}`, logger)
	require.NoError(t, err)
	assert.Empty(t, out.Header.ProductName)
	assert.Equal(t, "3", out.Header.Version)
	require.Len(t, out.Rows, 1)
	assert.Equal(t, "NMT 1%", out.Rows[0].RawLimit)
	assert.NotContains(t, string(raw), "unexpectedTop")

	got := logs.String()
	assert.Contains(t, got, "llm.extract.lenient_sanitize_applied")
	assert.Contains(t, got, "unexpectedTop")
	assert.Contains(t, got, "rows[0]")
	assert.Contains(t, got, "rows[2].extra")
}

func TestDecodeExtractionRejectsUnrepairable(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"nested header value", `{"header":{"productCode":{"x":1},"bogus":[1,2]},"rows":[42,"str",{"rawLimit":"1"}]}`},
		{"array row value", `{"header":{},"rows":[{"rawLimit":[1],"extra":true}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logs := captureLogger()
			out, _, err := DecodeExtraction(tt.content, logger)
			assert.Nil(t, out)
			assert.ErrorIs(t, err, common.ErrStructureParse)
			assert.Contains(t, logs.String(), "llm.extract.schema_validation_failed")
		})
	}
}
