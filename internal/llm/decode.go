package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/specs-importer/internal/common"
)

var reFence = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// StripCodeFence returns the body of the first ```json fenced block, or the trimmed input.
func StripCodeFence(content string) string {
	content = strings.TrimSpace(content)
	if m := reFence.FindStringSubmatch(content); m != nil {
		return m[1]
	}
	return content
}

// DecodeExtraction turns a model reply into an Extraction. The reply is validated against
// BuildExtractionJSONSchema first; on failure a lenient pass stringifies scalars, drops
// unknown keys and non-object rows, and the result must validate. Nested values in known
// fields cannot be repaired and reject the reply.
func DecodeExtraction(content string, logger *slog.Logger) (*Extraction, []byte, error) {
	if logger == nil {
		logger = slog.Default()
	}
	body := []byte(StripCodeFence(content))
	if len(body) == 0 {
		return nil, body, common.NewStructureParseError("empty model response", nil)
	}

	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, body, common.NewStructureParseError("response is not JSON", err)
	}

	schema := BuildExtractionJSONSchema()
	if strictErr := ValidateJSONAgainstSchema(schema, body); strictErr != nil {
		cleaned, dropped, err := sanitize(payload)
		if err != nil {
			logger.Error("llm.extract.structure_invalid", "error", err, "content", truncate(body, 2000))
			return nil, body, err
		}
		if vErr := ValidateJSONAgainstSchema(schema, cleaned); vErr != nil {
			logger.Error("llm.extract.schema_validation_failed", "error", vErr, "content", truncate(body, 2000))
			return nil, body, common.NewStructureParseError("response does not match schema", vErr)
		}
		logger.Warn("llm.extract.lenient_sanitize_applied", "dropped", dropped, "strict_error", strictErr.Error())
		body = cleaned
	}

	var out Extraction
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, body, common.NewStructureParseError("unmarshal extraction", err)
	}
	return &out, body, nil
}

// sanitize reshapes payload toward the schema and lists what it changed.
func sanitize(payload any) ([]byte, []string, error) {
	obj, ok := payload.(map[string]any)
	if !ok {
		return nil, nil, common.NewStructureParseError("response is not a JSON object", nil)
	}
	header, ok := obj["header"].(map[string]any)
	if !ok {
		return nil, nil, common.NewStructureParseError("response has no header object", nil)
	}
	rows, ok := obj["rows"].([]any)
	if !ok {
		return nil, nil, common.NewStructureParseError("response has no rows array", nil)
	}

	var dropped []string
	for k := range obj {
		if k != "header" && k != "rows" {
			dropped = append(dropped, k)
		}
	}
	cleanRows := make([]any, 0, len(rows))
	for i, r := range rows {
		row, ok := r.(map[string]any)
		if !ok {
			dropped = append(dropped, fmt.Sprintf("rows[%d]", i))
			continue
		}
		cleanRows = append(cleanRows, keepStrings(row, RowFields, fmt.Sprintf("rows[%d].", i), &dropped))
	}
	cleaned := map[string]any{
		"header": keepStrings(header, HeaderFields, "header.", &dropped),
		"rows":   cleanRows,
	}
	sort.Strings(dropped)

	b, err := json.Marshal(cleaned)
	if err != nil {
		return nil, dropped, common.NewStructureParseError("re-encode response", err)
	}
	return b, dropped, nil
}

// keepStrings keeps the known fields of in, stringifying scalars. Objects and arrays pass
// through untouched so schema validation still rejects them.
func keepStrings(in map[string]any, fields []string, prefix string, dropped *[]string) map[string]any {
	known := make(map[string]bool, len(fields))
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		known[f] = true
		v, ok := in[f]
		if !ok {
			continue
		}
		switch t := v.(type) {
		case nil:
			out[f] = ""
		case float64:
			out[f] = strconv.FormatFloat(t, 'f', -1, 64)
		case bool:
			out[f] = strconv.FormatBool(t)
		default:
			out[f] = t
		}
	}
	for k := range in {
		if !known[k] {
			*dropped = append(*dropped, prefix+k)
		}
	}
	return out
}

