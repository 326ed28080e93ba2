package llm

var (
	HeaderFields = []string{"productCode", "productName", "version", "effectiveDate", "materialType", "packDescription"}
	RowFields    = []string{"rawTestCode", "rawDescription", "rawLimit", "rawTextSpec", "rawReference", "rawStage"}
)

// BuildExtractionJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a generic map.
// We pass this to providers as a structured output constraint and also use it locally to validate.
func BuildExtractionJSONSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"header": stringObject(HeaderFields),
			"rows": map[string]any{
				"type":  "array",
				"items": stringObject(RowFields),
			},
		},
		"required": []string{"header", "rows"},
	}
}

func stringObject(fields []string) map[string]any {
	props := map[string]any{}
	for _, f := range fields {
		props[f] = map[string]any{"type": "string"}
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
	}
}
