package entity

// ParsedLine is one row produced by the structured extraction stage, before matching.
type ParsedLine struct {
	RawTestCode    string `json:"rawTestCode"`
	RawDescription string `json:"rawDescription"`
	RawLimit       string `json:"rawLimit"`
	RawTextSpec    string `json:"rawTextSpec"`
	RawReference   string `json:"rawReference,omitempty"`
	RawStage       string `json:"rawStage,omitempty"`
}

// IsBlank reports whether the row has neither a code nor a description.
func (l ParsedLine) IsBlank() bool {
	return l.RawTestCode == "" && l.RawDescription == ""
}

// LimitText is the text the rule interpreter reads: the numeric limit, else the text spec.
func (l ParsedLine) LimitText() string {
	if l.RawLimit != "" {
		return l.RawLimit
	}
	return l.RawTextSpec
}
