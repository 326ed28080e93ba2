package entity

import "strings"

// CatalogueEntry is a master-data record for one analytical test definition.
type CatalogueEntry struct {
	ID           string `json:"id" yaml:"id"`
	TestCode     string `json:"testCode" yaml:"testCode"`
	Analysis     string `json:"analysis" yaml:"analysis"`
	Component    string `json:"component" yaml:"component"`
	Units        string `json:"units" yaml:"units"`
	Category     string `json:"category" yaml:"category"`
	Type         string `json:"type" yaml:"type"`
	DefaultGrade string `json:"defaultGrade" yaml:"defaultGrade"`
	Rounding     string `json:"rounding" yaml:"rounding"`
	Synonyms     string `json:"synonyms" yaml:"synonyms"` // comma-separated
	Tags         string `json:"tags" yaml:"tags"`         // comma-separated
	Priority     string `json:"priority" yaml:"priority"` // High | Medium | Low
}

// SynonymList splits Synonyms on commas, dropping blanks.
func (e CatalogueEntry) SynonymList() []string {
	return splitList(e.Synonyms)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Suggestion is a lightweight reference to a catalogue entry offered for manual resolution.
type Suggestion struct {
	ID       string `json:"id"`
	Analysis string `json:"analysis"`
	TestCode string `json:"testCode"`
}
