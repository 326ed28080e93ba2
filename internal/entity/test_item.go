package entity

import "github.com/joseph-ayodele/specs-importer/constants"

// TestItem is the matched, normalized output unit of the pipeline.
type TestItem struct {
	ID              string                `json:"id"`
	Order           int                   `json:"order"`
	MatchStatus     constants.MatchStatus `json:"matchStatus"`
	ConfidenceScore int                   `json:"confidenceScore"`
	Suggestions     []Suggestion          `json:"suggestions"`

	Analysis    string `json:"analysis"`
	Component   string `json:"component"`
	TestCode    string `json:"testCode"`
	Description string `json:"description"`

	Rule     constants.Rule `json:"rule"`
	Min      string         `json:"min"`
	Max      string         `json:"max"`
	TextSpec string         `json:"textSpec"`
	Units    string         `json:"units"`
	Category string         `json:"category"`

	ReportedNameAnalysis  string `json:"reportedNameAnalysis"`
	ReportedNameComponent string `json:"reportedNameComponent"`
	CLitReference         string `json:"cLitReference"`
	Stage                 string `json:"stage,omitempty"`
}
