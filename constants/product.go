package constants

// Priority of a catalogue entry.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

var Priorities = []string{string(PriorityHigh), string(PriorityMedium), string(PriorityLow)}

// Header defaults used when the extraction leaves a field empty.
const (
	DefaultProductName  = "New Product"
	DefaultVersion      = "1.0"
	DefaultMaterialType = "Finished Good"
	DraftCodePrefix     = "DRAFT-"
)

// Placeholders for rows with no catalogue match.
const (
	UnmatchedAnalysis   = "--- UNMATCHED ---"
	UnmatchedCodePrefix = "UNMATCHED-"
	NoComponent         = "---"
	NoUnits             = "-"
	Uncategorized       = "Uncategorized"
)
