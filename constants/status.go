package constants

// MatchStatus is the outcome of matching one extracted row against the catalogue.
type MatchStatus string

const (
	MatchStatusMatched       MatchStatus = "MATCHED"        // confidence >= 95
	MatchStatusLowConfidence MatchStatus = "LOW_CONFIDENCE" // 0 < confidence < 95
	MatchStatusUnmatched     MatchStatus = "UNMATCHED"
	MatchStatusManual        MatchStatus = "MANUAL" // resolved by a person
)

// ImportStatus is the per-document status reported while a batch runs.
type ImportStatus string

const (
	ImportStatusProcessing ImportStatus = "processing"
	ImportStatusSuccess    ImportStatus = "success"
	ImportStatusError      ImportStatus = "error"
)

// JobStatus is the canonical status for rows in import_job.
type JobStatus string

// Stable values (store these exact strings in DB).
const (
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusOK      JobStatus = "OK"
	JobStatusFailed  JobStatus = "FAILED"
)
