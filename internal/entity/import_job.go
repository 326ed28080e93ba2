package entity

import (
	"time"

	"github.com/google/uuid"
)

// ImportJob is one journal row for a document processed by a batch import.
type ImportJob struct {
	ID            uuid.UUID  `json:"id"`
	BatchID       uuid.UUID  `json:"batch_id"`
	FileName      string     `json:"file_name"`
	Status        string     `json:"status"`
	Message       *string    `json:"message,omitempty"`
	ProductCode   *string    `json:"product_code,omitempty"`
	Tests         int        `json:"tests"`
	Matched       int        `json:"matched"`
	LowConfidence int        `json:"low_confidence"`
	Unmatched     int        `json:"unmatched"`
	StartedAt     time.Time  `json:"started_at"`
	FinishedAt    *time.Time `json:"finished_at,omitempty"`
}
