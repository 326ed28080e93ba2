package entity

import (
	"strconv"
	"time"

	"github.com/joseph-ayodele/specs-importer/constants"
)

// Header holds the product-level fields returned by structured extraction.
type Header struct {
	ProductCode     string `json:"productCode"`
	ProductName     string `json:"productName"`
	Version         string `json:"version"`
	EffectiveDate   string `json:"effectiveDate"`
	MaterialType    string `json:"materialType"`
	PackDescription string `json:"packDescription"`
}

// WithDefaults fills empty header fields. now drives the draft code and effective date.
func (h Header) WithDefaults(now time.Time) Header {
	if h.ProductCode == "" {
		ms := strconv.FormatInt(now.UnixMilli(), 10)
		if len(ms) > 4 {
			ms = ms[len(ms)-4:]
		}
		h.ProductCode = constants.DraftCodePrefix + ms
	}
	if h.ProductName == "" {
		h.ProductName = constants.DefaultProductName
	}
	if h.Version == "" {
		h.Version = constants.DefaultVersion
	}
	if h.EffectiveDate == "" {
		h.EffectiveDate = now.UTC().Format("2006-01-02")
	}
	if h.MaterialType == "" {
		h.MaterialType = constants.DefaultMaterialType
	}
	return h
}

// ProductSpec is the pipeline output handed to the caller.
type ProductSpec struct {
	ProductCode     string     `json:"productCode"`
	ProductName     string     `json:"productName"`
	MaterialType    string     `json:"materialType"`
	Version         string     `json:"version"`
	EffectiveDate   string     `json:"effectiveDate"`
	PackDescription string     `json:"packDescription"`
	Tests           []TestItem `json:"tests"`
}

// MatchCounts tallies tests by match status.
func (p *ProductSpec) MatchCounts() (matched, low, unmatched int) {
	for _, t := range p.Tests {
		switch t.MatchStatus {
		case constants.MatchStatusMatched, constants.MatchStatusManual:
			matched++
		case constants.MatchStatusLowConfidence:
			low++
		default:
			unmatched++
		}
	}
	return matched, low, unmatched
}
