// Package matcher scores extracted rows against the test catalogue.
package matcher

import (
	"sort"

	"github.com/joseph-ayodele/specs-importer/constants"
	"github.com/joseph-ayodele/specs-importer/internal/entity"
)

const (
	// HighConfidence is the lowest confidence reported as MATCHED.
	HighConfidence = 95
	// suggestionFloor is the similarity a suggestion must exceed.
	suggestionFloor = 0.3
	maxSuggestions  = 3
)

// Result is the best catalogue entry for a row and its banded confidence.
type Result struct {
	Entry      entity.CatalogueEntry
	Confidence int
}

// Band converts a similarity score into a confidence value.
func Band(score float64) int {
	switch {
	case score >= 0.9:
		return 100
	case score >= 0.75:
		return 95
	case score >= 0.6:
		return 85
	case score >= 0.4:
		return 70
	default:
		return 0
	}
}

// Match returns the highest-confidence entry for line. The first entry wins ties.
// ok is false when no entry reaches a non-zero confidence.
func Match(line entity.ParsedLine, catalogue []entity.CatalogueEntry) (res Result, ok bool) {
	lc := lineCandidates(line)
	if len(lc) == 0 {
		return Result{}, false
	}
	for _, entry := range catalogue {
		ec := entryCandidates(entry)
		if len(ec) == 0 {
			continue
		}
		conf := Band(bestScore(lc, ec, Similarity))
		if conf > 0 && (!ok || conf > res.Confidence) {
			res, ok = Result{Entry: entry, Confidence: conf}, true
		}
	}
	return res, ok
}

// Suggest ranks up to three entries whose token similarity to line exceeds 0.3.
func Suggest(line entity.ParsedLine, catalogue []entity.CatalogueEntry) []entity.Suggestion {
	lc := lineCandidates(line)
	type scored struct {
		entry entity.CatalogueEntry
		score float64
	}
	var hits []scored
	for _, entry := range catalogue {
		ec := entryCandidates(entry)
		if len(ec) == 0 {
			continue
		}
		if s := bestScore(lc, ec, Jaccard); s > suggestionFloor {
			hits = append(hits, scored{entry: entry, score: s})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })
	if len(hits) > maxSuggestions {
		hits = hits[:maxSuggestions]
	}

	out := make([]entity.Suggestion, 0, len(hits))
	for _, h := range hits {
		out = append(out, entity.Suggestion{ID: h.entry.ID, Analysis: h.entry.Analysis, TestCode: h.entry.TestCode})
	}
	return out
}

// StatusFor derives the match status of a row from its match outcome.
func StatusFor(confidence int, matched bool) constants.MatchStatus {
	switch {
	case !matched:
		return constants.MatchStatusUnmatched
	case confidence >= HighConfidence:
		return constants.MatchStatusMatched
	default:
		return constants.MatchStatusLowConfidence
	}
}

// ApplyManual resolves item to entry by hand.
func ApplyManual(item entity.TestItem, entry entity.CatalogueEntry) entity.TestItem {
	item.TestCode = entry.TestCode
	item.Analysis = entry.Analysis
	item.Component = entry.Component
	item.Units = entry.Units
	item.Category = entry.Category
	item.MatchStatus = constants.MatchStatusManual
	item.ConfidenceScore = 100
	item.Suggestions = []entity.Suggestion{}
	return item
}

func bestScore(lc, ec []string, score func(a, b string) float64) float64 {
	best := 0.0
	for _, l := range lc {
		for _, e := range ec {
			if s := score(l, e); s > best {
				best = s
			}
		}
	}
	return best
}
