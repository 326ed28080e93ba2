package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/specs-importer/constants"
	"github.com/joseph-ayodele/specs-importer/internal/entity"
)

func sampleCatalogue() []entity.CatalogueEntry {
	return []entity.CatalogueEntry{
		{ID: "c1", TestCode: "APP01", Analysis: "Appearance", Component: "Appearance", Units: "-", Category: "Physical", Synonyms: "Visual, Clarity, Color", Priority: "High"},
		{ID: "c2", TestCode: "PH01", Analysis: "pH", Component: "pH Value", Units: "pH", Category: "Chemical", Synonyms: "Acidity, Alkalinity, Hydrogen Ion", Priority: "High"},
		{ID: "c3", TestCode: "AS01", Analysis: "Assay", Component: "Concentration", Units: "%", Category: "Chemical", Synonyms: "Potency, Purity", Priority: "Medium"},
		{ID: "c4", TestCode: "DN01", Analysis: "Density", Component: "Density", Units: "g/mL", Category: "Physical", Synonyms: "Specific Gravity", Priority: "Low"},
	}
}

func TestNormalize(t *testing.T) {
	tests := map[string]string{
		"Assay (HPLC) - Vitamin D3!": "assay vitamin d3",
		"  pH   Value ":              "ph value",
		"Loss on Drying (LOD), %":    "loss on drying",
		"":                           "",
		"(only parens)":              "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Normalize(in), in)
	}
}

func TestLineCandidates(t *testing.T) {
	line := entity.ParsedLine{RawTestCode: "AS-01", RawDescription: "Assay by HPLC - Cholecalciferol (Vitamin D3)"}
	assert.Equal(t,
		[]string{"assay by hplc cholecalciferol", "cholecalciferol", "vitamin d3", "as 01"},
		lineCandidates(line))

	assert.Empty(t, lineCandidates(entity.ParsedLine{RawDescription: "()", RawTestCode: "--"}))
	assert.Equal(t, []string{"ph"}, lineCandidates(entity.ParsedLine{RawDescription: "pH", RawTestCode: "PH"}))
}

func TestEntryCandidates(t *testing.T) {
	got := entryCandidates(sampleCatalogue()[1])
	assert.Equal(t, []string{"ph01", "ph", "acidity", "alkalinity", "hydrogen ion"}, got)
}

func TestBand(t *testing.T) {
	assert.Equal(t, 100, Band(1))
	assert.Equal(t, 100, Band(0.9))
	assert.Equal(t, 95, Band(0.75))
	assert.Equal(t, 85, Band(0.6))
	assert.Equal(t, 70, Band(0.4))
	assert.Equal(t, 0, Band(0.39))
	assert.Equal(t, 0, Band(0))
}

func TestJaccardSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"assay vitamin d", "vitamin d assay hplc"},
		{"acidity test", "acidity"},
		{"", "density"},
		{"", ""},
		{"water content", "content of water by kf"},
	}
	for _, p := range pairs {
		assert.Equal(t, Jaccard(p[0], p[1]), Jaccard(p[1], p[0]), p)
	}
	assert.Equal(t, 0.0, Jaccard("", ""))
	assert.Equal(t, 0.5, Jaccard("acidity test", "acidity"))
}

func TestMatchExactTestCode(t *testing.T) {
	res, ok := Match(entity.ParsedLine{RawTestCode: "ph01", RawDescription: "Potentiometric determination"}, sampleCatalogue())
	require.True(t, ok)
	assert.Equal(t, "c2", res.Entry.ID)
	assert.Equal(t, 100, res.Confidence)
	assert.Equal(t, constants.MatchStatusMatched, StatusFor(res.Confidence, ok))
}

func TestMatchSynonymPartialOverlap(t *testing.T) {
	catalogue := []entity.CatalogueEntry{{ID: "c2", TestCode: "PH01", Analysis: "pH", Synonyms: "Acidity"}}
	line := entity.ParsedLine{RawDescription: "Acidity test", RawLimit: "7.2 - 7.6"}

	res, ok := Match(line, catalogue)
	require.True(t, ok)
	assert.Equal(t, 70, res.Confidence)
	assert.Equal(t, constants.MatchStatusLowConfidence, StatusFor(res.Confidence, ok))
	assert.Equal(t, []entity.Suggestion{{ID: "c2", Analysis: "pH", TestCode: "PH01"}}, Suggest(line, catalogue))
}

func TestMatchNoCandidateOrNoScore(t *testing.T) {
	_, ok := Match(entity.ParsedLine{}, sampleCatalogue())
	assert.False(t, ok)

	_, ok = Match(entity.ParsedLine{RawDescription: "Heavy metals"}, sampleCatalogue())
	assert.False(t, ok)
	assert.Equal(t, constants.MatchStatusUnmatched, StatusFor(0, ok))

	_, ok = Match(entity.ParsedLine{RawDescription: "pH"}, nil)
	assert.False(t, ok)
}

func TestMatchFirstEntryWinsTies(t *testing.T) {
	catalogue := []entity.CatalogueEntry{
		{ID: "w1", TestCode: "KF01", Analysis: "Water Content"},
		{ID: "w2", TestCode: "KF02", Analysis: "Water Content"},
	}
	res, ok := Match(entity.ParsedLine{RawDescription: "Water content"}, catalogue)
	require.True(t, ok)
	assert.Equal(t, "w1", res.Entry.ID)
}

func TestMatchHigherConfidenceReplaces(t *testing.T) {
	catalogue := []entity.CatalogueEntry{
		{ID: "a1", TestCode: "AS01", Analysis: "Assay"},
		{ID: "a2", TestCode: "AS02", Analysis: "Assay Vitamin D"},
	}
	res, ok := Match(entity.ParsedLine{RawDescription: "Assay Vitamin D"}, catalogue)
	require.True(t, ok)
	assert.Equal(t, "a2", res.Entry.ID)
	assert.Equal(t, 100, res.Confidence)
}

func TestMatchIdempotent(t *testing.T) {
	line := entity.ParsedLine{RawTestCode: "", RawDescription: "Specific Gravity at 20 C"}
	first, ok1 := Match(line, sampleCatalogue())
	second, ok2 := Match(line, sampleCatalogue())
	assert.Equal(t, ok1, ok2)
	assert.Equal(t, first, second)
}

func TestSuggestRanksAndCaps(t *testing.T) {
	catalogue := []entity.CatalogueEntry{
		{ID: "a1", TestCode: "AS01", Analysis: "Assay", Synonyms: "Potency, Purity"},
		{ID: "a2", TestCode: "AS02", Analysis: "Assay Vitamin D"},
		{ID: "a3", TestCode: "AS03", Analysis: "Assay Vitamin E"},
		{ID: "a4", TestCode: "AS04", Analysis: "Vitamin D Assay HPLC"},
		{ID: "x1", TestCode: "DN01", Analysis: "Density"},
	}
	got := Suggest(entity.ParsedLine{RawDescription: "Assay Vitamin D"}, catalogue)
	require.Len(t, got, 3)
	assert.Equal(t, "a2", got[0].ID)
	assert.Equal(t, "a4", got[1].ID)
	assert.Equal(t, "a3", got[2].ID)
}

func TestSuggestStableOnEqualScores(t *testing.T) {
	catalogue := []entity.CatalogueEntry{
		{ID: "b1", TestCode: "W1", Analysis: "Water Content"},
		{ID: "b2", TestCode: "W2", Analysis: "Water Activity"},
	}
	got := Suggest(entity.ParsedLine{RawDescription: "Water"}, catalogue)
	require.Len(t, got, 2)
	assert.Equal(t, "b1", got[0].ID)
	assert.Equal(t, "b2", got[1].ID)
}

func TestSuggestBelowFloor(t *testing.T) {
	// one shared token out of four scores 0.25
	catalogue := []entity.CatalogueEntry{{ID: "a1", TestCode: "AS01", Analysis: "Assay"}}
	assert.Empty(t, Suggest(entity.ParsedLine{RawDescription: "assay of active ingredient"}, catalogue))
}

func TestApplyManual(t *testing.T) {
	item := entity.TestItem{
		ID:              "imported-0-x",
		MatchStatus:     constants.MatchStatusUnmatched,
		Suggestions:     []entity.Suggestion{{ID: "c3"}},
		Analysis:        "--- UNMATCHED ---",
		Component:       "---",
		TestCode:        "UNMATCHED-0",
		Rule:            constants.RuleMin,
		Min:             "98.0",
		CLitReference:   "USP 44",
		ConfidenceScore: 0,
	}
	got := ApplyManual(item, sampleCatalogue()[2])
	assert.Equal(t, constants.MatchStatusManual, got.MatchStatus)
	assert.Equal(t, 100, got.ConfidenceScore)
	assert.Empty(t, got.Suggestions)
	assert.Equal(t, "AS01", got.TestCode)
	assert.Equal(t, "Concentration", got.Component)
	assert.Equal(t, "%", got.Units)
	assert.Equal(t, "98.0", got.Min)
	assert.Equal(t, "USP 44", got.CLitReference)
	assert.Equal(t, constants.MatchStatusUnmatched, item.MatchStatus)
}
