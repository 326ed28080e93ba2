package matcher

import (
	"strings"

	"github.com/joseph-ayodele/specs-importer/internal/entity"
)

// lineCandidates lists the normalized strings a parsed row can be matched by:
// the description, the part after the last " - ", each parenthesized group, and the raw code.
func lineCandidates(line entity.ParsedLine) []string {
	var out []string
	seen := map[string]struct{}{}
	add := func(s string) {
		s = Normalize(s)
		if s == "" {
			return
		}
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	desc := line.RawDescription
	add(desc)
	if i := strings.LastIndex(desc, " - "); i >= 0 {
		add(desc[i+len(" - "):])
	}
	for _, m := range reParenInner.FindAllStringSubmatch(desc, -1) {
		add(m[1])
	}
	add(line.RawTestCode)
	return out
}

// entryCandidates lists the normalized test code, analysis and synonyms of a catalogue entry.
func entryCandidates(e entity.CatalogueEntry) []string {
	var out []string
	add := func(s string) {
		if s = Normalize(s); s != "" {
			out = append(out, s)
		}
	}
	add(e.TestCode)
	add(e.Analysis)
	for _, syn := range e.SynonymList() {
		add(syn)
	}
	return out
}
