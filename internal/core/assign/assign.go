// Package assign spreads rows that share an analysis across that analysis' catalogue components.
package assign

import (
	"strings"

	"github.com/joseph-ayodele/specs-importer/constants"
	"github.com/joseph-ayodele/specs-importer/internal/entity"
)

func analysisKey(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// AutoAssign returns a copy of items where, inside every analysis group with more than one
// catalogue component, each component is handed out once in catalogue order before any is
// reused. Items already carrying a component of their group keep it. Processing follows
// the order of items, so the result is deterministic but greedy.
func AutoAssign(items []entity.TestItem, catalogue []entity.CatalogueEntry) []entity.TestItem {
	groups := map[string][]entity.CatalogueEntry{}
	for _, e := range catalogue {
		k := analysisKey(e.Analysis)
		groups[k] = append(groups[k], e)
	}
	usedByAnalysis := map[string]map[string]struct{}{}

	out := make([]entity.TestItem, len(items))
	for i, item := range items {
		out[i] = item

		key := analysisKey(item.Analysis)
		candidates := groups[key]
		if key == "" || len(candidates) <= 1 {
			continue
		}
		used, ok := usedByAnalysis[key]
		if !ok {
			used = map[string]struct{}{}
			usedByAnalysis[key] = used
		}

		if item.Component != "" && item.Component != constants.NoComponent && hasComponent(candidates, item.Component) {
			used[item.Component] = struct{}{}
			continue
		}

		chosen, found := firstUnused(candidates, used)
		if !found {
			// every component has been handed out once; start the next round
			clear(used)
			chosen = candidates[0]
		}
		used[chosen.Component] = struct{}{}

		out[i].TestCode = chosen.TestCode
		out[i].Component = chosen.Component
		out[i].Units = chosen.Units
		out[i].Category = chosen.Category
	}
	return out
}

func hasComponent(candidates []entity.CatalogueEntry, component string) bool {
	for _, c := range candidates {
		if c.Component == component {
			return true
		}
	}
	return false
}

func firstUnused(candidates []entity.CatalogueEntry, used map[string]struct{}) (entity.CatalogueEntry, bool) {
	for _, c := range candidates {
		if _, ok := used[c.Component]; !ok {
			return c, true
		}
	}
	return entity.CatalogueEntry{}, false
}
