package core

import (
	"fmt"

	"github.com/joseph-ayodele/specs-importer/constants"
	"github.com/joseph-ayodele/specs-importer/internal/common"
	"github.com/joseph-ayodele/specs-importer/internal/entity"
)

// ValidateCatalogue checks ids are present and unique and priorities are known.
// The returned error wraps common.ErrValidation.
func ValidateCatalogue(catalogue []entity.CatalogueEntry) error {
	v := common.NewValidator()
	seen := make(map[string]int, len(catalogue))
	for i, e := range catalogue {
		field := fmt.Sprintf("catalogue[%d]", i)
		v.Field(field+".id", e.ID, common.Required, common.MaxLength(128))
		v.Field(field+".priority", e.Priority, common.OneOf(constants.Priorities...))
		if e.ID == "" {
			continue
		}
		prev, dup := seen[e.ID]
		v.Check(!dup, field+".id", e.ID, fmt.Sprintf("duplicates catalogue[%d]", prev))
		if !dup {
			seen[e.ID] = i
		}
	}
	return v.Error()
}
