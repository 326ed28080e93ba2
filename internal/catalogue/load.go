// Package catalogue reads catalogue snapshots from disk.
package catalogue

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/specs-importer/internal/common"
	"github.com/joseph-ayodele/specs-importer/internal/entity"
	"gopkg.in/yaml.v3"
)

// LoadJSON reads a JSON array of catalogue entries from path.
func LoadJSON(path string) ([]entity.CatalogueEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalogue: %w", err)
	}
	defer func() { _ = f.Close() }()
	return DecodeJSON(f)
}

func DecodeJSON(r io.Reader) ([]entity.CatalogueEntry, error) {
	var entries []entity.CatalogueEntry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, common.NewAppError("CATALOGUE_ERROR", "decode catalogue json", fmt.Errorf("%w: %v", common.ErrInvalidInput, err))
	}
	return entries, nil
}

// Load picks the decoder from the file extension: .json, or .yaml/.yml.
func Load(path string) ([]entity.CatalogueEntry, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("open catalogue: %w", err)
		}
		var entries []entity.CatalogueEntry
		if err := yaml.Unmarshal(data, &entries); err != nil {
			return nil, common.NewAppError("CATALOGUE_ERROR", "decode catalogue yaml", fmt.Errorf("%w: %v", common.ErrInvalidInput, err))
		}
		return entries, nil
	default:
		return LoadJSON(path)
	}
}
