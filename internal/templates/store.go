// Package templates holds the named parsing templates whose custom instruction steers extraction.
package templates

import (
	"fmt"
	"os"
	"strings"

	"github.com/joseph-ayodele/specs-importer/internal/common"
	"github.com/joseph-ayodele/specs-importer/internal/entity"
	"gopkg.in/yaml.v3"
)

var builtin = []entity.ParsingTemplate{
	{
		ID:                "tmpl-1",
		Name:              "Standard Certificate of Analysis",
		Description:       "General layout for supplier COAs.",
		CustomInstruction: `Look for the "Test Name" column on the left and "Result" or "Specification" on the right. The Product Code is usually top-left labeled "Material No".`,
	},
	{
		ID:                "tmpl-2",
		Name:              "Legacy Specs (Scanned)",
		Description:       "For older typewritten specifications.",
		CustomInstruction: `These files are OCR text. Expect noise. The limits are often in parentheses like "(Min 98%)". Ignore handwritten notes.`,
	},
}

type file struct {
	Templates []entity.ParsingTemplate `yaml:"templates"`
}

// Store is an immutable set of parsing templates.
type Store struct {
	templates []entity.ParsingTemplate
}

// Default returns a store with the built-in templates.
func Default() *Store {
	return &Store{templates: append([]entity.ParsingTemplate(nil), builtin...)}
}

// Load reads templates from a YAML file shaped as `templates: [...]`.
// An empty path yields the built-in templates.
func Load(path string) (*Store, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read templates %s: %w", path, err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Store, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, common.NewAppError("TEMPLATES_ERROR", "parse templates yaml", err)
	}

	v := common.NewValidator()
	seen := map[string]bool{}
	for i, t := range f.Templates {
		field := fmt.Sprintf("templates[%d]", i)
		v.Field(field+".id", t.ID, common.Required)
		v.Field(field+".name", t.Name, common.Required, common.MaxLength(200))
		v.Check(!seen[t.ID], field+".id", t.ID, "must be unique")
		seen[t.ID] = true
	}
	if err := v.Error(); err != nil {
		return nil, err
	}
	return &Store{templates: f.Templates}, nil
}

func (s *Store) List() []entity.ParsingTemplate {
	return append([]entity.ParsingTemplate(nil), s.templates...)
}

// Get finds a template by id, or by name ignoring case.
func (s *Store) Get(nameOrID string) (entity.ParsingTemplate, error) {
	key := strings.TrimSpace(nameOrID)
	for _, t := range s.templates {
		if t.ID == key {
			return t, nil
		}
	}
	for _, t := range s.templates {
		if strings.EqualFold(t.Name, key) {
			return t, nil
		}
	}
	return entity.ParsingTemplate{}, fmt.Errorf("template %q: %w", nameOrID, common.ErrNotFound)
}

// Instruction returns the custom instruction for nameOrID; an empty name means none.
func (s *Store) Instruction(nameOrID string) (string, error) {
	if strings.TrimSpace(nameOrID) == "" {
		return "", nil
	}
	t, err := s.Get(nameOrID)
	if err != nil {
		return "", err
	}
	return t.CustomInstruction, nil
}
