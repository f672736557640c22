// Package catalog holds the static subject catalog. The built-in set covers
// the CSE subjects of the original curriculum; deployments can swap it for
// their own JSON file.
package catalog

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/frisoboot/examenbuddy/internal/model"
)

//go:embed subjects.json
var builtinFS embed.FS

// Catalog is a read-only set of subjects, never mutated at runtime.
type Catalog struct {
	subjects []model.Subject
	byID     map[string]model.Subject
}

// Load returns the built-in catalog, or the catalog read from path when path
// is non-empty.
func Load(path string) (*Catalog, error) {
	var data []byte
	var err error
	if path != "" {
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read subjects file %s: %w", path, err)
		}
	} else {
		data, err = builtinFS.ReadFile("subjects.json")
		if err != nil {
			return nil, fmt.Errorf("read built-in subjects: %w", err)
		}
	}

	var subjects []model.Subject
	if err := json.Unmarshal(data, &subjects); err != nil {
		return nil, fmt.Errorf("parse subjects: %w", err)
	}
	if len(subjects) == 0 {
		return nil, fmt.Errorf("subject catalog is empty")
	}

	byID := make(map[string]model.Subject, len(subjects))
	for _, s := range subjects {
		if s.ID == "" || s.Name == "" {
			return nil, fmt.Errorf("subject entry missing id or name: %+v", s)
		}
		if _, dup := byID[s.ID]; dup {
			return nil, fmt.Errorf("duplicate subject id %q", s.ID)
		}
		byID[s.ID] = s
	}

	return &Catalog{subjects: subjects, byID: byID}, nil
}

// All returns the subjects in catalog order.
func (c *Catalog) All() []model.Subject {
	return c.subjects
}

// Get returns the subject with the given id.
func (c *Catalog) Get(id string) (model.Subject, bool) {
	s, ok := c.byID[id]
	return s, ok
}
