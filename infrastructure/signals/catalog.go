// Package signals provides the signal catalog, label resolution, and the
// grouping/presentation component of the review signal engine.
package signals

import (
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"

	"github.com/trailtap/stamprank/internal/domain"
	"github.com/trailtap/stamprank/internal/ports"
)

var _ ports.SignalCatalog = (*Catalog)(nil)

// Package-level validator instance for configuration validation.
var validate = validator.New()

// Catalog is an immutable, map-backed signal catalog. It is safe for
// concurrent use after construction.
type Catalog struct {
	byID    map[string]domain.SignalDefinition
	ordered []domain.SignalDefinition
}

// NewCatalog builds a catalog from signal definitions. Every definition
// is validated, and duplicate IDs are rejected so a bad reference file
// fails loudly at load time instead of corrupting lookups.
func NewCatalog(definitions []domain.SignalDefinition) (*Catalog, error) {
	byID := make(map[string]domain.SignalDefinition, len(definitions))
	ordered := make([]domain.SignalDefinition, 0, len(definitions))

	for _, def := range definitions {
		if err := validate.Struct(def); err != nil {
			return nil, domain.NewCatalogError(def.ID, "validate", fmt.Errorf("%w: %v", domain.ErrInvalidConfiguration, err))
		}
		if _, exists := byID[def.ID]; exists {
			return nil, domain.NewCatalogError(def.ID, "build", domain.ErrDuplicateSignal)
		}
		byID[def.ID] = def
		ordered = append(ordered, def)
	}

	// Present signals grouped by category, then by the curated sort
	// order within each category.
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Category != ordered[j].Category {
			return ordered[i].Category < ordered[j].Category
		}
		return ordered[i].SortOrder < ordered[j].SortOrder
	})

	return &Catalog{byID: byID, ordered: ordered}, nil
}

// Lookup returns the definition for a signal ID and whether it exists.
func (c *Catalog) Lookup(id string) (domain.SignalDefinition, bool) {
	def, ok := c.byID[id]
	return def, ok
}

// Signals returns all definitions ordered by category and sort order.
// The returned slice is a copy and safe to modify.
func (c *Catalog) Signals() []domain.SignalDefinition {
	out := make([]domain.SignalDefinition, len(c.ordered))
	copy(out, c.ordered)
	return out
}

// Len returns the number of definitions in the catalog.
func (c *Catalog) Len() int { return len(c.byID) }
