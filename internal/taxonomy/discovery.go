package taxonomy

import (
	"fmt"
	"slices"
	"sort"

	"arboric/canopy/internal/schema"
)

// Discovery finds the columns across the schema that store references into
// the term hierarchy, filtered by the vocabulary they are allowed to target.
type Discovery struct {
	registry schema.Registry
}

// NewDiscovery builds a discovery over a schema registry
func NewDiscovery(registry schema.Registry) *Discovery {
	return &Discovery{registry: registry}
}

// ReferenceFields returns one descriptor per backing table that stores term
// references targeting vocab. A field with a non-empty vocabulary allow-list
// is skipped unless the list contains vocab; an empty list targets every
// vocabulary. When two fields share a backing table the first in
// (entity type, field name) order wins. The hierarchy's own parent column is
// shaped like a reference field and is excluded unless includeParent.
func (d *Discovery) ReferenceFields(vocab string, includeParent bool) ([]schema.ReferenceField, error) {
	candidates, err := d.registry.ReferenceFieldCandidates()
	if err != nil {
		return nil, fmt.Errorf("enumerating reference fields: %w", err)
	}

	// The registry contract is lexicographic order already; sort again so
	// "first match wins" does not depend on the implementation honoring it.
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].EntityType != candidates[j].EntityType {
			return candidates[i].EntityType < candidates[j].EntityType
		}
		return candidates[i].FieldName < candidates[j].FieldName
	})

	seen := make(map[string]bool)
	var out []schema.ReferenceField
	for _, c := range candidates {
		for _, bundle := range c.Bundles {
			settings, err := d.registry.FieldSettings(c.EntityType, bundle, c.FieldName)
			if err != nil {
				return nil, fmt.Errorf("reading settings of %s.%s: %w", c.EntityType, c.FieldName, err)
			}
			if settings == nil || settings.TargetType != schema.TermTargetType {
				continue
			}
			if len(settings.Vocabularies) > 0 && !slices.Contains(settings.Vocabularies, vocab) {
				continue
			}
			if !includeParent && settings.Table == hierarchyTable {
				continue
			}
			if seen[settings.Table] {
				continue
			}
			seen[settings.Table] = true
			out = append(out, schema.ReferenceField{
				EntityType: c.EntityType,
				FieldName:  c.FieldName,
				Table:      settings.Table,
				Column:     settings.Column,
			})
		}
	}
	return out, nil
}
