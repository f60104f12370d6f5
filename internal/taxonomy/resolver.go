package taxonomy

import (
	"fmt"
	"strings"
	"unicode"

	"arboric/canopy/internal/schema"
)

// entityTable is a resolved storage descriptor plus the alias it carries
// inside a generated query.
type entityTable struct {
	schema.TableInfo
	EntityType string
	Alias      string
}

// resolveEntityTable looks up where entityType keeps its id, label and
// bundle columns. Returns nil when the type is unknown or the descriptor is
// missing an id or label column; callers keep such rows with a NULL label.
func resolveEntityTable(registry schema.Registry, entityType string, idx int) (*entityTable, error) {
	info, err := registry.TableInfo(entityType)
	if err != nil {
		return nil, fmt.Errorf("resolving table for %s: %w", entityType, err)
	}
	if info == nil || info.Table == "" || info.IDColumn == "" || info.LabelColumn == "" {
		return nil, nil
	}
	return &entityTable{
		TableInfo:  *info,
		EntityType: entityType,
		Alias:      tableAlias(entityType, idx),
	}, nil
}

// tableAlias derives a query alias from the type name: letters only,
// truncated, with a sequence number so similarly named types cannot
// collide inside one query.
func tableAlias(entityType string, idx int) string {
	var b strings.Builder
	for _, r := range entityType {
		if unicode.IsLetter(r) {
			b.WriteRune(r)
		}
	}
	base := b.String()
	if len(base) > 8 {
		base = base[:8]
	}
	if base == "" {
		base = "e"
	}
	return fmt.Sprintf("%s_%d", base, idx)
}
