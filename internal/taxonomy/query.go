package taxonomy

import (
	"fmt"
	"regexp"
	"strings"

	"arboric/canopy/internal/schema"
)

// Table and column names from the schema metadata are spliced into
// generated SQL as identifiers, so they are validated first. Values always
// go through placeholders.
var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func ident(name string) (string, error) {
	if !identPattern.MatchString(name) {
		return "", fmt.Errorf("unsafe identifier in schema metadata: %q", name)
	}
	return `"` + name + `"`, nil
}

// refsQuery accumulates the fragments of one aggregate reference query:
// the closure CTE, one union branch per reference field, and (for listings)
// the label/bundle joins. Fragments are appended in placeholder order so
// args line up with the composed SQL.
type refsQuery struct {
	closure  string
	branches []string
	joins    []string
	labels   []string
	bundles  []string
	args     []any
}

// newRefsQuery seeds the closure CTE. With descendantsOnly the closure
// starts at the anchor's direct children and the anchor never matches;
// otherwise the anchor itself is part of the matched set. UNION keeps the
// expansion from revisiting a term, so cyclic data terminates.
func newRefsQuery(anchor int64, descendantsOnly bool) *refsQuery {
	q := &refsQuery{}
	if descendantsOnly {
		q.closure = `closure(tid) AS (
		SELECT h.tid FROM term_hierarchy h WHERE h.parent = ?
		UNION
		SELECT h.tid FROM term_hierarchy h JOIN closure c ON h.parent = c.tid
	)`
	} else {
		q.closure = `closure(tid) AS (
		SELECT ?
		UNION
		SELECT h.tid FROM term_hierarchy h JOIN closure c ON h.parent = c.tid
	)`
	}
	q.args = append(q.args, anchor)
	return q
}

// addField appends one union branch selecting (entity type, record id) for
// every row of the field's backing table whose foreign key lands in the
// closure.
func (q *refsQuery) addField(f schema.ReferenceField) error {
	table, err := ident(f.Table)
	if err != nil {
		return err
	}
	column, err := ident(f.Column)
	if err != nil {
		return err
	}
	alias := fmt.Sprintf("s%d", len(q.branches))
	q.branches = append(q.branches, fmt.Sprintf(
		"SELECT ? AS entity_type, %s.entity_id AS entity_id FROM %s %s JOIN closure c ON %s.%s = c.tid",
		alias, table, alias, alias, column,
	))
	q.args = append(q.args, f.EntityType)
	return nil
}

// addEntityTable appends one left join used to resolve labels and bundles
// for records of a single entity type.
func (q *refsQuery) addEntityTable(et *entityTable) error {
	table, err := ident(et.Table)
	if err != nil {
		return err
	}
	idCol, err := ident(et.IDColumn)
	if err != nil {
		return err
	}
	labelCol, err := ident(et.LabelColumn)
	if err != nil {
		return err
	}
	q.joins = append(q.joins, fmt.Sprintf(
		"LEFT JOIN %s %s ON r.entity_type = ? AND %s.%s = r.entity_id",
		table, et.Alias, et.Alias, idCol,
	))
	q.args = append(q.args, et.EntityType)
	q.labels = append(q.labels, fmt.Sprintf("%s.%s", et.Alias, labelCol))
	if et.BundleColumn != "" {
		bundleCol, err := ident(et.BundleColumn)
		if err != nil {
			return err
		}
		q.bundles = append(q.bundles, fmt.Sprintf("%s.%s", et.Alias, bundleCol))
	}
	return nil
}

// countSQL composes the count form: the deduplicating UNION of all branches,
// counted. UNION collapses a record referencing several closure terms into
// one (entity type, id) row.
func (q *refsQuery) countSQL() (string, []any) {
	sql := fmt.Sprintf(`WITH RECURSIVE %s,
	refs(entity_type, entity_id) AS (
		%s
	)
	SELECT COUNT(*) FROM refs`,
		q.closure, strings.Join(q.branches, "\n\t\tUNION\n\t\t"))
	// The count form carries no joins, so join args are excluded. The
	// closure holds one placeholder and each branch one more, in order.
	return sql, q.args[:1+len(q.branches)]
}

// listSQL composes the listing form: label is the first non-null joined
// label column, bundle the first non-null discriminator (empty string when
// no joined table has one). Types without a resolvable table keep their
// rows with a NULL label.
func (q *refsQuery) listSQL() (string, []any) {
	label := "NULL"
	if len(q.labels) == 1 {
		label = q.labels[0]
	} else if len(q.labels) > 1 {
		label = fmt.Sprintf("COALESCE(%s)", strings.Join(q.labels, ", "))
	}
	bundle := fmt.Sprintf("COALESCE(%s)", strings.Join(append(q.bundles, "''"), ", "))
	if len(q.bundles) == 0 {
		bundle = "''"
	}

	sql := fmt.Sprintf(`WITH RECURSIVE %s,
	refs(entity_type, entity_id) AS (
		%s
	)
	SELECT r.entity_type, r.entity_id, %s AS label, %s AS bundle
	FROM refs r
	%s
	ORDER BY r.entity_type, r.entity_id`,
		q.closure, strings.Join(q.branches, "\n\t\tUNION\n\t\t"),
		label, bundle, strings.Join(q.joins, "\n\t"))
	return sql, q.args
}
