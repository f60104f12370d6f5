package taxonomy

import (
	"database/sql"
	"fmt"

	"arboric/canopy/internal/schema"
	"arboric/canopy/internal/store"
)

// ReferencingRecord is one record, anywhere in the schema, that references
// the anchor term or one of its descendants. Label is nil when no entity
// table could be resolved for the record's type; Bundle is empty then.
type ReferencingRecord struct {
	EntityType string  `json:"entity_type"`
	ID         int64   `json:"id"`
	Label      *string `json:"label"`
	Bundle     string  `json:"bundle"`
}

// Aggregator resolves, in one aggregate query per call, which records
// across all discovered reference tables point at a term or its
// descendants.
type Aggregator struct {
	db        *store.DB
	registry  schema.Registry
	discovery *Discovery
}

// NewAggregator builds an aggregator over an open database and its schema
// registry
func NewAggregator(db *store.DB, registry schema.Registry) *Aggregator {
	return &Aggregator{db: db, registry: registry, discovery: NewDiscovery(registry)}
}

// CountReferencingRecords counts the distinct records referencing term or
// any of its descendants. With descendantsOnly the term itself is excluded
// from matching. A record referencing several terms of the closure counts
// once.
func (a *Aggregator) CountReferencingRecords(term store.Term, descendantsOnly bool) (int, error) {
	q, err := a.build(term, descendantsOnly)
	if err != nil || q == nil {
		return 0, err
	}
	query, args := q.countSQL()
	var n int
	if err := a.db.Conn().QueryRow(query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting records referencing term %d: %w", term.ID, err)
	}
	return n, nil
}

// ReferencingRecords lists the distinct records referencing term or any of
// its descendants, with a resolved label and bundle where the record type's
// storage is known. Ordered by entity type, then record id.
func (a *Aggregator) ReferencingRecords(term store.Term, descendantsOnly bool) ([]ReferencingRecord, error) {
	q, err := a.build(term, descendantsOnly)
	if err != nil || q == nil {
		return nil, err
	}

	query, args := q.listSQL()
	rows, err := a.db.Conn().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing records referencing term %d: %w", term.ID, err)
	}
	defer rows.Close()

	var out []ReferencingRecord
	for rows.Next() {
		var r ReferencingRecord
		var label sql.NullString
		if err := rows.Scan(&r.EntityType, &r.ID, &label, &r.Bundle); err != nil {
			return nil, err
		}
		if label.Valid {
			r.Label = &label.String
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// build assembles the aggregate query for term. Returns (nil, nil) when
// discovery finds no reference fields, in which case no query is issued at
// all.
func (a *Aggregator) build(term store.Term, descendantsOnly bool) (*refsQuery, error) {
	fields, err := a.discovery.ReferenceFields(term.Vocabulary, false)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, nil
	}

	q := newRefsQuery(term.ID, descendantsOnly)
	for _, f := range fields {
		if err := q.addField(f); err != nil {
			return nil, err
		}
	}

	// Label joins, one per distinct entity type in field order. Types the
	// registry cannot resolve are skipped; their rows surface with a NULL
	// label.
	seen := make(map[string]bool)
	for _, f := range fields {
		if seen[f.EntityType] {
			continue
		}
		seen[f.EntityType] = true
		et, err := resolveEntityTable(a.registry, f.EntityType, len(q.joins))
		if err != nil {
			return nil, err
		}
		if et == nil {
			continue
		}
		if err := q.addEntityTable(et); err != nil {
			return nil, err
		}
	}
	return q, nil
}
