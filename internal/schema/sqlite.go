package schema

import (
	"database/sql"
	"fmt"
	"strings"

	"arboric/canopy/internal/store"
)

// SQLiteRegistry reads field metadata from the analyzed database itself:
// the field_map table (one row per entity type / field / bundle) and the
// entity_tables table (one row per entity type).
type SQLiteRegistry struct {
	db *store.DB
}

// NewSQLiteRegistry builds a registry over an open database
func NewSQLiteRegistry(db *store.DB) *SQLiteRegistry {
	return &SQLiteRegistry{db: db}
}

// ReferenceFieldCandidates returns every reference field recorded in
// field_map, grouped by (entity_type, field_name) with the declaring
// bundles. Ordering is lexicographic so downstream "first wins" rules
// are deterministic.
func (r *SQLiteRegistry) ReferenceFieldCandidates() ([]FieldCandidate, error) {
	rows, err := r.db.Conn().Query(`
		SELECT entity_type, field_name, bundle
		FROM field_map
		ORDER BY entity_type, field_name, bundle
	`)
	if err != nil {
		return nil, fmt.Errorf("reading field_map: %w", err)
	}
	defer rows.Close()

	var out []FieldCandidate
	for rows.Next() {
		var entityType, fieldName, bundle string
		if err := rows.Scan(&entityType, &fieldName, &bundle); err != nil {
			return nil, err
		}
		n := len(out)
		if n > 0 && out[n-1].EntityType == entityType && out[n-1].FieldName == fieldName {
			out[n-1].Bundles = append(out[n-1].Bundles, bundle)
			continue
		}
		out = append(out, FieldCandidate{
			EntityType: entityType,
			FieldName:  fieldName,
			Bundles:    []string{bundle},
		})
	}
	return out, rows.Err()
}

// FieldSettings returns the settings row for one field on one bundle,
// or nil when the bundle does not declare the field.
func (r *SQLiteRegistry) FieldSettings(entityType, bundle, fieldName string) (*FieldSettings, error) {
	row := r.db.Conn().QueryRow(`
		SELECT target_type, storage_table, target_column, vocabularies
		FROM field_map
		WHERE entity_type = ? AND bundle = ? AND field_name = ?
	`, entityType, bundle, fieldName)

	var s FieldSettings
	var vocabs string
	err := row.Scan(&s.TargetType, &s.Table, &s.Column, &vocabs)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading field settings for %s.%s: %w", entityType, fieldName, err)
	}
	if vocabs != "" {
		s.Vocabularies = strings.Split(vocabs, ",")
	}
	return &s, nil
}

// TableInfo returns the storage descriptor for a record type, or nil when
// the type has no entity_tables row.
func (r *SQLiteRegistry) TableInfo(entityType string) (*TableInfo, error) {
	row := r.db.Conn().QueryRow(`
		SELECT table_name, id_column, label_column, bundle_column
		FROM entity_tables WHERE entity_type = ?
	`, entityType)

	var info TableInfo
	err := row.Scan(&info.Table, &info.IDColumn, &info.LabelColumn, &info.BundleColumn)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading entity table for %s: %w", entityType, err)
	}
	return &info, nil
}
