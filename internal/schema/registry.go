// Package schema exposes the live field metadata of the analyzed database:
// which columns across the content tables hold references to taxonomy terms,
// and where each record type keeps its canonical id/label columns.
package schema

// TermTargetType is the referenced kind a field must declare for the
// taxonomy analysis to consider it a term reference.
const TermTargetType = "taxonomy_term"

// FieldCandidate names one reference-typed field declared by a record type,
// together with the sub-types (bundles) that declare it.
type FieldCandidate struct {
	EntityType string   `json:"entity_type"`
	FieldName  string   `json:"field_name"`
	Bundles    []string `json:"bundles"`
}

// FieldSettings is the per-bundle configuration of a reference field.
// An empty Vocabularies list means the field may target any vocabulary.
type FieldSettings struct {
	TargetType   string   `json:"target_type"`
	Vocabularies []string `json:"vocabularies"`
	Table        string   `json:"table"`
	Column       string   `json:"column"`
}

// ReferenceField describes one column, anywhere in the schema, that stores
// a foreign key to a term. Derived fresh on every discovery call.
type ReferenceField struct {
	EntityType string `json:"entity_type"`
	FieldName  string `json:"field_name"`
	Table      string `json:"table"`
	Column     string `json:"column"`
}

// TableInfo describes where a record type keeps its canonical columns.
// BundleColumn is empty when the type has no sub-type discriminator.
type TableInfo struct {
	Table        string `json:"table"`
	IDColumn     string `json:"id_column"`
	LabelColumn  string `json:"label_column"`
	BundleColumn string `json:"bundle_column"`
}

// Registry enumerates field and storage metadata for the analyzed schema.
// Implementations are expected to be cheap to call repeatedly; the taxonomy
// analysis does not memoize lookups.
type Registry interface {
	// ReferenceFieldCandidates returns every reference-typed field across
	// every record type, with the bundles declaring it. Order must be
	// stable; lexicographic by (entity type, field name) is the contract.
	ReferenceFieldCandidates() ([]FieldCandidate, error)

	// FieldSettings returns the settings of one field on one bundle, or
	// nil if that bundle does not declare the field.
	FieldSettings(entityType, bundle, fieldName string) (*FieldSettings, error)

	// TableInfo returns the storage descriptor for a record type, or nil
	// if the type is unknown.
	TableInfo(entityType string) (*TableInfo, error)
}
