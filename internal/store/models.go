package store

// RootParent is the sentinel parent value marking a hierarchy root.
const RootParent int64 = 0

// Term represents a row in the terms table
type Term struct {
	ID          int64   `json:"tid"`
	Vocabulary  string  `json:"vid"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Weight      int     `json:"weight"`
}

// HierarchyRow represents a row in the term_hierarchy table.
// Parent is RootParent for roots.
type HierarchyRow struct {
	TermID int64 `json:"tid"`
	Parent int64 `json:"parent"`
}

// VocabularyInfo summarizes one vocabulary for listings
type VocabularyInfo struct {
	Name      string `json:"vid"`
	TermCount int    `json:"term_count"`
}
