// Package taxonomy analyzes a term hierarchy stored in the database: it
// computes descendant closures over the parent adjacency table and resolves
// which records elsewhere in the schema reference a term or its descendants.
// All operations are read-only and compile to a single query against the
// store; nothing is cached between calls.
package taxonomy

import (
	"errors"
	"fmt"

	"arboric/canopy/internal/store"
)

// hierarchyTable is the parent adjacency table of the taxonomy itself.
const hierarchyTable = "term_hierarchy"

// maxDepth caps recursive expansion. The hierarchy is assumed acyclic but
// never validated; the cap keeps a cyclic parent chain from recursing
// without bound.
const maxDepth = 100

// ErrVocabularyRequired is returned by whole-tree operations called without
// a vocabulary name.
var ErrVocabularyRequired = errors.New("vocabulary is required when no anchor term is given")

// DescendantRow is one term in a descendant listing, annotated with its
// immediate parent and its depth relative to the anchor (or to the
// vocabulary roots, which have depth 0).
type DescendantRow struct {
	Term   store.Term `json:"term"`
	Parent int64      `json:"parent"`
	Depth  int        `json:"depth"`
}

// Engine computes descendant closures over the term hierarchy
type Engine struct {
	db *store.DB
}

// NewEngine builds a closure engine over an open database
func NewEngine(db *store.DB) *Engine {
	return &Engine{db: db}
}

// CountDescendants counts the terms below anchor. With anchor == 0 it
// counts every term in vocab instead (a flat count, no closure), and vocab
// is mandatory. The anchor itself is never counted; a leaf or unknown
// anchor yields 0.
func (e *Engine) CountDescendants(anchor int64, vocab string) (int, error) {
	if anchor == store.RootParent {
		if vocab == "" {
			return 0, ErrVocabularyRequired
		}
		var n int
		err := e.db.Conn().QueryRow(`SELECT COUNT(*) FROM terms WHERE vid = ?`, vocab).Scan(&n)
		if err != nil {
			return 0, fmt.Errorf("counting terms in %s: %w", vocab, err)
		}
		return n, nil
	}

	// COUNT(DISTINCT ...) so multi-parent rows cannot double-count a term.
	var n int
	err := e.db.Conn().QueryRow(`
		WITH RECURSIVE descendants(tid, parent, depth) AS (
			SELECT h.tid, h.parent, 1
			FROM term_hierarchy h
			WHERE h.parent = ?1
			UNION
			SELECT h.tid, h.parent, d.depth + 1
			FROM term_hierarchy h
			JOIN descendants d ON h.parent = d.tid
			WHERE d.depth < ?2
		)
		SELECT COUNT(DISTINCT tid) FROM descendants
	`, anchor, maxDepth).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting descendants of %d: %w", anchor, err)
	}
	return n, nil
}

// Descendants lists the terms below anchor with parent and depth, ordered
// by depth, then weight, then name. With anchor == 0 it lists every term in
// vocab instead, expanding from the roots (depth 0); vocab is mandatory.
// Each call is a single recursive query against the store.
func (e *Engine) Descendants(anchor int64, vocab string) ([]DescendantRow, error) {
	if anchor == store.RootParent {
		if vocab == "" {
			return nil, ErrVocabularyRequired
		}
		return e.queryDescendants(`
			WITH RECURSIVE tree(tid, parent, depth) AS (
				SELECT h.tid, h.parent, 0
				FROM term_hierarchy h
				JOIN terms t ON t.tid = h.tid
				WHERE h.parent = 0 AND t.vid = ?1
				UNION
				SELECT h.tid, h.parent, tr.depth + 1
				FROM term_hierarchy h
				JOIN tree tr ON h.parent = tr.tid
				WHERE tr.depth < ?2
			)
			SELECT t.tid, t.vid, t.name, t.description, t.weight, tr.parent, tr.depth
			FROM tree tr
			JOIN terms t ON t.tid = tr.tid
			ORDER BY tr.depth, t.weight, t.name, t.tid
		`, vocab, maxDepth)
	}

	return e.queryDescendants(`
		WITH RECURSIVE descendants(tid, parent, depth) AS (
			SELECT h.tid, h.parent, 1
			FROM term_hierarchy h
			WHERE h.parent = ?1
			UNION
			SELECT h.tid, h.parent, d.depth + 1
			FROM term_hierarchy h
			JOIN descendants d ON h.parent = d.tid
			WHERE d.depth < ?2
		)
		SELECT t.tid, t.vid, t.name, t.description, t.weight, d.parent, d.depth
		FROM descendants d
		JOIN terms t ON t.tid = d.tid
		ORDER BY d.depth, t.weight, t.name, t.tid
	`, anchor, maxDepth)
}

func (e *Engine) queryDescendants(query string, args ...any) ([]DescendantRow, error) {
	rows, err := e.db.Conn().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing descendants: %w", err)
	}
	defer rows.Close()

	var out []DescendantRow
	for rows.Next() {
		var r DescendantRow
		err := rows.Scan(
			&r.Term.ID, &r.Term.Vocabulary, &r.Term.Name, &r.Term.Description,
			&r.Term.Weight, &r.Parent, &r.Depth,
		)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
