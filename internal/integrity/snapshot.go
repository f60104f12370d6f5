// Package integrity checks the structural assumptions the taxonomy
// analysis makes but never validates: parent rows resolve, every term is
// rooted, trees are single-parent and acyclic. It loads the hierarchy once
// and works in memory.
package integrity

import (
	"arboric/canopy/internal/store"
)

// TermInfo is a lightweight term representation decoupled from DB types
type TermInfo struct {
	ID         int64
	Vocabulary string
	Name       string
	Parents    []int64 // RootParent entries mark a root attachment
}

// Snapshot holds the hierarchy with precomputed child adjacency
type Snapshot struct {
	Terms    map[int64]*TermInfo
	Rows     []store.HierarchyRow
	Children map[int64][]int64
}

// NewSnapshot builds a Snapshot from raw terms and hierarchy rows
func NewSnapshot(terms []*TermInfo, rows []store.HierarchyRow) *Snapshot {
	termMap := make(map[int64]*TermInfo, len(terms))
	for _, t := range terms {
		termMap[t.ID] = t
	}

	children := make(map[int64][]int64)
	for _, r := range rows {
		if t, ok := termMap[r.TermID]; ok {
			t.Parents = append(t.Parents, r.Parent)
		}
		if r.Parent != store.RootParent {
			children[r.Parent] = append(children[r.Parent], r.TermID)
		}
	}

	return &Snapshot{Terms: termMap, Rows: rows, Children: children}
}

// SnapshotFromDB loads every term and hierarchy row from the database
func SnapshotFromDB(d *store.DB) (*Snapshot, error) {
	rows, err := d.Conn().Query(`SELECT tid, vid, name FROM terms ORDER BY tid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var terms []*TermInfo
	for rows.Next() {
		var t TermInfo
		if err := rows.Scan(&t.ID, &t.Vocabulary, &t.Name); err != nil {
			return nil, err
		}
		terms = append(terms, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	hrows, err := d.Conn().Query(`SELECT tid, parent FROM term_hierarchy ORDER BY tid, parent`)
	if err != nil {
		return nil, err
	}
	defer hrows.Close()

	var hierarchy []store.HierarchyRow
	for hrows.Next() {
		var h store.HierarchyRow
		if err := hrows.Scan(&h.TermID, &h.Parent); err != nil {
			return nil, err
		}
		hierarchy = append(hierarchy, h)
	}
	if err := hrows.Err(); err != nil {
		return nil, err
	}

	return NewSnapshot(terms, hierarchy), nil
}
