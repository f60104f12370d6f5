package store

import "database/sql"

// scanTerm scans a row into a Term. The row must have all 5 columns in standard order.
func scanTerm(scanner interface{ Scan(dest ...any) error }) (Term, error) {
	var t Term
	err := scanner.Scan(&t.ID, &t.Vocabulary, &t.Name, &t.Description, &t.Weight)
	return t, err
}

// GetTerm returns a single term by ID, or nil if not found
func (d *DB) GetTerm(tid int64) (*Term, error) {
	row := d.conn.QueryRow(`
		SELECT tid, vid, name, description, weight
		FROM terms WHERE tid = ?
	`, tid)

	t, err := scanTerm(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// TermsByName finds terms whose name matches exactly, falling back to a
// prefix match when nothing matches exactly. Results are capped at limit.
func (d *DB) TermsByName(name string, limit int) ([]Term, error) {
	terms, err := d.queryTerms(`
		SELECT tid, vid, name, description, weight
		FROM terms WHERE name = ? ORDER BY vid, tid LIMIT ?
	`, name, limit)
	if err != nil || len(terms) > 0 {
		return terms, err
	}
	return d.queryTerms(`
		SELECT tid, vid, name, description, weight
		FROM terms WHERE name LIKE ? ORDER BY vid, tid LIMIT ?
	`, name+"%", limit)
}

// HierarchyOf returns the parent rows for a term. Multiple rows indicate
// multi-parent data, which the analysis tolerates but does not expect.
func (d *DB) HierarchyOf(tid int64) ([]HierarchyRow, error) {
	rows, err := d.conn.Query(`SELECT tid, parent FROM term_hierarchy WHERE tid = ?`, tid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []HierarchyRow
	for rows.Next() {
		var h HierarchyRow
		if err := rows.Scan(&h.TermID, &h.Parent); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// Vocabularies lists every distinct vocabulary with its term count
func (d *DB) Vocabularies() ([]VocabularyInfo, error) {
	rows, err := d.conn.Query(`
		SELECT vid, COUNT(*) FROM terms GROUP BY vid ORDER BY vid
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []VocabularyInfo
	for rows.Next() {
		var v VocabularyInfo
		if err := rows.Scan(&v.Name, &v.TermCount); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (d *DB) queryTerms(query string, args ...any) ([]Term, error) {
	rows, err := d.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var terms []Term
	for rows.Next() {
		t, err := scanTerm(rows)
		if err != nil {
			return nil, err
		}
		terms = append(terms, t)
	}
	return terms, rows.Err()
}
