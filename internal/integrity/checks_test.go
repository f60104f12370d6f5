package integrity

import (
	"testing"

	"arboric/canopy/internal/store"
)

func info(id int64, vid, name string) *TermInfo {
	return &TermInfo{ID: id, Vocabulary: vid, Name: name}
}

func row(tid, parent int64) store.HierarchyRow {
	return store.HierarchyRow{TermID: tid, Parent: parent}
}

func TestCheck_CleanTree(t *testing.T) {
	snap := NewSnapshot(
		[]*TermInfo{info(1, "colors", "red"), info(2, "colors", "crimson"), info(3, "colors", "scarlet")},
		[]store.HierarchyRow{row(1, 0), row(2, 1), row(3, 2)},
	)
	report := Check(snap)

	if report.HealthScore != 1.0 {
		t.Errorf("health = %v, want 1.0", report.HealthScore)
	}
	if len(report.UnrootedTerms) != 0 || len(report.DanglingRows) != 0 ||
		len(report.MultiParent) != 0 || len(report.Stranded) != 0 {
		t.Errorf("clean tree reported defects: %+v", report)
	}
	if len(report.Vocabularies) != 1 {
		t.Fatalf("vocabularies = %+v", report.Vocabularies)
	}
	v := report.Vocabularies[0]
	if v.TermCount != 3 || v.RootCount != 1 || v.MaxDepth != 2 {
		t.Errorf("stats = %+v, want 3 terms, 1 root, max depth 2", v)
	}
}

func TestCheck_UnrootedTerm(t *testing.T) {
	snap := NewSnapshot(
		[]*TermInfo{info(1, "colors", "red"), info(2, "colors", "floating")},
		[]store.HierarchyRow{row(1, 0)},
	)
	report := Check(snap)

	if len(report.UnrootedTerms) != 1 || report.UnrootedTerms[0] != 2 {
		t.Errorf("unrooted = %v, want [2]", report.UnrootedTerms)
	}
	if len(report.Stranded) != 0 {
		t.Errorf("unrooted terms must not double-report as stranded: %v", report.Stranded)
	}
	if report.HealthScore >= 1.0 {
		t.Errorf("health = %v, want < 1.0", report.HealthScore)
	}
}

func TestCheck_DanglingParent(t *testing.T) {
	snap := NewSnapshot(
		[]*TermInfo{info(1, "colors", "red"), info(2, "colors", "lost")},
		[]store.HierarchyRow{row(1, 0), row(2, 99)},
	)
	report := Check(snap)

	if len(report.DanglingRows) != 1 || report.DanglingRows[0].Parent != 99 {
		t.Errorf("dangling = %+v, want one row pointing at 99", report.DanglingRows)
	}
	// The walk from 2 dead-ends at the missing parent
	if len(report.Stranded) != 1 || report.Stranded[0].TermID != 2 {
		t.Errorf("stranded = %+v, want term 2", report.Stranded)
	}
}

func TestCheck_MultiParent(t *testing.T) {
	snap := NewSnapshot(
		[]*TermInfo{info(1, "colors", "a"), info(2, "colors", "b"), info(3, "colors", "both")},
		[]store.HierarchyRow{row(1, 0), row(2, 0), row(3, 1), row(3, 2)},
	)
	report := Check(snap)

	if len(report.MultiParent) != 1 || report.MultiParent[0].TermID != 3 {
		t.Errorf("multi-parent = %+v, want term 3", report.MultiParent)
	}
	if len(report.Stranded) != 0 {
		t.Errorf("term 3 reaches a root, stranded = %+v", report.Stranded)
	}
}

func TestCheck_Cycle(t *testing.T) {
	snap := NewSnapshot(
		[]*TermInfo{info(1, "colors", "a"), info(2, "colors", "b"), info(3, "colors", "ok")},
		[]store.HierarchyRow{row(1, 2), row(2, 1), row(3, 0)},
	)
	report := Check(snap)

	if len(report.Stranded) != 2 {
		t.Fatalf("stranded = %+v, want terms 1 and 2", report.Stranded)
	}
	if report.Stranded[0].TermID != 1 || report.Stranded[1].TermID != 2 {
		t.Errorf("stranded = %+v, want terms 1 and 2", report.Stranded)
	}
}

func TestCheck_CycleHangingOffRoot(t *testing.T) {
	// 2 and 3 form a cycle reachable from nowhere; 2 also claims parent 1.
	// Any path to a root is enough to count as rooted.
	snap := NewSnapshot(
		[]*TermInfo{info(1, "colors", "root"), info(2, "colors", "a"), info(3, "colors", "b")},
		[]store.HierarchyRow{row(1, 0), row(2, 3), row(2, 1), row(3, 2)},
	)
	report := Check(snap)

	if len(report.Stranded) != 0 {
		t.Errorf("every term reaches a root through some chain, stranded = %+v", report.Stranded)
	}
}

func TestSnapshotFromDB(t *testing.T) {
	db, err := store.OpenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	db.Conn().SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Conn().Exec(`
		CREATE TABLE terms (tid INTEGER PRIMARY KEY, vid TEXT NOT NULL, name TEXT NOT NULL,
			description TEXT, weight INTEGER NOT NULL DEFAULT 0);
		CREATE TABLE term_hierarchy (tid INTEGER NOT NULL, parent INTEGER NOT NULL DEFAULT 0);
		INSERT INTO terms (tid, vid, name) VALUES (1, 'colors', 'red'), (2, 'colors', 'crimson');
		INSERT INTO term_hierarchy VALUES (1, 0), (2, 1);
	`)
	if err != nil {
		t.Fatal(err)
	}

	snap, err := SnapshotFromDB(db)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snap.Terms) != 2 {
		t.Fatalf("terms = %d, want 2", len(snap.Terms))
	}
	if got := snap.Terms[2].Parents; len(got) != 1 || got[0] != 1 {
		t.Errorf("parents of 2 = %v, want [1]", got)
	}
	if got := snap.Children[1]; len(got) != 1 || got[0] != 2 {
		t.Errorf("children of 1 = %v, want [2]", got)
	}
}
