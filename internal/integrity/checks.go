package integrity

import (
	"sort"

	"arboric/canopy/internal/store"
)

// DanglingRow is a hierarchy row whose parent does not exist
type DanglingRow struct {
	TermID int64 `json:"tid"`
	Parent int64 `json:"parent"`
}

// MultiParentTerm is a term with more than one hierarchy row
type MultiParentTerm struct {
	TermID  int64   `json:"tid"`
	Name    string  `json:"name"`
	Parents []int64 `json:"parents"`
}

// StrandedTerm is a term whose parent chain never reaches a root, either
// because of a cycle or because an ancestor's parent row dangles
type StrandedTerm struct {
	TermID     int64  `json:"tid"`
	Name       string `json:"name"`
	Vocabulary string `json:"vid"`
}

// VocabularyStats summarizes one vocabulary's tree shape
type VocabularyStats struct {
	Vocabulary string `json:"vid"`
	TermCount  int    `json:"term_count"`
	RootCount  int    `json:"root_count"`
	MaxDepth   int    `json:"max_depth"`
}

// HealthBreakdown shows the sub-scores of the health formula
type HealthBreakdown struct {
	Rooted       float64 `json:"rooted"`
	Resolvable   float64 `json:"resolvable"`
	SingleParent float64 `json:"single_parent"`
	Acyclic      float64 `json:"acyclic"`
}

// Report is the full integrity analysis result
type Report struct {
	HealthScore     float64           `json:"health_score"`
	HealthBreakdown HealthBreakdown   `json:"health_breakdown"`
	TermCount       int               `json:"term_count"`
	UnrootedTerms   []int64           `json:"unrooted_terms"`
	DanglingRows    []DanglingRow     `json:"dangling_rows"`
	MultiParent     []MultiParentTerm `json:"multi_parent"`
	Stranded        []StrandedTerm    `json:"stranded"`
	Vocabularies    []VocabularyStats `json:"vocabularies"`
}

// Check runs every integrity check and computes a composite health score
func Check(snap *Snapshot) *Report {
	report := &Report{TermCount: len(snap.Terms)}

	// Terms with no hierarchy row at all never show up in tree listings
	for id, t := range snap.Terms {
		if len(t.Parents) == 0 {
			report.UnrootedTerms = append(report.UnrootedTerms, id)
		}
	}
	sort.Slice(report.UnrootedTerms, func(i, j int) bool {
		return report.UnrootedTerms[i] < report.UnrootedTerms[j]
	})

	// Hierarchy rows pointing at a parent that does not exist
	for _, r := range snap.Rows {
		if r.Parent == store.RootParent {
			continue
		}
		if _, ok := snap.Terms[r.Parent]; !ok {
			report.DanglingRows = append(report.DanglingRows, DanglingRow(r))
		}
	}

	// Multi-parent terms
	for _, t := range snap.Terms {
		if len(t.Parents) > 1 {
			report.MultiParent = append(report.MultiParent, MultiParentTerm{
				TermID:  t.ID,
				Name:    t.Name,
				Parents: t.Parents,
			})
		}
	}
	sort.Slice(report.MultiParent, func(i, j int) bool {
		return report.MultiParent[i].TermID < report.MultiParent[j].TermID
	})

	// Stranded: no parent chain reaches a root, because of a cycle or a
	// dangling ancestor. Computed as reachability downward from every
	// root-attached term, which stays linear and needs no cycle handling.
	// Terms with no hierarchy row at all are already reported as unrooted.
	rooted := rootedSet(snap)
	for id, t := range snap.Terms {
		if len(t.Parents) == 0 || rooted[id] {
			continue
		}
		report.Stranded = append(report.Stranded, StrandedTerm{
			TermID:     id,
			Name:       t.Name,
			Vocabulary: t.Vocabulary,
		})
	}
	sort.Slice(report.Stranded, func(i, j int) bool {
		return report.Stranded[i].TermID < report.Stranded[j].TermID
	})

	report.Vocabularies = vocabularyStats(snap)
	report.HealthScore, report.HealthBreakdown = healthScore(report)
	return report
}

// rootedSet marks every term reachable from a root attachment by walking
// the child adjacency breadth-first.
func rootedSet(snap *Snapshot) map[int64]bool {
	rooted := make(map[int64]bool)
	var queue []int64
	for id, t := range snap.Terms {
		for _, p := range t.Parents {
			if p == store.RootParent {
				rooted[id] = true
				queue = append(queue, id)
				break
			}
		}
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, child := range snap.Children[id] {
			if !rooted[child] {
				rooted[child] = true
				queue = append(queue, child)
			}
		}
	}
	return rooted
}

func vocabularyStats(snap *Snapshot) []VocabularyStats {
	byVocab := make(map[string]*VocabularyStats)
	for _, t := range snap.Terms {
		s, ok := byVocab[t.Vocabulary]
		if !ok {
			s = &VocabularyStats{Vocabulary: t.Vocabulary}
			byVocab[t.Vocabulary] = s
		}
		s.TermCount++
		for _, p := range t.Parents {
			if p == store.RootParent {
				s.RootCount++
				break
			}
		}
		if d := depthOf(t.ID, snap); d > s.MaxDepth {
			s.MaxDepth = d
		}
	}

	out := make([]VocabularyStats, 0, len(byVocab))
	for _, s := range byVocab {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Vocabulary < out[j].Vocabulary })
	return out
}

// depthOf follows first parents up to a root, bounded by a visited set
func depthOf(id int64, snap *Snapshot) int {
	depth := 0
	visited := make(map[int64]bool)
	current := id
	for {
		if visited[current] {
			return depth // cycle
		}
		visited[current] = true
		t, ok := snap.Terms[current]
		if !ok || len(t.Parents) == 0 || t.Parents[0] == store.RootParent {
			return depth
		}
		current = t.Parents[0]
		depth++
	}
}

func healthScore(r *Report) (float64, HealthBreakdown) {
	total := float64(r.TermCount)
	b := HealthBreakdown{Rooted: 1, Resolvable: 1, SingleParent: 1, Acyclic: 1}
	if total > 0 {
		b.Rooted = clamp(1.0-float64(len(r.UnrootedTerms))/total, 0, 1)
		b.Resolvable = clamp(1.0-float64(len(r.DanglingRows))/total, 0, 1)
		b.SingleParent = clamp(1.0-float64(len(r.MultiParent))/total, 0, 1)
		b.Acyclic = clamp(1.0-float64(len(r.Stranded))/total, 0, 1)
	}
	score := 0.25*b.Rooted + 0.20*b.Resolvable + 0.15*b.SingleParent + 0.40*b.Acyclic
	return score, b
}

func clamp(val, min, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
