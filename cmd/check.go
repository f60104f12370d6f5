package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"arboric/canopy/internal/integrity"
)

var checkJSON bool

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check hierarchy integrity: roots, dangling parents, multi-parent terms, cycles",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := OpenDatabase()
		if err != nil {
			return err
		}
		defer db.Close()

		snap, err := integrity.SnapshotFromDB(db)
		if err != nil {
			return fmt.Errorf("loading hierarchy: %w", err)
		}
		report := integrity.Check(snap)

		if checkJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}

		printReport(report)
		return nil
	},
}

func init() {
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(checkCmd)
}

func printReport(report *integrity.Report) {
	fmt.Printf("\n  Hierarchy health: %.0f%%\n", report.HealthScore*100)
	fmt.Printf("  breakdown: rooted=%.2f resolvable=%.2f single-parent=%.2f acyclic=%.2f\n\n",
		report.HealthBreakdown.Rooted,
		report.HealthBreakdown.Resolvable,
		report.HealthBreakdown.SingleParent,
		report.HealthBreakdown.Acyclic)

	fmt.Printf("  Terms: %d\n", report.TermCount)
	for _, v := range report.Vocabularies {
		fmt.Printf("    %-20s %4d terms  %3d roots  max depth %d\n",
			v.Vocabulary, v.TermCount, v.RootCount, v.MaxDepth)
	}

	if len(report.UnrootedTerms) > 0 {
		fmt.Printf("\n  %d terms without any hierarchy row (invisible to tree listings):\n", len(report.UnrootedTerms))
		for _, tid := range limitInt64(report.UnrootedTerms, 10) {
			fmt.Printf("    %d\n", tid)
		}
	}
	if len(report.DanglingRows) > 0 {
		fmt.Printf("\n  %d hierarchy rows with a missing parent:\n", len(report.DanglingRows))
		limit := min(len(report.DanglingRows), 10)
		for _, r := range report.DanglingRows[:limit] {
			fmt.Printf("    %d -> %d\n", r.TermID, r.Parent)
		}
	}
	if len(report.MultiParent) > 0 {
		fmt.Printf("\n  %d terms with multiple parents:\n", len(report.MultiParent))
		limit := min(len(report.MultiParent), 10)
		for _, m := range report.MultiParent[:limit] {
			fmt.Printf("    %d %s %v\n", m.TermID, m.Name, m.Parents)
		}
	}
	if len(report.Stranded) > 0 {
		fmt.Printf("\n  %d terms whose parent chain never reaches a root:\n", len(report.Stranded))
		limit := min(len(report.Stranded), 10)
		for _, s := range report.Stranded[:limit] {
			fmt.Printf("    %d %s (%s)\n", s.TermID, s.Name, s.Vocabulary)
		}
	}
	fmt.Println()
}

func limitInt64(ids []int64, n int) []int64 {
	if len(ids) > n {
		return ids[:n]
	}
	return ids
}
