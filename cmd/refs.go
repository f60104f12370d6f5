package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"arboric/canopy/internal/schema"
	"arboric/canopy/internal/taxonomy"
)

var (
	refsDescendantsOnly bool
	refsCount           bool
	refsJSON            bool
)

var refsCmd = &cobra.Command{
	Use:   "refs <term>",
	Short: "List or count the records referencing a term or its descendants",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := OpenDatabase()
		if err != nil {
			return err
		}
		defer db.Close()

		term, err := ResolveTerm(db, args[0])
		if err != nil {
			return err
		}
		aggregator := taxonomy.NewAggregator(db, schema.NewSQLiteRegistry(db))

		if refsCount {
			n, err := aggregator.CountReferencingRecords(*term, refsDescendantsOnly)
			if err != nil {
				return err
			}
			if refsJSON {
				return json.NewEncoder(os.Stdout).Encode(map[string]int{"count": n})
			}
			fmt.Println(n)
			return nil
		}

		records, err := aggregator.ReferencingRecords(*term, refsDescendantsOnly)
		if err != nil {
			return err
		}
		if refsJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(records)
		}
		if len(records) == 0 {
			fmt.Printf("nothing references %q\n", term.Name)
			return nil
		}
		for _, r := range records {
			label := "(unresolved)"
			if r.Label != nil {
				label = *r.Label
			}
			if r.Bundle != "" {
				fmt.Printf("%s/%d  %s [%s]\n", r.EntityType, r.ID, label, r.Bundle)
			} else {
				fmt.Printf("%s/%d  %s\n", r.EntityType, r.ID, label)
			}
		}
		return nil
	},
}

func init() {
	refsCmd.Flags().BoolVar(&refsDescendantsOnly, "descendants-only", false, "Match only strict descendants, never the term itself")
	refsCmd.Flags().BoolVar(&refsCount, "count", false, "Print only the count")
	refsCmd.Flags().BoolVar(&refsJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(refsCmd)
}
