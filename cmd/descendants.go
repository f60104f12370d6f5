package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"arboric/canopy/internal/taxonomy"
)

var (
	descVocab string
	descCount bool
	descJSON  bool
)

var descendantsCmd = &cobra.Command{
	Use:   "descendants [term]",
	Short: "List or count the descendants of a term, or a whole vocabulary",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := OpenDatabase()
		if err != nil {
			return err
		}
		defer db.Close()

		engine := taxonomy.NewEngine(db)

		var anchor int64
		vocab := descVocab
		if len(args) == 1 {
			term, err := ResolveTerm(db, args[0])
			if err != nil {
				return err
			}
			anchor = term.ID
			vocab = term.Vocabulary
		} else if vocab == "" {
			return fmt.Errorf("either a term or --vocab is required")
		}

		if descCount {
			n, err := engine.CountDescendants(anchor, vocab)
			if err != nil {
				return err
			}
			if descJSON {
				return json.NewEncoder(os.Stdout).Encode(map[string]int{"count": n})
			}
			fmt.Println(n)
			return nil
		}

		rows, err := engine.Descendants(anchor, vocab)
		if err != nil {
			return err
		}
		if descJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(rows)
		}
		for _, r := range rows {
			fmt.Printf("%s%d %s (parent=%d)\n", strings.Repeat("  ", r.Depth), r.Term.ID, r.Term.Name, r.Parent)
		}
		return nil
	},
}

func init() {
	descendantsCmd.Flags().StringVar(&descVocab, "vocab", "", "Vocabulary for whole-tree listing when no term is given")
	descendantsCmd.Flags().BoolVar(&descCount, "count", false, "Print only the count")
	descendantsCmd.Flags().BoolVar(&descJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(descendantsCmd)
}
