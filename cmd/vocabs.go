package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var vocabsJSON bool

var vocabsCmd = &cobra.Command{
	Use:   "vocabs",
	Short: "List vocabularies and their term counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := OpenDatabase()
		if err != nil {
			return err
		}
		defer db.Close()

		vocabs, err := db.Vocabularies()
		if err != nil {
			return err
		}
		if vocabsJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(vocabs)
		}
		for _, v := range vocabs {
			fmt.Printf("%-20s %d terms\n", v.Name, v.TermCount)
		}
		return nil
	},
}

func init() {
	vocabsCmd.Flags().BoolVar(&vocabsJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(vocabsCmd)
}
