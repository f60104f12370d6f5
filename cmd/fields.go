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
	fieldsIncludeParent bool
	fieldsJSON          bool
)

var fieldsCmd = &cobra.Command{
	Use:   "fields <vocab>",
	Short: "List the columns across the schema that reference terms of a vocabulary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := OpenDatabase()
		if err != nil {
			return err
		}
		defer db.Close()

		discovery := taxonomy.NewDiscovery(schema.NewSQLiteRegistry(db))
		fields, err := discovery.ReferenceFields(args[0], fieldsIncludeParent)
		if err != nil {
			return err
		}

		if fieldsJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(fields)
		}
		if len(fields) == 0 {
			fmt.Printf("no reference fields target vocabulary %q\n", args[0])
			return nil
		}
		for _, f := range fields {
			fmt.Printf("%s.%s  ->  %s.%s\n", f.EntityType, f.FieldName, f.Table, f.Column)
		}
		return nil
	},
}

func init() {
	fieldsCmd.Flags().BoolVar(&fieldsIncludeParent, "include-parent", false, "Include the hierarchy's own parent column")
	fieldsCmd.Flags().BoolVar(&fieldsJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(fieldsCmd)
}
