package cli

import (
	"encoding/json"
	"fmt"

	"github.com/lacquerai/rankview/pkg/schema"
	"github.com/spf13/cobra"
)

// schemaCmd represents the schema command
var schemaCmd = &cobra.Command{
	Use:    "schema",
	Short:  "Output the dashboard API schema",
	Long:   `Output the JSON schemas of the dashboard API payloads, its HTTP routes and the default metric vocabulary.`,
	Hidden: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		output, err := schema.GetSchema()
		if err != nil {
			return fmt.Errorf("generating schema: %w", err)
		}

		outputBytes, err := json.MarshalIndent(output, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling schema: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), string(outputBytes))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}
