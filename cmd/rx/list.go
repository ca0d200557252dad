package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/rolodex/internal/model"
	"github.com/alfredjeanlab/rolodex/internal/ui"
)

var listCmd = &cobra.Command{
	Use:     "list <entity>",
	Short:   "List customers, employees or suppliers",
	GroupID: "records",
	Args:    cobra.ExactArgs(1),
	Example: `  rx list customers --name ann
  rx list employees --email acme --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		entity, err := model.ParseEntity(args[0])
		if err != nil {
			return err
		}

		records, err := recordsClient.ListRecords(cmd.Context(), entity, filterFlags(cmd))
		if err != nil {
			return fmt.Errorf("listing %s: %w", entity, err)
		}

		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), records)
		}
		return printRecordTable(cmd.OutOrStdout(), entity, records, !ui.ShouldUseColor())
	},
}

// addFilterFlags registers --name and --email on cmd.
func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().String("name", "", "substring filter on the name (first or last name for employees)")
	cmd.Flags().String("email", "", "substring filter on the email")
}

func filterFlags(cmd *cobra.Command) model.RecordFilter {
	name, _ := cmd.Flags().GetString("name")
	email, _ := cmd.Flags().GetString("email")
	return model.RecordFilter{Name: name, Email: email}
}

func init() {
	addFilterFlags(listCmd)
}
