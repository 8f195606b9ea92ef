package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fuelsignal/leadgen-cli/internal/model"
)

var outcomeCmd = &cobra.Command{
	Use:   "outcome <lead-id> <status>",
	Short: "Record an officer outcome for a lead",
	Long: "Moves a lead through its status lifecycle (Assigned, Accepted, Rejected, Converted).\n" +
		"Terminal outcomes feed the adaptive weight table and the propensity model.",
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		var officerID *int64
		if id, _ := cmd.Flags().GetInt64("officer"); id > 0 {
			officerID = &id
		}
		notes, _ := cmd.Flags().GetString("notes")

		event, err := env.Pipeline.RecordOutcome(ctx, args[0], model.LeadStatus(args[1]), officerID, notes)
		if err != nil {
			return err
		}

		if event == nil {
			fmt.Printf("Lead %s is now %s.\n", args[0], args[1])
			return nil
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(event)
	},
}

func init() {
	outcomeCmd.Flags().Int64("officer", 0, "officer ID recording the outcome")
	outcomeCmd.Flags().String("notes", "", "free-form outcome notes")
	rootCmd.AddCommand(outcomeCmd)
}
