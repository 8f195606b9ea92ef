package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var retrainCmd = &cobra.Command{
	Use:   "retrain",
	Short: "Retrain the propensity model from logged feedback",
	Long: "Fits the propensity model against every labeled feedback event and\n" +
		"persists it so future scoring passes use the updated predictions.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		result, err := env.Pipeline.Retrain(ctx)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

var rescoreCmd = &cobra.Command{
	Use:   "rescore [lead-id]",
	Short: "Recompute lead scores with current weights and model",
	Long: "With a lead ID, rescores that lead. Without arguments, rescores every\n" +
		"open lead so learned weight changes reach the whole backlog.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		if len(args) == 1 {
			lead, err := env.Pipeline.Rescore(ctx, args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(lead)
		}

		n, err := env.Pipeline.RescoreOpen(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Rescored %d open leads.\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(retrainCmd)
	rootCmd.AddCommand(rescoreCmd)
}
