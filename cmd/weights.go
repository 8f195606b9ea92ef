package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var weightsCmd = &cobra.Command{
	Use:   "weights",
	Short: "Show learned scoring weight multipliers",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		entries := env.Pipeline.Weights()
		if len(entries) == 0 {
			fmt.Fprintln(os.Stderr, "No learned weights yet. Record lead outcomes to train them.")
			return nil
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "INDUSTRY\tTERM\tMULTIPLIER")
		for _, e := range entries {
			fmt.Fprintf(tw, "%s\t%s\t%.3f\n", e.Industry, e.Term, e.Multiplier)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(weightsCmd)
}
