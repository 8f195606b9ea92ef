package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/fuelsignal/leadgen-cli/internal/export"
	"github.com/fuelsignal/leadgen-cli/internal/model"
	"github.com/fuelsignal/leadgen-cli/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export <output.xlsx>",
	Short: "Export leads to an XLSX workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		status, _ := cmd.Flags().GetString("status")
		minScore, _ := cmd.Flags().GetFloat64("min-score")
		limit, _ := cmd.Flags().GetInt("limit")

		leads, err := st.ListLeads(ctx, store.LeadFilter{
			Status:   model.LeadStatus(status),
			MinScore: minScore,
			Limit:    limit,
		})
		if err != nil {
			return eris.Wrap(err, "export")
		}

		if err := export.LeadsXLSX(args[0], leads); err != nil {
			return err
		}
		fmt.Printf("Exported %d leads to %s.\n", len(leads), args[0])
		return nil
	},
}

func init() {
	exportCmd.Flags().String("status", "", "filter by status")
	exportCmd.Flags().Float64("min-score", 0, "minimum score")
	exportCmd.Flags().Int("limit", 500, "maximum rows")
	rootCmd.AddCommand(exportCmd)
}
