package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/fuelsignal/leadgen-cli/internal/dossier"
	"github.com/fuelsignal/leadgen-cli/internal/model"
	"github.com/fuelsignal/leadgen-cli/internal/store"
)

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "Inspect discovered leads",
	Long:  "Commands for listing leads and viewing a full lead dossier.",
}

// -- leads list --

var leadsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List leads ordered by score",
	RunE: func(cmd *cobra.Command, _ []string) error {
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
		priority, _ := cmd.Flags().GetString("priority")
		minScore, _ := cmd.Flags().GetFloat64("min-score")
		limit, _ := cmd.Flags().GetInt("limit")

		leads, err := st.ListLeads(ctx, store.LeadFilter{
			Status:   model.LeadStatus(status),
			Priority: model.Priority(priority),
			MinScore: minScore,
			Limit:    limit,
		})
		if err != nil {
			return eris.Wrap(err, "leads list")
		}

		if len(leads) == 0 {
			fmt.Fprintln(os.Stderr, "No leads found.")
			return nil
		}

		formatLeadsList(os.Stdout, leads)
		return nil
	},
}

// -- leads show --

var leadsShowCmd = &cobra.Command{
	Use:   "show <lead-id>",
	Short: "Show a lead with its dossier",
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

		lead, err := st.GetLead(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "leads show")
		}

		out := struct {
			Lead        *model.Lead          `json:"lead"`
			Battlecards []dossier.Battlecard `json:"battlecards"`
			PitchScript string               `json:"pitch_script"`
		}{
			Lead:        lead,
			Battlecards: dossier.Cards(lead.Products),
			PitchScript: dossier.PitchScript(lead),
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func formatLeadsList(w io.Writer, leads []model.Lead) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCOMPANY\tINDUSTRY\tSCORE\tCONF\tPRIORITY\tSTATUS")
	for _, l := range leads {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.1f\t%.2f\t%s\t%s\n",
			shortID(l.ID), l.CompanyName, l.Industry, l.Score, l.Confidence, l.Priority, l.Status)
	}
	tw.Flush()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func init() {
	leadsListCmd.Flags().String("status", "", "filter by status (New, Assigned, Accepted, Rejected, Converted)")
	leadsListCmd.Flags().String("priority", "", "filter by priority (HIGH, MEDIUM, LOW)")
	leadsListCmd.Flags().Float64("min-score", 0, "minimum score")
	leadsListCmd.Flags().Int("limit", 50, "maximum rows")
	leadsCmd.AddCommand(leadsListCmd)
	leadsCmd.AddCommand(leadsShowCmd)
	rootCmd.AddCommand(leadsCmd)
}
