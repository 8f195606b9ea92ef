package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/fuelsignal/leadgen-cli/internal/model"
)

var officerCmd = &cobra.Command{
	Use:   "officer",
	Short: "Manage sales officers",
}

var officerAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a sales officer",
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

		name, _ := cmd.Flags().GetString("name")
		phone, _ := cmd.Flags().GetString("phone")
		email, _ := cmd.Flags().GetString("email")
		region, _ := cmd.Flags().GetString("region")

		officer := &model.Officer{
			Name:   name,
			Phone:  phone,
			Email:  email,
			Region: region,
			Active: true,
		}
		if err := st.CreateOfficer(ctx, officer); err != nil {
			return eris.Wrap(err, "officer add")
		}

		fmt.Printf("Officer %d (%s) registered.\n", officer.ID, officer.Name)
		return nil
	},
}

var officerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sales officers",
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

		activeOnly, _ := cmd.Flags().GetBool("active")
		officers, err := st.ListOfficers(ctx, activeOnly)
		if err != nil {
			return eris.Wrap(err, "officer list")
		}

		if len(officers) == 0 {
			fmt.Fprintln(os.Stderr, "No officers found.")
			return nil
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tREGION\tPHONE\tEMAIL\tACTIVE")
		for _, o := range officers {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%t\n",
				o.ID, o.Name, o.Region, o.Phone, o.Email, o.Active)
		}
		return tw.Flush()
	},
}

func init() {
	officerAddCmd.Flags().String("name", "", "officer name")
	officerAddCmd.Flags().String("phone", "", "phone number")
	officerAddCmd.Flags().String("email", "", "email address")
	officerAddCmd.Flags().String("region", "", "sales region")
	_ = officerAddCmd.MarkFlagRequired("name")

	officerListCmd.Flags().Bool("active", false, "only active officers")

	officerCmd.AddCommand(officerAddCmd)
	officerCmd.AddCommand(officerListCmd)
	rootCmd.AddCommand(officerCmd)
}
