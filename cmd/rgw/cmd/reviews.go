package cmd

import (
	"github.com/spf13/cobra"
)

func reviewsCmd() *cobra.Command {
	var language string

	c := &cobra.Command{
		Use:   "reviews <place_id>",
		Short: "Show Google reviews for a place",
		Args:  cobra.ExactArgs(1),
		Example: `  rgw reviews ChIJN1t_tDeuEmsRUsoyG83frY4
  rgw reviews ChIJN1t_tDeuEmsRUsoyG83frY4 --language nl --output json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := newClient().GetReviews(cmd.Context(), args[0], language)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(cmd.OutOrStdout(), out)
			}
			return printReviews(cmd.OutOrStdout(), out)
		},
	}
	c.Flags().StringVar(&language, "language", "", "review language (server default when empty)")

	return c
}
