package cmd

import (
	"github.com/spf13/cobra"

	apiclient "github.com/donaldgifford/rental-gateway/internal/api/client"
)

func pricingCmd() *cobra.Command {
	var p apiclient.PricingParams

	c := &cobra.Command{
		Use:   "pricing <listing_id>",
		Short: "Price a stay",
		Long: "Prices a stay for a listing and date range. The status line reports\n" +
			"price_on_request or temporarily_unavailable when Guesty cannot price it.",
		Args: cobra.ExactArgs(1),
		Example: `  rgw pricing 64f1c0ffee --check-in 2025-03-01 --check-out 2025-03-04
  rgw pricing 64f1c0ffee --check-in 2025-03-01 --check-out 2025-03-04 --guests 4 --children 2 --output json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p.ListingID = args[0]
			out, err := newClient().GetPricing(cmd.Context(), p)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(cmd.OutOrStdout(), out)
			}
			return printPricing(cmd.OutOrStdout(), out)
		},
	}
	c.Flags().StringVar(&p.CheckIn, "check-in", "", "check-in date (YYYY-MM-DD)")
	c.Flags().StringVar(&p.CheckOut, "check-out", "", "check-out date (YYYY-MM-DD)")
	c.Flags().IntVar(&p.Guests, "guests", 1, "total guests, infants excluded")
	c.Flags().IntVar(&p.Children, "children", 0, "children included in guests")
	c.Flags().IntVar(&p.Infants, "infants", 0, "infants")
	cobra.CheckErr(c.MarkFlagRequired("check-in"))
	cobra.CheckErr(c.MarkFlagRequired("check-out"))

	return c
}
