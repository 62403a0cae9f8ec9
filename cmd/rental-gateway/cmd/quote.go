package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/rental-gateway/internal/api/handlers"
	"github.com/donaldgifford/rental-gateway/internal/config"
	"github.com/donaldgifford/rental-gateway/pkg/logger"
)

type quoteFlags struct {
	checkIn  string
	checkOut string
	guests   int
	children int
	infants  int
}

func quoteCommand() *cobra.Command {
	var f quoteFlags

	quoteCmd := &cobra.Command{
		Use:   "quote <listing_id>",
		Short: "Price a stay directly against Guesty",
		Long: "Loads the config, fetches a token, and prices one stay without starting the server.\n" +
			"Useful for checking credentials and upstream response shapes.",
		Args: cobra.ExactArgs(1),
		Example: `  rental-gateway quote 64f1c0ffee --check-in 2025-03-01 --check-out 2025-03-04
  rental-gateway quote 64f1c0ffee --check-in 2025-03-01 --check-out 2025-03-04 --guests 3 --children 1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuote(cmd, args[0], f)
		},
	}
	quoteCmd.Flags().StringVar(&f.checkIn, "check-in", "", "check-in date (YYYY-MM-DD)")
	quoteCmd.Flags().StringVar(&f.checkOut, "check-out", "", "check-out date (YYYY-MM-DD)")
	quoteCmd.Flags().IntVar(&f.guests, "guests", 1, "total guests, infants excluded")
	quoteCmd.Flags().IntVar(&f.children, "children", 0, "children included in guests")
	quoteCmd.Flags().IntVar(&f.infants, "infants", 0, "infants")
	cobra.CheckErr(quoteCmd.MarkFlagRequired("check-in"))
	cobra.CheckErr(quoteCmd.MarkFlagRequired("check-out"))

	return quoteCmd
}

func runQuote(cmd *cobra.Command, listingID string, f quoteFlags) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log := logger.NewWithWriter(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)

	ps := newPricingStack(cfg, log)
	h := handlers.NewPricingHandler(ps.service)

	out, err := h.PostPricing(cmd.Context(), &handlers.PricingBodyInput{Body: handlers.PricingRequest{
		ListingID: listingID,
		CheckIn:   f.checkIn,
		CheckOut:  f.checkOut,
		Guests:    f.guests,
		Children:  f.children,
		Infants:   f.infants,
	}})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out.Body)
}
