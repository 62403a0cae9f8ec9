package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func tokensCmd() *cobra.Command {
	tokensRoot := &cobra.Command{
		Use:   "tokens",
		Short: "Inspect and reset cached Guesty tokens",
		Long: "Each Guesty scope (open_api, booking_engine:api) has one cached token.\n" +
			"Token values are never shown.",
	}

	tokensRoot.AddCommand(
		tokensListCmd(),
		tokensInvalidateCmd(),
	)

	return tokensRoot
}

func tokensListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List token broker state",
		Example: `  rgw tokens list
  rgw tokens list --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tokens, err := newClient().ListTokens(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(cmd.OutOrStdout(), tokens)
			}
			if len(tokens) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No token brokers configured.")
				return nil
			}
			return printTokensTable(cmd.OutOrStdout(), tokens)
		},
	}
}

func tokensInvalidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "invalidate <scope>",
		Short:   "Drop the cached token of a scope",
		Args:    cobra.ExactArgs(1),
		Example: `  rgw tokens invalidate open_api`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := newClient().InvalidateToken(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Token for %s invalidated.\n", args[0])
			return nil
		},
	}
}
