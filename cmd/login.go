package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/jrschumacher/appauth/internal/useragent"
	"github.com/spf13/cobra"
)

var (
	loginDiscover  bool
	loginTimeout   time.Duration
	loginAllClaims bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in through the system browser and print the tokens",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), loginTimeout)
		defer cancel()

		h, svc := newFlow()
		md, err := resolveMetadata(ctx, h, svc, loginDiscover)
		if err != nil {
			return err
		}

		authResp, err := h.Authorize(ctx, md, cfg.ClientID, useragent.NewLoopback()).Await(ctx)
		if err != nil {
			return err
		}
		if authResp == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "login cancelled")
			return nil
		}

		tokens, err := h.ExchangeCode(ctx, cfg.ClientID, authResp).Await(ctx)
		if err != nil {
			return err
		}
		return printTokens(ctx, cmd.OutOrStdout(), tokens, loginAllClaims)
	},
}

func init() {
	loginCmd.Flags().BoolVar(&loginDiscover, "discover", false, "Read endpoints from the issuer's discovery document")
	loginCmd.Flags().DurationVar(&loginTimeout, "timeout", 5*time.Minute, "How long to wait for the browser flow")
	loginCmd.Flags().BoolVar(&loginAllClaims, "all-claims", false, "Print every ID token claim, not only the standard ones")
	rootCmd.AddCommand(loginCmd)
}
