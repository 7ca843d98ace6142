package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/jrschumacher/appauth/internal/useragent"
	"github.com/spf13/cobra"
)

var (
	logoutIDToken  string
	logoutDiscover bool
	logoutTimeout  time.Duration
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the provider session through the system browser",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), logoutTimeout)
		defer cancel()

		h, svc := newFlow()
		md, err := resolveMetadata(ctx, h, svc, logoutDiscover)
		if err != nil {
			return err
		}

		if _, err := h.EndSession(ctx, md, logoutIDToken, useragent.NewLoopback()).Await(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "logged out")
		return nil
	},
}

func init() {
	logoutCmd.Flags().StringVar(&logoutIDToken, "id-token", "", "ID token sent as id_token_hint")
	logoutCmd.Flags().BoolVar(&logoutDiscover, "discover", false, "Read endpoints from the issuer's discovery document")
	logoutCmd.Flags().DurationVar(&logoutTimeout, "timeout", 2*time.Minute, "How long to wait for the browser flow")
	_ = logoutCmd.MarkFlagRequired("id-token")
	rootCmd.AddCommand(logoutCmd)
}
