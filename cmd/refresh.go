package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	refreshToken    string
	refreshDiscover bool
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Exchange a refresh token for new tokens",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		h, svc := newFlow()
		md, err := resolveMetadata(ctx, h, svc, refreshDiscover)
		if err != nil {
			return err
		}

		tokens, err := h.RefreshAccessToken(ctx, md, cfg.ClientID, refreshToken).Await(ctx)
		if err != nil {
			return err
		}
		if tokens == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "refresh token expired, run login again")
			return nil
		}
		return printTokens(ctx, cmd.OutOrStdout(), tokens, false)
	},
}

func init() {
	refreshCmd.Flags().StringVar(&refreshToken, "refresh-token", "", "Refresh token returned by login")
	refreshCmd.Flags().BoolVar(&refreshDiscover, "discover", false, "Read endpoints from the issuer's discovery document")
	_ = refreshCmd.MarkFlagRequired("refresh-token")
	rootCmd.AddCommand(refreshCmd)
}
