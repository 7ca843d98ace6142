package cmd

import (
	"github.com/spf13/cobra"
)

type metadataOutput struct {
	Issuer                string `json:"issuer,omitempty"`
	AuthorizationEndpoint string `json:"authorization_endpoint"`
	TokenEndpoint         string `json:"token_endpoint"`
	RegistrationEndpoint  string `json:"registration_endpoint,omitempty"`
	EndSessionEndpoint    string `json:"end_session_endpoint,omitempty"`
}

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Print the provider metadata from the issuer's discovery document",
	RunE: func(cmd *cobra.Command, _ []string) error {
		h, svc := newFlow()
		md, err := resolveMetadata(cmd.Context(), h, svc, true)
		if err != nil {
			return err
		}

		out := metadataOutput{
			AuthorizationEndpoint: md.AuthorizationEndpoint.String(),
			TokenEndpoint:         md.TokenEndpoint.String(),
		}
		if md.Issuer != nil {
			out.Issuer = md.Issuer.String()
		}
		if md.RegistrationEndpoint != nil {
			out.RegistrationEndpoint = md.RegistrationEndpoint.String()
		}
		if md.EndSessionEndpoint != nil {
			out.EndSessionEndpoint = md.EndSessionEndpoint.String()
		}
		return printJSON(cmd.OutOrStdout(), out)
	},
}

func init() {
	rootCmd.AddCommand(discoverCmd)
}
