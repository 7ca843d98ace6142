package cmd

import (
	"fmt"

	"github.com/jrschumacher/appauth/internal/config"
	"github.com/spf13/cobra"
)

var configInitPath string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration commands",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a commented configuration template",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := config.WriteTemplate(configInitPath); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", configInitPath)
		return nil
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the loaded configuration, including every endpoint URL",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := config.ValidateAll(cfg); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "configuration is valid")
		return nil
	},
}

func init() {
	configInitCmd.Flags().StringVar(&configInitPath, "path", "config.yaml", "Where to write the template")
	configCmd.AddCommand(configInitCmd, configValidateCmd)
	rootCmd.AddCommand(configCmd)
}
