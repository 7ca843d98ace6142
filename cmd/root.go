package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/jrschumacher/appauth/internal/apperr"
	"github.com/jrschumacher/appauth/internal/config"
	"github.com/jrschumacher/appauth/internal/logger"
	"github.com/spf13/cobra"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:           "appauth",
	Short:         "appauth CLI",
	Long:          `appauth: OAuth 2.0 / OpenID Connect authorization code flow client with PKCE`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute(c *config.Config) {
	cfg = c
	logger.Info("Starting CLI", "env", cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.Error("CLI error", "error", err)
		printError(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// printError shows application errors as a title and description.
func printError(w io.Writer, err error) {
	var appErr *apperr.ApplicationError
	if errors.As(err, &appErr) {
		fmt.Fprintf(w, "%s\n%s\n", appErr.Title, appErr.DisplayDescription())
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
}
