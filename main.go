// Package main is the entry point for the appauth CLI
package main

import (
	"github.com/jrschumacher/appauth/cmd"
	"github.com/jrschumacher/appauth/internal/config"
	"github.com/jrschumacher/appauth/internal/logger"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	cmd.Execute(cfg)
}
