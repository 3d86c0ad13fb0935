package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/utafrali/storefront/internal/cli"
	"github.com/utafrali/storefront/internal/config"
	"github.com/utafrali/storefront/pkg/logger"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "warn"
	}

	root := cli.NewRootCommand(cli.Options{
		Out:    os.Stdout,
		Logger: logger.NewText("storefrontctl", level, os.Stderr),
		LoadConfig: func() (*config.Config, error) {
			return config.LoadWithDotEnv(".env")
		},
	})

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		cancel()
		os.Exit(1)
	}
}
