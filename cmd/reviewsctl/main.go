package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"guestreviews/internal/adapters/observability"
	"guestreviews/internal/cli"
	"guestreviews/internal/shared"
)

func main() {
	cfg := shared.Load()
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCommand(cfg, cli.OpenMySQL).ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("reviewsctl failed")
		stop()
		os.Exit(1)
	}
}
