package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/skill-pathway/internal/server"
	"github.com/jonathan/skill-pathway/internal/server/ratelimit"
)

var (
	servePort      int
	serveRateLimit bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes the onboarding and pathway workflow over the configured store.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on")
	serveCmd.Flags().BoolVar(&serveRateLimit, "rate-limit", true, "Limit requests per client")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	svc, _, cleanup, err := newService(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	defer cleanup()

	limits := ratelimit.DefaultConfig()
	limits.Enabled = serveRateLimit
	limits.Whitelist = ratelimit.ParseIPList(os.Getenv("RATE_LIMIT_WHITELIST"))
	limits.Blacklist = ratelimit.ParseIPList(os.Getenv("RATE_LIMIT_BLACKLIST"))

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	srv := server.New(server.Config{Port: servePort, RateLimit: limits}, svc, logger)
	return srv.Start(ctx)
}
