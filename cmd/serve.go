package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/subcommands"

	"github.com/etnz/stress"
	"github.com/etnz/stress/config"
	"github.com/etnz/stress/logger"
	"github.com/etnz/stress/server"
)

type serveCmd struct {
	addr string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "start the stress testing web tool" }
func (*serveCmd) Usage() string {
	return `pst serve [-addr :8080]

  Serves a single page to upload a portfolio, choose a scenario and download
  the results. Settings are read from the PST_* environment variables and
  from a .env file, see 'pst topic web'.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.addr, "addr", "", "Listen address. Overrides PST_ADDR.")
}

// config loads the configuration and applies the command line overrides.
func (c *serveCmd) config() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if c.addr != "" {
		cfg.Addr = c.addr
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *scenariosFile != "" {
		cfg.ScenariosFile = *scenariosFile
	}
	if *scenariosPath != "" {
		cfg.ScenariosPath = *scenariosPath
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *serveCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := c.config()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.DevMode})

	reg, err := stress.LoadRegistry(cfg.ScenariosFile, cfg.ScenariosPath)
	if err != nil {
		log.Error().Err(err).Str("file", cfg.ScenariosFile).Msg("Failed to load scenarios")
		return subcommands.ExitFailure
	}
	log.Info().Int("scenarios", reg.Len()).Msg("Scenarios loaded")

	srv := server.New(server.Config{
		Addr:           cfg.Addr,
		Log:            log,
		Registry:       reg,
		Currency:       cfg.Currency,
		SessionTTL:     cfg.SessionTTL,
		MaxUploadBytes: cfg.MaxUploadBytes(),
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- srv.Start() }()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Server failed")
			return subcommands.ExitFailure
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server forced to shutdown")
			return subcommands.ExitFailure
		}
	}
	return subcommands.ExitSuccess
}
