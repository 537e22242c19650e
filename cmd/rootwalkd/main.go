// Command rootwalkd serves the rootwalk REST API: on-demand iterative
// resolution, statistics and the lookup journal.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ckousik/rootwalk/internal/api"
	"github.com/ckousik/rootwalk/internal/config"
	"github.com/ckousik/rootwalk/internal/history"
	"github.com/ckousik/rootwalk/internal/logging"
	"github.com/ckousik/rootwalk/internal/resolver"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to JSON configuration file (or set ROOTWALK_CONFIG)")
		host       = flag.String("host", "", "Override API bind host")
		port       = flag.Int("port", 0, "Override API bind port")
		noHistory  = flag.Bool("no-history", false, "Disable the lookup journal")
		jsonLogs   = flag.Bool("json-logs", false, "Enable JSON structured logging")
		debug      = flag.Bool("debug", false, "Enable debug logging")
	)
	flag.Parse()

	cfg, err := config.Load(config.ResolveConfigPath(*configPath))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	cfg.API.Enabled = true
	if *host != "" {
		cfg.API.Host = *host
	}
	if *port != 0 {
		cfg.API.Port = *port
	}
	if *noHistory {
		cfg.History.Enabled = false
	}
	if *jsonLogs {
		cfg.Logging.JSON = true
	}
	if *debug {
		cfg.Logging.Level = "DEBUG"
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.Configure(logging.Config{
		Level:       cfg.Logging.Level,
		JSON:        cfg.Logging.JSON,
		IncludePID:  cfg.Logging.IncludePID,
		ExtraFields: cfg.Logging.ExtraFields,
	})

	policy := resolver.PolicyStrict
	if cfg.Resolver.ErrorPolicy == "lenient" {
		policy = resolver.PolicyLenient
	}
	r := resolver.New(resolver.Options{
		Exchanger: &resolver.UDPExchanger{Timeout: cfg.TimeoutDuration()},
		Logger:    logger,
		Root:      cfg.RootAddrPort(),
		MaxDepth:  cfg.Resolver.MaxDepth,
		Policy:    policy,
	})

	var journal *history.Journal
	if cfg.History.Enabled {
		journal, err = history.Open(cfg.History.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open history journal: %v\n", err)
			os.Exit(1)
		}
		defer journal.Close()
	}

	logger.Info("rootwalkd starting",
		"root", cfg.Resolver.RootServer,
		"max_depth", cfg.Resolver.MaxDepth,
		"policy", cfg.Resolver.ErrorPolicy,
		"history", cfg.History.Enabled,
	)

	srv := api.New(cfg, r, journal, logger)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			fmt.Fprintf(os.Stderr, "server exited with error: %v\n", err)
			os.Exit(1)
		}
	case sig := <-sigCh:
		logger.Info("shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
		}
	}
}
