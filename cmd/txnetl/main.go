// Command txnetl loads the users and transactions CSV files through the
// cleaning pipeline into a relational store, then serves the read API over
// the loaded data.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"txnetl/internal/api"
	"txnetl/internal/config"
	"txnetl/internal/ingest"
	"txnetl/internal/logger"
	"txnetl/internal/metrics"
	"txnetl/internal/metrics/prompush"
	"txnetl/internal/storage"
	_ "txnetl/internal/storage/all" // register the sqlite and postgres backends
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "txnetl:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Default()

	// Precedence, lowest first: defaults, .env, process env, flags. Flags go
	// last because pflag registers the current values as its defaults.
	dotenv, err := config.LoadDotEnv(".env")
	if err != nil {
		return fmt.Errorf("read .env: %w", err)
	}
	cfg.LoadEnv(func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return dotenv[key]
	})

	fs := pflag.NewFlagSet("txnetl", pflag.ContinueOnError)
	cfg.RegisterFlags(fs)
	if err := fs.Parse(os.Args[1:]); err != nil {
		return err
	}

	issues := cfg.Validate()
	for _, issue := range issues {
		fmt.Fprintln(os.Stderr, "txnetl: config:", issue)
	}
	if config.HasErrors(issues) {
		return fmt.Errorf("invalid configuration")
	}

	log, counts := logger.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	if cfg.MetricsBackend == "pushgateway" {
		backend, err := prompush.NewBackend("txnetl", cfg.PushgatewayURL)
		if err != nil {
			return err
		}
		metrics.SetBackend(backend)
		defer func() {
			if err := metrics.Flush(); err != nil {
				log.Warn("pushing metrics", "error", err)
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(ctx, cfg.DatabaseKind, cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.DatabaseKind, err)
	}
	defer store.Close()

	orch := ingest.New(store, log, ingest.Options{
		ResetTables: cfg.ResetTables,
		RejectDir:   cfg.RejectDir,
	})
	report, err := orch.Ingest(ctx, cfg.UsersCSV, cfg.TransactionsCSV)
	if err != nil {
		log.Critical("ingestion failed", "error", err)
		return err
	}
	log.Info("ingestion report",
		"users_read", report.Users.Read,
		"users_accepted", report.Users.Accepted,
		"transactions_read", report.Transactions.Read,
		"transactions_accepted", report.Transactions.Accepted,
	)

	if cfg.IngestOnly {
		return nil
	}

	server := api.NewServer(api.Config{Addr: cfg.ListenAddr}, store, counts, log)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.ListenAndServe(ctx)
	})
	if err := g.Wait(); err != nil {
		log.Critical("api server failed", "error", err)
		return err
	}
	return nil
}
