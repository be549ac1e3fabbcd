package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/harentsoaR/clinic-api/internal/config"
	"github.com/harentsoaR/clinic-api/internal/logger"
	"github.com/harentsoaR/clinic-api/internal/store"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "clinic-api",
		Short:         "Clinic patient management API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap loads configuration, builds the logger and opens the store.
func bootstrap(ctx context.Context) (*config.Config, zerolog.Logger, *store.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), nil, fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.Env, cfg.LogLevel)

	s := store.New()
	if err := s.Connect(ctx, cfg.MongoURI, cfg.DBName); err != nil {
		return nil, log, nil, fmt.Errorf("connect to database: %w", err)
	}
	log.Info().Str("database", cfg.DBName).Msg("connected to MongoDB")
	return cfg, log, s, nil
}

func disconnect(s *store.Store, log zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Disconnect(ctx); err != nil {
		log.Error().Err(err).Msg("database disconnect failed")
	}
}
