package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/harentsoaR/clinic-api/internal/auth"
	"github.com/harentsoaR/clinic-api/internal/cache"
	"github.com/harentsoaR/clinic-api/internal/config"
	"github.com/harentsoaR/clinic-api/internal/handlers"
	"github.com/harentsoaR/clinic-api/internal/metrics"
	"github.com/harentsoaR/clinic-api/internal/repository"
	"github.com/harentsoaR/clinic-api/internal/services"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}
}

func runServer(ctx context.Context) error {
	cfg, log, s, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer disconnect(s, log)

	if err := repository.EnsureIndexes(ctx, s); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}

	userCache, closeCache := newCache(ctx, cfg, log)
	defer closeCache()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	validate := services.NewValidator()
	users := services.NewUserService(repository.NewUsers(s), tokens, userCache, cfg.CacheTTL, validate, log)
	patients := services.NewPatientService(repository.NewPatients(s), validate, log)

	h := handlers.NewHandler(users, patients, s, log)
	router := handlers.NewRouter(h, handlers.RouterConfig{
		Origins: cfg.Origins(),
		Tokens:  tokens,
		Metrics: metrics.New(),
		Logger:  log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}

// newCache returns a Redis-backed profile cache when REDIS_ADDRESS is set
// and reachable, otherwise a no-op cache.
func newCache(ctx context.Context, cfg *config.Config, log zerolog.Logger) (services.Cache, func()) {
	if cfg.RedisAddress == "" {
		return cache.Noop{}, func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn().Err(err).Str("addr", cfg.RedisAddress).Msg("redis unavailable, user cache disabled")
		_ = client.Close()
		return cache.Noop{}, func() {}
	}

	log.Info().Str("addr", cfg.RedisAddress).Msg("connected to Redis")
	return cache.NewRedis(client), func() {
		if err := client.Close(); err != nil {
			log.Error().Err(err).Msg("redis close failed")
		}
	}
}
