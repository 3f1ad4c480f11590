// Command server runs the equalplay match service.
//
// Usage:
//
//	equalplay serve --config config.yaml
//	equalplay migrate --config config.yaml
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/maxviazov/equalplay-service/internal/config"
	"github.com/maxviazov/equalplay-service/internal/handler"
	"github.com/maxviazov/equalplay-service/internal/logger"
	"github.com/maxviazov/equalplay-service/internal/repository"
	"github.com/maxviazov/equalplay-service/internal/repository/memory"
	"github.com/maxviazov/equalplay-service/internal/repository/postgres"
	redisrepo "github.com/maxviazov/equalplay-service/internal/repository/redis"
	"github.com/maxviazov/equalplay-service/internal/service"
	goredis "github.com/redis/go-redis/v9"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// .env is optional; it only feeds APP_* variables to the config loader
	_ = godotenv.Load(".env")

	var configPath string
	root := &cobra.Command{
		Use:          "equalplay",
		Short:        "Playing-time tracking and substitution suggestions for a live match",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), configPath)
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "Path to the YAML config file")

	root.AddCommand(serveCmd(&configPath))
	root.AddCommand(migrateCmd(&configPath))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := root.ExecuteContext(ctx); err != nil {
		log.Printf("❌ %v", err)
		os.Exit(1)
	}
}

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), *configPath)
		},
	}
}

func migrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply Postgres schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, appLogger, err := bootstrap(*configPath)
			if err != nil {
				return err
			}
			pool, err := repository.NewPool(cmd.Context(), cfg.Postgres, &appLogger)
			if err != nil {
				return fmt.Errorf("postgres connection failed: %w", err)
			}
			defer pool.Close()
			if err := postgres.Migrate(cmd.Context(), pool); err != nil {
				return err
			}
			appLogger.Info().Msg("✅ Migrations applied")
			return nil
		},
	}
}

func bootstrap(configPath string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("config loading failed: %w", err)
	}
	if cfg.Logger.Env == "" {
		cfg.Logger.Env = cfg.App.Env
	}
	if cfg.Logger.ServiceName == "" {
		cfg.Logger.ServiceName = cfg.App.Name
	}
	if cfg.Logger.ServiceVersion == "" {
		cfg.Logger.ServiceVersion = cfg.App.Version
	}
	appLogger, err := logger.New(&cfg.Logger)
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("logger initialization failed: %w", err)
	}
	// handlers log through the global logger
	zlog.Logger = appLogger
	return cfg, appLogger, nil
}

func runServe(ctx context.Context, configPath string) error {
	cfg, appLogger, err := bootstrap(configPath)
	if err != nil {
		return err
	}

	store, closeStore, err := openStore(ctx, cfg, &appLogger)
	if err != nil {
		return err
	}
	defer closeStore()

	svc := service.NewMatch(store, service.Options{
		MatchID:      cfg.App.MatchID,
		Defaults:     cfg.Match.Settings(),
		TickInterval: cfg.Match.TickInterval,
		PersistEvery: cfg.Match.PersistEvery,
	}, appLogger)
	if err := svc.Resume(ctx); err != nil {
		return err
	}
	defer svc.Close()

	if cfg.App.Env == "prod" || cfg.App.Env == "staging" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), handler.RequestLogger(appLogger))
	handler.Register(r, store, svc)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		appLogger.Info().Str("addr", srv.Addr).Str("store", cfg.Store.Driver).Msg("🚀 Service started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	appLogger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

// openStore picks the state backend named by store.driver.
func openStore(ctx context.Context, cfg *config.Config, appLogger *zerolog.Logger) (repository.Store, func(), error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		pool, err := repository.NewPool(ctx, cfg.Postgres, appLogger)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres connection failed: %w", err)
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return postgres.NewStateRepository(pool), pool.Close, nil
	case config.DriverRedis:
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("redis connection failed: %w", err)
		}
		closeFn := func() {
			if err := client.Close(); err != nil {
				appLogger.Warn().Err(err).Msg("redis close failed")
			}
		}
		return redisrepo.NewStateRepository(client, cfg.Redis.KeyPrefix, cfg.Redis.TTL), closeFn, nil
	default:
		return memory.NewStateRepository(), func() {}, nil
	}
}
