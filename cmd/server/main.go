// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/jason-s-yu/anima/internal/auth"
	"github.com/jason-s-yu/anima/internal/cache"
	"github.com/jason-s-yu/anima/internal/config"
	"github.com/jason-s-yu/anima/internal/database"
	"github.com/jason-s-yu/anima/internal/handlers"
	"github.com/jason-s-yu/anima/internal/picks"
	"github.com/jason-s-yu/anima/internal/rewards"
	"github.com/jason-s-yu/anima/internal/roster"
	"github.com/jason-s-yu/anima/internal/sportsdata"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()

	cfg, err := config.Load("./config")
	if err != nil {
		logger.WithError(err).Fatal("failed to load config")
	}
	configureLogger(logger, cfg)

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := runMigrate(cfg, os.Args[2:], logger); err != nil {
			logger.WithError(err).Fatal("migration failed")
		}
		return
	}

	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("invalid config")
	}
	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Fatal("server exited")
	}
}

func configureLogger(logger *logrus.Logger, cfg *config.Config) {
	if cfg.IsProduction() {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	lvl, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.WithField("level", cfg.LogLevel).Warn("unknown LOG_LEVEL, using info")
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)
	// package-level log calls share the configured output
	logrus.SetLevel(lvl)
	logrus.SetFormatter(logger.Formatter)
}

// runMigrate handles `server migrate up|down [n]|status`.
func runMigrate(cfg *config.Config, args []string, logger *logrus.Logger) error {
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	cmd := "up"
	if len(args) > 0 {
		cmd = args[0]
	}
	switch cmd {
	case "up":
		return database.MigrateUp(cfg.DatabaseURL)
	case "down":
		steps := 1
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil || n < 1 {
				return fmt.Errorf("invalid step count %q", args[1])
			}
			steps = n
		}
		return database.MigrateDown(cfg.DatabaseURL, steps)
	case "status":
		version, dirty, err := database.MigrateStatus(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		logger.WithFields(logrus.Fields{"version": version, "dirty": dirty}).Info("migration status")
		return nil
	default:
		return fmt.Errorf("unknown migrate command %q (want up, down or status)", cmd)
	}
}

func run(cfg *config.Config, logger *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.MigrateOnStart {
		if err := database.MigrateUp(cfg.DatabaseURL); err != nil {
			return err
		}
	}

	db, err := database.Connect(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns)
	if err != nil {
		return err
	}
	defer db.Close()

	// role checks run on the elevated credential
	serviceDB := db
	if cfg.ServiceDatabaseURL != cfg.DatabaseURL {
		serviceDB, err = database.Connect(ctx, cfg.ServiceDatabaseURL, 4)
		if err != nil {
			return err
		}
		defer serviceDB.Close()
	}
	store := database.NewStore(db)
	serviceStore := database.NewStore(serviceDB)

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb, err = cache.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			logger.WithError(err).Warn("redis unavailable, sports responses will not be cached")
		} else {
			defer rdb.Close()
		}
	}
	responseCache := cache.NewJSONCache(rdb, cfg.CacheTTL)

	sports := sportsdata.NewClient(
		cfg.SportsAPIBaseURL,
		cfg.SportsAPIKey,
		sportsdata.NewHTTPClient(cfg.SportsAPITimeout, logger),
		responseCache,
		logger,
	)
	rosters := roster.NewStore(os.DirFS(filepath.Dir(cfg.RostersPath)), filepath.Base(cfg.RostersPath))

	router := handlers.NewRouter(handlers.Deps{
		Logger:         logger,
		Store:          store,
		Roles:          serviceStore,
		Sessions:       auth.NewVerifier(cfg.SupabaseJWTSecret, cfg.SessionCookie),
		Rosters:        rosters,
		Sports:         sports,
		Picks:          picks.NewService(store, cfg.PickWinXP, cfg.PickWinPoints),
		TileFlip:       rewards.NewTileFlip(store),
		Shop:           rewards.NewShop(store, nil),
		CronSecret:     cfg.CronSecret,
		AllowedOrigins: cfg.Origins(),
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Running on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
