// cmd/scheduler/main.go posts to the results sync endpoint at fixed local hours.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jason-s-yu/anima/internal/config"
	"github.com/jason-s-yu/anima/internal/scheduler"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()

	cfg, err := config.Load("./config")
	if err != nil {
		logger.WithError(err).Fatal("failed to load config")
	}
	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(lvl)
	}
	if cfg.CronSecret == "" {
		logger.Fatal("CRON_SECRET is required")
	}
	loc, err := time.LoadLocation(cfg.SchedulerTimezone)
	if err != nil {
		logger.WithError(err).Fatal("invalid SCHEDULER_TIMEZONE")
	}
	hours, err := cfg.Hours()
	if err != nil {
		logger.WithError(err).Fatal("invalid SCHEDULER_HOURS")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := scheduler.New(cfg.SchedulerTargetURL, cfg.CronSecret, loc, hours, cfg.SchedulerInterval, nil, logger)
	s.Run(ctx)
}
