package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	dbRedis "github.com/kailas-cloud/attendex/internal/db/redis"
	domatt "github.com/kailas-cloud/attendex/internal/domain/attendance"
	logpkg "github.com/kailas-cloud/attendex/internal/logger"
	"github.com/kailas-cloud/attendex/internal/metrics"
	attendancerepo "github.com/kailas-cloud/attendex/internal/repository/attendance"
	employeerepo "github.com/kailas-cloud/attendex/internal/repository/employee"
	sweeperuc "github.com/kailas-cloud/attendex/internal/usecase/sweeper"
)

// newSweepCommand creates the one-shot absence sweep, for running from cron
// instead of (or in addition to) the in-process scheduler.
func newSweepCommand() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Mark employees without a record for the day as absent",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSweep(date)
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "day to sweep as YYYY-MM-DD (default: today)")

	return cmd
}

func runSweep(date string) error {
	cfg, env, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	loc, err := time.LoadLocation(cfg.Attendance.Timezone)
	if err != nil {
		return fmt.Errorf("load timezone %q: %w", cfg.Attendance.Timezone, err)
	}
	now := time.Now().In(loc)

	day := domatt.DayOf(now)
	if date != "" {
		if day, err = domatt.ParseDay(date); err != nil {
			return fmt.Errorf("parse --date: %w", err)
		}
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
	})
	if err != nil {
		return fmt.Errorf("create database store: %w", err)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		return fmt.Errorf("database not ready: %w", err)
	}

	metrics.RegisterRecognitionMetrics()

	sweeper := sweeperuc.New(attendancerepo.New(store), employeerepo.New(store), logger)

	res, err := sweeper.Sweep(ctx, day, now)
	if err != nil {
		return fmt.Errorf("sweep %s: %w", day, err)
	}

	logger.Info("Sweep finished",
		zap.String("day", res.Day.String()),
		zap.Int("marked", res.Marked),
		zap.Int("skipped", res.Skipped),
	)
	return nil
}
