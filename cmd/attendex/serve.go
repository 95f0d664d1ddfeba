package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/attendex/internal/config"
	dbRedis "github.com/kailas-cloud/attendex/internal/db/redis"
	"github.com/kailas-cloud/attendex/internal/domain"
	domatt "github.com/kailas-cloud/attendex/internal/domain/attendance"
	logpkg "github.com/kailas-cloud/attendex/internal/logger"
	"github.com/kailas-cloud/attendex/internal/metrics"
	attendancerepo "github.com/kailas-cloud/attendex/internal/repository/attendance"
	attendconfigrepo "github.com/kailas-cloud/attendex/internal/repository/attendconfig"
	employeerepo "github.com/kailas-cloud/attendex/internal/repository/employee"
	chiTransport "github.com/kailas-cloud/attendex/internal/transport/chi"
	openaiEnc "github.com/kailas-cloud/attendex/internal/transport/openai"
	attendanceuc "github.com/kailas-cloud/attendex/internal/usecase/attendance"
	healthuc "github.com/kailas-cloud/attendex/internal/usecase/health"
	recognitionuc "github.com/kailas-cloud/attendex/internal/usecase/recognition"
	sweeperuc "github.com/kailas-cloud/attendex/internal/usecase/sweeper"
	"github.com/kailas-cloud/attendex/internal/version"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the attendance API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	cfg, env, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting attendex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	loc, err := time.LoadLocation(cfg.Attendance.Timezone)
	if err != nil {
		return fmt.Errorf("load timezone %q: %w", cfg.Attendance.Timezone, err)
	}
	clock := func() time.Time { return time.Now().In(loc) }

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
	logger.Info("Connected to database")

	// Register recognition metrics explicitly (no init())
	metrics.RegisterRecognitionMetrics()

	encoder := openaiEnc.NewEncoder(&openaiEnc.Config{
		APIKey:     cfg.Encoder.APIKey,
		BaseURL:    cfg.Encoder.BaseURL,
		Model:      cfg.Encoder.Model,
		Dimensions: cfg.Encoder.Dimensions,
		Provider:   cfg.Encoder.Provider,
		Logger:     logger,
	})
	logger.Info("Encoder client created",
		zap.String("provider", cfg.Encoder.Provider),
		zap.String("model", cfg.Encoder.Model),
		zap.Int("dimensions", cfg.Encoder.Dimensions),
	)

	empRepo := employeerepo.New(store)
	attRepo := attendancerepo.New(store)
	cfgRepo := attendconfigrepo.New(store)

	attendanceSvc := attendanceuc.New(attRepo, cfgRepo, empRepo, logger)
	if err := seedAttendanceConfig(ctx, cfgRepo, cfg.Attendance, clock()); err != nil {
		return err
	}

	sweeperSvc := sweeperuc.New(attRepo, empRepo, logger)

	recognitionSvc := recognitionuc.New(
		encoder, empRepo, empRepo, attendanceSvc, cfg.Recognition.Tolerance, logger,
	).WithMaxAttempts(cfg.Recognition.MaxAttempts).WithLocation(cfg.Recognition.Location)

	healthSvc := healthuc.New(store, encoder)

	server := chiTransport.NewServer(recognitionSvc, attendanceSvc, sweeperSvc, healthSvc, logger).
		WithClock(clock)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	// Daily absence sweep
	schedulerCtx, stopScheduler := context.WithCancel(ctx)
	defer stopScheduler()
	if cfg.Attendance.SweepAt != "" {
		sweepAt, err := domatt.ParseTimeOfDay(cfg.Attendance.SweepAt)
		if err != nil {
			return fmt.Errorf("parse attendance.sweep_at: %w", err)
		}
		go runSweepSchedule(schedulerCtx, sweeperSvc, sweepAt, clock, logger)
		logger.Info("Absence sweep scheduled", zap.String("at", sweepAt.String()))
	}

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")
	stopScheduler()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return nil
}

// seedAttendanceConfig writes the YAML cutoffs as the first config version,
// so the admin endpoint and the ledger agree from the very first boot.
// Versions written later through the API take precedence.
func seedAttendanceConfig(
	ctx context.Context, cfgs *attendconfigrepo.Repo, att config.AttendanceConfig, now time.Time,
) error {
	if _, err := cfgs.Latest(ctx); err == nil {
		return nil
	} else if !errors.Is(err, domain.ErrConfigNotFound) {
		return fmt.Errorf("load attendance config: %w", err)
	}

	checkIn, err := domatt.ParseTimeOfDay(att.CheckInTime)
	if err != nil {
		return fmt.Errorf("parse attendance.check_in_time: %w", err)
	}
	checkOut, err := domatt.ParseTimeOfDay(att.CheckOutTime)
	if err != nil {
		return fmt.Errorf("parse attendance.check_out_time: %w", err)
	}

	cutoffs, err := domatt.NewConfig(checkIn, checkOut, now)
	if err != nil {
		return fmt.Errorf("invalid attendance cutoffs: %w", err)
	}
	if err := cfgs.Append(ctx, cutoffs); err != nil {
		return fmt.Errorf("seed attendance config: %w", err)
	}
	return nil
}

// runSweepSchedule fires the absence sweep once a day at the configured time.
func runSweepSchedule(
	ctx context.Context,
	sweeper *sweeperuc.Service,
	at domatt.TimeOfDay,
	clock func() time.Time,
	logger *zap.Logger,
) {
	for {
		now := clock()
		next := at.On(now)
		if !next.After(now) {
			next = next.Add(24 * time.Hour)
		}

		timer := time.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		now = clock()
		if _, err := sweeper.Sweep(ctx, domatt.DayOf(now), now); err != nil {
			logger.Error("scheduled absence sweep", zap.Error(err))
		}
	}
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
