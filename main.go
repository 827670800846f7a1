package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	intconfig "ridemate/internal/config"
	router "ridemate/internal/http"
	"ridemate/internal/logging"
	"ridemate/internal/sched"
	"ridemate/internal/services"
)

func main() {
	env := intconfig.LoadEnv()
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	logger := logging.NewLogger(env.LogLevel)
	slog.SetDefault(logger)

	intconfig.ConnectDB(env.MySQLDSN)
	defer intconfig.CloseDB()

	cleanupCtx, stopCleanup := context.WithCancel(context.Background())
	defer stopCleanup()

	cleanup := services.CleanupService{
		Logger:   logger,
		Interval: env.CleanupInterval,
	}
	if env.RedisAddr != "" {
		cleanup.Locker = sched.NewRedisLock(env.RedisAddr, env.CleanupInterval/2)
	}
	go cleanup.Start(cleanupCtx)

	r := router.NewRouter(env, logger)

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", env.AppAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	stopCleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown failed", "err", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
