package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"near-expiry-api/config"
	"near-expiry-api/logger"
	"near-expiry-api/metrics"
	"near-expiry-api/routes"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	zl, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Environment: cfg.Server.Env,
		ServiceName: cfg.ServiceName,
	})
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zl.Sync()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.OpenDatabase(cfg.DB)
	if err != nil {
		zl.Fatal("connect database", zap.Error(err))
	}
	if err := config.Migrate(db); err != nil {
		zl.Fatal("migrate database", zap.Error(err))
	}
	if err := config.Seed(db, cfg.Admin, zl); err != nil {
		zl.Fatal("seed database", zap.Error(err))
	}
	zl.Info("database ready", zap.String("driver", cfg.DB.Driver))

	r := routes.NewEngine(routes.Deps{
		Config:  cfg,
		DB:      db,
		Log:     zl,
		Metrics: metrics.New("near_expiry", nil),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zl.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zl.Error("graceful shutdown failed", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}
