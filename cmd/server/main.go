package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/quillpress/internal/config"
	"github.com/quillpress/internal/db"
	"github.com/quillpress/internal/handler"
	"github.com/quillpress/internal/moderation"
	"github.com/quillpress/internal/router"
	"github.com/quillpress/internal/storage"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm/logger"
)

var lg *slog.Logger

func main() {
	cfg, err := config.Load()
	lg = newLogger(cfg.Debug)
	exitOnError(err)

	gin.SetMode(cfg.GinMode)

	// 初始化数据库
	gdb, err := db.Open(cfg.DatabaseDriver, cfg.DatabaseDSN, gormLogLevel(cfg.Debug))
	exitOnError(err)
	if cfg.SeedData {
		exitOnError(db.Seed(gdb))
	}

	images, uploadDir, err := newImageStore(cfg)
	exitOnError(err)

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer redisClient.Close()
		pingCtx, cancelPing := context.WithTimeout(context.Background(), 2*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			lg.Warn("redis unavailable, comment rate limit fails open", "addr", cfg.RedisAddr, "error", err)
		}
		cancelPing()
	}

	api := handler.NewAPI(handler.Deps{
		DB:       gdb,
		Images:   images,
		Filter:   moderation.New(cfg.ProhibitedTerms),
		PageSize: cfg.PageSize,
		Logger:   lg,
	})

	r := router.SetupRouter(router.Options{
		API:               api,
		Logger:            lg,
		SessionSecret:     cfg.SessionSecret,
		UploadDir:         uploadDir,
		UploadURLPath:     cfg.UploadURLPath,
		CORSOrigins:       cfg.CORSAllowedOrigins,
		Redis:             redisClient,
		CommentRateLimit:  cfg.CommentRateLimit,
		CommentRateWindow: cfg.CommentRateWindow,
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		lg.Info("server listening", "addr", cfg.ListenAddr, "driver", cfg.DatabaseDriver, "uploads", cfg.UploadBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Error("server run failed", "error", err)
			quit <- syscall.SIGTERM
		}
	}()

	<-quit
	lg.Info("server stopping")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		lg.Error("server graceful shutdown failed", "error", err)
	}
	if sqlDB, err := gdb.DB(); err == nil {
		sqlDB.Close()
	}
}

// newImageStore returns the configured upload backend and, for the local
// backend, the directory to serve statically.
func newImageStore(cfg config.AppConfig) (storage.Store, string, error) {
	if cfg.UploadBackend == "s3" {
		store, err := storage.NewS3Store(storage.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
			DisableSSL:      cfg.S3DisableSSL,
			Allowed:         cfg.AllowedImageExtensions,
		})
		return store, "", err
	}

	store, err := storage.NewLocalStore(cfg.UploadDir, cfg.UploadURLPath, cfg.AllowedImageExtensions)
	return store, cfg.UploadDir, err
}

func newLogger(debug bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if debug {
		logLevel = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
}

func gormLogLevel(debug bool) logger.LogLevel {
	if debug {
		return logger.Info
	}
	return logger.Warn
}

func exitOnError(err error) {
	if err != nil {
		lg.Error("app init failed", "error", err)
		os.Exit(1)
	}
}
