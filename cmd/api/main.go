package main

import (
	"context"
	"log"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Windi-Fikriyansyah/gigmarket_be/internal/config"
	"github.com/Windi-Fikriyansyah/gigmarket_be/internal/db"
	"github.com/Windi-Fikriyansyah/gigmarket_be/internal/handlers"
	"github.com/Windi-Fikriyansyah/gigmarket_be/internal/logger"
	"github.com/Windi-Fikriyansyah/gigmarket_be/internal/realtime"
	"github.com/Windi-Fikriyansyah/gigmarket_be/internal/services/jobs"
	"github.com/Windi-Fikriyansyah/gigmarket_be/internal/services/messages"
	"github.com/Windi-Fikriyansyah/gigmarket_be/internal/services/names"
	"github.com/Windi-Fikriyansyah/gigmarket_be/internal/services/payments"
	"github.com/Windi-Fikriyansyah/gigmarket_be/internal/services/reviews"
	"github.com/Windi-Fikriyansyah/gigmarket_be/internal/services/users"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	zl, err := logger.New(cfg.LogLevel, cfg.AppEnv)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gdb, err := db.Connect(ctx, cfg.DBDSN, cfg.DBConnectRetries, zl)
	if err != nil {
		zl.Fatal("database unavailable", zap.Error(err))
	}
	if err := db.Migrate(gdb); err != nil {
		zl.Fatal("migration failed", zap.Error(err))
	}

	rdb := realtime.NewRedis(cfg)
	defer func() { _ = rdb.Close() }()
	if err := rdb.Ping(ctx).Err(); err != nil {
		// events still reach sessions on this instance through the fallback
		zl.Warn("redis not reachable, realtime fan-out limited to this instance", zap.Error(err), zap.String("addr", cfg.RedisAddr))
	}

	hub := realtime.NewHub(zl.Named("hub"))
	go hub.Run(ctx)
	go realtime.NewBridge(rdb, hub, zl.Named("bridge")).Supervise(ctx, 5*time.Second)
	notifier := realtime.NewPublisher(rdb, hub, zl.Named("publisher"))

	dir := users.NewDirectory(gdb, zl.Named("users"))
	resolver := names.NewResolver(dir, gdb, zl.Named("names"))

	app := handlers.NewApp(handlers.Deps{
		JWTSecret:     cfg.JWTSecret,
		CORSOrigins:   cfg.CORSOrigins,
		SecureCookies: strings.EqualFold(cfg.AppEnv, "production"),
		Log:           zl.Named("http"),
		Users:         dir,
		Jobs:          jobs.NewRegistry(gdb, resolver, payments.NewLedger(gdb), notifier, zl.Named("jobs")),
		Messages:      messages.NewStore(gdb, resolver, notifier, zl.Named("messages")),
		Reviews:       reviews.NewStore(gdb, dir, resolver, notifier, zl.Named("reviews")),
		Hub:           hub,
	})

	go func() {
		<-ctx.Done()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			zl.Error("shutdown failed", zap.Error(err))
		}
	}()

	zl.Info("listening", zap.String("port", cfg.AppPort), zap.String("env", cfg.AppEnv))
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		zl.Fatal("server stopped", zap.Error(err))
	}
}
