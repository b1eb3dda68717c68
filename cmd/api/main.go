package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/safar/tg-shop/internal/api"
	"github.com/safar/tg-shop/internal/auth"
	"github.com/safar/tg-shop/internal/cache"
	"github.com/safar/tg-shop/internal/config"
	"github.com/safar/tg-shop/internal/database"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		slog.Error("connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	slog.Info("connected to database")

	catalogCache := cache.NewNoop()
	if cfg.Redis.Addr != "" {
		catalogCache = cache.NewRedisCache(cfg.Redis.Addr, "tgshop")
		slog.Info("catalog cache enabled", "addr", cfg.Redis.Addr)
	}

	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	server := api.NewServer(db, cfg, tokens, catalogCache)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      server.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	slog.Info("server starting", "port", cfg.Server.Port)
	if err := httpServer.ListenAndServe(); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
