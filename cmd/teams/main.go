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

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/BenJLiuu/microsoftteamsbackend-sub000/internal/api"
	"github.com/BenJLiuu/microsoftteamsbackend-sub000/internal/auth"
	"github.com/BenJLiuu/microsoftteamsbackend-sub000/internal/backend"
	"github.com/BenJLiuu/microsoftteamsbackend-sub000/internal/config"
	"github.com/BenJLiuu/microsoftteamsbackend-sub000/internal/gateway"
	"github.com/BenJLiuu/microsoftteamsbackend-sub000/internal/service"
	"github.com/BenJLiuu/microsoftteamsbackend-sub000/internal/store"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	// --- Infrastructure ---

	be, closeBackend, err := backend.Open(ctx, cfg)
	if err != nil {
		logger.Error("opening backend", "backend", cfg.StoreBackend, "error", err)
		os.Exit(1)
	}
	defer closeBackend()

	st, err := store.Open(ctx, be, logger)
	if err != nil {
		logger.Error("loading snapshot", "error", err)
		os.Exit(1)
	}

	tokenSvc := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	hasher := auth.NewHasher(auth.DefaultParams)

	// --- Gateway and services ---

	gwManager := gateway.NewManager(nil, logger)
	sessions := service.NewSessionRegistry(st, tokenSvc, gwManager, logger)
	gwManager.SetResolver(sessions)

	deps := &api.Dependencies{
		Auth:     api.NewAuthHandler(service.NewAuthService(st, hasher, sessions, logger)),
		Users:    api.NewUserHandler(service.NewUserService(st, gwManager, logger)),
		Channels: api.NewChannelHandler(service.NewChannelService(st, gwManager, logger)),
		DMs:      api.NewDMHandler(service.NewDMService(st, gwManager, logger)),
		Messages: api.NewMessageHandler(service.NewMessageService(st, gwManager, logger)),
		Admin:    api.NewAdminHandler(service.NewAdminService(st, gwManager, logger)),
		Gateway:  gwManager,
		Sessions: sessions,
		Health:   st,
	}

	// --- Echo ---

	e := echo.New()
	e.HidePort = true
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	api.SetupRouter(e, deps)

	// --- Start ---

	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server starting", "addr", cfg.ServerAddr, "backend", cfg.StoreBackend)
		if err := e.Start(cfg.ServerAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			stop()
		}
	}()

	<-sigCtx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
