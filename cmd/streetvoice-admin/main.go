package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/noah-isme/streetvoice-api/internal/tui"
	"github.com/noah-isme/streetvoice-api/pkg/client"
	"github.com/noah-isme/streetvoice-api/pkg/config"
	"github.com/noah-isme/streetvoice-api/pkg/logger"
)

func main() {
	cfg := config.LoadConsole()

	logPath := filepath.Join(filepath.Dir(cfg.SessionFile), "console.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0o700); err != nil {
		log.Fatalf("failed to create state dir: %v", err)
	}
	logr, err := logger.BuildFile(cfg.LogLevel, logPath)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	store, err := client.NewTokenStore(cfg.APIURL, cfg.SessionFile)
	if err != nil {
		log.Fatalf("failed to open session: %v", err)
	}
	session := &client.OAuthSession{}
	resolver := client.NewResolver(store, session)

	api, err := client.New(client.Options{
		BaseURL:     cfg.APIURL,
		Timeout:     cfg.Timeout,
		Credentials: resolver,
		Jar:         store.Jar(),
		Logger:      logr.Named("client"),
	})
	if err != nil {
		log.Fatalf("failed to build api client: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := tui.NewApp(ctx, tui.Options{
		Backend:     api,
		Store:       store,
		Session:     session,
		Credentials: resolver,
		PageSize:    cfg.PageSize,
		Logger:      logr.Named("console"),
	})

	logr.Info("console started", zap.String("api_url", cfg.APIURL))
	if _, err := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		logr.Error("console exited with error", zap.Error(err))
		log.Fatalf("console error: %v", err)
	}
}
