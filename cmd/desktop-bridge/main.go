package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/trackdesk/desktop-bridge/configs"
	"github.com/trackdesk/desktop-bridge/internal/app"
	"github.com/trackdesk/desktop-bridge/internal/audit"
	"github.com/trackdesk/desktop-bridge/internal/catalog"
	"github.com/trackdesk/desktop-bridge/internal/config"
	"github.com/trackdesk/desktop-bridge/internal/entitystore"
	"github.com/trackdesk/desktop-bridge/internal/log"
	"github.com/trackdesk/desktop-bridge/internal/server"
	"github.com/trackdesk/desktop-bridge/internal/startup"
)

func main() {
	embeddedCatalog := flag.String("embedded-catalog", "", "Use embedded catalog from configs/ (filename)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := log.New(cfg.LogLevel, cfg.LogFormat)

	var rendered []byte
	if *embeddedCatalog != "" {
		raw, err := configs.Load(*embeddedCatalog)
		if err != nil {
			logger.Error("load embedded catalog failed", "error", err)
			os.Exit(1)
		}
		rendered, err = catalog.RenderBytes(*embeddedCatalog, raw)
		if err != nil {
			logger.Error("render embedded catalog failed", "error", err)
			os.Exit(1)
		}
	} else {
		rendered, err = catalog.RenderFile(cfg.CatalogPath)
		if err != nil {
			logger.Error("render catalog failed", "error", err)
			os.Exit(1)
		}
	}

	catalogFile, err := catalog.Load(rendered)
	if err != nil {
		logger.Error("parse catalog failed", "error", err)
		os.Exit(1)
	}

	baseCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGHUP)
	go func() {
		sig := <-sigCh
		logger.Warn("shutdown requested", "signal", sig.String())
		cancel()
	}()

	if err := startup.Run(baseCtx, catalogFile.StartupHooks, logger); err != nil {
		logger.Error("startup hooks failed", "error", err)
		os.Exit(1)
	}

	store, err := entitystore.New(cfg.SiteURL, cfg.SiteToken, cfg.LookupTimeout)
	if err != nil {
		logger.Error("build entity store failed", "error", err)
		os.Exit(1)
	}

	srv, err := server.New(server.Options{
		Logger:          logger,
		Store:           store,
		Catalogs:        catalog.NewProvider(catalogFile, logger),
		Audit:           audit.New(logger),
		FramesPerSecond: cfg.FramesPerSecond,
	})
	if err != nil {
		logger.Error("build server failed", "error", err)
		os.Exit(1)
	}
	defer srv.Close()

	application, err := app.New(cfg, srv.Handler(), logger)
	if err != nil {
		logger.Error("build app failed", "error", err)
		os.Exit(1)
	}

	if err := application.Run(baseCtx); err != nil {
		logger.Error("runtime error", "error", err)
		os.Exit(1)
	}
}
