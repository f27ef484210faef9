package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/NazahX/TOPCELL-WEIGHBRIDGE/config"
	"github.com/NazahX/TOPCELL-WEIGHBRIDGE/internal/api"
	"github.com/NazahX/TOPCELL-WEIGHBRIDGE/internal/db"
	"github.com/NazahX/TOPCELL-WEIGHBRIDGE/internal/dispatch"
	"github.com/NazahX/TOPCELL-WEIGHBRIDGE/internal/erp"
	"github.com/NazahX/TOPCELL-WEIGHBRIDGE/internal/store"
	"github.com/NazahX/TOPCELL-WEIGHBRIDGE/internal/ticket"
	"github.com/NazahX/TOPCELL-WEIGHBRIDGE/internal/weight"
)

func main() {
	logger := log.New(os.Stdout, "weighbridge ", log.LstdFlags)

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB, cfg.Serial.SimulateByDefault)
	logger.Println("data store initialized")

	weights := weight.NewManager(cfg.Serial.ReadTimeout, cfg.Serial.SimInterval, cfg.Serial.SimulateByDefault)

	erpClient := erp.NewClient(&cfg.Erp)
	dispatcher := dispatch.New(appStore, erpClient, cfg.Sync.Interval)
	dispatcher.Start(ctx)

	ticketSvc := ticket.NewService(appStore, weights, dispatcher)

	handler := api.NewHandler(appStore, ticketSvc, weights, dispatcher)
	router := api.NewRouter(&cfg.Server, handler)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	dispatcher.Shutdown()
	weights.Disconnect()

	logger.Println("Server gracefully stopped")
}
