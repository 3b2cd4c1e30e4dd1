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

	"github.com/SherClockHolmes/webpush-go"

	"github.com/Kaltroniz/Smart-Parking-System/config"
	"github.com/Kaltroniz/Smart-Parking-System/internal/api"
	"github.com/Kaltroniz/Smart-Parking-System/internal/db"
	"github.com/Kaltroniz/Smart-Parking-System/internal/fleet"
	"github.com/Kaltroniz/Smart-Parking-System/internal/notification"
	"github.com/Kaltroniz/Smart-Parking-System/internal/rtdb"
)

func main() {
	// Setup logger
	logger := log.New(os.Stdout, "parkingd ", log.LstdFlags)

	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	// Check for VAPID keys
	if cfg.Push.PublicKey == "" || cfg.Push.PrivateKey == "" {
		logger.Fatalf("VAPID keys must be configured. Please generate them and add them to your config file.")
	}

	webpushOptions := webpush.Options{
		VAPIDPublicKey:  cfg.Push.PublicKey,
		VAPIDPrivateKey: cfg.Push.PrivateKey,
		Subscriber:      cfg.Push.Subject,
		TTL:             cfg.Push.TTL,
	}

	// Initialize database
	gormDB, err := db.Init(&cfg.Store, &cfg.Fleet)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	// Create a context that can be cancelled
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Store client: snapshot feeds plus point writes
	client := rtdb.NewClient(gormDB, cfg.Store.PollInterval)
	if err := client.ResetGate(ctx); err != nil {
		logger.Fatalf("failed to reset gate baseline: %v", err)
	}
	logger.Println("store client initialized, gate reset to closed baseline")

	// Notice worker pool
	pool := notification.NewWorkerPool(cfg.WorkerPool.Size, gormDB, &webpushOptions)
	pool.Start(ctx)

	// Core: table, timers, gate, reconciliation engine, booking service
	table := fleet.NewTable(cfg.Fleet.Size)
	timers := fleet.NewTimerRegistry(table, client, pool, time.Second)
	gate := fleet.NewActuator(client, cfg.Fleet.GateDwell)
	engine := fleet.NewEngine(
		table, timers, gate, client, pool,
		cfg.Fleet.ReservationWindow,
		client.SlotFeed(), client.BookingFeed(), client.Errors(),
	)
	bookings := fleet.NewBookingService(table, client, gate, cfg.Fleet.RequirePaymentConfirmation)

	go client.Run(ctx)
	go engine.Run(ctx)

	// Initialize router
	router := api.NewRouter(&cfg.Server, table, bookings, gormDB, &webpushOptions)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start the server in a goroutine
	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// Block until a signal is received.
	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	// Cancelling the context stops the feeds and the engine, which cancels
	// every outstanding reservation timer.
	cancel()

	// Create a deadline to wait for.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
