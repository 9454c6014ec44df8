package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cx-tal-miterani/ticket-checkout/internal/cache"
	"github.com/cx-tal-miterani/ticket-checkout/internal/catalog"
	"github.com/cx-tal-miterani/ticket-checkout/internal/config"
	"github.com/cx-tal-miterani/ticket-checkout/internal/database"
	"github.com/cx-tal-miterani/ticket-checkout/internal/handlers"
	"github.com/cx-tal-miterani/ticket-checkout/internal/logging"
	"github.com/cx-tal-miterani/ticket-checkout/internal/payment"
	"github.com/cx-tal-miterani/ticket-checkout/internal/router"
	"github.com/cx-tal-miterani/ticket-checkout/internal/service"
	"github.com/cx-tal-miterani/ticket-checkout/internal/tracking"
	"github.com/cx-tal-miterani/ticket-checkout/internal/websocket"
	"github.com/go-co-op/gocron/v2"
	"go.temporal.io/sdk/client"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger, logCloser := logging.New(cfg.Log)
	defer logCloser.Close()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	opts := service.Options{
		Events:         catalog.SampleEvents(time.Now()),
		Budget:         cfg.SessionBudget,
		PaymentTimeout: cfg.PaymentTimeout,
		Logger:         logger,
	}

	// Payments run through Temporal when enabled, in process otherwise
	if cfg.TemporalEnabled {
		temporalClient, err := client.Dial(client.Options{
			HostPort: cfg.TemporalHost,
			Logger:   logger,
		})
		if err != nil {
			log.Fatalf("Failed to create Temporal client: %v", err)
		}
		defer temporalClient.Close()
		opts.Payments = payment.NewTemporalGateway(temporalClient, cfg.TaskQueue)
		log.Printf("Connected to Temporal server at %s", cfg.TemporalHost)
	} else {
		processor := payment.NewProcessor(cfg.StripeSecretKey, cfg.StripeCurrency, cfg.PaymentDeclineRate)
		opts.Payments = payment.NewDirectGateway(processor, payment.WithLogger(logger))
		log.Println("Temporal disabled, charging payments in process")
	}

	var bookings handlers.BookingFinder
	if cfg.DatabaseURL != "" {
		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("%v", err)
		}
		defer pool.Close()
		if err := database.Migrate(ctx, pool); err != nil {
			log.Fatalf("%v", err)
		}
		repo := database.NewRepository(pool)
		opts.Bookings = repo
		bookings = repo
		log.Println("Connected to database")
	}

	if cfg.RedisURL != "" {
		rdb, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("%v", err)
		}
		defer rdb.Close()
		opts.Outcomes = cache.NewOutcomeStore(rdb, cfg.OutcomeTTL)
		log.Println("Connected to Redis")
	}

	if cfg.RabbitMQURL != "" {
		publisher, err := tracking.Dial(cfg.RabbitMQURL, cfg.RabbitMQExchange)
		if err != nil {
			log.Fatalf("%v", err)
		}
		defer publisher.Close()
		opts.Tracker = publisher
		log.Println("Connected to RabbitMQ")
	}

	hub := websocket.NewHub(logger)
	go hub.Run(ctx)
	opts.Notifier = hub

	checkoutService := service.NewCheckoutService(opts)

	scheduler, err := service.StartReaper(checkoutService, cfg.SessionReapInterval, cfg.SessionReapGrace,
		gocron.WithLogger(logger))
	if err != nil {
		log.Fatalf("Failed to start session reaper: %v", err)
	}

	// Initialize handlers
	h := handlers.NewHandler(checkoutService, hub, bookings)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router.SetupRouter(h),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("API Server starting on port %s", cfg.APIPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	if err := scheduler.Shutdown(); err != nil {
		log.Printf("Reaper shutdown failed: %v", err)
	}
	if err := checkoutService.Shutdown(shutdownCtx); err != nil {
		log.Printf("Checkout shutdown incomplete: %v", err)
	}
	stop()

	log.Println("Server stopped")
}
