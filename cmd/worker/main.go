package main

import (
	"context"
	"log"

	"github.com/cx-tal-miterani/ticket-checkout/internal/activities"
	"github.com/cx-tal-miterani/ticket-checkout/internal/config"
	"github.com/cx-tal-miterani/ticket-checkout/internal/database"
	"github.com/cx-tal-miterani/ticket-checkout/internal/logging"
	"github.com/cx-tal-miterani/ticket-checkout/internal/payment"
	"github.com/cx-tal-miterani/ticket-checkout/internal/workflows"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger, logCloser := logging.New(cfg.Log)
	defer logCloser.Close()

	// Payment results are recorded only when a database is configured
	var ledger activities.PaymentLedger
	if cfg.DatabaseURL != "" {
		log.Println("Connecting to database...")
		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("%v", err)
		}
		defer pool.Close()
		if err := database.Migrate(ctx, pool); err != nil {
			log.Fatalf("%v", err)
		}
		ledger = database.NewRepository(pool)
		log.Println("Connected to database")
	}

	// Connect to Temporal
	log.Printf("Connecting to Temporal at %s...", cfg.TemporalHost)
	c, err := client.Dial(client.Options{
		HostPort: cfg.TemporalHost,
		Logger:   logger,
	})
	if err != nil {
		log.Fatalf("Failed to connect to Temporal: %v", err)
	}
	defer c.Close()
	log.Println("Connected to Temporal")

	// Create worker
	w := worker.New(c, cfg.TaskQueue, worker.Options{})

	// Register workflows
	w.RegisterWorkflowWithOptions(workflows.PaymentWorkflow, workflow.RegisterOptions{Name: payment.WorkflowName})

	// Create and register activities
	processor := payment.NewProcessor(cfg.StripeSecretKey, cfg.StripeCurrency, cfg.PaymentDeclineRate)
	acts := activities.NewActivities(processor, ledger)
	w.RegisterActivityWithOptions(acts.ChargePayment, activity.RegisterOptions{Name: activities.ChargePaymentName})
	w.RegisterActivityWithOptions(acts.RecordPayment, activity.RegisterOptions{Name: activities.RecordPaymentName})

	// Start worker
	log.Printf("Starting Temporal worker on %s...", cfg.TaskQueue)
	err = w.Run(worker.InterruptCh())
	if err != nil {
		log.Fatalf("Worker failed: %v", err)
	}
}
