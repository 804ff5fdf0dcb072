package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"raffler/access"
	"raffler/config"
	"raffler/database"
	"raffler/events"
	"raffler/infrastructure"
	"raffler/repository"
	"raffler/service"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Println("Starting raffler...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Println("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("Database connection established successfully")

	// Initialize event bus
	eventBus := events.NewBus()

	// Initialize unit of work factory
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	// Initialize access and pause providers
	roleStore := access.NewRoleStore()
	pauseStore := access.NewPauseStore()

	// Initialize the lottery service
	lotteryService := service.NewLotteryService(uowFactory, roleStore, pauseStore, service.NewDrawSelector())
	log.Println("Lottery service initialized successfully")

	// Initialize NATS transport when configured
	var natsClient *infrastructure.NATSClient
	if cfg.NatsURL != "" {
		log.Println("Connecting to NATS...")
		natsClient = infrastructure.NewNATSClient(cfg.NatsURL)
		if err := natsClient.Connect(ctx); err != nil {
			db.Close()
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}

		publisher := infrastructure.NewNATSEventPublisher(natsClient, infrastructure.NewEventSubjectMapper())
		if err := publisher.EnsureLotteryEventStream(); err != nil {
			natsClient.Close()
			db.Close()
			return fmt.Errorf("failed to ensure event stream: %w", err)
		}
		publisher.AttachToBus(eventBus)

		consumer := infrastructure.NewCommandConsumer(natsClient, lotteryService, cfg)
		if err := consumer.Start(); err != nil {
			natsClient.Close()
			db.Close()
			return fmt.Errorf("failed to start command consumer: %w", err)
		}
		log.Println("NATS transport started successfully")
	} else {
		log.Println("NATS_URL not set, running without message transport")
	}

	// Wait for context cancellation
	log.Printf("Raffler is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	// Cleanup resources
	log.Println("Shutting down...")

	if natsClient != nil {
		if err := natsClient.Close(); err != nil {
			log.Printf("Error closing NATS connection: %v", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log.Println("Closing database connection...")
	db.Close()

	select {
	case <-shutdownCtx.Done():
		log.Println("Shutdown timeout exceeded")
	case <-time.After(1 * time.Second):
		log.Println("Shutdown completed")
	}

	return nil
}
