package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"economy/cmd"
	"economy/config"
	"economy/database"
	"economy/domain/entities"
	"economy/domain/services"
	"economy/infrastructure"
	"economy/store"
)

func main() {
	// Check for migration subcommands
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := handleMigrationCommand(); err != nil {
			log.Fatal("Migration error:", err)
		}
		return
	}

	// Emoji weight seeding
	if len(os.Args) > 1 && os.Args[1] == "seed-emoji" {
		if err := handleSeedEmoji(); err != nil {
			log.Fatal("Emoji seed error:", err)
		}
		return
	}

	// Check for balance adjustment subcommands
	if len(os.Args) > 1 && os.Args[1] == "update-balance" {
		if err := handleBalanceAdjustment(); err != nil {
			log.Fatal("Balance adjustment error:", err)
		}
		return
	}

	// Normal operation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("Received shutdown signal, shutting down gracefully...")
		cancel()
	}()

	if err := cmd.Run(ctx); err != nil {
		log.Fatal("Application error:", err)
	}
}

func handleMigrationCommand() error {
	if len(os.Args) < 3 {
		return fmt.Errorf("usage: economy migrate [up|down|status] [args...]")
	}

	switch command := os.Args[2]; command {
	case "up":
		return database.MigrateUp()
	case "down":
		steps := "1"
		if len(os.Args) > 3 {
			steps = os.Args[3]
		}
		return database.MigrateDown(steps)
	case "status":
		return database.MigrateStatus()
	default:
		return fmt.Errorf("unknown migration command: %s", command)
	}
}

// handleSeedEmoji loads a TOML weight file into the document store.
// Pass --overwrite as the last argument to replace existing weights.
func handleSeedEmoji() error {
	if len(os.Args) < 3 {
		return fmt.Errorf("usage: economy seed-emoji <file.toml> [--overwrite]")
	}
	overwrite := len(os.Args) > 3 && os.Args[3] == "--overwrite"

	cfg := config.Get()
	db, err := store.Open(cfg.BoltPath)
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := store.SeedEmojiWeights(context.Background(), store.NewEmojiWeightStore(db), os.Args[2], overwrite)
	if err != nil {
		return err
	}
	log.Printf("Seeded %d emoji weights from %s", n, os.Args[2])
	return nil
}

func handleBalanceAdjustment() error {
	if len(os.Args) < 4 {
		return fmt.Errorf("usage: economy update-balance user delta")
	}
	userID, err := strconv.ParseInt(os.Args[2], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}
	delta, err := strconv.ParseInt(os.Args[3], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid delta: %w", err)
	}

	ctx := context.Background()
	cfg := config.Get()
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return err
	}
	defer db.Close()

	// Events from admin commands are not delivered anywhere
	uowFactory := infrastructure.NewUnitOfWorkFactory(db, infrastructure.NewNoopEventPublisher())
	balance, err := services.NewCoinService(uowFactory).AdjustBalance(ctx, userID, delta, entities.TransactionTypeAdjustment, map[string]any{
		"admin": "cli",
	})
	if err != nil {
		return err
	}
	log.Printf("User %d balance is now %d", userID, balance)
	return nil
}
