package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"economy/api"
	"economy/application"
	"economy/bot"
	"economy/cache"
	"economy/config"
	"economy/database"
	"economy/domain/entities"
	"economy/domain/events"
	"economy/domain/interfaces"
	"economy/domain/services"
	"economy/infrastructure"
	"economy/infrastructure/observability"
	"economy/store"

	"github.com/go-redis/redis/v8"
	"golang.org/x/sync/errgroup"
)

const leaderboardMinInterval = 30 * time.Second

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Println("Starting economy service...")

	// Load configuration
	cfg := config.Get()

	// Initialize metrics
	if err := observability.InitializeGlobalMetrics(ctx, cfg); err != nil {
		log.Printf("Failed to initialize metrics: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := observability.ShutdownGlobalMetrics(shutdownCtx); err != nil {
			log.Printf("Error shutting down metrics: %v", err)
		}
	}()

	// Initialize database connection
	log.Println("Connecting to database...")
	db, err := infrastructure.WithRetry(ctx, "postgres", func(ctx context.Context) (*database.DB, error) {
		return database.NewPool(ctx, cfg.GetDatabaseURL(), cfg.PoolOptions())
	}, infrastructure.StartupRetryOptions())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	log.Println("Database connection established successfully")

	// Open document store
	log.Printf("Opening document store at %s...", cfg.BoltPath)
	boltDB, err := store.Open(cfg.BoltPath)
	if err != nil {
		return fmt.Errorf("failed to open document store: %w", err)
	}
	defer boltDB.Close()
	ledger := store.NewRatingLedger(boltDB)
	defer ledger.Close()
	log.Println("Document store opened successfully")

	// Initialize event publishing
	eventPublisher, natsClient, err := setupEventPublisher(ctx, cfg)
	if err != nil {
		return err
	}
	if natsClient != nil {
		defer natsClient.Close()
	}

	uowFactory := infrastructure.NewUnitOfWorkFactory(db, eventPublisher)

	// Emoji weights
	emojiStore := store.NewEmojiWeightStore(boltDB)
	if cfg.EmojiWeightsFile != "" {
		n, err := store.SeedEmojiWeights(ctx, emojiStore, cfg.EmojiWeightsFile, false)
		switch {
		case errors.Is(err, store.ErrSeedFileNotFound):
			log.Printf("Emoji weight file %s not found, using stored weights", cfg.EmojiWeightsFile)
		case err != nil:
			log.Printf("Failed to seed emoji weights: %v", err)
		default:
			log.Printf("Seeded %d emoji weights", n)
		}
	}
	weights := services.NewEmojiWeights(ctx, emojiStore)

	// Domain services
	totals := services.NewArchivedTotalsCache()
	coinService := services.NewCoinService(uowFactory)
	ratingService := services.NewRatingService(ledger, uowFactory, totals, eventPublisher)
	rolloverService := services.NewRolloverService(ledger, store.NewArchiveStore(boltDB), totals, eventPublisher)
	marketService := services.NewMarketService(uowFactory)
	slotService := services.NewSlotService(uowFactory, cfg.SlotDefaultStake)
	giveawayService := services.NewGiveawayService(uowFactory, cfg.GiveawayPool)

	// Leaderboard cache
	var leaderboard interfaces.Leaderboard
	var refresher application.LeaderboardRefresher
	var leaderboardSync *application.LeaderboardSync
	if cfg.RedisAddr != "" {
		log.Printf("Connecting to redis at %s...", cfg.RedisAddr)
		client, err := infrastructure.WithRetry(ctx, "redis", func(ctx context.Context) (*redis.Client, error) {
			client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
			if err := client.Ping(ctx).Err(); err != nil {
				client.Close()
				return nil, err
			}
			return client, nil
		}, infrastructure.StartupRetryOptions())
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer client.Close()

		leaderboard = cache.NewRedisLeaderboard(client, "")
		leaderboardSync = application.NewLeaderboardSync(ratingService, leaderboard, leaderboardMinInterval)
		refresher = leaderboardSync
		log.Println("Redis connection established successfully")
	}
	if refresher != nil {
		for _, eventType := range []events.EventType{events.EventTypeRatingChanged, events.EventTypeRatingArchived} {
			eventPublisher.RegisterLocalHandler(eventType, func(context.Context, events.Event) error {
				refresher.Trigger()
				return nil
			})
		}
	}

	// Initialize Discord bot
	log.Println("Initializing Discord bot...")
	discordBot, err := bot.New(bot.Config{
		Token:           cfg.DiscordToken,
		GuildID:         cfg.GuildID,
		ChannelID:       cfg.EconomyChannel,
		ScoringChannels: cfg.ScoringChannels,
		IsModerator:     cfg.IsModerator,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}

	membership := application.NewStoredJoinDirectory(discordBot, uowFactory)
	reactionService := services.NewReactionService(ledger, uowFactory, weights, entities.NewIdentityResolver(cfg.OriginIDs()...), membership)

	giveawayWorker := application.NewGiveawayWorker(giveawayService, discordBot, cfg.GiveawayPool)
	rolloverWorker := application.NewRolloverWorker(rolloverService, refresher, cfg.Location(), cfg.RolloverHour)
	pollWorker := application.NewPollRefreshWorker(marketService, discordBot, application.PollRefreshInterval)
	membershipHandler := application.NewMembershipHandler(uowFactory, ratingService, refresher)

	discordBot.SetServices(bot.Services{
		Reactions:  application.NewReactionHandler(reactionService, refresher),
		Membership: membershipHandler,
		Giveaways:  giveawayWorker,
		Polls:      pollWorker,
		Market:     marketService,
		Coins:      coinService,
		Ratings:    ratingService,
		Slots:      slotService,
		Emoji:      weights,
	})

	// Seed balances on first start
	if seeded, err := application.SeedBalancesFromRatings(ctx, uowFactory, ratingService); err != nil {
		log.Printf("Failed to seed balances: %v", err)
	} else if seeded > 0 {
		log.Printf("Seeded %d balances from ratings", seeded)
	}

	if err := discordBot.Open(); err != nil {
		return fmt.Errorf("failed to connect Discord bot: %w", err)
	}
	log.Println("Discord bot initialized successfully")

	// Start background workers
	g, gctx := errgroup.WithContext(ctx)
	stops := []func(){
		giveawayWorker.Start(gctx),
		rolloverWorker.Start(gctx),
		pollWorker.Start(gctx),
		discordBot.StartBoostSyncWorker(gctx, 0),
	}
	if leaderboardSync != nil {
		stops = append(stops, leaderboardSync.Start(gctx))
	}
	log.Println("Background workers started")

	server := api.NewServer(marketService, coinService, leaderboard, api.NewKeyVerifier(cfg.APIKeySalt, cfg.ApprovedKeyHashes))
	g.Go(func() error {
		return server.ListenAndServe(gctx, cfg.HTTPAddr)
	})

	log.Printf("Economy service is running in %s mode...", cfg.Environment)
	runErr := g.Wait()

	// Cleanup resources
	log.Println("Shutting down...")
	for _, stop := range stops {
		stop()
	}
	log.Println("Background workers stopped")

	if err := discordBot.Close(); err != nil {
		log.Printf("Error closing Discord bot: %v", err)
	}

	flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := ledger.Flush(flushCtx); err != nil {
		log.Printf("Error flushing rating ledger: %v", err)
	}

	log.Println("Shutdown completed")
	return runErr
}

// setupEventPublisher connects to NATS when configured. Without NATS events
// still reach local handlers but are not sent anywhere.
func setupEventPublisher(ctx context.Context, cfg *config.Config) (*infrastructure.NATSEventPublisher, *infrastructure.NATSClient, error) {
	mapper := infrastructure.NewEventSubjectMapper()
	if cfg.NATSServers == "" {
		log.Println("NATS_SERVERS not set, domain events stay in-process")
		return infrastructure.NewNATSEventPublisher(nil, mapper), nil, nil
	}

	log.Printf("Connecting to NATS at %s...", cfg.NATSServers)
	client := infrastructure.NewNATSClient(cfg.NATSServers)
	if err := client.Connect(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	publisher := infrastructure.NewNATSEventPublisher(client, mapper)
	if err := publisher.EnsureDomainEventStream(client); err != nil {
		log.Printf("Failed to ensure domain event stream: %v", err)
	}
	log.Println("NATS connection established successfully")
	return publisher, client, nil
}
