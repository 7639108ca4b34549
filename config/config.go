package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"economy/database"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken    string
	GuildID         string // Community chat
	EconomyChannel  string // Where giveaways are announced
	OriginChannelID int64  // Channel whose posts belong to the origin
	OriginUserIDs   []int64
	ModeratorIDs    []int64 // May close/settle polls and toggle the slot machine
	ScoringChannels []int64 // Channels whose reactions score; empty means every channel

	// Database configuration
	DatabaseURL          string
	DatabaseName         string
	DBMaxConns           int32
	DBHealthCheckSeconds int

	// Document store and cache
	BoltPath  string
	RedisAddr string

	// NATS configuration
	NATSServers string // NATS server addresses (comma-separated)

	// HTTP API configuration
	HTTPAddr          string
	APIKeySalt        string
	ApprovedKeyHashes []string // "sha256:<hex>" entries

	// Economy configuration
	EmojiWeightsFile string
	GiveawayPool     int64
	SlotDefaultStake int64
	Timezone         string
	RolloverHour     int // Hour in Timezone when the monthly rollover check runs (0-23)

	// OpenTelemetry configuration
	OTelEnabled              bool
	OTelServiceName          string
	OTelExporterType         string // "console", "otlp" or "none"
	OTelOTLPEndpoint         string
	OTelExportIntervalMillis int

	// Environment
	Environment string // "development" or "production"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			// In test environment, use a default test config instead of panicking
			if os.Getenv("GO_TEST") == "1" || os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
				instance.DiscordToken = "test-token"
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// PoolOptions returns the connection pool settings
func (c *Config) PoolOptions() database.PoolOptions {
	return database.PoolOptions{
		MaxConns:          c.DBMaxConns,
		HealthCheckPeriod: time.Duration(c.DBHealthCheckSeconds) * time.Second,
	}
}

// Location returns the configured timezone, UTC if it cannot be loaded
func (c *Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// OriginIDs returns every id that resolves to the origin identity, users first
func (c *Config) OriginIDs() []int64 {
	ids := append([]int64{}, c.OriginUserIDs...)
	if c.OriginChannelID != 0 {
		ids = append(ids, c.OriginChannelID)
	}
	return ids
}

// IsModerator reports whether userID may run moderator commands
func (c *Config) IsModerator(userID int64) bool {
	for _, id := range c.ModeratorIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		// Discord
		DiscordToken:   os.Getenv("DISCORD_TOKEN"),
		GuildID:        os.Getenv("GUILD_ID"),
		EconomyChannel: os.Getenv("ECONOMY_CHANNEL_ID"),

		// Database
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		DatabaseName:         os.Getenv("DATABASE_NAME"),
		DBMaxConns:           10,
		DBHealthCheckSeconds: 30,

		BoltPath:  getEnvWithDefault("BOLT_PATH", "data/economy.db"),
		RedisAddr: os.Getenv("REDIS_ADDR"),

		// NATS
		NATSServers: os.Getenv("NATS_SERVERS"),

		// HTTP
		HTTPAddr:   getEnvWithDefault("HTTP_ADDR", ":8080"),
		APIKeySalt: os.Getenv("API_KEY_SALT"),

		EmojiWeightsFile: os.Getenv("EMOJI_WEIGHTS_FILE"),
		GiveawayPool:     5000,
		SlotDefaultStake: 10,
		Timezone:         getEnvWithDefault("TIMEZONE", "UTC"),
		RolloverHour:     0,

		// OpenTelemetry
		OTelEnabled:              os.Getenv("OTEL_ENABLED") == "true",
		OTelServiceName:          getEnvWithDefault("OTEL_SERVICE_NAME", "economy"),
		OTelExporterType:         getEnvWithDefault("OTEL_EXPORTER_TYPE", "console"),
		OTelOTLPEndpoint:         getEnvWithDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "otel-collector:4317"),
		OTelExportIntervalMillis: 60000,

		// Environment
		Environment: os.Getenv("ENVIRONMENT"),
	}

	var err error
	if config.OriginChannelID, err = parseInt64Env("ORIGIN_CHANNEL_ID", 0); err != nil {
		return nil, err
	}
	if config.EconomyChannel == "" && config.OriginChannelID != 0 {
		config.EconomyChannel = strconv.FormatInt(config.OriginChannelID, 10)
	}
	if config.GiveawayPool, err = parseInt64Env("GIVEAWAY_POOL", config.GiveawayPool); err != nil {
		return nil, err
	}
	if config.SlotDefaultStake, err = parseInt64Env("SLOT_DEFAULT_STAKE", config.SlotDefaultStake); err != nil {
		return nil, err
	}
	if maxConns, err := parseInt64Env("DB_MAX_CONNS", int64(config.DBMaxConns)); err != nil {
		return nil, err
	} else if maxConns > 0 {
		config.DBMaxConns = int32(maxConns)
	}
	if period := os.Getenv("DB_HEALTH_CHECK_SECONDS"); period != "" {
		if parsed, err := strconv.Atoi(period); err == nil && parsed > 0 {
			config.DBHealthCheckSeconds = parsed
		}
	}
	if interval := os.Getenv("OTEL_EXPORT_INTERVAL_MILLIS"); interval != "" {
		if parsed, err := strconv.Atoi(interval); err == nil && parsed > 0 {
			config.OTelExportIntervalMillis = parsed
		}
	}
	if hour := os.Getenv("ROLLOVER_HOUR"); hour != "" {
		if parsed, err := strconv.Atoi(hour); err == nil && parsed >= 0 && parsed < 24 {
			config.RolloverHour = parsed
		}
	}

	config.OriginUserIDs = parseIDList(os.Getenv("ORIGIN_USER_IDS"))
	config.ModeratorIDs = parseIDList(os.Getenv("MODERATOR_IDS"))
	config.ScoringChannels = parseIDList(os.Getenv("SCORING_CHANNEL_IDS"))
	for _, hash := range strings.Split(os.Getenv("APPROVED_KEY_HASHES"), ",") {
		if hash = strings.TrimSpace(hash); hash != "" {
			config.ApprovedKeyHashes = append(config.ApprovedKeyHashes, hash)
		}
	}

	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		if config.DiscordToken == "" {
			return nil, fmt.Errorf("DISCORD_TOKEN is required")
		}
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		if config.DatabaseName != "" && strings.TrimSpace(config.DatabaseName) == "" {
			return nil, fmt.Errorf("DATABASE_NAME cannot be empty when provided")
		}
		if len(config.OriginUserIDs) == 0 && config.OriginChannelID == 0 {
			return nil, fmt.Errorf("ORIGIN_USER_IDS or ORIGIN_CHANNEL_ID is required")
		}
		if _, err := time.LoadLocation(config.Timezone); err != nil {
			return nil, fmt.Errorf("TIMEZONE is invalid: %w", err)
		}
	}

	return config, nil
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseInt64Env(key string, defaultValue int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return parsed, nil
}

// parseIDList parses a comma separated id list, skipping malformed entries
func parseIDList(raw string) []int64 {
	var ids []int64
	for _, idStr := range strings.Split(raw, ",") {
		idStr = strings.TrimSpace(idStr)
		if idStr == "" {
			continue
		}
		if id, err := strconv.ParseInt(idStr, 10, 64); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Environment:      "test",
		OriginUserIDs:    []int64{100},
		OriginChannelID:  200,
		ModeratorIDs:     []int64{999999},
		GiveawayPool:     5000,
		SlotDefaultStake: 10,
		Timezone:         "UTC",
		BoltPath:         "data/economy.db",
		HTTPAddr:         ":8080",
		OTelExporterType: "none",
	}
}
