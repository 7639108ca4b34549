package observability

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"economy/config"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

// MetricsProvider manages OpenTelemetry metrics for the economy service
type MetricsProvider struct {
	config        *config.Config
	meterProvider *sdkmetric.MeterProvider
	meter         metric.Meter
	initialized   bool
	mu            sync.RWMutex

	reactionsCounter           metric.Int64Counter
	reactionCoinsCounter       metric.Int64Counter
	slotSpinsCounter           metric.Int64Counter
	betsPlacedCounter          metric.Int64Counter
	pollsSettledCounter        metric.Int64Counter
	giveawayPayoutCounter      metric.Int64Counter
	natsPublishedCounter       metric.Int64Counter
	balanceTransactionsCounter metric.Int64Counter
	httpRequestsCounter        metric.Int64Counter
}

// NewMetricsProvider creates a new metrics provider
func NewMetricsProvider(cfg *config.Config) *MetricsProvider {
	return &MetricsProvider{config: cfg}
}

// Initialize sets up the OpenTelemetry metrics provider
func (mp *MetricsProvider) Initialize(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.initialized {
		return nil
	}

	if !mp.config.OTelEnabled {
		log.Info("OpenTelemetry metrics disabled")
		mp.initialized = true
		return nil
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(mp.config.OTelServiceName),
			attribute.String("environment", mp.config.Environment),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	var exporter sdkmetric.Exporter
	switch mp.config.OTelExporterType {
	case "console":
		exporter, err = stdoutmetric.New()
		if err != nil {
			return fmt.Errorf("failed to create console exporter: %w", err)
		}
		log.Info("Using console metric exporter")

	case "otlp":
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		exporter, err = otlpmetricgrpc.New(ctx,
			otlpmetricgrpc.WithEndpoint(mp.config.OTelOTLPEndpoint),
			otlpmetricgrpc.WithInsecure(),
		)
		if err != nil {
			return fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		log.WithField("endpoint", mp.config.OTelOTLPEndpoint).Info("Using OTLP metric exporter")

	case "none":
		log.Info("Metrics export disabled (exporter_type='none')")
		mp.initialized = true
		return nil

	default:
		return fmt.Errorf("unknown exporter type: %s", mp.config.OTelExporterType)
	}

	mp.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(
				exporter,
				sdkmetric.WithInterval(time.Duration(mp.config.OTelExportIntervalMillis)*time.Millisecond),
			),
		),
	)
	otel.SetMeterProvider(mp.meterProvider)

	if err := mp.createInstruments(mp.meterProvider.Meter("economy")); err != nil {
		return fmt.Errorf("failed to create instruments: %w", err)
	}

	mp.initialized = true
	log.Info("Metrics provider initialized successfully")
	return nil
}

// createInstruments creates all metric instruments on meter
func (mp *MetricsProvider) createInstruments(meter metric.Meter) error {
	mp.meter = meter

	counters := []struct {
		target      *metric.Int64Counter
		name        string
		description string
	}{
		{&mp.reactionsCounter, ReactionsProcessedTotal, "Reaction changes processed, by outcome"},
		{&mp.reactionCoinsCounter, ReactionCoinsTotal, "Coins credited to authors from reactions"},
		{&mp.slotSpinsCounter, SlotSpinsTotal, "Slot machine spins, by outcome"},
		{&mp.betsPlacedCounter, BetsPlacedTotal, "Stakes placed on polls"},
		{&mp.pollsSettledCounter, PollsSettledTotal, "Polls settled"},
		{&mp.giveawayPayoutCounter, GiveawayPayoutTotal, "Coins paid out by giveaways"},
		{&mp.natsPublishedCounter, NATSMessagesPublished, "Domain events published to NATS"},
		{&mp.balanceTransactionsCounter, BalanceTransactionsTotal, "Coin ledger transactions, by type"},
		{&mp.httpRequestsCounter, HTTPRequestsTotal, "HTTP API requests, by route and status"},
	}

	for _, c := range counters {
		counter, err := meter.Int64Counter(c.name,
			metric.WithDescription(c.description),
			metric.WithUnit("1"),
		)
		if err != nil {
			return fmt.Errorf("failed to create counter %s: %w", c.name, err)
		}
		*c.target = counter
	}
	return nil
}

// Shutdown gracefully shuts down the metrics provider
func (mp *MetricsProvider) Shutdown(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.meterProvider != nil {
		return mp.meterProvider.Shutdown(ctx)
	}
	return nil
}

// RecordReaction records a processed reaction; outcome is "accepted" or the rejection reason
func (mp *MetricsProvider) RecordReaction(outcome, category string, coins int64) {
	if !mp.isEnabled() {
		return
	}

	ctx := context.Background()
	mp.reactionsCounter.Add(ctx, 1, metric.WithAttributes(attribute.String(LabelOutcome, outcome)))
	if coins > 0 {
		mp.reactionCoinsCounter.Add(ctx, coins, metric.WithAttributes(attribute.String(LabelCategory, category)))
	}
}

// RecordSlotSpin records a slot spin
func (mp *MetricsProvider) RecordSlotSpin(win bool) {
	if !mp.isEnabled() {
		return
	}

	outcome := OutcomeLoss
	if win {
		outcome = OutcomeWin
	}
	mp.slotSpinsCounter.Add(context.Background(), 1, metric.WithAttributes(attribute.String(LabelOutcome, outcome)))
}

// RecordBetPlaced records a stake on a poll
func (mp *MetricsProvider) RecordBetPlaced() {
	if !mp.isEnabled() {
		return
	}
	mp.betsPlacedCounter.Add(context.Background(), 1)
}

// RecordPollSettled records a settled poll
func (mp *MetricsProvider) RecordPollSettled() {
	if !mp.isEnabled() {
		return
	}
	mp.pollsSettledCounter.Add(context.Background(), 1)
}

// RecordGiveawayPayout records the coins a finalized giveaway paid out
func (mp *MetricsProvider) RecordGiveawayPayout(amount int64) {
	if !mp.isEnabled() || amount <= 0 {
		return
	}
	mp.giveawayPayoutCounter.Add(context.Background(), amount)
}

// RecordNATSMessagePublished records a NATS message being published
func (mp *MetricsProvider) RecordNATSMessagePublished(eventType string) {
	if !mp.isEnabled() {
		return
	}

	mp.natsPublishedCounter.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String(LabelEventType, eventType)),
	)
}

// RecordBalanceTransaction records a balance transaction
func (mp *MetricsProvider) RecordBalanceTransaction(transactionType string) {
	if !mp.isEnabled() {
		return
	}

	mp.balanceTransactionsCounter.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String(LabelType, transactionType)),
	)
}

// RecordHTTPRequest records an API request
func (mp *MetricsProvider) RecordHTTPRequest(route string, status int) {
	if !mp.isEnabled() {
		return
	}

	mp.httpRequestsCounter.Add(context.Background(), 1,
		metric.WithAttributes(
			attribute.String(LabelRoute, route),
			attribute.String(LabelStatus, strconv.Itoa(status)),
		),
	)
}

// isEnabled checks if metrics are enabled and instruments exist
func (mp *MetricsProvider) isEnabled() bool {
	if mp == nil {
		return false
	}
	mp.mu.RLock()
	defer mp.mu.RUnlock()
	return mp.initialized && mp.meter != nil
}

// Global metrics provider instance
var (
	globalMetrics *MetricsProvider
	metricsOnce   sync.Once
)

// InitializeGlobalMetrics initializes the global metrics provider
func InitializeGlobalMetrics(ctx context.Context, cfg *config.Config) error {
	var err error
	metricsOnce.Do(func() {
		globalMetrics = NewMetricsProvider(cfg)
		err = globalMetrics.Initialize(ctx)
	})
	return err
}

// GetMetrics returns the global metrics provider, nil before initialization
func GetMetrics() *MetricsProvider {
	return globalMetrics
}

// ShutdownGlobalMetrics shuts down the global metrics provider
func ShutdownGlobalMetrics(ctx context.Context) error {
	if globalMetrics != nil {
		return globalMetrics.Shutdown(ctx)
	}
	return nil
}
