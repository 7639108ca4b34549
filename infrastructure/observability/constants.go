package observability

// Metric name prefixes
const (
	MetricPrefix = "economy"
)

// Metric names
const (
	ReactionsProcessedTotal  = MetricPrefix + ".reactions.processed_total"
	ReactionCoinsTotal       = MetricPrefix + ".reactions.coins_total"
	SlotSpinsTotal           = MetricPrefix + ".slot.spins_total"
	BetsPlacedTotal          = MetricPrefix + ".market.bets_placed_total"
	PollsSettledTotal        = MetricPrefix + ".market.polls_settled_total"
	GiveawayPayoutTotal      = MetricPrefix + ".giveaway.payout_total"
	NATSMessagesPublished    = MetricPrefix + ".nats.messages_published_total"
	BalanceTransactionsTotal = MetricPrefix + ".balance.transactions_total"
	HTTPRequestsTotal        = MetricPrefix + ".http.requests_total"
)

// Label keys
const (
	LabelType      = "type"
	LabelEventType = "event_type"
	LabelOutcome   = "outcome"
	LabelCategory  = "category"
	LabelRoute     = "route"
	LabelStatus    = "status"
)

// Outcome values
const (
	OutcomeAccepted = "accepted"
	OutcomeWin      = "win"
	OutcomeLoss     = "loss"
)
