package entities

// TransactionType represents the type of balance change
type TransactionType string

// All transaction types supported by the system
const (
	// Reputation-driven credits
	TransactionTypeReaction     TransactionType = "reaction"
	TransactionTypeManualRating TransactionType = "manual_rating"
	TransactionTypeRatingSeed   TransactionType = "rating_seed"

	// Wagering
	TransactionTypeBetPlaced  TransactionType = "bet_placed"
	TransactionTypeBetPayout  TransactionType = "bet_payout"
	TransactionTypeSlotStake  TransactionType = "slot_stake"
	TransactionTypeSlotPayout TransactionType = "slot_payout"
	TransactionTypeGiveaway   TransactionType = "giveaway"

	// External
	TransactionTypeCharge     TransactionType = "charge"
	TransactionTypeAdjustment TransactionType = "adjustment"
)

// IsWagerType returns true if the transaction moves coins in or out of a wager
func (tt TransactionType) IsWagerType() bool {
	return tt == TransactionTypeBetPlaced ||
		tt == TransactionTypeBetPayout ||
		tt == TransactionTypeSlotStake ||
		tt == TransactionTypeSlotPayout
}

// IsReputationType returns true if the transaction mirrors a rating change
func (tt TransactionType) IsReputationType() bool {
	return tt == TransactionTypeReaction ||
		tt == TransactionTypeManualRating ||
		tt == TransactionTypeRatingSeed
}
