package application

import (
	"context"
	"fmt"

	"economy/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// SeedBalancesFromRatings gives every ledger user coins equal to their total
// rating. It only runs against an empty account table.
func SeedBalancesFromRatings(ctx context.Context, uowFactory interfaces.UnitOfWorkFactory, ratings interfaces.RatingService) (int, error) {
	uow := uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	count, err := uow.UserRepository().Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count accounts: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	ranking, err := ratings.Ranking(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load ranking: %w", err)
	}
	if len(ranking) == 0 {
		return 0, nil
	}

	balances := make(map[int64]int64, len(ranking))
	for _, entry := range ranking {
		balances[entry.UserID] = entry.TotalRating
	}

	seeded, err := uow.UserRepository().SeedBalances(ctx, balances)
	if err != nil {
		return 0, fmt.Errorf("failed to seed balances: %w", err)
	}
	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithField("accounts", seeded).Info("Seeded coin balances from ratings")
	return seeded, nil
}
