package auctioneer

import (
	"context"
	"errors"
	"math/rand"

	"github.com/amsen20/placebid/internal/model"
)

// randomAuction skips offers and scoring entirely: pick a worker, ask
// it to commit, shrink the pool on refusal. The harness uses it as the
// baseline the scored strategy is measured against.
func (a *Auctioneer) randomAuction(ctx context.Context, request model.PlacementRequest, workerIDs []string) model.AuctionResult {
	result := model.AuctionResult{Request: request}

	pool := make([]string, len(workerIDs))
	copy(pool, workerIDs)

	for result.NumRounds = 1; result.NumRounds <= a.rules.MaxRounds; result.NumRounds += 1 {
		if len(pool) == 0 {
			result.Outcome = model.NO_FEASIBLE_OFFER
			return result
		}

		pick := rand.Intn(len(pool))
		workerID := pool[pick]

		result.NumCommunications += 1
		err := a.client.RequestCommit(ctx, workerID, request)
		if err == nil {
			result.Outcome = model.RESOLVED
			result.Winner = workerID
			return result
		}

		if !errors.Is(err, model.ErrUnavailable) {
			pool[pick] = pool[len(pool)-1]
			pool = pool[:len(pool)-1]
		}
	}

	result.NumRounds = a.rules.MaxRounds
	result.Outcome = model.EXHAUSTED
	return result
}
