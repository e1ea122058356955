package auctioneer

import (
	"context"
	"time"

	"github.com/amsen20/placebid/internal/formula"
	"github.com/amsen20/placebid/internal/model"
	"github.com/amsen20/placebid/internal/registry"
	"github.com/amsen20/placebid/internal/transport"
	"github.com/amsen20/placebid/logging"
)

var log = logging.Get()

type Rules struct {
	Strategy     string
	MaxRounds    int
	OfferTimeout time.Duration
}

// Auctioneer resolves placement requests against the current worker
// set, one auction per call. It is stateless across auctions and safe
// for concurrent use.
type Auctioneer struct {
	client    transport.Client
	registry  registry.Registry
	evaluator *formula.Evaluator
	rules     Rules
	outcomes  model.Outcomes
}

func New(client transport.Client, reg registry.Registry, evaluator *formula.Evaluator, rules Rules, outcomes model.Outcomes) *Auctioneer {
	return &Auctioneer{
		client:    client,
		registry:  reg,
		evaluator: evaluator,
		rules:     rules,
		outcomes:  outcomes,
	}
}

// RunAuction converges on a single committed worker for the request,
// or on a terminal failure scoped to this auction alone.
func (a *Auctioneer) RunAuction(ctx context.Context, request model.PlacementRequest) model.AuctionResult {
	result := model.AuctionResult{Request: request}

	started := time.Now()
	pool, err := a.registry.ListCandidateWorkers()
	if err != nil {
		log.Err(err).Msgf("could not list candidate workers for placement %s", request.PlacementID)
		result.Outcome = model.NO_FEASIBLE_OFFER
	} else {
		switch a.rules.Strategy {
		case "random":
			result = a.randomAuction(ctx, request, pool)
		default:
			result = a.scoredAuction(ctx, request, pool)
		}
	}

	result.BiddingDuration = time.Since(started)

	if a.outcomes != nil {
		a.outcomes.SubmitAuctionResult(result)
	}

	return result
}
