package auctioneer

import (
	"context"
	"errors"
	"strings"

	"github.com/amsen20/placebid/internal/model"
	"github.com/emirpasic/gods/trees/binaryheap"
)

type phase int

const (
	COLLECTING phase = iota
	SCORING
	COMMITTING
	NEXT_ROUND
	RESOLVED
	FAILED
)

// auction is the per-request state machine:
// COLLECTING -> SCORING -> COMMITTING -> {RESOLVED | NEXT_ROUND | FAILED},
// NEXT_ROUND -> {COLLECTING | FAILED}.
// The candidate pool only ever shrinks: a worker dropped for
// infeasibility or a rejected commit is never reconsidered here.
type auction struct {
	auctioneer *Auctioneer
	request    model.PlacementRequest

	phase phase
	pool  map[string]bool

	feasible []model.ScoredOffer
	ranked   []model.ScoredOffer

	winner         string
	outcome        model.Outcome
	rounds         int
	communications int
}

func (a *Auctioneer) scoredAuction(ctx context.Context, request model.PlacementRequest, workerIDs []string) model.AuctionResult {
	pool := make(map[string]bool, len(workerIDs))
	for _, workerID := range workerIDs {
		pool[workerID] = true
	}

	auction := &auction{
		auctioneer: a,
		request:    request,
		phase:      COLLECTING,
		pool:       pool,
	}

	for auction.phase != RESOLVED && auction.phase != FAILED {
		switch auction.phase {
		case COLLECTING:
			auction.collect(ctx)
		case SCORING:
			auction.score()
		case COMMITTING:
			auction.commit(ctx)
		case NEXT_ROUND:
			auction.nextRound()
		}
	}

	return model.AuctionResult{
		Request:           request,
		Outcome:           auction.outcome,
		Winner:            auction.winner,
		NumRounds:         auction.rounds,
		NumCommunications: auction.communications,
	}
}

func (a *auction) fail(outcome model.Outcome) {
	a.phase = FAILED
	a.outcome = outcome
}

// collect fans an offer request out to every pooled worker and waits
// for all answers or their timeouts. Workers that do not answer are
// dropped from this round only; workers whose snapshot is infeasible
// are dropped from the whole auction.
func (a *auction) collect(ctx context.Context) {
	if len(a.pool) == 0 {
		a.fail(model.NO_FEASIBLE_OFFER)
		return
	}

	a.rounds += 1
	a.communications += len(a.pool)

	c := make(chan offerReply)
	for workerID := range a.pool {
		go func(workerID string) {
			offerCtx, cancel := context.WithTimeout(ctx, a.auctioneer.rules.OfferTimeout)
			defer cancel()

			offer, err := a.auctioneer.client.RequestOffer(offerCtx, workerID)
			c <- offerReply{workerID: workerID, offer: offer, err: err}
		}(workerID)
	}

	offers := []model.Offer{}
	for range a.pool {
		reply := <-c
		if reply.err != nil {
			log.Debug().Msgf("worker %s gave no offer for placement %s: %v", reply.workerID, a.request.PlacementID, reply.err)
			continue
		}

		offers = append(offers, reply.offer)
	}

	// Nobody answered at all: that is a round of bad luck, not proof
	// that no feasible offer exists.
	if len(offers) == 0 {
		a.phase = NEXT_ROUND
		return
	}

	a.feasible = a.feasible[:0]
	for _, offer := range offers {
		if !offer.CanFit(a.request) {
			delete(a.pool, offer.WorkerID)
			continue
		}

		a.feasible = append(a.feasible, model.ScoredOffer{Offer: offer})
	}

	if len(a.feasible) == 0 {
		a.fail(model.NO_FEASIBLE_OFFER)
		return
	}

	a.phase = SCORING
}

type offerReply struct {
	workerID string
	offer    model.Offer
	err      error
}

// score ranks the surviving offers descending by desirability, ties
// broken by lowest worker ID for determinism.
func (a *auction) score() {
	heap := binaryheap.NewWith(byScoreThenWorkerID)

	for i := range a.feasible {
		score, err := a.auctioneer.evaluator.Score(a.request, a.feasible[i].Offer)
		if err != nil {
			log.Err(err).Msgf("objective formula failed for placement %s", a.request.PlacementID)
			a.fail(model.FORMULA_FAILED)
			return
		}

		a.feasible[i].Score = score
		heap.Push(a.feasible[i])
	}

	a.ranked = a.ranked[:0]
	for !heap.Empty() {
		scored, _ := heap.Pop()
		a.ranked = append(a.ranked, scored.(model.ScoredOffer))
	}

	a.phase = COMMITTING
}

// commit walks the round's ranked list, so a stale top offer costs one
// extra commit round-trip instead of a fresh collecting round.
func (a *auction) commit(ctx context.Context) {
	for _, scored := range a.ranked {
		workerID := scored.Offer.WorkerID

		a.communications += 1
		err := a.auctioneer.client.RequestCommit(ctx, workerID, a.request)
		if err == nil {
			a.phase = RESOLVED
			a.outcome = model.RESOLVED
			a.winner = workerID
			return
		}

		if errors.Is(err, model.ErrUnavailable) {
			// Excluded from this round only; the worker may answer in
			// the next one.
			log.Debug().Msgf("commit to worker %s for placement %s got no answer", workerID, a.request.PlacementID)
			continue
		}

		// The offer went stale; the worker is out of this auction.
		log.Debug().Msgf("worker %s rejected placement %s: %v", workerID, a.request.PlacementID, err)
		delete(a.pool, workerID)
	}

	a.phase = NEXT_ROUND
}

func (a *auction) nextRound() {
	if len(a.pool) == 0 {
		a.fail(model.NO_FEASIBLE_OFFER)
		return
	}
	if a.rounds >= a.auctioneer.rules.MaxRounds {
		a.fail(model.EXHAUSTED)
		return
	}

	a.phase = COLLECTING
}

// byScoreThenWorkerID orders higher scores first; the heap's smallest
// element is the most desirable offer.
func byScoreThenWorkerID(left, right interface{}) int {
	a := left.(model.ScoredOffer)
	b := right.(model.ScoredOffer)

	if a.Score > b.Score {
		return -1
	}
	if a.Score < b.Score {
		return 1
	}

	return strings.Compare(a.Offer.WorkerID, b.Offer.WorkerID)
}
