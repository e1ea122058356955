package sim

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/amsen20/placebid/internal/auctioneer"
	"github.com/amsen20/placebid/internal/config"
	"github.com/amsen20/placebid/internal/formula"
	"github.com/amsen20/placebid/internal/model"
	"github.com/amsen20/placebid/internal/registry"
	"github.com/amsen20/placebid/internal/transport"
	"github.com/amsen20/placebid/internal/worker"
	"github.com/amsen20/placebid/logging"
	"github.com/amsen20/placebid/statistics"
)

var log = logging.Get()

const (
	simStack        = "lucid64"
	instancesPerApp = 4
)

var memoryChoices = []int{128, 256, 512, 1024}

// Harness drives many auctions concurrently over a synthetic worker
// pool, through the same interfaces the real system uses, and
// aggregates the outcome into a report.
type Harness struct {
	cfg        config.GeneralConfig
	agents     map[string]*worker.Agent
	client     *transport.InProcessClient
	auctioneer *auctioneer.Auctioneer
}

func New(cfg config.GeneralConfig, reg registry.Registry) (*Harness, error) {
	workerIDs, err := reg.ListCandidateWorkers()
	if err != nil {
		log.Err(err).Send()

		return nil, fmt.Errorf("could not list workers for the synthetic pool")
	}
	if len(workerIDs) == 0 {
		return nil, fmt.Errorf("synthetic pool is empty")
	}

	agents := make(map[string]*worker.Agent, len(workerIDs))
	for i, workerID := range workerIDs {
		var cached []string
		if i%3 == 0 {
			cached = []string{artifactID(i % 7)}
		}

		agents[workerID] = worker.New(workerID, i%cfg.Zones, 4096, 16384, simStack, cached)
	}

	client := transport.NewInProcessClient(agents)
	client.LatencyMin = time.Duration(cfg.LatencyMin) * time.Millisecond
	client.LatencyMax = time.Duration(cfg.LatencyMax) * time.Millisecond
	client.Timeout = time.Duration(cfg.OfferTimeout) * time.Millisecond
	client.Flakiness = cfg.Flakiness
	if cfg.Flakiness > 0 {
		flaky := cfg.FlakyWorkers
		if flaky <= 0 || flaky > len(workerIDs) {
			flaky = len(workerIDs)
		}
		for _, workerID := range workerIDs[:flaky] {
			client.FlakyAgent[workerID] = true
		}
	}

	evaluator, err := formula.New(cfg.Formula, cfg.Zones, cfg.Weights)
	if err != nil {
		log.Err(err).Send()

		return nil, fmt.Errorf("could not build the objective evaluator")
	}

	harness := &Harness{
		cfg:    cfg,
		agents: agents,
		client: client,
	}

	rules := auctioneer.Rules{
		Strategy:     cfg.Strategy,
		MaxRounds:    cfg.MaxRounds,
		OfferTimeout: time.Duration(cfg.OfferTimeout) * time.Millisecond,
	}
	harness.auctioneer = auctioneer.New(client, reg, evaluator, rules, harness)

	return harness, nil
}

// SubmitAuctionResult feeds the global counters; the real system
// would start the work unit on the winner here instead.
func (h *Harness) SubmitAuctionResult(result model.AuctionResult) {
	if result.Resolved() {
		statistics.Change("resolved auctions", 1)
	} else {
		statistics.Change(fmt.Sprintf("auctions failed with %s", result.Outcome), 1)
	}
	statistics.Change("auction rounds", result.NumRounds)
	statistics.Change("worker communications", result.NumCommunications)
}

// BuildRequests produces the synthetic request mix: apps of a few
// instances each, with varying memory appetites on a shared stack.
func (h *Harness) BuildRequests() ([]model.PlacementRequest, error) {
	requests := make([]model.PlacementRequest, 0, h.cfg.Auctions)
	for i := 0; i < h.cfg.Auctions; i++ {
		appID := i / instancesPerApp
		request, err := model.NewPlacementRequest(
			appID,
			i%instancesPerApp,
			instancesPerApp,
			memoryChoices[rand.Intn(len(memoryChoices))],
			1024,
			artifactID(appID%7),
			simStack,
		)
		if err != nil {
			return nil, err
		}

		requests = append(requests, request)
	}

	return requests, nil
}

// Run holds all auctions with bounded concurrency and waits for every
// result before reporting.
func (h *Harness) Run(ctx context.Context) (*Report, error) {
	requests, err := h.BuildRequests()
	if err != nil {
		log.Err(err).Send()

		return nil, fmt.Errorf("could not build the request mix")
	}

	log.Info().Msgf("starting %d auctions over %d workers", len(requests), len(h.agents))

	started := time.Now()
	semaphore := make(chan bool, h.cfg.MaxConcurrent)
	c := make(chan model.AuctionResult)
	for _, request := range requests {
		go func(request model.PlacementRequest) {
			semaphore <- true
			result := h.auctioneer.RunAuction(ctx, request)
			result.Duration = time.Since(started)
			c <- result
			<-semaphore
		}(request)
	}

	results := []model.AuctionResult{}
	for range requests {
		results = append(results, <-c)
	}

	return h.buildReport(results, time.Since(started)), nil
}

func (h *Harness) buildReport(results []model.AuctionResult, duration time.Duration) *Report {
	report := &Report{
		Name:            h.cfg.Name,
		Strategy:        h.cfg.Strategy,
		NumAuctions:     len(results),
		RoundsHistogram: make(map[int]int),
		Duration:        duration,
		Results:         results,
	}

	for _, result := range results {
		if result.Resolved() {
			report.NumResolved += 1
		} else {
			report.NumFailed += 1
		}
		report.RoundsHistogram[result.NumRounds] += 1
		report.TotalCommunications += result.NumCommunications
	}

	perWorker := make([]int, 0, len(h.agents))
	perZone := make([]int, h.cfg.Zones)
	for _, agent := range h.agents {
		placements := len(agent.Placements())
		perWorker = append(perWorker, placements)
		perZone[agent.ZoneID()] += placements
	}

	report.WorkerBalance = statistics.Balance(perWorker)
	report.ZoneBalance = statistics.Balance(perZone)
	report.Counters = statistics.Snapshot()

	return report
}

func artifactID(n int) string {
	return fmt.Sprintf("artifact-%d", n)
}
