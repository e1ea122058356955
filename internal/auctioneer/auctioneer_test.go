package auctioneer

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/amsen20/placebid/internal/config"
	"github.com/amsen20/placebid/internal/formula"
	"github.com/amsen20/placebid/internal/model"
	"github.com/amsen20/placebid/internal/worker/testing_tool"
)

var testWeights = config.Weights{Alpha: 0.4, Beta: 0.3, Gamma: 0.2, Delta: 0.1}

func testEvaluator(t *testing.T) *formula.Evaluator {
	t.Helper()

	evaluator, err := formula.New(config.DefaultFormula, 3, testWeights)
	if err != nil {
		t.Fatalf("could not build evaluator: %v", err)
	}

	return evaluator
}

func testRules() Rules {
	return Rules{
		Strategy:     "scored",
		MaxRounds:    5,
		OfferTimeout: 100 * time.Millisecond,
	}
}

func placementRequest(t *testing.T, appID, memoryMB, diskMB int, stack string) model.PlacementRequest {
	t.Helper()

	request, err := model.NewPlacementRequest(appID, 0, 1, memoryMB, diskMB, "artifact-0", stack)
	if err != nil {
		t.Fatalf("could not build request: %v", err)
	}

	return request
}

// The cache bonus on the smaller worker outweighs the larger worker's
// memory-percentage edge.
func TestCacheBonusWins(t *testing.T) {
	builder := testing_tool.New()
	builder.AddWorker(&testing_tool.WorkerDesc{
		ID: "worker-00", Zone: 1, MemoryMB: 4096, DiskMB: 16384, Stack: "lucid64",
	})
	builder.AddWorker(&testing_tool.WorkerDesc{
		ID: "worker-01", Zone: 1, MemoryMB: 4096, DiskMB: 16384, Stack: "lucid64",
		CachedArtifactIDs: []string{"artifact-0"},
	})
	builder.Preplace("worker-01", 9, 2048, 0, "lucid64")

	a := New(builder.Client(), builder.Registry(), testEvaluator(t), testRules(), nil)
	result := a.RunAuction(context.Background(), placementRequest(t, 0, 512, 1024, "lucid64"))

	if !result.Resolved() {
		t.Fatalf("auction failed: %+v", result)
	}
	if result.Winner != "worker-01" {
		t.Fatalf("expected the cached worker to win, got %s", result.Winner)
	}
	if result.NumRounds != 1 {
		t.Fatalf("expected a single round, took %d", result.NumRounds)
	}
}

// A stack mismatch excludes the offer regardless of score; with no
// other candidate the auction fails outright.
func TestStackMismatchIsInfeasible(t *testing.T) {
	builder := testing_tool.New()
	builder.AddWorker(&testing_tool.WorkerDesc{
		ID: "worker-00", Zone: 1, MemoryMB: 4096, DiskMB: 16384, Stack: "trusty64",
	})

	a := New(builder.Client(), builder.Registry(), testEvaluator(t), testRules(), nil)
	result := a.RunAuction(context.Background(), placementRequest(t, 0, 512, 1024, "lucid64"))

	if result.Outcome != model.NO_FEASIBLE_OFFER {
		t.Fatalf("expected no feasible offer, got %+v", result)
	}
}

// The winner must never have scored below another feasible offer.
func TestWinnerScoreDominates(t *testing.T) {
	builder := testing_tool.New()
	descs := []*testing_tool.WorkerDesc{
		{ID: "worker-00", Zone: 0, MemoryMB: 1024, DiskMB: 4096, Stack: "lucid64"},
		{ID: "worker-01", Zone: 1, MemoryMB: 2048, DiskMB: 8192, Stack: "lucid64"},
		{ID: "worker-02", Zone: 2, MemoryMB: 4096, DiskMB: 16384, Stack: "lucid64", CachedArtifactIDs: []string{"artifact-0"}},
		{ID: "worker-03", Zone: 0, MemoryMB: 4096, DiskMB: 16384, Stack: "lucid64"},
	}
	for _, desc := range descs {
		builder.AddWorker(desc)
	}

	evaluator := testEvaluator(t)
	request := placementRequest(t, 0, 512, 1024, "lucid64")

	scores := make(map[string]float64)
	for workerID, agent := range builder.Agents() {
		offer, err := agent.SnapshotOffer()
		if err != nil {
			t.Fatalf("snapshot failed: %v", err)
		}
		score, err := evaluator.Score(request, offer)
		if err != nil {
			t.Fatalf("scoring failed: %v", err)
		}
		scores[workerID] = score
	}

	a := New(builder.Client(), builder.Registry(), evaluator, testRules(), nil)
	result := a.RunAuction(context.Background(), request)

	if !result.Resolved() {
		t.Fatalf("auction failed: %+v", result)
	}
	for workerID, score := range scores {
		if score > scores[result.Winner] {
			t.Fatalf("worker %s scored %f, above winner %s at %f", workerID, score, result.Winner, scores[result.Winner])
		}
	}
}

// Once a worker's capacity is gone, a second auction for the same
// shape of request finds nothing.
func TestCapacityIsConsumed(t *testing.T) {
	builder := testing_tool.New()
	builder.AddWorker(&testing_tool.WorkerDesc{
		ID: "worker-00", Zone: 0, MemoryMB: 1024, DiskMB: 4096, Stack: "lucid64",
	})

	a := New(builder.Client(), builder.Registry(), testEvaluator(t), testRules(), nil)

	first := a.RunAuction(context.Background(), placementRequest(t, 0, 768, 1024, "lucid64"))
	if !first.Resolved() {
		t.Fatalf("first auction failed: %+v", first)
	}

	second := a.RunAuction(context.Background(), placementRequest(t, 1, 768, 1024, "lucid64"))
	if second.Outcome != model.NO_FEASIBLE_OFFER {
		t.Fatalf("expected the pool to be spent, got %+v", second)
	}
}

// Concurrent auctions racing for one worker's last slot: exactly one
// may win it, the other settles for the remaining worker.
func TestConcurrentAuctionsDoNotOversubscribe(t *testing.T) {
	builder := testing_tool.New()
	builder.AddWorker(&testing_tool.WorkerDesc{
		ID: "worker-00", Zone: 0, MemoryMB: 1024, DiskMB: 4096, Stack: "lucid64",
		CachedArtifactIDs: []string{"artifact-0", "artifact-1"},
	})
	builder.AddWorker(&testing_tool.WorkerDesc{
		ID: "worker-01", Zone: 0, MemoryMB: 4096, DiskMB: 16384, Stack: "lucid64",
	})

	a := New(builder.Client(), builder.Registry(), testEvaluator(t), testRules(), nil)

	requests := []model.PlacementRequest{
		placementRequest(t, 0, 768, 1024, "lucid64"),
		placementRequest(t, 1, 768, 1024, "lucid64"),
	}

	var wg sync.WaitGroup
	results := make([]model.AuctionResult, len(requests))
	for i, request := range requests {
		wg.Add(1)
		go func(i int, request model.PlacementRequest) {
			defer wg.Done()
			results[i] = a.RunAuction(context.Background(), request)
		}(i, request)
	}
	wg.Wait()

	wonSmall := 0
	for _, result := range results {
		if !result.Resolved() {
			t.Fatalf("auction failed: %+v", result)
		}
		if result.Winner == "worker-00" {
			wonSmall += 1
		}
	}

	if wonSmall > 1 {
		t.Fatalf("worker-00 oversubscribed: both auctions claim it")
	}
}

func TestRandomStrategy(t *testing.T) {
	builder := testing_tool.New()
	builder.AddWorker(&testing_tool.WorkerDesc{
		ID: "worker-00", Zone: 0, MemoryMB: 4096, DiskMB: 16384, Stack: "lucid64",
	})

	rules := testRules()
	rules.Strategy = "random"

	a := New(builder.Client(), builder.Registry(), testEvaluator(t), rules, nil)
	result := a.RunAuction(context.Background(), placementRequest(t, 0, 512, 1024, "lucid64"))

	if !result.Resolved() || result.Winner != "worker-00" {
		t.Fatalf("random strategy should commit the only worker, got %+v", result)
	}
	if result.NumCommunications != 1 {
		t.Fatalf("random strategy should need one message, used %d", result.NumCommunications)
	}
}
