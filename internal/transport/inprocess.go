package transport

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/amsen20/placebid/internal/model"
	"github.com/amsen20/placebid/internal/worker"
)

// InProcessClient calls worker agents directly, with an optional
// simulated latency band and per-worker flakiness so the harness can
// model a message bus without one.
type InProcessClient struct {
	agents map[string]*worker.Agent

	LatencyMin time.Duration
	LatencyMax time.Duration
	Timeout    time.Duration

	Flakiness  float64
	FlakyAgent map[string]bool
}

func NewInProcessClient(agents map[string]*worker.Agent) *InProcessClient {
	return &InProcessClient{
		agents:     agents,
		FlakyAgent: make(map[string]bool),
	}
}

func (client *InProcessClient) RequestOffer(ctx context.Context, workerID string) (model.Offer, error) {
	agent, ok := client.agents[workerID]
	if !ok {
		return model.Offer{}, fmt.Errorf("%w: no worker %s", model.ErrUnavailable, workerID)
	}

	if client.simulateRoundTrip(ctx, workerID) {
		event := Event{EventType: OFFER_REQUESTED, WorkerID: workerID, Error: "timed out"}
		log.Debug().Msg(event.String())

		return model.Offer{}, fmt.Errorf("%w: worker %s timed out", model.ErrUnavailable, workerID)
	}

	return agent.SnapshotOffer()
}

func (client *InProcessClient) RequestCommit(ctx context.Context, workerID string, request model.PlacementRequest) error {
	agent, ok := client.agents[workerID]
	if !ok {
		return fmt.Errorf("%w: no worker %s", model.ErrUnavailable, workerID)
	}

	if client.simulateRoundTrip(ctx, workerID) {
		event := Event{EventType: COMMIT_REQUESTED, WorkerID: workerID, Error: "timed out"}
		log.Debug().Msg(event.String())

		return fmt.Errorf("%w: worker %s timed out", model.ErrUnavailable, workerID)
	}

	return agent.TryCommit(request)
}

func (client *InProcessClient) Release(ctx context.Context, workerID string, placementID string) error {
	agent, ok := client.agents[workerID]
	if !ok {
		return fmt.Errorf("%w: no worker %s", model.ErrUnavailable, workerID)
	}

	client.simulateRoundTrip(ctx, workerID)

	return agent.Release(placementID)
}

// simulateRoundTrip sleeps for a random duration inside the
// configured latency band and reports whether the round-trip should
// count as timed out.
func (client *InProcessClient) simulateRoundTrip(ctx context.Context, workerID string) bool {
	if client.FlakyAgent[workerID] && rand.Float64() < client.Flakiness {
		sleepOrDone(ctx, client.Timeout)
		return true
	}

	if client.LatencyMax == 0 {
		return false
	}

	latency := client.LatencyMin
	if client.LatencyMax > client.LatencyMin {
		latency += time.Duration(rand.Int63n(int64(client.LatencyMax - client.LatencyMin)))
	}

	if client.Timeout != 0 && latency > client.Timeout {
		sleepOrDone(ctx, client.Timeout)
		return true
	}

	return sleepOrDone(ctx, latency)
}

func sleepOrDone(ctx context.Context, duration time.Duration) bool {
	if duration == 0 {
		return false
	}

	select {
	case <-time.After(duration):
		return false
	case <-ctx.Done():
		return true
	}
}
