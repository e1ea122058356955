package transport

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/amsen20/placebid/internal/model"
	"github.com/amsen20/placebid/internal/worker"
)

func TestFlakyWorkerDropsRequests(t *testing.T) {
	agents := map[string]*worker.Agent{
		"a-worker": worker.New("a-worker", 0, 1024, 1024, "lucid64", nil),
		"b-worker": worker.New("b-worker", 0, 1024, 1024, "lucid64", nil),
	}

	client := NewInProcessClient(agents)
	client.Timeout = time.Millisecond
	client.Flakiness = 1
	client.FlakyAgent["a-worker"] = true

	ctx := context.Background()

	if _, err := client.RequestOffer(ctx, "a-worker"); !errors.Is(err, model.ErrUnavailable) {
		t.Fatalf("expected the flaky worker to drop the offer request, got %v", err)
	}
	if _, err := client.RequestOffer(ctx, "b-worker"); err != nil {
		t.Fatalf("the steady worker should still answer: %v", err)
	}

	request, err := model.NewPlacementRequest(1, 0, 1, 128, 128, "artifact-1", "lucid64")
	if err != nil {
		t.Fatalf("could not build the request: %v", err)
	}

	if err := client.RequestCommit(ctx, "a-worker", request); !errors.Is(err, model.ErrUnavailable) {
		t.Fatalf("expected the flaky worker to drop the commit, got %v", err)
	}
	if len(agents["a-worker"].Placements()) != 0 {
		t.Fatalf("a dropped commit must not land a placement")
	}

	if err := client.RequestCommit(ctx, "b-worker", request); err != nil {
		t.Fatalf("the steady worker should accept the commit: %v", err)
	}
	if len(agents["b-worker"].Placements()) != 1 {
		t.Fatalf("the steady worker should hold the placement")
	}
}
