package transport

import (
	"context"

	"github.com/amsen20/placebid/internal/model"
	"github.com/amsen20/placebid/logging"
	"gopkg.in/yaml.v3"
)

// Client carries the engine's two worker-facing operations over
// whatever transport the surrounding system chooses. RequestOffer is
// timeout-bounded; a worker that does not answer in time is reported
// as unavailable, which excludes it from the current round only.
type Client interface {
	RequestOffer(ctx context.Context, workerID string) (model.Offer, error)
	RequestCommit(ctx context.Context, workerID string, request model.PlacementRequest) error
	Release(ctx context.Context, workerID string, placementID string) error
}

type EventType int64

const (
	OFFER_REQUESTED EventType = iota
	COMMIT_REQUESTED
	RELEASE_REQUESTED
)

// Event is a debugging record of one worker round-trip.
type Event struct {
	EventType EventType `yaml:"event_type"`
	WorkerID  string    `yaml:"worker_id"`
	Error     string    `yaml:"error,omitempty"`
}

func (event *Event) String() string {
	bytes, _ := yaml.Marshal(event)
	return string(bytes[:])
}

var log = logging.Get()
