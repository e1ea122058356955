package worker

import (
	"fmt"
	"sort"
	"sync"

	"github.com/amsen20/placebid/internal/model"
)

// Agent exclusively owns one worker's capacity. Commits are
// serialized behind the lock, so two auctions can never both reserve
// the same bytes. Snapshots take the same lock briefly but have no
// side effect and may be called unboundedly often.
type Agent struct {
	id     string
	zoneID int
	stack  string

	totalMemoryMB int
	totalDiskMB   int

	lock            sync.Mutex
	placements      map[string]model.PlacementRequest
	cachedArtifacts map[string]bool
}

func New(id string, zoneID, totalMemoryMB, totalDiskMB int, stack string, cachedArtifactIDs []string) *Agent {
	cached := make(map[string]bool)
	for _, artifactID := range cachedArtifactIDs {
		cached[artifactID] = true
	}

	return &Agent{
		id:              id,
		zoneID:          zoneID,
		stack:           stack,
		totalMemoryMB:   totalMemoryMB,
		totalDiskMB:     totalDiskMB,
		placements:      make(map[string]model.PlacementRequest),
		cachedArtifacts: cached,
	}
}

func (agent *Agent) ID() string {
	return agent.id
}

func (agent *Agent) ZoneID() int {
	return agent.zoneID
}

// SnapshotOffer returns an immutable copy of the current capacity and
// composition. The copy may be stale by the time anyone acts on it.
func (agent *Agent) SnapshotOffer() (model.Offer, error) {
	agent.lock.Lock()
	defer agent.lock.Unlock()

	runningAppIDs := make([]int, 0, len(agent.placements))
	for _, placement := range agent.placements {
		runningAppIDs = append(runningAppIDs, placement.AppID)
	}
	sort.Ints(runningAppIDs)

	cachedArtifactIDs := make([]string, 0, len(agent.cachedArtifacts))
	for artifactID := range agent.cachedArtifacts {
		cachedArtifactIDs = append(cachedArtifactIDs, artifactID)
	}
	sort.Strings(cachedArtifactIDs)

	return model.NewOffer(
		agent.id,
		agent.zoneID,
		agent.totalMemoryMB-agent.usedMemoryMB(),
		agent.totalDiskMB-agent.usedDiskMB(),
		agent.totalMemoryMB,
		agent.totalDiskMB,
		runningAppIDs,
		cachedArtifactIDs,
		agent.stack,
	)
}

// TryCommit re-checks live capacity and, if sufficient, atomically
// deducts it and records the reservation. The snapshot an auctioneer
// scored plays no part here; this is the sole source of truth.
func (agent *Agent) TryCommit(request model.PlacementRequest) error {
	agent.lock.Lock()
	defer agent.lock.Unlock()

	if _, ok := agent.placements[request.PlacementID]; ok {
		return fmt.Errorf("%w: placement %s already committed on %s", model.ErrInsufficientCapacity, request.PlacementID, agent.id)
	}
	if !agent.hasRoomFor(request) {
		return fmt.Errorf("%w: worker %s cannot fit %d MB memory, %d MB disk on stack %q", model.ErrInsufficientCapacity, agent.id, request.RequiredMemoryMB, request.RequiredDiskMB, request.Stack)
	}

	agent.placements[request.PlacementID] = request

	return nil
}

// Release returns previously committed resources, used when a step
// downstream of the auction fails after commit.
func (agent *Agent) Release(placementID string) error {
	agent.lock.Lock()
	defer agent.lock.Unlock()

	if _, ok := agent.placements[placementID]; !ok {
		return fmt.Errorf("no placement %s reserved on worker %s", placementID, agent.id)
	}

	delete(agent.placements, placementID)

	return nil
}

func (agent *Agent) Placements() []model.PlacementRequest {
	agent.lock.Lock()
	defer agent.lock.Unlock()

	placements := make([]model.PlacementRequest, 0, len(agent.placements))
	for _, placement := range agent.placements {
		placements = append(placements, placement)
	}

	return placements
}

func (agent *Agent) SetPlacements(requests []model.PlacementRequest) {
	agent.lock.Lock()
	defer agent.lock.Unlock()

	agent.placements = make(map[string]model.PlacementRequest)
	for _, request := range requests {
		agent.placements[request.PlacementID] = request
	}
}

func (agent *Agent) Reset() {
	agent.SetPlacements(nil)
}

// internals -- callers above hold the lock

func (agent *Agent) hasRoomFor(request model.PlacementRequest) bool {
	if request.Stack != agent.stack {
		return false
	}

	return agent.usedMemoryMB()+request.RequiredMemoryMB <= agent.totalMemoryMB &&
		agent.usedDiskMB()+request.RequiredDiskMB <= agent.totalDiskMB
}

func (agent *Agent) usedMemoryMB() int {
	used := 0
	for _, placement := range agent.placements {
		used += placement.RequiredMemoryMB
	}

	return used
}

func (agent *Agent) usedDiskMB() int {
	used := 0
	for _, placement := range agent.placements {
		used += placement.RequiredDiskMB
	}

	return used
}
