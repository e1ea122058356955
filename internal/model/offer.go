package model

import "fmt"

// Offer is a worker's self-reported snapshot, valid only at the
// instant it was produced. It is not a lease: staleness is expected
// and re-validated at commit time.
type Offer struct {
	WorkerID          string   `json:"worker_id"`
	ZoneID            int      `json:"zone_id"`
	AvailableMemoryMB int      `json:"available_memory_mb"`
	AvailableDiskMB   int      `json:"available_disk_mb"`
	TotalMemoryMB     int      `json:"total_memory_mb"`
	TotalDiskMB       int      `json:"total_disk_mb"`
	RunningAppIDs     []int    `json:"running_app_ids"`
	CachedArtifactIDs []string `json:"cached_artifact_ids"`
	Stack             string   `json:"stack"`
}

func NewOffer(workerID string, zoneID, availableMemoryMB, availableDiskMB, totalMemoryMB, totalDiskMB int, runningAppIDs []int, cachedArtifactIDs []string, stack string) (Offer, error) {
	if zoneID < 0 {
		return Offer{}, fmt.Errorf("%w: negative zone id %d", ErrValidation, zoneID)
	}
	if availableMemoryMB < 0 || availableDiskMB < 0 || totalMemoryMB < 0 || totalDiskMB < 0 {
		return Offer{}, fmt.Errorf("%w: negative capacity in offer from %s", ErrValidation, workerID)
	}
	if availableMemoryMB > totalMemoryMB || availableDiskMB > totalDiskMB {
		return Offer{}, fmt.Errorf("%w: available exceeds total in offer from %s", ErrValidation, workerID)
	}

	return Offer{
		WorkerID:          workerID,
		ZoneID:            zoneID,
		AvailableMemoryMB: availableMemoryMB,
		AvailableDiskMB:   availableDiskMB,
		TotalMemoryMB:     totalMemoryMB,
		TotalDiskMB:       totalDiskMB,
		RunningAppIDs:     runningAppIDs,
		CachedArtifactIDs: cachedArtifactIDs,
		Stack:             stack,
	}, nil
}

// CanFit reports whether the snapshot looked feasible for the request.
// The authoritative check happens again inside the worker at commit.
func (o Offer) CanFit(request PlacementRequest) bool {
	return o.Stack == request.Stack &&
		o.AvailableMemoryMB >= request.RequiredMemoryMB &&
		o.AvailableDiskMB >= request.RequiredDiskMB
}

// ScoredOffer pairs an offer with its computed desirability; consumed
// by the auctioneer right after scoring.
type ScoredOffer struct {
	Offer Offer   `json:"offer"`
	Score float64 `json:"score"`
}
