package model

import (
	"fmt"

	"github.com/google/uuid"
)

// PlacementRequest is one desired unit of work. Immutable once built,
// owned by the auctioneer for the lifetime of one auction.
type PlacementRequest struct {
	PlacementID      string `json:"placement_id"`
	AppID            int    `json:"app_id"`
	InstanceNumber   int    `json:"instance_number"`
	TotalInstances   int    `json:"total_instances"`
	RequiredMemoryMB int    `json:"required_memory_mb"`
	RequiredDiskMB   int    `json:"required_disk_mb"`
	SourceArtifactID string `json:"source_artifact_id"`
	Stack            string `json:"stack"`
}

func NewPlacementRequest(appID, instanceNumber, totalInstances, requiredMemoryMB, requiredDiskMB int, sourceArtifactID, stack string) (PlacementRequest, error) {
	if appID < 0 || instanceNumber < 0 || totalInstances < 0 {
		return PlacementRequest{}, fmt.Errorf("%w: negative instance numbering (app %d, instance %d of %d)", ErrValidation, appID, instanceNumber, totalInstances)
	}
	if requiredMemoryMB < 0 || requiredDiskMB < 0 {
		return PlacementRequest{}, fmt.Errorf("%w: negative resource requirement (%d MB memory, %d MB disk)", ErrValidation, requiredMemoryMB, requiredDiskMB)
	}
	if instanceNumber >= totalInstances {
		return PlacementRequest{}, fmt.Errorf("%w: instance number %d out of range for %d total instances", ErrValidation, instanceNumber, totalInstances)
	}

	return PlacementRequest{
		PlacementID:      uuid.NewString(),
		AppID:            appID,
		InstanceNumber:   instanceNumber,
		TotalInstances:   totalInstances,
		RequiredMemoryMB: requiredMemoryMB,
		RequiredDiskMB:   requiredDiskMB,
		SourceArtifactID: sourceArtifactID,
		Stack:            stack,
	}, nil
}
