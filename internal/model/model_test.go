package model

import (
	"errors"
	"testing"
)

func TestNewPlacementRequest(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		request, err := NewPlacementRequest(3, 1, 4, 512, 1024, "artifact-3", "lucid64")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if request.PlacementID == "" {
			t.Fatalf("expected a placement id")
		}
	})

	t.Run("NegativeMemory", func(t *testing.T) {
		_, err := NewPlacementRequest(3, 1, 4, -512, 1024, "artifact-3", "lucid64")
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("InstanceNumberOutOfRange", func(t *testing.T) {
		_, err := NewPlacementRequest(3, 4, 4, 512, 1024, "artifact-3", "lucid64")
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})
}

func TestNewOffer(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		_, err := NewOffer("worker-00", 1, 2048, 8192, 4096, 16384, []int{3}, []string{"artifact-3"}, "lucid64")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("AvailableExceedsTotal", func(t *testing.T) {
		_, err := NewOffer("worker-00", 1, 8192, 8192, 4096, 16384, nil, nil, "lucid64")
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("NegativeZone", func(t *testing.T) {
		_, err := NewOffer("worker-00", -1, 2048, 8192, 4096, 16384, nil, nil, "lucid64")
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})
}

func TestOfferCanFit(t *testing.T) {
	offer, err := NewOffer("worker-00", 1, 2048, 8192, 4096, 16384, nil, nil, "lucid64")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	request, err := NewPlacementRequest(3, 0, 1, 512, 1024, "artifact-3", "lucid64")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !offer.CanFit(request) {
		t.Fatalf("offer should fit the request")
	}

	request.Stack = "trusty64"
	if offer.CanFit(request) {
		t.Fatalf("offer must not fit a request for another stack")
	}

	request.Stack = "lucid64"
	request.RequiredMemoryMB = 4096
	if offer.CanFit(request) {
		t.Fatalf("offer must not fit a request beyond available memory")
	}
}
