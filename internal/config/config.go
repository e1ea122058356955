package config

import "fmt"

type Weights struct {
	Alpha float64 `yaml:"alpha"`
	Beta  float64 `yaml:"beta"`
	Gamma float64 `yaml:"gamma"`
	Delta float64 `yaml:"delta"`
}

type GeneralConfig struct {
	Name         string  `yaml:"name"`
	Zones        int     `yaml:"zones"`
	Weights      Weights `yaml:"weights"`
	Formula      string  `yaml:"formula"`
	MaxRounds    int     `yaml:"max_rounds"`
	Strategy     string  `yaml:"strategy"`
	RegistryKind string  `yaml:"registry"`

	OfferTimeout  int     `yaml:"offer_timeout"` // ms
	LatencyMin    int     `yaml:"latency_min"`   // ms
	LatencyMax    int     `yaml:"latency_max"`   // ms
	Flakiness     float64 `yaml:"flakiness"`
	FlakyWorkers  int     `yaml:"flaky_workers"`
	MaxConcurrent int     `yaml:"max_concurrent"`

	Workers    int  `yaml:"workers"`
	Auctions   int  `yaml:"auctions"`
	GuiEnabled bool `yaml:"gui"`
}

var AuctionGeneralConfig GeneralConfig

// DefaultFormula is the shipped objective. The zone preference term is
// an integer >= 1 and the weighted terms sum to at most 1, so zone
// balancing always dominates the resource terms.
const DefaultFormula = `(((request.instanceNumber + request.appID + offer.zoneID) % zones) + 1 +
alpha * count(request.sourceArtifactID, offer.cachedArtifactIDs) +
beta * (offer.availableMemoryMB / offer.totalMemoryMB) +
gamma * (offer.availableDiskMB / offer.totalDiskMB) +
delta * (1 - count(request.appID, offer.runningAppIDs) / request.totalInstances))`

func (c *GeneralConfig) FillDefaults() {
	if c.Formula == "" {
		c.Formula = DefaultFormula
	}
	if c.Strategy == "" {
		c.Strategy = "scored"
	}
	if c.RegistryKind == "" {
		c.RegistryKind = "static"
	}
	if c.MaxConcurrent == 0 {
		c.MaxConcurrent = 20
	}
	if c.OfferTimeout == 0 {
		c.OfferTimeout = 100
	}
}

func (c *GeneralConfig) Validate() error {
	if c.Zones <= 0 {
		return fmt.Errorf("zones must be positive, got %d", c.Zones)
	}
	if c.MaxRounds <= 0 {
		return fmt.Errorf("max_rounds must be positive, got %d", c.MaxRounds)
	}
	if c.Flakiness < 0 || c.Flakiness > 1 {
		return fmt.Errorf("flakiness must be a probability, got %f", c.Flakiness)
	}
	w := c.Weights
	if w.Alpha < 0 || w.Beta < 0 || w.Gamma < 0 || w.Delta < 0 {
		return fmt.Errorf("weights must be non-negative")
	}
	sum := w.Alpha + w.Beta + w.Gamma + w.Delta
	if sum > 1+1e-9 {
		return fmt.Errorf("weights must sum to at most 1, got %f", sum)
	}
	return nil
}
