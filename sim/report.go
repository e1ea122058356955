package sim

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/amsen20/placebid/internal/model"
)

// Report is the harness's only persisted artifact. It is data first;
// Display is the optional human rendering.
type Report struct {
	Name     string `json:"name"`
	Strategy string `json:"strategy"`

	NumAuctions int `json:"num_auctions"`
	NumResolved int `json:"num_resolved"`
	NumFailed   int `json:"num_failed"`

	RoundsHistogram     map[int]int   `json:"rounds_histogram"`
	TotalCommunications int           `json:"total_communications"`
	Duration            time.Duration `json:"duration_ns"`

	WorkerBalance float64 `json:"worker_balance"`
	ZoneBalance   float64 `json:"zone_balance"`

	Counters map[string]int        `json:"counters"`
	Results  []model.AuctionResult `json:"results"`
}

func (report *Report) Display() string {
	repr := fmt.Sprintf(
		"SIMULATION %q (%s strategy):\n%d auctions, %d resolved, %d failed in %s\n",
		report.Name,
		report.Strategy,
		report.NumAuctions,
		report.NumResolved,
		report.NumFailed,
		report.Duration,
	)

	rounds := make([]int, 0, len(report.RoundsHistogram))
	for round := range report.RoundsHistogram {
		rounds = append(rounds, round)
	}
	sort.Ints(rounds)

	repr += "ROUNDS:\n"
	for _, round := range rounds {
		repr += fmt.Sprintf("%d auctions took %d round(s)\n", report.RoundsHistogram[round], round)
	}

	repr += fmt.Sprintf("%d total communications\n", report.TotalCommunications)
	repr += fmt.Sprintf("placement variance: %f per worker, %f per zone\n", report.WorkerBalance, report.ZoneBalance)

	return repr
}

func (report *Report) Write(path string) error {
	content, err := json.MarshalIndent(report, "", " ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, content, 0644)
}
