package statistics

import (
	"fmt"
	"sync"

	"gonum.org/v1/gonum/stat"
)

type statisticsData struct {
	dataMap map[string]int

	mutex sync.Mutex
}

var stats *statisticsData

func Init() {
	stats = &statisticsData{
		dataMap: make(map[string]int),
	}
}

func Set(key string, value int) {
	stats.mutex.Lock()
	defer stats.mutex.Unlock()

	stats.dataMap[key] = value
}

func Change(key string, value int) {
	stats.mutex.Lock()
	defer stats.mutex.Unlock()

	stats.dataMap[key] += value
}

func Snapshot() map[string]int {
	stats.mutex.Lock()
	defer stats.mutex.Unlock()

	snapshot := make(map[string]int, len(stats.dataMap))
	for key, value := range stats.dataMap {
		snapshot[key] = value
	}

	return snapshot
}

func Display() string {
	stats.mutex.Lock()
	defer stats.mutex.Unlock()

	result := "Statistics results are:\n"
	for key, value := range stats.dataMap {
		result += fmt.Sprintf("Number of %s is %d\n", key, value)
	}

	return result
}

// Balance is the variance of placement counts across a set of bins
// (workers or zones); zero means perfectly even placement.
func Balance(counts []int) float64 {
	if len(counts) < 2 {
		return 0
	}

	samples := make([]float64, len(counts))
	for i, count := range counts {
		samples[i] = float64(count)
	}

	return stat.Variance(samples, nil)
}
