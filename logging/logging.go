package logging

import (
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	logger zerolog.Logger
	once   sync.Once
)

// Get returns the process-wide logger. The simulation is chatty by
// default; AUCTION_LOG_LEVEL accepts any zerolog level name (trace,
// debug, info, warn, error) to dial it down.
func Get() zerolog.Logger {
	once.Do(func() {
		logLevel := zerolog.DebugLevel
		if name := os.Getenv("AUCTION_LOG_LEVEL"); name != "" {
			if parsed, err := zerolog.ParseLevel(name); err == nil {
				logLevel = parsed
			}
		}

		console := zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.StampMilli,
		}

		logger = zerolog.New(console).
			Level(logLevel).
			With().
			Timestamp().
			Str("component", "placebid").
			Logger()
	})

	return logger
}
