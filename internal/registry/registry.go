package registry

import "github.com/amsen20/placebid/logging"

// Registry answers the one membership question the engine asks:
// which workers are candidates right now. The surrounding system owns
// actual service discovery.
type Registry interface {
	ListCandidateWorkers() ([]string, error)
}

var log = logging.Get()

// StaticRegistry serves a fixed worker set, for tests and the
// simulation harness.
type StaticRegistry struct {
	workerIDs []string
}

func NewStaticRegistry(workerIDs []string) *StaticRegistry {
	return &StaticRegistry{workerIDs: workerIDs}
}

func (r *StaticRegistry) ListCandidateWorkers() ([]string, error) {
	workerIDs := make([]string, len(r.workerIDs))
	copy(workerIDs, r.workerIDs)

	return workerIDs, nil
}
