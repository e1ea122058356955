// Because it is a testing package, no errors are returned,
// all problems cause a panic.

package testing_tool

import (
	"fmt"
	"sort"

	"github.com/amsen20/placebid/internal/model"
	"github.com/amsen20/placebid/internal/registry"
	"github.com/amsen20/placebid/internal/transport"
	"github.com/amsen20/placebid/internal/worker"
)

type WorkerDesc struct {
	ID                string
	Zone              int
	MemoryMB          int
	DiskMB            int
	Stack             string
	CachedArtifactIDs []string
}

type Builder struct {
	agents map[string]*worker.Agent
}

func New() *Builder {
	return &Builder{
		agents: make(map[string]*worker.Agent),
	}
}

func (builder *Builder) AddWorker(desc *WorkerDesc) *worker.Agent {
	if _, ok := builder.agents[desc.ID]; ok {
		panic(fmt.Sprintf("worker %s already exists", desc.ID))
	}

	agent := worker.New(desc.ID, desc.Zone, desc.MemoryMB, desc.DiskMB, desc.Stack, desc.CachedArtifactIDs)
	builder.agents[desc.ID] = agent

	return agent
}

// Preplace gives a worker pre-existing load so its offer reports less
// available capacity than its total.
func (builder *Builder) Preplace(workerID string, appID, memoryMB, diskMB int, stack string) model.PlacementRequest {
	agent, ok := builder.agents[workerID]
	if !ok {
		panic(fmt.Sprintf("no worker %s", workerID))
	}

	request, err := model.NewPlacementRequest(appID, 0, 1, memoryMB, diskMB, fmt.Sprintf("artifact-%d", appID), stack)
	if err != nil {
		panic(err)
	}
	if err := agent.TryCommit(request); err != nil {
		panic(err)
	}

	return request
}

func (builder *Builder) Agents() map[string]*worker.Agent {
	return builder.agents
}

func (builder *Builder) WorkerIDs() []string {
	workerIDs := make([]string, 0, len(builder.agents))
	for workerID := range builder.agents {
		workerIDs = append(workerIDs, workerID)
	}
	sort.Strings(workerIDs)

	return workerIDs
}

func (builder *Builder) Client() *transport.InProcessClient {
	return transport.NewInProcessClient(builder.agents)
}

func (builder *Builder) Registry() *registry.StaticRegistry {
	return registry.NewStaticRegistry(builder.WorkerIDs())
}
