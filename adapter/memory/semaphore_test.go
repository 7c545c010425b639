package memory_test

import (
	"testing"

	"github.com/lattice-sync/lattice/adapter/memory"
	"github.com/lattice-sync/lattice/semaphore"
	"github.com/lattice-sync/lattice/semaphore/semaphoretest"
)

func TestSemaphoreAdapterConformance(t *testing.T) {
	semaphoretest.Run(t, func(t *testing.T) semaphore.Adapter {
		return memory.NewSemaphoreAdapter()
	})
}
