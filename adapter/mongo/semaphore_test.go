package mongo_test

import (
	"testing"

	mongoadapter "github.com/lattice-sync/lattice/adapter/mongo"
	"github.com/lattice-sync/lattice/adapter/mongo/mongotest"
	"github.com/lattice-sync/lattice/semaphore"
	"github.com/lattice-sync/lattice/semaphore/semaphoretest"
)

func TestSemaphoreAdapterConformance(t *testing.T) {
	semaphoretest.Run(t, func(t *testing.T) semaphore.Adapter {
		return mongoadapter.NewSemaphoreAdapter(mongotest.Collection(t))
	})
}
