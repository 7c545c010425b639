package memory_test

import (
	"testing"

	"github.com/lattice-sync/lattice/adapter/memory"
	"github.com/lattice-sync/lattice/lock"
	"github.com/lattice-sync/lattice/lock/locktest"
)

func TestLockAdapterConformance(t *testing.T) {
	locktest.Run(t, func(t *testing.T) lock.Adapter {
		return memory.NewLockAdapter()
	})
}
