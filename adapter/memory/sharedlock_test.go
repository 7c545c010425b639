package memory_test

import (
	"testing"

	"github.com/lattice-sync/lattice/adapter/memory"
	"github.com/lattice-sync/lattice/sharedlock"
	"github.com/lattice-sync/lattice/sharedlock/sharedlocktest"
)

func TestSharedLockAdapterConformance(t *testing.T) {
	sharedlocktest.Run(t, func(t *testing.T) sharedlock.Adapter {
		return memory.NewSharedLockAdapter()
	})
}
