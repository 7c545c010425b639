package memory_test

import (
	"testing"

	"github.com/lattice-sync/lattice/adapter/memory"
	"github.com/lattice-sync/lattice/cache"
	"github.com/lattice-sync/lattice/cache/cachetest"
)

func TestCacheAdapterConformance(t *testing.T) {
	cachetest.Run(t, func(t *testing.T) cache.Adapter {
		return memory.NewCacheAdapter()
	})
}
