package memory_test

import (
	"testing"

	"github.com/lattice-sync/lattice/adapter/memory"
	"github.com/lattice-sync/lattice/breaker"
	"github.com/lattice-sync/lattice/breaker/breakertest"
)

func TestBreakerAdapterConformance(t *testing.T) {
	breakertest.Run(t, func(t *testing.T) breaker.Adapter {
		return memory.NewBreakerAdapter(nil)
	})
}
