package mongo_test

import (
	"testing"

	mongoadapter "github.com/lattice-sync/lattice/adapter/mongo"
	"github.com/lattice-sync/lattice/adapter/mongo/mongotest"
	"github.com/lattice-sync/lattice/lock"
	"github.com/lattice-sync/lattice/lock/locktest"
)

func TestLockAdapterConformance(t *testing.T) {
	locktest.Run(t, func(t *testing.T) lock.Adapter {
		return mongoadapter.NewLockAdapter(mongotest.Collection(t))
	})
}
