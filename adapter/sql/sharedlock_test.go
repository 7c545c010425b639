package sql_test

import (
	"testing"

	sqladapter "github.com/lattice-sync/lattice/adapter/sql"
	"github.com/lattice-sync/lattice/adapter/sql/sqltest"
	"github.com/lattice-sync/lattice/sharedlock"
	"github.com/lattice-sync/lattice/sharedlock/sharedlocktest"
)

func TestSharedLockAdapterConformance(t *testing.T) {
	sharedlocktest.Run(t, func(t *testing.T) sharedlock.Adapter {
		return sqladapter.NewSharedLockAdapter(sqltest.DB(t))
	})
}
