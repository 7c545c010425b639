package sql_test

import (
	"testing"

	sqladapter "github.com/lattice-sync/lattice/adapter/sql"
	"github.com/lattice-sync/lattice/adapter/sql/sqltest"
	"github.com/lattice-sync/lattice/lock"
	"github.com/lattice-sync/lattice/lock/locktest"
)

func TestLockAdapterConformance(t *testing.T) {
	locktest.Run(t, func(t *testing.T) lock.Adapter {
		return sqladapter.NewLockAdapter(sqltest.DB(t))
	})
}
