package sql_test

import (
	"testing"

	sqladapter "github.com/lattice-sync/lattice/adapter/sql"
	"github.com/lattice-sync/lattice/adapter/sql/sqltest"
	"github.com/lattice-sync/lattice/semaphore"
	"github.com/lattice-sync/lattice/semaphore/semaphoretest"
)

func TestSemaphoreAdapterConformance(t *testing.T) {
	semaphoretest.Run(t, func(t *testing.T) semaphore.Adapter {
		return sqladapter.NewSemaphoreAdapter(sqltest.DB(t))
	})
}
