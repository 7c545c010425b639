package lock_test

import (
	"testing"

	"github.com/lattice-sync/lattice/adapter/memory"
	"github.com/lattice-sync/lattice/lock"
	"github.com/stretchr/testify/assert"
)

func TestNewPanicsWithoutAdapter(t *testing.T) {
	assert.Panics(t, func() {
		lock.New(&lock.Option{})
	})
}

func TestCreateGeneratesDistinctLockIDsByDefault(t *testing.T) {
	p := lock.New(&lock.Option{Adapter: memory.NewLockAdapter()})
	a := p.Create("k")
	b := p.Create("k")

	assert.NotEqual(t, a.LockID(), b.LockID())
	assert.Equal(t, a.Key(), b.Key())
}
