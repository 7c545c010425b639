package redis_test

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	lockredis "github.com/lattice-sync/lattice/adapter/redis"
	"github.com/lattice-sync/lattice/lock"
	"github.com/lattice-sync/lattice/lock/locktest"
)

func TestLockAdapterConformance(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	locktest.Run(t, func(t *testing.T) lock.Adapter {
		mr.FlushAll()
		return lockredis.NewLockAdapter(client)
	})
}
