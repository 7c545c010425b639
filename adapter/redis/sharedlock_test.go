package redis_test

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	slredis "github.com/lattice-sync/lattice/adapter/redis"
	"github.com/lattice-sync/lattice/sharedlock"
	"github.com/lattice-sync/lattice/sharedlock/sharedlocktest"
)

func TestSharedLockAdapterConformance(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	sharedlocktest.Run(t, func(t *testing.T) sharedlock.Adapter {
		mr.FlushAll()
		return slredis.NewSharedLockAdapter(client)
	})
}
