package redis_test

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	cacheredis "github.com/lattice-sync/lattice/adapter/redis"
	"github.com/lattice-sync/lattice/cache"
	"github.com/lattice-sync/lattice/cache/cachetest"
)

func TestCacheAdapterConformance(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cachetest.Run(t, func(t *testing.T) cache.Adapter {
		mr.FlushAll()
		return cacheredis.NewCacheAdapter(client)
	})
}
