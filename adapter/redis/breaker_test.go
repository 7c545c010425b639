package redis_test

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	brredis "github.com/lattice-sync/lattice/adapter/redis"
	"github.com/lattice-sync/lattice/breaker"
	"github.com/lattice-sync/lattice/breaker/breakertest"
)

func TestBreakerAdapterConformance(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	breakertest.Run(t, func(t *testing.T) breaker.Adapter {
		mr.FlushAll()
		return brredis.NewBreakerAdapter(client, nil)
	})
}
