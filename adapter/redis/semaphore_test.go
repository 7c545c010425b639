package redis_test

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	semredis "github.com/lattice-sync/lattice/adapter/redis"
	"github.com/lattice-sync/lattice/semaphore"
	"github.com/lattice-sync/lattice/semaphore/semaphoretest"
)

func TestSemaphoreAdapterConformance(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	semaphoretest.Run(t, func(t *testing.T) semaphore.Adapter {
		mr.FlushAll()
		return semredis.NewSemaphoreAdapter(client)
	})
}
