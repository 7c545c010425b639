// Package mongotest spins up a throwaway MongoDB container via dockertest,
// reusing the same container-per-binary pattern as adapter/sql/sqltest
// (and the teacher's storage/pg/pgtest) for a driver with no in-process fake
// in the pack.
package mongotest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	dockertest "github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	once sync.Once
	uri  string
)

func initContainer() error {
	pool, err := dockertest.NewPool("")
	if err != nil {
		return fmt.Errorf("mongotest: construct pool: %w", err)
	}
	if err := pool.Client.Ping(); err != nil {
		return fmt.Errorf("mongotest: connect to docker: %w", err)
	}

	res, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mongo",
		Tag:        "7",
	}, func(cfg *docker.HostConfig) {
		cfg.AutoRemove = true
		cfg.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		return fmt.Errorf("mongotest: start resource: %w", err)
	}
	res.Expire(120)

	u := fmt.Sprintf("mongodb://%s", res.GetHostPort("27017/tcp"))

	pool.MaxWait = 120 * time.Second
	if err := pool.Retry(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(u))
		if err != nil {
			return err
		}
		defer client.Disconnect(ctx)
		return client.Ping(ctx, nil)
	}); err != nil {
		return fmt.Errorf("mongotest: mongo never became ready: %w", err)
	}

	uri = u
	return nil
}

// Collection returns a fresh, empty collection in the shared container,
// dropped when t ends.
func Collection(t *testing.T) *mongo.Collection {
	t.Helper()

	var initErr error
	once.Do(func() { initErr = initContainer() })
	if initErr != nil {
		t.Skipf("mongotest: docker unavailable, skipping: %v", initErr)
	}

	ctx := context.Background()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Fatalf("mongotest: connect: %v", err)
	}

	coll := client.Database("lattice_test").Collection(fmt.Sprintf("c%d", time.Now().UnixNano()))
	t.Cleanup(func() {
		_ = coll.Drop(ctx)
		_ = client.Disconnect(ctx)
	})
	return coll
}
