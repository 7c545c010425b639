// Package sqltest spins up a throwaway Postgres container via dockertest and
// hands back a *bun.DB per test, grounded on the teacher's
// storage/pg/pgtest (dockertest.RunWithOptions + fsync=off for speed, one
// shared container for the whole test binary via sync.Once) and
// storage/pg/pgtest.BunTx (registering go-txdb against bun's "pg" driver so
// each test runs inside its own transaction, rolled back on Close instead of
// truncated afterward).
package sqltest

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	txdb "github.com/DATA-DOG/go-txdb"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	dockertest "github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	sqladapter "github.com/lattice-sync/lattice/adapter/sql"
)

const txdbName = "lattice_bun_txdb"

var (
	once       sync.Once
	onceTables sync.Once
	onceTxdb   sync.Once
	dsn        string
	pool       *dockertest.Pool
	res        *dockertest.Resource
)

func initContainer() error {
	p, err := dockertest.NewPool("")
	if err != nil {
		return fmt.Errorf("sqltest: construct pool: %w", err)
	}
	if err := p.Client.Ping(); err != nil {
		return fmt.Errorf("sqltest: connect to docker: %w", err)
	}

	r, err := p.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_PASSWORD=lattice",
			"POSTGRES_USER=lattice",
			"POSTGRES_DB=lattice_test",
		},
	}, func(cfg *docker.HostConfig) {
		cfg.AutoRemove = true
		cfg.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		return fmt.Errorf("sqltest: start resource: %w", err)
	}
	r.Expire(120)

	hostAndPort := r.GetHostPort("5432/tcp")
	d := fmt.Sprintf("postgres://lattice:lattice@%s/lattice_test?sslmode=disable", hostAndPort)

	p.MaxWait = 120 * time.Second
	if err := p.Retry(func() error {
		db, err := sql.Open("postgres", d)
		if err != nil {
			return err
		}
		defer db.Close()
		return db.Ping()
	}); err != nil {
		return fmt.Errorf("sqltest: postgres never became ready: %w", err)
	}

	dsn, pool, res = d, p, r
	return nil
}

// ensureTables creates this package's tables once against the shared
// container, outside of any per-test transaction, so the schema survives
// every test's rollback.
func ensureTables() error {
	var err error
	onceTables.Do(func() {
		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
		db := bun.NewDB(sqldb, pgdialect.New())
		defer db.Close()
		err = sqladapter.CreateTables(context.Background(), db)
	})
	return err
}

// DB returns a *bun.DB scoped to its own Postgres transaction, registered
// through go-txdb against bun's "pg" driver, and rolled back automatically
// when db.Close runs at test cleanup — each test gets full isolation without
// having to TRUNCATE shared tables between runs.
func DB(t *testing.T) *bun.DB {
	t.Helper()

	var initErr error
	once.Do(func() { initErr = initContainer() })
	if initErr != nil {
		t.Skipf("sqltest: docker unavailable, skipping: %v", initErr)
	}

	if err := ensureTables(); err != nil {
		t.Fatalf("sqltest: create tables: %v", err)
	}

	onceTxdb.Do(func() {
		// A throwaway connection first registers pgdriver's "pg" sql.Driver;
		// txdb.Register needs it already present under that name.
		bootstrap := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
		if err := bootstrap.Ping(); err != nil {
			t.Fatalf("sqltest: bootstrap connection: %v", err)
		}
		_ = bootstrap.Close()

		txdb.Register(txdbName, "pg", dsn)
	})

	sqldb, err := sql.Open(txdbName, uuid.NewString())
	if err != nil {
		t.Fatalf("sqltest: open txdb connection: %v", err)
	}

	db := bun.NewDB(sqldb, pgdialect.New())
	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}
