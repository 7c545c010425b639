// Package sql provides Bun/Postgres-backed adapters for the lock, semaphore
// and sharedlock driver contracts, grounded on the teacher's
// database/postgres.NewBun (bun.DB over pgdriver/pgdialect) and using
// "INSERT ... ON CONFLICT" upserts plus explicit transactions for the
// atomicity each contract requires, the SQL analogue of the Redis Lua
// scripts in adapter/redis.
package sql

import (
	"context"

	"github.com/uptrace/bun"
)

// lockRow is the lattice_locks table: one row per held lock key.
type lockRow struct {
	bun.BaseModel `bun:"table:lattice_locks"`

	Key       string `bun:"key,pk"`
	LockID    string `bun:"lock_id,notnull"`
	ExpiresAt *int64 `bun:"expires_at_ms"` // unix millis; nil means unexpireable
}

// semaphoreSlotRow is the lattice_semaphore_slots table: one row per held
// slot, with the limit duplicated onto every row of a key so it can be read
// without a second table.
type semaphoreSlotRow struct {
	bun.BaseModel `bun:"table:lattice_semaphore_slots"`

	Key       string `bun:"key,pk"`
	SlotID    string `bun:"slot_id,pk"`
	Limit     int    `bun:"limit_n,notnull"`
	ExpiresAt *int64 `bun:"expires_at_ms"`
}

// sharedLockWriterRow/sharedLockReaderRow back the sharedlock adapter,
// mirroring the Redis adapter's "<key>:w" / "<key>:r" split as two tables
// instead of two key suffixes.
type sharedLockWriterRow struct {
	bun.BaseModel `bun:"table:lattice_sharedlock_writers"`

	Key       string `bun:"key,pk"`
	LockID    string `bun:"lock_id,notnull"`
	ExpiresAt *int64 `bun:"expires_at_ms"`
}

type sharedLockReaderRow struct {
	bun.BaseModel `bun:"table:lattice_sharedlock_readers"`

	Key       string `bun:"key,pk"`
	SlotID    string `bun:"slot_id,pk"`
	Limit     int    `bun:"limit_n,notnull"`
	ExpiresAt *int64 `bun:"expires_at_ms"`
}

// CreateTables creates every table this package's adapters need, idempotent
// via IfNotExists, for use in migrations or test setup.
func CreateTables(ctx context.Context, db *bun.DB) error {
	models := []any{
		(*lockRow)(nil),
		(*semaphoreSlotRow)(nil),
		(*sharedLockWriterRow)(nil),
		(*sharedLockReaderRow)(nil),
	}
	for _, m := range models {
		if _, err := db.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}
