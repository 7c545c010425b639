package sql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"

	"github.com/lattice-sync/lattice/lock"
)

// LockAdapter implements lock.Adapter over Postgres via Bun.
type LockAdapter struct {
	db  *bun.DB
	now func() time.Time
}

func NewLockAdapter(db *bun.DB) *LockAdapter {
	return &LockAdapter{db: db, now: time.Now}
}

func msPtr(t time.Time) *int64 {
	if t.IsZero() {
		return nil
	}
	ms := t.UnixMilli()
	return &ms
}

func (a *LockAdapter) Acquire(ctx context.Context, key, lockID string, ttl *time.Duration) (bool, error) {
	now := a.now()
	var expiresAt *int64
	if ttl != nil {
		expiresAt = msPtr(now.Add(*ttl))
	}

	row := &lockRow{Key: key, LockID: lockID, ExpiresAt: expiresAt}

	res, err := a.db.NewInsert().Model(row).
		On("CONFLICT (key) DO UPDATE").
		Set("lock_id = EXCLUDED.lock_id, expires_at_ms = EXCLUDED.expires_at_ms").
		Where("lattice_locks.lock_id = EXCLUDED.lock_id").
		WhereOr("lattice_locks.expires_at_ms IS NOT NULL AND lattice_locks.expires_at_ms <= ?", now.UnixMilli()).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return true, nil
	}
	return false, nil
}

func (a *LockAdapter) Release(ctx context.Context, key, lockID string) (bool, error) {
	res, err := a.db.NewDelete().Model((*lockRow)(nil)).
		Where("key = ? AND lock_id = ?", key, lockID).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (a *LockAdapter) Refresh(ctx context.Context, key, lockID string, ttl time.Duration) (bool, error) {
	expiresAt := msPtr(a.now().Add(ttl))
	res, err := a.db.NewUpdate().Model((*lockRow)(nil)).
		Set("expires_at_ms = ?", expiresAt).
		Where("key = ? AND lock_id = ? AND expires_at_ms IS NOT NULL", key, lockID).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (a *LockAdapter) ForceRelease(ctx context.Context, key string) (bool, error) {
	res, err := a.db.NewDelete().Model((*lockRow)(nil)).Where("key = ?", key).Exec(ctx)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (a *LockAdapter) GetState(ctx context.Context, key string) (*lock.State, error) {
	row := new(lockRow)
	err := a.db.NewSelect().Model(row).Where("key = ?", key).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	now := a.now()
	if row.ExpiresAt != nil && time.UnixMilli(*row.ExpiresAt).Before(now) {
		return nil, nil
	}

	st := &lock.State{LockID: row.LockID}
	if row.ExpiresAt != nil {
		st.ExpiresAt = time.UnixMilli(*row.ExpiresAt)
	}
	return st, nil
}

var _ lock.Adapter = (*LockAdapter)(nil)
