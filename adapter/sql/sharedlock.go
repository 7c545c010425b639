package sql

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"github.com/lattice-sync/lattice/lock"
	"github.com/lattice-sync/lattice/semaphore"
	"github.com/lattice-sync/lattice/sharedlock"
)

// SharedLockAdapter implements sharedlock.Adapter over Postgres via Bun,
// mirroring the Redis adapter's writer/reader mutual exclusion but as two
// tables instead of two key suffixes, guarded by an explicit transaction in
// place of the Redis adapter's single Lua script per operation.
type SharedLockAdapter struct {
	db  *bun.DB
	now func() time.Time
}

func NewSharedLockAdapter(db *bun.DB) *SharedLockAdapter {
	return &SharedLockAdapter{db: db, now: time.Now}
}

func (a *SharedLockAdapter) hasLiveReaders(ctx context.Context, tx bun.Tx, key string) (bool, error) {
	n, err := tx.NewSelect().Model((*sharedLockReaderRow)(nil)).
		Where("key = ? AND (expires_at_ms IS NULL OR expires_at_ms > ?)", key, a.now().UnixMilli()).
		Count(ctx)
	return n > 0, err
}

func (a *SharedLockAdapter) liveWriter(ctx context.Context, tx bun.Tx, key string) (*sharedLockWriterRow, error) {
	row := new(sharedLockWriterRow)
	err := tx.NewSelect().Model(row).Where("key = ?", key).Scan(ctx)
	if err != nil {
		return nil, nil //nolint:nilerr // absence of a row is not an error here
	}
	if row.ExpiresAt != nil && time.UnixMilli(*row.ExpiresAt).Before(a.now()) {
		return nil, nil
	}
	return row, nil
}

func (a *SharedLockAdapter) AcquireWriter(ctx context.Context, key, lockID string, ttl *time.Duration) (bool, error) {
	var acquired bool
	err := a.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if readers, err := a.hasLiveReaders(ctx, tx, key); err != nil || readers {
			return err
		}

		cur, err := a.liveWriter(ctx, tx, key)
		if err != nil {
			return err
		}
		if cur != nil && cur.LockID != lockID {
			return nil
		}

		var expiresAt *int64
		if ttl != nil {
			expiresAt = msPtr(a.now().Add(*ttl))
		}
		row := &sharedLockWriterRow{Key: key, LockID: lockID, ExpiresAt: expiresAt}
		_, err = tx.NewInsert().Model(row).
			On("CONFLICT (key) DO UPDATE").
			Set("lock_id = EXCLUDED.lock_id, expires_at_ms = EXCLUDED.expires_at_ms").
			Exec(ctx)
		if err != nil {
			return err
		}
		acquired = true
		return nil
	})
	return acquired, err
}

func (a *SharedLockAdapter) ReleaseWriter(ctx context.Context, key, lockID string) (bool, error) {
	res, err := a.db.NewDelete().Model((*sharedLockWriterRow)(nil)).
		Where("key = ? AND lock_id = ?", key, lockID).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (a *SharedLockAdapter) RefreshWriter(ctx context.Context, key, lockID string, ttl time.Duration) (bool, error) {
	expiresAt := msPtr(a.now().Add(ttl))
	res, err := a.db.NewUpdate().Model((*sharedLockWriterRow)(nil)).
		Set("expires_at_ms = ?", expiresAt).
		Where("key = ? AND lock_id = ? AND expires_at_ms IS NOT NULL", key, lockID).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (a *SharedLockAdapter) AcquireReader(ctx context.Context, key, slotID string, limit int, ttl *time.Duration) (bool, error) {
	var acquired bool
	err := a.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		writer, err := a.liveWriter(ctx, tx, key)
		if err != nil || writer != nil {
			return err
		}

		if _, err := tx.NewDelete().Model((*sharedLockReaderRow)(nil)).
			Where("key = ? AND expires_at_ms IS NOT NULL AND expires_at_ms <= ?", key, a.now().UnixMilli()).
			Exec(ctx); err != nil {
			return err
		}

		var rows []sharedLockReaderRow
		if err := tx.NewSelect().Model(&rows).Where("key = ?", key).Scan(ctx); err != nil {
			return err
		}

		fixedLimit := limit
		for _, r := range rows {
			if r.SlotID == slotID {
				var expiresAt *int64
				if ttl != nil {
					expiresAt = msPtr(a.now().Add(*ttl))
				}
				_, err := tx.NewUpdate().Model((*sharedLockReaderRow)(nil)).
					Set("expires_at_ms = ?", expiresAt).
					Where("key = ? AND slot_id = ?", key, slotID).
					Exec(ctx)
				acquired = err == nil
				return err
			}
			fixedLimit = r.Limit
		}

		if len(rows) >= fixedLimit {
			return nil
		}

		var expiresAt *int64
		if ttl != nil {
			expiresAt = msPtr(a.now().Add(*ttl))
		}
		row := &sharedLockReaderRow{Key: key, SlotID: slotID, Limit: fixedLimit, ExpiresAt: expiresAt}
		if _, err := tx.NewInsert().Model(row).Exec(ctx); err != nil {
			return err
		}
		acquired = true
		return nil
	})
	return acquired, err
}

func (a *SharedLockAdapter) ReleaseReader(ctx context.Context, key, slotID string) (bool, error) {
	var released bool
	err := a.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		writer, err := a.liveWriter(ctx, tx, key)
		if err != nil || writer != nil {
			return err
		}
		res, err := tx.NewDelete().Model((*sharedLockReaderRow)(nil)).
			Where("key = ? AND slot_id = ?", key, slotID).
			Exec(ctx)
		if err != nil {
			return err
		}
		n, _ := res.RowsAffected()
		released = n > 0
		return nil
	})
	return released, err
}

func (a *SharedLockAdapter) RefreshReader(ctx context.Context, key, slotID string, ttl time.Duration) (bool, error) {
	expiresAt := msPtr(a.now().Add(ttl))
	res, err := a.db.NewUpdate().Model((*sharedLockReaderRow)(nil)).
		Set("expires_at_ms = ?", expiresAt).
		Where("key = ? AND slot_id = ? AND expires_at_ms IS NOT NULL AND expires_at_ms > ?", key, slotID, a.now().UnixMilli()).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (a *SharedLockAdapter) ForceReleaseAllReaders(ctx context.Context, key string) (bool, error) {
	var cleared bool
	err := a.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		writer, err := a.liveWriter(ctx, tx, key)
		if err != nil || writer != nil {
			return err
		}
		res, err := tx.NewDelete().Model((*sharedLockReaderRow)(nil)).Where("key = ?", key).Exec(ctx)
		if err != nil {
			return err
		}
		n, _ := res.RowsAffected()
		cleared = n > 0
		return nil
	})
	return cleared, err
}

func (a *SharedLockAdapter) ForceRelease(ctx context.Context, key string) (bool, error) {
	var cleared bool
	err := a.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		wr, err := tx.NewDelete().Model((*sharedLockWriterRow)(nil)).Where("key = ?", key).Exec(ctx)
		if err != nil {
			return err
		}
		rr, err := tx.NewDelete().Model((*sharedLockReaderRow)(nil)).Where("key = ?", key).Exec(ctx)
		if err != nil {
			return err
		}
		wn, _ := wr.RowsAffected()
		rn, _ := rr.RowsAffected()
		cleared = wn > 0 || rn > 0
		return nil
	})
	return cleared, err
}

func (a *SharedLockAdapter) GetState(ctx context.Context, key string) (*sharedlock.State, error) {
	st := new(sharedlock.State)
	err := a.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		writer, err := a.liveWriter(ctx, tx, key)
		if err != nil {
			return err
		}
		if writer != nil {
			st.Writer = &lock.State{LockID: writer.LockID}
			if writer.ExpiresAt != nil {
				st.Writer.ExpiresAt = time.UnixMilli(*writer.ExpiresAt)
			}
			return nil
		}

		var rows []sharedLockReaderRow
		now := a.now()
		if err := tx.NewSelect().Model(&rows).
			Where("key = ? AND (expires_at_ms IS NULL OR expires_at_ms > ?)", key, now.UnixMilli()).
			Scan(ctx); err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		rec := &semaphore.Record{Limit: rows[0].Limit}
		for _, r := range rows {
			slot := semaphore.Slot{SlotID: r.SlotID}
			if r.ExpiresAt != nil {
				slot.ExpiresAt = time.UnixMilli(*r.ExpiresAt)
			}
			rec.Slots = append(rec.Slots, slot)
		}
		st.Reader = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	if st.Writer == nil && st.Reader == nil {
		return nil, nil
	}
	return st, nil
}

var _ sharedlock.Adapter = (*SharedLockAdapter)(nil)
