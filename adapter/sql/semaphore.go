package sql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"

	"github.com/lattice-sync/lattice/semaphore"
)

// SemaphoreAdapter implements semaphore.Adapter over Postgres via Bun.
// The limit is duplicated onto every slot row of a key, fixed by whichever
// insert creates the key's first slot, mirroring the Redis adapter's
// __limit__ hash field.
type SemaphoreAdapter struct {
	db  *bun.DB
	now func() time.Time
}

func NewSemaphoreAdapter(db *bun.DB) *SemaphoreAdapter {
	return &SemaphoreAdapter{db: db, now: time.Now}
}

func (a *SemaphoreAdapter) prune(ctx context.Context, tx bun.Tx, key string) error {
	_, err := tx.NewDelete().Model((*semaphoreSlotRow)(nil)).
		Where("key = ? AND expires_at_ms IS NOT NULL AND expires_at_ms <= ?", key, a.now().UnixMilli()).
		Exec(ctx)
	return err
}

func (a *SemaphoreAdapter) Acquire(ctx context.Context, key, slotID string, limit int, ttl *time.Duration) (bool, error) {
	var acquired bool
	err := a.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := a.prune(ctx, tx, key); err != nil {
			return err
		}

		var rows []semaphoreSlotRow
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
				_, err := tx.NewUpdate().Model((*semaphoreSlotRow)(nil)).
					Set("expires_at_ms = ?", expiresAt).
					Where("key = ? AND slot_id = ?", key, slotID).
					Exec(ctx)
				acquired = err == nil
				return err
			}
			fixedLimit = r.Limit
		}

		if len(rows) >= fixedLimit {
			acquired = false
			return nil
		}

		var expiresAt *int64
		if ttl != nil {
			expiresAt = msPtr(a.now().Add(*ttl))
		}
		row := &semaphoreSlotRow{Key: key, SlotID: slotID, Limit: fixedLimit, ExpiresAt: expiresAt}
		if _, err := tx.NewInsert().Model(row).Exec(ctx); err != nil {
			return err
		}
		acquired = true
		return nil
	})
	return acquired, err
}

func (a *SemaphoreAdapter) Release(ctx context.Context, key, slotID string) (bool, error) {
	res, err := a.db.NewDelete().Model((*semaphoreSlotRow)(nil)).
		Where("key = ? AND slot_id = ?", key, slotID).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (a *SemaphoreAdapter) Refresh(ctx context.Context, key, slotID string, ttl time.Duration) (bool, error) {
	expiresAt := msPtr(a.now().Add(ttl))
	res, err := a.db.NewUpdate().Model((*semaphoreSlotRow)(nil)).
		Set("expires_at_ms = ?", expiresAt).
		Where("key = ? AND slot_id = ? AND expires_at_ms IS NOT NULL AND expires_at_ms > ?", key, slotID, a.now().UnixMilli()).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (a *SemaphoreAdapter) ForceReleaseAll(ctx context.Context, key string) (bool, error) {
	res, err := a.db.NewDelete().Model((*semaphoreSlotRow)(nil)).Where("key = ?", key).Exec(ctx)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (a *SemaphoreAdapter) GetState(ctx context.Context, key string) (*semaphore.Record, error) {
	var rows []semaphoreSlotRow
	now := a.now()
	err := a.db.NewSelect().Model(&rows).
		Where("key = ? AND (expires_at_ms IS NULL OR expires_at_ms > ?)", key, now.UnixMilli()).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	rec := &semaphore.Record{Limit: rows[0].Limit}
	for _, r := range rows {
		slot := semaphore.Slot{SlotID: r.SlotID}
		if r.ExpiresAt != nil {
			slot.ExpiresAt = time.UnixMilli(*r.ExpiresAt)
		}
		rec.Slots = append(rec.Slots, slot)
	}
	return rec, nil
}

// PeekOwnSlot selects slotID's row directly, bypassing the expiry filter
// GetState applies, so an expired slot is still visible here.
func (a *SemaphoreAdapter) PeekOwnSlot(ctx context.Context, key, slotID string) (*semaphore.Slot, error) {
	row := new(semaphoreSlotRow)
	err := a.db.NewSelect().Model(row).Where("key = ? AND slot_id = ?", key, slotID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	slot := &semaphore.Slot{SlotID: slotID}
	if row.ExpiresAt != nil {
		slot.ExpiresAt = time.UnixMilli(*row.ExpiresAt)
	}
	return slot, nil
}

var _ semaphore.Adapter = (*SemaphoreAdapter)(nil)
