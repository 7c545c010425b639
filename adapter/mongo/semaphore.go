package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lattice-sync/lattice/semaphore"
)

// semaphoreDoc is one held slot; _id is "<key>:<slotID>" so the unique index
// on _id doubles as the per-slot uniqueness guard, mirroring the Redis
// adapter's hash-field-per-slot layout.
type semaphoreDoc struct {
	ID        string     `bson:"_id"`
	Key       string     `bson:"key"`
	SlotID    string     `bson:"slotId"`
	Limit     int        `bson:"limit"`
	ExpiresAt *time.Time `bson:"expiresAt"`
}

func semaphoreDocID(key, slotID string) string { return key + ":" + slotID }

// SemaphoreAdapter implements semaphore.Adapter over a MongoDB collection.
type SemaphoreAdapter struct {
	coll *mongodriver.Collection
	now  func() time.Time
}

func NewSemaphoreAdapter(coll *mongodriver.Collection) *SemaphoreAdapter {
	return &SemaphoreAdapter{coll: coll, now: time.Now}
}

func (a *SemaphoreAdapter) prune(ctx context.Context, key string) error {
	_, err := a.coll.DeleteMany(ctx, bson.M{
		"key":       key,
		"expiresAt": bson.M{"$ne": nil, "$lte": a.now()},
	})
	return err
}

func (a *SemaphoreAdapter) liveSlots(ctx context.Context, key string) ([]semaphoreDoc, error) {
	cur, err := a.coll.Find(ctx, bson.M{"key": key})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []semaphoreDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (a *SemaphoreAdapter) Acquire(ctx context.Context, key, slotID string, limit int, ttl *time.Duration) (bool, error) {
	if err := a.prune(ctx, key); err != nil {
		return false, err
	}

	docs, err := a.liveSlots(ctx, key)
	if err != nil {
		return false, err
	}

	fixedLimit := limit
	for _, d := range docs {
		if d.SlotID == slotID {
			fixedLimit = d.Limit
			break
		}
		fixedLimit = d.Limit
	}

	now := a.now()
	doc := semaphoreDoc{
		ID: semaphoreDocID(key, slotID), Key: key, SlotID: slotID,
		Limit: fixedLimit, ExpiresAt: expiryPtr(now, ttl),
	}

	held := false
	for _, d := range docs {
		if d.SlotID == slotID {
			held = true
			break
		}
	}
	if !held && len(docs) >= fixedLimit {
		return false, nil
	}

	_, err = a.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		if isDuplicateKey(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (a *SemaphoreAdapter) Release(ctx context.Context, key, slotID string) (bool, error) {
	res, err := a.coll.DeleteOne(ctx, bson.M{"_id": semaphoreDocID(key, slotID)})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (a *SemaphoreAdapter) Refresh(ctx context.Context, key, slotID string, ttl time.Duration) (bool, error) {
	expiresAt := a.now().Add(ttl)
	res, err := a.coll.UpdateOne(ctx, bson.M{
		"_id":       semaphoreDocID(key, slotID),
		"expiresAt": bson.M{"$ne": nil, "$gt": a.now()},
	}, bson.M{"$set": bson.M{"expiresAt": expiresAt}})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

func (a *SemaphoreAdapter) ForceReleaseAll(ctx context.Context, key string) (bool, error) {
	res, err := a.coll.DeleteMany(ctx, bson.M{"key": key})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (a *SemaphoreAdapter) GetState(ctx context.Context, key string) (*semaphore.Record, error) {
	if err := a.prune(ctx, key); err != nil {
		return nil, err
	}
	docs, err := a.liveSlots(ctx, key)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}

	rec := &semaphore.Record{Limit: docs[0].Limit}
	for _, d := range docs {
		slot := semaphore.Slot{SlotID: d.SlotID}
		if d.ExpiresAt != nil {
			slot.ExpiresAt = *d.ExpiresAt
		}
		rec.Slots = append(rec.Slots, slot)
	}
	return rec, nil
}

// PeekOwnSlot fetches slotID's document directly by _id, bypassing the
// prune pass GetState runs, so an expired slot is still visible here.
func (a *SemaphoreAdapter) PeekOwnSlot(ctx context.Context, key, slotID string) (*semaphore.Slot, error) {
	var doc semaphoreDoc
	err := a.coll.FindOne(ctx, bson.M{"_id": semaphoreDocID(key, slotID)}).Decode(&doc)
	if err == mongodriver.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	slot := &semaphore.Slot{SlotID: slotID}
	if doc.ExpiresAt != nil {
		slot.ExpiresAt = *doc.ExpiresAt
	}
	return slot, nil
}

var _ semaphore.Adapter = (*SemaphoreAdapter)(nil)
