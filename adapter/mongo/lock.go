package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lattice-sync/lattice/lock"
)

type lockDoc struct {
	ID        string     `bson:"_id"`
	LockID    string     `bson:"lockId"`
	ExpiresAt *time.Time `bson:"expiresAt"`
}

// LockAdapter implements lock.Adapter over a MongoDB collection. Callers are
// expected to have created a unique index on _id (the collection default).
type LockAdapter struct {
	coll *mongodriver.Collection
	now  func() time.Time
}

func NewLockAdapter(coll *mongodriver.Collection) *LockAdapter {
	return &LockAdapter{coll: coll, now: time.Now}
}

func (a *LockAdapter) Acquire(ctx context.Context, key, lockID string, ttl *time.Duration) (bool, error) {
	now := a.now()

	filter := bson.M{
		"_id": key,
		"$or": bson.A{
			bson.M{"lockId": lockID},
			bson.M{"expiresAt": bson.M{"$lte": now}},
		},
	}
	update := bson.M{"$set": bson.M{"lockId": lockID, "expiresAt": expiryPtr(now, ttl)}}

	_, err := a.coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		if isDuplicateKey(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func expiryPtr(now time.Time, ttl *time.Duration) *time.Time {
	if ttl == nil {
		return nil
	}
	t := now.Add(*ttl)
	return &t
}

func (a *LockAdapter) Release(ctx context.Context, key, lockID string) (bool, error) {
	res, err := a.coll.DeleteOne(ctx, bson.M{"_id": key, "lockId": lockID})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (a *LockAdapter) Refresh(ctx context.Context, key, lockID string, ttl time.Duration) (bool, error) {
	expiresAt := a.now().Add(ttl)
	res, err := a.coll.UpdateOne(ctx, bson.M{
		"_id":       key,
		"lockId":    lockID,
		"expiresAt": bson.M{"$ne": nil},
	}, bson.M{"$set": bson.M{"expiresAt": expiresAt}})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

func (a *LockAdapter) ForceRelease(ctx context.Context, key string) (bool, error) {
	res, err := a.coll.DeleteOne(ctx, bson.M{"_id": key})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (a *LockAdapter) GetState(ctx context.Context, key string) (*lock.State, error) {
	var doc lockDoc
	err := a.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err == mongodriver.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if doc.ExpiresAt != nil && doc.ExpiresAt.Before(a.now()) {
		return nil, nil
	}

	st := &lock.State{LockID: doc.LockID}
	if doc.ExpiresAt != nil {
		st.ExpiresAt = *doc.ExpiresAt
	}
	return st, nil
}

var _ lock.Adapter = (*LockAdapter)(nil)
