// Package mongo provides lock and semaphore adapters over MongoDB, using
// UpdateOne/ReplaceOne upserts guarded by the collection's unique _id index: a
// lock/slot is "taken" by upserting a document keyed on it and treating a
// duplicate-key error as "already held by someone else", the documented
// MongoDB idiom for try-lock semantics since there is no server-side
// scripting primitive comparable to Redis's EVAL.
package mongo

import mongodriver "go.mongodb.org/mongo-driver/mongo"

func isDuplicateKey(err error) bool {
	return mongodriver.IsDuplicateKeyError(err)
}
