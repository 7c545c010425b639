// Package redis provides Lua-scripted adapters for every coordination
// primitive and for cache, backed by github.com/redis/go-redis/v9. The
// scripts are grounded directly on the teacher's dsync/lock (SET NX PX /
// compare-and-delete) and dsync/cache (compare-and-swap) patterns,
// generalized from a single lock key to the lock/semaphore/sharedlock/
// breaker/cache contracts.
package redis

import redis "github.com/redis/go-redis/v9"

// Client is the subset every adapter in this package needs, satisfied by
// both *redis.Client and *redis.ClusterClient.
type Client = redis.Cmdable
