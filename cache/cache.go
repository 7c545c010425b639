package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/lattice-sync/lattice/eventbus"
	"github.com/lattice-sync/lattice/key"
)

// Option configures a Cache.
type Option struct {
	Adapter          Adapter
	Namespace        key.Namespace
	DefaultTTL       time.Duration
	EventBus         eventbus.Bus
	Logger           *slog.Logger
	MetricsCollector MetricsCollector
}

const defaultTTL = 5 * time.Minute

// NewOption returns defaults: a 5-minute TTL and a namespace rooted at
// "cache".
func NewOption() *Option {
	return &Option{
		Namespace:        key.NewNamespace("cache"),
		DefaultTTL:       defaultTTL,
		MetricsCollector: &AtomicMetrics{},
		Logger:           slog.Default(),
	}
}

// Cache is a namespaced, shallow key/value wrapper over an Adapter. Unlike
// lock/semaphore/sharedlock it has no per-call identity: every call
// addresses the given userKey directly.
type Cache struct {
	opt *Option
}

// New returns a Cache, panicking if opt.Adapter is unset.
func New(opt *Option) *Cache {
	if opt == nil {
		opt = NewOption()
	}
	if opt.Adapter == nil {
		panic("cache: missing Adapter in Option")
	}
	if opt.Namespace.Root() == "" {
		opt.Namespace = key.NewNamespace("cache")
	}
	if opt.DefaultTTL <= 0 {
		opt.DefaultTTL = defaultTTL
	}
	if opt.MetricsCollector == nil {
		opt.MetricsCollector = &AtomicMetrics{}
	}
	if opt.Logger == nil {
		opt.Logger = slog.Default()
	}

	return &Cache{opt: opt}
}

func (c *Cache) qualify(userKey string) string {
	return c.opt.Namespace.Qualify(userKey).String()
}

// Get returns the raw value for userKey and whether it was found.
func (c *Cache) Get(ctx context.Context, userKey string) ([]byte, bool, error) {
	k := c.qualify(userKey)
	v, found, err := c.opt.Adapter.Get(ctx, k)
	if err != nil {
		c.emit(ctx, EventUnexpectedErr, k, err)
		return nil, false, err
	}

	if found {
		c.opt.MetricsCollector.IncHits()
		c.emit(ctx, EventKeyFound, k, nil)
	} else {
		c.opt.MetricsCollector.IncMisses()
		c.emit(ctx, EventKeyNotFound, k, nil)
	}
	return v, found, nil
}

// GetOrFail wraps Get, converting a miss into ErrKeyNotFound.
func (c *Cache) GetOrFail(ctx context.Context, userKey string) ([]byte, error) {
	v, found, err := c.Get(ctx, userKey)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrKeyNotFound
	}
	return v, nil
}

// Set writes value for userKey, using ttl (or the Cache's default TTL if
// ttl is zero). New replaces a non-positive DefaultTTL with the 5-minute
// default, so an entry written here always expires.
func (c *Cache) Set(ctx context.Context, userKey string, value []byte, ttl time.Duration) error {
	k := c.qualify(userKey)

	_, existed, err := c.opt.Adapter.Get(ctx, k)
	if err != nil {
		c.emit(ctx, EventUnexpectedErr, k, err)
		return err
	}

	var ttlPtr *time.Duration
	if ttl > 0 {
		ttlPtr = &ttl
	} else if c.opt.DefaultTTL > 0 {
		d := c.opt.DefaultTTL
		ttlPtr = &d
	}

	if err := c.opt.Adapter.Set(ctx, k, value, ttlPtr); err != nil {
		c.emit(ctx, EventUnexpectedErr, k, err)
		return err
	}

	c.opt.MetricsCollector.IncWrites()
	if existed {
		c.emit(ctx, EventKeyUpdated, k, nil)
	} else {
		c.emit(ctx, EventKeyAdded, k, nil)
	}
	return nil
}

// Add writes value for userKey only if it is absent or expired.
func (c *Cache) Add(ctx context.Context, userKey string, value []byte, ttl time.Duration) (bool, error) {
	k := c.qualify(userKey)

	var ttlPtr *time.Duration
	if ttl > 0 {
		ttlPtr = &ttl
	} else if c.opt.DefaultTTL > 0 {
		d := c.opt.DefaultTTL
		ttlPtr = &d
	}

	ok, err := c.opt.Adapter.Add(ctx, k, value, ttlPtr)
	if err != nil {
		c.emit(ctx, EventUnexpectedErr, k, err)
		return false, err
	}

	if ok {
		c.opt.MetricsCollector.IncWrites()
		c.emit(ctx, EventKeyAdded, k, nil)
	}
	return ok, nil
}

// AddOrFail wraps Add, converting a false result into ErrKeyExists.
func (c *Cache) AddOrFail(ctx context.Context, userKey string, value []byte, ttl time.Duration) error {
	ok, err := c.Add(ctx, userKey, value, ttl)
	if err != nil {
		return err
	}
	if !ok {
		return ErrKeyExists
	}
	return nil
}

// Delete removes userKey, reporting whether it previously existed.
func (c *Cache) Delete(ctx context.Context, userKey string) (bool, error) {
	k := c.qualify(userKey)
	ok, err := c.opt.Adapter.Delete(ctx, k)
	if err != nil {
		c.emit(ctx, EventUnexpectedErr, k, err)
		return false, err
	}

	c.opt.MetricsCollector.IncDeletes()
	if ok {
		c.emit(ctx, EventKeyRemoved, k, nil)
	}
	return ok, nil
}

// Increment adds delta to the integer stored at userKey, initializing it at
// 0 if absent, returning the post-update value.
func (c *Cache) Increment(ctx context.Context, userKey string, delta int64) (int64, error) {
	k := c.qualify(userKey)
	v, err := c.opt.Adapter.Increment(ctx, k, delta)
	if err != nil {
		c.emit(ctx, EventUnexpectedErr, k, err)
		return 0, err
	}

	c.opt.MetricsCollector.IncWrites()
	c.emit(ctx, EventKeyIncremented, k, nil)
	return v, nil
}

// Decrement subtracts delta from the integer stored at userKey.
func (c *Cache) Decrement(ctx context.Context, userKey string, delta int64) (int64, error) {
	k := c.qualify(userKey)
	v, err := c.opt.Adapter.Decrement(ctx, k, delta)
	if err != nil {
		c.emit(ctx, EventUnexpectedErr, k, err)
		return 0, err
	}

	c.opt.MetricsCollector.IncWrites()
	c.emit(ctx, EventKeyDecremented, k, nil)
	return v, nil
}

// Clear calls Adapter.Clear, which removes every key in the adapter's store,
// not only those under this Cache's namespace.
func (c *Cache) Clear(ctx context.Context) error {
	if err := c.opt.Adapter.Clear(ctx); err != nil {
		c.emit(ctx, EventUnexpectedErr, "", err)
		return err
	}

	c.opt.MetricsCollector.IncClears()
	c.emit(ctx, EventKeysCleared, "", nil)
	return nil
}

func (c *Cache) emit(ctx context.Context, name, k string, cause error) {
	if c.opt.EventBus == nil {
		return
	}
	c.opt.EventBus.Dispatch(ctx, eventbus.Event{
		Name:    name,
		Key:     k,
		Payload: cause,
	})
}
