package semaphore

import (
	"log/slog"
	"time"

	"github.com/lattice-sync/lattice/backoff"
	"github.com/lattice-sync/lattice/eventbus"
	"github.com/lattice-sync/lattice/key"
)

// Option configures a Provider.
type Option struct {
	Adapter                 Adapter
	Namespace               key.Namespace
	DefaultTTL              time.Duration
	DefaultBlockingTime     time.Duration
	DefaultBlockingInterval backoff.Policy
	DefaultRefreshTime      time.Duration
	EventBus                eventbus.Bus
	Logger                  *slog.Logger
	MetricsCollector        MetricsCollector
}

const (
	defaultTTL          = 30 * time.Second
	defaultBlockingTime = 5 * time.Second
	defaultLimit        = 1
)

// NewOption returns the same defaults as lock.NewOption, rooted at "semaphore".
func NewOption() *Option {
	return &Option{
		Namespace:               key.NewNamespace("semaphore"),
		DefaultTTL:              defaultTTL,
		DefaultBlockingTime:     defaultBlockingTime,
		DefaultBlockingInterval: backoff.Exponential(10*time.Millisecond, 2, time.Second, 0.1),
		MetricsCollector:        &AtomicMetrics{},
		Logger:                  slog.Default(),
	}
}

// Provider creates Handles over a shared Adapter and namespace.
type Provider struct {
	opt *Option
}

// New returns a Provider, panicking if opt.Adapter is unset.
func New(opt *Option) *Provider {
	if opt == nil {
		opt = NewOption()
	}
	if opt.Adapter == nil {
		panic("semaphore: missing Adapter in Option")
	}
	if opt.Namespace.Root() == "" {
		opt.Namespace = key.NewNamespace("semaphore")
	}
	if opt.DefaultTTL <= 0 {
		opt.DefaultTTL = defaultTTL
	}
	if opt.DefaultBlockingTime <= 0 {
		opt.DefaultBlockingTime = defaultBlockingTime
	}
	if opt.DefaultBlockingInterval == nil {
		opt.DefaultBlockingInterval = backoff.Exponential(10*time.Millisecond, 2, time.Second, 0.1)
	}
	if opt.MetricsCollector == nil {
		opt.MetricsCollector = &AtomicMetrics{}
	}
	if opt.Logger == nil {
		opt.Logger = slog.Default()
	}

	return &Provider{opt: opt}
}

// HandleOption customizes a single Handle created by Create.
type HandleOption struct {
	TTL    time.Duration
	Limit  int
	SlotID string
}

// Create returns a Handle for userKey. Limit is only honored by the
// adapter on the record's first creation; later callers' Limit is ignored
// in favor of the stored value.
func (p *Provider) Create(userKey string, opts ...HandleOption) *Handle {
	var o HandleOption
	if len(opts) > 0 {
		o = opts[0]
	}
	if o.TTL <= 0 {
		o.TTL = p.opt.DefaultTTL
	}
	if o.Limit <= 0 {
		o.Limit = defaultLimit
	}
	if o.SlotID == "" {
		o.SlotID = newSlotID()
	}

	return &Handle{
		key:    p.opt.Namespace.Qualify(userKey).String(),
		slotID: o.SlotID,
		limit:  o.Limit,
		ttl:    o.TTL,
		p:      p,
	}
}
