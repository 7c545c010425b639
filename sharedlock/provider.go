package sharedlock

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
	EventBus                eventbus.Bus
	Logger                  *slog.Logger
	MetricsCollector        MetricsCollector
}

const (
	defaultTTL          = 30 * time.Second
	defaultBlockingTime = 5 * time.Second
	defaultReaderLimit  = 1
)

// NewOption returns the same defaults as lock/semaphore, rooted at "sharedlock".
func NewOption() *Option {
	return &Option{
		Namespace:               key.NewNamespace("sharedlock"),
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
		panic("sharedlock: missing Adapter in Option")
	}
	if opt.Namespace.Root() == "" {
		opt.Namespace = key.NewNamespace("sharedlock")
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
	TTL         time.Duration
	WriterID    string
	ReaderSlot  string
	ReaderLimit int
}

// Create returns a Handle for userKey.
func (p *Provider) Create(userKey string, opts ...HandleOption) *Handle {
	var o HandleOption
	if len(opts) > 0 {
		o = opts[0]
	}
	if o.TTL <= 0 {
		o.TTL = p.opt.DefaultTTL
	}
	if o.WriterID == "" {
		o.WriterID = newLockID()
	}
	if o.ReaderSlot == "" {
		o.ReaderSlot = newLockID()
	}
	if o.ReaderLimit <= 0 {
		o.ReaderLimit = defaultReaderLimit
	}

	return &Handle{
		key:         p.opt.Namespace.Qualify(userKey).String(),
		writerID:    o.WriterID,
		readerSlot:  o.ReaderSlot,
		readerLimit: o.ReaderLimit,
		ttl:         o.TTL,
		p:           p,
	}
}
