package config

import (
	"io"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/thejerf/abtime"
)

// Option configures a Provider.
type Option func(*Provider)

// WithClock sets the time source used for refresh deadlines.
func WithClock(clock abtime.AbstractTime) Option {
	return func(p *Provider) { p.clock = clock }
}

// WithLogger sets the logger. If not provided, logs are discarded.
func WithLogger(l *slog.Logger) Option {
	return func(p *Provider) { p.log = l }
}

// Provider serves configuration lookups from a lazily refreshed snapshot.
// It is safe for concurrent use.
type Provider struct {
	src   Source
	clock abtime.AbstractTime
	log   *slog.Logger

	mu      sync.Mutex
	snap    Snapshot
	loaded  bool
	next    time.Time
	refresh time.Duration
}

// New returns a Provider reading from src. Nothing is loaded until the
// first lookup.
func New(src Source, opts ...Option) *Provider {
	p := &Provider{
		src:   src,
		clock: abtime.NewRealTime(),
		log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		snap:  Snapshot{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Get returns the configured value for key, or def when it is absent.
func (p *Provider) Get(key, def string) string {
	v := p.current().Get(key, def)
	p.log.Debug("config.get", slog.String("key", key), slog.String("value", v), slog.String("default", def))
	return v
}

// Value returns the configured value for k, falling back to its default.
func (p *Provider) Value(k Key) string {
	return p.Get(k.Name, k.Default)
}

// Snapshot returns a copy of the active snapshot, reloading first if the
// refresh deadline has passed.
func (p *Provider) Snapshot() Snapshot {
	return maps.Clone(p.current())
}

// NextRefresh returns the current refresh deadline. It is the zero time
// before the first load.
func (p *Provider) NextRefresh() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.next
}

// Expire moves the refresh deadline to now so the next lookup reloads.
func (p *Provider) Expire() {
	p.mu.Lock()
	if p.loaded {
		p.next = p.clock.Now()
	}
	p.mu.Unlock()
}

// Validate checks the active snapshot against the schema and logs every
// problem as a warning.
func (p *Provider) Validate() []error {
	errs := Validate(p.current())
	for _, err := range errs {
		p.log.Warn("config.validate.fail", slog.String("err", err.Error()))
	}
	return errs
}

func (p *Provider) current() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := p.clock.Now()
	if !p.loaded || !now.Before(p.next) {
		p.reloadLocked(now)
	}
	return p.snap
}

func (p *Provider) reloadLocked(now time.Time) {
	p.log.Debug("config.reload.start", slog.Bool("initial", !p.loaded))

	if p.src == nil {
		p.log.Error("config.reload.fail", slog.String("err", ErrNoSource.Error()))
	} else if snap, err := p.src.Load(); err != nil {
		p.log.Error("config.reload.fail", slog.String("err", err.Error()))
	} else {
		if snap == nil {
			snap = Snapshot{}
		}
		p.snap = snap
		p.refresh = p.refreshInterval(snap)
	}
	if p.refresh <= 0 {
		p.refresh = DefaultRefreshSeconds * time.Second
	}

	p.loaded = true
	p.next = now.Add(p.refresh)
	p.log.Info("config.reload.ok",
		slog.Duration("refresh", p.refresh),
		slog.Time("next", p.next),
		slog.String("config", formatSnapshot(p.snap)),
	)
}

func (p *Provider) refreshInterval(s Snapshot) time.Duration {
	v, ok := s[Refresh.Name]
	if !ok {
		return DefaultRefreshSeconds * time.Second
	}
	n, err := parseRefresh(v)
	if err != nil {
		p.log.Warn("config.refresh.invalid",
			slog.String("value", v),
			slog.String("err", err.Error()),
			slog.Int("default_seconds", DefaultRefreshSeconds),
		)
		return DefaultRefreshSeconds * time.Second
	}
	return time.Duration(n) * time.Second
}

func formatSnapshot(s Snapshot) string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(s[k])
	}
	b.WriteByte('}')
	return b.String()
}
