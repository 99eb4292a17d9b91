package notifier

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"timezonebot/internal/eventbus"
	rtsup "timezonebot/internal/runtime/supervisor"
	kit "timezonebot/internal/transport"
	logx "timezonebot/pkg/logx"
)

var (
	ErrDisabled  = errors.New("notifier disabled")
	ErrQueueFull = errors.New("notifier queue full")
	ErrStopped   = errors.New("notifier stopped")
)

// item carries one queued notification plus its dedup fingerprint, which is
// computed once at enqueue time.
type item struct {
	n   kit.Notification
	key string
}

// Service delivers notifications asynchronously through a bounded queue and
// a small worker pool, with rate limiting, retry and time-window dedup.
// Safe for concurrent use.
type Service struct {
	mu sync.Mutex

	log     logx.Logger
	adapter kit.Adapter
	bus     eventbus.Bus

	cfg     Config
	limiter *rate.Limiter

	accepting bool
	enqueueWG sync.WaitGroup

	queue    chan item
	sup      *rtsup.Supervisor
	stopDone chan struct{} // non-nil while a Stop is in progress

	// dedup fingerprint -> suppress until
	seenMu sync.Mutex
	seen   map[string]time.Time
}

func New(cfg Config, adapter kit.Adapter, log logx.Logger, bus eventbus.Bus) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	s := &Service{
		adapter: adapter,
		log:     log,
		bus:     bus,
		seen:    map[string]time.Time{},
	}
	s.setConfigLocked(cfg)
	return s
}

// Supervisor exposes the worker-pool supervisor, nil while stopped.
func (s *Service) Supervisor() *rtsup.Supervisor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sup
}

func (s *Service) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.Enabled
}

func (s *Service) Apply(cfg Config) {
	s.mu.Lock()
	s.setConfigLocked(cfg)
	s.mu.Unlock()
}

func (s *Service) setConfigLocked(cfg Config) {
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 512
	}
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = 3
	}
	if cfg.RetryMax < 0 {
		cfg.RetryMax = 0
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = 500 * time.Millisecond
	}
	if cfg.RetryMaxDelay <= 0 {
		cfg.RetryMaxDelay = 10 * time.Second
	}
	if cfg.DedupWindow < 0 {
		cfg.DedupWindow = 0
	}
	if cfg.DedupMaxEntries <= 0 {
		cfg.DedupMaxEntries = 2000
	}

	s.cfg = cfg
	// burst == rate so short spikes drain without stalling workers
	s.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.RatePerSec)
}

// Start is idempotent. A Start racing a Stop waits for the stop to finish
// first so the queue and pool are rebuilt from scratch.
func (s *Service) Start(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}

	s.mu.Lock()
	if s.stopDone != nil {
		done := s.stopDone
		s.mu.Unlock()
		select {
		case <-done:
		case <-ctx.Done():
			return
		}
		s.mu.Lock()
	}
	if s.queue != nil || !s.cfg.Enabled {
		s.mu.Unlock()
		return
	}

	s.queue = make(chan item, s.cfg.QueueSize)
	s.accepting = true
	workers := s.cfg.Workers

	// Delivery is best-effort; a dying worker restarts rather than taking
	// the whole process down.
	s.sup = rtsup.NewSupervisor(ctx,
		rtsup.WithLogger(s.log.With(logx.String("comp", "notifier"))),
		rtsup.WithCancelOnError(false),
	)
	sup := s.sup
	q := s.queue
	s.mu.Unlock()

	for i := 0; i < workers; i++ {
		name := fmt.Sprintf("worker.%d", i)
		sup.GoRestart(name, func(c context.Context) error {
			s.drain(c, q)
			// A clean return normally means the queue was closed on shutdown.
			s.mu.Lock()
			stopping := s.stopDone != nil
			s.mu.Unlock()
			if stopping {
				return context.Canceled
			}
			if c.Err() != nil {
				return c.Err()
			}
			return errors.New("notifier worker exited unexpectedly")
		}, rtsup.WithPublishFirstError(true))
	}
}

// Stop closes intake and drains queued work until ctx expires, at which
// point remaining work is abandoned.
func (s *Service) Stop(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}

	s.mu.Lock()
	q := s.queue
	sup := s.sup
	if q == nil {
		s.mu.Unlock()
		return
	}
	if s.stopDone != nil {
		done := s.stopDone
		s.mu.Unlock()
		select {
		case <-done:
		case <-ctx.Done():
		}
		return
	}

	done := make(chan struct{})
	s.stopDone = done
	s.accepting = false
	s.mu.Unlock()

	// The teardown runs detached so a caller hitting its deadline does not
	// leave the service in a half-stopped state.
	go func() {
		defer close(done)
		s.enqueueWG.Wait() // in-flight Notify calls finish before the close
		func() {
			defer func() { _ = recover() }()
			close(q)
		}()
		if sup != nil {
			_ = sup.Wait(context.Background())
		}

		s.mu.Lock()
		s.queue = nil
		s.stopDone = nil
		s.sup = nil
		s.mu.Unlock()
	}()

	select {
	case <-done:
	case <-ctx.Done():
		if sup != nil {
			sup.Cancel()
		}
	}
}

// Notify enqueues n for async delivery. It never blocks on a full queue;
// the caller gets ErrQueueFull instead.
func (s *Service) Notify(ctx context.Context, n kit.Notification) error {
	if ctx != nil {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}

	s.mu.Lock()
	if !s.cfg.Enabled {
		s.mu.Unlock()
		return ErrDisabled
	}
	if !s.accepting || s.queue == nil {
		s.mu.Unlock()
		return ErrStopped
	}
	q := s.queue
	window := s.cfg.DedupWindow
	maxSeen := s.cfg.DedupMaxEntries
	s.enqueueWG.Add(1)
	s.mu.Unlock()
	defer s.enqueueWG.Done()

	key := fingerprint(n)
	if window > 0 && key != "" && !s.dedupPass(key, window, maxSeen) {
		s.publish("notifier.deduped", n, key, "")
		return nil
	}

	s.publish("notifier.queued", n, key, "")

	select {
	case q <- item{n: n, key: key}:
		return nil
	default:
		s.publish("notifier.dropped", n, key, ErrQueueFull.Error())
		return ErrQueueFull
	}
}

func (s *Service) publish(typ string, n kit.Notification, key, errStr string) {
	if s.bus == nil {
		return
	}
	now := time.Now()
	s.bus.Publish(eventbus.Event{Type: typ, Time: now, Data: NotificationEvent{
		Channel:  n.Channel,
		ChatID:   n.Target.ChatID,
		ThreadID: n.Target.ThreadID,
		Key:      key,
		At:       now,
		Error:    errStr,
	}})
}

func (s *Service) drain(ctx context.Context, q <-chan item) {
	if ctx == nil {
		ctx = context.Background()
	}
	if q == nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case it, ok := <-q:
			if !ok {
				return
			}
			s.deliver(ctx, it)
		}
	}
}

func (s *Service) deliver(ctx context.Context, it item) {
	s.mu.Lock()
	cfg := s.cfg
	lim := s.limiter
	ad := s.adapter
	log := s.log
	s.mu.Unlock()

	if ad == nil || it.n.Text == "" {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	attempts := 1 + cfg.RetryMax

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if lim != nil {
			if err := lim.Wait(ctx); err != nil {
				return
			}
		}

		// Bound each send so a stuck API call cannot hold a worker forever.
		callCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		_, err := ad.SendText(callCtx, it.n.Target, it.n.Text, it.n.Options)
		cancel()
		if err == nil {
			s.publish("notifier.sent", it.n, it.key, "")
			return
		}
		lastErr = err
		log.Debug("notify send failed", logx.Any("err", err), logx.Int("attempt", attempt), logx.Int("max", attempts))

		if attempt >= attempts {
			break
		}
		if !sleepCtx(ctx, backoffDelay(cfg, attempt)) {
			return
		}
	}

	if lastErr != nil {
		s.publish("notifier.failed", it.n, it.key, lastErr.Error())
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// fingerprint hashes channel, target and text into the dedup key. Entries
// without a channel are never deduped.
func fingerprint(n kit.Notification) string {
	if n.Channel == "" {
		return ""
	}
	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%d:%d:%d|", n.Channel, n.Target.ChatID, n.Target.ThreadID, n.Priority)
	_, _ = h.Write([]byte(n.Text))
	return fmt.Sprintf("%x", h.Sum64())
}

// dedupPass reports whether key may be sent now, and if so opens a new
// suppression window for it. Expired entries are pruned on the way.
func (s *Service) dedupPass(key string, window time.Duration, maxEntries int) bool {
	now := time.Now()

	s.seenMu.Lock()
	defer s.seenMu.Unlock()
	if s.seen == nil {
		s.seen = map[string]time.Time{}
	}
	if until, ok := s.seen[key]; ok && now.Before(until) {
		return false
	}
	s.seen[key] = now.Add(window)

	for k, until := range s.seen {
		if !now.Before(until) {
			delete(s.seen, k)
		}
	}
	// Over the cap, evict whichever entries expire soonest.
	for maxEntries > 0 && len(s.seen) > maxEntries {
		var (
			oldKey string
			oldT   time.Time
		)
		for k, t := range s.seen {
			if oldKey == "" || t.Before(oldT) {
				oldKey, oldT = k, t
			}
		}
		if oldKey == "" {
			break
		}
		delete(s.seen, oldKey)
	}
	return true
}

// backoffDelay computes the jittered exponential delay before the attempt
// following attempt.
func backoffDelay(cfg Config, attempt int) time.Duration {
	d := cfg.RetryBase
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= cfg.RetryMaxDelay {
			d = cfg.RetryMaxDelay
			break
		}
	}
	d = time.Duration(float64(d) * (0.7 + rand.Float64()*0.6))
	if d < 0 {
		return 0
	}
	if d > cfg.RetryMaxDelay {
		d = cfg.RetryMaxDelay
	}
	return d
}
