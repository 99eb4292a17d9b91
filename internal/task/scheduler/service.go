package scheduler

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"timezonebot/internal/eventbus"
	rtsup "timezonebot/internal/runtime/supervisor"
	logx "timezonebot/pkg/logx"
)

const defaultQueueSize = 64

func New(cfg Config, log logx.Logger, bus eventbus.Bus) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Service{
		cfg: cfg,
		log: log,
		bus: bus,
		// SecondOptional allows both 5-field and 6-field (with seconds) cron specs.
		parser:      cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
		lastEnqWarn: map[string]time.Time{},
	}
}

// Enabled reports the current config flag. (Thread-safe; Apply() may run concurrently.)
func (s *Service) Enabled() bool {
	s.mu.Lock()
	en := s.cfg.Enabled
	s.mu.Unlock()
	return en
}

func (s *Service) Apply(cfg Config) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// detect timezone change
	oldTZ := strings.TrimSpace(s.cfg.Timezone)
	newTZ := strings.TrimSpace(cfg.Timezone)
	s.cfg = cfg

	if s.c == nil {
		return
	}
	if oldTZ != newTZ {
		// restart cron with new location and re-register definitions
		s.restartLocked()
	}
}

// Start starts cron triggering and the executor pool.
func (s *Service) Start(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.c != nil {
		return
	}
	cur := s.cfg
	s.log.Debug("start requested", logx.Bool("enabled", cur.Enabled), logx.String("tz", strings.TrimSpace(cur.Timezone)))

	workers := cur.Workers
	if workers <= 0 {
		workers = 2
	}
	s.queue = make(chan task, defaultQueueSize)
	s.sup = rtsup.NewSupervisor(ctx,
		rtsup.WithLogger(s.log.With(logx.String("comp", "scheduler"))),
		rtsup.WithCancelOnError(false),
	)
	q := s.queue
	for i := 0; i < workers; i++ {
		name := fmt.Sprintf("worker.%d", i)
		s.sup.GoRestart0(name, func(c context.Context) {
			s.workerLoop(c, q)
		}, rtsup.WithPublishFirstError(true))
	}

	loc := s.loadLocationLocked()
	s.loc = loc
	s.c = cron.New(cron.WithParser(s.parser), cron.WithLocation(loc))

	// register existing defs (if any)
	for i := range s.defs {
		_ = s.addCronLocked(&s.defs[i])
	}
	s.c.Start()
	s.log.Info("service started", logx.String("tz", loc.String()), logx.Int("schedules", len(s.defs)), logx.Int("workers", workers))
}

// Stop stops cron triggering and the executor pool.
// Schedule definitions remain so they resume on next Start().
func (s *Service) Stop(ctx context.Context) {
	start := time.Now()
	s.log.Info("stop requested")

	s.mu.Lock()
	c := s.c
	sup := s.sup
	s.c = nil
	s.sup = nil
	s.queue = nil
	s.mu.Unlock()

	if c != nil {
		select {
		case <-c.Stop().Done():
		case <-ctx.Done():
			// best-effort
		}
	}
	if sup != nil {
		sup.Cancel()
		_ = sup.Wait(ctx)
	}

	s.log.Info("service stopped", logx.Duration("took", time.Since(start)))
}

func (s *Service) workerLoop(ctx context.Context, q <-chan task) {
	for {
		select {
		case <-ctx.Done():
			return
		case t, ok := <-q:
			if !ok {
				return
			}
			s.runTask(ctx, t)
		}
	}
}

func (s *Service) runTask(ctx context.Context, t task) {
	defer func() {
		if t.running != nil {
			t.running.Store(false)
		}
		if r := recover(); r != nil {
			s.log.Error("scheduled task panicked",
				logx.String("name", t.name), logx.Any("panic", r), logx.String("stack", string(debug.Stack())))
		}
	}()

	runCtx := ctx
	var cancel context.CancelFunc
	if t.timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	started := time.Now()
	err := t.run(runCtx)
	took := time.Since(started)
	if err != nil {
		s.log.Warn("scheduled task failed", logx.String("name", t.name), logx.Duration("took", took), logx.Err(err))
		if s.bus != nil {
			s.bus.Publish(eventbus.Event{Type: "scheduler.task_failed", Data: t.name})
		}
		return
	}
	s.log.Debug("scheduled task done", logx.String("name", t.name), logx.Duration("took", took))
}

// enqueue pushes a triggered task into the executor queue.
// Overlapping triggers of the same schedule are skipped.
func (s *Service) enqueue(t task) {
	if t.running != nil && !t.running.CompareAndSwap(false, true) {
		s.log.Debug("schedule trigger skipped (still running)", logx.String("schedule", t.name))
		return
	}

	s.mu.Lock()
	q := s.queue
	s.mu.Unlock()
	if q == nil {
		if t.running != nil {
			t.running.Store(false)
		}
		return
	}

	select {
	case q <- t:
	default:
		if t.running != nil {
			t.running.Store(false)
		}
		s.reportEnqueueError(t.name, errQueueFull)
	}
}
