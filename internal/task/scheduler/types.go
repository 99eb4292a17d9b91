package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"timezonebot/internal/eventbus"
	rtsup "timezonebot/internal/runtime/supervisor"
	logx "timezonebot/pkg/logx"
)

// Config controls the scheduler service.
type Config struct {
	Enabled  bool
	Workers  int    // job executor pool size (default 2)
	Timezone string // IANA TZ for cron triggers, e.g. "Europe/Berlin"
}

type scheduleDef struct {
	id            string
	name          string
	spec          string // cron spec or @every
	timeout       time.Duration
	job           func(ctx context.Context) error
	entryID       cron.EntryID
	startupSpread time.Duration // initial random delay for @every schedules

	// running guards against overlapping executions of the same schedule.
	// Pointer so defs can be copied for snapshots.
	running *atomic.Bool
}

type task struct {
	name    string
	timeout time.Duration
	run     func(ctx context.Context) error
	running *atomic.Bool
}

type Service struct {
	mu sync.Mutex

	log logx.Logger
	cfg Config
	loc *time.Location
	bus eventbus.Bus

	parser cron.Parser
	c      *cron.Cron
	defs   []scheduleDef

	queue chan task
	sup   *rtsup.Supervisor

	// Enqueue error throttling: key is schedule name.
	enqMu       sync.Mutex
	lastEnqWarn map[string]time.Time
}

type ScheduleInfo struct {
	ID      string
	Name    string
	Spec    string
	Timeout time.Duration
	Next    time.Time
	Prev    time.Time
}

type Snapshot struct {
	Enabled   bool
	Timezone  string
	Workers   int
	QueueLen  int
	QueueCap  int
	Schedules []ScheduleInfo
}
