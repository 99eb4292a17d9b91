package scheduler

import (
	"hash/fnv"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
)

// Interval schedules added together (startup, config reload) would otherwise
// all fire on the same tick. Each gets a one-off random delay before its
// first run, capped so short intervals aren't pushed out noticeably.
const maxStartupSpread = 30 * time.Second

// delayedFirstRun overrides only the first trigger time, then hands over to
// the wrapped schedule.
type delayedFirstRun struct {
	base  cron.Schedule
	first time.Time
}

func (s *delayedFirstRun) Next(t time.Time) time.Time {
	if !s.first.IsZero() && t.Before(s.first) {
		return s.first
	}
	return s.base.Next(t)
}

var spreadSeq uint64

func spreadInterval(every time.Duration, now time.Time, tag string) (cron.Schedule, time.Duration) {
	base := cron.Every(every)
	limit := every
	if limit > maxStartupSpread {
		limit = maxStartupSpread
	}
	if limit <= 0 {
		return base, 0
	}

	// Seed mixes a counter and the schedule name so two schedules created in
	// the same nanosecond still spread apart.
	seed := time.Now().UnixNano() ^ int64(atomic.AddUint64(&spreadSeq, 1)) ^ int64(nameHash(tag))
	jitter := time.Duration(rand.New(rand.NewSource(seed)).Int63n(int64(limit)))
	return &delayedFirstRun{base: base, first: now.Add(every + jitter)}, jitter
}

func nameHash(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}
