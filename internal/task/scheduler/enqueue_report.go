package scheduler

import (
	"time"

	logx "timezonebot/pkg/logx"
)

const enqueueWarnThrottle = 5 * time.Second

// reportEnqueueError logs queue-full conditions at most once per schedule
// per throttle window; triggers fire repeatedly and can get noisy.
func (s *Service) reportEnqueueError(name string, err error) {
	if err == nil {
		return
	}

	now := time.Now()
	s.enqMu.Lock()
	if s.lastEnqWarn == nil {
		s.lastEnqWarn = make(map[string]time.Time)
	}
	last := s.lastEnqWarn[name]
	if !last.IsZero() && now.Sub(last) < enqueueWarnThrottle {
		s.enqMu.Unlock()
		return
	}
	s.lastEnqWarn[name] = now
	s.enqMu.Unlock()

	if s.log.IsZero() {
		return
	}
	s.log.Warn("schedule failed to enqueue task", logx.String("schedule", name), logx.Any("err", err))
}
