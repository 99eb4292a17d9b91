package status

import (
	"fmt"
	"strings"
	"time"

	core "timezonebot/internal/plugin"
)

type supLine struct {
	name string
	c    core.SupervisorCounters
}

type statusView struct {
	uptime     time.Duration
	goroutines int
	heapAlloc  uint64
	sys        uint64
	numGC      uint32

	sched   core.SchedulerSnapshot
	schedOK bool

	sups []supLine
}

const nextFmt = "15:04:05 Jan 2"

// renderStatus renders the digest as plain text; the caller decides how to
// wrap it for the transport.
func renderStatus(v statusView) string {
	var b strings.Builder
	b.Grow(1024)

	fmt.Fprintf(&b, "uptime:     %s\n", durRel(v.uptime))
	fmt.Fprintf(&b, "goroutines: %d\n", v.goroutines)
	fmt.Fprintf(&b, "mem:        heap=%s sys=%s gc=%d\n", fmtBytes(v.heapAlloc), fmtBytes(v.sys), v.numGC)
	b.WriteString("\n")

	if !v.schedOK {
		b.WriteString("scheduler: n/a\n")
	} else {
		state := "disabled"
		if v.sched.Enabled {
			state = "enabled"
		}
		fmt.Fprintf(&b, "scheduler: %s tz=%s workers=%d queue=%d/%d\n",
			state, v.sched.Timezone, v.sched.Workers, v.sched.QueueLen, v.sched.QueueCap)
		if len(v.sched.Schedules) == 0 {
			b.WriteString("  (no schedules)\n")
		}
		for _, sc := range v.sched.Schedules {
			line := fmt.Sprintf("  - %s  %s", sc.Name, sc.Spec)
			if !sc.Next.IsZero() {
				line += "  next " + sc.Next.Format(nextFmt)
			}
			b.WriteString(line + "\n")
		}
	}
	b.WriteString("\n")

	b.WriteString("supervisors\n")
	if len(v.sups) == 0 {
		b.WriteString("  n/a\n")
	}
	for _, s := range v.sups {
		fmt.Fprintf(&b, "  %s: active=%d started=%d\n", s.name, s.c.Active, s.c.Started)
	}

	return strings.TrimRight(b.String(), "\n")
}

func durRel(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}

func fmtBytes(n uint64) string {
	const (
		kb = 1024
		mb = 1024 * kb
		gb = 1024 * mb
	)
	switch {
	case n >= gb:
		return fmt.Sprintf("%.1fGB", float64(n)/gb)
	case n >= mb:
		return fmt.Sprintf("%.1fMB", float64(n)/mb)
	case n >= kb:
		return fmt.Sprintf("%.1fKB", float64(n)/kb)
	default:
		return fmt.Sprintf("%dB", n)
	}
}
