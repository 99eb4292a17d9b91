package status

import (
	"strings"
	"testing"
	"time"

	core "timezonebot/internal/plugin"
	"timezonebot/internal/task/scheduler"
)

func TestRenderStatusFull(t *testing.T) {
	t.Parallel()

	next := time.Date(2026, 8, 26, 9, 0, 0, 0, time.UTC)
	v := statusView{
		uptime:     2*time.Hour + 3*time.Minute,
		goroutines: 12,
		heapAlloc:  3 * 1024 * 1024,
		sys:        64 * 1024 * 1024,
		numGC:      7,
		schedOK:    true,
		sched: core.SchedulerSnapshot{
			Enabled:  true,
			Timezone: "UTC",
			Workers:  2,
			QueueLen: 1,
			QueueCap: 64,
			Schedules: []scheduler.ScheduleInfo{
				{Name: "timezone:timemsg-refresh", Spec: "@every 1m0s", Next: next},
				{Name: "status:report", Spec: "0 9 * * *"},
			},
		},
		sups: []supLine{
			{name: "app", c: core.SupervisorCounters{Active: 3, Started: 5}},
			{name: "telegram.router", c: core.SupervisorCounters{Active: 4, Started: 4}},
		},
	}

	got := renderStatus(v)
	for _, want := range []string{
		"uptime:     2h3m",
		"goroutines: 12",
		"heap=3.0MB sys=64.0MB gc=7",
		"scheduler: enabled tz=UTC workers=2 queue=1/64",
		"- timezone:timemsg-refresh  @every 1m0s  next 09:00:00 Aug 26",
		"- status:report  0 9 * * *",
		"app: active=3 started=5",
		"telegram.router: active=4 started=4",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("renderStatus output missing %q:\n%s", want, got)
		}
	}
	// No next-run suffix when the schedule never fired.
	if strings.Contains(got, "0 9 * * *  next") {
		t.Fatalf("unexpected next-run on unscheduled entry:\n%s", got)
	}
}

func TestRenderStatusDegraded(t *testing.T) {
	t.Parallel()

	got := renderStatus(statusView{uptime: 30 * time.Second, goroutines: 4})
	for _, want := range []string{"uptime:     30s", "scheduler: n/a", "supervisors\n  n/a"} {
		if !strings.Contains(got, want) {
			t.Fatalf("renderStatus output missing %q:\n%s", want, got)
		}
	}
}

func TestParseConfig(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		raw     string
		want    runtimeConfig
		wantErr bool
	}{
		{name: "empty", raw: ""},
		{name: "disabled", raw: `{}`},
		{name: "cron report", raw: `{"report":"0 9 * * *","report_chat_id":-100200}`,
			want: runtimeConfig{report: "0 9 * * *", chatID: -100200}},
		{name: "interval report", raw: `{"report":"6h","report_chat_id":42}`,
			want: runtimeConfig{report: "6h", chatID: 42}},
		{name: "report without chat", raw: `{"report":"@daily"}`, wantErr: true},
		{name: "bad json", raw: `{`, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := parseConfig([]byte(tt.raw))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseConfig(%q): expected error", tt.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseConfig(%q) error: %v", tt.raw, err)
			}
			if got != tt.want {
				t.Fatalf("parseConfig(%q) = %+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}
}
