package scheduler

import (
	"context"
	"testing"
	"time"

	logx "timezonebot/pkg/logx"
)

func noopJob(ctx context.Context) error { return nil }

func TestAddScheduleNormalizesFormats(t *testing.T) {
	t.Parallel()
	s := New(Config{Workers: 2, Timezone: "UTC"}, logx.Nop(), nil)

	adds := []struct {
		name string
		raw  string
		spec string // normalized spec expected in the snapshot
	}{
		{name: "digest", raw: "0 9 * * *", spec: "0 9 * * *"},
		{name: "sweep", raw: "45m", spec: "@every 45m0s"},
		{name: "rollover", raw: "01:30", spec: "@every 1h30m0s"},
	}
	for _, a := range adds {
		got, err := s.AddSchedule(a.name, a.raw, time.Second, noopJob)
		if err != nil {
			t.Fatalf("AddSchedule(%q, %q) error: %v", a.name, a.raw, err)
		}
		if got != a.name {
			t.Fatalf("AddSchedule(%q) = %q, want the schedule name back", a.name, got)
		}
	}

	snap := s.Snapshot()
	if snap.Workers != 2 || snap.Timezone != "UTC" {
		t.Fatalf("Snapshot config = workers=%d tz=%s, want 2/UTC", snap.Workers, snap.Timezone)
	}
	specs := map[string]string{}
	for _, sc := range snap.Schedules {
		specs[sc.Name] = sc.Spec
	}
	if len(specs) != len(adds) {
		t.Fatalf("Snapshot has %d schedules, want %d: %v", len(specs), len(adds), specs)
	}
	for _, a := range adds {
		if specs[a.name] != a.spec {
			t.Fatalf("schedule %q spec = %q, want %q", a.name, specs[a.name], a.spec)
		}
	}
}

func TestAddScheduleUpsertsByName(t *testing.T) {
	t.Parallel()
	s := New(Config{}, logx.Nop(), nil)

	if _, err := s.AddSchedule("digest", "10m", time.Second, noopJob); err != nil {
		t.Fatalf("AddSchedule error: %v", err)
	}
	if _, err := s.AddCron("digest", "@hourly", time.Second, noopJob); err != nil {
		t.Fatalf("AddCron (re-register) error: %v", err)
	}
	if _, err := s.AddCron("", "@hourly", time.Second, noopJob); err == nil {
		t.Fatal("AddCron with empty name: expected error")
	}

	snap := s.Snapshot()
	if len(snap.Schedules) != 1 {
		t.Fatalf("Snapshot has %d schedules after upsert, want 1", len(snap.Schedules))
	}
	if got := snap.Schedules[0].Spec; got != "@hourly" {
		t.Fatalf("spec after upsert = %q, want %q", got, "@hourly")
	}
}

func TestAddScheduleRejectsGarbage(t *testing.T) {
	t.Parallel()
	s := New(Config{}, logx.Nop(), nil)
	for _, raw := range []string{"", "not-a-schedule", "-5m", "interval:"} {
		if _, err := s.AddSchedule("bad", raw, time.Second, noopJob); err == nil {
			t.Fatalf("AddSchedule(%q): expected error", raw)
		}
	}
	if n := len(s.Snapshot().Schedules); n != 0 {
		t.Fatalf("rejected schedules leaked into the snapshot: %d", n)
	}
}

func TestRemoveDropsAllDefsWithName(t *testing.T) {
	t.Parallel()
	s := New(Config{}, logx.Nop(), nil)

	if _, err := s.AddSchedule("keep", "5m", time.Second, noopJob); err != nil {
		t.Fatalf("AddSchedule error: %v", err)
	}
	if _, err := s.AddSchedule("drop", "*/5 * * * *", time.Second, noopJob); err != nil {
		t.Fatalf("AddSchedule error: %v", err)
	}

	if !s.Remove("drop") {
		t.Fatal("Remove(drop) = false, want true")
	}
	if s.Remove("drop") {
		t.Fatal("second Remove(drop) = true, want false")
	}

	snap := s.Snapshot()
	if len(snap.Schedules) != 1 || snap.Schedules[0].Name != "keep" {
		t.Fatalf("Snapshot after Remove = %+v, want only %q", snap.Schedules, "keep")
	}
}
