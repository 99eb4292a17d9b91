package tz

import (
	"errors"
	"testing"
	"time"
)

func TestConvertDSTGap(t *testing.T) {
	t.Parallel()
	e := NewEngine(newTestRegistry(t))

	// 2024-03-10 02:30 never happened in America/New_York (spring forward).
	_, err := e.Convert(Date{2024, time.March, 10}, Clock{2, 30}, "America/New_York", time.Now(), "UTC")
	if !errors.Is(err, ErrInvalidLocalTime) {
		t.Fatalf("err = %v, want ErrInvalidLocalTime", err)
	}
}

func TestConvertDSTFold(t *testing.T) {
	t.Parallel()
	e := NewEngine(newTestRegistry(t))

	// 2024-11-03 01:30 happened twice in America/New_York (fall back).
	got, err := e.Convert(Date{2024, time.November, 3}, Clock{1, 30}, "America/New_York", time.Now(), "UTC")
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d conversions, want 1", len(got))
	}
	c := got[0]
	if !c.Fold {
		t.Fatal("fold not flagged")
	}
	// Earlier occurrence = the daylight-time (EDT, UTC-4) one: 05:30 UTC.
	want := time.Date(2024, time.November, 3, 5, 30, 0, 0, time.UTC)
	if !c.Instant.Equal(want) {
		t.Fatalf("Instant = %v, want %v (earlier occurrence)", c.Instant.UTC(), want)
	}
}

func TestConvertCrossDSTRendering(t *testing.T) {
	t.Parallel()
	e := NewEngine(newTestRegistry(t))

	// Late March: US already on daylight time, Europe not yet.
	// 2024-03-25 15:00 EDT (UTC-4) = 19:00 UTC = 20:00 in London (BST, UTC+1).
	got, err := e.Convert(Date{2024, time.March, 25}, Clock{15, 0}, "America/New_York", time.Now(), "Europe/London")
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	local := got[0].Local
	if local.Hour() != 20 || local.Minute() != 0 {
		t.Fatalf("London local = %02d:%02d, want 20:00", local.Hour(), local.Minute())
	}
	_, off := local.Zone()
	if off != 3600 {
		t.Fatalf("London offset = %d, want 3600 (BST)", off)
	}
}

func TestConvertSharedInstantAcrossTargets(t *testing.T) {
	t.Parallel()
	e := NewEngine(newTestRegistry(t))

	got, err := e.Convert(Date{2024, time.June, 1}, Clock{12, 0}, "Asia/Tokyo", time.Now(),
		"UTC", "Europe/Paris", "America/Los_Angeles")
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d conversions, want 3", len(got))
	}
	for _, c := range got[1:] {
		if !c.Instant.Equal(got[0].Instant) {
			t.Fatalf("instants differ across targets: %v vs %v", c.Instant, got[0].Instant)
		}
	}
}

func TestConvertTodayAnchoredToSourceZone(t *testing.T) {
	t.Parallel()
	e := NewEngine(newTestRegistry(t))

	// Reference instant 2024-06-01 02:00 UTC is already June 1 11:00 in
	// Tokyo but still May 31 22:00 in New York; "today 9pm" must anchor to
	// each source zone's own date.
	ref := time.Date(2024, time.June, 1, 2, 0, 0, 0, time.UTC)

	tokyo, err := e.Convert(Date{}, Clock{21, 0}, "Asia/Tokyo", ref, "UTC")
	if err != nil {
		t.Fatalf("Convert tokyo: %v", err)
	}
	if d := tokyo[0].Instant.In(mustLoc(t, "Asia/Tokyo")).Day(); d != 1 {
		t.Fatalf("Tokyo day = %d, want 1", d)
	}

	ny, err := e.Convert(Date{}, Clock{21, 0}, "America/New_York", ref, "UTC")
	if err != nil {
		t.Fatalf("Convert ny: %v", err)
	}
	if d := ny[0].Instant.In(mustLoc(t, "America/New_York")).Day(); d != 31 {
		t.Fatalf("New York day = %d, want 31", d)
	}
}

func mustLoc(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Fatalf("LoadLocation(%s): %v", name, err)
	}
	return loc
}

// Round-trip law: converting A -> B and back B -> A restores the original
// local time, unless the original fell in A's fold (two valid inverses).
func TestConvertRoundTrip(t *testing.T) {
	t.Parallel()
	e := NewEngine(newTestRegistry(t))

	pairs := []struct{ a, b ZoneID }{
		{"America/New_York", "Europe/London"},
		{"Asia/Tokyo", "America/Los_Angeles"},
		{"Australia/Sydney", "Europe/Paris"},
		{"Asia/Kolkata", "America/St_Johns"}, // both half-hour offsets
	}
	samples := []struct {
		d Date
		c Clock
	}{
		{Date{2024, time.January, 15}, Clock{9, 0}},
		{Date{2024, time.April, 2}, Clock{23, 45}},
		{Date{2024, time.July, 31}, Clock{0, 30}},
		{Date{2024, time.October, 20}, Clock{12, 15}},
	}

	for _, p := range pairs {
		for _, s := range samples {
			fwd, err := e.Convert(s.d, s.c, p.a, time.Now(), p.b)
			if err != nil {
				t.Fatalf("%s -> %s %v %v: %v", p.a, p.b, s.d, s.c, err)
			}
			if fwd[0].Fold {
				// Fold inputs have two valid inverses; excluded from the law.
				continue
			}
			bl := fwd[0].Local
			back, err := e.Convert(
				Date{bl.Year(), bl.Month(), bl.Day()},
				Clock{bl.Hour(), bl.Minute()},
				p.b, time.Now(), p.a)
			if err != nil {
				t.Fatalf("return trip %s -> %s: %v", p.b, p.a, err)
			}
			al := back[0].Local
			if al.Year() != s.d.Year || al.Month() != s.d.Month || al.Day() != s.d.Day ||
				al.Hour() != s.c.Hour || al.Minute() != s.c.Minute {
				t.Fatalf("round trip %s <-> %s lost the local time: got %v want %v %v",
					p.a, p.b, al, s.d, s.c)
			}
		}
	}
}

func TestConvertFoldRoundTripHasTwoInverses(t *testing.T) {
	t.Parallel()

	loc := mustLoc(t, "America/New_York")
	instants := localInstants(Date{2024, time.November, 3}, Clock{1, 30}, loc)
	if len(instants) != 2 {
		t.Fatalf("fold enumerated %d instants, want 2", len(instants))
	}
	if !instants[0].Before(instants[1]) {
		t.Fatal("instants not ordered")
	}
	// Both instants render the same wall clock in the source zone.
	for _, in := range instants {
		lc := in.In(loc)
		if lc.Hour() != 1 || lc.Minute() != 30 {
			t.Fatalf("instant %v renders as %02d:%02d", in, lc.Hour(), lc.Minute())
		}
	}
}

func TestConvertNoTargetsRendersSource(t *testing.T) {
	t.Parallel()
	e := NewEngine(newTestRegistry(t))

	got, err := e.Convert(Date{2024, time.June, 1}, Clock{8, 0}, "Europe/Berlin", time.Now())
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if len(got) != 1 || got[0].Target != "Europe/Berlin" {
		t.Fatalf("got %+v, want the source zone rendered", got)
	}
}
