package tz

import (
	"testing"
	"time"
)

func TestExtractForms(t *testing.T) {
	t.Parallel()
	ex := NewExtractor(newTestRegistry(t))

	tests := []struct {
		name  string
		text  string
		clock Clock
		kind  ClockKind
		zone  string
		date  Date
	}{
		{name: "12h bare", text: "let's meet at 3pm", clock: Clock{15, 0}, kind: Clock12},
		{name: "12h minutes", text: "call me 3:30 pm", clock: Clock{15, 30}, kind: Clock12},
		{name: "12h dotted", text: "around 11:05 a.m. works", clock: Clock{11, 5}, kind: Clock12},
		{name: "midnight", text: "12am sharp", clock: Clock{0, 0}, kind: Clock12},
		{name: "noon", text: "12pm sharp", clock: Clock{12, 0}, kind: Clock12},
		{name: "24h", text: "standup at 15:00 tomorrow", clock: Clock{15, 0}, kind: Clock24},
		{name: "24h zone", text: "deploy at 09:30 UTC", clock: Clock{9, 30}, kind: Clock24, zone: "UTC"},
		{name: "compact hrs", text: "briefing 1500hrs", clock: Clock{15, 0}, kind: Clock24Compact},
		{name: "compact zone", text: "briefing 1500 EST", clock: Clock{15, 0}, kind: Clock24Compact, zone: "EST"},
		{name: "abbrev zone", text: "meet at 3pm EST ok?", clock: Clock{15, 0}, kind: Clock12, zone: "EST"},
		{name: "iana zone", text: "3pm America/New_York", clock: Clock{15, 0}, kind: Clock12, zone: "America/New_York"},
		{name: "place zone", text: "3pm tokyo", clock: Clock{15, 0}, kind: Clock12, zone: "tokyo"},
		{name: "two word place", text: "9am new york time", clock: Clock{9, 0}, kind: Clock12, zone: "new york"},
		{name: "unknown abbrev kept", text: "5pm QXZT", clock: Clock{17, 0}, kind: Clock12, zone: "QXZT"},
		{name: "date prefix", text: "on 2024-11-03 01:30 EST", clock: Clock{1, 30}, kind: Clock24, zone: "EST",
			date: Date{2024, time.November, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ex.Extract(tt.text)
			if len(got) != 1 {
				t.Fatalf("Extract(%q) = %d expressions, want 1: %+v", tt.text, len(got), got)
			}
			e := got[0]
			if e.Clock != tt.clock {
				t.Errorf("Clock = %+v, want %+v", e.Clock, tt.clock)
			}
			if e.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", e.Kind, tt.kind)
			}
			if e.ZoneToken != tt.zone {
				t.Errorf("ZoneToken = %q, want %q", e.ZoneToken, tt.zone)
			}
			if e.Date != tt.date {
				t.Errorf("Date = %+v, want %+v", e.Date, tt.date)
			}
		})
	}
}

func TestExtractNeverFailsAndEmpty(t *testing.T) {
	t.Parallel()
	ex := NewExtractor(newTestRegistry(t))

	empties := []string{
		"",
		"hello world",
		"see you tomorrow",
		"the year 2024 was wild",         // bare compact form is not a time
		"order #1234567890",              // digits glued to more digits
		"EST is my favorite abbreviation", // zone with no time
		"meeting at noonish",
		"::::",
	}
	for _, text := range empties {
		if got := ex.Extract(text); len(got) != 0 {
			t.Errorf("Extract(%q) = %+v, want none", text, got)
		}
	}
}

func TestExtractOverlapPolicy(t *testing.T) {
	t.Parallel()
	ex := NewExtractor(newTestRegistry(t))

	// "3:30 pm" overlaps a 24h match "3:30"; the longer 12h span wins.
	got := ex.Extract("ping me 3:30 pm please")
	if len(got) != 1 {
		t.Fatalf("got %d expressions, want 1", len(got))
	}
	if got[0].Kind != Clock12 || got[0].Clock != (Clock{15, 30}) {
		t.Fatalf("longest match policy violated: %+v", got[0])
	}
}

func TestExtractMultipleLeftToRight(t *testing.T) {
	t.Parallel()
	ex := NewExtractor(newTestRegistry(t))

	got := ex.Extract("either 9am PST or 17:00 CET works for me")
	if len(got) != 2 {
		t.Fatalf("got %d expressions, want 2: %+v", len(got), got)
	}
	if got[0].Pos > got[1].Pos {
		t.Fatal("expressions not ordered left-to-right")
	}
	if got[0].ZoneToken != "PST" || got[1].ZoneToken != "CET" {
		t.Fatalf("zone tokens = %q, %q", got[0].ZoneToken, got[1].ZoneToken)
	}
	if got[0].Clock != (Clock{9, 0}) || got[1].Clock != (Clock{17, 0}) {
		t.Fatalf("clocks = %+v, %+v", got[0].Clock, got[1].Clock)
	}
}

func TestExtractBareZoneNotExpression(t *testing.T) {
	t.Parallel()
	ex := NewExtractor(newTestRegistry(t))

	if got := ex.Extract("I live in America/New_York"); len(got) != 0 {
		t.Fatalf("bare zone mention extracted: %+v", got)
	}
}

func TestExtractLowercaseUnknownWordNotZone(t *testing.T) {
	t.Parallel()
	ex := NewExtractor(newTestRegistry(t))

	got := ex.Extract("see you at 3pm tomorrow")
	if len(got) != 1 {
		t.Fatalf("got %d expressions, want 1", len(got))
	}
	if got[0].ZoneToken != "" {
		t.Fatalf("ZoneToken = %q, want empty (tomorrow is not a zone)", got[0].ZoneToken)
	}
}

func TestExtractInvalidDateIgnored(t *testing.T) {
	t.Parallel()
	ex := NewExtractor(newTestRegistry(t))

	got := ex.Extract("2024-02-31 10:00 UTC")
	if len(got) != 1 {
		t.Fatalf("got %d expressions, want 1", len(got))
	}
	if !got[0].Date.IsZero() {
		t.Fatalf("calendar-invalid date attached: %+v", got[0].Date)
	}
}
