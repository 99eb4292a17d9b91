package tz

import (
	"testing"
	"time"
)

func TestComposeVariants(t *testing.T) {
	t.Parallel()

	expr := Expression{Text: "3pm EST", Clock: Clock{15, 0}, ZoneToken: "EST"}

	tests := []struct {
		name string
		res  Resolution
		conv []Conversion
		err  error
		want RecordKind
	}{
		{
			name: "converted",
			res:  Resolution{State: Resolved, Zone: "America/New_York"},
			conv: []Conversion{{Target: "UTC"}},
			want: RecordConverted,
		},
		{
			name: "ambiguous",
			res:  Resolution{State: Ambiguous, Candidates: []ZoneID{"America/Chicago", "Asia/Shanghai"}},
			want: RecordAmbiguous,
		},
		{
			name: "unresolvable",
			res:  Resolution{State: Unresolvable, Reason: "unrecognized timezone"},
			want: RecordUnresolvable,
		},
		{
			name: "invalid local time",
			res:  Resolution{State: Resolved, Zone: "America/New_York"},
			err:  ErrInvalidLocalTime,
			want: RecordInvalidTime,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Compose(expr, tt.res, tt.conv, tt.err)
			if rec.Kind != tt.want {
				t.Fatalf("Kind = %v, want %v", rec.Kind, tt.want)
			}
			switch tt.want {
			case RecordConverted:
				if len(rec.Results) != len(tt.conv) {
					t.Fatalf("Results = %v", rec.Results)
				}
			case RecordAmbiguous:
				if len(rec.Candidates) != len(tt.res.Candidates) {
					t.Fatalf("Candidates = %v", rec.Candidates)
				}
			case RecordInvalidTime:
				if rec.Err == nil {
					t.Fatal("Err not set")
				}
			}
		})
	}
}

// End-to-end: "let's meet at 3pm EST", no home zone, target Europe/London.
func TestPipelineEndToEndConfident(t *testing.T) {
	t.Parallel()
	p := NewPipeline(newTestRegistry(t))

	// A January reference date: EST actually in force, London on GMT.
	ref := time.Date(2024, time.January, 10, 12, 0, 0, 0, time.UTC)
	recs := p.Process("let's meet at 3pm EST", ReqContext{}, []ZoneID{"Europe/London"}, ref)

	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1: %+v", len(recs), recs)
	}
	rec := recs[0]
	if rec.Kind != RecordConverted {
		t.Fatalf("Kind = %v (%s), want RecordConverted", rec.Kind, rec.Reason)
	}
	if rec.Source != "America/New_York" {
		t.Fatalf("Source = %s, want America/New_York", rec.Source)
	}
	if len(rec.Results) != 1 || rec.Results[0].Target != "Europe/London" {
		t.Fatalf("Results = %+v", rec.Results)
	}
	// 15:00 EST (UTC-5) = 20:00 GMT.
	local := rec.Results[0].Local
	if local.Hour() != 20 || local.Minute() != 0 {
		t.Fatalf("London local = %02d:%02d, want 20:00", local.Hour(), local.Minute())
	}
	if _, off := local.Zone(); off != 0 {
		t.Fatalf("London offset = %d, want 0 (GMT in January)", off)
	}
}

// End-to-end: "3pm" with no zone token and no home zone.
func TestPipelineEndToEndNoZoneNoHome(t *testing.T) {
	t.Parallel()
	p := NewPipeline(newTestRegistry(t))

	recs := p.Process("3pm", ReqContext{}, []ZoneID{"Europe/London"}, time.Now())
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1", len(recs))
	}
	rec := recs[0]
	if rec.Kind != RecordAmbiguous {
		t.Fatalf("Kind = %v, want RecordAmbiguous", rec.Kind)
	}
	if rec.Reason != ReasonNoZone {
		t.Fatalf("Reason = %q, want %q", rec.Reason, ReasonNoZone)
	}
	if len(rec.Results) != 0 {
		t.Fatalf("Results = %+v, want none", rec.Results)
	}
}

// Sibling expressions are independent: one bad zone does not abort others.
func TestPipelinePartialSuccess(t *testing.T) {
	t.Parallel()
	p := NewPipeline(newTestRegistry(t))

	ref := time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)
	recs := p.Process("9am QXZT or 17:00 UTC, either works", ReqContext{}, []ZoneID{"Asia/Tokyo"}, ref)
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2: %+v", len(recs), recs)
	}
	if recs[0].Kind != RecordUnresolvable {
		t.Fatalf("first record kind = %v, want RecordUnresolvable", recs[0].Kind)
	}
	if recs[1].Kind != RecordConverted {
		t.Fatalf("second record kind = %v, want RecordConverted", recs[1].Kind)
	}
	// 17:00 UTC = 02:00 next day in Tokyo.
	local := recs[1].Results[0].Local
	if local.Hour() != 2 || local.Minute() != 0 {
		t.Fatalf("Tokyo local = %02d:%02d, want 02:00", local.Hour(), local.Minute())
	}
}

func TestPipelineGapSurfacedPerExpression(t *testing.T) {
	t.Parallel()
	p := NewPipeline(newTestRegistry(t))

	recs := p.Process("2024-03-10 02:30 America/New_York", ReqContext{}, []ZoneID{"UTC"}, time.Now())
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1", len(recs))
	}
	if recs[0].Kind != RecordInvalidTime {
		t.Fatalf("Kind = %v, want RecordInvalidTime", recs[0].Kind)
	}
}
