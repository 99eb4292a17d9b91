package tz

import (
	"fmt"
	"sort"
	"time"
)

// Engine converts a naive local date/time in a source zone to an absolute
// instant and renders it in target zones.
//
// DST semantics are explicit:
//   - gap (the local time never happened): ErrInvalidLocalTime, never
//     silently shifted to a nearby valid time;
//   - fold (the local time happened twice): the earlier occurrence is
//     chosen and every result is flagged so callers can surface it.
type Engine struct {
	reg *Registry
}

func NewEngine(reg *Registry) *Engine { return &Engine{reg: reg} }

// Convert computes the absolute instant for (d, c) under the source zone's
// rules and renders it in each target zone using the target's rules at that
// instant. All targets share one instant, so a single response is
// internally consistent across DST boundaries.
//
// A zero d means "today" in the source zone at the reference instant ref --
// the only wall-clock dependency in the engine, kept injectable for tests.
// With no targets, the source zone itself is rendered.
func (e *Engine) Convert(d Date, c Clock, source ZoneID, ref time.Time, targets ...ZoneID) ([]Conversion, error) {
	src, err := e.reg.LookupID(source)
	if err != nil {
		return nil, err
	}
	if d.IsZero() {
		now := ref.In(src.Location())
		d = Date{Year: now.Year(), Month: now.Month(), Day: now.Day()}
	}

	instants := localInstants(d, c, src.Location())
	if len(instants) == 0 {
		return nil, fmt.Errorf("%04d-%02d-%02d %02d:%02d in %s: %w",
			d.Year, d.Month, d.Day, c.Hour, c.Minute, src.ID, ErrInvalidLocalTime)
	}
	fold := len(instants) > 1
	instant := instants[0]

	if len(targets) == 0 {
		targets = []ZoneID{src.ID}
	}
	out := make([]Conversion, 0, len(targets))
	for _, t := range targets {
		z, err := e.reg.LookupID(t)
		if err != nil {
			return nil, err
		}
		out = append(out, Conversion{
			Instant: instant,
			Target:  z.ID,
			Local:   instant.In(z.Location()),
			Fold:    fold,
		})
	}
	return out, nil
}

// localInstants enumerates the absolute instants whose wall clock in loc
// equals the requested local date/time: one normally, two in a fold,
// none in a gap.
//
// It probes the zone offset a day before and after the naive time so both
// sides of any transition contribute a candidate; candidates are verified
// by round-tripping back to the wall clock. This never relies on
// time.Date's normalization choice for nonexistent or ambiguous times.
func localInstants(d Date, c Clock, loc *time.Location) []time.Time {
	guess := time.Date(d.Year, d.Month, d.Day, c.Hour, c.Minute, 0, 0, time.UTC)

	var out []time.Time
	for _, probe := range [...]time.Duration{-24 * time.Hour, 0, 24 * time.Hour} {
		_, off := guess.Add(probe).In(loc).Zone()
		cand := guess.Add(-time.Duration(off) * time.Second)
		lc := cand.In(loc)
		if lc.Year() != d.Year || lc.Month() != d.Month || lc.Day() != d.Day ||
			lc.Hour() != c.Hour || lc.Minute() != c.Minute {
			continue
		}
		dup := false
		for _, have := range out {
			if have.Equal(cand) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, cand)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}
