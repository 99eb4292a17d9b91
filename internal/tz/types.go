package tz

import (
	"strings"
	"time"
)

// ZoneID is a canonical IANA timezone identifier, e.g. "America/New_York".
//
// ZoneIDs are only minted by the Registry; parsing raw text never produces
// one directly.
type ZoneID string

func (z ZoneID) String() string { return string(z) }

// City returns the last path element with underscores expanded,
// e.g. "America/New_York" -> "New York".
func (z ZoneID) City() string {
	s := string(z)
	if i := strings.LastIndexByte(s, '/'); i >= 0 {
		s = s[i+1:]
	}
	return strings.ReplaceAll(s, "_", " ")
}

// Zone is an immutable registry entry for one IANA timezone.
type Zone struct {
	ID      ZoneID
	Country string // ISO 3166-1 alpha-2, "" for UTC/etc
	loc     *time.Location
}

// Location returns the loaded *time.Location for offset/DST rules.
func (z *Zone) Location() *time.Location { return z.loc }

// Date is an optional calendar component of an expression.
// The zero value means "today" (anchored later, in the source zone).
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func (d Date) IsZero() bool { return d.Year == 0 && d.Month == 0 && d.Day == 0 }

// Clock is a normalized time-of-day (24h).
type Clock struct {
	Hour   int
	Minute int
}

// ClockKind records which textual form produced a Clock. The extractor's
// overlap policy prefers 24-hour forms on equal-length matches.
type ClockKind int

const (
	Clock12 ClockKind = iota
	Clock24
	Clock24Compact
)

// Expression is one temporal expression extracted from chat text.
// Immutable once produced; positions are byte offsets into the source text.
type Expression struct {
	Text string // the matched span as typed
	Pos  int
	End  int

	Date      Date // optional; zero means "today"
	Clock     Clock
	Kind      ClockKind
	Meridiem  string // "am", "pm", or "" for 24-hour forms
	ZoneToken string // trailing zone token as typed, "" if none
}

// ReqContext carries the requester-side inputs to resolution.
// Both fields are optional; the persistence collaborator owns them.
type ReqContext struct {
	HomeZone   ZoneID // "" when the user never configured one
	RecentZone ZoneID // last confidently used zone, "" when unknown
}

// ResolutionState tags the outcome of resolving an expression's zone token.
type ResolutionState int

const (
	// Resolved means exactly one zone remained.
	Resolved ResolutionState = iota
	// Ambiguous means multiple ranked candidates remain (or no zone was
	// specified at all and no home zone is configured).
	Ambiguous
	// Unresolvable means the token matched no known abbreviation, place,
	// or identifier.
	Unresolvable
)

// Resolution is ambiguity-as-data: all three outcomes are ordinary values,
// never control flow.
type Resolution struct {
	State      ResolutionState
	Zone       ZoneID   // set when State == Resolved
	Candidates []ZoneID // ranked, set when State == Ambiguous and a token existed
	Reason     string
}

// Conversion is one rendered target for a single absolute instant.
// The instant is shared by every Conversion composed for one expression.
type Conversion struct {
	Instant time.Time // absolute point in time
	Target  ZoneID
	Local   time.Time // Instant in the target zone's rules at that instant
	Fold    bool      // the source local time fell in a DST fold
}
