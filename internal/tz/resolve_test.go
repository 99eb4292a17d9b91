package tz

import (
	"reflect"
	"testing"
)

func TestResolveNoToken(t *testing.T) {
	t.Parallel()
	r := NewResolver(newTestRegistry(t))

	// Home zone configured: fall back to it.
	res := r.Resolve(Expression{Clock: Clock{15, 0}}, ReqContext{HomeZone: "Asia/Jakarta"})
	if res.State != Resolved || res.Zone != "Asia/Jakarta" {
		t.Fatalf("res = %+v, want resolved home zone", res)
	}

	// No home zone: ambiguous with the canonical reason, zero candidates.
	res = r.Resolve(Expression{Clock: Clock{15, 0}}, ReqContext{})
	if res.State != Ambiguous {
		t.Fatalf("State = %v, want Ambiguous", res.State)
	}
	if res.Reason != ReasonNoZone {
		t.Fatalf("Reason = %q, want %q", res.Reason, ReasonNoZone)
	}
	if len(res.Candidates) != 0 {
		t.Fatalf("Candidates = %v, want none", res.Candidates)
	}
}

func TestResolveExplicitIANA(t *testing.T) {
	t.Parallel()
	r := NewResolver(newTestRegistry(t))

	res := r.Resolve(Expression{ZoneToken: "Europe/London"}, ReqContext{})
	if res.State != Resolved || res.Zone != "Europe/London" {
		t.Fatalf("res = %+v", res)
	}
}

func TestResolveUnknownToken(t *testing.T) {
	t.Parallel()
	r := NewResolver(newTestRegistry(t))

	res := r.Resolve(Expression{ZoneToken: "QXZT"}, ReqContext{})
	if res.State != Unresolvable {
		t.Fatalf("State = %v, want Unresolvable", res.State)
	}
}

func TestResolveAbbreviationTieBreaks(t *testing.T) {
	t.Parallel()
	r := NewResolver(newTestRegistry(t))

	tests := []struct {
		name      string
		token     string
		rctx      ReqContext
		wantState ResolutionState
		wantZone  ZoneID
		minCands  int
	}{
		{
			name:      "EST is confident",
			token:     "EST",
			wantState: Resolved,
			wantZone:  "America/New_York",
		},
		{
			name:      "CST bare stays ambiguous",
			token:     "CST",
			wantState: Ambiguous,
			minCands:  2,
		},
		{
			name:      "CST with Chinese home zone",
			token:     "CST",
			rctx:      ReqContext{HomeZone: "Asia/Shanghai"},
			wantState: Resolved,
			wantZone:  "Asia/Shanghai",
		},
		{
			name:      "CST with US home zone elsewhere",
			token:     "CST",
			rctx:      ReqContext{HomeZone: "America/New_York"},
			wantState: Resolved,
			wantZone:  "America/Chicago",
		},
		{
			name:      "recent hint breaks the tie",
			token:     "IST",
			rctx:      ReqContext{RecentZone: "Asia/Jerusalem"},
			wantState: Resolved,
			wantZone:  "Asia/Jerusalem",
		},
		{
			name:      "home country narrows before hint",
			token:     "IST",
			rctx:      ReqContext{HomeZone: "Asia/Kolkata", RecentZone: "Asia/Jerusalem"},
			wantState: Resolved,
			wantZone:  "Asia/Kolkata",
		},
		{
			name:      "hint outside candidates is ignored",
			token:     "CST",
			rctx:      ReqContext{RecentZone: "Europe/Paris"},
			wantState: Ambiguous,
			minCands:  2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := r.Resolve(Expression{ZoneToken: tt.token}, tt.rctx)
			if res.State != tt.wantState {
				t.Fatalf("State = %v, want %v (%+v)", res.State, tt.wantState, res)
			}
			if tt.wantState == Resolved && res.Zone != tt.wantZone {
				t.Fatalf("Zone = %s, want %s", res.Zone, tt.wantZone)
			}
			if tt.wantState == Ambiguous && len(res.Candidates) < tt.minCands {
				t.Fatalf("Candidates = %v, want >= %d ranked candidates", res.Candidates, tt.minCands)
			}
		})
	}
}

func TestResolveDeterministic(t *testing.T) {
	t.Parallel()
	r := NewResolver(newTestRegistry(t))

	expr := Expression{ZoneToken: "CST"}
	rctx := ReqContext{HomeZone: "Europe/Paris", RecentZone: "America/Havana"}
	a := r.Resolve(expr, rctx)
	b := r.Resolve(expr, rctx)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("resolution not deterministic:\n%+v\n%+v", a, b)
	}
}
