package tz

import (
	"errors"
	"testing"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	reg, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return reg
}

func TestRegistryLookupID(t *testing.T) {
	t.Parallel()
	reg := newTestRegistry(t)

	z, err := reg.LookupID("America/New_York")
	if err != nil {
		t.Fatalf("LookupID: %v", err)
	}
	if z.Country != "US" {
		t.Fatalf("Country = %q, want US", z.Country)
	}
	if z.Location() == nil {
		t.Fatal("Location is nil")
	}

	// Case-insensitive.
	z2, err := reg.LookupID("america/new_york")
	if err != nil {
		t.Fatalf("LookupID lowercase: %v", err)
	}
	if z2.ID != "America/New_York" {
		t.Fatalf("canonical ID = %s", z2.ID)
	}

	_, err = reg.LookupID("Atlantis/Nowhere")
	if !errors.Is(err, ErrZoneNotFound) {
		t.Fatalf("err = %v, want ErrZoneNotFound", err)
	}
}

func TestRegistryAbbreviationCandidates(t *testing.T) {
	t.Parallel()
	reg := newTestRegistry(t)

	tests := []struct {
		token string
		min   int
		first ZoneID
	}{
		{"EST", 1, "America/New_York"},
		{"est", 1, "America/New_York"},
		{"CST", 2, "America/Chicago"},
		{"IST", 2, "Asia/Kolkata"},
		{"JST", 1, "Asia/Tokyo"},
		{"WIB", 1, "Asia/Jakarta"},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			cands := reg.AbbreviationCandidates(tt.token)
			if len(cands) < tt.min {
				t.Fatalf("got %d candidates, want >= %d", len(cands), tt.min)
			}
			if cands[0] != tt.first {
				t.Fatalf("first candidate = %s, want %s", cands[0], tt.first)
			}
		})
	}

	if got := reg.AbbreviationCandidates("XYZZY"); len(got) != 0 {
		t.Fatalf("unknown abbreviation returned %v", got)
	}
}

func TestRegistryPlaceCandidates(t *testing.T) {
	t.Parallel()
	reg := newTestRegistry(t)

	tests := []struct {
		token string
		want  ZoneID
	}{
		{"tokyo", "Asia/Tokyo"},
		{"London", "Europe/London"},
		{"new york", "America/New_York"},
		{"new_york", "America/New_York"},
		{"nyc", "America/New_York"},
		{"buenos aires", "America/Argentina/Buenos_Aires"},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			cands := reg.PlaceCandidates(tt.token)
			if len(cands) == 0 {
				t.Fatalf("no candidates for %q", tt.token)
			}
			if cands[0] != tt.want {
				t.Fatalf("first candidate = %s, want %s", cands[0], tt.want)
			}
		})
	}
}

func TestRegistryKnownToken(t *testing.T) {
	t.Parallel()
	reg := newTestRegistry(t)

	known := []string{"UTC", "pst", "Europe/Paris", "singapore", "new york"}
	for _, tok := range known {
		if !reg.KnownToken(tok) {
			t.Errorf("KnownToken(%q) = false", tok)
		}
	}
	unknown := []string{"", "tomorrow", "XQZV", "Nowhere/City"}
	for _, tok := range unknown {
		if reg.KnownToken(tok) {
			t.Errorf("KnownToken(%q) = true", tok)
		}
	}
}

func TestRegistryCandidatesShapePriority(t *testing.T) {
	t.Parallel()
	reg := newTestRegistry(t)

	// An exact IANA id always yields exactly one candidate.
	if got := reg.Candidates("Asia/Shanghai"); len(got) != 1 || got[0] != "Asia/Shanghai" {
		t.Fatalf("Candidates(Asia/Shanghai) = %v", got)
	}
	// Abbreviation multi-candidate sets are returned intact and deduped.
	cst := reg.Candidates("CST")
	seen := map[ZoneID]bool{}
	for _, id := range cst {
		if seen[id] {
			t.Fatalf("duplicate candidate %s in %v", id, cst)
		}
		seen[id] = true
	}
}
