package tz

import (
	"fmt"
	"strings"
	"time"
)

// Registry indexes the IANA timezone database plus the curated abbreviation
// and place tables. It is loaded once at startup and read-only afterwards,
// so it is safe for concurrent use without locking.
//
// Construct it explicitly and inject it; resolution and conversion stay pure
// and testable that way.
type Registry struct {
	zones  map[ZoneID]*Zone
	byName map[string]ZoneID   // lowercase IANA id -> canonical
	abbrev map[string][]ZoneID // uppercase token -> ranked candidates
	places map[string][]ZoneID // lowercase place -> ranked candidates
}

// NewRegistry loads every curated zone from the platform timezone database
// and builds the lookup indexes. A load failure is fatal for the process:
// it means the tz database is missing or malformed, which no per-request
// handling can recover from.
func NewRegistry() (*Registry, error) {
	r := &Registry{
		zones:  make(map[ZoneID]*Zone, len(zoneTable)),
		byName: make(map[string]ZoneID, len(zoneTable)),
		abbrev: make(map[string][]ZoneID, len(abbrevTable)),
		places: make(map[string][]ZoneID),
	}

	for _, e := range zoneTable {
		loc, err := time.LoadLocation(string(e.id))
		if err != nil {
			return nil, fmt.Errorf("tz registry init: load %q: %w", e.id, err)
		}
		if _, dup := r.zones[e.id]; dup {
			return nil, fmt.Errorf("tz registry init: duplicate zone %q", e.id)
		}
		r.zones[e.id] = &Zone{ID: e.id, Country: e.country, loc: loc}
		r.byName[strings.ToLower(string(e.id))] = e.id

		// Index the city component ("new york" -> America/New_York).
		city := strings.ToLower(e.id.City())
		r.places[city] = appendZone(r.places[city], e.id)
	}

	for token, cands := range abbrevTable {
		var out []ZoneID
		for _, id := range cands {
			if _, ok := r.zones[id]; !ok {
				return nil, fmt.Errorf("tz registry init: abbreviation %s references unknown zone %q", token, id)
			}
			out = appendZone(out, id)
		}
		if len(out) == 0 {
			return nil, fmt.Errorf("tz registry init: abbreviation %s has no candidates", token)
		}
		r.abbrev[token] = out
	}

	for place, cands := range placeAliases {
		for _, id := range cands {
			if _, ok := r.zones[id]; !ok {
				return nil, fmt.Errorf("tz registry init: place %q references unknown zone %q", place, id)
			}
			r.places[place] = appendZone(r.places[place], id)
		}
	}

	return r, nil
}

// appendZone appends id if not already present, preserving rank order.
func appendZone(s []ZoneID, id ZoneID) []ZoneID {
	for _, have := range s {
		if have == id {
			return s
		}
	}
	return append(s, id)
}

// LookupID returns the zone for a canonical (or differently-cased) IANA id.
func (r *Registry) LookupID(id ZoneID) (*Zone, error) {
	if z, ok := r.zones[id]; ok {
		return z, nil
	}
	if canon, ok := r.byName[strings.ToLower(string(id))]; ok {
		return r.zones[canon], nil
	}
	return nil, fmt.Errorf("%w: %s", ErrZoneNotFound, id)
}

// AbbreviationCandidates returns the ranked candidates for an abbreviation
// token ("cst", "EST", ...). Empty if unknown.
func (r *Registry) AbbreviationCandidates(token string) []ZoneID {
	cands := r.abbrev[strings.ToUpper(strings.TrimSpace(token))]
	return append([]ZoneID(nil), cands...)
}

// PlaceCandidates returns the ranked candidates for a place name
// ("tokyo", "new york", "new_york"). Empty if unknown.
func (r *Registry) PlaceCandidates(token string) []ZoneID {
	key := strings.ToLower(strings.TrimSpace(token))
	key = strings.ReplaceAll(key, "_", " ")
	cands := r.places[key]
	return append([]ZoneID(nil), cands...)
}

// KnownToken reports whether token would resolve to at least one candidate
// as an IANA id, abbreviation, or place name. The extractor uses this to
// decide whether trailing words belong to a time expression.
func (r *Registry) KnownToken(token string) bool {
	token = strings.TrimSpace(token)
	if token == "" {
		return false
	}
	if _, ok := r.byName[strings.ToLower(token)]; ok {
		return true
	}
	if len(r.abbrev[strings.ToUpper(token)]) > 0 {
		return true
	}
	return len(r.PlaceCandidates(token)) > 0
}

// Candidates resolves a raw token of any shape to ranked candidates:
// exact IANA id first, then abbreviation, then place name.
func (r *Registry) Candidates(token string) []ZoneID {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	if canon, ok := r.byName[strings.ToLower(token)]; ok {
		return []ZoneID{canon}
	}
	if cands := r.AbbreviationCandidates(token); len(cands) > 0 {
		return cands
	}
	return r.PlaceCandidates(token)
}

// Zones returns all registry zones in table (rank) order.
func (r *Registry) Zones() []*Zone {
	out := make([]*Zone, 0, len(zoneTable))
	for _, e := range zoneTable {
		out = append(out, r.zones[e.id])
	}
	return out
}
