package config

import (
	"encoding/json"
	"hash/fnv"
)

// hashBytes is FNV-1a over the raw bytes; empty input hashes to 0 so a
// missing blob and an absent one compare equal.
func hashBytes(b []byte) uint64 {
	if len(b) == 0 {
		return 0
	}
	h := fnv.New64a()
	_, _ = h.Write(b)
	return h.Sum64()
}

// canonicalHashJSON round-trips raw through encoding/json before hashing,
// normalizing key order and whitespace. Non-JSON input is hashed verbatim.
func canonicalHashJSON(raw json.RawMessage) uint64 {
	if len(raw) == 0 {
		return 0
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return hashBytes(raw)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return hashBytes(raw)
	}
	return hashBytes(b)
}
