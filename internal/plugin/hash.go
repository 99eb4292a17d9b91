package plugin

import (
	"encoding/json"
	"hash/fnv"
)

// canonicalHashJSON fingerprints a raw JSON blob after a decode/encode
// round trip, so key order and whitespace don't change the hash. Invalid
// JSON is hashed as-is.
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

func hashBytes(b []byte) uint64 {
	if len(b) == 0 {
		return 0
	}
	h := fnv.New64a()
	_, _ = h.Write(b)
	return h.Sum64()
}
