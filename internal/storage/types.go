package storage

import (
	"errors"
	"time"
)

var ErrDisabled = errors.New("storage disabled")

// Config configures storage.
//
// Driver values:
//   - "file": dependency-free file backend (JSON snapshot)
//   - "sqlite": SQLite database file (optional build tag)
//
// If Driver is empty or "none", storage is disabled.
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// HomeZone is a user's registered zone in a chat.
// Zone is an IANA name; validity is checked lazily on read by callers.
type HomeZone struct {
	ChatID    int64
	UserID    int64
	Username  string
	Zone      string
	UpdatedAt time.Time
}

// TimeMessageRef points at the pinned auto-refreshing time message of a chat.
// At most one per chat.
type TimeMessageRef struct {
	ChatID    int64
	ThreadID  int
	MessageID int
	CreatedAt time.Time
}
