package notifier

import "time"

// Config tunes the outbound notification pipeline. Zero values are replaced
// with defaults when applied, so an empty Config with Enabled=true is valid.
type Config struct {
	Enabled         bool
	Workers         int
	QueueSize       int
	RatePerSec      int
	RetryMax        int
	RetryBase       time.Duration
	RetryMaxDelay   time.Duration
	DedupWindow     time.Duration
	DedupMaxEntries int
}

// NotificationEvent is the bus payload for notifier lifecycle events
// (queued, sent, deduped, dropped, failed). Subscribers may log or
// serialize it, so keep fields flat and small.
type NotificationEvent struct {
	Channel  string    `json:"channel"`
	ChatID   int64     `json:"chat_id"`
	ThreadID int       `json:"thread_id,omitempty"`
	Key      string    `json:"key"`
	At       time.Time `json:"at"`
	Error    string    `json:"error,omitempty"`
}
