package adapter

import "time"

// Config carries the adapter's runtime settings. The token is required;
// PollTimeout defaults to 10s when zero.
type Config struct {
	Token       string
	PollTimeout time.Duration
}
