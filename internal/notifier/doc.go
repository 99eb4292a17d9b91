// Package notifier provides an async delivery pipeline for bot replies.
//
// The timezone plugin never calls the chat adapter directly for fan-out
// replies; it enqueues notifications here so a burst of conversions in a
// busy group stays within the platform's send rate. A notification carries
// a target chat (optionally a thread/topic), text, and send options.
//
// # Transport
//
// The service delegates delivery to a kit.Adapter implementation (the
// Telegram adapter). Throttling, retry, and duplicate suppression stay
// centralized here so plugins don't reimplement them.
package notifier
