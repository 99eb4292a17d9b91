// Package scheduler registers cron/interval schedules and executes their
// jobs on a small supervised worker pool.
//
// The bot uses it for periodic maintenance work, most prominently the pinned
// time-message refresh. Overlapping triggers of the same schedule are
// skipped rather than queued.
package scheduler
