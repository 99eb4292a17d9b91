package storage

// Package storage persists the bot's per-chat timezone state.
//
// It currently holds:
//   - Home zones: the IANA zone each user registered in a chat
//   - Zone hints: the zone a user's messages last resolved to
//   - Time message refs: the pinned auto-refreshing time message per chat
