package timezone

import (
	"testing"

	"timezonebot/internal/storage"
)

func TestFindHomeZone(t *testing.T) {
	t.Parallel()
	zones := []storage.HomeZone{
		{ChatID: 1, UserID: 10, Username: "alice", Zone: "Europe/Berlin"},
		{ChatID: 1, UserID: 20, Username: "Bob", Zone: "America/New_York"},
		{ChatID: 1, UserID: 30, Zone: "Asia/Tokyo"},
	}

	tests := []struct {
		name     string
		userID   int64
		username string
		wantUser int64 // 0 means no match expected
	}{
		{name: "by id", userID: 20, wantUser: 20},
		{name: "id beats username", userID: 10, username: "bob", wantUser: 10},
		{name: "by username case-insensitive", username: "BOB", wantUser: 20},
		{name: "unknown id", userID: 99},
		{name: "unknown username", username: "carol"},
		{name: "empty username does not match missing names", username: ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := findHomeZone(zones, tt.userID, tt.username)
			if tt.wantUser == 0 {
				if got != nil {
					t.Fatalf("findHomeZone = %+v, want nil", got)
				}
				return
			}
			if got == nil {
				t.Fatalf("findHomeZone = nil, want user %d", tt.wantUser)
			}
			if got.UserID != tt.wantUser {
				t.Fatalf("findHomeZone picked user %d, want %d", got.UserID, tt.wantUser)
			}
			// The result must alias the stored entry, not a copy.
			if got != &zones[indexOfUser(zones, tt.wantUser)] {
				t.Fatal("findHomeZone returned a copy instead of the slice element")
			}
		})
	}
}

func indexOfUser(zones []storage.HomeZone, userID int64) int {
	for i := range zones {
		if zones[i].UserID == userID {
			return i
		}
	}
	return -1
}
