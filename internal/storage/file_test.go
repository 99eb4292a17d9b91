package storage

import (
	"context"
	"path/filepath"
	"testing"

	logx "timezonebot/pkg/logx"
)

func openTestStore(t *testing.T) Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state.json")
	st, err := Open(Config{Driver: "file", Path: path}, logx.Nop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestFileStoreHomeZones(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := openTestStore(t)

	if _, ok, err := st.GetHomeZone(ctx, 10, 1); err != nil || ok {
		t.Fatalf("empty get: ok=%v err=%v", ok, err)
	}

	if err := st.PutHomeZone(ctx, HomeZone{ChatID: 10, UserID: 1, Username: "ana", Zone: "Europe/Madrid"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := st.PutHomeZone(ctx, HomeZone{ChatID: 10, UserID: 2, Zone: "Asia/Tokyo"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := st.PutHomeZone(ctx, HomeZone{ChatID: 99, UserID: 1, Zone: "UTC"}); err != nil {
		t.Fatalf("put: %v", err)
	}

	hz, ok, err := st.GetHomeZone(ctx, 10, 1)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if hz.Zone != "Europe/Madrid" || hz.Username != "ana" {
		t.Fatalf("get: %+v", hz)
	}
	if hz.UpdatedAt.IsZero() {
		t.Fatal("UpdatedAt not stamped")
	}

	// Overwrite replaces the zone.
	if err := st.PutHomeZone(ctx, HomeZone{ChatID: 10, UserID: 1, Zone: "Europe/Lisbon"}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	hz, _, _ = st.GetHomeZone(ctx, 10, 1)
	if hz.Zone != "Europe/Lisbon" {
		t.Fatalf("overwrite: got %q", hz.Zone)
	}

	// List stays scoped to the chat.
	got, err := st.ListHomeZones(ctx, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("list: want 2 entries, got %d", len(got))
	}
	if got[0].UserID != 1 || got[1].UserID != 2 {
		t.Fatalf("list order: %+v", got)
	}

	if err := st.DeleteHomeZone(ctx, 10, 1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := st.GetHomeZone(ctx, 10, 1); ok {
		t.Fatal("still present after delete")
	}
	// Deleting a missing row is a no-op.
	if err := st.DeleteHomeZone(ctx, 10, 1); err != nil {
		t.Fatalf("double delete: %v", err)
	}
}

func TestFileStoreZoneHints(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := openTestStore(t)

	if _, ok, err := st.GetZoneHint(ctx, 1, 2); err != nil || ok {
		t.Fatalf("empty hint: ok=%v err=%v", ok, err)
	}
	if err := st.PutZoneHint(ctx, 1, 2, "America/Chicago"); err != nil {
		t.Fatalf("put hint: %v", err)
	}
	// Blank hints are ignored, not stored.
	if err := st.PutZoneHint(ctx, 1, 2, "  "); err != nil {
		t.Fatalf("blank hint: %v", err)
	}
	zone, ok, err := st.GetZoneHint(ctx, 1, 2)
	if err != nil || !ok || zone != "America/Chicago" {
		t.Fatalf("get hint: %q ok=%v err=%v", zone, ok, err)
	}
}

func TestFileStoreTimeMessages(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := openTestStore(t)

	if err := st.PutTimeMessage(ctx, TimeMessageRef{ChatID: 5, ThreadID: 3, MessageID: 42}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := st.PutTimeMessage(ctx, TimeMessageRef{ChatID: 7, MessageID: 9}); err != nil {
		t.Fatalf("put: %v", err)
	}

	ref, ok, err := st.GetTimeMessage(ctx, 5)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if ref.ThreadID != 3 || ref.MessageID != 42 {
		t.Fatalf("get: %+v", ref)
	}

	all, err := st.ListTimeMessages(ctx)
	if err != nil || len(all) != 2 {
		t.Fatalf("list: n=%d err=%v", len(all), err)
	}
	if all[0].ChatID != 5 || all[1].ChatID != 7 {
		t.Fatalf("list order: %+v", all)
	}

	if err := st.DeleteTimeMessage(ctx, 5); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := st.GetTimeMessage(ctx, 5); ok {
		t.Fatal("still present after delete")
	}
}

func TestFileStoreReload(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.json")

	st, err := Open(Config{Driver: "file", Path: path}, logx.Nop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := st.PutHomeZone(ctx, HomeZone{ChatID: 1, UserID: 2, Zone: "Asia/Kolkata"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := st.PutTimeMessage(ctx, TimeMessageRef{ChatID: 1, MessageID: 77}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	st2, err := Open(Config{Driver: "file", Path: path}, logx.Nop())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer st2.Close()

	hz, ok, err := st2.GetHomeZone(ctx, 1, 2)
	if err != nil || !ok || hz.Zone != "Asia/Kolkata" {
		t.Fatalf("reload home zone: %+v ok=%v err=%v", hz, ok, err)
	}
	ref, ok, err := st2.GetTimeMessage(ctx, 1)
	if err != nil || !ok || ref.MessageID != 77 {
		t.Fatalf("reload time message: %+v ok=%v err=%v", ref, ok, err)
	}
}

func TestOpenDisabled(t *testing.T) {
	t.Parallel()
	for _, driver := range []string{"", "none", "  none "} {
		st, err := Open(Config{Driver: driver}, logx.Nop())
		if err != nil || st != nil {
			t.Fatalf("driver %q: st=%v err=%v", driver, st, err)
		}
	}
	if _, err := Open(Config{Driver: "bolt"}, logx.Nop()); err == nil {
		t.Fatal("unknown driver accepted")
	}
}
