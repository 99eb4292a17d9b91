package timezone

import (
	"strings"
	"testing"
	"time"

	"timezonebot/internal/storage"
	"timezonebot/internal/tz"
)

func mustRegistry(t *testing.T) *tz.Registry {
	t.Helper()
	reg, err := tz.NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return reg
}

func TestGroupChatTimes(t *testing.T) {
	t.Parallel()
	reg := mustRegistry(t)

	// Mid-July: Berlin and Paris share CEST, Tokyo differs.
	now := time.Date(2024, 7, 15, 12, 0, 0, 0, time.UTC)
	members := []storage.HomeZone{
		{ChatID: 1, UserID: 10, Username: "alice", Zone: "Europe/Berlin"},
		{ChatID: 1, UserID: 11, Username: "bob", Zone: "Europe/Paris"},
		{ChatID: 1, UserID: 12, Username: "chiyo", Zone: "Asia/Tokyo"},
	}

	groups := groupChatTimes(reg, members, now)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d: %+v", len(groups), groups)
	}

	// Berlin/Paris at 14:00, Tokyo at 21:00; sorted by time of day.
	if got := groups[0].Local.Format("15:04"); got != "14:00" {
		t.Errorf("first group clock = %s, want 14:00", got)
	}
	if len(groups[0].Names) != 2 || groups[0].Names[0] != "alice" || groups[0].Names[1] != "bob" {
		t.Errorf("first group names = %v", groups[0].Names)
	}
	if got := groups[1].Local.Format("15:04"); got != "21:00" {
		t.Errorf("second group clock = %s, want 21:00", got)
	}
}

func TestGroupChatTimesSkipsUnknownZones(t *testing.T) {
	t.Parallel()
	reg := mustRegistry(t)

	now := time.Date(2024, 7, 15, 12, 0, 0, 0, time.UTC)
	members := []storage.HomeZone{
		{ChatID: 1, UserID: 10, Username: "alice", Zone: "Europe/Berlin"},
		{ChatID: 1, UserID: 11, Username: "ghost", Zone: "Not/AZone"},
	}
	groups := groupChatTimes(reg, members, now)
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
}

func TestRenderChatTimesEmpty(t *testing.T) {
	t.Parallel()
	out := renderChatTimes(nil, time.Now())
	if !strings.Contains(out, "/tz set") {
		t.Errorf("empty listing should point at /tz set, got %q", out)
	}
}

func TestRenderRecords(t *testing.T) {
	t.Parallel()

	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Fatal(err)
	}
	instant := time.Date(2024, 7, 15, 19, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		rec  tz.Record
		want []string
	}{
		{
			name: "converted",
			rec: tz.Record{
				Kind:   tz.RecordConverted,
				Expr:   tz.Expression{Text: "3pm EST"},
				Source: "America/New_York",
				Results: []tz.Conversion{
					{Instant: instant, Target: "Europe/Berlin", Local: instant.In(loc)},
				},
			},
			want: []string{"3pm EST", "America/New_York", "21:00", "Berlin"},
		},
		{
			name: "fold note",
			rec: tz.Record{
				Kind:   tz.RecordConverted,
				Expr:   tz.Expression{Text: "01:30"},
				Source: "America/New_York",
				Results: []tz.Conversion{
					{Instant: instant, Target: "UTC", Local: instant, Fold: true},
				},
			},
			want: []string{"DST fold", "earlier occurrence"},
		},
		{
			name: "gap",
			rec: tz.Record{
				Kind: tz.RecordInvalidTime,
				Expr: tz.Expression{Text: "2024-03-10 02:30"},
			},
			want: []string{"does not exist", "DST gap"},
		},
		{
			name: "ambiguous",
			rec: tz.Record{
				Kind:       tz.RecordAmbiguous,
				Expr:       tz.Expression{Text: "3pm CST", ZoneToken: "CST"},
				Candidates: []tz.ZoneID{"America/Chicago", "Asia/Shanghai"},
			},
			want: []string{"ambiguous", "America/Chicago", "Asia/Shanghai"},
		},
		{
			name: "unresolvable",
			rec: tz.Record{
				Kind:   tz.RecordUnresolvable,
				Expr:   tz.Expression{Text: "3pm XYZ"},
				Reason: `unrecognized timezone "XYZ"`,
			},
			want: []string{"unrecognized"},
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			out := renderRecords([]tz.Record{tc.rec})
			for _, w := range tc.want {
				if !strings.Contains(out, w) {
					t.Errorf("output missing %q:\n%s", w, out)
				}
			}
		})
	}
}

func TestRenderRecordsEmpty(t *testing.T) {
	t.Parallel()
	if out := renderRecords(nil); out != "" {
		t.Errorf("expected empty output, got %q", out)
	}
}

func TestParseConfig(t *testing.T) {
	t.Parallel()

	rc, err := parseConfig(nil)
	if err != nil {
		t.Fatal(err)
	}
	if !rc.scanGroups || rc.refresh != defaultRefresh || rc.maxExpr != defaultMaxExpr {
		t.Errorf("defaults wrong: %+v", rc)
	}

	rc, err = parseConfig([]byte(`{"scan_groups": false, "refresh_interval": "2m", "max_expressions": 2}`))
	if err != nil {
		t.Fatal(err)
	}
	if rc.scanGroups || rc.refresh != 2*time.Minute || rc.maxExpr != 2 {
		t.Errorf("parsed config wrong: %+v", rc)
	}

	if _, err := parseConfig([]byte(`{"refresh_interval": "nope"}`)); err == nil {
		t.Error("invalid duration should fail")
	}
	if _, err := parseConfig([]byte(`{"refresh_interval": "1s"}`)); err == nil {
		t.Error("too-short interval should fail")
	}
}
