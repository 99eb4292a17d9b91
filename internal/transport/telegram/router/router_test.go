package router

import (
	"reflect"
	"testing"
)

func TestSplitRouteAndTrie(t *testing.T) {
	t.Parallel()

	root := newRoot()
	root.add(splitRoute("tz set"), Command{Route: "tz set"})
	root.add(splitRoute("tz current"), Command{Route: "tz current"})
	root.add(splitRoute("time"), Command{Route: "time"})

	tz, ok := root.child("tz")
	if !ok || tz == nil {
		t.Fatalf("expected tz group node")
	}
	if tz.cmd != nil {
		t.Fatalf("tz should be a container, not a leaf")
	}
	set, ok := tz.child("set")
	if !ok || set.cmd == nil || set.cmd.Route != "tz set" {
		t.Fatalf("tz set leaf not found: %+v", set)
	}
	if n := root.find([]string{"tz", "current"}); n == nil || n.cmd == nil {
		t.Fatalf("find tz current failed")
	}
	if got := tz.childNames(); !reflect.DeepEqual(got, []string{"current", "set"}) {
		t.Fatalf("childNames = %v", got)
	}
}

func TestTokenizeCommandLine(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want []string
	}{
		{"/tz set Asia/Tokyo", []string{"/tz", "set", "Asia/Tokyo"}},
		{`/timein "New York" 5pm`, []string{"/timein", "New York", "5pm"}},
		{"  /time  ", []string{"/time"}},
		{"", nil},
		{`/when 'tomorrow 9am'`, []string{"/when", "tomorrow 9am"}},
	}
	for _, tc := range cases {
		got := tokenizeCommandLine(tc.in)
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("tokenize(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestParseFlags(t *testing.T) {
	t.Parallel()

	pos, flags, bools := parseFlags([]string{"Asia/Tokyo", "--format", "24h", "-v", "--utc"})
	if !reflect.DeepEqual(pos, []string{"Asia/Tokyo"}) {
		t.Fatalf("pos = %v", pos)
	}
	if flags["format"] != "24h" {
		t.Fatalf("flags = %v", flags)
	}
	if !bools["v"] || !bools["utc"] {
		t.Fatalf("bools = %v", bools)
	}
}

func TestSanitizeTelegramCommand(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"tz set", "tz_set"},
		{"time-msg", "time_msg"},
		{"TimeIn", "timein"},
		{"", ""},
		{"24h", "cmd_24h"},
	}
	for _, tc := range cases {
		if got := sanitizeTelegramCommand(tc.in); got != tc.want {
			t.Errorf("sanitize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTelegramCommandNameFromRoute(t *testing.T) {
	t.Parallel()

	if got, ok := telegramCommandNameFromRoute([]string{"tz", "set"}); !ok || got != "tz_set" {
		t.Fatalf("got %q ok=%v", got, ok)
	}
	if _, ok := telegramCommandNameFromRoute(nil); ok {
		t.Fatalf("empty route should not produce a command")
	}
}
