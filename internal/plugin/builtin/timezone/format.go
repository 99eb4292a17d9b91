package timezone

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"timezonebot/internal/storage"
	"timezonebot/internal/tz"
	"timezonebot/pkg/tgui"
)

const (
	clockFmt = "15:04"
	fullFmt  = "15:04 · Mon, Jan 2"

	// Matched text is echoed back in result cards; cap it so a degenerate
	// expression can't bloat the message.
	maxExprEcho = 48
)

func exprText(rec tz.Record) string {
	return tgui.TruncRunes(rec.Expr.Text, maxExprEcho)
}

// renderRecords turns pipeline output into one Telegram HTML message.
// Returns "" when there is nothing worth saying.
func renderRecords(recs []tz.Record) string {
	var parts []tgui.H
	for _, rec := range recs {
		switch rec.Kind {
		case tz.RecordConverted:
			parts = append(parts, renderConverted(rec))
		case tz.RecordInvalidTime:
			parts = append(parts, tgui.JoinH(" ",
				tgui.Raw("⚠️"),
				tgui.Code(exprText(rec)),
				tgui.Esc("— that local time does not exist (DST gap, clocks skipped over it)"),
			))
		case tz.RecordAmbiguous:
			parts = append(parts, renderAmbiguous(rec))
		case tz.RecordUnresolvable:
			parts = append(parts, tgui.JoinH(" ",
				tgui.Raw("❓"),
				tgui.Code(exprText(rec)),
				tgui.Esc("— "+rec.Reason),
			))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return tgui.JoinH("\n\n", parts...).String()
}

func renderConverted(rec tz.Record) tgui.H {
	lines := []tgui.H{tgui.JoinH(" ",
		tgui.Raw("🕒"),
		tgui.B(exprText(rec)),
		tgui.Esc("in"),
		tgui.Code(rec.Source.String()),
	)}
	for _, c := range rec.Results {
		lines = append(lines, tgui.JoinH(" ",
			tgui.Esc("→"),
			tgui.B(c.Local.Format(fullFmt)),
			tgui.Esc(zoneLabel(c.Target)),
		))
	}
	if len(rec.Results) > 0 && rec.Results[0].Fold {
		lines = append(lines, tgui.I("that local time occurred twice (DST fold); the earlier occurrence is shown"))
	}
	return tgui.JoinH("\n", lines...)
}

func renderAmbiguous(rec tz.Record) tgui.H {
	if len(rec.Candidates) == 0 {
		return tgui.JoinH(" ",
			tgui.Raw("❓"),
			tgui.Code(exprText(rec)),
			tgui.Esc("— "+rec.Reason+". Set yours with /tz set <zone>."),
		)
	}
	names := make([]string, 0, len(rec.Candidates))
	for i, id := range rec.Candidates {
		if i >= 5 {
			names = append(names, "…")
			break
		}
		names = append(names, id.String())
	}
	return tgui.JoinH(" ",
		tgui.Raw("❓"),
		tgui.Code(exprText(rec)),
		tgui.Esc("is ambiguous: "+strings.Join(names, ", ")),
	)
}

func zoneLabel(id tz.ZoneID) string {
	return fmt.Sprintf("%s (%s)", id.City(), id)
}

// chatTimeGroup is one row of the /time listing: everyone sharing the same
// current wall clock.
type chatTimeGroup struct {
	Local time.Time
	Zones []tz.ZoneID
	Names []string
}

// groupChatTimes buckets chat members by identical current wall clock,
// sorted by the actual time of day.
func groupChatTimes(reg *tz.Registry, members []storage.HomeZone, now time.Time) []chatTimeGroup {
	byClock := map[string]*chatTimeGroup{}
	for _, hz := range members {
		z, err := reg.LookupID(tz.ZoneID(hz.Zone))
		if err != nil {
			continue
		}
		local := now.In(z.Location())
		key := local.Format("15:04 -0700")
		g, ok := byClock[key]
		if !ok {
			g = &chatTimeGroup{Local: local}
			byClock[key] = g
		}
		name := hz.Username
		if name == "" {
			name = fmt.Sprintf("user %d", hz.UserID)
		}
		g.Names = append(g.Names, name)
		g.Zones = appendZoneOnce(g.Zones, z.ID)
	}

	out := make([]chatTimeGroup, 0, len(byClock))
	for _, g := range byClock {
		sort.Strings(g.Names)
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		hi, mi := out[i].Local.Hour(), out[i].Local.Minute()
		hj, mj := out[j].Local.Hour(), out[j].Local.Minute()
		if hi != hj {
			return hi < hj
		}
		if mi != mj {
			return mi < mj
		}
		return out[i].Zones[0] < out[j].Zones[0]
	})
	return out
}

func appendZoneOnce(s []tz.ZoneID, id tz.ZoneID) []tz.ZoneID {
	for _, have := range s {
		if have == id {
			return s
		}
	}
	s = append(s, id)
	sort.Slice(s, func(i, j int) bool { return s[i] < s[j] })
	return s
}

// renderChatTimes renders the /time listing (also the pinned time message body).
func renderChatTimes(groups []chatTimeGroup, now time.Time) string {
	b := tgui.New().Title("🌍", "Local times")
	if len(groups) == 0 {
		b.Line("Nobody here has a timezone set. Use /tz set <zone> to register yours.")
		return b.Build().Text
	}
	for _, g := range groups {
		cities := make([]string, 0, len(g.Zones))
		for _, z := range g.Zones {
			cities = append(cities, z.City())
		}
		b.RawLine(tgui.JoinH(" ",
			tgui.B(g.Local.Format(clockFmt)),
			tgui.Esc(strings.Join(cities, ", ")),
			tgui.Esc("— "+strings.Join(g.Names, ", ")),
		).String())
	}
	b.Blank()
	// Seconds keep consecutive refreshes textually distinct; Telegram
	// rejects edits that don't change the message.
	b.RawLine(tgui.I("as of " + now.UTC().Format("15:04:05 MST")).String())
	return b.Build().Text
}
