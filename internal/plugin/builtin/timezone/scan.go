package timezone

import (
	"context"

	core "timezonebot/internal/plugin"
	"timezonebot/internal/tz"
	kit "timezonebot/internal/transport"
)

func (p *Plugin) Scanners() []core.Scanner {
	return []core.Scanner{
		{Plugin: p.Name(), Handle: p.scanMessage},
	}
}

// scanMessage watches plain group messages for time expressions and replies
// with conversions. Replies route through the notifier so bursts in busy
// groups are rate-limited and deduplicated.
//
// Scans stay quiet unless at least one expression converted cleanly or hit
// a DST gap; ambiguous or unresolvable zone tokens in casual chat are not
// worth a reply.
func (p *Plugin) scanMessage(ctx context.Context, req *core.Request) error {
	msg := req.Update.Message
	if msg == nil || !msg.IsGroup {
		return nil
	}
	if !p.cfgSnapshot().scanGroups {
		return nil
	}

	recs := p.processText(ctx, req.Chat.ChatID, req.FromID, msg.Text)
	speak := false
	for _, rec := range recs {
		if rec.Kind == tz.RecordConverted || rec.Kind == tz.RecordInvalidTime {
			speak = true
			break
		}
	}
	if !speak {
		return nil
	}

	keep := recs[:0]
	for _, rec := range recs {
		if rec.Kind == tz.RecordConverted || rec.Kind == tz.RecordInvalidTime {
			keep = append(keep, rec)
		}
	}
	out := renderRecords(keep)
	if out == "" {
		return nil
	}

	return p.Notify(ctx, kit.Notification{
		Channel:  "telegram",
		Priority: 3,
		Target:   req.Chat,
		Text:     out,
		Options:  &kit.SendOptions{ParseMode: "HTML", DisablePreview: true},
	})
}
