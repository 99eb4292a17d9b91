package timezone

import (
	"context"
	"fmt"
	"strings"
	"time"

	"timezonebot/internal/eventbus"
	core "timezonebot/internal/plugin"
	"timezonebot/internal/storage"
	"timezonebot/internal/tz"
	kit "timezonebot/internal/transport"
	logx "timezonebot/pkg/logx"
	"timezonebot/pkg/tgui"
)

const storageHint = "storage is not configured; ask the bot owner to enable it"

func (p *Plugin) Commands() []core.Command {
	return []core.Command{
		{
			Route:       "tz set",
			Aliases:     []string{"settz"},
			Description: "register your timezone (IANA name, abbreviation, or city)",
			Usage:       "/tz set <zone>   e.g. /tz set Europe/Berlin, /tz set PST, /tz set new york",
			Access:      core.AccessEveryone,
			Handle:      p.cmdTzSet,
		},
		{
			Route:       "tz current",
			Description: "show your registered timezone",
			Usage:       "/tz current",
			Access:      core.AccessEveryone,
			Handle:      p.cmdTzCurrent,
		},
		{
			Route:       "tz clear",
			Description: "remove your registered timezone",
			Usage:       "/tz clear",
			Access:      core.AccessEveryone,
			Handle:      p.cmdTzClear,
		},
		{
			Route:       "timein",
			Description: "current time in a zone",
			Usage:       "/timein <zone>   e.g. /timein Asia/Tokyo, /timein CET",
			Access:      core.AccessEveryone,
			Handle:      p.cmdTimeIn,
		},
		{
			Route:       "timeat",
			Description: "current time for a user (reply to them or pass @username)",
			Usage:       "/timeat [@username]",
			Access:      core.AccessEveryone,
			Handle:      p.cmdTimeAt,
		},
		{
			Route:       "time",
			Description: "everyone's local time in this chat",
			Usage:       "/time",
			Access:      core.AccessEveryone,
			Handle:      p.cmdTime,
		},
		{
			Route:       "when",
			Description: "convert time expressions in a sentence",
			Usage:       "/when <text>   e.g. /when call at 3pm EST tomorrow",
			Access:      core.AccessEveryone,
			Handle:      p.cmdWhen,
		},
		{
			Route:       "timemsg send",
			Description: "pin an auto-refreshing time message in this chat",
			Usage:       "/timemsg send",
			Access:      core.AccessOwnerOnly,
			Handle:      p.cmdTimeMsgSend,
		},
		{
			Route:       "timemsg clear",
			Description: "remove the pinned time message",
			Usage:       "/timemsg clear",
			Access:      core.AccessOwnerOnly,
			Handle:      p.cmdTimeMsgClear,
		},
	}
}

func (p *Plugin) cmdTzSet(ctx context.Context, req *core.Request) error {
	token := strings.TrimSpace(strings.Join(req.Args, " "))
	if token == "" {
		_, _ = req.Adapter.SendText(ctx, req.Chat, "usage: /tz set <zone>", nil)
		return nil
	}
	if p.Deps.Store == nil {
		_, _ = req.Adapter.SendText(ctx, req.Chat, storageHint, nil)
		return nil
	}

	rctx := p.reqContext(ctx, req.Chat.ChatID, req.FromID)
	res := p.pipe.Resolver.Resolve(tz.Expression{ZoneToken: token}, rctx)

	switch res.State {
	case tz.Resolved:
		return p.setHomeZone(ctx, req, res.Zone)

	case tz.Ambiguous:
		if len(res.Candidates) == 0 {
			_, _ = req.Adapter.SendText(ctx, req.Chat, "usage: /tz set <zone>", nil)
			return nil
		}
		kb := tgui.NewInline()
		for i, id := range res.Candidates {
			if i >= 6 {
				break
			}
			data := tgui.Data(p.Name(), "pick", id.String())
			if len(data) > tgui.MaxCallbackDataLen {
				continue
			}
			kb.Row(tgui.Btn(id.String(), data))
		}
		msg := tgui.New().
			Title("❓", "Which one?").
			Line(fmt.Sprintf("%q matches several zones, pick yours:", token)).
			Inline(kb).
			Build()
		_, err := msg.Send(ctx, req.Adapter, req.Chat)
		return err

	default:
		_, _ = req.Adapter.SendText(ctx, req.Chat, res.Reason+". Try an IANA name like Europe/Berlin.", nil)
		return nil
	}
}

// setHomeZone persists the zone and confirms with the zone's current time.
func (p *Plugin) setHomeZone(ctx context.Context, req *core.Request, zone tz.ZoneID) error {
	z, err := p.reg.LookupID(zone)
	if err != nil {
		return err
	}
	hz := storage.HomeZone{
		ChatID:    req.Chat.ChatID,
		UserID:    req.FromID,
		Zone:      zone.String(),
		UpdatedAt: time.Now(),
	}
	if msg := req.Update.Message; msg != nil {
		hz.Username = msg.FromUsername
	}
	if err := p.Deps.Store.PutHomeZone(ctx, hz); err != nil {
		return fmt.Errorf("store home zone: %w", err)
	}
	_ = p.Deps.Store.PutZoneHint(ctx, req.Chat.ChatID, req.FromID, zone.String())
	p.PublishEvent(eventbus.TypeHomeZoneChanged, eventbus.HomeZoneChange{
		ChatID: req.Chat.ChatID, UserID: req.FromID, Zone: zone.String(),
	})

	now := time.Now().In(z.Location())
	msg := tgui.New().
		Title("✅", "Timezone set").
		RawLine(tgui.JoinH(" ", tgui.Code(zone.String()), tgui.Esc("— it is"), tgui.B(now.Format(fullFmt)), tgui.Esc("there")).String()).
		Build()
	_, err = msg.Send(ctx, req.Adapter, req.Chat)
	return err
}

func (p *Plugin) cmdTzCurrent(ctx context.Context, req *core.Request) error {
	if p.Deps.Store == nil {
		_, _ = req.Adapter.SendText(ctx, req.Chat, storageHint, nil)
		return nil
	}
	rctx := p.reqContext(ctx, req.Chat.ChatID, req.FromID)
	if rctx.HomeZone == "" {
		_, _ = req.Adapter.SendText(ctx, req.Chat, "you have no timezone set here. Use /tz set <zone>.", nil)
		return nil
	}
	z, err := p.reg.LookupID(rctx.HomeZone)
	if err != nil {
		return err
	}
	now := time.Now().In(z.Location())
	msg := tgui.New().
		RawLine(tgui.JoinH(" ",
			tgui.Esc("Your timezone is"),
			tgui.Code(rctx.HomeZone.String()),
			tgui.Esc("— it is"),
			tgui.B(now.Format(fullFmt)),
		).String()).
		Build()
	_, err = msg.Send(ctx, req.Adapter, req.Chat)
	return err
}

func (p *Plugin) cmdTzClear(ctx context.Context, req *core.Request) error {
	if p.Deps.Store == nil {
		_, _ = req.Adapter.SendText(ctx, req.Chat, storageHint, nil)
		return nil
	}
	if err := p.Deps.Store.DeleteHomeZone(ctx, req.Chat.ChatID, req.FromID); err != nil {
		return fmt.Errorf("clear home zone: %w", err)
	}
	p.PublishEvent(eventbus.TypeHomeZoneChanged, eventbus.HomeZoneChange{
		ChatID: req.Chat.ChatID, UserID: req.FromID,
	})
	_, _ = req.Adapter.SendText(ctx, req.Chat, "timezone cleared", nil)
	return nil
}

func (p *Plugin) cmdTimeIn(ctx context.Context, req *core.Request) error {
	token := strings.TrimSpace(strings.Join(req.Args, " "))
	if token == "" {
		_, _ = req.Adapter.SendText(ctx, req.Chat, "usage: /timein <zone>", nil)
		return nil
	}
	rctx := p.reqContext(ctx, req.Chat.ChatID, req.FromID)
	res := p.pipe.Resolver.Resolve(tz.Expression{ZoneToken: token}, rctx)

	switch res.State {
	case tz.Resolved:
		z, err := p.reg.LookupID(res.Zone)
		if err != nil {
			return err
		}
		now := time.Now().In(z.Location())
		msg := tgui.New().
			RawLine(tgui.JoinH(" ",
				tgui.Raw("🕒"),
				tgui.B(now.Format(fullFmt)),
				tgui.Esc("in"),
				tgui.Code(res.Zone.String()),
			).String()).
			Build()
		_, err = msg.Send(ctx, req.Adapter, req.Chat)
		return err

	case tz.Ambiguous:
		names := make([]string, 0, len(res.Candidates))
		for i, id := range res.Candidates {
			if i >= 5 {
				names = append(names, "…")
				break
			}
			names = append(names, id.String())
		}
		txt := fmt.Sprintf("%q is ambiguous: %s", token, strings.Join(names, ", "))
		if len(names) == 0 {
			txt = "usage: /timein <zone>"
		}
		_, _ = req.Adapter.SendText(ctx, req.Chat, txt, nil)
		return nil

	default:
		_, _ = req.Adapter.SendText(ctx, req.Chat, res.Reason, nil)
		return nil
	}
}

// findHomeZone picks the stored zone for a user id, or by username
// (case-insensitive) when the id is zero.
func findHomeZone(zones []storage.HomeZone, userID int64, username string) *storage.HomeZone {
	if userID == 0 && username == "" {
		return nil
	}
	for i := range zones {
		hz := &zones[i]
		if userID != 0 {
			if hz.UserID == userID {
				return hz
			}
			continue
		}
		if strings.EqualFold(hz.Username, username) {
			return hz
		}
	}
	return nil
}

func (p *Plugin) cmdTimeAt(ctx context.Context, req *core.Request) error {
	if p.Deps.Store == nil {
		_, _ = req.Adapter.SendText(ctx, req.Chat, storageHint, nil)
		return nil
	}
	msg := req.Update.Message
	if msg == nil {
		return nil
	}

	// Target selection: quoted user first, then @username argument.
	var (
		targetID   int64
		targetName string
	)
	if msg.ReplyToFromID != 0 {
		targetID = msg.ReplyToFromID
		targetName = msg.ReplyToUsername
		if targetName == "" {
			targetName = msg.ReplyToName
		}
	} else if len(req.Args) > 0 {
		targetName = strings.TrimPrefix(strings.TrimSpace(req.Args[0]), "@")
	} else {
		_, _ = req.Adapter.SendText(ctx, req.Chat, "reply to someone or use /timeat @username", nil)
		return nil
	}

	found := findHomeZone(p.chatZones(ctx, req.Chat.ChatID), targetID, targetName)
	if found == nil {
		who := targetName
		if who == "" {
			who = "that user"
		}
		_, _ = req.Adapter.SendText(ctx, req.Chat, fmt.Sprintf("%s has no timezone registered here", who), nil)
		return nil
	}

	z, err := p.reg.LookupID(tz.ZoneID(found.Zone))
	if err != nil {
		return err
	}
	now := time.Now().In(z.Location())
	who := found.Username
	if who == "" {
		who = fmt.Sprintf("user %d", found.UserID)
	}
	out := tgui.New().
		RawLine(tgui.JoinH(" ",
			tgui.Raw("🕒"),
			tgui.Esc("For "+who+" it is"),
			tgui.B(now.Format(fullFmt)),
			tgui.Esc(zoneLabel(z.ID)),
		).String()).
		Build()
	_, err = out.Send(ctx, req.Adapter, req.Chat)
	return err
}

func (p *Plugin) cmdTime(ctx context.Context, req *core.Request) error {
	if p.Deps.Store == nil {
		_, _ = req.Adapter.SendText(ctx, req.Chat, storageHint, nil)
		return nil
	}
	now := time.Now()
	groups := groupChatTimes(p.reg, p.chatZones(ctx, req.Chat.ChatID), now)
	text := renderChatTimes(groups, now)
	_, err := req.Adapter.SendText(ctx, req.Chat, text, &kit.SendOptions{ParseMode: "HTML", DisablePreview: true})
	return err
}

func (p *Plugin) cmdWhen(ctx context.Context, req *core.Request) error {
	text := strings.TrimSpace(strings.Join(req.RawArgs, " "))
	if text == "" {
		_, _ = req.Adapter.SendText(ctx, req.Chat, "usage: /when <text with times>", nil)
		return nil
	}
	recs := p.processText(ctx, req.Chat.ChatID, req.FromID, text)
	out := renderRecords(recs)
	if out == "" {
		_, _ = req.Adapter.SendText(ctx, req.Chat, "no time expressions found", nil)
		return nil
	}
	_, err := req.Adapter.SendText(ctx, req.Chat, out, &kit.SendOptions{ParseMode: "HTML", DisablePreview: true})
	return err
}

func (p *Plugin) Callbacks() []core.CallbackRoute {
	return []core.CallbackRoute{
		{
			Plugin:      p.Name(),
			Action:      "pick",
			Description: "pick a zone from an ambiguous /tz set",
			Access:      core.CallbackAccessEveryone,
			Handle:      p.cbPick,
		},
	}
}

// cbPick handles an inline-keyboard zone pick. The zone is stored for the
// user who pressed the button.
func (p *Plugin) cbPick(ctx context.Context, req *core.Request, payload string) error {
	zone := tz.ZoneID(strings.TrimSpace(payload))
	z, err := p.reg.LookupID(zone)
	if err != nil {
		p.Log.Warn("pick callback with unknown zone", logx.String("zone", payload))
		return nil
	}
	if p.Deps.Store == nil {
		return nil
	}

	cb := req.Update.Callback
	hz := storage.HomeZone{
		ChatID:    req.Chat.ChatID,
		UserID:    req.FromID,
		Zone:      zone.String(),
		UpdatedAt: time.Now(),
	}
	if err := p.Deps.Store.PutHomeZone(ctx, hz); err != nil {
		return fmt.Errorf("store home zone: %w", err)
	}
	_ = p.Deps.Store.PutZoneHint(ctx, req.Chat.ChatID, req.FromID, zone.String())
	p.PublishEvent(eventbus.TypeHomeZoneChanged, eventbus.HomeZoneChange{
		ChatID: req.Chat.ChatID, UserID: req.FromID, Zone: zone.String(),
	})

	now := time.Now().In(z.Location())
	text := tgui.JoinH(" ",
		tgui.Raw("✅"),
		tgui.Esc("Timezone set to"),
		tgui.Code(zone.String()),
		tgui.Esc("— it is"),
		tgui.B(now.Format(fullFmt)),
		tgui.Esc("there"),
	).String()

	// Replace the picker with the confirmation.
	if cb != nil && cb.MessageID != 0 {
		ref := kit.MessageRef{ChatID: cb.ChatID, ThreadID: cb.ThreadID, MessageID: cb.MessageID}
		if err := req.Adapter.EditText(ctx, ref, text, &kit.SendOptions{ParseMode: "HTML", DisablePreview: true}); err == nil {
			return nil
		}
	}
	_, err = req.Adapter.SendText(ctx, req.Chat, text, &kit.SendOptions{ParseMode: "HTML", DisablePreview: true})
	return err
}
