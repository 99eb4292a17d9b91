package timezone

import (
	"context"
	"fmt"
	"time"

	"timezonebot/internal/eventbus"
	core "timezonebot/internal/plugin"
	"timezonebot/internal/storage"
	kit "timezonebot/internal/transport"
	logx "timezonebot/pkg/logx"
)

// cmdTimeMsgSend sends and pins an auto-refreshing time message. One per
// chat: a previous ref is replaced and its message deleted best-effort.
func (p *Plugin) cmdTimeMsgSend(ctx context.Context, req *core.Request) error {
	st := p.Deps.Store
	if st == nil {
		_, _ = req.Adapter.SendText(ctx, req.Chat, storageHint, nil)
		return nil
	}

	if old, ok, err := st.GetTimeMessage(ctx, req.Chat.ChatID); err == nil && ok {
		oldRef := kit.MessageRef{ChatID: old.ChatID, ThreadID: old.ThreadID, MessageID: old.MessageID}
		if derr := req.Adapter.DeleteMessage(ctx, oldRef); derr != nil {
			p.Log.Debug("previous time message not deleted", logx.Err(derr))
		}
	}

	now := time.Now()
	text := renderChatTimes(groupChatTimes(p.reg, p.chatZones(ctx, req.Chat.ChatID), now), now)
	ref, err := req.Adapter.SendText(ctx, req.Chat, text, &kit.SendOptions{ParseMode: "HTML", DisablePreview: true})
	if err != nil {
		return fmt.Errorf("send time message: %w", err)
	}
	if perr := req.Adapter.PinMessage(ctx, ref); perr != nil {
		p.Log.Warn("time message not pinned (missing pin rights?)", logx.Err(perr))
	}

	if err := st.PutTimeMessage(ctx, storage.TimeMessageRef{
		ChatID:    ref.ChatID,
		ThreadID:  ref.ThreadID,
		MessageID: ref.MessageID,
		CreatedAt: now,
	}); err != nil {
		return fmt.Errorf("store time message ref: %w", err)
	}
	return nil
}

func (p *Plugin) cmdTimeMsgClear(ctx context.Context, req *core.Request) error {
	st := p.Deps.Store
	if st == nil {
		_, _ = req.Adapter.SendText(ctx, req.Chat, storageHint, nil)
		return nil
	}
	ref, ok, err := st.GetTimeMessage(ctx, req.Chat.ChatID)
	if err != nil {
		return err
	}
	if !ok {
		_, _ = req.Adapter.SendText(ctx, req.Chat, "no time message in this chat", nil)
		return nil
	}
	mref := kit.MessageRef{ChatID: ref.ChatID, ThreadID: ref.ThreadID, MessageID: ref.MessageID}
	if derr := req.Adapter.DeleteMessage(ctx, mref); derr != nil {
		p.Log.Debug("time message not deleted", logx.Err(derr))
	}
	if err := st.DeleteTimeMessage(ctx, req.Chat.ChatID); err != nil {
		return err
	}
	_, _ = req.Adapter.SendText(ctx, req.Chat, "time message removed", nil)
	return nil
}

// refreshTimeMessages re-renders every pinned time message. Runs on the
// task scheduler. Refs whose message no longer exists are pruned so a
// deleted pin doesn't produce an edit error every interval forever.
func (p *Plugin) refreshTimeMessages(ctx context.Context) error {
	st := p.Deps.Store
	if st == nil {
		return nil
	}
	refs, err := st.ListTimeMessages(ctx)
	if err != nil {
		return fmt.Errorf("list time messages: %w", err)
	}

	for _, ref := range refs {
		now := time.Now()
		text := renderChatTimes(groupChatTimes(p.reg, p.chatZones(ctx, ref.ChatID), now), now)
		mref := kit.MessageRef{ChatID: ref.ChatID, ThreadID: ref.ThreadID, MessageID: ref.MessageID}
		if err := p.Deps.Adapter.EditText(ctx, mref, text, &kit.SendOptions{ParseMode: "HTML", DisablePreview: true}); err != nil {
			p.Log.Info("time message gone, pruning ref",
				logx.Int64("chat_id", ref.ChatID),
				logx.Int("message_id", ref.MessageID),
				logx.Err(err),
			)
			_ = st.DeleteTimeMessage(ctx, ref.ChatID)
			continue
		}
		p.PublishEvent(eventbus.TypeTimeMessageRefreshed, ref.ChatID)
	}
	return nil
}
