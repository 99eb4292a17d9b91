package tgui

import (
	"context"
	"strings"

	kit "timezonebot/internal/transport"

	tele "gopkg.in/telebot.v4"
)

// Message is a rendered payload: text plus send options. Build one with
// Builder, then Send it without repeating ParseMode/markup plumbing.
type Message struct {
	Text string
	Opt  *kit.SendOptions
}

func (m Message) Send(ctx context.Context, ad kit.Adapter, to kit.ChatTarget) (kit.MessageRef, error) {
	if m.Opt == nil {
		m.Opt = &kit.SendOptions{}
	}
	return ad.SendText(ctx, to, m.Text, m.Opt)
}

// Builder collects lines and renders an HTML Message with preview disabled.
type Builder struct {
	rm    *tele.ReplyMarkup
	lines []string
}

func New() *Builder {
	return &Builder{}
}

// Inline attaches an inline keyboard. Passing nil clears it.
func (b *Builder) Inline(kb *Inline) *Builder {
	if kb == nil {
		b.rm = nil
		return b
	}
	b.rm = kb.Markup()
	return b
}

// Title adds a bold headline, optionally led by an emoji.
func (b *Builder) Title(emoji, title string) *Builder {
	t := strings.TrimSpace(title)
	if t == "" {
		return b
	}
	head := B(t)
	if e := strings.TrimSpace(emoji); e != "" {
		head = JoinH(" ", Esc(e), head)
	}
	b.lines = append(b.lines, string(head))
	return b
}

// Line adds one escaped line. A blank string yields an empty line.
func (b *Builder) Line(s string) *Builder {
	if strings.TrimSpace(s) == "" {
		b.lines = append(b.lines, "")
		return b
	}
	b.lines = append(b.lines, string(Esc(s)))
	return b
}

// RawLine appends a line that is already safe HTML.
func (b *Builder) RawLine(s string) *Builder {
	b.lines = append(b.lines, s)
	return b
}

// Blank inserts an empty line.
func (b *Builder) Blank() *Builder { return b.Line("") }

// Code adds a <code> line.
func (b *Builder) Code(s string) *Builder {
	s = strings.TrimSpace(s)
	if s == "" {
		return b
	}
	b.lines = append(b.lines, string(Code(s)))
	return b
}

// Build renders the collected lines into a sendable Message.
func (b *Builder) Build() Message {
	text := strings.Trim(strings.Join(b.lines, "\n"), "\n")
	opt := &kit.SendOptions{ParseMode: "HTML", DisablePreview: true}
	if b.rm != nil {
		opt.ReplyMarkupAdapter = b.rm
	}
	return Message{Text: text, Opt: opt}
}
