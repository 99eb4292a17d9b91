package tgui

import (
	tele "gopkg.in/telebot.v4"
)

// Inline accumulates inline-keyboard rows and produces a ReplyMarkup.
type Inline struct {
	rm   *tele.ReplyMarkup
	rows []tele.Row
}

func NewInline() *Inline {
	return &Inline{rm: &tele.ReplyMarkup{}}
}

// Row appends one row of buttons.
func (i *Inline) Row(btn ...tele.Btn) *Inline {
	i.rows = append(i.rows, i.rm.Row(btn...))
	i.rm.Inline(i.rows...)
	return i
}

// Markup returns the underlying reply markup.
func (i *Inline) Markup() *tele.ReplyMarkup { return i.rm }

// Btn builds a callback button. Data goes out verbatim; assemble it with
// Data() so the router can dispatch on plugin and action.
func Btn(text, data string) tele.Btn {
	return tele.Btn{Text: text, Data: data}
}
