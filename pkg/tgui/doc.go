// Package tgui holds the small Telegram UI vocabulary the bot renders with:
// escaped-HTML fragments, a line-oriented message builder, inline keyboards
// and "plugin:action:payload" callback data.
//
// Everything assumes ParseMode="HTML". Plain strings are escaped at the
// boundary; the H type marks fragments that are already safe.
package tgui
