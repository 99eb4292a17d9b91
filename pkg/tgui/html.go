package tgui

import (
	"html"
	"strings"
)

// H is a fragment that is already safe for Telegram's HTML parse mode.
type H string

func (h H) String() string { return string(h) }

// Esc escapes plain text into a safe fragment.
func Esc(s string) H { return H(html.EscapeString(s)) }

// Raw marks s as already-safe HTML. The caller vouches for it.
func Raw(s string) H { return H(s) }

func tag(name string, inner H) H {
	return H("<" + name + ">" + string(inner) + "</" + name + ">")
}

func B(s string) H    { return tag("b", Esc(s)) }
func I(s string) H    { return tag("i", Esc(s)) }
func Code(s string) H { return tag("code", Esc(s)) }

// Pre wraps a multi-line block in <pre> so Telegram keeps the alignment.
func Pre(s string) H { return tag("pre", Esc(s)) }

// JoinH joins non-blank fragments with sep.
func JoinH(sep string, parts ...H) H {
	if len(parts) == 0 {
		return ""
	}
	ss := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(string(p)) == "" {
			continue
		}
		ss = append(ss, string(p))
	}
	return H(strings.Join(ss, sep))
}
