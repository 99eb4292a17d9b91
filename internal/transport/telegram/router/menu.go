package router

import (
	"sort"
	"strings"
	"unicode"

	kit "timezonebot/internal/transport"
)

// Telegram limits per the Bot API: command names [a-z0-9_]{1,32},
// descriptions up to 256 chars, at most 100 menu entries.
const (
	maxMenuCommandLen = 32
	maxMenuDescLen    = 256
	maxMenuEntries    = 100
)

// sanitizeTelegramCommand squeezes an arbitrary route or alias into a valid
// bot command name, or returns "" when nothing usable is left.
func sanitizeTelegramCommand(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(s))
	prevUnderscore := false
	for _, r := range s {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			prevUnderscore = false
		case r == '_':
			if !prevUnderscore {
				b.WriteByte('_')
				prevUnderscore = true
			}
		case r == '-' || r == '/' || unicode.IsSpace(r):
			// separators collapse into single underscores
			if b.Len() > 0 && !prevUnderscore {
				b.WriteByte('_')
				prevUnderscore = true
			}
		}
	}

	out := strings.Trim(b.String(), "_")
	if len(out) > maxMenuCommandLen {
		out = strings.TrimRight(out[:maxMenuCommandLen], "_")
	}
	if out == "" {
		return ""
	}
	// Clients expect a leading letter.
	if out[0] >= '0' && out[0] <= '9' {
		out = "cmd_" + out
		if len(out) > maxMenuCommandLen {
			out = strings.TrimRight(out[:maxMenuCommandLen], "_")
		}
	}
	return out
}

// telegramCommandNameFromRoute flattens a route into a menu command name,
// e.g. ["tz","set"] becomes "tz_set".
func telegramCommandNameFromRoute(route []string) (string, bool) {
	if len(route) == 0 {
		return "", false
	}
	out := sanitizeTelegramCommand(strings.Join(route, "_"))
	return out, out != ""
}

func menuDesc(desc, fallback string) string {
	desc = strings.ReplaceAll(strings.TrimSpace(desc), "\n", " ")
	if desc == "" {
		desc = fallback
	}
	if len(desc) > maxMenuDescLen {
		desc = desc[:maxMenuDescLen]
	}
	return desc
}

// buildTelegramMenuCommands assembles the /setMyCommands list: top-level
// names first for autocomplete, then flattened multi-token shortcuts.
func buildTelegramMenuCommands(root *cmdNode, leafCmds []Command) []kit.BotCommand {
	type entry struct {
		cmd  string
		desc string
		rank int
	}
	byCmd := map[string]entry{}
	add := func(cmd, desc string, rank int) {
		cmd = sanitizeTelegramCommand(cmd)
		if cmd == "" {
			return
		}
		desc = menuDesc(desc, cmd)

		cur, exists := byCmd[cmd]
		// On collision the lower rank wins; ties go to the shorter text.
		if exists && !(rank < cur.rank || (rank == cur.rank && len(desc) < len(cur.desc))) {
			return
		}
		byCmd[cmd] = entry{cmd: cmd, desc: desc, rank: rank}
	}

	if root != nil {
		for _, name := range root.childNames() {
			n, _ := root.child(name)
			if n == nil {
				continue
			}
			desc := summarizeNodeDesc(n)
			if nodeIsOwnerOnly(n) {
				desc = "🔒 " + desc
			}
			add(name, desc, 0)
		}
	}

	for _, c := range leafCmds {
		route := splitRoute(c.Route)
		// Single-token routes are already in the top-level list.
		if len(route) < 2 {
			continue
		}
		menu, ok := telegramCommandNameFromRoute(route)
		if !ok {
			continue
		}

		desc := strings.TrimSpace(c.Description)
		if desc == "" {
			desc = strings.Join(route, " ")
		}
		if c.Access == AccessOwnerOnly {
			desc = "🔒 " + desc
		}
		add(menu, desc, 1)
	}

	entries := make([]entry, 0, len(byCmd))
	for _, e := range byCmd {
		entries = append(entries, e)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].rank != entries[j].rank {
			return entries[i].rank < entries[j].rank
		}
		return entries[i].cmd < entries[j].cmd
	})

	out := make([]kit.BotCommand, 0, len(entries))
	for _, e := range entries {
		out = append(out, kit.BotCommand{Command: e.cmd, Description: e.desc})
		if len(out) >= maxMenuEntries {
			break
		}
	}
	return out
}
