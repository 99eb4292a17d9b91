package router

import (
	"fmt"
	"html"
	"sort"
	"strings"
)

// helpText renders help for the given command path as Telegram HTML,
// ready for ParseMode="HTML".
func (m *CommandManager) helpText(path []string) string {
	m.mu.RLock()
	root := m.root
	alias := m.alias
	m.mu.RUnlock()

	cur := root
	full := make([]string, 0, len(path))
	for _, p := range path {
		n, ok := cur.child(p)
		if !ok {
			// the path element may be an alias for a leaf
			if leaf, ok2 := alias[p]; ok2 && leaf != nil && leaf.cmd != nil {
				cur = leaf
				full = splitRoute(leaf.cmd.Route)
				break
			}
			return m.helpUnknownHTML()
		}
		cur = n
		full = append(full, p)
	}

	if len(path) == 0 {
		return m.helpTopHTML(root)
	}
	return m.helpNodeHTML(cur, full)
}

func (m *CommandManager) helpUnknownHTML() string {
	return "❓ <b>Unknown command</b>\nType <code>/help</code> to see the command list."
}

type topRow struct {
	name string
	desc string
	lock bool
}

func (m *CommandManager) helpTopHTML(root *cmdNode) string {
	names := root.childNames()
	rows := make([]topRow, 0, len(names))
	for _, name := range names {
		n, _ := root.child(name)
		if n == nil {
			continue
		}
		rows = append(rows, topRow{
			name: name,
			desc: summarizeNodeDesc(n),
			lock: nodeIsOwnerOnly(n),
		})
	}
	// Owner-only entries sink to the bottom; each group stays alphabetical.
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].lock != rows[j].lock {
			return !rows[i].lock
		}
		return rows[i].name < rows[j].name
	})

	lines := []string{
		"📚 <b>Commands</b>",
		"Type <code>/help &lt;cmd&gt;</code> for details.",
	}
	for _, r := range rows {
		lines = append(lines, commandRow(r.name, r.desc, r.lock))
	}
	lines = append(lines, "Tip: in Telegram, type <code>/</code> and keep typing to see suggestions (autocomplete).")
	return strings.Join(lines, "\n")
}

// commandRow renders one "• /cmd — desc" bullet, locked entries marked.
func commandRow(cmd, desc string, lock bool) string {
	prefix := "• "
	if lock {
		prefix = "• 🔒 "
	}
	row := prefix + "<code>/" + html.EscapeString(cmd) + "</code>"
	if desc != "" {
		row += " — " + html.EscapeString(desc)
	}
	return row
}

func (m *CommandManager) helpNodeHTML(cur *cmdNode, full []string) string {
	title := "/" + strings.Join(full, " ")
	lines := []string{fmt.Sprintf("📚 <b>Help</b> <code>%s</code>", html.EscapeString(title))}

	if cur != nil && cur.cmd != nil {
		c := cur.cmd
		if d := strings.TrimSpace(c.Description); d != "" {
			lines = append(lines, html.EscapeString(d))
		}
		if c.Access == AccessOwnerOnly {
			lines = append(lines, "🔒 <i>Owner only</i>")
		}
		if u := strings.TrimSpace(c.Usage); u != "" {
			lines = append(lines, "<b>Usage</b>", "<code>"+html.EscapeString(u)+"</code>")
		}
		if short := buildShortcuts(*c); len(short) > 0 {
			lines = append(lines, "<b>Shortcuts</b>")
			for _, s := range short {
				lines = append(lines, "• <code>/"+html.EscapeString(s)+"</code>")
			}
		}
	} else {
		lines = append(lines, "Command group (has subcommands).")
		if nodeIsOwnerOnly(cur) {
			lines = append(lines, "🔒 <i>Owner only</i>")
		}
	}

	if cur != nil && len(cur.children) > 0 {
		lines = append(lines, "<b>Subcommands</b>")
		for _, name := range cur.childNames() {
			n, _ := cur.child(name)
			if n == nil {
				continue
			}
			sub := strings.Join(append(append([]string(nil), full...), name), " ")
			lines = append(lines, commandRow(sub, summarizeNodeDesc(n), nodeIsOwnerOnly(n)))
		}
	}

	return strings.Join(lines, "\n")
}

// summarizeNodeDesc prefers the leaf's own description; groups fall back to
// a short listing of their first subcommands.
func summarizeNodeDesc(n *cmdNode) string {
	if n == nil {
		return ""
	}
	if n.cmd != nil {
		if d := strings.TrimSpace(n.cmd.Description); d != "" {
			return d
		}
	}
	kids := n.childNames()
	if len(kids) == 0 {
		return ""
	}
	show := kids
	if len(show) > 3 {
		show = show[:3]
	}
	s := strings.Join(show, ", ")
	if len(kids) > len(show) {
		s += ", …"
	}
	return "subcommands: " + s
}

// nodeIsOwnerOnly reports whether a leaf is owner-only, or for a group,
// whether every command below it is.
func nodeIsOwnerOnly(n *cmdNode) bool {
	if n == nil {
		return false
	}
	if n.cmd != nil {
		return n.cmd.Access == AccessOwnerOnly
	}
	ownerOnly := true
	var walk func(x *cmdNode)
	walk = func(x *cmdNode) {
		if x == nil || !ownerOnly {
			return
		}
		if x.cmd != nil && x.cmd.Access == AccessEveryone {
			ownerOnly = false
			return
		}
		for _, ch := range x.children {
			walk(ch)
		}
	}
	walk(n)
	return ownerOnly
}

// buildShortcuts lists slash-invocable aliases for a leaf: the flattened
// menu name plus the command's declared aliases (and their sanitized forms,
// e.g. time-msg alongside time_msg).
func buildShortcuts(c Command) []string {
	out := make([]string, 0, 8)
	seen := map[string]bool{}
	put := func(s string) {
		if s != "" && !seen[s] {
			out = append(out, s)
			seen[s] = true
		}
	}

	if menu, ok := telegramCommandNameFromRoute(splitRoute(c.Route)); ok {
		put(menu)
	}
	for _, a := range c.Aliases {
		a = strings.TrimSpace(a)
		if a == "" || strings.Contains(a, " ") {
			continue
		}
		put(a)
		put(sanitizeTelegramCommand(a))
	}

	sort.Strings(out)
	return out
}
