package tz

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Extractor scans raw chat text for temporal expressions.
//
// It never fails: unparseable text yields an empty slice. Results are
// ordered left-to-right by position in the source text.
//
// Overlap policy (deliberate, not an accident of pattern ordering):
// the longest match wins; equal-length matches prefer the explicit
// 24-hour interpretation over the 12-hour one.
type Extractor struct {
	reg *Registry
}

func NewExtractor(reg *Registry) *Extractor { return &Extractor{reg: reg} }

var (
	// "3pm", "3 pm", "3:30pm", "11:05 a.m."
	re12h = regexp.MustCompile(`(?i)\b(1[0-2]|0?[1-9])(?::([0-5][0-9]))?\s?(a\.m\.|p\.m\.|am|pm)`)
	// "15:00", "9:05"
	re24h = regexp.MustCompile(`\b([01]?[0-9]|2[0-3]):([0-5][0-9])\b`)
	// "1500hrs", "1500 hrs", "1500h"; a bare "1500" only counts when a
	// zone token follows, otherwise it is far more likely a year/quantity.
	reCompact = regexp.MustCompile(`\b([01][0-9]|2[0-3])([0-5][0-9])(?:\s?(hrs|h)\b)?`)

	// Optional ISO date immediately preceding the time ("2024-11-03 01:30").
	reDatePrefix = regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})[ T]$`)

	// One word of a potential zone token ("EST", "America/New_York", "york").
	reZoneWord = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_/]*`)

	// All-uppercase 2-5 letter token: attached even when unknown so the
	// resolver can surface it as an unrecognized timezone.
	reAbbrevShape = regexp.MustCompile(`^[A-Z]{2,5}$`)
)

type timeCand struct {
	start, end int
	clock      Clock
	kind       ClockKind
	meridiem   string
}

// Extract returns every temporal expression found in text.
func (ex *Extractor) Extract(text string) []Expression {
	cands := ex.collect(text)
	cands = selectNonOverlapping(cands)

	out := make([]Expression, 0, len(cands))
	for _, c := range cands {
		e := Expression{
			Pos:      c.start,
			End:      c.end,
			Clock:    c.clock,
			Kind:     c.kind,
			Meridiem: c.meridiem,
		}
		if d, newStart, ok := datePrefix(text, c.start); ok {
			e.Date = d
			e.Pos = newStart
		}
		if tok, newEnd, ok := ex.zoneSuffix(text, c.end); ok {
			e.ZoneToken = tok
			e.End = newEnd
		} else if c.kind == Clock24Compact && !c.hasSuffix(text) {
			// Bare compact form without a zone token: discard.
			continue
		}
		e.Text = text[e.Pos:e.End]
		out = append(out, e)
	}
	return out
}

// hasSuffix reports whether a compact candidate carried an explicit
// "hrs"/"h" marker (included in its matched span).
func (c timeCand) hasSuffix(text string) bool {
	span := strings.ToLower(text[c.start:c.end])
	return strings.HasSuffix(span, "hrs") || strings.HasSuffix(span, "h")
}

func (ex *Extractor) collect(text string) []timeCand {
	var cands []timeCand

	for _, m := range re12h.FindAllStringSubmatchIndex(text, -1) {
		// Reject matches glued to a following word character ("3pmx").
		if m[1] < len(text) && isWordByte(text[m[1]]) {
			continue
		}
		h, _ := strconv.Atoi(text[m[2]:m[3]])
		min := 0
		if m[4] >= 0 {
			min, _ = strconv.Atoi(text[m[4]:m[5]])
		}
		mer := strings.ToLower(strings.ReplaceAll(text[m[6]:m[7]], ".", ""))
		if mer == "am" && h == 12 {
			h = 0
		} else if mer == "pm" && h != 12 {
			h += 12
		}
		cands = append(cands, timeCand{start: m[0], end: m[1], clock: Clock{h, min}, kind: Clock12, meridiem: mer})
	}

	for _, m := range re24h.FindAllStringSubmatchIndex(text, -1) {
		h, _ := strconv.Atoi(text[m[2]:m[3]])
		min, _ := strconv.Atoi(text[m[4]:m[5]])
		cands = append(cands, timeCand{start: m[0], end: m[1], clock: Clock{h, min}, kind: Clock24})
	}

	for _, m := range reCompact.FindAllStringSubmatchIndex(text, -1) {
		if m[1] < len(text) && isWordByte(text[m[1]]) {
			continue
		}
		h, _ := strconv.Atoi(text[m[2]:m[3]])
		min, _ := strconv.Atoi(text[m[4]:m[5]])
		cands = append(cands, timeCand{start: m[0], end: m[1], clock: Clock{h, min}, kind: Clock24Compact})
	}

	return cands
}

func isWordByte(b byte) bool {
	return b == '_' || (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// selectNonOverlapping applies the documented overlap policy.
func selectNonOverlapping(cands []timeCand) []timeCand {
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].start != cands[j].start {
			return cands[i].start < cands[j].start
		}
		li, lj := cands[i].end-cands[i].start, cands[j].end-cands[j].start
		if li != lj {
			return li > lj
		}
		return is24(cands[i].kind) && !is24(cands[j].kind)
	})

	var out []timeCand
	for _, c := range cands {
		if len(out) == 0 || c.start >= out[len(out)-1].end {
			out = append(out, c)
			continue
		}
		last := out[len(out)-1]
		if better(c, last) {
			out[len(out)-1] = c
		}
	}
	return out
}

func is24(k ClockKind) bool { return k == Clock24 || k == Clock24Compact }

func better(a, b timeCand) bool {
	la, lb := a.end-a.start, b.end-b.start
	if la != lb {
		return la > lb
	}
	return is24(a.kind) && !is24(b.kind)
}

// datePrefix parses an optional ISO date directly before the time match.
// A calendar-invalid date (2024-02-31) is ignored rather than attached.
func datePrefix(text string, start int) (Date, int, bool) {
	m := reDatePrefix.FindStringSubmatchIndex(text[:start])
	if m == nil {
		return Date{}, start, false
	}
	y, _ := strconv.Atoi(text[m[2]:m[3]])
	mo, _ := strconv.Atoi(text[m[4]:m[5]])
	d, _ := strconv.Atoi(text[m[6]:m[7]])
	if mo < 1 || mo > 12 || d < 1 || d > 31 {
		return Date{}, start, false
	}
	probe := time.Date(y, time.Month(mo), d, 0, 0, 0, 0, time.UTC)
	if probe.Year() != y || probe.Month() != time.Month(mo) || probe.Day() != d {
		return Date{}, start, false
	}
	return Date{Year: y, Month: time.Month(mo), Day: d}, m[0], true
}

// zoneSuffix scans for a zone token immediately after the time match:
// an IANA identifier, an abbreviation, or a place name of up to three
// words (longest sequence first). Unknown tokens are attached only when
// they are typed like an abbreviation (2-5 uppercase letters).
func (ex *Extractor) zoneSuffix(text string, end int) (string, int, bool) {
	i := end
	for i < len(text) && (text[i] == ' ' || text[i] == '\t') {
		i++
	}
	if i == end || i >= len(text) {
		return "", end, false
	}

	type word struct{ start, end int }
	var words []word
	j := i
	for len(words) < 3 {
		loc := reZoneWord.FindStringIndex(text[j:])
		if loc == nil || loc[0] != 0 {
			break
		}
		words = append(words, word{j, j + loc[1]})
		j += loc[1]
		if j < len(text) && text[j] == ' ' {
			j++
		} else {
			break
		}
	}
	if len(words) == 0 {
		return "", end, false
	}

	for n := len(words); n >= 1; n-- {
		tok := text[words[0].start:words[n-1].end]
		if strings.EqualFold(tok, "am") || strings.EqualFold(tok, "pm") {
			continue
		}
		if ex.reg.KnownToken(tok) {
			return tok, words[n-1].end, true
		}
	}

	// Single unknown word shaped like an abbreviation: keep it so the
	// resolver can report "unrecognized timezone" instead of silently
	// treating the expression as zone-less.
	tok := text[words[0].start:words[0].end]
	if reAbbrevShape.MatchString(tok) {
		return tok, words[0].end, true
	}
	return "", end, false
}
