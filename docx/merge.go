package docx

import (
	"html"
	"strings"
)

type eventKind int

const (
	evText eventKind = iota
	evBreak
	evTab
	evParagraph
)

// event is one interesting element found while scanning a part. For text
// events tagStart..contentStart is the <w:t> open tag and
// contentStart..contentEnd its escaped content.
type event struct {
	kind         eventKind
	tagStart     int
	contentStart int
	contentEnd   int
	text         string
}

// scan walks the XML once and reports text nodes, breaks, tabs and
// paragraph boundaries in document order.
func scan(xml string) []event {
	var events []event
	i := 0
	for {
		lt := strings.IndexByte(xml[i:], '<')
		if lt < 0 {
			return events
		}
		start := i + lt
		gt := strings.IndexByte(xml[start:], '>')
		if gt < 0 {
			return events
		}
		end := start + gt + 1
		tag := xml[start:end]
		name, closing, selfClosing := tagName(tag)

		switch {
		case name == "w:p":
			events = append(events, event{kind: evParagraph})
		case name == "w:br" || name == "w:cr":
			if !closing {
				events = append(events, event{kind: evBreak})
			}
		case name == "w:tab" && selfClosing && !strings.Contains(tag, "w:pos"):
			events = append(events, event{kind: evTab})
		case name == "w:t" && !closing && !selfClosing:
			closeAt := strings.Index(xml[end:], "</w:t>")
			if closeAt < 0 {
				return events
			}
			contentEnd := end + closeAt
			events = append(events, event{
				kind:         evText,
				tagStart:     start,
				contentStart: end,
				contentEnd:   contentEnd,
				text:         html.UnescapeString(xml[end:contentEnd]),
			})
			i = contentEnd + len("</w:t>")
			continue
		}
		i = end
	}
}

func tagName(tag string) (name string, closing, selfClosing bool) {
	body := tag[1 : len(tag)-1]
	if strings.HasPrefix(body, "/") {
		closing = true
		body = body[1:]
	}
	if strings.HasSuffix(body, "/") {
		selfClosing = true
		body = body[:len(body)-1]
	}
	if idx := strings.IndexAny(body, " \t\r\n"); idx >= 0 {
		body = body[:idx]
	}
	return body, closing, selfClosing
}

// paragraphs groups text events by paragraph boundary. Nested paragraphs
// (text boxes) form their own group.
func paragraphs(events []event) [][]int {
	var groups [][]int
	var cur []int
	for i, ev := range events {
		switch ev.kind {
		case evParagraph:
			if len(cur) > 0 {
				groups = append(groups, cur)
				cur = nil
			}
		case evText:
			cur = append(cur, i)
		}
	}
	if len(cur) > 0 {
		groups = append(groups, cur)
	}
	return groups
}

func paragraphTexts(xml string) []string {
	var out []string
	var b strings.Builder
	open := false
	flush := func() {
		if open {
			out = append(out, b.String())
		}
		b.Reset()
		open = false
	}
	for _, ev := range scan(xml) {
		switch ev.kind {
		case evParagraph:
			flush()
		case evText:
			b.WriteString(ev.text)
			open = true
		case evBreak:
			b.WriteByte('\n')
			open = true
		case evTab:
			b.WriteByte('\t')
			open = true
		}
	}
	flush()
	return out
}

// replaceInPart performs the run-aware substitution over one part. A token
// split across runs is matched on the paragraph text; the value lands in
// the run where the token starts and the consumed characters are trimmed
// from the following runs, so every run keeps its own formatting.
func replaceInPart(xml string, keys []string, values map[string]string) (string, int) {
	events := scan(xml)
	changed := make(map[int]bool)
	count := 0

	for _, group := range paragraphs(events) {
		for _, key := range keys {
			count += replaceInParagraph(events, group, key, values[key], changed)
		}
	}
	if count == 0 {
		return xml, 0
	}

	var b strings.Builder
	b.Grow(len(xml))
	cursor := 0
	for i, ev := range events {
		if !changed[i] {
			continue
		}
		b.WriteString(xml[cursor:ev.tagStart])
		b.WriteString(`<w:t xml:space="preserve">`)
		b.WriteString(encodeText(ev.text))
		cursor = ev.contentEnd
	}
	b.WriteString(xml[cursor:])
	return b.String(), count
}

func replaceInParagraph(events []event, group []int, key, value string, changed map[int]bool) int {
	count := 0
	from := 0
	for {
		var full strings.Builder
		offsets := make([]int, len(group))
		for n, idx := range group {
			offsets[n] = full.Len()
			full.WriteString(events[idx].text)
		}
		text := full.String()
		if from > len(text) {
			return count
		}
		pos := strings.Index(text[from:], key)
		if pos < 0 {
			return count
		}
		ms := from + pos
		me := ms + len(key)

		first := nodeAt(offsets, events, group, ms)
		last := nodeAt(offsets, events, group, me-1)

		fe := &events[group[first]]
		head := fe.text[:ms-offsets[first]]
		if first == last {
			fe.text = head + value + fe.text[me-offsets[first]:]
		} else {
			fe.text = head + value
			for n := first + 1; n < last; n++ {
				events[group[n]].text = ""
				changed[group[n]] = true
			}
			le := &events[group[last]]
			le.text = le.text[me-offsets[last]:]
			changed[group[last]] = true
		}
		changed[group[first]] = true

		count++
		from = ms + len(value)
	}
}

// nodeAt returns the position within group of the text node holding byte
// pos of the concatenated paragraph text.
func nodeAt(offsets []int, events []event, group []int, pos int) int {
	for n := len(offsets) - 1; n >= 0; n-- {
		if offsets[n] <= pos && pos < offsets[n]+len(events[group[n]].text) {
			return n
		}
	}
	return 0
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// encodeText escapes s for a <w:t> body. Newlines become <w:br/> and tabs
// <w:tab/> inside the same run.
func encodeText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	var b strings.Builder
	seg := 0
	for i := 0; i < len(s); i++ {
		var el string
		switch s[i] {
		case '\n':
			el = "<w:br/>"
		case '\t':
			el = "<w:tab/>"
		default:
			continue
		}
		b.WriteString(xmlEscaper.Replace(s[seg:i]))
		b.WriteString(`</w:t>` + el + `<w:t xml:space="preserve">`)
		seg = i + 1
	}
	b.WriteString(xmlEscaper.Replace(s[seg:]))
	return b.String()
}
