// Package format provides shared text formatting utilities for terminal output.
package format

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

// escapeRegex matches SGR color sequences and OSC 8 hyperlink markers.
var escapeRegex = regexp.MustCompile(`\x1b\[[0-9;]*m|\x1b\]8;[^\x1b\a]*(?:\x1b\\|\a)`)

// Ellipsis marks truncated text.
const Ellipsis = "…"

// StripAnsi removes color and hyperlink escape sequences from a string.
func StripAnsi(s string) string {
	return escapeRegex.ReplaceAllString(s, "")
}

// DisplayWidth returns the visible width of a string in terminal columns.
func DisplayWidth(s string) int {
	return runewidth.StringWidth(StripAnsi(s))
}

// TruncateToWidth truncates s to fit within maxWidth display columns and
// returns it with its visible width. Escape sequences are kept; when text is
// cut an ellipsis and a color reset are appended.
func TruncateToWidth(s string, maxWidth int) (string, int) {
	width := DisplayWidth(s)
	if width <= maxWidth {
		return s, width
	}
	if maxWidth <= 0 {
		return "", 0
	}

	target := maxWidth - runewidth.StringWidth(Ellipsis)
	matches := escapeRegex.FindAllStringIndex(s, -1)

	var b strings.Builder
	visible, pos, m := 0, 0, 0
	for pos < len(s) {
		if m < len(matches) && pos == matches[m][0] {
			b.WriteString(s[matches[m][0]:matches[m][1]])
			pos = matches[m][1]
			m++
			continue
		}
		r, size := utf8.DecodeRuneInString(s[pos:])
		rw := runewidth.RuneWidth(r)
		if visible+rw > target {
			break
		}
		b.WriteString(s[pos : pos+size])
		visible += rw
		pos += size
	}

	b.WriteString(Ellipsis)
	if len(matches) > 0 {
		b.WriteString("\033[0m")
	}
	return b.String(), visible + runewidth.StringWidth(Ellipsis)
}

// PadRight pads a string with spaces to reach the target visible width.
func PadRight(s string, visibleWidth, targetWidth int) string {
	if visibleWidth >= targetWidth {
		return s
	}
	return s + strings.Repeat(" ", targetWidth-visibleWidth)
}

// Hyperlink wraps text in an OSC 8 terminal hyperlink to url.
func Hyperlink(url, text string) string {
	if url == "" {
		return text
	}
	return "\x1b]8;;" + url + "\x1b\\" + text + "\x1b]8;;\x1b\\"
}
