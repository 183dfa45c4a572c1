package text

import (
	"unicode"

	"golang.org/x/text/width"
)

// line is a run of items on one row. newline is the face of the explicit
// newline that ended the line, used for the height of empty lines.
type line struct {
	items   []item
	newline *faceEntry
}

// breakLines splits items into lines on explicit newlines and, unless the
// mode is no-wrap or the width is unbounded, where a line would overflow.
func breakLines(items []item, mode LineBreak, bounds Bounds) []line {
	if len(items) == 0 {
		return nil
	}

	wrap := mode != LineBreakNoWrap && !bounds.IsUnboundedWidth()

	var (
		lines     []line
		cur       []item
		pen       float32
		lastBreak = -1
	)

	flush := func(nl *faceEntry) {
		lines = append(lines, line{items: cur, newline: nl})
		cur = nil
		pen = 0
		lastBreak = -1
	}

	for _, it := range items {
		if it.r == '\n' {
			flush(it.face)
			continue
		}

		if wrap && len(cur) > 0 && !unicode.IsSpace(it.r) && pen+it.kern+it.advance > bounds.Width {
			if mode == LineBreakWordBoundary && lastBreak >= 0 {
				tail := append([]item(nil), cur[lastBreak+1:]...)
				cur = cur[:lastBreak+1]
				flush(nil)
				cur = tail
				pen = penWidth(cur)
				lastBreak = findBreak(cur)
			} else {
				flush(nil)
			}
		}

		if len(cur) > 0 {
			pen += it.kern
		}
		cur = append(cur, it)
		pen += it.advance

		if isBreakOpportunity(it.r) {
			lastBreak = len(cur) - 1
		}
	}
	flush(nil)

	return lines
}

// isBreakOpportunity reports whether a line may wrap after r. East Asian wide
// characters are written without spaces, so each one is a break point.
func isBreakOpportunity(r rune) bool {
	if unicode.IsSpace(r) {
		return true
	}
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return true
	}
	return false
}

func findBreak(items []item) int {
	for i := len(items) - 1; i >= 0; i-- {
		if isBreakOpportunity(items[i].r) {
			return i
		}
	}
	return -1
}

func penWidth(items []item) float32 {
	var w float32
	for i, it := range items {
		if i > 0 {
			w += it.kern
		}
		w += it.advance
	}
	return w
}

// visibleWidth is the pen width without trailing whitespace.
func visibleWidth(items []item) float32 {
	end := len(items)
	for end > 0 && unicode.IsSpace(items[end-1].r) {
		end--
	}
	return penWidth(items[:end])
}
