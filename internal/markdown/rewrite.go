package markdown

import (
	"strings"

	"git.home.luguber.info/inful/imgup/internal/document"
)

// LineEditor is the document surface the rewriter needs.
type LineEditor interface {
	Line(i int) string
	ReplaceRange(text string, from, to document.Position) error
	SetCursor(p document.Position)
}

// ImageMarkdown renders a standard image embed.
func ImageMarkdown(tag, url string) string {
	return "![" + tag + "](" + url + ")"
}

// ReplaceFirst replaces the first occurrence of target on line with replacement.
//
// The line is re-read at call time, so earlier edits on the same line are taken
// into account. When the same literal text appears more than once, only the first
// remaining occurrence is replaced. It returns false if target is not on the line.
func ReplaceFirst(doc LineEditor, line int, target, replacement string) (bool, error) {
	if target == "" {
		return false, nil
	}
	ch := strings.Index(doc.Line(line), target)
	if ch == -1 {
		return false, nil
	}
	from := document.Position{Line: line, Ch: ch}
	to := document.Position{Line: line, Ch: ch + len(target)}
	doc.SetCursor(from)
	if err := doc.ReplaceRange(replacement, from, to); err != nil {
		return false, err
	}
	return true, nil
}
