package markdown

import (
	"bytes"
	"sort"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// CodeBlockLines returns the zero-based indexes of lines that belong to fenced or
// indented code blocks, fence lines included.
//
// Line indexes match a split of body on "\n".
func CodeBlockLines(body []byte) map[int]bool {
	idx := newLineIndex(body)

	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(body))

	out := make(map[int]bool)
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		if n.Type() == gmast.TypeBlock {
			idx.advance(n.Lines())
		}
		switch node := n.(type) {
		case *gmast.FencedCodeBlock:
			idx.markFenced(node, out)
			return gmast.WalkSkipChildren, nil
		case *gmast.CodeBlock:
			idx.markSegments(node.Lines(), out)
			return gmast.WalkSkipChildren, nil
		}
		return gmast.WalkContinue, nil
	})
	return out
}

type lineIndex struct {
	body   []byte
	starts []int
	// next is one past the last line claimed by a block seen so far.
	next int
}

func newLineIndex(body []byte) *lineIndex {
	starts := []int{0}
	for i, c := range body {
		if c == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &lineIndex{body: body, starts: starts}
}

// lineOf returns the line containing byte offset.
func (l *lineIndex) lineOf(offset int) int {
	return sort.SearchInts(l.starts, offset+1) - 1
}

func (l *lineIndex) advance(segs *text.Segments) {
	if segs.Len() == 0 {
		return
	}
	if last := l.lineOf(segs.At(segs.Len()-1).Start) + 1; last > l.next {
		l.next = last
	}
}

func (l *lineIndex) markSegments(segs *text.Segments, out map[int]bool) {
	for i := 0; i < segs.Len(); i++ {
		out[l.lineOf(segs.At(i).Start)] = true
	}
}

func (l *lineIndex) markFenced(node *gmast.FencedCodeBlock, out map[int]bool) {
	segs := node.Lines()
	var open int
	switch {
	case segs.Len() > 0:
		open = l.lineOf(segs.At(0).Start) - 1
	case node.Info != nil:
		open = l.lineOf(node.Info.Segment.Start)
	default:
		// An empty fence without an info string carries no positions; its
		// opening is the first fence line after the previous block.
		open = -1
		for line := l.next; line < len(l.starts); line++ {
			if l.isFence(line) {
				open = line
				break
			}
		}
	}
	if open < 0 {
		return
	}
	l.markSegments(segs, out)
	out[open] = true

	closing := open + 1
	if segs.Len() > 0 {
		closing = l.lineOf(segs.At(segs.Len()-1).Start) + 1
	}
	// An unclosed fence runs to the end of the document.
	if closing < len(l.starts) && l.isFence(closing) {
		out[closing] = true
	}
	if closing+1 > l.next {
		l.next = closing + 1
	}
}

func (l *lineIndex) isFence(line int) bool {
	end := len(l.body)
	if line+1 < len(l.starts) {
		end = l.starts[line+1]
	}
	trimmed := bytes.TrimLeft(l.body[l.starts[line]:end], " \t>")
	return bytes.HasPrefix(trimmed, []byte("```")) || bytes.HasPrefix(trimmed, []byte("~~~"))
}
