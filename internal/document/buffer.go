// Package document provides a line-addressable text buffer with a cursor.
//
// Positions use zero-based line indexes and byte offsets within the line.
package document

import (
	"fmt"
	"os"
	"strings"
)

// Position addresses a point in a Buffer.
type Position struct {
	Line int
	Ch   int
}

// Buffer holds note content as lines split on "\n". A trailing "\r" stays part
// of its line so CRLF content round-trips unchanged.
type Buffer struct {
	lines   []string
	cursor  Position
	changed bool
}

// New creates a Buffer from content.
func New(content string) *Buffer {
	return &Buffer{lines: strings.Split(content, "\n")}
}

// Load reads a note from disk into a Buffer.
func Load(path string) (*Buffer, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- note paths come from the CLI or vault walk
	if err != nil {
		return nil, err
	}
	return New(string(data)), nil
}

// Save writes the buffer to path, preserving the file mode when it exists.
func (b *Buffer) Save(path string) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	return os.WriteFile(path, []byte(b.String()), mode)
}

// LineCount returns the number of lines. An empty buffer has one empty line.
func (b *Buffer) LineCount() int { return len(b.lines) }

// Line returns the current content of line i, or "" when i is out of range.
func (b *Buffer) Line(i int) string {
	if i < 0 || i >= len(b.lines) {
		return ""
	}
	return b.lines[i]
}

// Cursor returns the current cursor position.
func (b *Buffer) Cursor() Position { return b.cursor }

// SetCursor moves the cursor. Positions are clamped to the buffer.
func (b *Buffer) SetCursor(p Position) {
	b.cursor = b.clamp(p)
}

// Changed reports whether any replacement has modified the buffer.
func (b *Buffer) Changed() bool { return b.changed }

// String joins the lines back into note content.
func (b *Buffer) String() string { return strings.Join(b.lines, "\n") }

// ReplaceRange replaces the text between from (inclusive) and to (exclusive) with
// text. The range may span lines and text may contain newlines.
func (b *Buffer) ReplaceRange(text string, from, to Position) error {
	start, err := b.offset(from)
	if err != nil {
		return fmt.Errorf("replace range start: %w", err)
	}
	end, err := b.offset(to)
	if err != nil {
		return fmt.Errorf("replace range end: %w", err)
	}
	if end < start {
		return fmt.Errorf("replace range: end %v before start %v", to, from)
	}

	content := b.String()
	if content[start:end] == text {
		return nil
	}
	var sb strings.Builder
	sb.Grow(len(content) - (end - start) + len(text))
	sb.WriteString(content[:start])
	sb.WriteString(text)
	sb.WriteString(content[end:])

	b.lines = strings.Split(sb.String(), "\n")
	b.changed = true
	b.cursor = b.clamp(b.cursor)
	return nil
}

// InsertLine inserts text as a new line before line i. i == LineCount() appends.
func (b *Buffer) InsertLine(i int, text string) error {
	if i < 0 || i > len(b.lines) {
		return fmt.Errorf("insert line %d: out of range (0-%d)", i, len(b.lines))
	}
	b.lines = append(b.lines, "")
	copy(b.lines[i+1:], b.lines[i:])
	b.lines[i] = text
	b.changed = true
	return nil
}

// RemoveLine deletes line i.
func (b *Buffer) RemoveLine(i int) error {
	if i < 0 || i >= len(b.lines) {
		return fmt.Errorf("remove line %d: out of range (0-%d)", i, len(b.lines)-1)
	}
	if len(b.lines) == 1 {
		b.lines[0] = ""
	} else {
		b.lines = append(b.lines[:i], b.lines[i+1:]...)
	}
	b.changed = true
	b.cursor = b.clamp(b.cursor)
	return nil
}

func (b *Buffer) offset(p Position) (int, error) {
	if p.Line < 0 || p.Line >= len(b.lines) {
		return 0, fmt.Errorf("line %d out of range (0-%d)", p.Line, len(b.lines)-1)
	}
	if p.Ch < 0 || p.Ch > len(b.lines[p.Line]) {
		return 0, fmt.Errorf("column %d out of range on line %d", p.Ch, p.Line)
	}
	off := 0
	for i := 0; i < p.Line; i++ {
		off += len(b.lines[i]) + 1
	}
	return off + p.Ch, nil
}

func (b *Buffer) clamp(p Position) Position {
	if p.Line < 0 {
		p.Line = 0
	}
	if p.Line >= len(b.lines) {
		p.Line = len(b.lines) - 1
	}
	if p.Ch < 0 {
		p.Ch = 0
	}
	if p.Ch > len(b.lines[p.Line]) {
		p.Ch = len(b.lines[p.Line])
	}
	return p
}
