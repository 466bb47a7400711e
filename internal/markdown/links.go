package markdown

import (
	"net/url"
	"regexp"
	"strings"
)

// Syntax identifies which surface form produced a LinkReference.
type Syntax int

const (
	// SyntaxStandard is ![tag](path).
	SyntaxStandard Syntax = iota
	// SyntaxWiki is ![[path]] or ![[path|tag]].
	SyntaxWiki
)

func (s Syntax) String() string {
	if s == SyntaxWiki {
		return "wiki"
	}
	return "standard"
}

// LinkReference is one image embed found on a line.
//
// StartColumn and EndColumn are byte offsets into the line, EndColumn exclusive.
type LinkReference struct {
	Tag         string
	RawPath     string
	Syntax      Syntax
	SourceText  string
	Line        int
	StartColumn int
	EndColumn   int
}

// IsWiki reports whether the reference used the wiki syntax.
func (r LinkReference) IsWiki() bool { return r.Syntax == SyntaxWiki }

// ScanResult holds the references found on a line plus the number of matches
// that could not be turned into a reference.
type ScanResult struct {
	References []LinkReference
	Dropped    int
}

// Total returns every match seen on the line, dropped ones included.
func (s ScanResult) Total() int { return len(s.References) + s.Dropped }

var (
	standardImagePattern = regexp.MustCompile(`!\[([^\]]*)\]\(([^)]*)\)`)
	wikiImagePattern     = regexp.MustCompile(`!\[\[([^\]|]*)(\|([^\]]*))?\]\]`)
)

// ScanLine extracts image references from a single line. Standard matches come
// first in left-to-right order, followed by wiki matches.
func ScanLine(line string, lineIndex int) ScanResult {
	var res ScanResult

	for _, m := range standardImagePattern.FindAllStringSubmatchIndex(line, -1) {
		ref, ok := standardReference(line, m)
		if !ok {
			res.Dropped++
			continue
		}
		ref.Line = lineIndex
		res.References = append(res.References, ref)
	}

	for _, m := range wikiImagePattern.FindAllStringSubmatchIndex(line, -1) {
		ref, ok := wikiReference(line, m)
		if !ok {
			res.Dropped++
			continue
		}
		ref.Line = lineIndex
		res.References = append(res.References, ref)
	}

	return res
}

func standardReference(line string, m []int) (LinkReference, bool) {
	if len(m) != 6 {
		return LinkReference{}, false
	}
	dest := strings.TrimSpace(group(line, m, 2))
	dest = stripTitle(dest)
	if strings.HasPrefix(dest, "<") && strings.HasSuffix(dest, ">") {
		dest = dest[1 : len(dest)-1]
	}
	if dest == "" {
		return LinkReference{}, false
	}
	decoded, err := url.PathUnescape(dest)
	if err != nil {
		return LinkReference{}, false
	}
	return LinkReference{
		Tag:         group(line, m, 1),
		RawPath:     decoded,
		Syntax:      SyntaxStandard,
		SourceText:  line[m[0]:m[1]],
		StartColumn: m[0],
		EndColumn:   m[1],
	}, true
}

func wikiReference(line string, m []int) (LinkReference, bool) {
	if len(m) != 8 {
		return LinkReference{}, false
	}
	path := group(line, m, 1)
	if strings.TrimSpace(path) == "" {
		return LinkReference{}, false
	}
	return LinkReference{
		Tag:         group(line, m, 3),
		RawPath:     path,
		Syntax:      SyntaxWiki,
		SourceText:  line[m[0]:m[1]],
		StartColumn: m[0],
		EndColumn:   m[1],
	}, true
}

// group returns capture group n, or "" when it did not participate.
func group(s string, m []int, n int) string {
	start, end := m[2*n], m[2*n+1]
	if start < 0 {
		return ""
	}
	return s[start:end]
}

// stripTitle removes a trailing CommonMark title: path "Title".
func stripTitle(dest string) string {
	if !strings.HasSuffix(dest, `"`) {
		return dest
	}
	if before, _, ok := strings.Cut(dest, ` "`); ok {
		return strings.TrimSpace(before)
	}
	return dest
}
