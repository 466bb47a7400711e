package markdown

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScanLine_StandardLink(t *testing.T) {
	res := ScanLine("See ![Diagram](img/diagram.png) here", 4)
	require.Equal(t, 0, res.Dropped)
	require.Len(t, res.References, 1)

	ref := res.References[0]
	require.Equal(t, "Diagram", ref.Tag)
	require.Equal(t, "img/diagram.png", ref.RawPath)
	require.Equal(t, SyntaxStandard, ref.Syntax)
	require.False(t, ref.IsWiki())
	require.Equal(t, "![Diagram](img/diagram.png)", ref.SourceText)
	require.Equal(t, 4, ref.Line)
	require.Equal(t, 4, ref.StartColumn)
	require.Equal(t, 4+len(ref.SourceText), ref.EndColumn)
}

func TestScanLine_StandardPathIsDecoded(t *testing.T) {
	res := ScanLine("![](my%20photo.png)", 0)
	require.Len(t, res.References, 1)
	require.Equal(t, "my photo.png", res.References[0].RawPath)
	require.Equal(t, "![](my%20photo.png)", res.References[0].SourceText)
	require.Equal(t, "", res.References[0].Tag)
}

func TestScanLine_StandardAngleBracketsAndTitle(t *testing.T) {
	res := ScanLine(`![a](<my photo.png>) ![b](c.png "Caption")`, 0)
	require.Len(t, res.References, 2)
	require.Equal(t, "my photo.png", res.References[0].RawPath)
	require.Equal(t, "c.png", res.References[1].RawPath)
}

func TestScanLine_WikiLinks(t *testing.T) {
	res := ScanLine("![[photo.png]] and ![[sub/pic%20x.jpg|Caption]]", 2)
	require.Equal(t, 0, res.Dropped)
	require.Len(t, res.References, 2)

	require.Equal(t, "photo.png", res.References[0].RawPath)
	require.Equal(t, "", res.References[0].Tag)
	require.True(t, res.References[0].IsWiki())

	// Wiki paths are used as written.
	require.Equal(t, "sub/pic%20x.jpg", res.References[1].RawPath)
	require.Equal(t, "Caption", res.References[1].Tag)
	require.Equal(t, "![[sub/pic%20x.jpg|Caption]]", res.References[1].SourceText)
}

func TestScanLine_StandardBeforeWikiRegardlessOfPosition(t *testing.T) {
	res := ScanLine("![[first.png]] ![](second.png)", 0)
	require.Len(t, res.References, 2)
	require.Equal(t, "second.png", res.References[0].RawPath)
	require.Equal(t, SyntaxStandard, res.References[0].Syntax)
	require.Equal(t, "first.png", res.References[1].RawPath)
	require.Equal(t, SyntaxWiki, res.References[1].Syntax)
}

func TestScanLine_DroppedMatches(t *testing.T) {
	res := ScanLine("![]() ![](bad%zzescape.png) ![[]] ![](ok.png)", 0)
	require.Equal(t, 3, res.Dropped)
	require.Len(t, res.References, 1)
	require.Equal(t, "ok.png", res.References[0].RawPath)
	require.Equal(t, 4, res.Total())
}

func TestScanLine_IgnoresNonImageLinks(t *testing.T) {
	res := ScanLine("[doc](doc.md) [[Wiki Page]] plain text", 0)
	require.Equal(t, 0, res.Total())
}

func TestScanLine_RemoteLinksAreStillMatched(t *testing.T) {
	res := ScanLine("![x](http://example.com/a.png)", 0)
	require.Len(t, res.References, 1)
	require.Equal(t, "http://example.com/a.png", res.References[0].RawPath)
}

func TestSyntaxString(t *testing.T) {
	require.Equal(t, "standard", SyntaxStandard.String())
	require.Equal(t, "wiki", SyntaxWiki.String())
}
