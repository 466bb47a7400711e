package resolver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/imgup/internal/vault"
)

type stubIndex map[string]vault.File

func (s stubIndex) Lookup(linkpath, _ string) (vault.File, bool) {
	f, ok := s[linkpath]
	return f, ok
}

type stubFS map[string][]byte

func (s stubFS) Exists(path string) bool { _, ok := s[path]; return ok }

func (s stubFS) ReadFile(path string) ([]byte, error) {
	data, ok := s[path]
	if !ok {
		return nil, os.ErrNotExist
	}
	return data, nil
}

func TestResolve_Remote(t *testing.T) {
	r := New(stubIndex{}, stubFS{}, "/vault")
	for _, p := range []string{"http://example.com/a.png", "https://example.com/a.png"} {
		res := r.Resolve(p, false, "note.md")
		require.Equal(t, Remote{URL: p}, res)
		_, ok := AssetOf(res)
		require.False(t, ok)
	}
}

func TestResolve_IndexedAsset(t *testing.T) {
	idx := stubIndex{"photo.png": {RelativePath: "img/photo.png", Name: "photo.png", Extension: ".PNG"}}
	r := New(idx, stubFS{}, "/vault")

	for _, wiki := range []bool{true, false} {
		res := r.Resolve("photo.png", wiki, "note.md")
		asset, ok := AssetOf(res)
		require.True(t, ok)
		require.IsType(t, IndexedAsset{}, res)
		require.Equal(t, filepath.Join("/vault", "img", "photo.png"), asset.AbsolutePath)
		require.Equal(t, "photo.png", asset.Name)
		require.Equal(t, ".png", asset.Extension)
	}
}

func TestResolve_FilesystemFallbackOnlyForStandardLinks(t *testing.T) {
	fs := stubFS{"/tmp/shots/Screen.JPG": []byte("x")}
	r := New(stubIndex{}, fs, "/vault")

	res := r.Resolve("/tmp/shots/Screen.JPG", false, "note.md")
	require.IsType(t, FilesystemAsset{}, res)
	asset, _ := AssetOf(res)
	require.Equal(t, "/tmp/shots/Screen.JPG", asset.AbsolutePath)
	require.Equal(t, "Screen.JPG", asset.Name)
	require.Equal(t, ".jpg", asset.Extension)

	require.Equal(t, Unresolved{}, r.Resolve("/tmp/shots/Screen.JPG", true, "note.md"))
}

func TestResolve_IndexWinsOverFilesystem(t *testing.T) {
	idx := stubIndex{"a.png": {RelativePath: "a.png", Name: "a.png", Extension: ".png"}}
	r := New(idx, stubFS{"a.png": nil}, "/vault")
	require.IsType(t, IndexedAsset{}, r.Resolve("a.png", false, ""))
}

func TestResolve_Unresolved(t *testing.T) {
	r := New(nil, stubFS{}, "/vault")
	require.Equal(t, Unresolved{}, r.Resolve("missing.png", false, "note.md"))
}

func TestResolve_RealFilesystem(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "pic.webp")
	require.NoError(t, os.WriteFile(p, []byte("webp"), 0o600))

	r := New(nil, nil, dir)
	res := r.Resolve(p, false, "")
	require.IsType(t, FilesystemAsset{}, res)

	// Directories never resolve.
	require.Equal(t, Unresolved{}, r.Resolve(dir, false, ""))

	data, err := OSFileSystem{}.ReadFile(p)
	require.NoError(t, err)
	require.Equal(t, "webp", string(data))
}

func TestIsImageExtension(t *testing.T) {
	for _, ext := range []string{".png", ".JPG", "jpeg", ".bmp", ".gif", ".svg", ".TIFF", ".webp"} {
		require.True(t, IsImageExtension(ext), ext)
	}
	for _, ext := range []string{".txt", ".md", "", ".pdf", ".tif"} {
		require.False(t, IsImageExtension(ext), ext)
	}
}
