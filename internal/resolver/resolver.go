// Package resolver turns the raw path of an image reference into a local asset.
package resolver

import (
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/imgup/internal/vault"
)

// Resolution is the outcome of resolving a raw path. It is one of Remote,
// IndexedAsset, FilesystemAsset or Unresolved.
type Resolution interface {
	resolution()
}

// Asset describes a local file that can be uploaded.
type Asset struct {
	AbsolutePath string
	Name         string
	// Extension is lowercase with a leading dot.
	Extension string
}

// Remote is a reference that already points at a URL.
type Remote struct{ URL string }

// IndexedAsset was found through the vault index.
type IndexedAsset struct{ Asset }

// FilesystemAsset was found as a literal filesystem path.
type FilesystemAsset struct{ Asset }

// Unresolved means neither the index nor the filesystem knows the path.
type Unresolved struct{}

func (Remote) resolution()          {}
func (IndexedAsset) resolution()    {}
func (FilesystemAsset) resolution() {}
func (Unresolved) resolution()      {}

// AssetOf returns the asset carried by r, if any.
func AssetOf(r Resolution) (Asset, bool) {
	switch v := r.(type) {
	case IndexedAsset:
		return v.Asset, true
	case FilesystemAsset:
		return v.Asset, true
	default:
		return Asset{}, false
	}
}

// IndexLookup resolves a link path written in a source note to a vault file.
type IndexLookup interface {
	Lookup(linkpath, sourceID string) (vault.File, bool)
}

// FileSystem is the read-only filesystem surface the resolver and the run need.
type FileSystem interface {
	Exists(path string) bool
	ReadFile(path string) ([]byte, error)
}

// OSFileSystem implements FileSystem on the local disk.
type OSFileSystem struct{}

// Exists reports whether path names a regular file.
func (OSFileSystem) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// ReadFile reads the whole file.
func (OSFileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path) // #nosec G304 -- asset paths come from resolution
}

// Resolver resolves raw reference paths against a vault index and the filesystem.
type Resolver struct {
	index IndexLookup
	fs    FileSystem
	root  string
}

// New creates a Resolver. index may be nil, in which case only the filesystem
// tier is consulted.
func New(index IndexLookup, fs FileSystem, root string) *Resolver {
	if fs == nil {
		fs = OSFileSystem{}
	}
	return &Resolver{index: index, fs: fs, root: root}
}

// Resolve classifies rawPath as written in the note sourceID. Wiki references
// are only resolved through the index.
func (r *Resolver) Resolve(rawPath string, wiki bool, sourceID string) Resolution {
	if IsRemote(rawPath) {
		return Remote{URL: rawPath}
	}

	if r.index != nil {
		if f, ok := r.index.Lookup(rawPath, sourceID); ok {
			return IndexedAsset{Asset{
				AbsolutePath: filepath.Join(r.root, filepath.FromSlash(f.RelativePath)),
				Name:         f.Name,
				Extension:    NormalizeExtension(f.Extension),
			}}
		}
	}

	if !wiki && r.fs.Exists(rawPath) {
		abs, err := filepath.Abs(rawPath)
		if err != nil {
			abs = rawPath
		}
		name := filepath.Base(rawPath)
		return FilesystemAsset{Asset{
			AbsolutePath: abs,
			Name:         name,
			Extension:    NormalizeExtension(filepath.Ext(name)),
		}}
	}

	return Unresolved{}
}

// IsRemote reports whether rawPath already points at a URL.
func IsRemote(rawPath string) bool {
	return strings.HasPrefix(rawPath, "http")
}

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".bmp":  true,
	".gif":  true,
	".svg":  true,
	".tiff": true,
	".webp": true,
}

// NormalizeExtension lowercases ext and ensures a leading dot.
func NormalizeExtension(ext string) string {
	if ext == "" {
		return ""
	}
	ext = strings.ToLower(ext)
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// IsImageExtension reports whether ext is an uploadable image type.
func IsImageExtension(ext string) bool {
	return imageExtensions[NormalizeExtension(ext)]
}
