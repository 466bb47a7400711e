// Package vault indexes the files under a notes root and resolves link paths to
// them the way note editors do: relative to the linking note, from the vault
// root, or by bare file name.
package vault

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// File is an indexed vault file.
type File struct {
	// RelativePath is slash-separated and relative to the vault root.
	RelativePath string
	// Name is the base file name including its extension.
	Name string
	// Extension is lowercase with a leading dot, or "" when the name has none.
	Extension string
}

// Index maps link paths to vault files. It is safe for concurrent use.
type Index struct {
	root    string
	exclude []string

	mu     sync.RWMutex
	files  []File
	byPath map[string]int
}

// NewIndex walks root, skipping paths matching any exclude glob, and returns
// the populated index.
func NewIndex(root string, exclude []string) (*Index, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve vault root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("vault root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("vault root %s is not a directory", abs)
	}
	ix := &Index{root: abs, exclude: exclude}
	if err := ix.Refresh(); err != nil {
		return nil, err
	}
	return ix, nil
}

// Root returns the absolute vault root.
func (ix *Index) Root() string { return ix.root }

// Len returns the number of indexed files.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.files)
}

// Refresh rebuilds the index from disk.
func (ix *Index) Refresh() error {
	var files []File
	err := walkVault(ix.root, ix.exclude, func(rel string) {
		files = append(files, newFile(rel))
	})
	if err != nil {
		return fmt.Errorf("index vault %s: %w", ix.root, err)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].RelativePath < files[j].RelativePath })

	byPath := make(map[string]int, len(files))
	for i, f := range files {
		byPath[foldKey(f.RelativePath)] = i
	}

	ix.mu.Lock()
	ix.files = files
	ix.byPath = byPath
	ix.mu.Unlock()
	return nil
}

// Lookup resolves linkpath as written in the note sourceID (slash-separated and
// relative to the root). Matching ignores case and Unicode normalization form.
//
// Resolution order: explicit relative paths ("./", "../"), vault-root paths,
// paths relative to the note's folder, then a file-name or path-suffix match.
// Suffix matches prefer the note's own folder, then the shortest path.
func (ix *Index) Lookup(linkpath, sourceID string) (File, bool) {
	target := cleanLinkpath(linkpath)
	if target == "" {
		return File{}, false
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	candidates := []string{target}
	if path.Ext(target) == "" {
		candidates = append(candidates, target+".md")
	}
	for _, cand := range candidates {
		if f, ok := ix.lookupOne(cand, sourceID); ok {
			return f, true
		}
	}
	return File{}, false
}

func (ix *Index) lookupOne(target, sourceID string) (File, bool) {
	sourceDir := path.Dir(filepath.ToSlash(sourceID))
	explicitRelative := strings.HasPrefix(target, "./") || strings.HasPrefix(target, "../")

	if explicitRelative {
		if f, ok := ix.byRelative(sourceDir, target); ok {
			return f, true
		}
	}
	if f, ok := ix.exact(strings.TrimPrefix(target, "/")); ok {
		return f, true
	}
	if !explicitRelative && !strings.HasPrefix(target, "/") {
		if f, ok := ix.byRelative(sourceDir, target); ok {
			return f, true
		}
	}
	return ix.bySuffix(strings.TrimPrefix(path.Clean(target), "/"), sourceDir)
}

func (ix *Index) exact(rel string) (File, bool) {
	i, ok := ix.byPath[foldKey(path.Clean(rel))]
	if !ok {
		return File{}, false
	}
	return ix.files[i], true
}

func (ix *Index) byRelative(sourceDir, target string) (File, bool) {
	joined := path.Join(sourceDir, target)
	if joined == ".." || strings.HasPrefix(joined, "../") {
		return File{}, false
	}
	return ix.exact(joined)
}

func (ix *Index) bySuffix(target, sourceDir string) (File, bool) {
	key := foldKey(target)
	var best []File
	for _, f := range ix.files {
		fk := foldKey(f.RelativePath)
		if fk == key || strings.HasSuffix(fk, "/"+key) {
			best = append(best, f)
		}
	}
	if len(best) == 0 {
		return File{}, false
	}
	localDir := path.Join(sourceDir, path.Dir(target))
	sort.SliceStable(best, func(i, j int) bool {
		iLocal := path.Dir(best[i].RelativePath) == localDir
		jLocal := path.Dir(best[j].RelativePath) == localDir
		if iLocal != jLocal {
			return iLocal
		}
		return len(best[i].RelativePath) < len(best[j].RelativePath)
	})
	return best[0], true
}

func newFile(rel string) File {
	name := path.Base(rel)
	return File{
		RelativePath: rel,
		Name:         name,
		Extension:    strings.ToLower(path.Ext(name)),
	}
}

// cleanLinkpath drops a "#heading" or "#^block" subpath and normalizes separators.
func cleanLinkpath(linkpath string) string {
	p := strings.TrimSpace(filepath.ToSlash(linkpath))
	if i := strings.IndexByte(p, '#'); i >= 0 {
		p = p[:i]
	}
	return strings.TrimSpace(p)
}

func foldKey(p string) string {
	return cases.Fold().String(norm.NFC.String(p))
}

// walkVault calls fn with the slash-separated relative path of every regular
// file under root that no exclude glob matches.
func walkVault(root string, exclude []string, fn func(rel string)) error {
	return fs.WalkDir(os.DirFS(root), ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == "." {
			return nil
		}
		if Excluded(p, exclude) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			fn(p)
		}
		return nil
	})
}
