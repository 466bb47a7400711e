package vault

import (
	"fmt"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// Excluded reports whether the slash-separated rel path matches any pattern.
// A directory pattern such as ".obsidian/**" also matches the directory itself.
func Excluded(rel string, patterns []string) bool {
	for _, pattern := range patterns {
		if match, err := doublestar.Match(pattern, rel); err == nil && match {
			return true
		}
		if match, err := doublestar.Match(pattern, rel+"/"); err == nil && match {
			return true
		}
	}
	return false
}

// Included reports whether rel matches at least one pattern.
func Included(rel string, patterns []string) bool {
	for _, pattern := range patterns {
		if match, err := doublestar.Match(pattern, rel); err == nil && match {
			return true
		}
	}
	return false
}

// ValidatePatterns checks glob syntax.
func ValidatePatterns(patterns []string) error {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid glob pattern %q", p)
		}
	}
	return nil
}

// Notes lists the notes under root matching include and not exclude, as
// absolute paths in lexical order.
func Notes(root string, include, exclude []string) ([]string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve vault root: %w", err)
	}
	var notes []string
	err = walkVault(abs, exclude, func(rel string) {
		if Included(rel, include) {
			notes = append(notes, filepath.Join(abs, filepath.FromSlash(rel)))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("list notes under %s: %w", abs, err)
	}
	return notes, nil
}

// SourceID returns the slash-separated path of note relative to root, the
// identity the index uses to resolve relative links.
func SourceID(root, note string) string {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return filepath.ToSlash(note)
	}
	absNote, err := filepath.Abs(note)
	if err != nil {
		return filepath.ToSlash(note)
	}
	rel, err := filepath.Rel(absRoot, absNote)
	if err != nil {
		return filepath.ToSlash(absNote)
	}
	return filepath.ToSlash(rel)
}
