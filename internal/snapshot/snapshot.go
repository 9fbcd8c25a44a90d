// Package snapshot builds a read-only view of a project tree for rule
// evaluation. Every file is read at most once per scan, content reads are
// size-capped, and unreadable files degrade to markers instead of errors.
package snapshot

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DefaultMaxFileBytes caps per-file content reads. Files above the cap stay
// in the inventory with empty content so detectors see them as non-matching
// evidence, not as errors.
const DefaultMaxFileBytes = 256 * 1024

// File is one entry of the snapshot. Path is slash-separated and relative
// to the root.
type File struct {
	Path       string
	Size       int64
	Text       bool
	Oversize   bool
	Unreadable bool
	Content    string
}

// Name returns the file's base name.
func (f File) Name() string {
	return filepath.Base(f.Path)
}

// Snapshot is the immutable project view shared by all detectors. It is
// safe for concurrent reads; nothing mutates it after Collect returns.
type Snapshot struct {
	Root    string
	Files   []File
	TopDirs []string

	byPath map[string]int
}

// Options tune collection. The zero value selects the defaults.
type Options struct {
	// MaxFileBytes caps content reads; zero selects DefaultMaxFileBytes.
	MaxFileBytes int64
	// SkipDirs are directory names excluded anywhere in the tree, in
	// addition to hidden directories.
	SkipDirs []string
}

var defaultSkipDirs = []string{
	"node_modules", "vendor", "dist", "build",
	"__pycache__", "venv", "target",
}

// Collect walks the tree once and produces the snapshot. Hidden directories
// are skipped; hidden files (.env, .gitignore) are kept because they are
// exactly what several rules inspect. Individual unreadable files never
// abort the walk.
func Collect(root string, opts Options) (*Snapshot, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("snapshot: %s is not a directory", root)
	}

	maxBytes := opts.MaxFileBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxFileBytes
	}
	skip := map[string]bool{}
	for _, d := range defaultSkipDirs {
		skip[d] = true
	}
	for _, d := range opts.SkipDirs {
		skip[d] = true
	}

	snap := &Snapshot{Root: root, byPath: map[string]int{}}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if path == root {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			name := d.Name()
			if strings.HasPrefix(name, ".") || skip[name] {
				return filepath.SkipDir
			}
			if !strings.Contains(rel, "/") {
				snap.TopDirs = append(snap.TopDirs, name)
			}
			return nil
		}

		snap.add(readFile(path, rel, maxBytes))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	return snap, nil
}

func readFile(path, rel string, maxBytes int64) File {
	f := File{Path: rel}
	info, err := os.Stat(path)
	if err != nil {
		f.Unreadable = true
		return f
	}
	f.Size = info.Size()
	if f.Size > maxBytes {
		f.Oversize = true
		return f
	}

	h, err := os.Open(path)
	if err != nil {
		f.Unreadable = true
		return f
	}
	defer h.Close()
	data, err := io.ReadAll(io.LimitReader(h, maxBytes))
	if err != nil {
		f.Unreadable = true
		return f
	}

	f.Text = isText(data)
	if f.Text {
		f.Content = string(data)
	}
	return f
}

func (s *Snapshot) add(f File) {
	s.byPath[f.Path] = len(s.Files)
	s.Files = append(s.Files, f)
}

// Lookup returns the file at a slash-relative path.
func (s *Snapshot) Lookup(rel string) (File, bool) {
	i, ok := s.byPath[rel]
	if !ok {
		return File{}, false
	}
	return s.Files[i], true
}

// HasTopDir reports whether a top-level directory with the given name exists.
func (s *Snapshot) HasTopDir(name string) bool {
	for _, d := range s.TopDirs {
		if strings.EqualFold(d, name) {
			return true
		}
	}
	return false
}

// isText applies the git heuristic: no NUL byte in the leading window.
func isText(data []byte) bool {
	window := data
	if len(window) > 8000 {
		window = window[:8000]
	}
	for _, b := range window {
		if b == 0 {
			return false
		}
	}
	return true
}
