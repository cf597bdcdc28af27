// Package fsinfo implements get_file_system_info's recursive directory
// listing, supplemented from the original Tauri backend's files_api.rs per
// SPEC_FULL.md §12: a DirectoryItem tree with a depth cutoff, every path
// absolutized, human-readable sizes for display, and a best-effort
// secondary language guess for entries the canonical extension table can't
// classify.
package fsinfo

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/src-d/enry/v2"

	"github.com/TodayNightt/branchy-text-editor/internal/editorerr"
	"github.com/TodayNightt/branchy-text-editor/internal/langregistry"
)

// explicitDepth is the depth cutoff used when the caller names a directory
// directly; defaultDepth is used when the call defaults to the user's home
// directory, per SPEC_FULL.md §6.
const (
	explicitDepth = 4
	defaultDepth  = 2
)

// DirectoryItem is one entry in the listing tree.
type DirectoryItem struct {
	IsFile   bool
	Name     string
	Path     string
	Size     string
	Language string
	Children []DirectoryItem
}

// Info is the get_file_system_info result: the resolved current directory
// plus its listing.
type Info struct {
	CurrentDirectory string
	Entries          []DirectoryItem
}

// Get lists dir (or the user's home directory when dir is empty) up to the
// appropriate depth cutoff.
func Get(dir string) (Info, error) {
	depth := explicitDepth

	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Info{}, editorerr.PathWrap("resolve home directory", err)
		}

		dir = home
		depth = defaultDepth
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return Info{}, editorerr.PathWrap("resolve absolute path", err)
	}

	entries, err := listDir(absDir, depth)
	if err != nil {
		return Info{}, err
	}

	return Info{CurrentDirectory: absDir, Entries: entries}, nil
}

func listDir(dir string, depth int) ([]DirectoryItem, error) {
	if depth <= 0 {
		return nil, nil
	}

	raw, err := os.ReadDir(dir)
	if err != nil {
		return nil, editorerr.IO("read directory", err)
	}

	items := make([]DirectoryItem, 0, len(raw))

	for _, d := range raw {
		absPath, err := filepath.Abs(filepath.Join(dir, d.Name()))
		if err != nil {
			continue
		}

		item := DirectoryItem{
			IsFile: !d.IsDir(),
			Name:   d.Name(),
			Path:   absPath,
		}

		if d.IsDir() {
			children, err := listDir(absPath, depth-1)
			if err != nil {
				continue
			}

			item.Children = children
		} else {
			info, err := d.Info()
			if err == nil {
				item.Size = humanize.Bytes(uint64(info.Size())) //nolint:gosec
			}

			item.Language = classify(absPath)
		}

		items = append(items, item)
	}

	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })

	return items, nil
}

// classify returns the canonical LanguageTag name when the extension is
// recognized; otherwise it falls back to enry's content-sniffing guess,
// display-only, and never feeds back into extension_to_language.
func classify(path string) string {
	if tag, ok := langregistry.ExtensionToLanguage(filepath.Ext(path)); ok {
		return tag.String()
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return ""
	}

	return enry.GetLanguage(filepath.Base(path), content)
}
