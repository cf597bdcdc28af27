// Package filetable tracks every file currently open in the editor: its
// identity, its path on disk, the language it was classified as, and its
// in-memory buffer contents. A single mutex guards the whole table per
// SPEC_FULL.md §5's coarse-locking model; the tree cache is a distinct
// package with its own lock, always acquired after the file table's.
package filetable

import (
	"crypto/rand"
	"encoding/binary"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/TodayNightt/branchy-text-editor/internal/editorerr"
	"github.com/TodayNightt/branchy-text-editor/internal/langregistry"
)

// FileID identifies an open file for the lifetime of the editor process.
type FileID uint32

// OpenFile is a single open document: its identity, its location, the
// language it resolved to (nil when the extension is unrecognized — the
// file is still open and editable, just never parsed or highlighted), and
// its current buffer contents.
type OpenFile struct {
	ID        FileID
	Name      string
	Path      string
	Extension string
	Language  *langregistry.LanguageTag
	Buffer    []byte
}

// Table is the mutex-guarded collection of open files.
type Table struct {
	mu    sync.Mutex
	files map[FileID]*OpenFile

	hits   atomic.Int64
	misses atomic.Int64
}

// New returns an empty file table.
func New() *Table {
	return &Table{files: make(map[FileID]*OpenFile)}
}

// Load opens path from disk, classifying its language from its extension,
// assigning it a fresh FileID, and storing its initial buffer contents. A
// file already open at the same absolute path is returned as-is rather than
// reopened. same_name_exist (a display-name comparison) is computed by the
// caller, editorstate.OpenFile, not here.
func (t *Table) Load(path string) (*OpenFile, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, editorerr.PathWrap("resolve absolute path", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if existing := t.findByPathLocked(absPath); existing != nil {
		t.hits.Add(1)

		return existing, nil
	}

	t.misses.Add(1)

	content, err := os.ReadFile(absPath)
	if err != nil {
		return nil, editorerr.IO("read file", err)
	}

	ext := filepath.Ext(absPath)

	var langPtr *langregistry.LanguageTag
	if tag, ok := langregistry.ExtensionToLanguage(ext); ok {
		langPtr = &tag
	}

	id, err := t.freshIDLocked()
	if err != nil {
		return nil, err
	}

	file := &OpenFile{
		ID:        id,
		Name:      filepath.Base(absPath),
		Path:      absPath,
		Extension: ext,
		Language:  langPtr,
		Buffer:    content,
	}

	t.files[file.ID] = file

	return file, nil
}

// freshIDLocked generates a random, sparse FileID, regenerating on the rare
// collision with an already-open file or the reserved zero value. Matches
// SPEC_FULL.md §3's identity scheme (the original's
// `rand::thread_rng().next_u32()` with regenerate-on-collision), rather than
// a sequential counter, so ids are not predictable or reusable across opens.
// Must be called with t.mu held.
func (t *Table) freshIDLocked() (FileID, error) {
	var buf [4]byte

	for {
		if _, err := rand.Read(buf[:]); err != nil {
			return 0, editorerr.IO("generate file id", err)
		}

		id := FileID(binary.BigEndian.Uint32(buf[:]))
		if id == 0 {
			continue
		}

		if _, exists := t.files[id]; !exists {
			return id, nil
		}
	}
}

func (t *Table) findByPathLocked(absPath string) *OpenFile {
	for _, f := range t.files {
		if f.Path == absPath {
			return f
		}
	}

	return nil
}

// Get returns the open file for id, or NotFoundError.
func (t *Table) Get(id FileID) (*OpenFile, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	f, ok := t.files[id]
	if !ok {
		return nil, editorerr.NotFound("file not open")
	}

	// Return a defensive copy of the buffer; callers must not retain a
	// reference into table-owned memory past the call.
	return copyFile(f), nil
}

// ReadIntoBuffer re-reads id's file from disk, replaces the in-memory buffer
// with the file's on-disk contents, and returns a copy of the refreshed
// buffer. This discards any unsaved in-memory edits, matching SPEC_FULL.md
// §4.4's "reads the file from disk into the buffer" contract — distinct from
// Get/Snapshot, which only ever expose the buffer already held in memory.
func (t *Table) ReadIntoBuffer(id FileID) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	f, ok := t.files[id]
	if !ok {
		return nil, editorerr.NotFound("file not open")
	}

	content, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, editorerr.IO("read file", err)
	}

	f.Buffer = content

	out := make([]byte, len(content))
	copy(out, content)

	return out, nil
}

// CacheHits returns the cumulative count of Load calls resolved by reusing
// an already-open file. Implements observability.CacheStatsProvider.
func (t *Table) CacheHits() int64 { return t.hits.Load() }

// CacheMisses returns the cumulative count of Load calls that read a file
// from disk. Implements observability.CacheStatsProvider.
func (t *Table) CacheMisses() int64 { return t.misses.Load() }

// UpdateBuffer replaces the buffer contents for id wholesale with the
// complete new buffer the caller supplies; the file table itself has no
// notion of edit descriptors.
func (t *Table) UpdateBuffer(id FileID, content []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	f, ok := t.files[id]
	if !ok {
		return editorerr.NotFound("file not open")
	}

	f.Buffer = content

	return nil
}

// Save writes the current buffer contents to disk at the file's path.
func (t *Table) Save(id FileID) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	f, ok := t.files[id]
	if !ok {
		return editorerr.NotFound("file not open")
	}

	if err := os.WriteFile(f.Path, f.Buffer, 0o644); err != nil { //nolint:mnd
		return editorerr.IO("write file", err)
	}

	return nil
}

// Close removes id from the table. Closing an id that is not open is a
// no-op success: close_file is idempotent per SPEC_FULL.md §9.
func (t *Table) Close(id FileID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.files, id)
}

// Clear removes every open file, used by the reset command.
func (t *Table) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.files = make(map[FileID]*OpenFile)
}

// Snapshot returns a copy of every currently open file, primarily for
// get_file_system_info style introspection and tests.
func (t *Table) Snapshot() []*OpenFile {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]*OpenFile, 0, len(t.files))
	for _, f := range t.files {
		out = append(out, copyFile(f))
	}

	return out
}

func copyFile(f *OpenFile) *OpenFile {
	buf := make([]byte, len(f.Buffer))
	copy(buf, f.Buffer)

	return &OpenFile{
		ID:        f.ID,
		Name:      f.Name,
		Path:      f.Path,
		Extension: f.Extension,
		Language:  f.Language,
		Buffer:    buf,
	}
}
