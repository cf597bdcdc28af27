// Package editorstate is the command surface's backing implementation: it
// wires the file table, tree cache, parser pool, and query registry
// together behind the two-coarse-lock discipline from SPEC_FULL.md §5 and
// exposes one method per §6 command. Every method is fallible and returns
// a plain Go error; the command surface layer (internal/mcpsurface,
// cmd/branchy) converts that via editorerr.ToResponse into the wire-format
// "Success(T) | Error(kind::message)" shape.
package editorstate

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/TodayNightt/branchy-text-editor/internal/editorerr"
	"github.com/TodayNightt/branchy-text-editor/internal/filetable"
	"github.com/TodayNightt/branchy-text-editor/internal/highlight"
	"github.com/TodayNightt/branchy-text-editor/internal/langregistry"
	"github.com/TodayNightt/branchy-text-editor/internal/parserpool"
	"github.com/TodayNightt/branchy-text-editor/internal/queryregistry"
	"github.com/TodayNightt/branchy-text-editor/internal/treecache"
	"github.com/TodayNightt/branchy-text-editor/pkg/observability"
)

// RangePoint is the byte-indexed, 0-based sub-range a set_highlights call
// may scope its request to, per SPEC_FULL.md §6.
type RangePoint struct {
	StartRow uint32
	StartCol uint32
	EndRow   uint32
	EndCol   uint32
}

// OpenResult is the payload for a successful open_file command.
type OpenResult struct {
	ID            filetable.FileID
	Name          string
	Path          string
	Language      *langregistry.LanguageTag
	SameNameExist bool
}

// TokensLegend is the wire shape for get_tokens_legend.
type TokensLegend struct {
	TokenTypes []string
	Modifiers  []string
}

// State owns the file table, tree cache, parser pool, and query registry,
// and enforces the fixed file-table-then-tree-cache lock acquisition order
// at the command level. The file table and tree cache packages guard their
// own internal maps independently; the mutexes here are the coarse,
// command-level locks SPEC_FULL.md §5 describes, acquired with TryLock so
// a contended command surfaces LockContended instead of blocking.
type State struct {
	fileTableMu sync.Mutex
	treeCacheMu sync.Mutex

	files   *filetable.Table
	trees   *treecache.Cache
	parsers *parserpool.Pool
	queries *queryregistry.Registry
	metrics *observability.AnalysisMetrics
}

// New builds a State with its own query registry, compiling every
// supported language's query once.
func New() (*State, error) {
	queries, err := queryregistry.New()
	if err != nil {
		return nil, fmt.Errorf("build query registry: %w", err)
	}

	return &State{
		files:   filetable.New(),
		trees:   treecache.New(),
		parsers: parserpool.New(),
		queries: queries,
	}, nil
}

// SetMetrics installs metrics to record parse counts and durations on
// subsequent reparses. A nil State.metrics (the default from New) makes
// reparse's RecordRun calls no-ops, since AnalysisMetrics.RecordRun is
// nil-receiver safe.
func (s *State) SetMetrics(metrics *observability.AnalysisMetrics) {
	s.metrics = metrics
}

// FileCacheStats exposes the file table's cumulative hit/miss counters for
// observability.RegisterCacheMetrics.
func (s *State) FileCacheStats() observability.CacheStatsProvider { return s.files }

// TreeCacheStats exposes the tree cache's cumulative hit/miss counters for
// observability.RegisterCacheMetrics.
func (s *State) TreeCacheStats() observability.CacheStatsProvider { return s.trees }

func (s *State) lockFileTable() error {
	if !s.fileTableMu.TryLock() {
		return editorerr.LockContended("file table busy")
	}

	return nil
}

func (s *State) lockTreeCache() error {
	if !s.treeCacheMu.TryLock() {
		return editorerr.LockContended("tree cache busy")
	}

	return nil
}

// OpenFile resolves path, classifies its language, and registers it in the
// file table. same_name_exist is computed by scanning currently-open files
// for a matching display name, per SPEC_FULL.md §12.
func (s *State) OpenFile(path string) (OpenResult, error) {
	if err := s.lockFileTable(); err != nil {
		return OpenResult{}, err
	}
	defer s.fileTableMu.Unlock()

	before := s.files.Snapshot()

	file, err := s.files.Load(path)
	if err != nil {
		return OpenResult{}, err
	}

	sameName := false

	for _, f := range before {
		if f.Name == file.Name && f.ID != file.ID {
			sameName = true

			break
		}
	}

	return OpenResult{
		ID:            file.ID,
		Name:          file.Name,
		Path:          file.Path,
		Language:      file.Language,
		SameNameExist: sameName,
	}, nil
}

// CloseFile removes id from the file table and evicts any cached tree.
// Idempotent: closing an id that was never open is a silent success, per
// SPEC_FULL.md §8 scenario E.
func (s *State) CloseFile(id filetable.FileID) error {
	if err := s.lockFileTable(); err != nil {
		return err
	}
	defer s.fileTableMu.Unlock()

	s.files.Close(id)

	if err := s.lockTreeCache(); err != nil {
		return err
	}
	defer s.treeCacheMu.Unlock()

	s.trees.Evict(id)

	return nil
}

// GetSourceCodeIfAny returns the current buffer for id, reparsing it first
// when the file's language has an installed parser.
func (s *State) GetSourceCodeIfAny(ctx context.Context, id filetable.FileID) ([]byte, error) {
	if err := s.lockFileTable(); err != nil {
		return nil, err
	}

	file, err := s.files.Get(id)
	s.fileTableMu.Unlock()

	if err != nil {
		return nil, err
	}

	if file.Language != nil {
		if _, err := s.reparse(ctx, id, *file.Language, file.Buffer); err != nil {
			return nil, err
		}
	}

	return file.Buffer, nil
}

// SaveFile writes the current buffer to disk at the file's stored path.
// Idempotent per SPEC_FULL.md §8 invariant 7: saving twice in a row with no
// intervening change produces no error and no observable difference.
func (s *State) SaveFile(id filetable.FileID) error {
	if err := s.lockFileTable(); err != nil {
		return err
	}
	defer s.fileTableMu.Unlock()

	return s.files.Save(id)
}

// HandleFileChanges replaces id's buffer, applies the edit descriptor (if
// any) to the cached tree, and reparses.
func (s *State) HandleFileChanges(ctx context.Context, id filetable.FileID, newBuffer []byte, edit *parserpool.EditInput) error {
	if err := s.lockFileTable(); err != nil {
		return err
	}

	if err := s.files.UpdateBuffer(id, newBuffer); err != nil {
		s.fileTableMu.Unlock()

		return err
	}

	file, err := s.files.Get(id)
	s.fileTableMu.Unlock()

	if err != nil {
		return err
	}

	if file.Language == nil {
		return nil
	}

	if edit != nil {
		if err := s.lockTreeCache(); err != nil {
			return err
		}

		if entry, err := s.trees.Get(id); err == nil {
			parserpool.EditTree(entry.Tree, *edit)
		}

		s.treeCacheMu.Unlock()
	}

	_, err = s.reparse(ctx, id, *file.Language, newBuffer)

	return err
}

// reparse reuses the cached previous tree (if any) as the reparse hint,
// stores the fresh tree, and returns it. A ParseFailed error leaves the
// previous tree untouched in the cache per SPEC_FULL.md §4.2.
func (s *State) reparse(ctx context.Context, id filetable.FileID, lang langregistry.LanguageTag, content []byte) (*treecache.Entry, error) {
	if err := s.lockTreeCache(); err != nil {
		return nil, err
	}

	previous, _, hadPrevious := s.trees.Take(id)
	s.treeCacheMu.Unlock()

	start := time.Now()
	tree, err := s.parsers.Parse(ctx, lang, content, previous)
	duration := time.Since(start)

	if err != nil {
		if previous != nil {
			if lockErr := s.lockTreeCache(); lockErr == nil {
				s.trees.Store(id, previous, content)
				s.treeCacheMu.Unlock()
			}
		}

		return nil, err
	}

	// previous was only needed as Parse's reparse hint; tree-sitter does not
	// free it, so it must be closed here on the success path or every
	// incremental reparse leaks one native tree.
	if previous != nil {
		previous.Close()
	}

	stats := observability.AnalysisStats{Parses: 1, ParseDurations: []time.Duration{duration}}
	if hadPrevious {
		stats.Edits = 1
	}

	s.metrics.RecordRun(ctx, stats)

	if err := s.lockTreeCache(); err != nil {
		return nil, err
	}

	s.trees.Store(id, tree, content)
	entry, getErr := s.trees.Get(id)

	s.treeCacheMu.Unlock()

	return entry, getErr
}

// SetHighlights runs the highlight pipeline over subBuffer for id's
// language, returning the delta-encoded token stream. The caller-supplied
// subBuffer is used verbatim as the query's source bytes; rng is accepted
// for API completeness but the iterate stage always runs against the full
// cached tree root per SPEC_FULL.md §4.3's "ranged highlighting" note.
func (s *State) SetHighlights(id filetable.FileID, subBuffer []byte, _ RangePoint) ([]uint32, error) {
	if err := s.lockFileTable(); err != nil {
		return nil, err
	}

	file, err := s.files.Get(id)
	s.fileTableMu.Unlock()

	if err != nil {
		return nil, err
	}

	if file.Language == nil {
		return nil, editorerr.File(fmt.Sprintf("LanguageNotSupportError(%q)", strings.TrimPrefix(file.Extension, ".")))
	}

	if err := s.lockTreeCache(); err != nil {
		return nil, err
	}

	entry, err := s.trees.Get(id)
	s.treeCacheMu.Unlock()

	if err != nil {
		return nil, err
	}

	queryEntry, err := s.queries.Get(*file.Language)
	if err != nil {
		return nil, err
	}

	tokens := highlight.Iterate(queryEntry, entry.Tree.RootNode(), subBuffer)
	resolved := highlight.Resolve(queryEntry, tokens)
	remapped := highlight.Remap(queryEntry, resolved)

	return highlight.Emit(remapped), nil
}

// Reset clears the file table and the tree cache.
func (s *State) Reset() error {
	if err := s.lockFileTable(); err != nil {
		return err
	}

	s.files.Clear()
	s.fileTableMu.Unlock()

	if err := s.lockTreeCache(); err != nil {
		return err
	}

	s.trees.Clear()
	s.treeCacheMu.Unlock()

	return nil
}

// GetTokensLegend returns the modified legend for lang.
func (s *State) GetTokensLegend(lang langregistry.LanguageTag) (TokensLegend, error) {
	entry, err := s.queries.Get(lang)
	if err != nil {
		return TokensLegend{}, err
	}

	return TokensLegend{
		TokenTypes: entry.ModifiedLegend.TokenTypes,
		Modifiers:  entry.ModifiedLegend.Modifiers,
	}, nil
}

// GetCurrentlySupportedLanguage lists every installed LanguageTag.
func (s *State) GetCurrentlySupportedLanguage() []langregistry.LanguageTag {
	return langregistry.All()
}
