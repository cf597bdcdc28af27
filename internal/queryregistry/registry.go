// Package queryregistry compiles each supported language's combined
// highlight/locals query text exactly once and derives the legend and
// special-capture indices the highlight pipeline needs on every request.
// A QueryEntry is immutable after construction; the registry itself is
// built once at startup and shared by reference with no locking, per
// SPEC_FULL.md §5.
package queryregistry

import (
	"fmt"
	"strings"

	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/TodayNightt/branchy-text-editor/internal/editorerr"
	"github.com/TodayNightt/branchy-text-editor/internal/langregistry"
)

// Special capture names recognized by the locals-resolution stage. Indices
// for injection.* are reserved (computed, carried on QueryEntry) but never
// consulted by the pipeline: injection handling is an explicit non-goal.
const (
	captureLocalScope        = "local.scope"
	captureLocalDefinition   = "local.definition"
	captureLocalReference    = "local.reference"
	captureInjectionContent  = "injection.content"
	captureInjectionLanguage = "injection.language"
)

// noIndex marks a special capture as absent from a language's query.
const noIndex = -1

// Legend is the stable, deduplicated token-type/modifier vocabulary derived
// from a language's unmodified capture-name list.
type Legend struct {
	TokenTypes []string
	Modifiers  []string
}

// QueryEntry is the immutable, per-language compiled artifact: the query
// object itself, the capture names exactly as they appear in the query (the
// *unmodified legend*), the derived *modified legend*, and the indices of
// the special captures when present.
type QueryEntry struct {
	Query            *sitter.Query
	UnmodifiedLegend []string
	ModifiedLegend   Legend

	ScopeIndex              int
	DefinitionIndex         int
	ReferenceIndex          int
	InjectionContentIndex   int
	InjectionLanguageIndex  int

	// tokenTypeIndex and modifierIndex invert ModifiedLegend for O(1) lookup.
	tokenTypeIndex map[string]uint32
	modifierIndex  map[string]uint32
}

// TokenTypeIndex returns the modified-legend index for a token-type name.
func (qe *QueryEntry) TokenTypeIndex(name string) (uint32, bool) {
	idx, ok := qe.tokenTypeIndex[name]

	return idx, ok
}

// ModifierIndex returns the modified-legend index for a modifier name.
func (qe *QueryEntry) ModifierIndex(name string) (uint32, bool) {
	idx, ok := qe.modifierIndex[name]

	return idx, ok
}

// Registry holds one compiled QueryEntry per language tag that has installed
// assets. Built once at process start via New; read-only thereafter.
type Registry struct {
	entries map[langregistry.LanguageTag]*QueryEntry
}

// New compiles the query text for every language returned by
// langregistry.All that has installed assets. A language recognized by
// langregistry but without a grammar/query pair is simply absent from the
// registry (Get reports NotFoundError for it), matching the partial-function
// contract of language_to_assets.
func New() (*Registry, error) {
	entries := make(map[langregistry.LanguageTag]*QueryEntry, len(langregistry.All()))

	for _, tag := range langregistry.All() {
		assets, ok := langregistry.LanguageToAssets(tag)
		if !ok {
			continue
		}

		entry, err := compile(assets)
		if err != nil {
			return nil, fmt.Errorf("compile query for %s: %w", tag, err)
		}

		entries[tag] = entry
	}

	return &Registry{entries: entries}, nil
}

// Get returns the compiled QueryEntry for a language tag.
func (r *Registry) Get(tag langregistry.LanguageTag) (*QueryEntry, error) {
	entry, ok := r.entries[tag]
	if !ok {
		return nil, editorerr.NotFound(fmt.Sprintf("no query for language %s", tag))
	}

	return entry, nil
}

func compile(assets langregistry.Assets) (*QueryEntry, error) {
	query, err := sitter.NewQuery(assets.Grammar, []byte(assets.QueryText))
	if err != nil {
		return nil, fmt.Errorf("sitter.NewQuery: %w", err)
	}

	unmodified := captureNames(query)

	entry := &QueryEntry{
		Query:                  query,
		UnmodifiedLegend:       unmodified,
		ScopeIndex:             noIndex,
		DefinitionIndex:        noIndex,
		ReferenceIndex:         noIndex,
		InjectionContentIndex:  noIndex,
		InjectionLanguageIndex: noIndex,
	}

	for i, name := range unmodified {
		switch name {
		case captureLocalScope:
			entry.ScopeIndex = i
		case captureLocalDefinition:
			entry.DefinitionIndex = i
		case captureLocalReference:
			entry.ReferenceIndex = i
		case captureInjectionContent:
			entry.InjectionContentIndex = i
		case captureInjectionLanguage:
			entry.InjectionLanguageIndex = i
		}
	}

	entry.ModifiedLegend, entry.tokenTypeIndex, entry.modifierIndex = buildModifiedLegend(unmodified)

	return entry, nil
}

// captureNames reads every capture name the query engine assigned an index
// to, in index order, by calling CaptureNameForID for each index below
// CaptureCount.
func captureNames(query *sitter.Query) []string {
	count := query.CaptureCount()
	names := make([]string, 0, count)

	for i := uint32(0); i < count; i++ {
		names = append(names, query.CaptureNameForID(i))
	}

	return names
}

// buildModifiedLegend derives the stable modified legend from the
// unmodified capture-name list per SPEC_FULL.md §4.3 Remap: split each name
// on ".", head becomes a token type, tail (if present and different from
// head) becomes a modifier. Order of first appearance is preserved;
// duplicates collapse.
func buildModifiedLegend(unmodified []string) (Legend, map[string]uint32, map[string]uint32) {
	var legend Legend

	tokenTypeIndex := make(map[string]uint32)
	modifierIndex := make(map[string]uint32)

	for _, name := range unmodified {
		head, tail, hasTail := splitCaptureName(name)

		if _, seen := tokenTypeIndex[head]; !seen {
			tokenTypeIndex[head] = uint32(len(legend.TokenTypes))
			legend.TokenTypes = append(legend.TokenTypes, head)
		}

		if !hasTail || tail == head {
			continue
		}

		if _, seen := modifierIndex[tail]; !seen {
			modifierIndex[tail] = uint32(len(legend.Modifiers))
			legend.Modifiers = append(legend.Modifiers, tail)
		}
	}

	return legend, tokenTypeIndex, modifierIndex
}

// splitCaptureName splits a capture name on "." into its head (first
// segment) and tail (last segment). hasTail is false when name has no dot.
func splitCaptureName(name string) (head, tail string, hasTail bool) {
	idx := strings.IndexByte(name, '.')
	if idx < 0 {
		return name, "", false
	}

	lastIdx := strings.LastIndexByte(name, '.')

	return name[:idx], name[lastIdx+1:], true
}
