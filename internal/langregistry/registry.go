// Package langregistry maps file extensions to a closed set of supported
// source languages and resolves each language to its tree-sitter grammar
// handle and combined highlight/locals query text. The registry is
// immutable after process start: grammar handles are memoized behind
// sync.Once so the upstream, non-concurrency-safe grammar constructors run
// at most once regardless of how many goroutines race to use a language
// before first use.
package langregistry

import (
	"embed"
	"strings"
	"sync"
	"unsafe"

	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/alexaandru/go-sitter-forest/css"
	"github.com/alexaandru/go-sitter-forest/html"
	"github.com/alexaandru/go-sitter-forest/java"
	"github.com/alexaandru/go-sitter-forest/javascript"
	"github.com/alexaandru/go-sitter-forest/json"
	"github.com/alexaandru/go-sitter-forest/python"
	"github.com/alexaandru/go-sitter-forest/ruby"
	"github.com/alexaandru/go-sitter-forest/rust"
	"github.com/alexaandru/go-sitter-forest/typescript"
)

// LanguageTag is a closed enumeration of supported source languages.
type LanguageTag string

const (
	JavaScript LanguageTag = "javascript"
	TypeScript LanguageTag = "typescript"
	Rust       LanguageTag = "rust"
	Python     LanguageTag = "python"
	Java       LanguageTag = "java"
	Ruby       LanguageTag = "ruby"
	HTML       LanguageTag = "html"
	CSS        LanguageTag = "css"
	JSON       LanguageTag = "json"
)

// All lists every supported LanguageTag in a stable order, used by
// get_currently_supported_language.
func All() []LanguageTag {
	return []LanguageTag{JavaScript, TypeScript, Rust, Python, Java, Ruby, HTML, CSS, JSON}
}

// String implements fmt.Stringer.
func (t LanguageTag) String() string { return string(t) }

// extensionTable is the canonical, case-insensitive extension mapping from §6.
var extensionTable = map[string]LanguageTag{
	"java": Java,
	"rs":   Rust,
	"ts":   TypeScript,
	"tsx":  TypeScript,
	"js":   JavaScript,
	"jsx":  JavaScript,
	"py":   Python,
	"rb":   Ruby,
	"htm":  HTML,
	"html": HTML,
	"css":  CSS,
	"scss": CSS,
	"sass": CSS,
	"json": JSON,
}

// ExtensionToLanguage is a total function: case-insensitive match on the
// extension (a leading dot, as filepath.Ext returns, is ignored), returning
// the recognized tag or
// ("", false) for an unknown or empty extension.
func ExtensionToLanguage(ext string) (LanguageTag, bool) {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if ext == "" {
		return "", false
	}

	tag, ok := extensionTable[ext]

	return tag, ok
}

//go:embed queries/*.scm
var queryFS embed.FS

func mustReadQuery(name string) string {
	data, err := queryFS.ReadFile("queries/" + name)
	if err != nil {
		panic("langregistry: missing embedded query " + name)
	}

	return string(data)
}

// grammarFuncs maps each supported tag to the go-sitter-forest subpackage's
// GetLanguage constructor, grounded directly in the teacher's
// pkg/uast/languages.go languageFuncs table, scoped to the nine languages
// this registry supports.
var grammarFuncs = map[LanguageTag]func() unsafe.Pointer{
	JavaScript: javascript.GetLanguage,
	TypeScript: typescript.GetLanguage,
	Rust:       rust.GetLanguage,
	Python:     python.GetLanguage,
	Java:       java.GetLanguage,
	Ruby:       ruby.GetLanguage,
	HTML:       html.GetLanguage,
	CSS:        css.GetLanguage,
	JSON:       json.GetLanguage,
}

// queryText holds the combined (highlights [+ locals]) query source per tag,
// read once at package init from the embedded .scm assets.
var queryText = map[LanguageTag]string{
	JavaScript: mustReadQuery("javascript.highlights.scm") + "\n" + mustReadQuery("javascript.locals.scm"),
	TypeScript: mustReadQuery("typescript.highlights.scm"),
	Rust:       mustReadQuery("rust.highlights.scm"),
	Python:     mustReadQuery("python.highlights.scm"),
	Java:       mustReadQuery("java.highlights.scm"),
	Ruby:       mustReadQuery("ruby.highlights.scm"),
	HTML:       mustReadQuery("html.highlights.scm"),
	CSS:        mustReadQuery("css.highlights.scm"),
	JSON:       mustReadQuery("json.highlights.scm"),
}

type grammarCell struct {
	once sync.Once
	lang *sitter.Language
}

var grammarCache = func() map[LanguageTag]*grammarCell {
	cells := make(map[LanguageTag]*grammarCell, len(grammarFuncs))
	for tag := range grammarFuncs {
		cells[tag] = &grammarCell{}
	}

	return cells
}()

// Assets is the concrete grammar binding plus combined query text for a tag.
type Assets struct {
	Grammar   *sitter.Language
	QueryText string
}

// LanguageToAssets is a partial function: returns the grammar handle and
// combined query text for a tag, or (Assets{}, false) if the tag is
// recognized for file-typing purposes but has no parser/query installed.
// Grammar construction happens at most once per tag no matter how many
// goroutines call this concurrently before first use.
func LanguageToAssets(tag LanguageTag) (Assets, bool) {
	cell, ok := grammarCache[tag]
	if !ok {
		return Assets{}, false
	}

	cell.once.Do(func() {
		fn := grammarFuncs[tag]
		cell.lang = sitter.NewLanguage(fn())
	})

	return Assets{Grammar: cell.lang, QueryText: queryText[tag]}, true
}
