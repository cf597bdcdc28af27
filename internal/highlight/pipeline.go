// Package highlight implements the four-stage semantic-token pipeline:
// iterate the compiled query over a parsed tree, resolve locals scoping,
// remap capture indices to the client-facing legend, and emit a
// delta-encoded token stream. Grounded algorithmically in SPEC_FULL.md §4.3;
// the underlying query-execution calls (NewQueryCursor, cursor.Matches,
// match.Captures, CaptureNameForID) follow
// pkg/uast/pkg/mapping/pattern_matcher.go's MatchPattern exactly.
package highlight

import (
	"sort"

	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/TodayNightt/branchy-text-editor/internal/queryregistry"
)

// Token is one captured range with its (still unmodified-legend) type index.
type Token struct {
	TokenType uint32
	Modifier  uint32
	Length    uint32

	StartByte uint32
	EndByte   uint32
	StartRow  uint32
	StartCol  uint32
	EndRow    uint32
	EndCol    uint32
}

func (t Token) sameRange(o Token) bool {
	return t.StartByte == o.StartByte && t.EndByte == o.EndByte
}

// Iterate runs entry's compiled query against root, producing one Token per
// capture in query-engine order. No deduplication or sorting happens here:
// later stages need to see every capture for a node.
func Iterate(entry *queryregistry.QueryEntry, root sitter.Node, source []byte) []Token {
	cursor := sitter.NewQueryCursor()
	iter := cursor.Matches(entry.Query, root, source)

	var tokens []Token

	for {
		match := iter.Next()
		if match == nil {
			break
		}

		for _, cap := range match.Captures {
			node := cap.Node
			start, end := node.StartPoint(), node.EndPoint()

			tokens = append(tokens, Token{
				TokenType: cap.Index,
				Length:    node.EndByte() - node.StartByte(),
				StartByte: node.StartByte(),
				EndByte:   node.EndByte(),
				StartRow:  start.Row,
				StartCol:  start.Column,
				EndRow:    end.Row,
				EndCol:    end.Column,
			})
		}
	}

	return tokens
}

// Resolve implements the Sort stage: bin tokens by the special capture
// indices, then for every surviving highlight token look for an enclosing
// scope (strict row containment) and, if found, prefer a same-range
// reference or definition token over the generic highlight.
func Resolve(entry *queryregistry.QueryEntry, tokens []Token) []Token {
	var scopes, definitions, references, highlights []Token

	for _, tok := range tokens {
		switch int(tok.TokenType) {
		case entry.ScopeIndex:
			scopes = append(scopes, tok)
		case entry.DefinitionIndex:
			definitions = append(definitions, tok)
		case entry.ReferenceIndex:
			references = append(references, tok)
		default:
			highlights = append(highlights, tok)
		}
	}

	resolved := make([]Token, 0, len(highlights))

	for _, tok := range highlights {
		_, found := innermostEnclosingScope(scopes, tok)
		if !found {
			resolved = append(resolved, tok)

			continue
		}

		if ref, ok := findSameRange(references, tok); ok {
			resolved = append(resolved, ref)

			continue
		}

		if def, ok := findSameRange(definitions, tok); ok {
			resolved = append(resolved, def)

			continue
		}

		resolved = append(resolved, tok)
	}

	return resolved
}

// innermostEnclosingScope finds the scope with the tightest strict
// row-wise containment of tok, per SPEC_FULL.md §4.3: scope.start_row <
// tok.start_row && scope.end_row > tok.end_row. This reproduces the
// original implementation's known single-line-scope bug intentionally (a
// scope spanning exactly one row can never strictly contain anything,
// since its start_row cannot be less than a token's start_row while its
// end_row is also greater than the token's end_row on the same line) —
// SPEC_FULL.md §9 decides to keep bit-for-bit parity with the original
// rather than "fix" this.
func innermostEnclosingScope(scopes []Token, tok Token) (Token, bool) {
	var (
		best  Token
		found bool
	)

	for _, scope := range scopes {
		if scope.StartRow >= tok.StartRow || scope.EndRow <= tok.EndRow {
			continue
		}

		if !found || isInnerScope(scope, best) {
			best = scope
			found = true
		}
	}

	return best, found
}

// isInnerScope reports whether candidate is nested inside current, i.e. its
// row span is not wider than current's on either side (an identical span
// counts as nested).
func isInnerScope(candidate, current Token) bool {
	return candidate.StartRow >= current.StartRow && candidate.EndRow <= current.EndRow
}

func findSameRange(pool []Token, tok Token) (Token, bool) {
	for _, cand := range pool {
		if cand.sameRange(tok) {
			return cand, true
		}
	}

	return Token{}, false
}

// RemapResult is one token with its legend indices translated to the
// modified (client-facing) legend.
type RemapResult struct {
	Token
	NewTokenType uint32
	NewModifier  uint32
}

// Remap translates every token's unmodified-legend index to the modified
// legend's (token_type, modifier) pair, memoizing the translation per
// unmodified index for the lifetime of a single call — most source files
// reuse a handful of indices heavily.
func Remap(entry *queryregistry.QueryEntry, tokens []Token) []RemapResult {
	type pair struct {
		tokenType uint32
		modifier  uint32
	}

	cache := make(map[uint32]pair, len(entry.UnmodifiedLegend))
	out := make([]RemapResult, 0, len(tokens))

	for _, tok := range tokens {
		p, ok := cache[tok.TokenType]
		if !ok {
			p = remapOne(entry, tok.TokenType)
			cache[tok.TokenType] = p
		}

		out = append(out, RemapResult{Token: tok, NewTokenType: p.tokenType, NewModifier: p.modifier})
	}

	return out
}

func remapOne(entry *queryregistry.QueryEntry, unmodifiedIndex uint32) struct {
	tokenType uint32
	modifier  uint32
} {
	name := entry.UnmodifiedLegend[unmodifiedIndex]

	head, tail, hasTail := splitOnDot(name)

	tokenType, _ := entry.TokenTypeIndex(head)

	var modifier uint32
	if hasTail && tail != head {
		modifier, _ = entry.ModifierIndex(tail)
	}

	return struct {
		tokenType uint32
		modifier  uint32
	}{tokenType: tokenType, modifier: modifier}
}

func splitOnDot(name string) (head, tail string, hasTail bool) {
	dot := -1
	lastDot := -1

	for i := 0; i < len(name); i++ {
		if name[i] == '.' {
			if dot < 0 {
				dot = i
			}

			lastDot = i
		}
	}

	if dot < 0 {
		return name, "", false
	}

	return name[:dot], name[lastDot+1:], true
}

// Emit implements the Sort-by-position-then-delta-encode final stage: sort
// by (start_row, start_col), walk emitting (delta_row, delta_col, length,
// token_type, modifier) quintuples, and drop any token whose exact range
// matches the previously emitted token's (the tie-break for overlapping
// captures of one node promised in the Sort stage).
func Emit(tokens []RemapResult) []uint32 {
	sorted := make([]RemapResult, len(tokens))
	copy(sorted, tokens)

	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].StartRow != sorted[j].StartRow {
			return sorted[i].StartRow < sorted[j].StartRow
		}

		return sorted[i].StartCol < sorted[j].StartCol
	})

	out := make([]uint32, 0, len(sorted)*5) //nolint:mnd

	var (
		prevRow     uint32
		prevCol     uint32
		havePrev    bool
		prevStartB  uint32
		prevEndByte uint32
	)

	for _, tok := range sorted {
		if havePrev && tok.StartByte == prevStartB && tok.EndByte == prevEndByte {
			continue
		}

		var deltaRow, deltaCol uint32
		if havePrev {
			deltaRow = tok.StartRow - prevRow
			if tok.StartRow == prevRow {
				deltaCol = tok.StartCol - prevCol
			} else {
				deltaCol = tok.StartCol
			}
		} else {
			deltaRow = tok.StartRow
			deltaCol = tok.StartCol
		}

		out = append(out, deltaRow, deltaCol, tok.Length, tok.NewTokenType, tok.NewModifier)

		prevRow, prevCol = tok.StartRow, tok.StartCol
		havePrev = true
		prevStartB, prevEndByte = tok.StartByte, tok.EndByte
	}

	return out
}
