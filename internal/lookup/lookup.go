package lookup

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dshills/codeatlas-mcp/internal/store"
	"github.com/dshills/codeatlas-mcp/pkg/types"
)

// Index resolves (file, keyword-phrase) queries against a file's units.
// Responses are cached in an LRU keyed by a digest of the query and the
// file's unit fingerprints, so a rescan naturally invalidates stale hits.
type Index struct {
	store *store.Store
	cache *lru.Cache[[32]byte, []types.SyntaxUnit]
}

// New creates a new Index instance
func New(st *store.Store) *Index {
	// 256 cached responses is plenty for interactive lookups
	cache, err := lru.New[[32]byte, []types.SyntaxUnit](256)
	if err != nil {
		// This should never happen with a valid size parameter
		panic(fmt.Sprintf("failed to create LRU cache: %v", err))
	}
	return &Index{store: st, cache: cache}
}

// Lookup tokenizes the phrase on whitespace and returns the units for
// which every token matches. A token matches a unit when it is a literal
// substring of the lowercased "{type} {name}" string, when the alias table
// maps it to one of the unit's type tags, or when it is a pure modifier
// keyword. Missing files, empty phrases, and no matches all yield an empty
// list, never an error. A cache miss for the file triggers an on-demand
// single-file rescan through the store.
func (ix *Index) Lookup(ctx context.Context, workspaceRoot, relPath, phrase string) ([]types.SyntaxUnit, error) {
	tokens := strings.Fields(strings.ToLower(phrase))
	if len(tokens) == 0 {
		return []types.SyntaxUnit{}, nil
	}

	entry, err := ix.store.FileEntry(ctx, workspaceRoot, relPath)
	if err != nil {
		return []types.SyntaxUnit{}, nil
	}

	key := cacheKey(workspaceRoot, relPath, phrase, entry)
	if cached, ok := ix.cache.Get(key); ok {
		return cached, nil
	}

	matched := []types.SyntaxUnit{}
	for _, unit := range entry.SyntaxUnits {
		if matchesAll(tokens, &unit) {
			matched = append(matched, unit)
		}
	}

	ix.cache.Add(key, matched)
	return matched, nil
}

// matchesAll applies conjunctive matching: every token must match
func matchesAll(tokens []string, unit *types.SyntaxUnit) bool {
	haystack := strings.ToLower(string(unit.Type) + " " + unit.Name)
	for _, tok := range tokens {
		if !matchToken(tok, haystack, unit.Type) {
			return false
		}
	}
	return true
}

func matchToken(tok, haystack string, typ types.UnitType) bool {
	if modifierKeywords[tok] {
		return true
	}
	if strings.Contains(haystack, tok) {
		return true
	}
	for _, tag := range typeAliases[tok] {
		if strings.Contains(string(typ), tag) {
			return true
		}
	}
	return false
}

// cacheKey digests the query together with the file's unit fingerprints.
// Any change to the file's units changes the key, so stale responses are
// never served after a rescan.
func cacheKey(workspaceRoot, relPath, phrase string, entry *types.FileEntry) [32]byte {
	h := sha256.New()
	h.Write([]byte(workspaceRoot))
	h.Write([]byte{0})
	h.Write([]byte(relPath))
	h.Write([]byte{0})
	h.Write([]byte(phrase))
	h.Write([]byte{0})
	for i := range entry.SyntaxUnits {
		h.Write([]byte(entry.SyntaxUnits[i].ContentHash))
	}
	var key [32]byte
	copy(key[:], h.Sum(nil))
	return key
}
