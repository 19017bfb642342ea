// Package ranker orchestrates query ranking: term extraction, similarity
// backend invocation, score boosting, threshold gating with widening, and
// top-K selection.
package ranker

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dshills/cmdrecall/internal/backend"
	"github.com/dshills/cmdrecall/internal/query"
	"github.com/dshills/cmdrecall/internal/scorer"
	"github.com/dshills/cmdrecall/internal/storage"
	"github.com/dshills/cmdrecall/pkg/types"
)

const (
	// PrimaryLimit caps results in the strict pass.
	PrimaryLimit = 10
	// WidenedLimit caps results when the strict pass returns nothing.
	WidenedLimit = 5

	// Raw-similarity gates for the strict pass. Key-term presence already
	// raises confidence, so the bar drops when key terms were extracted.
	thresholdNoTerms   = 0.5
	thresholdWithTerms = 0.4

	defaultCacheSize = 256

	// Cache entries expire so long-lived processes see commands captured
	// and embeddings generated after a query was first evaluated.
	defaultCacheTTL = time.Minute
)

// cacheEntry is one cached result set with its expiration time.
type cacheEntry struct {
	results   []*types.ScoredResult
	expiresAt time.Time
}

// Ranker ranks stored commands against free-text queries. A nil backend
// means lexical-only scoring.
type Ranker struct {
	store    storage.Store
	backend  backend.Backend
	cache    *lru.Cache[string, cacheEntry]
	cacheTTL time.Duration
}

// New creates a Ranker over the given store and backend. backend may be
// nil, selecting the lexical fallback tier.
func New(store storage.Store, b backend.Backend) (*Ranker, error) {
	cache, err := lru.New[string, cacheEntry](defaultCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create query cache: %w", err)
	}
	return &Ranker{
		store:    store,
		backend:  b,
		cache:    cache,
		cacheTTL: defaultCacheTTL,
	}, nil
}

// InvalidateCache drops every cached result set. Called after embedding
// generation so new vectors are visible without waiting out the TTL.
func (r *Ranker) InvalidateCache() {
	r.cache.Purge()
}

// BackendName reports the active similarity backend, or "none".
func (r *Ranker) BackendName() string {
	if r.backend == nil {
		return "none"
	}
	return r.backend.Name()
}

// Rank returns the top-ranked commands for q, ordered by descending final
// score. An empty result is not an error.
func (r *Ranker) Rank(ctx context.Context, q string) ([]*types.ScoredResult, error) {
	if entry, ok := r.cache.Get(q); ok {
		if time.Now().After(entry.expiresAt) {
			r.cache.Remove(q)
		} else {
			return copyResults(entry.results), nil
		}
	}

	commands, err := r.store.ListCommands(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list commands: %w", err)
	}
	if len(commands) == 0 {
		return nil, nil
	}

	keyTerms := query.ExtractKeyTerms(q)
	log.Printf("DEBUG: searching %d commands, key terms: %v", len(commands), keyTerms)

	var results []*types.ScoredResult
	if r.backend == nil {
		results = r.rankLexical(q, commands)
	} else {
		results, err = r.rankVector(ctx, q, keyTerms, commands)
		if err != nil {
			// A backend must fully succeed or not count at all.
			log.Printf("DEBUG: %s backend failed, using lexical scoring: %v", r.backend.Name(), err)
			results = r.rankLexical(q, commands)
		}
	}

	r.cache.Add(q, cacheEntry{
		results:   copyResults(results),
		expiresAt: time.Now().Add(r.cacheTTL),
	})
	return results, nil
}

// rankVector scores via the similarity backend, boosts with key-term
// evidence, and applies the two-stage gate: a strict raw-similarity
// threshold first, then a widened pass with no threshold and a smaller cap
// when the strict pass comes up empty.
func (r *Ranker) rankVector(ctx context.Context, q string, keyTerms []string, commands []*types.CommandRecord) ([]*types.ScoredResult, error) {
	docs := make([]backend.Document, len(commands))
	for i, cmd := range commands {
		docs[i] = backend.Document{ID: cmd.ID, Text: cmd.EnrichedText()}
	}

	sims, err := r.backend.Similarities(ctx, docs, q)
	if err != nil {
		return nil, err
	}
	if len(sims) != len(commands) {
		return nil, fmt.Errorf("similarity count mismatch: want %d, got %d", len(commands), len(sims))
	}

	threshold := thresholdNoTerms
	if len(keyTerms) > 0 {
		threshold = thresholdWithTerms
	}

	var primary, all []*types.ScoredResult
	for i, cmd := range commands {
		final := scorer.Combine(cmd.Command, sims[i], keyTerms)
		if final <= 0 {
			continue
		}
		res := scoredResult(cmd, final)
		all = append(all, res)
		if sims[i] > threshold {
			primary = append(primary, res)
		}
	}

	if len(primary) > 0 {
		return finalize(primary, PrimaryLimit), nil
	}
	log.Printf("DEBUG: no results above threshold %.2f, widening", threshold)
	return finalize(all, WidenedLimit), nil
}

// rankLexical scores by keyword overlap alone. No widening applies; zero
// overlap means no result.
func (r *Ranker) rankLexical(q string, commands []*types.CommandRecord) []*types.ScoredResult {
	keywords := query.ExtractKeywords(q)

	var results []*types.ScoredResult
	for _, cmd := range commands {
		score := scorer.LexicalScore(cmd.Command, keywords)
		if score <= 0 {
			continue
		}
		results = append(results, scoredResult(cmd, score))
	}
	return finalize(results, PrimaryLimit)
}

// finalize sorts by descending score (ascending id on ties), drops
// duplicate command texts keeping the highest-scoring occurrence, and
// truncates to limit.
func finalize(results []*types.ScoredResult, limit int) []*types.ScoredResult {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].CommandID < results[j].CommandID
	})

	seen := make(map[string]bool, len(results))
	deduped := results[:0]
	for _, res := range results {
		if seen[res.Command] {
			continue
		}
		seen[res.Command] = true
		deduped = append(deduped, res)
		if len(deduped) == limit {
			break
		}
	}
	if len(deduped) == 0 {
		return nil
	}
	return deduped
}

func scoredResult(cmd *types.CommandRecord, score float64) *types.ScoredResult {
	return &types.ScoredResult{
		CommandID: cmd.ID,
		Command:   cmd.Command,
		Timestamp: cmd.Timestamp,
		Cwd:       cmd.Cwd,
		ExitCode:  cmd.ExitCode,
		Score:     score,
	}
}

// copyResults deep-copies cached results so callers cannot mutate cache
// entries.
func copyResults(results []*types.ScoredResult) []*types.ScoredResult {
	if results == nil {
		return nil
	}
	out := make([]*types.ScoredResult, len(results))
	for i, res := range results {
		c := *res
		out[i] = &c
	}
	return out
}
