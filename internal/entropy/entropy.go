// Package entropy implements the entropy cache: Shannon entropy over the token
// multiset, pattern-repetition, and branch-similarity computation,
// fused into the effective-complexity dampening factor.
package entropy

import (
	"math"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/cespare/xxhash/v2"
	"github.com/hbollon/go-edlib"

	"github.com/debtmap-go/debtmap/pkg/debt"
)

const (
	defaultCacheSize          = 4096
	branchWeightWithCondition = 1.0
	branchWeightNoCondition   = 0.5
)

// Cache is a bounded entropy-score cache, keyed by (FunctionId,
// content_hash). It is the one mutable shared resource this package owns.
type Cache struct {
	lru *lru.Cache[cacheKey, debt.EntropyScore]
}

type cacheKey struct {
	id   debt.FunctionId
	hash uint64
}

// NewCache builds an LRU-bounded cache with the given capacity; a
// capacity of 0 uses the documented default.
func NewCache(capacity int) (*Cache, error) {
	if capacity <= 0 {
		capacity = defaultCacheSize
	}
	c, err := lru.New[cacheKey, debt.EntropyScore](capacity)
	if err != nil {
		return nil, err
	}
	return &Cache{lru: c}, nil
}

// ContentHash hashes a function's ordered AST pattern tags into the cache
// key's content_hash component. xxhash is used here for speed on long
// pattern lists.
func ContentHash(m debt.FunctionMetrics) uint64 {
	h := xxhash.New()
	for _, tag := range m.AstPatterns {
		h.Write([]byte(tag))
		h.Write([]byte{0})
	}
	return h.Sum64()
}

// Compute returns the EntropyScore for m, consulting cache first.
// minTokens below which entropy computation is skipped defaults to 20
// but is caller-configurable.
func Compute(m debt.FunctionMetrics, minTokens int, cache *Cache) debt.EntropyScore {
	key := cacheKey{id: m.Id, hash: ContentHash(m)}
	if cache != nil {
		if v, ok := cache.lru.Get(key); ok {
			return v
		}
	}

	score := computeUncached(m, minTokens)

	if cache != nil {
		cache.lru.Add(key, score)
	}
	return score
}

func computeUncached(m debt.FunctionMetrics, minTokens int) debt.EntropyScore {
	total := m.TotalTokens()
	if total < minTokens {
		return debt.EntropyScore{
			TokenEntropy:              0,
			PatternRepetition:         0,
			BranchSimilarity:          0,
			EffectiveComplexityFactor: 1.0,
		}
	}

	tokenEntropy := shannonEntropy(m.Tokens, total)
	patternRepetition := patternRepetitionScore(m.AstPatterns)
	branchSim, hasConditional := branchSimilarity(m.Branches)

	weight := branchWeightNoCondition
	if hasConditional {
		weight = branchWeightWithCondition
	}

	simplicity := (1 - tokenEntropy) * patternRepetition * weight
	factor := 1.0 - simplicity*0.9
	if factor < 0.1 {
		factor = 0.1
	}
	if factor > 1.0 {
		factor = 1.0
	}

	return debt.EntropyScore{
		TokenEntropy:              tokenEntropy,
		PatternRepetition:         patternRepetition,
		BranchSimilarity:          branchSim,
		EffectiveComplexityFactor: factor,
	}
}

func shannonEntropy(tokens map[debt.TokenKind]int, total int) float64 {
	distinct := len(tokens)
	if distinct <= 1 || total == 0 {
		return 0
	}
	var h float64
	for _, count := range tokens {
		if count == 0 {
			continue
		}
		p := float64(count) / float64(total)
		h -= p * math.Log2(p)
	}
	norm := math.Log2(float64(distinct))
	if norm == 0 {
		return 0
	}
	return clamp01(h / norm)
}

func patternRepetitionScore(patterns []debt.PatternTag) float64 {
	if len(patterns) == 0 {
		return 0
	}
	seen := make(map[debt.PatternTag]bool, len(patterns))
	for _, p := range patterns {
		seen[p] = true
	}
	distinct := len(seen)
	total := len(patterns)
	return clamp01(1.0 - float64(distinct)/float64(total))
}

// branchSimilarity computes the average pairwise token-sequence
// similarity across a function's conditional branches, using
// JaroWinkler string similarity over the joined token sequence as a
// practical stand-in for n-gram Jaccard (both are normalized-similarity
// measures on sequences; go-edlib supplies the former as a maintained
// library instead of a hand-rolled n-gram Jaccard).
func branchSimilarity(branches []debt.TokenSequence) (float64, bool) {
	if len(branches) < 2 {
		return 0, len(branches) > 0
	}
	strs := make([]string, len(branches))
	for i, b := range branches {
		strs[i] = joinTokens(b)
	}

	var total float64
	var pairs int
	for i := 0; i < len(strs); i++ {
		for j := i + 1; j < len(strs); j++ {
			sim, err := edlib.StringsSimilarity(strs[i], strs[j], edlib.JaroWinkler)
			if err != nil {
				continue
			}
			total += float64(sim)
			pairs++
		}
	}
	if pairs == 0 {
		return 0, true
	}
	return clamp01(total / float64(pairs)), true
}

func joinTokens(seq debt.TokenSequence) string {
	out := make([]byte, 0, len(seq)*4)
	for _, t := range seq {
		out = append(out, []byte(t)...)
		out = append(out, ' ')
	}
	return string(out)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
