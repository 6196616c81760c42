package browse

import (
	"sort"
	"strings"
)

// Search scoring shared by the local and SSH adapters: substring hits score
// high, otherwise the best token-level edit-distance similarity wins.
// Candidates below FuzzyThreshold are dropped; callers keep the top
// MaxSearchResults.
const (
	FuzzyThreshold   = 0.4
	MaxSearchResults = 50
	MaxSearchEntries = 500
	MaxSearchDepth   = 5
)

// FuzzyScore rates how well name matches query, in [0, 1].
func FuzzyScore(query, name string) float64 {
	q := strings.ToLower(query)
	n := strings.ToLower(name)
	if q == "" || n == "" {
		return 0
	}
	if q == n {
		return 1
	}
	if idx := strings.Index(n, q); idx >= 0 {
		score := 0.7 + 0.3*float64(len(q))/float64(len(n))
		if idx == 0 {
			score += 0.05
		}
		if score > 1 {
			score = 1
		}
		return score
	}
	best := similarity(q, n)
	for _, tok := range splitTokens(n) {
		if s := similarity(q, tok); s > best {
			best = s
		}
	}
	// Token hits are capped below substring hits so exact containment
	// always ranks first.
	if best > 0.7 {
		best = 0.7
	}
	return best
}

func splitTokens(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
}

func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if longest == 0 {
		return 0
	}
	return 1 - float64(levenshtein(a, b))/float64(longest)
}

func levenshtein(a, b string) int {
	if a == b {
		return 0
	}
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min3(cur[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

// RankMatches filters and orders candidate search results by fuzzy score
// against query, keeping at most MaxSearchResults.
func RankMatches(query string, candidates []SearchResult) []SearchResult {
	type scored struct {
		r SearchResult
		s float64
	}
	kept := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		if s := FuzzyScore(query, c.Name); s >= FuzzyThreshold {
			kept = append(kept, scored{c, s})
		}
	}
	// Score desc, then shorter path, then name.
	sort.SliceStable(kept, func(i, j int) bool {
		a, b := kept[i], kept[j]
		if a.s != b.s {
			return a.s > b.s
		}
		if len(a.r.Path) != len(b.r.Path) {
			return len(a.r.Path) < len(b.r.Path)
		}
		return a.r.Name < b.r.Name
	})
	if len(kept) > MaxSearchResults {
		kept = kept[:MaxSearchResults]
	}
	out := make([]SearchResult, len(kept))
	for i, k := range kept {
		out[i] = k.r
	}
	return out
}
