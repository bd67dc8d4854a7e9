// file: internal/matcher/suggest.go
// version: 1.0.0
// guid: 6b1e8d3f-2a7c-4f90-b5e8-0d4a9c6f2b71

package matcher

import (
	"sort"
	"strings"
	"unicode"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Result holds a scored suggestion candidate.
type Result struct {
	Value string
	Score int // 0-100, higher is better
}

// Suggest returns up to max candidates resembling query, best first. Used to
// offer "did you mean" hints when a novel slug lookup misses.
func Suggest(query string, candidates []string, max int) []string {
	results := Rank(query, candidates, 40)

	// Subsequence matches catch abbreviation-style typos that edit distance
	// misses ("gotm" for "grave-of-the-moth").
	ranks := fuzzy.RankFindNormalizedFold(query, candidates)
	for _, r := range ranks {
		found := false
		for _, existing := range results {
			if existing.Value == r.Target {
				found = true
				break
			}
		}
		if !found {
			results = append(results, Result{Value: r.Target, Score: 40})
		}
	}

	var out []string
	for _, r := range results {
		if len(out) >= max {
			break
		}
		out = append(out, r.Value)
	}
	return out
}

// Rank scores each candidate against the query and returns matches with
// score >= minScore, sorted by score descending.
func Rank(query string, candidates []string, minScore int) []Result {
	var results []Result
	for _, c := range candidates {
		s := Score(query, c)
		if s >= minScore {
			results = append(results, Result{Value: c, Score: s})
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}

// Score rates how well query matches target on a 0-100 scale.
func Score(query, target string) int {
	q := normalize(query)
	t := normalize(target)
	if q == "" || t == "" {
		return 0
	}
	if q == t {
		return 100
	}

	score := 0
	if strings.HasPrefix(t, q) {
		score = 90
	}
	if strings.Contains(t, q) {
		// Shorter targets are more specific matches.
		ratio := float64(len(q)) / float64(len(t))
		score = max(score, 60+int(ratio*25))
	}

	words := strings.Fields(t)
	for _, w := range words {
		if strings.HasPrefix(w, q) {
			score = max(score, 80)
			break
		}
	}

	score = max(score, distanceScore(q, t, 50))
	for _, w := range words {
		score = max(score, distanceScore(q, w, 70))
	}
	return score
}

func distanceScore(q, t string, weight int) int {
	maxLen := max(len(q), len(t))
	if maxLen == 0 {
		return 0
	}
	dist := fuzzy.LevenshteinDistance(q, t)
	similarity := 1.0 - float64(dist)/float64(maxLen)
	s := int(similarity * float64(weight))
	if s < 0 {
		return 0
	}
	return s
}

// normalize lowercases and maps separator punctuation to spaces so that slugs
// and titles compare on the same footing.
func normalize(s string) string {
	s = strings.ToLower(s)
	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteRune(' ')
		}
	}
	return strings.TrimSpace(b.String())
}
