package consistency

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/REPPL/Persona-sub003/internal/core/model"
)

// canonicalText renders a candidate deterministically, one "key: value" line
// per attribute in sorted key order, so identical personas produce identical
// text regardless of map iteration order.
func canonicalText(c model.CandidateOutput) string {
	keys := make([]string, 0, len(c.Attributes))
	for k := range c.Attributes {
		if model.HasValue(c.Attributes[k]) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	lines := make([]string, len(keys))
	for i, k := range keys {
		lines[i] = k + ": " + model.CanonicalValue(c.Attributes[k])
	}
	return strings.Join(lines, "\n")
}

// claimSet flattens a candidate into normalized atomic claims: list entries
// verbatim, scalars as "key: value", nested block entries as
// "key.sub: value". Normalization is lowercase plus whitespace trimming.
func claimSet(c model.CandidateOutput) map[string]struct{} {
	claims := make(map[string]struct{})
	for key, v := range c.Attributes {
		if !model.HasValue(v) {
			continue
		}
		switch tv := v.(type) {
		case []interface{}:
			for _, entry := range tv {
				addClaim(claims, model.CanonicalValue(entry))
			}
		case map[string]interface{}:
			for sub, entry := range tv {
				if model.HasValue(entry) {
					addClaim(claims, fmt.Sprintf("%s.%s: %s", key, sub, model.CanonicalValue(entry)))
				}
			}
		default:
			addClaim(claims, fmt.Sprintf("%s: %s", key, model.CanonicalValue(v)))
		}
	}
	return claims
}

func addClaim(claims map[string]struct{}, claim string) {
	normalized := strings.ToLower(strings.TrimSpace(claim))
	if normalized != "" {
		claims[normalized] = struct{}{}
	}
}

// cosine computes cosine similarity between two vectors. Mismatched lengths
// and zero vectors score 0.
func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// jaccard computes word-set overlap between two texts, case-insensitive.
// Two empty texts are identical, hence 1.
func jaccard(a, b string) float64 {
	wordsA := wordSet(a)
	wordsB := wordSet(b)
	if len(wordsA) == 0 && len(wordsB) == 0 {
		return 1.0
	}

	intersection := 0
	for w := range wordsA {
		if _, ok := wordsB[w]; ok {
			intersection++
		}
	}
	union := len(wordsA) + len(wordsB) - intersection
	if union == 0 {
		return 1.0
	}
	return float64(intersection) / float64(union)
}

func wordSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(text)) {
		set[strings.Trim(w, ".,;:!?\"'()")] = struct{}{}
	}
	delete(set, "")
	return set
}

// meanPairwise averages score(i,j) over all unordered pairs of n items.
func meanPairwise(n int, score func(i, j int) float64) float64 {
	if n < 2 {
		return 1.0
	}
	sum := 0.0
	pairs := 0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			sum += score(i, j)
			pairs++
		}
	}
	return sum / float64(pairs)
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
