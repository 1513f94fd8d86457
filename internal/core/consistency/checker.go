// Package consistency measures how much a pool of candidate personas agrees
// with itself, along three axes: attribute presence, semantic similarity of
// the rendered personas, and convergence of individual claims.
package consistency

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/REPPL/Persona-sub003/internal/core/model"
	"github.com/REPPL/Persona-sub003/internal/logging"
)

// Embedder is the embedding collaborator. A nil or unconfigured embedder is
// not an error: the checker degrades to lexical similarity.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	IsConfigured() bool
}

var errEmbeddingUnavailable = errors.New("embedding backend unavailable")

// Checker computes consistency metrics over a candidate pool.
type Checker struct {
	embedder Embedder
	weights  map[string]float64
	logger   logging.Logger
}

// New builds a Checker. weights may be nil to use the default metric
// weighting; embedder may be nil to force the lexical fallback.
func New(embedder Embedder, weights map[string]float64) *Checker {
	return &Checker{
		embedder: embedder,
		weights:  weights,
		logger:   logging.New("consistency"),
	}
}

// Check computes the three metrics and their weighted composite, plus the
// per-attribute agreement breakdown. It never fails: embedding trouble
// silently selects the lexical fallback.
func (c *Checker) Check(ctx context.Context, candidates []model.CandidateOutput) (model.ConsistencyMetrics, []model.AttributeAgreement) {
	if len(candidates) == 0 {
		return model.NewConsistencyMetrics(0, 0, 0, c.weights), nil
	}

	attrScore, agreements := c.attributeAgreement(candidates)
	semScore := c.semanticConsistency(ctx, candidates)
	factScore := c.factualConvergence(candidates)

	return model.NewConsistencyMetrics(attrScore, semScore, factScore, c.weights), agreements
}

// attributeAgreement scores how uniformly attributes are present across the
// pool. A single candidate agrees with itself perfectly; a pool whose
// candidates hold no attributes at all scores zero.
func (c *Checker) attributeAgreement(candidates []model.CandidateOutput) (float64, []model.AttributeAgreement) {
	total := len(candidates)

	names := attributeUnion(candidates)
	agreements := make([]model.AttributeAgreement, 0, len(names))
	sum := 0.0
	for _, name := range names {
		present := 0
		var values []interface{}
		seen := make(map[string]bool)
		for _, cand := range candidates {
			v, ok := cand.Attributes[name]
			if !ok || !model.HasValue(v) {
				continue
			}
			present++
			key := model.CanonicalValue(v)
			if !seen[key] {
				seen[key] = true
				values = append(values, v)
			}
		}
		agreements = append(agreements, model.NewAttributeAgreement(name, present, total, values))
		sum += float64(present) / float64(total)
	}

	if total == 1 {
		return 1.0, agreements
	}
	if len(names) == 0 {
		return 0.0, agreements
	}
	return sum / float64(len(names)), agreements
}

// semanticConsistency embeds the canonical text of each candidate and scores
// the mean pairwise cosine similarity, clamped to [0,1]. Any embedding
// problem falls back to pairwise lexical similarity over the same texts.
func (c *Checker) semanticConsistency(ctx context.Context, candidates []model.CandidateOutput) float64 {
	if len(candidates) < 2 {
		return 1.0
	}

	texts := make([]string, len(candidates))
	for i, cand := range candidates {
		texts[i] = canonicalText(cand)
	}

	vectors, err := c.embedAll(ctx, texts)
	if err != nil {
		c.logger.Warnf("semantic consistency falling back to lexical similarity: %v", err)
		return meanPairwise(len(texts), func(i, j int) float64 {
			return jaccard(texts[i], texts[j])
		})
	}

	return meanPairwise(len(vectors), func(i, j int) float64 {
		return clamp01(cosine(vectors[i], vectors[j]))
	})
}

func (c *Checker) embedAll(ctx context.Context, texts []string) ([][]float32, error) {
	if c.embedder == nil || !c.embedder.IsConfigured() {
		return nil, errEmbeddingUnavailable
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := c.embedder.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("failed to embed candidate %d: %w", i, err)
		}
		vectors[i] = vec
	}
	return vectors, nil
}

// factualConvergence extracts the claim set of each candidate and scores the
// share of distinct claims held by a strict majority of the pool.
func (c *Checker) factualConvergence(candidates []model.CandidateOutput) float64 {
	if len(candidates) < 2 {
		return 1.0
	}

	counts := make(map[string]int)
	for _, cand := range candidates {
		for claim := range claimSet(cand) {
			counts[claim]++
		}
	}
	if len(counts) == 0 {
		return 0.0
	}

	converged := 0
	for _, n := range counts {
		if n*2 > len(candidates) {
			converged++
		}
	}
	return float64(converged) / float64(len(counts))
}

// attributeUnion returns the sorted union of attribute names that are
// present (per HasValue) in at least one candidate.
func attributeUnion(candidates []model.CandidateOutput) []string {
	set := make(map[string]bool)
	for _, cand := range candidates {
		for name, v := range cand.Attributes {
			if model.HasValue(v) {
				set[name] = true
			}
		}
	}
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
