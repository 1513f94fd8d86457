// Package voting derives a consensus persona from a candidate pool using a
// configurable agreement rule.
package voting

import (
	"fmt"

	"github.com/REPPL/Persona-sub003/internal/core/model"
)

// Outcome is the result of a vote: which attributes the pool agrees on,
// which stay disputed, and the synthesized consensus persona. Agreed and
// Disputed are sorted; Consensus holds one entry per agreed attribute.
type Outcome struct {
	Agreed    []string               `json:"agreed"`
	Disputed  []string               `json:"disputed"`
	Consensus map[string]interface{} `json:"consensus"`
}

// Strategy decides attribute-level agreement and synthesizes consensus
// values. The agreements list (from the consistency checker) supplies the
// attribute universe; strategies apply their own rule to decide each one.
type Strategy interface {
	Name() model.Strategy
	Vote(candidates []model.CandidateOutput, agreements []model.AttributeAgreement) Outcome
}

// ForStrategy returns the implementation for a strategy name.
func ForStrategy(name model.Strategy) (Strategy, error) {
	switch name {
	case model.StrategyMajority:
		return Majority{}, nil
	case model.StrategyUnanimous:
		return Unanimous{}, nil
	case model.StrategyWeighted:
		return Weighted{}, nil
	default:
		return nil, fmt.Errorf("unknown voting strategy: %q", name)
	}
}

// Majority agrees on an attribute when a strict majority of candidates holds
// it. List entries are voted the same way, each against the full pool.
type Majority struct{}

func (Majority) Name() model.Strategy { return model.StrategyMajority }

func (Majority) Vote(candidates []model.CandidateOutput, agreements []model.AttributeAgreement) Outcome {
	return decide(candidates, agreements, uniformWeight, majorityRule)
}

// Unanimous agrees only when every candidate holds the attribute, and keeps
// only list entries every candidate holds.
type Unanimous struct{}

func (Unanimous) Name() model.Strategy { return model.StrategyUnanimous }

func (Unanimous) Vote(candidates []model.CandidateOutput, agreements []model.AttributeAgreement) Outcome {
	return decide(candidates, agreements, uniformWeight, unanimousRule)
}

// Weighted is Majority over trust mass instead of head count. Candidates
// without a weight count as 1.0, so an unweighted pool votes exactly like
// Majority.
type Weighted struct{}

func (Weighted) Name() model.Strategy { return model.StrategyWeighted }

func (Weighted) Vote(candidates []model.CandidateOutput, agreements []model.AttributeAgreement) Outcome {
	return decide(candidates, agreements, trustWeight, majorityRule)
}

func majorityRule(ratio float64) bool { return ratio > 0.5 }

func unanimousRule(ratio float64) bool { return ratio == 1.0 }

func uniformWeight(model.CandidateOutput) float64 { return 1.0 }

func trustWeight(c model.CandidateOutput) float64 {
	if c.Weight > 0 {
		return c.Weight
	}
	return 1.0
}
