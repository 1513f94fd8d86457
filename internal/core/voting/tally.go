package voting

import (
	"sort"

	"github.com/REPPL/Persona-sub003/internal/core/model"
)

// decide runs the shared voting engine: for every attribute the checker
// observed, compute the weighted presence ratio, apply the strategy's rule,
// and synthesize a consensus value for the attributes that pass.
func decide(candidates []model.CandidateOutput, agreements []model.AttributeAgreement,
	weightOf func(model.CandidateOutput) float64, passes func(ratio float64) bool) Outcome {

	totalMass := 0.0
	for _, c := range candidates {
		totalMass += weightOf(c)
	}

	agreed := []string{}
	disputed := []string{}
	consensus := map[string]interface{}{}

	for _, ag := range agreements {
		if totalMass == 0 {
			disputed = append(disputed, ag.Attribute)
			continue
		}
		mass := 0.0
		for _, c := range candidates {
			if v, ok := c.Attributes[ag.Attribute]; ok && model.HasValue(v) {
				mass += weightOf(c)
			}
		}
		if passes(mass / totalMass) {
			agreed = append(agreed, ag.Attribute)
			consensus[ag.Attribute] = synthesize(candidates, ag.Attribute, weightOf, passes, totalMass)
		} else {
			disputed = append(disputed, ag.Attribute)
		}
	}

	sort.Strings(agreed)
	sort.Strings(disputed)
	return Outcome{Agreed: agreed, Disputed: disputed, Consensus: consensus}
}

// valueTally accumulates the trust mass behind one distinct value. Insertion
// order is kept so ties resolve to the first-seen value and consensus lists
// preserve first-observation order.
type valueTally struct {
	value interface{}
	mass  float64
}

// synthesize picks the consensus value for one agreed attribute. Scalar and
// nested-map attributes take the heaviest distinct value. List attributes are
// rebuilt entry by entry: each distinct entry is an independent sub-claim
// voted against the full pool with the active rule.
func synthesize(candidates []model.CandidateOutput, name string,
	weightOf func(model.CandidateOutput) float64, passes func(ratio float64) bool, totalMass float64) interface{} {

	if isListAttribute(candidates, name) {
		return synthesizeList(candidates, name, weightOf, passes, totalMass)
	}
	return synthesizeScalar(candidates, name, weightOf)
}

func isListAttribute(candidates []model.CandidateOutput, name string) bool {
	for _, c := range candidates {
		if v, ok := c.Attributes[name]; ok && model.HasValue(v) {
			if _, isList := v.([]interface{}); isList {
				return true
			}
		}
	}
	return false
}

func synthesizeList(candidates []model.CandidateOutput, name string,
	weightOf func(model.CandidateOutput) float64, passes func(ratio float64) bool, totalMass float64) interface{} {

	tallies := map[string]*valueTally{}
	var order []string
	for _, c := range candidates {
		v, ok := c.Attributes[name]
		if !ok || !model.HasValue(v) {
			continue
		}
		w := weightOf(c)
		seen := map[string]bool{}
		for _, entry := range entries(v) {
			key := model.CanonicalValue(entry)
			if seen[key] {
				continue
			}
			seen[key] = true
			t, exists := tallies[key]
			if !exists {
				t = &valueTally{value: entry}
				tallies[key] = t
				order = append(order, key)
			}
			t.mass += w
		}
	}

	result := []interface{}{}
	for _, key := range order {
		if passes(tallies[key].mass / totalMass) {
			result = append(result, tallies[key].value)
		}
	}
	return result
}

func synthesizeScalar(candidates []model.CandidateOutput, name string,
	weightOf func(model.CandidateOutput) float64) interface{} {

	tallies := map[string]*valueTally{}
	var order []string
	for _, c := range candidates {
		v, ok := c.Attributes[name]
		if !ok || !model.HasValue(v) {
			continue
		}
		key := model.CanonicalValue(v)
		t, exists := tallies[key]
		if !exists {
			t = &valueTally{value: v}
			tallies[key] = t
			order = append(order, key)
		}
		t.mass += weightOf(c)
	}

	var best *valueTally
	for _, key := range order {
		if best == nil || tallies[key].mass > best.mass {
			best = tallies[key]
		}
	}
	if best == nil {
		return nil
	}
	return best.value
}

// entries normalizes an attribute value to its sub-claim list: lists vote
// entry by entry, anything else votes as a single entry.
func entries(v interface{}) []interface{} {
	if list, ok := v.([]interface{}); ok {
		return list
	}
	return []interface{}{v}
}
