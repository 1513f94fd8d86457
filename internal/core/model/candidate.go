package model

import "time"

// CandidateOutput is one persona produced by one backend call. Attribute
// values are scalars, lists of scalars, or one level of nested scalar maps
// (e.g. a demographics block). Treated as immutable once produced.
type CandidateOutput struct {
	Backend    string                 `json:"backend"`
	Attributes map[string]interface{} `json:"attributes"`
	Weight     float64                `json:"weight,omitempty"` // trust weight, 0 = unset
}

// Clone returns a deep copy so callers can mutate without aliasing the
// original candidate.
func (c CandidateOutput) Clone() CandidateOutput {
	out := CandidateOutput{Backend: c.Backend, Weight: c.Weight}
	if c.Attributes == nil {
		return out
	}
	out.Attributes = make(map[string]interface{}, len(c.Attributes))
	for k, v := range c.Attributes {
		out.Attributes[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v interface{}) interface{} {
	switch tv := v.(type) {
	case []interface{}:
		list := make([]interface{}, len(tv))
		for i, e := range tv {
			list[i] = cloneValue(e)
		}
		return list
	case map[string]interface{}:
		m := make(map[string]interface{}, len(tv))
		for k, e := range tv {
			m[k] = cloneValue(e)
		}
		return m
	default:
		return tv
	}
}

// GenerationResult records the outcome of a single backend call. Failed calls
// carry an error message and an empty output list; they are data, not errors.
type GenerationResult struct {
	Backend   string            `json:"backend"`
	Success   bool              `json:"success"`
	Outputs   []CandidateOutput `json:"outputs,omitempty"`
	Error     string            `json:"error,omitempty"`
	Latency   time.Duration     `json:"latency_ns"`
	TokensIn  int               `json:"tokens_in,omitempty"`
	TokensOut int               `json:"tokens_out,omitempty"`
}

// FailedResult builds the failure record for a call that produced no output.
func FailedResult(backend, errMsg string, latency time.Duration) GenerationResult {
	return GenerationResult{
		Backend: backend,
		Success: false,
		Outputs: []CandidateOutput{},
		Error:   errMsg,
		Latency: latency,
	}
}
