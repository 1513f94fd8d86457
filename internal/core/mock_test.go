package core

import (
	"context"
	"sync"

	"github.com/REPPL/Persona-sub003/internal/core/model"
)

// MockGenerator scripts generation per backend. ResultQueue is consumed one
// result per call before the per-backend maps apply; unscripted backends
// return a fixed two-attribute persona. Calls and sample sizes are recorded.
type MockGenerator struct {
	ResultQueue []model.GenerationResult
	Results     map[string]model.GenerationResult
	Errs        map[string]error
	PanicOn     map[string]bool

	mu      sync.Mutex
	Calls   []string
	Samples []int
}

func (m *MockGenerator) Generate(ctx context.Context, backend string, source map[string]interface{}, samples int) (model.GenerationResult, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, backend)
	m.Samples = append(m.Samples, samples)
	var queued *model.GenerationResult
	if len(m.ResultQueue) > 0 {
		q := m.ResultQueue[0]
		m.ResultQueue = m.ResultQueue[1:]
		queued = &q
	}
	m.mu.Unlock()

	if m.PanicOn[backend] {
		panic("scripted panic for " + backend)
	}
	if err := m.Errs[backend]; err != nil {
		return model.GenerationResult{}, err
	}
	if queued != nil {
		return *queued, nil
	}
	if res, ok := m.Results[backend]; ok {
		return res, nil
	}
	return personaResult(backend, map[string]interface{}{"name": "Sarah Chen", "age": 34}), nil
}

func (m *MockGenerator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// personaResult builds a successful result carrying one candidate per
// attribute map.
func personaResult(backend string, attrs ...map[string]interface{}) model.GenerationResult {
	outputs := make([]model.CandidateOutput, len(attrs))
	for i, a := range attrs {
		outputs[i] = model.CandidateOutput{Backend: backend, Attributes: a}
	}
	return model.GenerationResult{Backend: backend, Success: true, Outputs: outputs}
}

type MockEmbedder struct {
	Vector []float32
	Err    error
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Vector, nil
}

func (m *MockEmbedder) IsConfigured() bool { return true }
