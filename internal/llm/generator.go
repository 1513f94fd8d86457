package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/REPPL/Persona-sub003/internal/config"
	"github.com/REPPL/Persona-sub003/internal/core/common"
	"github.com/REPPL/Persona-sub003/internal/core/model"
	"github.com/REPPL/Persona-sub003/internal/logging"
)

// DefaultPersonaPrompt is the built-in generation prompt. {count} and
// {source} are substituted per call; custom templates from config use the
// same placeholders.
const DefaultPersonaPrompt = `You are a user research assistant. Based on the source data below, write {count} independent persona profile(s).

Source data:
{source}

Return ONLY a JSON array containing exactly {count} object(s). Each object maps attribute names to values, for example:
[{"name": "...", "age": 34, "occupation": "...", "goals": ["..."], "pain_points": ["..."], "demographics": {"location": "...", "education": "..."}}]

Use the same attribute names in every object. Do not write any text outside the JSON array.`

// PersonaGenerator turns a backend identifier plus source data into
// candidate personas. Transport errors are returned as errors; malformed
// model output becomes a failure result. Clients are created lazily per
// backend and cached; the cache is safe for concurrent dispatch.
type PersonaGenerator struct {
	cfg     config.LLMConfig
	prompt  string
	weights map[string]float64 // backend id -> trust weight
	logger  logging.Logger

	mu      sync.Mutex
	clients map[string]LLMClient
}

// NewPersonaGenerator builds a generator. An empty promptTemplate selects
// DefaultPersonaPrompt; weights may be nil when no backend is trust-weighted.
func NewPersonaGenerator(cfg config.LLMConfig, promptTemplate string, weights map[string]float64) *PersonaGenerator {
	if promptTemplate == "" {
		promptTemplate = DefaultPersonaPrompt
	}
	return &PersonaGenerator{
		cfg:     cfg,
		prompt:  promptTemplate,
		weights: weights,
		logger:  logging.New("llm"),
		clients: make(map[string]LLMClient),
	}
}

func (g *PersonaGenerator) Generate(ctx context.Context, backend string, source map[string]interface{}, samples int) (model.GenerationResult, error) {
	if samples < 1 {
		samples = 1
	}
	client, err := g.client(ctx, backend)
	if err != nil {
		return model.GenerationResult{}, err
	}

	prompt, err := g.buildPrompt(source, samples)
	if err != nil {
		return model.GenerationResult{}, err
	}

	start := time.Now()
	completion, err := client.Generate(ctx, prompt)
	latency := time.Since(start)
	if err != nil {
		return model.GenerationResult{}, fmt.Errorf("backend %s: %w", backend, err)
	}

	attrs, err := common.ParseJSONList[map[string]interface{}](completion.Text)
	if err != nil {
		g.logger.Warnf("backend %s returned unparseable output: %v", backend, err)
		result := model.FailedResult(backend, fmt.Sprintf("unparseable model output: %v", err), latency)
		result.TokensIn = completion.TokensIn
		result.TokensOut = completion.TokensOut
		return result, nil
	}
	if len(attrs) != samples {
		g.logger.Debugf("backend %s returned %d persona(s), asked for %d", backend, len(attrs), samples)
	}

	outputs := make([]model.CandidateOutput, 0, len(attrs))
	for _, a := range attrs {
		outputs = append(outputs, model.CandidateOutput{
			Backend:    backend,
			Attributes: a,
			Weight:     g.weights[backend],
		})
	}
	return model.GenerationResult{
		Backend:   backend,
		Success:   true,
		Outputs:   outputs,
		Latency:   latency,
		TokensIn:  completion.TokensIn,
		TokensOut: completion.TokensOut,
	}, nil
}

func (g *PersonaGenerator) buildPrompt(source map[string]interface{}, samples int) (string, error) {
	srcJSON, err := json.MarshalIndent(source, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal source data: %w", err)
	}
	r := strings.NewReplacer(
		"{count}", strconv.Itoa(samples),
		"{source}", string(srcJSON),
	)
	return r.Replace(g.prompt), nil
}

func (g *PersonaGenerator) client(ctx context.Context, backend string) (LLMClient, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if c, ok := g.clients[backend]; ok {
		return c, nil
	}
	c, err := NewBackendClient(ctx, backend, g.cfg)
	if err != nil {
		return nil, err
	}
	g.clients[backend] = c
	return c, nil
}
