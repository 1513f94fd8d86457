package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/REPPL/Persona-sub003/internal/core/model"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[llm]
openai_api_key = "sk-file"
ollama_base_url = "http://ollama.internal:11434"

[verification]
backends = ["openai:gpt-4o", "ollama:llama3"]
samples_per_model = 2
consistency_threshold = 0.8
voting_strategy = "weighted"
embedding_model = "openai:text-embedding-3-small"
parallel = false
call_timeout_seconds = 30
batch_mode = "aggregate"

[verification.metric_weights]
attribute = 0.5
semantic = 0.25
factual = 0.25

[verification.backend_weights]
"openai:gpt-4o" = 2.0

[prompts]
persona = "Sketch {count} persona(s) from {source}."

[memgraph]
uri = "bolt://localhost:7687"
user = "memgraph"
password = "secret"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sk-file", cfg.LLM.OpenAIAPIKey)
	assert.Equal(t, "http://ollama.internal:11434", cfg.LLM.OllamaBaseURL)
	assert.Equal(t, []string{"openai:gpt-4o", "ollama:llama3"}, cfg.Verification.Backends)
	assert.Equal(t, 2, cfg.Verification.SamplesPerModel)
	require.NotNil(t, cfg.Verification.Parallel)
	assert.False(t, *cfg.Verification.Parallel)
	assert.Equal(t, 0.5, cfg.Verification.MetricWeights["attribute"])
	assert.Equal(t, 2.0, cfg.Verification.BackendWeights["openai:gpt-4o"])
	assert.Contains(t, cfg.Prompts.Persona, "{count}")
	assert.Equal(t, "bolt://localhost:7687", cfg.Memgraph.URI)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadMalformedTOML(t *testing.T) {
	path := writeConfig(t, "backends = [unclosed")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse TOML")
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, []string{"ollama:llama3"}, cfg.Verification.Backends)
	assert.Empty(t, cfg.LLM.OpenAIAPIKey)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("MEMGRAPH_URI", "bolt://graph:7687")
	t.Setenv("ANTHROPIC_API_KEY", "")

	cfg := &Config{}
	cfg.LLM.AnthropicAPIKey = "sk-ant-file"
	cfg.LLM.OpenAIAPIKey = "sk-file"
	cfg.ApplyEnv()

	// Set environment values win; empty ones leave the file value alone.
	assert.Equal(t, "sk-env", cfg.LLM.OpenAIAPIKey)
	assert.Equal(t, "sk-ant-file", cfg.LLM.AnthropicAPIKey)
	assert.Equal(t, "bolt://graph:7687", cfg.Memgraph.URI)
}

func TestVerificationModelDefaults(t *testing.T) {
	cfg := Default()

	vcfg := cfg.VerificationModel()

	assert.Equal(t, []string{"ollama:llama3"}, vcfg.Backends)
	assert.Equal(t, 1, vcfg.SamplesPerModel)
	assert.Equal(t, 0.7, vcfg.ConsistencyThreshold)
	assert.Equal(t, model.StrategyMajority, vcfg.VotingStrategy)
	assert.True(t, vcfg.Parallel)
	assert.Equal(t, 60*time.Second, vcfg.CallTimeout)
	assert.Equal(t, model.BatchPerSubject, vcfg.BatchMode)
	assert.NoError(t, vcfg.Validate())
}

func TestVerificationModelOverrides(t *testing.T) {
	parallel := false
	cfg := &Config{Verification: VerificationConfig{
		Backends:             []string{"openai:gpt-4o"},
		SamplesPerModel:      3,
		ConsistencyThreshold: 0.9,
		VotingStrategy:       "unanimous",
		EmbeddingModel:       "openai:text-embedding-3-small",
		Parallel:             &parallel,
		CallTimeoutSeconds:   15,
		MetricWeights:        map[string]float64{"attribute": 1.0},
		BackendWeights:       map[string]float64{"openai:gpt-4o": 2.0},
		BatchMode:            "aggregate",
	}}

	vcfg := cfg.VerificationModel()

	assert.Equal(t, 3, vcfg.SamplesPerModel)
	assert.Equal(t, 0.9, vcfg.ConsistencyThreshold)
	assert.Equal(t, model.StrategyUnanimous, vcfg.VotingStrategy)
	assert.Equal(t, "openai:text-embedding-3-small", vcfg.EmbeddingModel)
	assert.False(t, vcfg.Parallel)
	assert.Equal(t, 15*time.Second, vcfg.CallTimeout)
	assert.Equal(t, map[string]float64{"attribute": 1.0}, vcfg.MetricWeights)
	assert.Equal(t, 2.0, vcfg.BackendWeights["openai:gpt-4o"])
	assert.Equal(t, model.BatchAggregate, vcfg.BatchMode)
	assert.NoError(t, vcfg.Validate())
}

func TestVerificationModelRoundTripsThroughFile(t *testing.T) {
	path := writeConfig(t, `
[verification]
backends = ["ollama:llama3"]
voting_strategy = "weighted"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	vcfg := cfg.VerificationModel()

	// Unset keys keep their runtime defaults.
	assert.Equal(t, model.StrategyWeighted, vcfg.VotingStrategy)
	assert.Equal(t, 1, vcfg.SamplesPerModel)
	assert.True(t, vcfg.Parallel)
	assert.NoError(t, vcfg.Validate())
}
