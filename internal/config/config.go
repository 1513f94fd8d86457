package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/REPPL/Persona-sub003/internal/core/model"
)

// LLMConfig carries provider credentials and endpoints. Values left empty in
// the file can be filled from the environment with ApplyEnv.
type LLMConfig struct {
	OpenAIAPIKey    string `toml:"openai_api_key"`
	AnthropicAPIKey string `toml:"anthropic_api_key"`
	GeminiAPIKey    string `toml:"gemini_api_key"`
	OpenAIBaseURL   string `toml:"openai_base_url"`
	OllamaBaseURL   string `toml:"ollama_base_url"`
}

// VerificationConfig is the TOML shape of the verification settings.
// Durations are seconds; Parallel is a pointer so an absent key keeps the
// default instead of forcing false.
type VerificationConfig struct {
	Backends             []string           `toml:"backends"`
	SamplesPerModel      int                `toml:"samples_per_model"`
	ConsistencyThreshold float64            `toml:"consistency_threshold"`
	VotingStrategy       string             `toml:"voting_strategy"`
	EmbeddingModel       string             `toml:"embedding_model"`
	Parallel             *bool              `toml:"parallel"`
	CallTimeoutSeconds   int                `toml:"call_timeout_seconds"`
	MetricWeights        map[string]float64 `toml:"metric_weights"`
	BackendWeights       map[string]float64 `toml:"backend_weights"`
	BatchMode            string             `toml:"batch_mode"`
}

type PromptsConfig struct {
	Persona string `toml:"persona"`
}

type MemgraphConfig struct {
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

type Config struct {
	LLM          LLMConfig          `toml:"llm"`
	Verification VerificationConfig `toml:"verification"`
	Prompts      PromptsConfig      `toml:"prompts"`
	Memgraph     MemgraphConfig     `toml:"memgraph"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	return &cfg, nil
}

// Default returns the zero-config setup: a single local Ollama backend, so
// the pipeline runs without any API keys.
func Default() *Config {
	return &Config{
		Verification: VerificationConfig{
			Backends: []string{"ollama:llama3"},
		},
	}
}

// ApplyEnv overrides credentials and endpoints from the environment.
// Environment values win over file values.
func (c *Config) ApplyEnv() {
	setIfEnv(&c.LLM.OpenAIAPIKey, "OPENAI_API_KEY")
	setIfEnv(&c.LLM.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	setIfEnv(&c.LLM.GeminiAPIKey, "GEMINI_API_KEY")
	setIfEnv(&c.LLM.OpenAIBaseURL, "OPENAI_BASE_URL")
	setIfEnv(&c.LLM.OllamaBaseURL, "OLLAMA_BASE_URL")
	setIfEnv(&c.Memgraph.URI, "MEMGRAPH_URI")
	setIfEnv(&c.Memgraph.User, "MEMGRAPH_USER")
	setIfEnv(&c.Memgraph.Password, "MEMGRAPH_PASSWORD")
}

func setIfEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// VerificationModel maps the TOML section onto the runtime verification
// config, keeping defaults for everything the file leaves unset. The result
// still goes through model validation when the Verifier is constructed.
func (c *Config) VerificationModel() model.VerificationConfig {
	v := c.Verification
	cfg := model.DefaultConfig(v.Backends...)
	if v.SamplesPerModel > 0 {
		cfg.SamplesPerModel = v.SamplesPerModel
	}
	if v.ConsistencyThreshold > 0 {
		cfg.ConsistencyThreshold = v.ConsistencyThreshold
	}
	if v.VotingStrategy != "" {
		cfg.VotingStrategy = model.Strategy(v.VotingStrategy)
	}
	if v.EmbeddingModel != "" {
		cfg.EmbeddingModel = v.EmbeddingModel
	}
	if v.Parallel != nil {
		cfg.Parallel = *v.Parallel
	}
	if v.CallTimeoutSeconds > 0 {
		cfg.CallTimeout = time.Duration(v.CallTimeoutSeconds) * time.Second
	}
	if len(v.MetricWeights) > 0 {
		cfg.MetricWeights = v.MetricWeights
	}
	if len(v.BackendWeights) > 0 {
		cfg.BackendWeights = v.BackendWeights
	}
	if v.BatchMode != "" {
		cfg.BatchMode = model.BatchMode(v.BatchMode)
	}
	return cfg
}
