package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("openai:gpt-4o", "claude:claude-sonnet-4-5")

	require.NoError(t, cfg.Validate())
	assert.Equal(t, []string{"openai:gpt-4o", "claude:claude-sonnet-4-5"}, cfg.Backends)
	assert.Equal(t, 1, cfg.SamplesPerModel)
	assert.Equal(t, 0.7, cfg.ConsistencyThreshold)
	assert.Equal(t, StrategyMajority, cfg.VotingStrategy)
	assert.True(t, cfg.Parallel)
	assert.Equal(t, 60*time.Second, cfg.CallTimeout)
	assert.Equal(t, BatchPerSubject, cfg.BatchMode)
}

func TestValidateRejectsBadConfigs(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*VerificationConfig)
	}{
		{"no backends", func(c *VerificationConfig) { c.Backends = nil }},
		{"empty backend id", func(c *VerificationConfig) { c.Backends = []string{""} }},
		{"zero samples", func(c *VerificationConfig) { c.SamplesPerModel = 0 }},
		{"negative samples", func(c *VerificationConfig) { c.SamplesPerModel = -2 }},
		{"threshold above one", func(c *VerificationConfig) { c.ConsistencyThreshold = 1.2 }},
		{"threshold below zero", func(c *VerificationConfig) { c.ConsistencyThreshold = -0.1 }},
		{"unknown strategy", func(c *VerificationConfig) { c.VotingStrategy = "plurality" }},
		{"unknown batch mode", func(c *VerificationConfig) { c.BatchMode = "chunked" }},
		{"unknown metric weight", func(c *VerificationConfig) { c.MetricWeights = map[string]float64{"vibes": 1} }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig("openai:gpt-4o")
			tc.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidateAcceptsBoundaryValues(t *testing.T) {
	cfg := DefaultConfig("ollama:llama3")
	cfg.ConsistencyThreshold = 0.0
	require.NoError(t, cfg.Validate())

	cfg.ConsistencyThreshold = 1.0
	require.NoError(t, cfg.Validate())

	cfg.MetricWeights = map[string]float64{
		MetricAttribute: 0.5,
		MetricSemantic:  0.25,
		MetricFactual:   0.25,
	}
	require.NoError(t, cfg.Validate())
}
