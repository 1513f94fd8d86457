package model

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Strategy names a voting procedure.
type Strategy string

const (
	StrategyMajority  Strategy = "majority"
	StrategyUnanimous Strategy = "unanimous"
	StrategyWeighted  Strategy = "weighted"
)

// BatchMode selects the granularity of VerifyBatch.
type BatchMode string

const (
	// BatchPerSubject verifies every subject independently, one report each.
	BatchPerSubject BatchMode = "per_subject"
	// BatchAggregate pools all subjects' candidates into a single report.
	BatchAggregate BatchMode = "aggregate"
)

var validate = validator.New()

// VerificationConfig controls a Verifier. Build it with DefaultConfig and
// override fields, then let the Verifier validate it; invalid values are
// rejected at construction time, before any backend is called.
type VerificationConfig struct {
	Backends             []string           `json:"backends" validate:"required,min=1,dive,required"`
	SamplesPerModel      int                `json:"samples_per_model" validate:"min=1"`
	ConsistencyThreshold float64            `json:"consistency_threshold" validate:"min=0,max=1"`
	VotingStrategy       Strategy           `json:"voting_strategy" validate:"oneof=majority unanimous weighted"`
	EmbeddingModel       string             `json:"embedding_model,omitempty"`
	Parallel             bool               `json:"parallel"`
	CallTimeout          time.Duration      `json:"call_timeout_ns"`
	MetricWeights        map[string]float64 `json:"metric_weights,omitempty"`
	BackendWeights       map[string]float64 `json:"backend_weights,omitempty"`
	BatchMode            BatchMode          `json:"batch_mode" validate:"oneof=per_subject aggregate"`
}

// DefaultConfig returns a config with standard settings for the given
// backends: 1 sample per model, 0.7 threshold, majority voting, parallel
// dispatch with a 60s per-call timeout, per-subject batching.
func DefaultConfig(backends ...string) VerificationConfig {
	return VerificationConfig{
		Backends:             backends,
		SamplesPerModel:      1,
		ConsistencyThreshold: 0.7,
		VotingStrategy:       StrategyMajority,
		Parallel:             true,
		CallTimeout:          60 * time.Second,
		BatchMode:            BatchPerSubject,
	}
}

// Validate rejects empty backend lists, sample counts below 1, thresholds
// outside [0,1], unknown strategy or batch mode names, and unknown metric
// weight keys.
func (c VerificationConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid verification config: %w", err)
	}
	for name := range c.MetricWeights {
		switch name {
		case MetricAttribute, MetricSemantic, MetricFactual:
		default:
			return fmt.Errorf("invalid verification config: unknown metric weight %q", name)
		}
	}
	return nil
}
