// Package core orchestrates the verification pipeline: dispatch candidate
// generation to backends, measure agreement, vote, and assemble the report.
package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/REPPL/Persona-sub003/internal/core/consistency"
	"github.com/REPPL/Persona-sub003/internal/core/dispatch"
	"github.com/REPPL/Persona-sub003/internal/core/model"
	"github.com/REPPL/Persona-sub003/internal/core/voting"
	"github.com/REPPL/Persona-sub003/internal/logging"
)

// Subject pairs a subject identifier with its source data, for batch runs.
type Subject struct {
	Subject    string                 `json:"subject"`
	SourceData map[string]interface{} `json:"source_data"`
}

// Verifier runs the pipeline. Construction is the only place it can fail;
// at run time every failure surfaces through report fields, never as an
// error or panic.
type Verifier struct {
	Config     model.VerificationConfig
	Dispatcher *dispatch.Dispatcher
	Checker    *consistency.Checker
	Strategy   voting.Strategy

	logger logging.Logger
}

// NewVerifier validates the configuration eagerly and wires the pipeline.
func NewVerifier(gen dispatch.Generator, embedder consistency.Embedder, cfg model.VerificationConfig) (*Verifier, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	strategy, err := voting.ForStrategy(cfg.VotingStrategy)
	if err != nil {
		return nil, fmt.Errorf("invalid verification config: %w", err)
	}
	return &Verifier{
		Config:     cfg,
		Dispatcher: dispatch.New(gen, cfg.CallTimeout),
		Checker:    consistency.New(embedder, cfg.MetricWeights),
		Strategy:   strategy,
		logger:     logging.New("verifier"),
	}, nil
}

// Verify generates candidateCount candidates per configured backend for one
// subject and reports how much they agree. candidateCount below 1 falls back
// to the configured samples per model.
func (v *Verifier) Verify(ctx context.Context, subject string, source map[string]interface{}, candidateCount int) model.VerificationReport {
	samples := candidateCount
	if samples < 1 {
		samples = v.Config.SamplesPerModel
	}

	var results []model.GenerationResult
	if v.Config.Parallel {
		results = v.Dispatcher.Parallel(ctx, v.Config.Backends, source, samples)
	} else {
		results = v.Dispatcher.Sequential(ctx, v.Config.Backends, source, samples)
	}

	cfg := v.Config
	cfg.SamplesPerModel = samples
	return v.assemble(ctx, subject, cfg, results)
}

// VerifySelfConsistency resamples a single backend several times and checks
// whether the backend agrees with itself. The embedded report config shows
// the backend and sample count actually used.
func (v *Verifier) VerifySelfConsistency(ctx context.Context, subject string, source map[string]interface{}, backend string, samples int) model.VerificationReport {
	if samples < 1 {
		samples = v.Config.SamplesPerModel
	}
	results := v.Dispatcher.SelfConsistency(ctx, backend, source, samples)

	cfg := v.Config
	cfg.Backends = []string{backend}
	cfg.SamplesPerModel = samples
	return v.assemble(ctx, subject, cfg, results)
}

// VerifyBatch verifies several subjects. In per_subject mode (the default)
// every subject gets its own independent report. In aggregate mode all
// subjects' candidates are pooled into one report.
func (v *Verifier) VerifyBatch(ctx context.Context, subjects []Subject, candidateCount int) []model.VerificationReport {
	if v.Config.BatchMode == model.BatchAggregate {
		return []model.VerificationReport{v.verifyAggregate(ctx, subjects, candidateCount)}
	}
	reports := make([]model.VerificationReport, len(subjects))
	for i, s := range subjects {
		reports[i] = v.Verify(ctx, s.Subject, s.SourceData, candidateCount)
	}
	return reports
}

func (v *Verifier) verifyAggregate(ctx context.Context, subjects []Subject, candidateCount int) model.VerificationReport {
	samples := candidateCount
	if samples < 1 {
		samples = v.Config.SamplesPerModel
	}

	var results []model.GenerationResult
	names := make([]string, len(subjects))
	for i, s := range subjects {
		names[i] = s.Subject
		if v.Config.Parallel {
			results = append(results, v.Dispatcher.Parallel(ctx, v.Config.Backends, s.SourceData, samples)...)
		} else {
			results = append(results, v.Dispatcher.Sequential(ctx, v.Config.Backends, s.SourceData, samples)...)
		}
	}

	cfg := v.Config
	cfg.SamplesPerModel = samples
	return v.assemble(ctx, strings.Join(names, ", "), cfg, results)
}

// assemble runs check + vote over the pooled candidates and builds the
// report. A run where every dispatch failed still produces a report: zero
// score, failed verdict, per-call errors preserved in the results.
func (v *Verifier) assemble(ctx context.Context, subject string, cfg model.VerificationConfig, results []model.GenerationResult) model.VerificationReport {
	if dispatch.AllFailed(results) {
		v.logger.Warnf("all dispatches failed for subject %q: %v", subject, dispatch.CombinedError(results))
		return model.FailedReport(subject, cfg, results)
	}

	candidates := dispatch.Candidates(results)
	metrics, agreements := v.Checker.Check(ctx, candidates)
	outcome := v.Strategy.Vote(candidates, agreements)

	report := model.NewVerificationReport(subject, cfg, results, metrics,
		outcome.Agreed, outcome.Disputed, outcome.Consensus)
	v.logger.Infof("verified subject %q: confidence %.3f, %d agreed, %d disputed, passed=%v",
		subject, report.ConsistencyScore, len(outcome.Agreed), len(outcome.Disputed), report.Passed)
	return report
}
