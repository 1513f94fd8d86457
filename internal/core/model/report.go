package model

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// VerificationReport is the immutable record of one verification run. Failed
// runs are still reports: a run where every dispatch failed carries a zero
// score, Passed=false and an empty consensus.
type VerificationReport struct {
	ID                 string                 `json:"id"`
	Subject            string                 `json:"subject"`
	Config             VerificationConfig     `json:"config"`
	ConsistencyScore   float64                `json:"consistency_score"`
	AgreedAttributes   []string               `json:"agreed_attributes"`
	DisputedAttributes []string               `json:"disputed_attributes"`
	Results            []GenerationResult     `json:"results"`
	Metrics            ConsistencyMetrics     `json:"metrics"`
	Consensus          map[string]interface{} `json:"consensus"`
	CreatedAt          time.Time              `json:"created_at"`
	Passed             bool                   `json:"passed"`
}

// NewVerificationReport assembles a report. The consistency score is the
// composite confidence from metrics; Passed is derived from it once, here.
func NewVerificationReport(subject string, cfg VerificationConfig, results []GenerationResult,
	metrics ConsistencyMetrics, agreed, disputed []string, consensus map[string]interface{}) VerificationReport {
	if agreed == nil {
		agreed = []string{}
	}
	if disputed == nil {
		disputed = []string{}
	}
	if consensus == nil {
		consensus = map[string]interface{}{}
	}
	if results == nil {
		results = []GenerationResult{}
	}
	score := metrics.ConfidenceScore
	return VerificationReport{
		ID:                 uuid.New().String(),
		Subject:            subject,
		Config:             cfg,
		ConsistencyScore:   score,
		AgreedAttributes:   agreed,
		DisputedAttributes: disputed,
		Results:            results,
		Metrics:            metrics,
		Consensus:          consensus,
		CreatedAt:          time.Now().UTC(),
		Passed:             score >= cfg.ConsistencyThreshold,
	}
}

// FailedReport is the report for a run where every dispatch failed: zero
// metrics, no consensus, and Passed forced to false regardless of threshold.
func FailedReport(subject string, cfg VerificationConfig, results []GenerationResult) VerificationReport {
	report := NewVerificationReport(subject, cfg, results,
		NewConsistencyMetrics(0, 0, 0, cfg.MetricWeights), nil, nil, nil)
	report.Passed = false
	return report
}

// JSON renders the report as indented JSON.
func (r VerificationReport) JSON() (string, error) {
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}
	return string(b), nil
}

// Text renders a human-readable summary of the report.
func (r VerificationReport) Text() string {
	var b strings.Builder

	verdict := "FAILED"
	if r.Passed {
		verdict = "PASSED"
	}
	fmt.Fprintf(&b, "Persona Verification Report\n")
	fmt.Fprintf(&b, "===========================\n")
	fmt.Fprintf(&b, "Subject:   %s\n", r.Subject)
	fmt.Fprintf(&b, "Report:    %s\n", r.ID)
	fmt.Fprintf(&b, "Created:   %s\n", r.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "Verdict:   %s (score %.3f, threshold %.3f)\n", verdict, r.ConsistencyScore, r.Config.ConsistencyThreshold)
	fmt.Fprintf(&b, "Strategy:  %s\n\n", r.Config.VotingStrategy)

	fmt.Fprintf(&b, "Metrics\n")
	fmt.Fprintf(&b, "  attribute agreement:  %5.1f%%  (weight %.2f)\n", r.Metrics.AttributeAgreement*100, r.Metrics.Weights[MetricAttribute])
	fmt.Fprintf(&b, "  semantic consistency: %5.1f%%  (weight %.2f)\n", r.Metrics.SemanticConsistency*100, r.Metrics.Weights[MetricSemantic])
	fmt.Fprintf(&b, "  factual convergence:  %5.1f%%  (weight %.2f)\n", r.Metrics.FactualConvergence*100, r.Metrics.Weights[MetricFactual])
	fmt.Fprintf(&b, "  confidence:           %5.1f%%\n\n", r.Metrics.ConfidenceScore*100)

	fmt.Fprintf(&b, "Dispatches (%d)\n", len(r.Results))
	for i, res := range r.Results {
		if res.Success {
			fmt.Fprintf(&b, "  [%d] %-28s ok    %d output(s)  %s  tokens %d/%d\n",
				i+1, res.Backend, len(res.Outputs), res.Latency.Round(time.Millisecond), res.TokensIn, res.TokensOut)
		} else {
			fmt.Fprintf(&b, "  [%d] %-28s FAIL  %s\n", i+1, res.Backend, res.Error)
		}
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "Agreed attributes (%d):   %s\n", len(r.AgreedAttributes), joinOrDash(r.AgreedAttributes))
	fmt.Fprintf(&b, "Disputed attributes (%d): %s\n\n", len(r.DisputedAttributes), joinOrDash(r.DisputedAttributes))

	fmt.Fprintf(&b, "Consensus\n")
	if len(r.Consensus) == 0 {
		b.WriteString("  (none)\n")
		return b.String()
	}
	keys := make([]string, 0, len(r.Consensus))
	for k := range r.Consensus {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		writeConsensusValue(&b, k, r.Consensus[k])
	}
	return b.String()
}

func writeConsensusValue(b *strings.Builder, key string, value interface{}) {
	switch tv := value.(type) {
	case []interface{}:
		fmt.Fprintf(b, "  %s:\n", key)
		for _, e := range tv {
			fmt.Fprintf(b, "    - %v\n", e)
		}
	case map[string]interface{}:
		fmt.Fprintf(b, "  %s:\n", key)
		subKeys := make([]string, 0, len(tv))
		for sk := range tv {
			subKeys = append(subKeys, sk)
		}
		sort.Strings(subKeys)
		for _, sk := range subKeys {
			fmt.Fprintf(b, "    %s: %v\n", sk, tv[sk])
		}
	default:
		fmt.Fprintf(b, "  %s: %v\n", key, tv)
	}
}

func joinOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}
