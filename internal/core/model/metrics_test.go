package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewAttributeAgreement(t *testing.T) {
	ag := NewAttributeAgreement("occupation", 2, 3, []interface{}{"UX designer", "developer"})

	assert.Equal(t, "occupation", ag.Attribute)
	assert.InDelta(t, 2.0/3.0, ag.AgreementScore, 1e-9)
	assert.True(t, ag.IsAgreed)

	// Exactly half is not a majority.
	half := NewAttributeAgreement("age", 1, 2, nil)
	assert.Equal(t, 0.5, half.AgreementScore)
	assert.False(t, half.IsAgreed)

	empty := NewAttributeAgreement("goals", 0, 0, nil)
	assert.Equal(t, 0.0, empty.AgreementScore)
	assert.False(t, empty.IsAgreed)
}

func TestNewConsistencyMetricsDefaultWeights(t *testing.T) {
	m := NewConsistencyMetrics(1.0, 0.5, 0.0, nil)

	assert.Equal(t, DefaultMetricWeights(), m.Weights)
	// 1.0*0.4 + 0.5*0.3 + 0.0*0.3
	assert.InDelta(t, 0.55, m.ConfidenceScore, 1e-9)

	// 0.8*0.4 + 0.6*0.3 + 0.7*0.3
	m = NewConsistencyMetrics(0.8, 0.6, 0.7, nil)
	assert.InDelta(t, 0.71, m.ConfidenceScore, 1e-9)
}

func TestNewConsistencyMetricsCustomWeights(t *testing.T) {
	weights := map[string]float64{
		MetricAttribute: 1.0,
		MetricSemantic:  0.0,
		MetricFactual:   0.0,
	}
	m := NewConsistencyMetrics(0.8, 0.1, 0.1, weights)
	assert.InDelta(t, 0.8, m.ConfidenceScore, 1e-9)
}

func TestNewConsistencyMetricsWeightsNotNormalized(t *testing.T) {
	// Weights are applied exactly as supplied, so a sum above 1 pushes the
	// confidence past the percentage scale.
	weights := map[string]float64{
		MetricAttribute: 1.0,
		MetricSemantic:  1.0,
		MetricFactual:   1.0,
	}
	m := NewConsistencyMetrics(0.9, 0.9, 0.9, weights)
	assert.InDelta(t, 2.7, m.ConfidenceScore, 1e-9)
}
