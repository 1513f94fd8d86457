package model

// Metric names used as weight keys.
const (
	MetricAttribute = "attribute"
	MetricSemantic  = "semantic"
	MetricFactual   = "factual"
)

// DefaultMetricWeights returns the standard metric weighting.
func DefaultMetricWeights() map[string]float64 {
	return map[string]float64{
		MetricAttribute: 0.4,
		MetricSemantic:  0.3,
		MetricFactual:   0.3,
	}
}

// AttributeAgreement describes how widely one attribute is shared across the
// candidate pool. Derived fields are computed by NewAttributeAgreement and
// never set independently.
type AttributeAgreement struct {
	Attribute      string        `json:"attribute"`
	PresentCount   int           `json:"present_count"`
	TotalCount     int           `json:"total_count"`
	Values         []interface{} `json:"values,omitempty"` // observed values, first-seen order
	AgreementScore float64       `json:"agreement_score"`
	IsAgreed       bool          `json:"is_agreed"`
}

func NewAttributeAgreement(attribute string, present, total int, values []interface{}) AttributeAgreement {
	score := 0.0
	if total > 0 {
		score = float64(present) / float64(total)
	}
	return AttributeAgreement{
		Attribute:      attribute,
		PresentCount:   present,
		TotalCount:     total,
		Values:         values,
		AgreementScore: score,
		IsAgreed:       score > 0.5,
	}
}

// ConsistencyMetrics holds the three agreement metrics and their weighted
// composite. All component scores are in [0,1].
type ConsistencyMetrics struct {
	AttributeAgreement  float64            `json:"attribute_agreement"`
	SemanticConsistency float64            `json:"semantic_consistency"`
	FactualConvergence  float64            `json:"factual_convergence"`
	Weights             map[string]float64 `json:"weights"`
	ConfidenceScore     float64            `json:"confidence_score"`
}

// NewConsistencyMetrics computes the composite confidence. Nil weights select
// the defaults. Supplied weights are applied exactly as given; weights that do
// not sum to 1 yield a confidence outside the usual percentage scale.
func NewConsistencyMetrics(attribute, semantic, factual float64, weights map[string]float64) ConsistencyMetrics {
	if weights == nil {
		weights = DefaultMetricWeights()
	}
	confidence := attribute*weights[MetricAttribute] +
		semantic*weights[MetricSemantic] +
		factual*weights[MetricFactual]
	return ConsistencyMetrics{
		AttributeAgreement:  attribute,
		SemanticConsistency: semantic,
		FactualConvergence:  factual,
		Weights:             weights,
		ConfidenceScore:     confidence,
	}
}
