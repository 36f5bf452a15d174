package scoring

import (
	"fmt"
	"math"
)

// DefaultThreshold is the probability at or above which a transaction is labelled fraud.
const DefaultThreshold = 0.5

// Classifier is a pre-trained binary classifier over a fixed feature row.
type Classifier interface {
	Features() []string
	Predict(x []float64) int
	PredictProba(x []float64) [2]float64
}

// LogisticModel is a binary logistic regression.
type LogisticModel struct {
	features     []string
	coefficients []float64
	intercept    float64
	threshold    float64
}

// NewLogisticModel validates and builds a logistic model. A row is labelled
// fraud when its probability is at or above threshold.
func NewLogisticModel(features []string, coefficients []float64, intercept, threshold float64) (*LogisticModel, error) {
	if len(features) != len(coefficients) {
		return nil, fmt.Errorf("model has %d features but %d coefficients", len(features), len(coefficients))
	}
	if threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("threshold %v outside [0,1]", threshold)
	}
	for i, c := range coefficients {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return nil, fmt.Errorf("coefficient for %s is not finite", features[i])
		}
	}
	return &LogisticModel{
		features:     append([]string(nil), features...),
		coefficients: append([]float64(nil), coefficients...),
		intercept:    intercept,
		threshold:    threshold,
	}, nil
}

func (m *LogisticModel) Features() []string {
	return append([]string(nil), m.features...)
}

// PredictProba returns [p(legit), p(fraud)]. NaN inputs contribute nothing
// to the linear term.
func (m *LogisticModel) PredictProba(x []float64) [2]float64 {
	z := m.intercept
	for i, c := range m.coefficients {
		if i >= len(x) || math.IsNaN(x[i]) {
			continue
		}
		z += c * x[i]
	}
	p := 1 / (1 + math.Exp(-z))
	p = math.Min(1, math.Max(0, p))
	return [2]float64{1 - p, p}
}

func (m *LogisticModel) Predict(x []float64) int {
	if m.PredictProba(x)[1] >= m.threshold {
		return 1
	}
	return 0
}
