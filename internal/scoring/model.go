// Package scoring wraps the pre-trained fraud classifier and its categorical
// encoders. Everything here is loaded once at startup and read-only afterwards.
package scoring

import (
	"fmt"
	"slices"

	"github.com/Dan9191/fraud-service/internal/features"
)

// Model pairs the classifier with the encoders it was trained with.
type Model struct {
	encoder    *LabelEncoder
	classifier Classifier
}

// NewModel checks that the classifier and encoder agree with the feature
// layout produced by the features package.
func NewModel(classifier Classifier, encoder *LabelEncoder) (*Model, error) {
	if classifier == nil || encoder == nil {
		return nil, fmt.Errorf("classifier and encoder are required")
	}
	if got := classifier.Features(); !slices.Equal(got, features.Columns) {
		return nil, fmt.Errorf("model feature order %v does not match %v", got, features.Columns)
	}
	for _, col := range features.CategoricalColumns {
		if !encoder.HasColumn(col) {
			return nil, fmt.Errorf("no encoder vocabulary for column %s", col)
		}
	}
	return &Model{encoder: encoder, classifier: classifier}, nil
}

// Encode maps a categorical value to its trained code.
func (m *Model) Encode(column, value string) int {
	return m.encoder.Encode(column, value)
}

// Classes lists the trained values of a column.
func (m *Model) Classes(column string) []string {
	return m.encoder.Classes(column)
}

// Score returns the label and the fraud probability for a feature row.
func (m *Model) Score(x []float64) (int, float64) {
	return m.classifier.Predict(x), m.classifier.PredictProba(x)[1]
}
