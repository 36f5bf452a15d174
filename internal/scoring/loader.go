package scoring

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type jsonModel struct {
	Features     []string  `json:"features"`
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`
	Threshold    *float64  `json:"threshold"`
}

// Load reads the classifier from modelPath (.json, .pmml or .xml) and the
// encoder vocabulary from encodersPath. encodersPath may be empty when the
// PMML DataDictionary lists the categorical values.
func Load(modelPath, encodersPath string) (*Model, error) {
	var (
		classifier Classifier
		vocab      map[string][]string
		err        error
	)

	switch strings.ToLower(filepath.Ext(modelPath)) {
	case ".json":
		classifier, err = LoadJSONModel(modelPath)
	case ".pmml", ".xml":
		classifier, vocab, err = LoadPMML(modelPath)
	default:
		return nil, fmt.Errorf("unsupported model artifact %s", modelPath)
	}
	if err != nil {
		return nil, err
	}

	if encodersPath != "" {
		if vocab, err = LoadVocabulary(encodersPath); err != nil {
			return nil, err
		}
	}
	if len(vocab) == 0 {
		return nil, fmt.Errorf("no encoder vocabulary for model %s", modelPath)
	}

	encoder, err := NewLabelEncoder(vocab)
	if err != nil {
		return nil, fmt.Errorf("failed to build encoders: %w", err)
	}
	return NewModel(classifier, encoder)
}

// LoadJSONModel reads a logistic model from its JSON artifact. An absent
// threshold means DefaultThreshold.
func LoadJSONModel(path string) (*LogisticModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model: %w", err)
	}
	var m jsonModel
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode model %s: %w", path, err)
	}
	threshold := DefaultThreshold
	if m.Threshold != nil {
		threshold = *m.Threshold
	}
	return NewLogisticModel(m.Features, m.Coefficients, m.Intercept, threshold)
}

// LoadVocabulary reads column -> classes from a JSON file.
func LoadVocabulary(path string) (map[string][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read encoders: %w", err)
	}
	var vocab map[string][]string
	if err := json.Unmarshal(data, &vocab); err != nil {
		return nil, fmt.Errorf("failed to decode encoders %s: %w", path, err)
	}
	return vocab, nil
}
