package scoring

import (
	"fmt"
	"strconv"

	"github.com/Dan9191/fraud-service/internal/features"
	"github.com/beevik/etree"
)

// LoadPMML reads a binary logistic RegressionModel from a PMML document.
// Categorical DataFields in the DataDictionary are returned as the encoder
// vocabulary, in document order.
func LoadPMML(path string) (*LogisticModel, map[string][]string, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return nil, nil, fmt.Errorf("failed to parse PMML: %w", err)
	}
	return parsePMML(doc)
}

func parsePMML(doc *etree.Document) (*LogisticModel, map[string][]string, error) {
	root := doc.SelectElement("PMML")
	if root == nil {
		return nil, nil, fmt.Errorf("PMML root element not found")
	}

	vocab := make(map[string][]string)
	if dd := root.SelectElement("DataDictionary"); dd != nil {
		for _, field := range dd.SelectElements("DataField") {
			if field.SelectAttrValue("optype", "") != "categorical" {
				continue
			}
			name := field.SelectAttrValue("name", "")
			for _, v := range field.SelectElements("Value") {
				vocab[name] = append(vocab[name], v.SelectAttrValue("value", ""))
			}
		}
	}

	rm := root.FindElement("//RegressionModel")
	if rm == nil {
		return nil, nil, fmt.Errorf("RegressionModel element not found")
	}
	if fn := rm.SelectAttrValue("functionName", ""); fn != "classification" {
		return nil, nil, fmt.Errorf("unsupported functionName %q", fn)
	}
	if norm := rm.SelectAttrValue("normalizationMethod", "none"); norm != "logit" {
		return nil, nil, fmt.Errorf("unsupported normalizationMethod %q", norm)
	}

	var positive *etree.Element
	for _, table := range rm.SelectElements("RegressionTable") {
		if table.SelectAttrValue("targetCategory", "") == "1" {
			positive = table
			break
		}
	}
	if positive == nil {
		return nil, nil, fmt.Errorf("no RegressionTable for targetCategory 1")
	}

	intercept, err := floatAttr(positive, "intercept", "0")
	if err != nil {
		return nil, nil, err
	}

	// Predictors are addressed by name, so lay them out in the deriver's order.
	index := make(map[string]int, len(features.Columns))
	for i, col := range features.Columns {
		index[col] = i
	}
	coefficients := make([]float64, len(features.Columns))
	for _, p := range positive.SelectElements("NumericPredictor") {
		name := p.SelectAttrValue("name", "")
		i, ok := index[name]
		if !ok {
			return nil, nil, fmt.Errorf("predictor %q is not a known feature", name)
		}
		if exp := p.SelectAttrValue("exponent", "1"); exp != "1" {
			return nil, nil, fmt.Errorf("predictor %q: exponent %s not supported", name, exp)
		}
		if coefficients[i], err = floatAttr(p, "coefficient", ""); err != nil {
			return nil, nil, err
		}
	}

	threshold, err := floatAttr(rm, "threshold", strconv.FormatFloat(DefaultThreshold, 'f', -1, 64))
	if err != nil {
		return nil, nil, err
	}

	model, err := NewLogisticModel(features.Columns, coefficients, intercept, threshold)
	if err != nil {
		return nil, nil, err
	}
	return model, vocab, nil
}

func floatAttr(el *etree.Element, name, def string) (float64, error) {
	raw := el.SelectAttrValue(name, def)
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid %s %q", el.Tag, name, raw)
	}
	return v, nil
}
