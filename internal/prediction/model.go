package prediction

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"github.com/IsnaAyustin/final-project-ds/pkg/contracts/domain"
)

// Estimator is a trained price model
type Estimator interface {
	// Predict returns the price estimate for in
	Predict(in domain.PredictionInput) (float64, error)
	// Transform returns the encoded feature vector for in
	Transform(in domain.PredictionInput) ([]float64, error)
}

// Explainer attributes a prediction to its input features
type Explainer interface {
	Explain(features []float64) (*domain.Attribution, error)
}

// Model is a preprocessing step followed by a tree ensemble, loaded from a
// JSON artifact. It is read-only after loading and safe for concurrent use.
type Model struct {
	Name         string       `json:"name"`
	Version      int          `json:"version"`
	Preprocessor Preprocessor `json:"preprocessor"`
	Regressor    Ensemble     `json:"regressor"`
}

// Load reads a model artifact from path
func Load(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open model: %w", err)
	}
	defer f.Close()

	m, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Decode parses and validates a model artifact
func Decode(r io.Reader) (*Model, error) {
	var m Model
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArtifact, err)
	}
	if err := m.Preprocessor.init(); err != nil {
		return nil, err
	}
	if err := m.Regressor.validate(m.Preprocessor.Width()); err != nil {
		return nil, err
	}
	if m.Name == "" {
		m.Name = "model"
	}
	return &m, nil
}

// Transform implements Estimator
func (m *Model) Transform(in domain.PredictionInput) ([]float64, error) {
	return m.Preprocessor.Transform(in)
}

// Predict implements Estimator
func (m *Model) Predict(in domain.PredictionInput) (float64, error) {
	features, err := m.Transform(in)
	if err != nil {
		return 0, err
	}
	return m.Regressor.Predict(features), nil
}

// Explain implements Explainer. Contributions of one-hot columns are summed
// per input feature and ordered by magnitude.
func (m *Model) Explain(features []float64) (*domain.Attribution, error) {
	if len(features) != m.Preprocessor.Width() {
		return nil, fmt.Errorf("%w: got %d features, model expects %d",
			ErrAttributionUnavailable, len(features), m.Preprocessor.Width())
	}

	bias, contribs, err := m.Regressor.contributions(features)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAttributionUnavailable, err)
	}

	totals := make(map[string]float64)
	var order []string
	for i, name := range m.Preprocessor.Sources() {
		if _, seen := totals[name]; !seen {
			order = append(order, name)
		}
		totals[name] += contribs[i]
	}

	attr := &domain.Attribution{BaseValue: bias, Prediction: bias}
	for _, name := range order {
		attr.Prediction += totals[name]
		attr.Contributions = append(attr.Contributions, domain.FeatureContribution{
			Feature:      name,
			Contribution: totals[name],
		})
	}
	sort.SliceStable(attr.Contributions, func(i, j int) bool {
		return math.Abs(attr.Contributions[i].Contribution) > math.Abs(attr.Contributions[j].Contribution)
	})
	return attr, nil
}

// Vocabulary returns the categories the model accepts for feature
func (m *Model) Vocabulary(feature string) []string {
	return m.Preprocessor.Vocabulary(feature)
}

// ValidateInput checks that every field of in carries a value
func ValidateInput(in domain.PredictionInput) error {
	if math.IsNaN(in.AssessedValue) || math.IsInf(in.AssessedValue, 0) {
		return &MissingFieldError{Field: domain.ColumnAssessedValue}
	}
	if in.Year <= 0 {
		return &MissingFieldError{Field: domain.ColumnYear}
	}
	if in.PropertyType == "" {
		return &MissingFieldError{Field: domain.ColumnPropertyType}
	}
	if in.ResidentialType == "" {
		return &MissingFieldError{Field: domain.ColumnResidentialType}
	}
	return nil
}

// Predict validates in and returns the model's estimate unchanged.
// Unknown categories surface from the model as *UnknownCategoryError.
func Predict(m Estimator, in domain.PredictionInput) (float64, error) {
	if err := ValidateInput(in); err != nil {
		return 0, err
	}
	return m.Predict(in)
}

// Explain attributes the prediction for in. Every failure wraps
// ErrAttributionUnavailable so callers can degrade instead of failing.
func Explain(e Explainer, m Estimator, in domain.PredictionInput) (*domain.Attribution, error) {
	if e == nil {
		return nil, fmt.Errorf("%w: model has no explainer", ErrAttributionUnavailable)
	}
	if err := ValidateInput(in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAttributionUnavailable, err)
	}

	features, err := m.Transform(in)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAttributionUnavailable, err)
	}

	attr, err := e.Explain(features)
	if err != nil {
		if !errors.Is(err, ErrAttributionUnavailable) {
			err = fmt.Errorf("%w: %v", ErrAttributionUnavailable, err)
		}
		return nil, err
	}

	for i := range attr.Contributions {
		attr.Contributions[i].Value = displayValue(attr.Contributions[i].Feature, in)
	}
	return attr, nil
}
