package prediction

import (
	"fmt"
	"math"
	"strconv"

	"github.com/IsnaAyustin/final-project-ds/pkg/contracts/domain"
)

// NumericFeature is standardized as (x - Mean) / Scale
type NumericFeature struct {
	Name  string  `json:"name"`
	Mean  float64 `json:"mean"`
	Scale float64 `json:"scale"`
}

// CategoricalFeature is one-hot encoded over Categories, in order.
// Values outside Categories are rejected.
type CategoricalFeature struct {
	Name       string   `json:"name"`
	Categories []string `json:"categories"`
}

// Preprocessor turns a prediction input into the model's feature vector:
// scaled numeric features first, then one-hot blocks.
type Preprocessor struct {
	Numeric     []NumericFeature     `json:"numeric"`
	Categorical []CategoricalFeature `json:"categorical"`

	index map[string]map[string]int
}

func (p *Preprocessor) init() error {
	p.index = make(map[string]map[string]int, len(p.Categorical))
	for _, f := range p.Categorical {
		if len(f.Categories) == 0 {
			return fmt.Errorf("%w: feature %q has no categories", ErrInvalidArtifact, f.Name)
		}
		pos := make(map[string]int, len(f.Categories))
		for i, c := range f.Categories {
			if _, dup := pos[c]; dup {
				return fmt.Errorf("%w: feature %q lists %q twice", ErrInvalidArtifact, f.Name, c)
			}
			pos[c] = i
		}
		p.index[f.Name] = pos
	}
	for _, f := range p.Numeric {
		if _, err := numericValue(f.Name, domain.PredictionInput{}); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidArtifact, err)
		}
	}
	for _, f := range p.Categorical {
		if _, err := categoricalValue(f.Name, domain.PredictionInput{}); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidArtifact, err)
		}
	}
	return nil
}

// Width is the length of the transformed vector
func (p *Preprocessor) Width() int {
	n := len(p.Numeric)
	for _, f := range p.Categorical {
		n += len(f.Categories)
	}
	return n
}

// Sources maps every transformed column to the input feature it came from
func (p *Preprocessor) Sources() []string {
	out := make([]string, 0, p.Width())
	for _, f := range p.Numeric {
		out = append(out, f.Name)
	}
	for _, f := range p.Categorical {
		for range f.Categories {
			out = append(out, f.Name)
		}
	}
	return out
}

// Vocabulary returns the accepted categories of a categorical feature
func (p *Preprocessor) Vocabulary(feature string) []string {
	for _, f := range p.Categorical {
		if f.Name == feature {
			return append([]string(nil), f.Categories...)
		}
	}
	return nil
}

// Transform encodes in. It fails with *UnknownCategoryError for values the
// encoder was not fit on.
func (p *Preprocessor) Transform(in domain.PredictionInput) ([]float64, error) {
	out := make([]float64, 0, p.Width())

	for _, f := range p.Numeric {
		x, _ := numericValue(f.Name, in)
		scale := f.Scale
		if scale == 0 {
			scale = 1
		}
		out = append(out, (x-f.Mean)/scale)
	}

	for _, f := range p.Categorical {
		v, _ := categoricalValue(f.Name, in)
		pos, ok := p.index[f.Name][v]
		if !ok {
			return nil, &UnknownCategoryError{Feature: f.Name, Value: v, Allowed: append([]string(nil), f.Categories...)}
		}
		block := make([]float64, len(f.Categories))
		block[pos] = 1
		out = append(out, block...)
	}

	return out, nil
}

func numericValue(name string, in domain.PredictionInput) (float64, error) {
	switch name {
	case domain.ColumnAssessedValue:
		return in.AssessedValue, nil
	case domain.ColumnYear:
		return float64(in.Year), nil
	}
	return math.NaN(), fmt.Errorf("numeric feature %q is not a prediction input", name)
}

func categoricalValue(name string, in domain.PredictionInput) (string, error) {
	switch name {
	case domain.ColumnPropertyType:
		return in.PropertyType, nil
	case domain.ColumnResidentialType:
		return in.ResidentialType, nil
	}
	return "", fmt.Errorf("categorical feature %q is not a prediction input", name)
}

// displayValue renders an input feature for attribution output
func displayValue(name string, in domain.PredictionInput) string {
	if v, err := categoricalValue(name, in); err == nil {
		return v
	}
	if x, err := numericValue(name, in); err == nil {
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	return ""
}
