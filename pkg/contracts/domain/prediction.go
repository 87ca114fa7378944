package domain

// FeatureContribution is the additive share of one feature in a prediction
type FeatureContribution struct {
	Feature      string  `json:"feature"`
	Value        string  `json:"value"`
	Contribution float64 `json:"contribution"`
}

// Attribution explains a prediction: BaseValue plus every contribution
// equals the predicted value.
type Attribution struct {
	BaseValue     float64               `json:"base_value"`
	Prediction    float64               `json:"prediction"`
	Contributions []FeatureContribution `json:"contributions"`
}

// PredictionResult is what the prediction page renders
type PredictionResult struct {
	Input          PredictionInput `json:"input"`
	PredictedPrice float64         `json:"predicted_price"`
	// Difference is PredictedPrice minus the assessed value
	Difference  float64      `json:"difference"`
	Attribution *Attribution `json:"attribution"`
	Warnings    []string     `json:"warnings,omitempty"`
	Model       string       `json:"model"`
}

// PredictionOptions is the vocabulary and bounds of the prediction form
type PredictionOptions struct {
	PropertyTypes    []string `json:"property_types"`
	ResidentialTypes []string `json:"residential_types"`
	MinYear          int      `json:"min_year"`
	MaxYear          int      `json:"max_year"`
	MaxAssessedValue float64  `json:"max_assessed_value"`
	AssessedStep     float64  `json:"assessed_step"`
	DefaultAssessed  float64  `json:"default_assessed"`
	DefaultYear      int      `json:"default_year"`
	Model            string   `json:"model"`
}
