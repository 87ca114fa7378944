// Package api contains the request contracts of the dashboard HTTP and
// WebSocket API. Version v1 represents the current stable API version.
package api

import (
	"github.com/IsnaAyustin/final-project-ds/pkg/contracts/domain"
)

// Prediction API Requests

// PredictionRequest is the body of POST /api/prediction. Numeric fields are
// pointers so a missing field is distinguishable from zero.
type PredictionRequest struct {
	AssessedValue   *float64 `json:"assessed_value" validate:"required,gte=0"`
	Year            *int     `json:"year" validate:"required,gte=1900,lte=2100"`
	PropertyType    string   `json:"property_type" validate:"required,notblank,max=64"`
	ResidentialType string   `json:"residential_type" validate:"required,notblank,max=64"`
}

// Input converts a validated request into the prediction record
func (r PredictionRequest) Input() domain.PredictionInput {
	in := domain.PredictionInput{
		PropertyType:    r.PropertyType,
		ResidentialType: r.ResidentialType,
	}
	if r.AssessedValue != nil {
		in.AssessedValue = *r.AssessedValue
	}
	if r.Year != nil {
		in.Year = *r.Year
	}
	return in
}

// WebSocket API Requests

// PredictionMessage is one prediction request sent over /ws/predict.
// ID is echoed back so clients can match replies.
type PredictionMessage struct {
	ID      string             `json:"id,omitempty" validate:"omitempty,max=64"`
	Explain bool               `json:"explain"`
	Input   *PredictionRequest `json:"input" validate:"required"`
}

// Dashboard API Requests

// EDAQuery holds the query string of the /api/eda endpoints after parsing
type EDAQuery struct {
	YearMin       int      `query:"year_min"`
	YearMax       int      `query:"year_max"`
	PropertyTypes []string `query:"types"`
	// TypesSet distinguishes an explicit empty selection from an absent one
	TypesSet bool   `query:"-"`
	Column   string `query:"column"`
	Bins     int    `query:"bins"`
}

// Filter returns the row filter of q. Zero years are left for the service
// to replace with the table bounds.
func (q EDAQuery) Filter() domain.QueryFilter {
	f := domain.QueryFilter{YearMin: q.YearMin, YearMax: q.YearMax}
	if q.TypesSet {
		f.PropertyTypes = append([]string{}, q.PropertyTypes...)
	}
	return f
}
