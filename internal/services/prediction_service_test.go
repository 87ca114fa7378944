package services

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IsnaAyustin/final-project-ds/internal/config"
	apierrors "github.com/IsnaAyustin/final-project-ds/internal/errors"
	"github.com/IsnaAyustin/final-project-ds/internal/prediction"
	"github.com/IsnaAyustin/final-project-ds/internal/shared/testutil"
	"github.com/IsnaAyustin/final-project-ds/pkg/contracts/domain"
)

const testModelPath = "../prediction/testdata/model.json"

// flatModel predicts a constant and has no explainer
type flatModel struct {
	price float64
}

func (m flatModel) Predict(domain.PredictionInput) (float64, error) { return m.price, nil }

func (m flatModel) Transform(domain.PredictionInput) ([]float64, error) { return []float64{0}, nil }

func (m flatModel) Vocabulary(string) []string { return nil }

func validInput() domain.PredictionInput {
	return domain.PredictionInput{
		AssessedValue:   250000,
		Year:            2022,
		PropertyType:    "Residential",
		ResidentialType: "Single Family",
	}
}

func loadTestModel(t *testing.T) *PredictionService {
	t.Helper()
	svc, err := LoadModel(context.Background(), testModelPath, config.Default().Prediction, nil, testLogger())
	require.NoError(t, err)
	return svc
}

func TestLoadModel(t *testing.T) {
	svc := loadTestModel(t)
	assert.Equal(t, "gbr-sale-amount@v1", svc.ModelName())
	assert.True(t, svc.CanExplain())
}

func TestLoadModel_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"regressor":{}}`), 0644))

	_, err := LoadModel(context.Background(), path, config.Default().Prediction, nil, testLogger())
	require.Error(t, err)

	var appErr *apierrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apierrors.ErrTypeModel, appErr.Type)
	assert.ErrorIs(t, err, prediction.ErrInvalidArtifact)
}

func TestPredictionService_Predict(t *testing.T) {
	svc := loadTestModel(t)
	in := validInput()

	result, err := svc.Predict(context.Background(), in, false)
	require.NoError(t, err)
	assert.InDelta(t, 400000, result.PredictedPrice, 1e-6)
	assert.InDelta(t, 150000, result.Difference, 1e-6)
	assert.Equal(t, in, result.Input)
	assert.Nil(t, result.Attribution)
	assert.Empty(t, result.Warnings)
}

func TestPredictionService_PredictExplained(t *testing.T) {
	svc := loadTestModel(t)

	result, err := svc.Predict(context.Background(), validInput(), true)
	require.NoError(t, err)
	require.NotNil(t, result.Attribution)

	sum := result.Attribution.BaseValue
	for _, c := range result.Attribution.Contributions {
		sum += c.Contribution
	}
	assert.InDelta(t, result.PredictedPrice, sum, 1e-6)
}

func TestPredictionService_AttributionDegrades(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	svc := NewPredictionService(flatModel{price: 275000}, "flat", config.Default().Prediction, nil, logger)
	assert.False(t, svc.CanExplain())

	result, err := svc.Predict(context.Background(), validInput(), true)
	require.NoError(t, err)
	assert.Equal(t, 275000.0, result.PredictedPrice)
	assert.Nil(t, result.Attribution)
	assert.Len(t, result.Warnings, 1)
	testutil.AssertLogContains(t, logs, slog.LevelWarn, "Attribution unavailable")
}

func TestPredictionService_Errors(t *testing.T) {
	svc := loadTestModel(t)
	ctx := context.Background()

	in := validInput()
	in.PropertyType = "Spaceport"
	_, err := svc.Predict(ctx, in, true)
	var unknown *prediction.UnknownCategoryError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "Spaceport", unknown.Value)
	assert.Equal(t, OutcomeUnknownCategory, svc.failureOutcome(ctx, err))

	in = validInput()
	in.ResidentialType = ""
	_, err = svc.Predict(ctx, in, false)
	var missing *prediction.MissingFieldError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, OutcomeInvalid, svc.failureOutcome(ctx, err))

	assert.Equal(t, OutcomeError, svc.failureOutcome(ctx, errors.New("boom")))
}

func TestPredictionService_Options(t *testing.T) {
	svc := loadTestModel(t)

	opts := svc.Options()
	assert.NotContains(t, opts.PropertyTypes, "Public Utility", "model vocabulary wins over configuration")
	assert.Contains(t, opts.PropertyTypes, "Vacant Land")
	assert.Equal(t, 2017, opts.MinYear)
	assert.Equal(t, 2025, opts.MaxYear)
	assert.Equal(t, "gbr-sale-amount@v1", opts.Model)

	flat := NewPredictionService(flatModel{}, "flat", config.Default().Prediction, nil, testLogger())
	assert.Equal(t, config.Default().Prediction.PropertyTypes, flat.Options().PropertyTypes)
}

func TestPredictionService_VocabularyMismatches(t *testing.T) {
	svc := loadTestModel(t)

	mismatches := svc.VocabularyMismatches()
	require.Len(t, mismatches, 1)
	assert.Contains(t, mismatches[0], "Public Utility")
}

func TestPredictionService_CheckBounds(t *testing.T) {
	svc := loadTestModel(t)

	assert.NoError(t, svc.CheckBounds(validInput()))

	in := validInput()
	in.Year = 2030
	err := svc.CheckBounds(in)
	var apiErr *apierrors.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 400, apiErr.StatusCode)

	in = validInput()
	in.AssessedValue = 20_000_000
	assert.Error(t, svc.CheckBounds(in))
}
