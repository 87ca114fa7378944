package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/IsnaAyustin/final-project-ds/internal/config"
	"github.com/IsnaAyustin/final-project-ds/internal/shared/testutil"
)

const fixtureCSV = testutil.TransactionsCSV

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	return testutil.WriteFile(t, t.TempDir(), "sales.csv", content)
}

func loadFixture(t *testing.T) *DatasetService {
	t.Helper()
	svc, err := LoadDataset(context.Background(), writeFixture(t, fixtureCSV), config.Default().Dataset, nil, testLogger())
	require.NoError(t, err)
	return svc
}
