package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/digitpad/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "nested", "digitpad.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestInsertAndListPredictions(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, st.InsertPrediction(ctx, model.PredictionRecord{
		ID: "late", CreatedAt: base.Add(time.Second), Endpoint: "http://svc/predict",
		Outcome: model.OutcomeAppError, Message: "bad image", DurationMs: 12,
	}))
	require.NoError(t, st.InsertPrediction(ctx, model.PredictionRecord{
		ID: "early", CreatedAt: base.Add(100 * time.Millisecond), Endpoint: "http://svc/predict",
		Outcome: model.OutcomeSuccess, Digit: 7, Confidence: 0.8567, DurationMs: 40,
	}))

	records, err := st.ListPredictions(ctx, model.HistoryConfig{})
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "early", records[0].ID)
	assert.Equal(t, 7, records[0].Digit)
	assert.InDelta(t, 0.8567, records[0].Confidence, 1e-9)
	assert.True(t, records[0].CreatedAt.Equal(base.Add(100*time.Millisecond)))

	assert.Equal(t, "late", records[1].ID)
	assert.Equal(t, model.OutcomeAppError, records[1].Outcome)
	assert.Equal(t, "bad image", records[1].Message)
	assert.Zero(t, records[1].Digit)
}

func TestListPredictionsFilters(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c", "d"} {
		require.NoError(t, st.InsertPrediction(ctx, model.PredictionRecord{
			ID: id, CreatedAt: base.Add(time.Duration(i) * 24 * time.Hour),
			Outcome: model.OutcomeSuccess, Digit: i, Confidence: 0.5,
		}))
	}

	since := base.Add(24 * time.Hour)
	records, err := st.ListPredictions(ctx, model.HistoryConfig{Since: &since})
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "b", records[0].ID)

	records, err = st.ListPredictions(ctx, model.HistoryConfig{Last: 2})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"c", "d"}, []string{records[0].ID, records[1].ID})
}

func TestDigitAggregates(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	recs := []model.PredictionRecord{
		{ID: "1", Outcome: model.OutcomeSuccess, Digit: 3, Confidence: 0.9},
		{ID: "2", Outcome: model.OutcomeSuccess, Digit: 3, Confidence: 0.5},
		{ID: "3", Outcome: model.OutcomeTransportError, Message: "dial tcp"},
		{ID: "4", Outcome: model.OutcomeSuccess, Digit: 8, Confidence: 0.7},
	}
	for i, rec := range recs {
		rec.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, st.InsertPrediction(ctx, rec))
	}

	aggs, err := st.DigitAggregates(ctx, model.HistoryConfig{})
	require.NoError(t, err)
	require.Len(t, aggs, 2)
	assert.Equal(t, 3, aggs[0].Digit)
	assert.Equal(t, 2, aggs[0].Count)
	assert.InDelta(t, 1.4, aggs[0].ConfidenceSum, 1e-9)
	assert.InDelta(t, 0.5, aggs[0].MinConfidence, 1e-9)
	assert.Equal(t, 8, aggs[1].Digit)
}

func TestInsertPredictionRequiresID(t *testing.T) {
	st := openTestStore(t)
	err := st.InsertPrediction(context.Background(), model.PredictionRecord{Outcome: model.OutcomeSuccess})
	require.Error(t, err)
}
