package stats

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/digitpad/internal/model"
	"github.com/verte-zerg/digitpad/internal/store"
)

func TestBuildReport(t *testing.T) {
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "digitpad.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	base := time.Unix(0, 0).UTC()
	records := []model.PredictionRecord{
		{ID: "a", CreatedAt: base, Outcome: model.OutcomeSuccess, Digit: 3, Confidence: 0.5, DurationMs: 10},
		{ID: "b", CreatedAt: base.Add(time.Minute), Outcome: model.OutcomeTransportError, Message: "dial", DurationMs: 30},
		{ID: "c", CreatedAt: base.Add(2 * time.Minute), Outcome: model.OutcomeSuccess, Digit: 7, Confidence: 0.9, DurationMs: 20},
	}
	for _, rec := range records {
		if err := st.InsertPrediction(ctx, rec); err != nil {
			t.Fatalf("insert prediction: %v", err)
		}
	}

	report, err := BuildReport(ctx, st, model.HistoryConfig{Last: 2})
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(report.Records))
	}
	if report.Records[0].ID != "b" || report.Records[1].ID != "c" {
		t.Fatalf("unexpected record order: %+v", report.Records)
	}
	if len(report.Digits) != 1 || report.Digits[0].Digit != 7 {
		t.Fatalf("expected only digit 7 in window, got %+v", report.Digits)
	}
	if report.Summary.Attempts != 2 || report.Summary.Successes != 1 || report.Summary.TransportErrors != 1 {
		t.Fatalf("unexpected summary: %+v", report.Summary)
	}
}
