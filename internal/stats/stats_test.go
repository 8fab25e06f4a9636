package stats

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/verte-zerg/digitpad/internal/model"
)

func TestSummarize(t *testing.T) {
	records := []model.PredictionRecord{
		{Outcome: model.OutcomeSuccess, Confidence: 0.8, DurationMs: 100},
		{Outcome: model.OutcomeSuccess, Confidence: 0.6, DurationMs: 300},
		{Outcome: model.OutcomeAppError, DurationMs: 50},
		{Outcome: model.OutcomeTransportError, DurationMs: 350},
	}
	s := Summarize(records)
	if s.Attempts != 4 || s.Successes != 2 || s.AppErrors != 1 || s.TransportErrors != 1 {
		t.Fatalf("unexpected counts: %+v", s)
	}
	if math.Abs(s.MeanConfidence-0.7) > 1e-9 {
		t.Fatalf("expected mean confidence 0.7, got %v", s.MeanConfidence)
	}
	if s.MeanDurationMs != 200 {
		t.Fatalf("expected mean duration 200, got %v", s.MeanDurationMs)
	}
	if s.SuccessRate() != 0.5 {
		t.Fatalf("expected success rate 0.5, got %v", s.SuccessRate())
	}
}

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{2, 4, 6, 8}, 2)
	want := []float64{2, 3, 5, 7}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestSparklineFlat(t *testing.T) {
	if got := Sparkline([]float64{5, 5, 5}); got != "+++" {
		t.Fatalf("unexpected sparkline %q", got)
	}
}

func TestRenderSummaryEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderSummary(&buf, nil); err != nil {
		t.Fatalf("render summary: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "No predictions found." {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestRenderDigitTableOrdersByConfidence(t *testing.T) {
	var buf bytes.Buffer
	aggs := []model.DigitAggregate{
		{Digit: 1, Count: 2, ConfidenceSum: 1.8, MinConfidence: 0.85},
		{Digit: 6, Count: 1, ConfidenceSum: 0.4, MinConfidence: 0.4},
	}
	if err := RenderDigitTable(&buf, aggs); err != nil {
		t.Fatalf("render digit table: %v", err)
	}
	lines := strings.Split(buf.String(), "\n")
	if len(lines) < 4 {
		t.Fatalf("expected table output, got %q", buf.String())
	}
	if !strings.HasPrefix(lines[2], "6") || !strings.Contains(lines[2], "40.0%") {
		t.Fatalf("expected weakest digit first, got %q", lines[2])
	}
}
