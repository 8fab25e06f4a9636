// Package stats contains prediction history calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/verte-zerg/digitpad/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Summary condenses a list of prediction attempts.
type Summary struct {
	Attempts        int
	Successes       int
	AppErrors       int
	TransportErrors int
	MeanConfidence  float64
	MeanDurationMs  float64
}

// SuccessRate returns the share of attempts that produced a digit.
func (s Summary) SuccessRate() float64 {
	if s.Attempts == 0 {
		return 0
	}
	return float64(s.Successes) / float64(s.Attempts)
}

// Summarize computes totals over records.
func Summarize(records []model.PredictionRecord) Summary {
	var s Summary
	var confSum float64
	var durSum int64
	for _, r := range records {
		s.Attempts++
		durSum += r.DurationMs
		switch r.Outcome {
		case model.OutcomeSuccess:
			s.Successes++
			confSum += r.Confidence
		case model.OutcomeAppError:
			s.AppErrors++
		default:
			s.TransportErrors++
		}
	}
	if s.Successes > 0 {
		s.MeanConfidence = confSum / float64(s.Successes)
	}
	if s.Attempts > 0 {
		s.MeanDurationMs = float64(durSum) / float64(s.Attempts)
	}
	return s
}

// ConfidenceSeries returns confidence percentages of successful attempts in order.
func ConfidenceSeries(records []model.PredictionRecord) []float64 {
	out := make([]float64, 0, len(records))
	for _, r := range records {
		if r.Outcome != model.OutcomeSuccess {
			continue
		}
		out = append(out, r.Confidence*100)
	}
	return out
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		den := i + 1
		if i >= window {
			sum -= values[i-window]
			den = window
		}
		out[i] = sum / float64(den)
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if maxVal-minVal < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	last := len(sparkChars) - 1
	for _, v := range values {
		idx := int(math.Round((v - minVal) / (maxVal - minVal) * float64(last)))
		b.WriteByte(sparkChars[clampInt(idx, 0, last)])
	}
	return b.String()
}

// RenderSummary prints totals for the attempts.
func RenderSummary(w io.Writer, records []model.PredictionRecord) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No predictions found.")
		return err
	}
	s := Summarize(records)
	lines := []string{
		"Summary",
		fmt.Sprintf("Attempts: %d", s.Attempts),
		fmt.Sprintf("Predicted: %d (%.1f%%)", s.Successes, s.SuccessRate()*100),
		fmt.Sprintf("Service errors: %d", s.AppErrors),
		fmt.Sprintf("Connection errors: %d", s.TransportErrors),
		fmt.Sprintf("Avg confidence: %.1f%%", s.MeanConfidence*100),
		fmt.Sprintf("Avg round trip: %.0f ms", s.MeanDurationMs),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderCurves prints the confidence curve of successful attempts.
func RenderCurves(w io.Writer, records []model.PredictionRecord, window int) error {
	return RenderCurvesWithSize(w, records, window, 0, defaultPlotHeight, false)
}

// RenderCurvesWithSize prints the confidence curve sized to a given total width.
func RenderCurvesWithSize(w io.Writer, records []model.PredictionRecord, window, totalWidth, height int, useColor bool) error {
	conf := ConfidenceSeries(records)
	if len(conf) == 0 {
		return nil
	}
	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	return PlotSeriesWithColor(w, "Confidence", []Series{
		{Name: "Confidence", Values: conf},
		{Name: fmt.Sprintf("Avg(%d)", window), Values: MovingAverage(conf, window)},
	}, width, height, useColor)
}

// RenderDigitTable prints per-digit aggregates, least confident first.
func RenderDigitTable(w io.Writer, aggs []model.DigitAggregate) error {
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No digit stats found.")
		return err
	}
	rows := make([]model.DigitAggregate, len(aggs))
	copy(rows, aggs)
	sort.Slice(rows, func(i, j int) bool {
		mi, mj := MeanConfidence(rows[i]), MeanConfidence(rows[j])
		if mi == mj {
			return rows[i].Digit < rows[j].Digit
		}
		return mi < mj
	})

	if _, err := fmt.Fprintln(w, "Per-Digit"); err != nil {
		return err
	}
	headers, tableRows := DigitTableRows(rows)
	rightAlign := map[int]bool{1: true, 2: true, 3: true}
	for _, line := range formatTable(headers, tableRows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// DigitTableRows formats aggregates as table cells.
func DigitTableRows(aggs []model.DigitAggregate) ([]string, [][]string) {
	headers := []string{"Digit", "Count", "Avg Confidence", "Min Confidence"}
	rows := make([][]string, 0, len(aggs))
	for _, agg := range aggs {
		rows = append(rows, []string{
			fmt.Sprintf("%d", agg.Digit),
			fmt.Sprintf("%d", agg.Count),
			fmt.Sprintf("%.1f%%", MeanConfidence(agg)*100),
			fmt.Sprintf("%.1f%%", agg.MinConfidence*100),
		})
	}
	return headers, rows
}

// MeanConfidence returns the average confidence of an aggregate.
func MeanConfidence(agg model.DigitAggregate) float64 {
	if agg.Count == 0 {
		return 0
	}
	return agg.ConfidenceSum / float64(agg.Count)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
