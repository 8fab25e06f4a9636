package historyui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/digitpad/internal/model"
)

type fakeSource struct {
	records []model.PredictionRecord
	digits  []model.DigitAggregate
	err     error
	lastCfg model.HistoryConfig
}

func (f *fakeSource) ListPredictions(_ context.Context, cfg model.HistoryConfig) ([]model.PredictionRecord, error) {
	f.lastCfg = cfg
	return f.records, f.err
}

func (f *fakeSource) DigitAggregates(_ context.Context, _ model.HistoryConfig) ([]model.DigitAggregate, error) {
	return f.digits, f.err
}

func sampleSource() *fakeSource {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &fakeSource{
		records: []model.PredictionRecord{
			{ID: "a", CreatedAt: at, Outcome: model.OutcomeSuccess, Digit: 7, Confidence: 0.9, DurationMs: 40},
			{ID: "b", CreatedAt: at.Add(time.Minute), Outcome: model.OutcomeAppError, Message: "bad image", DurationMs: 20},
			{ID: "c", CreatedAt: at.Add(2 * time.Minute), Outcome: model.OutcomeTransportError, Message: "dial tcp", DurationMs: 5},
		},
		digits: []model.DigitAggregate{{Digit: 7, Count: 1, ConfidenceSum: 0.9, MinConfidence: 0.9}},
	}
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewModelLoadsReport(t *testing.T) {
	m := NewModel(sampleSource(), model.HistoryConfig{CurveWindow: 5})
	if m.errMsg != "" {
		t.Fatalf("unexpected error: %s", m.errMsg)
	}
	if m.report.Summary.Attempts != 3 || m.report.Summary.Successes != 1 {
		t.Fatalf("unexpected summary: %+v", m.report.Summary)
	}
	if len(m.attempts.Rows()) != 3 {
		t.Fatalf("expected 3 attempt rows, got %d", len(m.attempts.Rows()))
	}
}

func TestViewRendersOverview(t *testing.T) {
	m := NewModel(sampleSource(), model.HistoryConfig{CurveWindow: 5})
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	out := m.View()
	for _, want := range []string{"Overview", "Attempts", "Avg Confidence", "Filters: since=any  last=all  window=5"} {
		if !strings.Contains(out, want) {
			t.Fatalf("view missing %q", want)
		}
	}
}

func TestViewEmptyBeforeResize(t *testing.T) {
	m := NewModel(sampleSource(), model.HistoryConfig{})
	if m.View() != "" {
		t.Fatalf("expected empty view before window size")
	}
	if m.cfg.CurveWindow != 1 {
		t.Fatalf("expected curve window defaulted to 1, got %d", m.cfg.CurveWindow)
	}
}

func TestLoadErrorIsShown(t *testing.T) {
	m := NewModel(&fakeSource{err: errors.New("db locked")}, model.HistoryConfig{})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	if !strings.Contains(m.View(), "db locked") {
		t.Fatalf("expected load error in view")
	}
}

func TestTabNavigationWraps(t *testing.T) {
	m := NewModel(sampleSource(), model.HistoryConfig{})
	m.Update(keyRunes("h"))
	if m.activeTab != tabAttempts {
		t.Fatalf("expected wrap to attempts, got %d", m.activeTab)
	}
	m.Update(keyRunes("l"))
	if m.activeTab != tabOverview {
		t.Fatalf("expected wrap to overview, got %d", m.activeTab)
	}
}

func TestCurveWindowSteps(t *testing.T) {
	m := NewModel(sampleSource(), model.HistoryConfig{CurveWindow: 3})
	m.Update(keyRunes("="))
	if m.cfg.CurveWindow != 5 {
		t.Fatalf("expected 5, got %d", m.cfg.CurveWindow)
	}
	m.Update(keyRunes("="))
	m.Update(keyRunes("-"))
	m.Update(keyRunes("-"))
	if m.cfg.CurveWindow != 1 {
		t.Fatalf("expected 1, got %d", m.cfg.CurveWindow)
	}
}

func TestApplyFilter(t *testing.T) {
	src := sampleSource()
	m := NewModel(src, model.HistoryConfig{CurveWindow: 1})
	m.Update(keyRunes("/"))
	if !m.filterMode {
		t.Fatalf("expected filter mode")
	}
	m.filterInputs[0].SetValue("2026-02-01")
	m.filterInputs[1].SetValue("20")
	m.filterInputs[2].SetValue("4")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.filterMode {
		t.Fatalf("expected filter mode to close: %s", m.filterError)
	}
	if src.lastCfg.Last != 20 || src.lastCfg.Since == nil || src.lastCfg.Since.Format("2006-01-02") != "2026-02-01" {
		t.Fatalf("filters not passed to source: %+v", src.lastCfg)
	}
	if m.cfg.CurveWindow != 4 {
		t.Fatalf("unexpected curve window: %d", m.cfg.CurveWindow)
	}
}

func TestApplyFilterRejectsBadInput(t *testing.T) {
	m := NewModel(sampleSource(), model.HistoryConfig{CurveWindow: 1})
	m.Update(keyRunes("/"))
	m.filterInputs[0].SetValue("yesterday")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !m.filterMode || !strings.Contains(m.filterError, "since") {
		t.Fatalf("expected since error, got %q", m.filterError)
	}
	m.filterInputs[0].SetValue("")
	m.filterInputs[2].SetValue("0")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !m.filterMode || !strings.Contains(m.filterError, "window") {
		t.Fatalf("expected window error, got %q", m.filterError)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.filterMode {
		t.Fatalf("expected esc to cancel")
	}
}

func TestQuitKeys(t *testing.T) {
	m := NewModel(sampleSource(), model.HistoryConfig{})
	_, cmd := m.Update(keyRunes("q"))
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected quit message")
	}
}

func TestAttemptRows(t *testing.T) {
	rows := attemptRows(sampleSource().records)
	if rows[0][1] != "predicted" || rows[0][2] != "7" || rows[0][3] != "90.0%" {
		t.Fatalf("unexpected success row: %v", rows[0])
	}
	if rows[1][1] != "service" || rows[1][2] != "-" || rows[1][5] != "bad image" {
		t.Fatalf("unexpected app error row: %v", rows[1])
	}
	if rows[2][1] != "connection" || rows[2][4] != "5 ms" {
		t.Fatalf("unexpected transport row: %v", rows[2])
	}
}

func TestRenderDigitsListsWeakDigits(t *testing.T) {
	out := renderDigits([]model.DigitAggregate{
		{Digit: 1, Count: 2, ConfidenceSum: 1.9, MinConfidence: 0.9},
		{Digit: 8, Count: 2, ConfidenceSum: 0.8, MinConfidence: 0.3},
	})
	if !strings.Contains(out, "Per-Digit") || !strings.Contains(out, "Least confident: 8") {
		t.Fatalf("unexpected digits output: %s", out)
	}
}

func TestRenderDigitsListsMostPredicted(t *testing.T) {
	out := renderDigits([]model.DigitAggregate{
		{Digit: 1, Count: 2, ConfidenceSum: 1.9, MinConfidence: 0.9},
		{Digit: 4, Count: 5, ConfidenceSum: 4.5, MinConfidence: 0.8},
		{Digit: 8, Count: 2, ConfidenceSum: 0.8, MinConfidence: 0.3},
	})
	if !strings.Contains(out, "Most predicted: 4, 1, 8") {
		t.Fatalf("unexpected digits output: %s", out)
	}
}

func TestConfidenceTrend(t *testing.T) {
	records := []model.PredictionRecord{
		{Outcome: model.OutcomeSuccess, Confidence: 0.2},
		{Outcome: model.OutcomeAppError, Message: "bad image"},
		{Outcome: model.OutcomeSuccess, Confidence: 0.9},
	}
	if got := confidenceTrend(records, 80); got != " @" {
		t.Fatalf("unexpected trend %q", got)
	}
	if got := confidenceTrend(records, 1); got != "+" {
		t.Fatalf("expected only the latest value, got %q", got)
	}
	if got := confidenceTrend(records[1:2], 80); got != "" {
		t.Fatalf("expected empty trend without successes, got %q", got)
	}
}
