// Package model defines shared data structures.
package model

import "time"

// Config defines drawing session settings.
type Config struct {
	Endpoint       string
	Timeout        time.Duration
	HistoryEnabled bool
	Drill          bool
	WeakTop        int
	WeakFactor     float64
	WeakWindow     int
}

// HistoryConfig defines filters and options for history output.
type HistoryConfig struct {
	Since       *time.Time
	Last        int
	CurveWindow int
}

// Outcome classifies a settled prediction attempt.
type Outcome string

// Prediction outcomes.
const (
	OutcomeSuccess        Outcome = "success"
	OutcomeAppError       Outcome = "app_error"
	OutcomeTransportError Outcome = "transport_error"
)

// PredictionRecord captures a settled prediction attempt.
type PredictionRecord struct {
	ID         string
	CreatedAt  time.Time
	Endpoint   string
	Outcome    Outcome
	Digit      int
	Confidence float64
	Message    string
	DurationMs int64
}

// DigitAggregate aggregates successful predictions for one digit.
type DigitAggregate struct {
	Digit         int
	Count         int
	ConfidenceSum float64
	MinConfidence float64
}
