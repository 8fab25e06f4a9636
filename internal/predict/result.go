package predict

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/verte-zerg/digitpad/internal/model"
)

// ConnectErrorText is shown for every transport-class failure.
const ConnectErrorText = "Error: Could not connect to server"

// Classify maps a Predict error onto an outcome.
func Classify(err error) model.Outcome {
	if err == nil {
		return model.OutcomeSuccess
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return model.OutcomeAppError
	}
	return model.OutcomeTransportError
}

// FormatResult renders the text shown to the user for a settled prediction.
func FormatResult(p Prediction, err error) string {
	switch Classify(err) {
	case model.OutcomeSuccess:
		return fmt.Sprintf("Predicted Digit: %d (Confidence: %.1f%%)", p.Digit, percent(p.Confidence))
	case model.OutcomeAppError:
		var apiErr *APIError
		errors.As(err, &apiErr)
		return "Error: " + apiErr.Message
	default:
		return ConnectErrorText
	}
}

// percent scales a confidence to a percentage rounded to one decimal,
// with halves rounded away from zero.
func percent(confidence float64) float64 {
	return math.Round(confidence*1000) / 10
}

// Record converts a settled prediction into a history record.
func Record(id, endpoint string, p Prediction, err error, elapsed time.Duration) model.PredictionRecord {
	rec := model.PredictionRecord{
		ID:         id,
		Endpoint:   endpoint,
		Outcome:    Classify(err),
		DurationMs: elapsed.Milliseconds(),
	}
	switch rec.Outcome {
	case model.OutcomeSuccess:
		rec.Digit = p.Digit
		rec.Confidence = p.Confidence
	case model.OutcomeAppError:
		var apiErr *APIError
		errors.As(err, &apiErr)
		rec.Message = apiErr.Message
	default:
		rec.Message = err.Error()
	}
	return rec
}
