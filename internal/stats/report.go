package stats

import (
	"context"

	"github.com/verte-zerg/digitpad/internal/model"
)

// Source is the read side of the prediction history.
type Source interface {
	ListPredictions(ctx context.Context, cfg model.HistoryConfig) ([]model.PredictionRecord, error)
	DigitAggregates(ctx context.Context, cfg model.HistoryConfig) ([]model.DigitAggregate, error)
}

// Report contains precomputed data for history rendering.
type Report struct {
	Records []model.PredictionRecord
	Digits  []model.DigitAggregate
	Summary Summary
}

// BuildReport loads and prepares data for history rendering.
func BuildReport(ctx context.Context, src Source, cfg model.HistoryConfig) (Report, error) {
	records, err := src.ListPredictions(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	digits, err := src.DigitAggregates(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	return Report{
		Records: records,
		Digits:  digits,
		Summary: Summarize(records),
	}, nil
}
