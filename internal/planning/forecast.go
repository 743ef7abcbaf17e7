package planning

import (
	"context"
	"time"

	"invopt-mcp/internal/forecast"
	"invopt-mcp/internal/inventory"
	"invopt-mcp/internal/stats"
)

// ForecastRequest asks for a demand forecast of one variant.
type ForecastRequest struct {
	VariantID  string              `json:"variant_id"`
	Parameters forecast.Parameters `json:"parameters"`
}

// ForecastReport is the historical series and projection of one variant.
type ForecastReport struct {
	GeneratedAt time.Time              `json:"generated_at"`
	Variant     inventory.Variant      `json:"variant"`
	Total       float64                `json:"forecast_total"`
	Demand      stats.DemandStatistics `json:"demand"`
	forecast.Result
}

// Forecast projects demand for one variant.
func (s *Service) Forecast(ctx context.Context, req ForecastRequest) (ForecastReport, error) {
	params, err := s.forecastParameters(req.Parameters)
	if err != nil {
		return ForecastReport{}, err
	}
	snap, err := s.loadOne(ctx, req.VariantID)
	if err != nil {
		return ForecastReport{}, err
	}

	now := s.now()
	an, err := s.analyze(snap, params, now)
	if err != nil {
		return ForecastReport{}, err
	}
	return ForecastReport{
		GeneratedAt: now,
		Variant:     snap.Variant,
		Total:       an.forecast.Total(),
		Demand:      an.demand,
		Result:      an.forecast,
	}, nil
}

// BacktestRequest asks for a walk-forward accuracy check of one variant's forecast.
type BacktestRequest struct {
	VariantID   string              `json:"variant_id"`
	Parameters  forecast.Parameters `json:"parameters"`
	MinTraining int                 `json:"min_training"`
}

// BacktestReport is the walk-forward accuracy of one variant.
type BacktestReport struct {
	GeneratedAt time.Time         `json:"generated_at"`
	Variant     inventory.Variant `json:"variant"`
	forecast.BacktestResult
}

// Backtest measures one-step-ahead forecast accuracy over the variant's own history.
func (s *Service) Backtest(ctx context.Context, req BacktestRequest) (BacktestReport, error) {
	if req.MinTraining < 0 {
		return BacktestReport{}, invalid("min_training must not be negative, got %d", req.MinTraining)
	}
	params := req.Parameters
	if params.Periods == 0 {
		params.Periods = 1
	}
	if _, err := s.forecastParameters(params); err != nil {
		return BacktestReport{}, err
	}
	snap, err := s.loadOne(ctx, req.VariantID)
	if err != nil {
		return BacktestReport{}, err
	}

	res, err := forecast.Backtest(snap.History, params, req.MinTraining)
	if err != nil {
		return BacktestReport{}, err
	}
	return BacktestReport{GeneratedAt: s.now(), Variant: snap.Variant, BacktestResult: res}, nil
}
