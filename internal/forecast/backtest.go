package forecast

import (
	"fmt"
	"math"

	"invopt-mcp/internal/inventory"
	"invopt-mcp/internal/stats"
)

// DefaultMinTraining is the smallest training window used by Backtest.
const DefaultMinTraining = 3

// Checkpoint is a single one-step-ahead prediction compared with what actually happened.
type Checkpoint struct {
	Period    string  `json:"period"`
	Actual    float64 `json:"actual"`
	Predicted float64 `json:"predicted"`
	AbsError  float64 `json:"abs_error"`
}

// BacktestResult aggregates the walk-forward accuracy of the forecaster.
type BacktestResult struct {
	Checkpoints       []Checkpoint `json:"checkpoints"`
	MAE               float64      `json:"mae"`
	MAPE              float64      `json:"mape"`
	MedianAbsError    float64      `json:"median_abs_error"`
	ValidationMessage string       `json:"validation_message"`
}

// Backtest walks forward through the monthly series, fitting on months
// [0, i) and predicting month i, for every i >= minTraining.
// Seasonal factors are not applied; the check isolates the level/trend fit.
func Backtest(history []inventory.Observation, params Parameters, minTraining int) (BacktestResult, error) {
	if params.Periods == 0 {
		params.Periods = 1
	}
	if err := params.Validate(); err != nil {
		return BacktestResult{}, err
	}
	if minTraining < 1 {
		minTraining = DefaultMinTraining
	}

	monthly := stats.MonthlySeries(history)
	series := stats.Quantities(monthly)
	result := BacktestResult{Checkpoints: make([]Checkpoint, 0)}

	if len(series) <= minTraining {
		result.ValidationMessage = fmt.Sprintf("Insufficient history: %d months available, need more than %d to backtest.", len(series), minTraining)
		return result, nil
	}

	alpha, beta := params.alpha(), params.beta()
	var absErrors []float64
	pctSum, pctCount := 0.0, 0

	for i := minTraining; i < len(series); i++ {
		level, trend := holt(series[:i], alpha, beta)
		predicted := math.Max(0, level+trend)
		actual := series[i]
		absErr := math.Abs(actual - predicted)

		absErrors = append(absErrors, absErr)
		if actual != 0 {
			pctSum += absErr / math.Abs(actual)
			pctCount++
		}

		result.Checkpoints = append(result.Checkpoints, Checkpoint{
			Period:    monthly[i].Label(),
			Actual:    stats.RoundQuantity(actual),
			Predicted: stats.RoundQuantity(predicted),
			AbsError:  stats.RoundQuantity(absErr),
		})
	}

	result.MAE = stats.RoundQuantity(stats.Mean(absErrors))
	result.MedianAbsError = stats.RoundQuantity(stats.CalculateMedian(absErrors))
	if pctCount > 0 {
		result.MAPE = stats.RoundRate(pctSum / float64(pctCount))
	}
	result.ValidationMessage = fmt.Sprintf("Backtested %d one-step-ahead checkpoints (MAPE %.1f%%).", len(result.Checkpoints), result.MAPE*100)
	return result, nil
}
