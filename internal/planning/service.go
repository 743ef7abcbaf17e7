package planning

import (
	"context"
	"fmt"
	"strings"
	"time"

	"invopt-mcp/internal/forecast"
	"invopt-mcp/internal/inventory"
	"invopt-mcp/internal/policy"
	"invopt-mcp/internal/simulation"
	"invopt-mcp/internal/stats"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Source hands out read-only variant snapshots. Unknown IDs are simply absent
// from the returned map.
type Source interface {
	LoadVariants(ctx context.Context, ids []string) (map[string]inventory.VariantSnapshot, error)
}

// Service composes the forecasting and policy packages over a Source.
type Service struct {
	source   Source
	defaults Defaults
	now      func() time.Time
}

// NewService creates a Service. A nil clock falls back to time.Now in UTC.
func NewService(src Source, defaults Defaults, now func() time.Time) *Service {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Service{source: src, defaults: defaults.withFallbacks(), now: now}
}

// Defaults returns the effective planning defaults.
func (s *Service) Defaults() Defaults {
	return s.defaults
}

// load resolves ids in request order, failing on the first request-level problem.
func (s *Service) load(ctx context.Context, ids []string) ([]inventory.VariantSnapshot, error) {
	ids = normalizeIDs(ids)
	if len(ids) == 0 {
		return nil, invalid("at least one variant id is required")
	}

	found, err := s.source.LoadVariants(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load variants: %w", err)
	}

	var missing []string
	snaps := make([]inventory.VariantSnapshot, 0, len(ids))
	for _, id := range ids {
		snap, ok := found[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		snaps = append(snaps, snap)
	}
	if len(missing) > 0 {
		return nil, &NotFoundError{IDs: missing}
	}

	log.Debug().Int("count", len(snaps)).Msg("Loaded variant snapshots")
	return snaps, nil
}

func (s *Service) loadOne(ctx context.Context, id string) (inventory.VariantSnapshot, error) {
	snaps, err := s.load(ctx, []string{id})
	if err != nil {
		return inventory.VariantSnapshot{}, err
	}
	return snaps[0], nil
}

// normalizeIDs trims whitespace, drops blanks and removes duplicates, keeping first occurrence order.
func normalizeIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func (s *Service) forecastParameters(p forecast.Parameters) (forecast.Parameters, error) {
	if p.Periods == 0 {
		p.Periods = s.defaults.ForecastPeriods
	}
	if err := p.Validate(); err != nil {
		return p, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return p, nil
}

func (s *Service) simulationOptions(iterations int, seed *int64) simulation.Options {
	opts := simulation.Options{Iterations: iterations, Seed: s.defaults.Seed}
	if iterations <= 0 {
		opts.Iterations = s.defaults.Iterations
	}
	if seed != nil {
		opts.Seed = *seed
	}
	return opts
}

// analysis is the forecast and demand statistics of one variant.
type analysis struct {
	forecast forecast.Result
	demand   stats.DemandStatistics
}

func (s *Service) analyze(snap inventory.VariantSnapshot, params forecast.Parameters, asOf time.Time) (analysis, error) {
	res, err := forecast.Run(forecast.Request{
		History:         snap.History,
		SeasonalFactors: snap.SeasonalFactors,
		Parameters:      params,
		AsOf:            asOf,
	})
	if err != nil {
		return analysis{}, fmt.Errorf("forecast %s: %w", snap.Variant.ID, err)
	}

	demand := stats.AggregateDemand(stats.DemandInput{
		History:         snap.History,
		Aggregates:      snap.Aggregates,
		Window:          s.defaults.StatsWindow,
		ForecastTotal:   res.Total(),
		ForecastPeriods: len(res.Forecast),
	})
	return analysis{forecast: res, demand: demand}, nil
}

// buildInput assembles the policy input of one variant from its snapshot,
// demand statistics and resolved parameters.
func buildInput(snap inventory.VariantSnapshot, demand stats.DemandStatistics, params Parameters) policy.Input {
	return policy.Input{
		Variant:            snap.Variant,
		OnHand:             snap.Stock.OnHand,
		Reserved:           snap.Stock.Reserved,
		AverageDailyDemand: demand.AverageDailyDemand,
		DemandStdDev:       demand.DailyStdDev,
		LeadTimeDays:       params.LeadTimeDays.Value,
		ReviewPeriodDays:   params.ReviewPeriodDays.Value,
		UnitPrice:          snap.Master.UnitPrice,
		Currency:           snap.Master.Currency,
		HoldingCostRate:    params.HoldingCostRate,
		OrderingCost:       params.OrderingCost,
		TargetServiceLevel: params.ServiceLevel.Value,
		StockoutCost:       params.StockoutCost,
		MinStockLevel:      snap.Stock.MinStockLevel,

		SafetyStockOverride:     snap.Master.SafetyStock,
		ReorderPointOverride:    snap.Master.ReorderPoint,
		ReorderQuantityOverride: snap.Master.ReorderQuantity,
	}
}

// prepare runs the shared per-variant pipeline up to the policy input.
func (s *Service) prepare(snap inventory.VariantSnapshot, fp forecast.Parameters, a Assumptions, asOf time.Time) (analysis, Parameters, policy.Input, error) {
	an, err := s.analyze(snap, fp, asOf)
	if err != nil {
		return analysis{}, Parameters{}, policy.Input{}, err
	}
	params := s.defaults.Resolve(snap, a)
	return an, params, buildInput(snap, an.demand, params), nil
}

// forEach runs fn for every index with at most limit concurrent calls.
// Each call writes only its own slot, so results keep request order.
func forEach(ctx context.Context, limit, n int, fn func(i int) error) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i := range n {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return fn(i)
		})
	}
	return g.Wait()
}
