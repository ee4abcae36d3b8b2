package pricing

import (
	"fmt"

	"github.com/montanaflynn/stats"
)

// Engine labels each quoted price as valid, excessively high or inexequible,
// computes the aggregate market-price statistics and flags data-quality
// problems that require analyst justification.
//
// The engine is stateless and side-effect free: it never mutates its inputs
// and every call produces a fresh EvaluationResult, so a single Engine may be
// shared across goroutines without coordination.
type Engine struct{}

// NewEngine creates a new price evaluation engine
func NewEngine() *Engine {
	return &Engine{}
}

// Evaluate runs the two exclusion filters and the aggregate computation over
// the given quotations. Rows without a finite price are dropped up front.
// An empty or all-prices-absent input yields an empty result, not an error.
//
// Both filters compare each price against the mean of the other eligible
// prices (leave-one-out). The comparison set is fixed at filter entry:
// decisions taken during a pass do not change the peer mean seen by the
// remaining rows of that same pass.
func (e *Engine) Evaluate(quotations []Quotation, cfg EvaluationConfig) EvaluationResult {
	classified := make([]ClassifiedQuotation, 0, len(quotations))
	for _, q := range quotations {
		if !q.HasPrice() {
			continue
		}
		classified = append(classified, ClassifiedQuotation{Quotation: q, Status: StatusValid})
	}

	result := EvaluationResult{
		Classified: classified,
		Problems:   []string{},
	}
	if len(classified) == 0 {
		return result
	}

	e.flagExcessivelyHigh(classified, cfg)
	e.flagInexequible(classified, cfg)

	e.checkResearchProblems(&result)

	valid := validEntries(classified)
	if len(valid) == 0 {
		result.Problems = append(result.Problems, ProblemNoValidPrice)
		return result
	}

	result.Aggregates = e.computeAggregates(classified, valid, cfg)
	return result
}

// flagExcessivelyHigh marks prices that exceed the leave-one-out mean of the
// full entry set by more than the configured percentage. The peer mean comes
// from a precomputed sum: (total - p) / (n - 1) is exactly the mean of the
// other rows, without recomputing it per row.
func (e *Engine) flagExcessivelyHigh(classified []ClassifiedQuotation, cfg EvaluationConfig) {
	total, count := sumPrices(classified, false)
	if count-1 < 2 {
		// The leave-one-out mean needs at least 2 other rows.
		return
	}

	factor := 1 + float64(cfg.ExcessThresholdPct)/100
	for i := range classified {
		p := *classified[i].Price
		meanOthers := (total - p) / float64(count-1)
		if p > factor*meanOthers {
			classified[i].Status = StatusExcessivelyHigh
			classified[i].Note = "Price excessively elevated."
		}
	}
}

// flagInexequible marks prices that fall below the configured percentage of
// the leave-one-out mean of the rows still valid after the excess filter.
// Public-source prices are never reclassified: they keep StatusValid and
// receive an explanatory note instead.
func (e *Engine) flagInexequible(classified []ClassifiedQuotation, cfg EvaluationConfig) {
	total, count := sumPrices(classified, true)
	if count-1 < 2 {
		return
	}

	floor := float64(cfg.InexequibleThresholdPct) / 100
	for i := range classified {
		if classified[i].Status != StatusValid {
			continue
		}
		p := *classified[i].Price
		meanOthers := (total - p) / float64(count-1)
		if p >= floor*meanOthers {
			continue
		}

		pct := 0.0
		if meanOthers > 0 {
			pct = p / meanOthers * 100
		}
		if classified[i].SourceKind.IsPublic() {
			classified[i].Note = fmt.Sprintf(
				"Below the inexequibility threshold (%.2f%% of the mean of the other prices) but accepted as a price practiced by a public administration body.", pct)
			continue
		}
		classified[i].Status = StatusInexequible
		classified[i].Note = fmt.Sprintf("Price inexequible (%.2f%% of the mean of the other prices).", pct)
	}
}

// checkResearchProblems appends the data-quality warnings the analyst must
// justify. The zero and fewer-than-3 public-source warnings are mutually
// exclusive.
func (e *Engine) checkResearchProblems(result *EvaluationResult) {
	validCount := 0
	publicValidCount := 0
	for _, c := range result.Classified {
		if c.Status != StatusValid {
			continue
		}
		validCount++
		if c.SourceKind.IsPublic() {
			publicValidCount++
		}
	}

	if validCount < 3 {
		result.Problems = append(result.Problems, ProblemFewValidPrices)
	}
	switch {
	case publicValidCount == 0:
		result.Problems = append(result.Problems, ProblemNoPublicSource)
	case publicValidCount < 3:
		result.Problems = append(result.Problems, ProblemFewPublicSources)
	}
}

// computeAggregates computes the market-price statistics over the final valid
// set and applies the configured rounding to the monetary outputs.
func (e *Engine) computeAggregates(classified, valid []ClassifiedQuotation, cfg EvaluationConfig) *Aggregates {
	prices := make([]float64, len(valid))
	for i, c := range valid {
		prices[i] = *c.Price
	}

	mean, _ := stats.Mean(prices)
	median, _ := stats.Median(prices)

	stdDev := 0.0
	if len(prices) > 1 {
		stdDev, _ = stats.StandardDeviationPopulation(prices)
	}
	cv := 0.0
	if mean > 0 {
		cv = stdDev / mean * 100
	}

	method := MethodMean
	marketPriceRaw := mean
	if cv > dispersionCutoffPct {
		method = MethodMedian
		marketPriceRaw = median
	}

	return &Aggregates{
		Mean:                      cfg.Round(mean),
		Median:                    median,
		StdDev:                    stdDev,
		CoefficientOfVariationPct: cv,
		SuggestedMethod:           method,
		MarketPrice:               cfg.Round(marketPriceRaw),
		CheapestValid:             cheapestValid(classified),
	}
}

// sumPrices totals the prices of the classified rows, optionally restricted
// to rows still valid
func sumPrices(classified []ClassifiedQuotation, validOnly bool) (total float64, count int) {
	for _, c := range classified {
		if validOnly && c.Status != StatusValid {
			continue
		}
		total += *c.Price
		count++
	}
	return total, count
}

// validEntries returns the rows that survived both filters, in input order
func validEntries(classified []ClassifiedQuotation) []ClassifiedQuotation {
	valid := make([]ClassifiedQuotation, 0, len(classified))
	for _, c := range classified {
		if c.Status == StatusValid {
			valid = append(valid, c)
		}
	}
	return valid
}

// cheapestValid returns the minimum-price valid row. Ties break toward the
// first occurrence in input order.
func cheapestValid(classified []ClassifiedQuotation) ClassifiedQuotation {
	var best ClassifiedQuotation
	found := false
	for _, c := range classified {
		if c.Status != StatusValid {
			continue
		}
		if !found || *c.Price < *best.Price {
			best = c
			found = true
		}
	}
	return best
}
