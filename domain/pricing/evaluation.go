package pricing

import (
	"pricebench/domain/core"
)

// QuotationStatus is the verdict the engine assigns to a priced quotation
type QuotationStatus string

const (
	StatusValid           QuotationStatus = "valid"
	StatusExcessivelyHigh QuotationStatus = "excessively_high"
	StatusInexequible     QuotationStatus = "inexequible"
)

// Method is the aggregate statistic chosen as the market price
type Method string

const (
	MethodMean   Method = "mean"
	MethodMedian Method = "median"
)

// Coefficient-of-variation cutoff (in percent) above which the price set is
// considered too dispersed for the mean and the median is suggested instead.
const dispersionCutoffPct = 25.0

// Problem strings surfaced to the analyst. The calling application must
// collect a written justification whenever any of these is present.
const (
	ProblemFewValidPrices   = "the research has fewer than 3 valid prices, which reduces the reliability of the estimate"
	ProblemNoPublicSource   = "no valid price from a public source was identified"
	ProblemFewPublicSources = "fewer than 3 valid public-source prices; supplement the research if possible"
	ProblemNoValidPrice     = "no valid price found to compute the market price"
)

// ClassifiedQuotation is a quotation after evaluation: the input row plus the
// verdict and a human-readable note (possibly empty)
type ClassifiedQuotation struct {
	Quotation
	Status QuotationStatus `json:"status"`
	Note   string          `json:"note,omitempty"`
}

// Aggregates holds the statistics computed over the final valid set. The
// block is absent from an EvaluationResult when no valid price survived.
type Aggregates struct {
	Mean                      float64             `json:"mean"`
	Median                    float64             `json:"median"`
	StdDev                    float64             `json:"std_dev"`
	CoefficientOfVariationPct float64             `json:"coefficient_of_variation_pct"`
	SuggestedMethod           Method              `json:"suggested_method"`
	MarketPrice               float64             `json:"market_price"`
	CheapestValid             ClassifiedQuotation `json:"cheapest_valid"`
}

// EvaluationResult is the complete output of one engine invocation. It has no
// persistent identity; storing it is the caller's concern.
type EvaluationResult struct {
	Classified []ClassifiedQuotation `json:"classified"`
	Problems   []string              `json:"problems"`
	Aggregates *Aggregates           `json:"aggregates,omitempty"`
}

// IsEmpty reports whether the evaluation had nothing to analyze
func (r EvaluationResult) IsEmpty() bool {
	return len(r.Classified) == 0
}

// ValidCount returns the number of quotations that survived both filters
func (r EvaluationResult) ValidCount() int {
	n := 0
	for _, c := range r.Classified {
		if c.Status == StatusValid {
			n++
		}
	}
	return n
}

// EvaluationConfig carries the analyst-tunable parameters for one evaluation.
// It replaces the ambient session state of earlier tooling: every call gets
// its configuration explicitly.
type EvaluationConfig struct {
	// ExcessThresholdPct marks a price excessively high when it exceeds the
	// peer mean by more than this percentage. Range [0,100], default 25.
	ExcessThresholdPct int `json:"excess_threshold_pct"`
	// InexequibleThresholdPct marks a price inexequible when it falls below
	// this percentage of the peer mean. Range [0,100], default 75.
	InexequibleThresholdPct int `json:"inexequible_threshold_pct"`
	// DecimalPlaces is the monetary precision for rounded outputs, clamped
	// to [0,7].
	DecimalPlaces int `json:"decimal_places"`
	// UseNBRRounding selects NBR 5891 half-to-even rounding; plain
	// half-away-from-zero rounding otherwise.
	UseNBRRounding bool `json:"use_nbr_rounding"`
}

// DefaultEvaluationConfig returns the standard analyst defaults
func DefaultEvaluationConfig() EvaluationConfig {
	return EvaluationConfig{
		ExcessThresholdPct:      25,
		InexequibleThresholdPct: 75,
		DecimalPlaces:           2,
		UseNBRRounding:          true,
	}
}

// Round applies the configured rounding policy at the configured precision
func (c EvaluationConfig) Round(v float64) float64 {
	if c.UseNBRRounding {
		return core.RoundNBR5891(v, c.DecimalPlaces)
	}
	return core.Round(v, c.DecimalPlaces)
}
