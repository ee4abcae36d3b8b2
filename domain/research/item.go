package research

import (
	"fmt"
	"strings"

	"pricebench/domain/core"
	"pricebench/domain/pricing"
	"pricebench/domain/units"
)

// FinalMethod is the statistic that ends up as the item's market price. It is
// the engine's suggestion unless the analyst opts into the minimum valid
// price (common for direct-award purchases).
type FinalMethod string

const (
	FinalMethodMean    FinalMethod = "mean"
	FinalMethodMedian  FinalMethod = "median"
	FinalMethodMinimum FinalMethod = "minimum_price"
)

// Item is one good or service inside a price research: its description, the
// collected quotations, the engine's evaluation and the analyst's final
// decision.
type Item struct {
	ID          core.ItemID `json:"id"`
	Number      int         `json:"number"`
	Description string      `json:"description"`
	Unit        string      `json:"unit"`
	Quantity    int         `json:"quantity"`

	// ContractedUnitPrice is only meaningful on contract-extension research.
	ContractedUnitPrice float64 `json:"contracted_unit_price,omitempty"`

	Quotations []pricing.Quotation       `json:"quotations"`
	Evaluation *pricing.EvaluationResult `json:"evaluation,omitempty"`

	// UseMinimumPrice overrides the suggested method with the cheapest valid
	// quotation.
	UseMinimumPrice bool `json:"use_minimum_price"`
	// Justification is the analyst's written explanation for the evaluation
	// problems. Required before the research can be finalized whenever the
	// evaluation reported problems.
	Justification string `json:"justification,omitempty"`

	FinalMethod      FinalMethod `json:"final_method,omitempty"`
	UnitMarketPrice  float64     `json:"unit_market_price,omitempty"`
	TotalMarketPrice float64     `json:"total_market_price,omitempty"`
}

// NewItem creates a research item with a normalized unit label
func NewItem(number int, description, unitLabel string, quantity int) (*Item, error) {
	unit, ok := units.Normalize(unitLabel)
	if !ok {
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownUnit, unitLabel)
	}
	if quantity <= 0 {
		return nil, core.NewValidationError("quantity", "must be positive")
	}
	return &Item{
		ID:          core.ItemID(core.NewID()),
		Number:      number,
		Description: description,
		Unit:        unit,
		Quantity:    quantity,
		Quotations:  []pricing.Quotation{},
	}, nil
}

// IsEvaluated reports whether the item carries a usable evaluation
func (it *Item) IsEvaluated() bool {
	return it.Evaluation != nil && it.Evaluation.Aggregates != nil
}

// NeedsJustification reports whether the evaluation raised problems that the
// analyst has not yet justified
func (it *Item) NeedsJustification() bool {
	if it.Evaluation == nil {
		return false
	}
	return len(it.Evaluation.Problems) > 0 && strings.TrimSpace(it.Justification) == ""
}

// Finalize locks in the item's market price from its evaluation, honoring the
// minimum-price override and the research's rounding configuration.
func (it *Item) Finalize(cfg pricing.EvaluationConfig) error {
	if !it.IsEvaluated() {
		return fmt.Errorf("%w: item %d", core.ErrResearchNotEvaluated, it.Number)
	}

	agg := it.Evaluation.Aggregates
	switch {
	case it.UseMinimumPrice:
		it.FinalMethod = FinalMethodMinimum
		it.UnitMarketPrice = cfg.Round(*agg.CheapestValid.Price)
	case agg.SuggestedMethod == pricing.MethodMedian:
		it.FinalMethod = FinalMethodMedian
		it.UnitMarketPrice = agg.MarketPrice
	default:
		it.FinalMethod = FinalMethodMean
		it.UnitMarketPrice = agg.MarketPrice
	}
	it.TotalMarketPrice = cfg.Round(it.UnitMarketPrice * float64(it.Quantity))
	return nil
}

// BestPrice returns the cheapest valid quotation of the item's evaluation
func (it *Item) BestPrice() (pricing.ClassifiedQuotation, bool) {
	if !it.IsEvaluated() {
		return pricing.ClassifiedQuotation{}, false
	}
	return it.Evaluation.Aggregates.CheapestValid, true
}
