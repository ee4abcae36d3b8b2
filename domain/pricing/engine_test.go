package pricing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quotationsFromPrices(kind SourceKind, prices ...float64) []Quotation {
	qs := make([]Quotation, 0, len(prices))
	for _, p := range prices {
		qs = append(qs, NewQuotation("source", kind, "", p))
	}
	return qs
}

func TestEvaluateSingleQuotation(t *testing.T) {
	engine := NewEngine()
	cfg := DefaultEvaluationConfig()

	result := engine.Evaluate([]Quotation{
		NewQuotation("Acme", SourceVendor, "SEI-001", 100),
	}, cfg)

	require.Len(t, result.Classified, 1)
	assert.Equal(t, StatusValid, result.Classified[0].Status)
	assert.Empty(t, result.Classified[0].Note)

	require.NotNil(t, result.Aggregates)
	agg := result.Aggregates
	assert.Equal(t, 100.0, agg.Mean)
	assert.Equal(t, 100.0, agg.Median)
	assert.Equal(t, 100.0, agg.MarketPrice)
	assert.Equal(t, 0.0, agg.StdDev)
	assert.Equal(t, 0.0, agg.CoefficientOfVariationPct)
	assert.Equal(t, MethodMean, agg.SuggestedMethod)
	assert.Equal(t, 100.0, *agg.CheapestValid.Price)

	// One warning for the low valid count, one for the missing public source.
	require.Len(t, result.Problems, 2)
	assert.Contains(t, result.Problems, ProblemFewValidPrices)
	assert.Contains(t, result.Problems, ProblemNoPublicSource)
}

func TestEvaluateFlagsExcessivelyHigh(t *testing.T) {
	engine := NewEngine()
	cfg := DefaultEvaluationConfig()

	result := engine.Evaluate(quotationsFromPrices(SourceVendor, 100, 100, 1000), cfg)

	require.Len(t, result.Classified, 3)
	assert.Equal(t, StatusValid, result.Classified[0].Status)
	assert.Equal(t, StatusValid, result.Classified[1].Status)
	// Mean of the others is 100; 1000 > 1.25 * 100.
	assert.Equal(t, StatusExcessivelyHigh, result.Classified[2].Status)
	assert.Equal(t, "Price excessively elevated.", result.Classified[2].Note)

	require.NotNil(t, result.Aggregates)
	assert.Equal(t, 100.0, result.Aggregates.MarketPrice)
	assert.Equal(t, 100.0, result.Aggregates.Mean)
	assert.Equal(t, 2, result.ValidCount())
}

func TestEvaluatePublicSourceInexequibleExemption(t *testing.T) {
	engine := NewEngine()
	cfg := DefaultEvaluationConfig()
	// Keep the excess filter out of the way so only the inexequible filter acts.
	cfg.ExcessThresholdPct = 100

	quotations := []Quotation{
		NewQuotation("Vendor A", SourceVendor, "", 100),
		NewQuotation("Vendor B", SourceVendor, "", 100),
		NewQuotation("Price Bank", SourcePublicPriceBank, "", 10),
	}

	result := engine.Evaluate(quotations, cfg)
	require.Len(t, result.Classified, 3)

	// 10 is 10% of the peer mean (100), below the 75% floor, but the public
	// source keeps its valid status and gets an explanatory note.
	public := result.Classified[2]
	assert.Equal(t, StatusValid, public.Status)
	assert.Contains(t, public.Note, "10.00%")
	assert.Contains(t, public.Note, "public administration")

	// The same ratio from a private vendor is reclassified.
	quotations[2] = NewQuotation("Cut-rate Vendor", SourceVendor, "", 10)
	result = engine.Evaluate(quotations, cfg)
	private := result.Classified[2]
	assert.Equal(t, StatusInexequible, private.Status)
	assert.Contains(t, private.Note, "10.00%")
}

func TestEvaluateMethodSelectionBoundary(t *testing.T) {
	engine := NewEngine()
	cfg := DefaultEvaluationConfig()

	// Population std dev of {75, 125} is exactly 25, mean is 100: CV = 25.00%.
	result := engine.Evaluate(quotationsFromPrices(SourceVendor, 75, 125), cfg)
	require.NotNil(t, result.Aggregates)
	assert.Equal(t, 25.0, result.Aggregates.CoefficientOfVariationPct)
	assert.Equal(t, MethodMean, result.Aggregates.SuggestedMethod)
	assert.Equal(t, 100.0, result.Aggregates.MarketPrice)

	// Nudging the spread past the cutoff flips the suggestion to the median.
	result = engine.Evaluate(quotationsFromPrices(SourceVendor, 74.99, 125.01), cfg)
	require.NotNil(t, result.Aggregates)
	assert.Greater(t, result.Aggregates.CoefficientOfVariationPct, 25.0)
	assert.Equal(t, MethodMedian, result.Aggregates.SuggestedMethod)
}

func TestEvaluateEmptyInput(t *testing.T) {
	engine := NewEngine()
	cfg := DefaultEvaluationConfig()

	result := engine.Evaluate(nil, cfg)
	assert.True(t, result.IsEmpty())
	assert.Nil(t, result.Aggregates)
	assert.Empty(t, result.Problems)

	result = engine.Evaluate([]Quotation{{SourceName: "no price", SourceKind: SourceVendor}}, cfg)
	assert.True(t, result.IsEmpty())
	assert.Nil(t, result.Aggregates)
	assert.Empty(t, result.Problems)
}

func TestEvaluateIsIdempotent(t *testing.T) {
	engine := NewEngine()
	cfg := DefaultEvaluationConfig()
	quotations := []Quotation{
		NewQuotation("A", SourceVendor, "", 98.37),
		NewQuotation("B", SourceContract, "", 101.11),
		NewQuotation("C", SourcePublicPriceBank, "", 95.02),
		NewQuotation("D", SourceVendor, "", 260.40),
	}

	first := engine.Evaluate(quotations, cfg)
	second := engine.Evaluate(quotations, cfg)
	assert.Equal(t, first, second)
}

func TestEvaluateClassifiesEveryPricedQuotation(t *testing.T) {
	engine := NewEngine()
	cfg := DefaultEvaluationConfig()
	quotations := []Quotation{
		NewQuotation("A", SourceVendor, "", 100),
		{SourceName: "no price", SourceKind: SourceVendor},
		NewQuotation("B", SourceContract, "", 104),
		NewQuotation("C", SourceInternetResearch, "", 97),
		NewQuotation("D", SourceVendor, "", 455),
	}

	result := engine.Evaluate(quotations, cfg)
	require.Len(t, result.Classified, 4)
	for _, c := range result.Classified {
		assert.Contains(t, []QuotationStatus{StatusValid, StatusExcessivelyHigh, StatusInexequible}, c.Status)
	}
}

func TestEvaluateDoesNotMutateInput(t *testing.T) {
	engine := NewEngine()
	cfg := DefaultEvaluationConfig()
	quotations := quotationsFromPrices(SourceVendor, 100, 100, 1000)
	before := make([]Quotation, len(quotations))
	copy(before, quotations)

	_ = engine.Evaluate(quotations, cfg)
	assert.Equal(t, before, quotations)
}

func TestEvaluateCheapestValidTieBreaksOnInputOrder(t *testing.T) {
	engine := NewEngine()
	cfg := DefaultEvaluationConfig()

	result := engine.Evaluate([]Quotation{
		NewQuotation("First", SourceVendor, "", 100),
		NewQuotation("Second", SourceVendor, "", 100),
		NewQuotation("Third", SourceContract, "", 150),
	}, cfg)

	require.NotNil(t, result.Aggregates)
	assert.Equal(t, "First", result.Aggregates.CheapestValid.SourceName)
}

func TestEvaluatePublicSourceProblemMessagesAreExclusive(t *testing.T) {
	engine := NewEngine()
	cfg := DefaultEvaluationConfig()

	// One valid public source: only the fewer-than-3 message may fire.
	result := engine.Evaluate([]Quotation{
		NewQuotation("A", SourceVendor, "", 100),
		NewQuotation("B", SourceContract, "", 102),
		NewQuotation("C", SourceVendor, "", 98),
	}, cfg)
	assert.Contains(t, result.Problems, ProblemFewPublicSources)
	assert.NotContains(t, result.Problems, ProblemNoPublicSource)

	// Three valid public sources: neither message fires.
	result = engine.Evaluate([]Quotation{
		NewQuotation("A", SourceContract, "", 100),
		NewQuotation("B", SourcePublicPriceBank, "", 102),
		NewQuotation("C", SourcePriceRegistryRecord, "", 98),
	}, cfg)
	assert.NotContains(t, result.Problems, ProblemFewPublicSources)
	assert.NotContains(t, result.Problems, ProblemNoPublicSource)
	assert.Empty(t, result.Problems)
}

func TestValidEntriesFiltersExcludedRows(t *testing.T) {
	classified := []ClassifiedQuotation{
		{Quotation: NewQuotation("A", SourceVendor, "", 10), Status: StatusInexequible},
		{Quotation: NewQuotation("B", SourceVendor, "", 100), Status: StatusValid},
		{Quotation: NewQuotation("C", SourceVendor, "", 1000), Status: StatusExcessivelyHigh},
	}

	valid := validEntries(classified)
	require.Len(t, valid, 1)
	assert.Equal(t, "B", valid[0].SourceName)
}

// The precomputed-sum leave-one-out mean must match a naive recomputation of
// the peer mean for every row.
func TestLeaveOneOutMeanMatchesNaiveRecomputation(t *testing.T) {
	prices := []float64{19.9, 21.5, 18.75, 22.1, 20.0, 55.5}
	total := 0.0
	for _, p := range prices {
		total += p
	}

	for i, p := range prices {
		naive := 0.0
		for j, q := range prices {
			if j != i {
				naive += q
			}
		}
		naive /= float64(len(prices) - 1)

		precomputed := (total - p) / float64(len(prices)-1)
		assert.InDelta(t, naive, precomputed, 1e-9, "row %d", i)
	}
}

func TestSourceKindParsing(t *testing.T) {
	kind, err := ParseSourceKind("public_price_bank")
	require.NoError(t, err)
	assert.Equal(t, SourcePublicPriceBank, kind)
	assert.True(t, kind.IsPublic())

	_, err = ParseSourceKind("Banco de Preços")
	assert.Error(t, err)

	assert.False(t, SourceVendor.IsPublic())
	assert.False(t, SourceInternetResearch.IsPublic())
	assert.True(t, SourceContract.IsPublic())
	assert.True(t, SourcePriceRegistryRecord.IsPublic())
}

func TestEvaluateNoteWordingStaysStable(t *testing.T) {
	engine := NewEngine()
	cfg := DefaultEvaluationConfig()
	cfg.ExcessThresholdPct = 100

	result := engine.Evaluate([]Quotation{
		NewQuotation("A", SourceVendor, "", 100),
		NewQuotation("B", SourceVendor, "", 100),
		NewQuotation("C", SourceVendor, "", 10),
	}, cfg)

	note := result.Classified[2].Note
	assert.True(t, strings.HasPrefix(note, "Price inexequible"), "note: %s", note)
}
