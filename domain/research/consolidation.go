package research

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"pricebench/domain/core"
)

// ContractVerdict rates an item's contracted price against the market price
// found by the research
type ContractVerdict string

const (
	// VerdictNegotiate means the market came in below the contracted price.
	VerdictNegotiate ContractVerdict = "negotiate_price"
	// VerdictAdvantageous means the contracted price beats the market.
	VerdictAdvantageous ContractVerdict = "advantageous"
	// VerdictEqualToMarket means the two prices match.
	VerdictEqualToMarket ContractVerdict = "equal_to_market"
)

// TotalsVerdict compares two report-level totals
type TotalsVerdict string

const (
	TotalsCheaper  TotalsVerdict = "cheaper"
	TotalsCostlier TotalsVerdict = "costlier"
	TotalsEqual    TotalsVerdict = "equal"
)

// ConsolidatedRow is one item of the synthetic report
type ConsolidatedRow struct {
	ItemNumber  int         `json:"item_number"`
	Description string      `json:"description"`
	Unit        string      `json:"unit"`
	Quantity    int         `json:"quantity"`
	FinalMethod FinalMethod `json:"final_method"`

	UnitMarketPrice  float64 `json:"unit_market_price"`
	TotalMarketPrice float64 `json:"total_market_price"`

	// Contract-extension fields.
	UnitContractedPrice  float64         `json:"unit_contracted_price,omitempty"`
	TotalContractedPrice float64         `json:"total_contracted_price,omitempty"`
	ContractVerdict      ContractVerdict `json:"contract_verdict,omitempty"`

	// Price-map fields.
	UnitBestPrice   float64 `json:"unit_best_price,omitempty"`
	TotalBestPrice  float64 `json:"total_best_price,omitempty"`
	BestPriceSource string  `json:"best_price_source,omitempty"`
}

// ConsolidatedReport is the synthetic report over a whole research: one row
// per item plus the totals the report kind calls for.
type ConsolidatedReport struct {
	ResearchID    core.ResearchID   `json:"research_id"`
	ProcessNumber string            `json:"process_number"`
	Kind          Kind              `json:"kind"`
	Rows          []ConsolidatedRow `json:"rows"`

	MarketTotal float64 `json:"market_total"`

	// Contract-extension totals.
	ContractedTotal    float64       `json:"contracted_total,omitempty"`
	ContractDifference float64       `json:"contract_difference,omitempty"`
	ContractVerdict    TotalsVerdict `json:"contract_totals_verdict,omitempty"`

	// Price-map totals.
	BestPriceTotal      float64       `json:"best_price_total,omitempty"`
	BestPriceDifference float64       `json:"best_price_difference,omitempty"`
	BestPriceVerdict    TotalsVerdict `json:"best_price_verdict,omitempty"`
}

// Consolidate builds the synthetic report for a finalized research. Every
// item must have been evaluated and finalized; unjustified problems block
// consolidation the same way they block export.
func Consolidate(r *Research) (*ConsolidatedReport, error) {
	if err := r.CheckFinalizable(); err != nil {
		return nil, err
	}

	report := &ConsolidatedReport{
		ResearchID:    r.ID,
		ProcessNumber: r.ProcessNumber,
		Kind:          r.Kind,
		Rows:          make([]ConsolidatedRow, 0, len(r.Items)),
	}

	marketTotals := make([]float64, 0, len(r.Items))
	contractedTotals := make([]float64, 0, len(r.Items))
	bestTotals := make([]float64, 0, len(r.Items))

	for _, it := range r.Items {
		row := ConsolidatedRow{
			ItemNumber:       it.Number,
			Description:      it.Description,
			Unit:             it.Unit,
			Quantity:         it.Quantity,
			FinalMethod:      it.FinalMethod,
			UnitMarketPrice:  it.UnitMarketPrice,
			TotalMarketPrice: it.TotalMarketPrice,
		}
		marketTotals = append(marketTotals, it.TotalMarketPrice)

		switch r.Kind {
		case KindContractExtension:
			row.UnitContractedPrice = it.ContractedUnitPrice
			row.TotalContractedPrice = r.Config.Round(it.ContractedUnitPrice * float64(it.Quantity))
			row.ContractVerdict = contractVerdict(it.UnitMarketPrice, it.ContractedUnitPrice)
			contractedTotals = append(contractedTotals, row.TotalContractedPrice)
		case KindPriceMap:
			if best, ok := it.BestPrice(); ok {
				row.UnitBestPrice = r.Config.Round(*best.Price)
				row.TotalBestPrice = r.Config.Round(row.UnitBestPrice * float64(it.Quantity))
				row.BestPriceSource = fmt.Sprintf("SOURCE: %s | LOCATOR: %s", orDash(best.SourceName), orDash(best.Locator))
				bestTotals = append(bestTotals, row.TotalBestPrice)
			}
		}

		report.Rows = append(report.Rows, row)
	}

	report.MarketTotal = floats.Sum(marketTotals)

	switch r.Kind {
	case KindContractExtension:
		report.ContractedTotal = floats.Sum(contractedTotals)
		report.ContractDifference = report.ContractedTotal - report.MarketTotal
		report.ContractVerdict = totalsVerdict(report.ContractDifference)
	case KindPriceMap:
		report.BestPriceTotal = floats.Sum(bestTotals)
		report.BestPriceDifference = report.MarketTotal - report.BestPriceTotal
		report.BestPriceVerdict = totalsVerdict(report.BestPriceDifference)
	}

	return report, nil
}

// contractVerdict rates one contracted unit price against the market
func contractVerdict(market, contracted float64) ContractVerdict {
	switch {
	case market < contracted:
		return VerdictNegotiate
	case market > contracted:
		return VerdictAdvantageous
	default:
		return VerdictEqualToMarket
	}
}

// totalsVerdict maps a signed difference to a comparison verdict. A positive
// difference means the first total (contracted or market, depending on the
// report kind) came out higher.
func totalsVerdict(difference float64) TotalsVerdict {
	switch {
	case difference > 0:
		return TotalsCostlier
	case difference < 0:
		return TotalsCheaper
	default:
		return TotalsEqual
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
