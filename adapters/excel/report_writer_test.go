package excel

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"pricebench/domain/research"
)

func priceMapReport() *research.ConsolidatedReport {
	return &research.ConsolidatedReport{
		ProcessNumber: "2026/0042",
		Kind:          research.KindPriceMap,
		Rows: []research.ConsolidatedRow{
			{
				ItemNumber:       1,
				Description:      "office chair",
				Unit:             "UNIDADE",
				Quantity:         10,
				FinalMethod:      research.FinalMethodMedian,
				UnitMarketPrice:  105,
				TotalMarketPrice: 1050,
				UnitBestPrice:    98,
				TotalBestPrice:   980,
				BestPriceSource:  "SOURCE: Vendor A | LOCATOR: proc-42",
			},
			{
				ItemNumber:       2,
				Description:      "desk",
				Unit:             "UNIDADE",
				Quantity:         5,
				FinalMethod:      research.FinalMethodMean,
				UnitMarketPrice:  300,
				TotalMarketPrice: 1500,
				UnitBestPrice:    290,
				TotalBestPrice:   1450,
				BestPriceSource:  "SOURCE: Vendor B | LOCATOR: -",
			},
		},
		MarketTotal:         2550,
		BestPriceTotal:      2430,
		BestPriceDifference: 120,
		BestPriceVerdict:    research.TotalsCostlier,
	}
}

func TestWriteConsolidatedRendersWorkbook(t *testing.T) {
	data, contentType, err := NewReportWriter().WriteConsolidated(priceMapReport())

	require.NoError(t, err)
	assert.Equal(t, XLSXContentType, contentType)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellValue(sheetName, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Item", header)

	bestPriceHeader, err := f.GetCellValue(sheetName, "J1")
	require.NoError(t, err)
	assert.Equal(t, "Best Price Source", bestPriceHeader)

	description, err := f.GetCellValue(sheetName, "B2")
	require.NoError(t, err)
	assert.Equal(t, "office chair", description)

	method, err := f.GetCellValue(sheetName, "E3")
	require.NoError(t, err)
	assert.Equal(t, "Mean", method)
}

func TestWriteConsolidatedAppendsTotalsBlock(t *testing.T) {
	data, _, err := NewReportWriter().WriteConsolidated(priceMapReport())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	// Totals start two rows below the last item row.
	label, err := f.GetCellValue(sheetName, "A5")
	require.NoError(t, err)
	assert.Equal(t, "Market Total", label)

	total, err := f.GetCellValue(sheetName, "B5")
	require.NoError(t, err)
	assert.Equal(t, "2550", total)

	bestLabel, err := f.GetCellValue(sheetName, "A6")
	require.NoError(t, err)
	assert.Equal(t, "Best Price Total", bestLabel)
}

func TestWriteConsolidatedStandardKindHasBaseColumnsOnly(t *testing.T) {
	report := priceMapReport()
	report.Kind = research.KindStandard

	data, _, err := NewReportWriter().WriteConsolidated(report)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	lastHeader, err := f.GetCellValue(sheetName, "G1")
	require.NoError(t, err)
	assert.Equal(t, "Total Market Price", lastHeader)

	extra, err := f.GetCellValue(sheetName, "H1")
	require.NoError(t, err)
	assert.Empty(t, extra)
}
