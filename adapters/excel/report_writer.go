package excel

import (
	"fmt"
	"log"

	"github.com/xuri/excelize/v2"

	"pricebench/domain/research"
	"pricebench/internal/errors"
	"pricebench/ports"
)

const (
	sheetName = "Consolidated"

	// XLSXContentType is the MIME type of the rendered workbook
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ReportWriter renders a consolidated report as an xlsx workbook
type ReportWriter struct{}

// NewReportWriter creates a new xlsx report writer
func NewReportWriter() ports.ReportWriter {
	return &ReportWriter{}
}

// WriteConsolidated renders the report into workbook bytes. The column set
// follows the research kind: contract extensions add the contracted-price
// comparison, price maps add the best-quotation columns.
func (w *ReportWriter) WriteConsolidated(report *research.ConsolidatedReport) ([]byte, string, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, "", errors.ReportError("failed to create sheet", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := headersFor(report.Kind)
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, "", errors.ReportError("failed to create header style", err)
	}
	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for i, row := range report.Rows {
		values := valuesFor(report.Kind, row)
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	writeTotals(f, report, len(report.Rows)+3)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", errors.ReportError("failed to render workbook", err)
	}

	log.Printf("[ReportWriter] Consolidated report rendered (%d rows, kind=%s)", len(report.Rows), report.Kind)
	return buf.Bytes(), XLSXContentType, nil
}

func headersFor(kind research.Kind) []string {
	base := []string{"Item", "Description", "Unit", "Quantity", "Method", "Unit Market Price", "Total Market Price"}
	switch kind {
	case research.KindContractExtension:
		return append(base, "Unit Contracted Price", "Total Contracted Price", "Verdict")
	case research.KindPriceMap:
		return append(base, "Unit Best Price", "Total Best Price", "Best Price Source")
	default:
		return base
	}
}

func valuesFor(kind research.Kind, row research.ConsolidatedRow) []interface{} {
	base := []interface{}{
		row.ItemNumber,
		row.Description,
		row.Unit,
		row.Quantity,
		methodLabel(row.FinalMethod),
		row.UnitMarketPrice,
		row.TotalMarketPrice,
	}
	switch kind {
	case research.KindContractExtension:
		return append(base, row.UnitContractedPrice, row.TotalContractedPrice, verdictLabel(row.ContractVerdict))
	case research.KindPriceMap:
		return append(base, row.UnitBestPrice, row.TotalBestPrice, row.BestPriceSource)
	default:
		return base
	}
}

// writeTotals appends the totals block two rows below the item table
func writeTotals(f *excelize.File, report *research.ConsolidatedReport, startRow int) {
	setRow := func(row int, label string, value interface{}) {
		labelCell, _ := excelize.CoordinatesToCellName(1, row)
		valueCell, _ := excelize.CoordinatesToCellName(2, row)
		f.SetCellValue(sheetName, labelCell, label)
		f.SetCellValue(sheetName, valueCell, value)
	}

	setRow(startRow, "Market Total", report.MarketTotal)

	switch report.Kind {
	case research.KindContractExtension:
		setRow(startRow+1, "Contracted Total", report.ContractedTotal)
		setRow(startRow+2, "Difference", report.ContractDifference)
		setRow(startRow+3, "Assessment", totalsLabel(report.ContractVerdict, "contract"))
	case research.KindPriceMap:
		setRow(startRow+1, "Best Price Total", report.BestPriceTotal)
		setRow(startRow+2, "Difference", report.BestPriceDifference)
		setRow(startRow+3, "Assessment", totalsLabel(report.BestPriceVerdict, "market"))
	}
}

func methodLabel(m research.FinalMethod) string {
	switch m {
	case research.FinalMethodMean:
		return "Mean"
	case research.FinalMethodMedian:
		return "Median"
	case research.FinalMethodMinimum:
		return "Minimum Price"
	default:
		return string(m)
	}
}

func verdictLabel(v research.ContractVerdict) string {
	switch v {
	case research.VerdictNegotiate:
		return "Negotiate price"
	case research.VerdictAdvantageous:
		return "Advantageous"
	case research.VerdictEqualToMarket:
		return "Equal to market"
	default:
		return string(v)
	}
}

func totalsLabel(v research.TotalsVerdict, subject string) string {
	switch v {
	case research.TotalsCostlier:
		return fmt.Sprintf("The %s total came out above the comparison total", subject)
	case research.TotalsCheaper:
		return fmt.Sprintf("The %s total came out below the comparison total", subject)
	default:
		return fmt.Sprintf("The %s total equals the comparison total", subject)
	}
}
