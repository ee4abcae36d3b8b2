package report

import (
	"bytes"
	"fmt"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"pricebench/domain/research"
	"pricebench/ports"
)

const (
	// MarkdownContentType is the MIME type of the markdown rendition
	MarkdownContentType = "text/markdown; charset=utf-8"
	// HTMLContentType is the MIME type of the HTML rendition
	HTMLContentType = "text/html; charset=utf-8"
)

// MarkdownWriter renders a consolidated report as a markdown document
type MarkdownWriter struct{}

// NewMarkdownWriter creates a new markdown report writer
func NewMarkdownWriter() ports.ReportWriter {
	return &MarkdownWriter{}
}

// WriteConsolidated renders the report as a markdown table plus totals
func (w *MarkdownWriter) WriteConsolidated(report *research.ConsolidatedReport) ([]byte, string, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# Consolidated Report - Process %s\n\n", report.ProcessNumber)
	fmt.Fprintf(&buf, "Research kind: %s\n\n", kindLabel(report.Kind))

	writeTableHeader(&buf, report.Kind)
	for _, row := range report.Rows {
		writeTableRow(&buf, report.Kind, row)
	}

	buf.WriteString("\n## Totals\n\n")
	fmt.Fprintf(&buf, "- Market total: %.2f\n", report.MarketTotal)
	switch report.Kind {
	case research.KindContractExtension:
		fmt.Fprintf(&buf, "- Contracted total: %.2f\n", report.ContractedTotal)
		fmt.Fprintf(&buf, "- Difference: %.2f\n", report.ContractDifference)
		fmt.Fprintf(&buf, "- Assessment: %s\n", totalsLabel(report.ContractVerdict, "contracted"))
	case research.KindPriceMap:
		fmt.Fprintf(&buf, "- Best price total: %.2f\n", report.BestPriceTotal)
		fmt.Fprintf(&buf, "- Difference: %.2f\n", report.BestPriceDifference)
		fmt.Fprintf(&buf, "- Assessment: %s\n", totalsLabel(report.BestPriceVerdict, "market"))
	}

	return buf.Bytes(), MarkdownContentType, nil
}

// HTMLWriter renders a consolidated report as an HTML document by converting
// the markdown rendition
type HTMLWriter struct {
	markdown *MarkdownWriter
}

// NewHTMLWriter creates a new HTML report writer
func NewHTMLWriter() ports.ReportWriter {
	return &HTMLWriter{markdown: &MarkdownWriter{}}
}

// WriteConsolidated renders the markdown report and converts it to HTML
func (w *HTMLWriter) WriteConsolidated(report *research.ConsolidatedReport) ([]byte, string, error) {
	md, _, err := w.markdown.WriteConsolidated(report)
	if err != nil {
		return nil, "", err
	}

	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.CompletePage})
	return markdown.ToHTML(md, p, renderer), HTMLContentType, nil
}

func writeTableHeader(buf *bytes.Buffer, kind research.Kind) {
	switch kind {
	case research.KindContractExtension:
		buf.WriteString("| # | Description | Unit | Qty | Method | Unit Market | Total Market | Unit Contracted | Total Contracted | Verdict |\n")
		buf.WriteString("|---|---|---|---|---|---|---|---|---|---|\n")
	case research.KindPriceMap:
		buf.WriteString("| # | Description | Unit | Qty | Method | Unit Market | Total Market | Unit Best | Total Best | Best Price Source |\n")
		buf.WriteString("|---|---|---|---|---|---|---|---|---|---|\n")
	default:
		buf.WriteString("| # | Description | Unit | Qty | Method | Unit Market | Total Market |\n")
		buf.WriteString("|---|---|---|---|---|---|---|\n")
	}
}

func writeTableRow(buf *bytes.Buffer, kind research.Kind, row research.ConsolidatedRow) {
	fmt.Fprintf(buf, "| %d | %s | %s | %d | %s | %.2f | %.2f |",
		row.ItemNumber, row.Description, row.Unit, row.Quantity,
		methodLabel(row.FinalMethod), row.UnitMarketPrice, row.TotalMarketPrice)

	switch kind {
	case research.KindContractExtension:
		fmt.Fprintf(buf, " %.2f | %.2f | %s |",
			row.UnitContractedPrice, row.TotalContractedPrice, verdictLabel(row.ContractVerdict))
	case research.KindPriceMap:
		fmt.Fprintf(buf, " %.2f | %.2f | %s |",
			row.UnitBestPrice, row.TotalBestPrice, row.BestPriceSource)
	}
	buf.WriteString("\n")
}

func kindLabel(k research.Kind) string {
	switch k {
	case research.KindContractExtension:
		return "Contract extension"
	case research.KindPriceMap:
		return "Price map"
	default:
		return "Standard"
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
