package ports

import (
	"pricebench/domain/research"
)

// ReportWriter renders a consolidated report into a downloadable document
type ReportWriter interface {
	// WriteConsolidated renders the report and returns the document bytes
	// plus its MIME content type.
	WriteConsolidated(report *research.ConsolidatedReport) ([]byte, string, error)
}

// QuotationImporter reads quotation rows from an uploaded document
type QuotationImporter interface {
	// ImportQuotations parses the document and returns the quotations found.
	ImportQuotations(data []byte) ([]ImportedQuotation, error)
}

// ImportedQuotation is a raw quotation row as read from a document, before
// source-kind parsing and price validation
type ImportedQuotation struct {
	SourceName string
	SourceKind string
	Locator    string
	Price      *float64
}
