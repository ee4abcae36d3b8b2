package excel

import (
	"bytes"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"pricebench/ports"
)

// QuotationImporter reads quotation rows from an uploaded spreadsheet
type QuotationImporter struct{}

// NewQuotationImporter creates a new spreadsheet quotation importer
func NewQuotationImporter() ports.QuotationImporter {
	return &QuotationImporter{}
}

// Column headers accepted on the first row. Legacy spreadsheets exported by
// the previous tooling use the Portuguese labels.
var (
	sourceHeaders  = []string{"source", "source name", "fonte", "fornecedor"}
	kindHeaders    = []string{"kind", "source kind", "tipo", "tipo de fonte"}
	locatorHeaders = []string{"locator", "link", "localizador", "referencia", "referência"}
	priceHeaders   = []string{"price", "preco", "preço", "valor", "valor unitario", "valor unitário"}
)

// legacyKinds maps the source-kind labels of legacy spreadsheets to the wire
// values the engine understands. Unknown labels pass through untouched so the
// caller can reject them with a precise error.
var legacyKinds = map[string]string{
	"fornecedor":                 "vendor",
	"contrato":                   "contract",
	"contrato/ata":               "contract",
	"banco de precos":            "public_price_bank",
	"banco de preços":            "public_price_bank",
	"comprasnet":                 "public_price_bank",
	"ata de registro de precos":  "price_registry_record",
	"ata de registro de preços":  "price_registry_record",
	"pesquisa na internet":       "internet_research",
	"internet":                   "internet_research",
	"midia especializada":        "specialized_media",
	"mídia especializada":        "specialized_media",
	"sites especializados":       "specialized_media",
}

// ImportQuotations parses the first sheet of an xlsx document into raw
// quotation rows. Rows with an empty source name are skipped; rows with an
// unparsable price keep a nil price so the engine can report them as unpriced.
func (i *QuotationImporter) ImportQuotations(data []byte) ([]ports.ImportedQuotation, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("spreadsheet has no sheets")
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("spreadsheet must have a header row and at least one data row")
	}

	sourceCol := findColumn(rows[0], sourceHeaders)
	kindCol := findColumn(rows[0], kindHeaders)
	priceCol := findColumn(rows[0], priceHeaders)
	locatorCol := findColumn(rows[0], locatorHeaders)
	if sourceCol < 0 || kindCol < 0 || priceCol < 0 {
		return nil, fmt.Errorf("spreadsheet is missing a source, kind or price column")
	}

	var quotations []ports.ImportedQuotation
	for _, row := range rows[1:] {
		source := strings.TrimSpace(cellAt(row, sourceCol))
		if source == "" {
			continue
		}

		q := ports.ImportedQuotation{
			SourceName: source,
			SourceKind: normalizeKind(cellAt(row, kindCol)),
			Locator:    strings.TrimSpace(cellAt(row, locatorCol)),
			Price:      parsePrice(cellAt(row, priceCol)),
		}
		quotations = append(quotations, q)
	}

	log.Printf("[QuotationImporter] Sheet %q parsed (%d quotations)", sheet, len(quotations))
	return quotations, nil
}

// findColumn locates the first header cell matching one of the accepted names
func findColumn(header []string, names []string) int {
	for idx, cell := range header {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for _, name := range names {
			if normalized == name {
				return idx
			}
		}
	}
	return -1
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// normalizeKind translates legacy Portuguese source-kind labels into wire
// values. Already-canonical values pass through.
func normalizeKind(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if mapped, ok := legacyKinds[strings.ToLower(trimmed)]; ok {
		return mapped
	}
	return trimmed
}

// parsePrice reads a price cell, accepting both the plain decimal point and
// the Brazilian "1.234,56" convention. Unparsable or empty cells return nil.
func parsePrice(raw string) *float64 {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "R$")
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}

	value, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &value
}
