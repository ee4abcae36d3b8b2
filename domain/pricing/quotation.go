package pricing

import (
	"fmt"
	"math"

	"pricebench/domain/core"
)

// SourceKind classifies where a quotation came from. It is a closed
// enumeration: the public-source exemption keys off it, so free-text labels
// are rejected at the boundary instead of silently misclassifying.
type SourceKind string

const (
	SourceVendor              SourceKind = "vendor"
	SourceContract            SourceKind = "contract"
	SourcePublicPriceBank     SourceKind = "public_price_bank"
	SourcePriceRegistryRecord SourceKind = "price_registry_record"
	SourceInternetResearch    SourceKind = "internet_research"
	SourceSpecializedMedia    SourceKind = "specialized_media"
	SourceOther               SourceKind = "other"
)

// publicSources is the set of kinds presumed administratively vetted. Prices
// from these sources are exempt from the inexequibility penalty.
var publicSources = map[SourceKind]bool{
	SourceContract:            true,
	SourcePublicPriceBank:     true,
	SourcePriceRegistryRecord: true,
}

// IsPublic reports whether the kind belongs to the public-source set
func (k SourceKind) IsPublic() bool {
	return publicSources[k]
}

// IsValid reports whether the kind is a member of the closed enumeration
func (k SourceKind) IsValid() bool {
	switch k {
	case SourceVendor, SourceContract, SourcePublicPriceBank,
		SourcePriceRegistryRecord, SourceInternetResearch,
		SourceSpecializedMedia, SourceOther:
		return true
	}
	return false
}

// ParseSourceKind parses a wire string into a SourceKind
func ParseSourceKind(s string) (SourceKind, error) {
	k := SourceKind(s)
	if !k.IsValid() {
		return "", fmt.Errorf("%w: %q", core.ErrUnknownSourceKind, s)
	}
	return k, nil
}

// Quotation is one quoted price for the good or service under research.
// Price is nil when the row was collected without a usable price; such rows
// never participate in evaluation.
type Quotation struct {
	SourceName string     `json:"source_name"`
	SourceKind SourceKind `json:"source_kind"`
	Locator    string     `json:"locator,omitempty"`
	Price      *float64   `json:"price,omitempty"`
}

// NewQuotation creates a priced quotation
func NewQuotation(sourceName string, kind SourceKind, locator string, price float64) Quotation {
	return Quotation{
		SourceName: sourceName,
		SourceKind: kind,
		Locator:    locator,
		Price:      &price,
	}
}

// HasPrice reports whether the quotation carries a finite numeric price
func (q Quotation) HasPrice() bool {
	return q.Price != nil && !math.IsNaN(*q.Price) && !math.IsInf(*q.Price, 0)
}
