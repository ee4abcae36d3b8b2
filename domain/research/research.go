package research

import (
	"fmt"

	"pricebench/domain/core"
	"pricebench/domain/pricing"
)

// Kind distinguishes the three research workflows
type Kind string

const (
	// KindStandard is the ordinary market-price research.
	KindStandard Kind = "standard"
	// KindContractExtension compares the market against prices already under
	// contract, to support an extension decision.
	KindContractExtension Kind = "contract_extension"
	// KindPriceMap highlights the best individual quotation per item next to
	// the computed market price.
	KindPriceMap Kind = "price_map"
)

// IsValid reports whether the kind is a member of the closed enumeration
func (k Kind) IsValid() bool {
	switch k {
	case KindStandard, KindContractExtension, KindPriceMap:
		return true
	}
	return false
}

// ParseKind parses a wire string into a research Kind
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.IsValid() {
		return "", core.NewValidationError("kind", fmt.Sprintf("unknown research kind %q", s))
	}
	return k, nil
}

// Research is a complete market-price research for one procurement process:
// the items under analysis, the evaluation configuration the analyst chose
// and the workflow kind.
type Research struct {
	ID            core.ResearchID          `json:"id"`
	ProcessNumber string                   `json:"process_number"`
	Kind          Kind                     `json:"kind"`
	Config        pricing.EvaluationConfig `json:"config"`
	Items         []*Item                  `json:"items"`
	CreatedAt     core.Timestamp           `json:"created_at"`
	UpdatedAt     core.Timestamp           `json:"updated_at"`
}

// NewResearch creates an empty research for a procurement process
func NewResearch(processNumber string, kind Kind, cfg pricing.EvaluationConfig) (*Research, error) {
	if processNumber == "" {
		return nil, core.NewValidationError("process_number", "cannot be empty")
	}
	if !kind.IsValid() {
		return nil, core.NewValidationError("kind", fmt.Sprintf("unknown research kind %q", kind))
	}
	now := core.Now()
	return &Research{
		ID:            core.ResearchID(core.NewID()),
		ProcessNumber: processNumber,
		Kind:          kind,
		Config:        cfg,
		Items:         []*Item{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// AddItem appends an item, assigning the next sequential number
func (r *Research) AddItem(item *Item) {
	item.Number = len(r.Items) + 1
	r.Items = append(r.Items, item)
	r.UpdatedAt = core.Now()
}

// ItemByNumber returns the item with the given 1-based number
func (r *Research) ItemByNumber(number int) (*Item, error) {
	for _, it := range r.Items {
		if it.Number == number {
			return it, nil
		}
	}
	return nil, fmt.Errorf("%w: number %d", core.ErrItemNotFound, number)
}

// Renumber reassigns sequential item numbers after removals
func (r *Research) Renumber() {
	for i, it := range r.Items {
		it.Number = i + 1
	}
}

// UnjustifiedItems returns the items whose evaluation problems still lack a
// written justification. The research cannot be finalized or exported while
// this list is non-empty.
func (r *Research) UnjustifiedItems() []*Item {
	var pending []*Item
	for _, it := range r.Items {
		if it.NeedsJustification() {
			pending = append(pending, it)
		}
	}
	return pending
}

// CheckFinalizable verifies that every item is evaluated and every problem
// justified
func (r *Research) CheckFinalizable() error {
	for _, it := range r.Items {
		if !it.IsEvaluated() {
			return fmt.Errorf("%w: item %d", core.ErrResearchNotEvaluated, it.Number)
		}
	}
	if pending := r.UnjustifiedItems(); len(pending) > 0 {
		return fmt.Errorf("%w: %d item(s) pending", core.ErrMissingJustification, len(pending))
	}
	return nil
}
