package app

import (
	"context"
	"fmt"
	"log"

	"pricebench/domain/core"
	"pricebench/domain/pricing"
	"pricebench/domain/research"
	"pricebench/internal/errors"
	"pricebench/ports"
)

// ResearchService manages the research lifecycle: creation, item management
// and quotation intake
type ResearchService struct {
	repo     ports.ResearchRepository
	importer ports.QuotationImporter
	defaults pricing.EvaluationConfig
}

// NewResearchService creates a new research service
func NewResearchService(repo ports.ResearchRepository, importer ports.QuotationImporter, defaults pricing.EvaluationConfig) *ResearchService {
	return &ResearchService{
		repo:     repo,
		importer: importer,
		defaults: defaults,
	}
}

// CreateResearch creates and persists a research. A nil config falls back to
// the installation defaults.
func (s *ResearchService) CreateResearch(ctx context.Context, processNumber, kindRaw string, cfg *pricing.EvaluationConfig) (*research.Research, error) {
	kind, err := research.ParseKind(kindRaw)
	if err != nil {
		return nil, err
	}

	config := s.defaults
	if cfg != nil {
		config = *cfg
		config.DecimalPlaces = core.ClampDecimalPlaces(config.DecimalPlaces)
	}

	res, err := research.NewResearch(processNumber, kind, config)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, res); err != nil {
		return nil, errors.Wrap(err, "failed to persist research")
	}

	log.Printf("[ResearchService] Research created (id=%s, process=%s, kind=%s)", res.ID, processNumber, kind)
	return res, nil
}

// GetResearch loads a research by id
func (s *ResearchService) GetResearch(ctx context.Context, id core.ResearchID) (*research.Research, error) {
	return s.repo.GetByID(ctx, id)
}

// ListResearches returns a page of researches, newest first
func (s *ResearchService) ListResearches(ctx context.Context, limit, offset int) ([]*research.Research, error) {
	return s.repo.List(ctx, limit, offset)
}

// DeleteResearch removes a research and its items
func (s *ResearchService) DeleteResearch(ctx context.Context, id core.ResearchID) error {
	return s.repo.Delete(ctx, id)
}

// AddItemInput is the request payload for adding an item to a research
type AddItemInput struct {
	Description         string
	Unit                string
	Quantity            int
	ContractedUnitPrice float64
}

// AddItem appends a new item to the research
func (s *ResearchService) AddItem(ctx context.Context, id core.ResearchID, input AddItemInput) (*research.Item, error) {
	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	item, err := research.NewItem(0, input.Description, input.Unit, input.Quantity)
	if err != nil {
		return nil, err
	}
	item.ContractedUnitPrice = input.ContractedUnitPrice
	res.AddItem(item)

	if err := s.repo.Update(ctx, res); err != nil {
		return nil, errors.Wrap(err, "failed to persist item")
	}
	return item, nil
}

// RemoveItem deletes an item by number and renumbers the rest
func (s *ResearchService) RemoveItem(ctx context.Context, id core.ResearchID, number int) error {
	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	kept := res.Items[:0]
	found := false
	for _, it := range res.Items {
		if it.Number == number {
			found = true
			continue
		}
		kept = append(kept, it)
	}
	if !found {
		return fmt.Errorf("%w: number %d", core.ErrItemNotFound, number)
	}
	res.Items = kept
	res.Renumber()

	return s.repo.Update(ctx, res)
}

// QuotationInput is one quotation row as submitted by the caller
type QuotationInput struct {
	SourceName string
	SourceKind string
	Locator    string
	Price      *float64
}

// SetQuotations replaces an item's quotations. Any previous evaluation is
// discarded: the comparison set changed under it.
func (s *ResearchService) SetQuotations(ctx context.Context, id core.ResearchID, number int, inputs []QuotationInput) (*research.Item, error) {
	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	item, err := res.ItemByNumber(number)
	if err != nil {
		return nil, err
	}

	quotations, err := parseQuotations(inputs)
	if err != nil {
		return nil, err
	}

	item.Quotations = quotations
	item.Evaluation = nil
	item.FinalMethod = ""
	item.UnitMarketPrice = 0
	item.TotalMarketPrice = 0

	if err := s.repo.Update(ctx, res); err != nil {
		return nil, errors.Wrap(err, "failed to persist quotations")
	}
	return item, nil
}

// ImportItemQuotations parses an uploaded spreadsheet and replaces the item's
// quotations with its rows
func (s *ResearchService) ImportItemQuotations(ctx context.Context, id core.ResearchID, number int, document []byte) (*research.Item, error) {
	imported, err := s.importer.ImportQuotations(document)
	if err != nil {
		return nil, errors.Wrap(err, "failed to import quotations")
	}

	inputs := make([]QuotationInput, 0, len(imported))
	for _, q := range imported {
		inputs = append(inputs, QuotationInput{
			SourceName: q.SourceName,
			SourceKind: q.SourceKind,
			Locator:    q.Locator,
			Price:      q.Price,
		})
	}

	log.Printf("[ResearchService] Imported %d quotations for item %d of research %s", len(inputs), number, id)
	return s.SetQuotations(ctx, id, number, inputs)
}

// Justify records the analyst's written justification for an item's
// evaluation problems
func (s *ResearchService) Justify(ctx context.Context, id core.ResearchID, number int, justification string) error {
	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	item, err := res.ItemByNumber(number)
	if err != nil {
		return err
	}

	item.Justification = justification
	return s.repo.Update(ctx, res)
}

// SetMinimumPrice toggles the minimum-price override for an item and
// refreshes its final price when it is already evaluated
func (s *ResearchService) SetMinimumPrice(ctx context.Context, id core.ResearchID, number int, use bool) error {
	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	item, err := res.ItemByNumber(number)
	if err != nil {
		return err
	}

	item.UseMinimumPrice = use
	if item.IsEvaluated() {
		if err := item.Finalize(res.Config); err != nil {
			return err
		}
	}
	return s.repo.Update(ctx, res)
}

// parseQuotations validates source kinds and builds domain quotations
func parseQuotations(inputs []QuotationInput) ([]pricing.Quotation, error) {
	quotations := make([]pricing.Quotation, 0, len(inputs))
	for i, in := range inputs {
		kind, err := pricing.ParseSourceKind(in.SourceKind)
		if err != nil {
			return nil, fmt.Errorf("quotation %d: %w", i+1, err)
		}
		quotations = append(quotations, pricing.Quotation{
			SourceName: in.SourceName,
			SourceKind: kind,
			Locator:    in.Locator,
			Price:      in.Price,
		})
	}
	return quotations, nil
}
