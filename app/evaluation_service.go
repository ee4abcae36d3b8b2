package app

import (
	"context"
	"log"
	"sync"

	"golang.org/x/sync/semaphore"

	"pricebench/domain/core"
	"pricebench/domain/pricing"
	"pricebench/domain/research"
	"pricebench/internal/errors"
	"pricebench/ports"
)

// maxConcurrentEvaluations bounds the number of items evaluated in parallel
// for one research. Evaluation is CPU-bound; a small bound keeps large
// researches from starving the request pool.
const maxConcurrentEvaluations = 4

// EvaluationService runs the pricing engine over research items and ad hoc
// quotation sets
type EvaluationService struct {
	repo   ports.ResearchRepository
	engine *pricing.Engine
	sem    *semaphore.Weighted
}

// NewEvaluationService creates a new evaluation service
func NewEvaluationService(repo ports.ResearchRepository) *EvaluationService {
	return &EvaluationService{
		repo:   repo,
		engine: pricing.NewEngine(),
		sem:    semaphore.NewWeighted(maxConcurrentEvaluations),
	}
}

// EvaluateAdHoc runs the engine over a quotation set without touching any
// stored research. A nil config falls back to the engine defaults.
func (s *EvaluationService) EvaluateAdHoc(inputs []QuotationInput, cfg *pricing.EvaluationConfig) (pricing.EvaluationResult, error) {
	quotations, err := parseQuotations(inputs)
	if err != nil {
		return pricing.EvaluationResult{}, err
	}

	config := pricing.DefaultEvaluationConfig()
	if cfg != nil {
		config = *cfg
		config.DecimalPlaces = core.ClampDecimalPlaces(config.DecimalPlaces)
	}
	return s.engine.Evaluate(quotations, config), nil
}

// EvaluateItem evaluates and finalizes a single item of a research
func (s *EvaluationService) EvaluateItem(ctx context.Context, id core.ResearchID, number int) (*research.Item, error) {
	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	item, err := res.ItemByNumber(number)
	if err != nil {
		return nil, err
	}

	s.evaluate(item, res.Config)

	if err := s.repo.Update(ctx, res); err != nil {
		return nil, errors.Wrap(err, "failed to persist evaluation")
	}
	return item, nil
}

// EvaluateResearch evaluates every item of a research. Items run concurrently
// under the service's semaphore; the research is persisted once at the end.
func (s *EvaluationService) EvaluateResearch(ctx context.Context, id core.ResearchID) (*research.Research, error) {
	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var wg sync.WaitGroup
	for _, item := range res.Items {
		if err := s.sem.Acquire(ctx, 1); err != nil {
			return nil, errors.Wrap(err, "evaluation canceled")
		}
		wg.Add(1)
		go func(it *research.Item) {
			defer wg.Done()
			defer s.sem.Release(1)
			s.evaluate(it, res.Config)
		}(item)
	}
	wg.Wait()

	if err := s.repo.Update(ctx, res); err != nil {
		return nil, errors.Wrap(err, "failed to persist evaluations")
	}

	log.Printf("[EvaluationService] Research %s evaluated (%d items)", id, len(res.Items))
	return res, nil
}

// evaluate runs the engine over one item and locks in its final price when
// the evaluation produced aggregates. Each item gets its own result value;
// nothing is shared across goroutines.
func (s *EvaluationService) evaluate(item *research.Item, cfg pricing.EvaluationConfig) {
	result := s.engine.Evaluate(item.Quotations, cfg)
	item.Evaluation = &result

	if item.IsEvaluated() {
		// Finalize cannot fail here: IsEvaluated guarantees aggregates.
		_ = item.Finalize(cfg)
	} else {
		item.FinalMethod = ""
		item.UnitMarketPrice = 0
		item.TotalMarketPrice = 0
	}
}
