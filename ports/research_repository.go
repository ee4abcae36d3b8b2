package ports

import (
	"context"

	"pricebench/domain/core"
	"pricebench/domain/research"
)

// ResearchRepository persists price researches with their items, quotations
// and evaluation snapshots
type ResearchRepository interface {
	Create(ctx context.Context, r *research.Research) error
	GetByID(ctx context.Context, id core.ResearchID) (*research.Research, error)
	List(ctx context.Context, limit, offset int) ([]*research.Research, error)
	Update(ctx context.Context, r *research.Research) error
	Delete(ctx context.Context, id core.ResearchID) error
}
