package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"pricebench/domain/core"
	"pricebench/domain/pricing"
	"pricebench/domain/research"
	"pricebench/ports"
)

// ResearchRepositoryImpl implements ResearchRepository for PostgreSQL
type ResearchRepositoryImpl struct {
	db *sqlx.DB
}

// NewResearchRepository creates a new PostgreSQL research repository
func NewResearchRepository(db *sqlx.DB) ports.ResearchRepository {
	return &ResearchRepositoryImpl{db: db}
}

// researchRow mirrors the researches table
type researchRow struct {
	ID            string    `db:"id"`
	ProcessNumber string    `db:"process_number"`
	Kind          string    `db:"kind"`
	Config        []byte    `db:"config"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// itemRow mirrors the research_items table
type itemRow struct {
	ID                  string  `db:"id"`
	ResearchID          string  `db:"research_id"`
	Number              int     `db:"number"`
	Description         string  `db:"description"`
	Unit                string  `db:"unit"`
	Quantity            int     `db:"quantity"`
	ContractedUnitPrice float64 `db:"contracted_unit_price"`
	Quotations          []byte  `db:"quotations"`
	Evaluation          []byte  `db:"evaluation"`
	UseMinimumPrice     bool    `db:"use_minimum_price"`
	Justification       string  `db:"justification"`
	FinalMethod         string  `db:"final_method"`
	UnitMarketPrice     float64 `db:"unit_market_price"`
	TotalMarketPrice    float64 `db:"total_market_price"`
}

// Create inserts a research together with its items
func (r *ResearchRepositoryImpl) Create(ctx context.Context, res *research.Research) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	configJSON, err := json.Marshal(res.Config)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO researches (id, process_number, kind, config, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, res.ID.String(), res.ProcessNumber, string(res.Kind), string(configJSON),
		res.CreatedAt.Time(), res.UpdatedAt.Time())
	if err != nil {
		return err
	}

	if err := insertItems(ctx, tx, res); err != nil {
		return err
	}
	return tx.Commit()
}

// GetByID loads a research and its items, ordered by item number
func (r *ResearchRepositoryImpl) GetByID(ctx context.Context, id core.ResearchID) (*research.Research, error) {
	var row researchRow
	err := r.db.GetContext(ctx, &row, `
		SELECT id, process_number, kind, config, created_at, updated_at
		FROM researches
		WHERE id = $1
	`, id.String())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %s", core.ErrResearchNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	res, err := rowToResearch(row)
	if err != nil {
		return nil, err
	}

	var itemRows []itemRow
	err = r.db.SelectContext(ctx, &itemRows, `
		SELECT id, research_id, number, description, unit, quantity,
		       contracted_unit_price, quotations, evaluation, use_minimum_price,
		       justification, final_method, unit_market_price, total_market_price
		FROM research_items
		WHERE research_id = $1
		ORDER BY number
	`, id.String())
	if err != nil {
		return nil, err
	}

	for _, ir := range itemRows {
		item, err := rowToItem(ir)
		if err != nil {
			return nil, err
		}
		res.Items = append(res.Items, item)
	}
	return res, nil
}

// List returns researches ordered by creation time, newest first. Items are
// loaded per research.
func (r *ResearchRepositoryImpl) List(ctx context.Context, limit, offset int) ([]*research.Research, error) {
	if limit <= 0 {
		limit = 50
	}

	var rows []researchRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, process_number, kind, config, created_at, updated_at
		FROM researches
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}

	researches := make([]*research.Research, 0, len(rows))
	for _, row := range rows {
		res, err := r.GetByID(ctx, core.ResearchID(row.ID))
		if err != nil {
			return nil, err
		}
		researches = append(researches, res)
	}
	return researches, nil
}

// Update rewrites the research row and replaces its items
func (r *ResearchRepositoryImpl) Update(ctx context.Context, res *research.Research) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	configJSON, err := json.Marshal(res.Config)
	if err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE researches
		SET process_number = $2, kind = $3, config = $4, updated_at = NOW()
		WHERE id = $1
	`, res.ID.String(), res.ProcessNumber, string(res.Kind), string(configJSON))
	if err != nil {
		return err
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("%w: id %s", core.ErrResearchNotFound, res.ID)
	}

	// Items are replaced wholesale: the aggregate is small and always saved
	// as a unit.
	_, err = tx.ExecContext(ctx, `DELETE FROM research_items WHERE research_id = $1`, res.ID.String())
	if err != nil {
		return err
	}
	if err := insertItems(ctx, tx, res); err != nil {
		return err
	}
	return tx.Commit()
}

// Delete removes a research; items follow via ON DELETE CASCADE
func (r *ResearchRepositoryImpl) Delete(ctx context.Context, id core.ResearchID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM researches WHERE id = $1`, id.String())
	if err != nil {
		return err
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("%w: id %s", core.ErrResearchNotFound, id)
	}
	return nil
}

func insertItems(ctx context.Context, tx *sqlx.Tx, res *research.Research) error {
	for _, item := range res.Items {
		quotationsJSON, err := json.Marshal(item.Quotations)
		if err != nil {
			return err
		}
		evaluationJSON := []byte("null")
		if item.Evaluation != nil {
			evaluationJSON, err = json.Marshal(item.Evaluation)
			if err != nil {
				return err
			}
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO research_items (
				id, research_id, number, description, unit, quantity,
				contracted_unit_price, quotations, evaluation, use_minimum_price,
				justification, final_method, unit_market_price, total_market_price)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		`, item.ID.String(), res.ID.String(), item.Number, item.Description,
			item.Unit, item.Quantity, item.ContractedUnitPrice,
			string(quotationsJSON), string(evaluationJSON), item.UseMinimumPrice,
			item.Justification, string(item.FinalMethod), item.UnitMarketPrice,
			item.TotalMarketPrice)
		if err != nil {
			return err
		}
	}
	return nil
}

func rowToResearch(row researchRow) (*research.Research, error) {
	id, err := core.ParseResearchID(row.ID)
	if err != nil {
		return nil, err
	}
	var cfg pricing.EvaluationConfig
	if err := json.Unmarshal(row.Config, &cfg); err != nil {
		return nil, err
	}
	return &research.Research{
		ID:            id,
		ProcessNumber: row.ProcessNumber,
		Kind:          research.Kind(row.Kind),
		Config:        cfg,
		Items:         []*research.Item{},
		CreatedAt:     core.NewTimestamp(row.CreatedAt),
		UpdatedAt:     core.NewTimestamp(row.UpdatedAt),
	}, nil
}

func rowToItem(row itemRow) (*research.Item, error) {
	itemID, err := core.ParseItemID(row.ID)
	if err != nil {
		return nil, err
	}

	var quotations []pricing.Quotation
	if err := json.Unmarshal(row.Quotations, &quotations); err != nil {
		return nil, err
	}
	var evaluation *pricing.EvaluationResult
	if len(row.Evaluation) > 0 {
		if err := json.Unmarshal(row.Evaluation, &evaluation); err != nil {
			return nil, err
		}
	}

	return &research.Item{
		ID:                  itemID,
		Number:              row.Number,
		Description:         row.Description,
		Unit:                row.Unit,
		Quantity:            row.Quantity,
		ContractedUnitPrice: row.ContractedUnitPrice,
		Quotations:          quotations,
		Evaluation:          evaluation,
		UseMinimumPrice:     row.UseMinimumPrice,
		Justification:       row.Justification,
		FinalMethod:         research.FinalMethod(row.FinalMethod),
		UnitMarketPrice:     row.UnitMarketPrice,
		TotalMarketPrice:    row.TotalMarketPrice,
	}, nil
}
