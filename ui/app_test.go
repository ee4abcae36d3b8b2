package ui

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricebench/adapters/excel"
	"pricebench/adapters/report"
	"pricebench/app"
	"pricebench/domain/core"
	"pricebench/domain/pricing"
	"pricebench/domain/research"
	"pricebench/ports"
)

// memoryRepo is an in-memory ResearchRepository for handler tests
type memoryRepo struct {
	mu   sync.Mutex
	byID map[core.ResearchID]*research.Research
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{byID: map[core.ResearchID]*research.Research{}}
}

func (m *memoryRepo) Create(_ context.Context, r *research.Research) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[r.ID] = r
	return nil
}

func (m *memoryRepo) GetByID(_ context.Context, id core.ResearchID) (*research.Research, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.byID[id]
	if !ok {
		return nil, core.NewNotFoundError("research", id.String())
	}
	return r, nil
}

func (m *memoryRepo) List(_ context.Context, _, _ int) ([]*research.Research, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	researches := make([]*research.Research, 0, len(m.byID))
	for _, r := range m.byID {
		researches = append(researches, r)
	}
	return researches, nil
}

func (m *memoryRepo) Update(_ context.Context, r *research.Research) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[r.ID]; !ok {
		return core.NewNotFoundError("research", r.ID.String())
	}
	m.byID[r.ID] = r
	return nil
}

func (m *memoryRepo) Delete(_ context.Context, id core.ResearchID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return core.NewNotFoundError("research", id.String())
	}
	delete(m.byID, id)
	return nil
}

func newTestApp(repo *memoryRepo) *App {
	defaults := pricing.DefaultEvaluationConfig()
	researchService := app.NewResearchService(repo, excel.NewQuotationImporter(), defaults)
	evaluationService := app.NewEvaluationService(repo)
	reportService := app.NewReportService(repo, map[app.ReportFormat]ports.ReportWriter{
		app.FormatXLSX:     excel.NewReportWriter(),
		app.FormatMarkdown: report.NewMarkdownWriter(),
		app.FormatHTML:     report.NewHTMLWriter(),
	})
	return NewApp(Config{Port: "0"}, researchService, evaluationService, reportService)
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestEvaluateEndpointClassifiesQuotations(t *testing.T) {
	a := newTestApp(newMemoryRepo())

	rec := doJSON(t, a.Router(), http.MethodPost, "/api/evaluate", map[string]interface{}{
		"quotations": []map[string]interface{}{
			{"source_name": "Vendor A", "source_kind": "vendor", "price": 100},
			{"source_name": "Vendor B", "source_kind": "vendor", "price": 110},
			{"source_name": "Price Bank", "source_kind": "public_price_bank", "price": 105},
		},
	})

	require.Equal(t, http.StatusOK, rec.Code)

	var result pricing.EvaluationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 3, result.ValidCount())
	require.NotNil(t, result.Aggregates)
	assert.Equal(t, pricing.MethodMean, result.Aggregates.SuggestedMethod)
	assert.InDelta(t, 105.0, result.Aggregates.MarketPrice, 1e-9)
}

func TestEvaluateEndpointRejectsUnknownSourceKind(t *testing.T) {
	a := newTestApp(newMemoryRepo())

	rec := doJSON(t, a.Router(), http.MethodPost, "/api/evaluate", map[string]interface{}{
		"quotations": []map[string]interface{}{
			{"source_name": "Vendor A", "source_kind": "supplier", "price": 100},
		},
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResearchLifecycleEndpoints(t *testing.T) {
	a := newTestApp(newMemoryRepo())
	router := a.Router()

	rec := doJSON(t, router, http.MethodPost, "/api/researches", map[string]interface{}{
		"process_number": "2026/0042",
		"kind":           "standard",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created research.Research
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)

	base := fmt.Sprintf("/api/researches/%s", created.ID)

	rec = doJSON(t, router, http.MethodPost, base+"/items", map[string]interface{}{
		"description": "office chair",
		"unit":        "unidade",
		"quantity":    10,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodPut, base+"/items/1/quotations", map[string]interface{}{
		"quotations": []map[string]interface{}{
			{"source_name": "Vendor A", "source_kind": "vendor", "price": 100},
			{"source_name": "Vendor B", "source_kind": "vendor", "price": 110},
			{"source_name": "Price Bank", "source_kind": "public_price_bank", "price": 105},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, base+"/evaluate", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var evaluated research.Research
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &evaluated))
	require.Len(t, evaluated.Items, 1)
	assert.True(t, evaluated.Items[0].IsEvaluated())
	assert.InDelta(t, 1050.0, evaluated.Items[0].TotalMarketPrice, 1e-9)

	rec = doJSON(t, router, http.MethodDelete, base, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, router, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBlankResearchIDIsRejected(t *testing.T) {
	a := newTestApp(newMemoryRepo())

	rec := doJSON(t, a.Router(), http.MethodGet, "/api/researches/%20", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConsolidatedReportBlockedWithoutJustification(t *testing.T) {
	repo := newMemoryRepo()
	a := newTestApp(repo)
	router := a.Router()

	rec := doJSON(t, router, http.MethodPost, "/api/researches", map[string]interface{}{
		"process_number": "2026/0099",
		"kind":           "standard",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created research.Research
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	base := fmt.Sprintf("/api/researches/%s", created.ID)

	rec = doJSON(t, router, http.MethodPost, base+"/items", map[string]interface{}{
		"description": "stapler",
		"unit":        "unidade",
		"quantity":    5,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	// Two vendor quotations: too few valid prices and no public source, so
	// the evaluation reports problems that demand a justification.
	rec = doJSON(t, router, http.MethodPut, base+"/items/1/quotations", map[string]interface{}{
		"quotations": []map[string]interface{}{
			{"source_name": "Vendor A", "source_kind": "vendor", "price": 10},
			{"source_name": "Vendor B", "source_kind": "vendor", "price": 12},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, base+"/evaluate", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, base+"/report/consolidated", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, router, http.MethodPost, base+"/items/1/justification", map[string]interface{}{
		"justification": "restricted market, only two suppliers answered",
	})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, router, http.MethodGet, base+"/report/consolidated", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var consolidated research.ConsolidatedReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &consolidated))
	require.Len(t, consolidated.Rows, 1)
	assert.InDelta(t, 55.0, consolidated.MarketTotal, 1e-9)
}

func TestMarkdownReportEndpoint(t *testing.T) {
	repo := newMemoryRepo()
	a := newTestApp(repo)
	router := a.Router()

	rec := doJSON(t, router, http.MethodPost, "/api/researches", map[string]interface{}{
		"process_number": "2026/0100",
		"kind":           "standard",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created research.Research
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	base := fmt.Sprintf("/api/researches/%s", created.ID)

	rec = doJSON(t, router, http.MethodPost, base+"/items", map[string]interface{}{
		"description": "printer paper", "unit": "resma", "quantity": 100,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	// Three valid public-source prices: the evaluation reports no problems,
	// so nothing blocks the report.
	rec = doJSON(t, router, http.MethodPut, base+"/items/1/quotations", map[string]interface{}{
		"quotations": []map[string]interface{}{
			{"source_name": "Price Bank", "source_kind": "public_price_bank", "price": 20},
			{"source_name": "Contract 7/2025", "source_kind": "contract", "price": 22},
			{"source_name": "Ata 12/2025", "source_kind": "price_registry_record", "price": 21},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, base+"/evaluate", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, base+"/report?format=markdown", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, report.MarkdownContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "Process 2026/0100")
	assert.Contains(t, rec.Body.String(), "printer paper")
}
