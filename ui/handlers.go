package ui

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"pricebench/app"
	"pricebench/domain/core"
	"pricebench/domain/pricing"
)

// maxUploadBytes bounds quotation spreadsheet uploads
const maxUploadBytes = 10 << 20

// quotationPayload is the wire form of one quotation row
type quotationPayload struct {
	SourceName string   `json:"source_name"`
	SourceKind string   `json:"source_kind"`
	Locator    string   `json:"locator,omitempty"`
	Price      *float64 `json:"price,omitempty"`
}

func (p quotationPayload) toInput() app.QuotationInput {
	return app.QuotationInput{
		SourceName: p.SourceName,
		SourceKind: p.SourceKind,
		Locator:    p.Locator,
		Price:      p.Price,
	}
}

func toInputs(payloads []quotationPayload) []app.QuotationInput {
	inputs := make([]app.QuotationInput, 0, len(payloads))
	for _, p := range payloads {
		inputs = append(inputs, p.toInput())
	}
	return inputs
}

// handleEvaluateAdHoc runs the engine over a quotation set without storing
// anything
func (a *App) handleEvaluateAdHoc(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Quotations []quotationPayload        `json:"quotations"`
		Config     *pricing.EvaluationConfig `json:"config,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	result, err := a.evaluation.EvaluateAdHoc(toInputs(req.Quotations), req.Config)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *App) handleCreateResearch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProcessNumber string                    `json:"process_number"`
		Kind          string                    `json:"kind"`
		Config        *pricing.EvaluationConfig `json:"config,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	res, err := a.research.CreateResearch(r.Context(), req.ProcessNumber, req.Kind, req.Config)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (a *App) handleListResearches(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	researches, err := a.research.ListResearches(r.Context(), limit, offset)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, researches)
}

func (a *App) handleGetResearch(w http.ResponseWriter, r *http.Request) {
	id, ok := researchID(w, r)
	if !ok {
		return
	}
	res, err := a.research.GetResearch(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *App) handleDeleteResearch(w http.ResponseWriter, r *http.Request) {
	id, ok := researchID(w, r)
	if !ok {
		return
	}
	if err := a.research.DeleteResearch(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) handleAddItem(w http.ResponseWriter, r *http.Request) {
	id, ok := researchID(w, r)
	if !ok {
		return
	}

	var req struct {
		Description         string  `json:"description"`
		Unit                string  `json:"unit"`
		Quantity            int     `json:"quantity"`
		ContractedUnitPrice float64 `json:"contracted_unit_price,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	item, err := a.research.AddItem(r.Context(), id, app.AddItemInput{
		Description:         req.Description,
		Unit:                req.Unit,
		Quantity:            req.Quantity,
		ContractedUnitPrice: req.ContractedUnitPrice,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (a *App) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	id, ok := researchID(w, r)
	if !ok {
		return
	}
	number, err := itemNumber(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := a.research.RemoveItem(r.Context(), id, number); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) handleSetQuotations(w http.ResponseWriter, r *http.Request) {
	id, ok := researchID(w, r)
	if !ok {
		return
	}
	number, err := itemNumber(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var req struct {
		Quotations []quotationPayload `json:"quotations"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	item, err := a.research.SetQuotations(r.Context(), id, number, toInputs(req.Quotations))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (a *App) handleImportQuotations(w http.ResponseWriter, r *http.Request) {
	id, ok := researchID(w, r)
	if !ok {
		return
	}
	number, err := itemNumber(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid multipart form: %w", err))
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("missing file field: %w", err))
		return
	}
	defer file.Close()

	document, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("failed to read upload: %w", err))
		return
	}

	item, err := a.research.ImportItemQuotations(r.Context(), id, number, document)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (a *App) handleJustify(w http.ResponseWriter, r *http.Request) {
	id, ok := researchID(w, r)
	if !ok {
		return
	}
	number, err := itemNumber(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var req struct {
		Justification string `json:"justification"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	if err := a.research.Justify(r.Context(), id, number, req.Justification); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) handleMinimumPrice(w http.ResponseWriter, r *http.Request) {
	id, ok := researchID(w, r)
	if !ok {
		return
	}
	number, err := itemNumber(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var req struct {
		UseMinimumPrice bool `json:"use_minimum_price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	if err := a.research.SetMinimumPrice(r.Context(), id, number, req.UseMinimumPrice); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) handleEvaluateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := researchID(w, r)
	if !ok {
		return
	}
	number, err := itemNumber(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	item, err := a.evaluation.EvaluateItem(r.Context(), id, number)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (a *App) handleEvaluateResearch(w http.ResponseWriter, r *http.Request) {
	id, ok := researchID(w, r)
	if !ok {
		return
	}
	res, err := a.evaluation.EvaluateResearch(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *App) handleReport(w http.ResponseWriter, r *http.Request) {
	id, ok := researchID(w, r)
	if !ok {
		return
	}
	format := app.ReportFormat(r.URL.Query().Get("format"))
	if format == "" {
		format = app.FormatXLSX
	}

	data, contentType, err := a.reports.Render(r.Context(), id, format)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", reportFilename(format)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (a *App) handleConsolidatedJSON(w http.ResponseWriter, r *http.Request) {
	id, ok := researchID(w, r)
	if !ok {
		return
	}
	report, err := a.reports.Consolidate(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// Request helpers

// researchID validates the research id path parameter, answering 400 itself
// when the id is unusable
func researchID(w http.ResponseWriter, r *http.Request) (core.ResearchID, bool) {
	id, err := core.ParseResearchID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return "", false
	}
	return id, true
}

func itemNumber(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "number")
	number, err := strconv.Atoi(raw)
	if err != nil || number < 1 {
		return 0, fmt.Errorf("invalid item number %q", raw)
	}
	return number, nil
}

func queryInt(r *http.Request, key string, defaultValue int) int {
	if raw := r.URL.Query().Get(key); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil {
			return value
		}
	}
	return defaultValue
}

func reportFilename(format app.ReportFormat) string {
	switch format {
	case app.FormatMarkdown:
		return "consolidated-report.md"
	case app.FormatHTML:
		return "consolidated-report.html"
	default:
		return "consolidated-report.xlsx"
	}
}

// Response helpers

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("[App] Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// writeDomainError maps domain errors onto HTTP status codes
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case core.IsNotFoundError(err):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, core.ErrMissingJustification),
		errors.Is(err, core.ErrResearchNotEvaluated):
		writeError(w, http.StatusConflict, err)
	case core.IsValidationError(err),
		errors.Is(err, core.ErrUnsupportedReportKind):
		writeError(w, http.StatusBadRequest, err)
	default:
		log.Printf("[App] Internal error: %v", err)
		writeError(w, http.StatusInternalServerError, err)
	}
}
