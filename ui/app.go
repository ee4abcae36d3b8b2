package ui

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"pricebench/app"
)

// App is the HTTP application: a JSON API over the research, evaluation and
// report services
type App struct {
	router     *chi.Mux
	research   *app.ResearchService
	evaluation *app.EvaluationService
	reports    *app.ReportService
	port       string
}

// Config holds HTTP application configuration
type Config struct {
	Port string
}

// NewApp creates the HTTP application and wires its routes
func NewApp(config Config, research *app.ResearchService, evaluation *app.EvaluationService, reports *app.ReportService) *App {
	a := &App{
		router:     chi.NewRouter(),
		research:   research,
		evaluation: evaluation,
		reports:    reports,
		port:       config.Port,
	}

	a.setupMiddleware()
	a.setupRoutes()
	return a
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	// Stateless evaluation
	a.router.Post("/api/evaluate", a.handleEvaluateAdHoc)

	// Research lifecycle
	a.router.Post("/api/researches", a.handleCreateResearch)
	a.router.Get("/api/researches", a.handleListResearches)
	a.router.Get("/api/researches/{id}", a.handleGetResearch)
	a.router.Delete("/api/researches/{id}", a.handleDeleteResearch)

	// Items and quotations
	a.router.Post("/api/researches/{id}/items", a.handleAddItem)
	a.router.Delete("/api/researches/{id}/items/{number}", a.handleRemoveItem)
	a.router.Put("/api/researches/{id}/items/{number}/quotations", a.handleSetQuotations)
	a.router.Post("/api/researches/{id}/items/{number}/quotations/import", a.handleImportQuotations)
	a.router.Post("/api/researches/{id}/items/{number}/justification", a.handleJustify)
	a.router.Post("/api/researches/{id}/items/{number}/minimum-price", a.handleMinimumPrice)

	// Evaluation
	a.router.Post("/api/researches/{id}/items/{number}/evaluate", a.handleEvaluateItem)
	a.router.Post("/api/researches/{id}/evaluate", a.handleEvaluateResearch)

	// Reports
	a.router.Get("/api/researches/{id}/report", a.handleReport)
	a.router.Get("/api/researches/{id}/report/consolidated", a.handleConsolidatedJSON)
}

// Router exposes the handler for tests and embedding
func (a *App) Router() http.Handler {
	return a.router
}

// Start starts the HTTP server
func (a *App) Start() error {
	addr := ":" + a.port
	log.Printf("[App] Starting pricebench API server on %s", addr)
	return http.ListenAndServe(addr, a.router)
}
