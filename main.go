package main

import (
	"context"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"pricebench/adapters/excel"
	"pricebench/adapters/postgres"
	"pricebench/adapters/report"
	"pricebench/app"
	"pricebench/internal/config"
	"pricebench/internal/errors"
	"pricebench/internal/migration"
	"pricebench/ports"
	"pricebench/ui"
)

// initDatabase connects to PostgreSQL and runs the schema migrations
func initDatabase(appConfig *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", appConfig.Database.URL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	if err := db.Ping(); err != nil {
		return nil, errors.Wrap(err, "failed to ping database")
	}

	var migrator migration.Migrator = migration.NewRunner()
	log.Printf("[Main] Running schema migrations (version %s)", migrator.Version())
	if err := migrator.Run(context.Background(), db); err != nil {
		return nil, errors.Wrap(err, "database migration failed")
	}

	return db, nil
}

func main() {
	// .env is optional; real deployments set the environment directly
	if err := godotenv.Load(); err != nil {
		log.Printf("[Main] No .env file found, using environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("[Main] Configuration error: %v", err)
	}

	db, err := initDatabase(appConfig)
	if err != nil {
		log.Fatalf("[Main] Database initialization failed: %v", err)
	}
	defer db.Close()

	repo := postgres.NewResearchRepository(db)
	importer := excel.NewQuotationImporter()

	researchService := app.NewResearchService(repo, importer, appConfig.Evaluation.EvaluationConfig())
	evaluationService := app.NewEvaluationService(repo)
	reportService := app.NewReportService(repo, map[app.ReportFormat]ports.ReportWriter{
		app.FormatXLSX:     excel.NewReportWriter(),
		app.FormatMarkdown: report.NewMarkdownWriter(),
		app.FormatHTML:     report.NewHTMLWriter(),
	})

	server := ui.NewApp(ui.Config{Port: appConfig.Server.Port}, researchService, evaluationService, reportService)
	if err := server.Start(); err != nil {
		log.Fatalf("[Main] Server failed: %v", err)
	}
}
