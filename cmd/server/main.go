package main

import (
	"fmt"
	"net/http"
	"os"

	"bankbooks/internal/categorize"
	"bankbooks/internal/config"
	"bankbooks/internal/database"
	"bankbooks/internal/filestore"
	"bankbooks/internal/handlers"
	"bankbooks/internal/importer"
	"bankbooks/internal/jobs"
	"bankbooks/internal/logger"
	"bankbooks/internal/version"
)

func main() {
	// Handle --version flag
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-v") {
		fmt.Printf("BankBooks %s (built %s, commit %s)\n",
			version.Version, version.BuildTime, version.GitCommit)
		os.Exit(0)
	}

	// Initialize logger first
	logger.Init()
	log := logger.Default()

	cfg := config.Load()

	// Open database
	db, err := database.Open(cfg.DBPath)
	if err != nil {
		log.Error("database_open_failed", "path", cfg.DBPath, "error", err.Error())
		os.Exit(1)
	}
	defer db.Close()

	// Initialize schema
	if err := db.Init(); err != nil {
		log.Error("database_init_failed", "error", err.Error())
		os.Exit(1)
	}

	// Pattern groups: built-in table unless a config file overrides it
	groups := categorize.DefaultGroups()
	if cfg.GroupsPath != "" {
		groups, err = categorize.LoadGroups(cfg.GroupsPath)
		if err != nil {
			log.Error("groups_load_failed", "path", cfg.GroupsPath, "error", err.Error())
			os.Exit(1)
		}
		log.Info("groups_loaded", "path", cfg.GroupsPath, "count", len(groups))
	}

	// Initialize filestore for uploaded statements
	files, err := filestore.New(cfg.UploadsPath)
	if err != nil {
		log.Error("filestore_init_failed", "path", cfg.UploadsPath, "error", err.Error())
		os.Exit(1)
	}

	// Initialize and start job worker
	worker := jobs.NewWorker(db, log)
	worker.Register("import_statement", jobs.ImportStatementHandler(files))
	worker.Start()
	defer worker.Stop()

	// Initialize handlers
	engine := categorize.NewEngine(db, groups)
	imp := importer.New(db)
	h := handlers.New(db, files, engine, imp)

	// Setup routes
	mux := http.NewServeMux()

	// Statement import
	mux.HandleFunc("POST /api/import/upload", h.UploadStatement)
	mux.HandleFunc("POST /api/import", h.ImportStatement)
	mux.HandleFunc("GET /api/jobs/{id}", h.JobStatus)

	// Transactions
	mux.HandleFunc("GET /api/transactions", h.TransactionsList)
	mux.HandleFunc("POST /api/transactions/{id}/category", h.TransactionSetCategory)

	// Categories
	mux.HandleFunc("GET /api/categories", h.CategoriesList)
	mux.HandleFunc("POST /api/categories", h.CategoryCreate)
	mux.HandleFunc("PUT /api/categories/{id}", h.CategoryUpdate)
	mux.HandleFunc("DELETE /api/categories/{id}", h.CategoryDelete)

	// Auto-categorization
	mux.HandleFunc("GET /api/categorize/suggestions", h.CategorizeSuggestions)
	mux.HandleFunc("POST /api/categorize/apply", h.CategorizeApply)

	// Reports
	mux.HandleFunc("GET /api/reports/monthly", h.MonthlyReport)

	// Version API
	mux.HandleFunc("GET /api/version", h.APIVersion)

	// Wrap with request logging middleware
	handler := logger.HTTPMiddleware(mux)

	log.Info("server_starting", "port", cfg.Port, "address", "http://localhost:"+cfg.Port, "version", version.Version)
	if err := http.ListenAndServe(":"+cfg.Port, handler); err != nil {
		log.Error("server_failed", "error", err.Error())
		os.Exit(1)
	}
}
