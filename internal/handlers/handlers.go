package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"bankbooks/internal/categorize"
	"bankbooks/internal/database"
	"bankbooks/internal/filestore"
	"bankbooks/internal/importer"
	"bankbooks/internal/jobs"
	"bankbooks/internal/logger"
	"bankbooks/internal/models"
	"bankbooks/internal/version"
)

type Handler struct {
	db       *database.DB
	files    *filestore.Store
	engine   *categorize.Engine
	importer *importer.Importer
}

func New(db *database.DB, files *filestore.Store, engine *categorize.Engine, imp *importer.Importer) *Handler {
	return &Handler{
		db:       db,
		files:    files,
		engine:   engine,
		importer: imp,
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "failed to encode JSON response", http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, event string, err error) {
	logger.FromContext(r.Context()).Error(event, "error", err.Error())
	writeError(w, http.StatusInternalServerError, "internal error")
}

// Import handlers

// UploadStatement stores an uploaded statement file and enqueues a
// background import job. Responds with the job id for polling.
func (h *Handler) UploadStatement(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file upload")
		return
	}
	defer file.Close()

	fileName, err := h.files.Save(header.Filename, file)
	if err != nil {
		h.serverError(w, r, "upload_save_failed", err)
		return
	}

	jobID, err := h.db.CreateJob("import_statement", jobs.ImportStatementPayload{FileName: fileName})
	if err != nil {
		h.serverError(w, r, "job_create_failed", err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id": jobID,
		"file":   fileName,
	})
}

// ImportStatement imports an uploaded statement synchronously and responds
// with the full import result.
func (h *Handler) ImportStatement(w http.ResponseWriter, r *http.Request) {
	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file upload")
		return
	}
	defer file.Close()

	start := time.Now()
	result := h.importer.Import(r.Context(), file)
	logger.FromContext(r.Context()).Info("statement_imported",
		"imported", result.Imported,
		"duplicates", result.Duplicates,
		"errors", result.Errors,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	writeJSON(w, http.StatusOK, result)
}

// JobStatus returns the state of a background job
func (h *Handler) JobStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid job id")
		return
	}
	job, err := h.db.GetJob(id)
	if errors.Is(err, database.ErrNotFound) {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	if err != nil {
		h.serverError(w, r, "job_get_failed", err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// Transaction handlers

func (h *Handler) TransactionsList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := database.TransactionFilter{
		Search:        q.Get("search"),
		Uncategorized: q.Get("uncategorized") == "true",
		CategoryID:    queryInt64(q.Get("category_id")),
		Year:          int(queryInt64(q.Get("year"))),
		Month:         int(queryInt64(q.Get("month"))),
		Limit:         int(queryInt64(q.Get("limit"))),
		Offset:        int(queryInt64(q.Get("offset"))),
	}

	transactions, err := h.db.ListTransactions(filter)
	if err != nil {
		h.serverError(w, r, "transactions_list_failed", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"transactions": transactions})
}

// TransactionSetCategory sets or clears one transaction's category. This is
// the only user-editable transaction field.
func (h *Handler) TransactionSetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	var req struct {
		CategoryID *int64 `json:"category_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.CategoryID != nil {
		if _, err := h.db.GetCategory(*req.CategoryID); err != nil {
			if errors.Is(err, database.ErrNotFound) {
				writeError(w, http.StatusNotFound, "category not found")
				return
			}
			h.serverError(w, r, "category_get_failed", err)
			return
		}
	}

	if err := h.db.SetTransactionCategory(id, req.CategoryID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeError(w, http.StatusNotFound, "transaction not found")
			return
		}
		h.serverError(w, r, "transaction_set_category_failed", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"updated": 1})
}

// Category handlers

func (h *Handler) CategoriesList(w http.ResponseWriter, r *http.Request) {
	categories, err := h.db.ListCategories()
	if err != nil {
		h.serverError(w, r, "categories_list_failed", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

func (h *Handler) CategoryCreate(w http.ResponseWriter, r *http.Request) {
	var c models.Category
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil || c.Name == "" {
		writeError(w, http.StatusBadRequest, "category name is required")
		return
	}

	id, err := h.db.CreateCategory(&c)
	if err != nil {
		if database.IsUniqueViolation(err) {
			writeError(w, http.StatusConflict, "category name already exists")
			return
		}
		h.serverError(w, r, "category_create_failed", err)
		return
	}
	c.ID = id
	writeJSON(w, http.StatusCreated, c)
}

func (h *Handler) CategoryUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	var c models.Category
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil || c.Name == "" {
		writeError(w, http.StatusBadRequest, "category name is required")
		return
	}
	c.ID = id

	if err := h.db.UpdateCategory(&c); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeError(w, http.StatusNotFound, "category not found")
			return
		}
		if database.IsUniqueViolation(err) {
			writeError(w, http.StatusConflict, "category name already exists")
			return
		}
		h.serverError(w, r, "category_update_failed", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// CategoryDelete removes a category; its transactions stay and become
// uncategorized.
func (h *Handler) CategoryDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	if err := h.db.DeleteCategory(id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeError(w, http.StatusNotFound, "category not found")
			return
		}
		h.serverError(w, r, "category_delete_failed", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

// Auto-categorization handlers

func (h *Handler) CategorizeSuggestions(w http.ResponseWriter, r *http.Request) {
	report, err := h.engine.Suggest(r.Context())
	if err != nil {
		h.serverError(w, r, "categorize_suggest_failed", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// CategorizeApply bulk-assigns a category either to an explicit id list or
// to every uncategorized transaction matching the given patterns.
func (h *Handler) CategorizeApply(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CategoryID     int64    `json:"category_id"`
		Patterns       []string `json:"patterns"`
		TransactionIDs []int64  `json:"transaction_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Patterns) > 0 && len(req.TransactionIDs) > 0 {
		writeError(w, http.StatusBadRequest, "give either patterns or transaction_ids, not both")
		return
	}

	var updated int
	var err error
	if len(req.TransactionIDs) > 0 {
		updated, err = h.engine.ApplyIDs(r.Context(), req.CategoryID, req.TransactionIDs)
	} else {
		updated, err = h.engine.ApplyPatterns(r.Context(), req.CategoryID, req.Patterns)
	}

	switch {
	case errors.Is(err, categorize.ErrNoPatterns), errors.Is(err, categorize.ErrNoTransactionIDs):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, categorize.ErrCategoryNotFound):
		writeError(w, http.StatusNotFound, "category not found")
		return
	case err != nil:
		h.serverError(w, r, "categorize_apply_failed", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"updated": updated})
}

// Report handlers

func (h *Handler) MonthlyReport(w http.ResponseWriter, r *http.Request) {
	year := int(queryInt64(r.URL.Query().Get("year")))
	if year == 0 {
		year = time.Now().Year()
	}

	totals, err := h.db.MonthlyCategoryTotals(year)
	if err != nil {
		h.serverError(w, r, "monthly_report_failed", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"year":   year,
		"totals": totals,
	})
}

// APIVersion returns build metadata
func (h *Handler) APIVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"version":    version.Version,
		"build_time": version.BuildTime,
		"git_commit": version.GitCommit,
	})
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

func queryInt64(s string) int64 {
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}
