package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"bankbooks/internal/database"
	"bankbooks/internal/filestore"
	"bankbooks/internal/importer"
	"bankbooks/internal/logger"
	"bankbooks/internal/models"
)

// ImportStatementPayload is the JSON payload for import_statement jobs
type ImportStatementPayload struct {
	FileName string `json:"file_name"`
}

// ImportStatementHandler creates a job handler that runs the import pipeline
// over an uploaded statement file. The job completes with the ImportResult
// as its JSON result; per-row errors live inside that result and do not fail
// the job.
func ImportStatementHandler(files *filestore.Store) JobHandler {
	return func(ctx context.Context, job *models.Job, db *database.DB) error {
		var payload ImportStatementPayload
		if err := json.Unmarshal([]byte(job.Payload), &payload); err != nil {
			return fmt.Errorf("unmarshal payload: %w", err)
		}

		db.UpdateJobProgress(job.ID, 10)

		imp := importer.New(db)
		result := imp.ImportFile(ctx, files.FullPath(payload.FileName))

		logger.FromContext(ctx).Info("statement_imported",
			"file", payload.FileName,
			"imported", result.Imported,
			"duplicates", result.Duplicates,
			"errors", result.Errors,
		)

		resultJSON, err := json.Marshal(result)
		if err != nil {
			return fmt.Errorf("marshal result: %w", err)
		}
		db.CompleteJob(job.ID, string(resultJSON))
		return nil
	}
}
