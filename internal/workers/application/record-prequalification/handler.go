// internal/workers/application/record-prequalification/handler.go
package recordprequalification

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"vendorhub-workers/internal/common/camunda"
	apperrors "vendorhub-workers/internal/common/errors"
	"vendorhub-workers/internal/common/logger"
	"vendorhub-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const (
	TaskType = "record-prequalification"

	uniqueViolation pq.ErrorCode = "23505"
)

// Indexer writes a document to a search index. *database.ElasticsearchClient
// satisfies it.
type Indexer interface {
	IndexDocument(ctx context.Context, index, id string, doc interface{}) error
}

type Handler struct {
	config       *Config
	db           *sql.DB
	indexer      Indexer
	logger       logger.Logger
	errorHandler *apperrors.ErrorHandler
}

// NewHandler builds the handler. A nil indexer disables search indexing.
func NewHandler(config *Config, db *sql.DB, indexer Indexer, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		db:           db,
		indexer:      indexer,
		logger:       log,
		errorHandler: apperrors.NewErrorHandler(log),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.errorHandler.HandleJobError(ctx, client, job, apperrors.NewParseError(err))
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return
	}

	if err := camunda.CompleteJob(ctx, client, job, output); err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err,
		})
		return
	}
	h.logger.Info("job completed successfully", map[string]interface{}{
		"jobKey": job.Key,
	})
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	record := models.Prequalification{
		ID:                uuid.New().String(),
		ApplicationID:     input.ApplicationID,
		VendorID:          input.VendorID,
		Approved:          input.Approved,
		ConfidenceScore:   input.ConfidenceScore,
		RawScore:          input.Score,
		Decision:          input.Decision,
		RecommendedAmount: input.RecommendedAmount,
		Reasons:           input.Reasons,
		Conditions:        input.Conditions,
		CreatedAt:         time.Now().UTC(),
	}
	if record.Reasons == nil {
		record.Reasons = []string{}
	}
	createdAt := record.CreatedAt.Format(time.RFC3339)

	reasonsJSON, err := json.Marshal(record.Reasons)
	if err != nil {
		return nil, apperrors.NewDatabaseInsertFailedError(fmt.Errorf("marshal reasons: %w", err))
	}
	conditions := record.Conditions
	if conditions == nil {
		conditions = []string{}
	}
	conditionsJSON, err := json.Marshal(conditions)
	if err != nil {
		return nil, apperrors.NewDatabaseInsertFailedError(fmt.Errorf("marshal conditions: %w", err))
	}

	// recommended_amount is nullable
	var amount interface{}
	if record.RecommendedAmount != nil {
		amount = record.RecommendedAmount.StringFixed(2)
	}

	// application_id carries a unique index, so concurrent jobs for the same
	// application insert at most one row.
	res, err := h.db.ExecContext(ctx, `
		INSERT INTO prequalifications (
			id, application_id, vendor_id, approved, confidence_score,
			raw_score, decision, recommended_amount, reasons, conditions, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (application_id) DO NOTHING`,
		record.ID,
		record.ApplicationID,
		record.VendorID,
		record.Approved,
		record.ConfidenceScore,
		record.RawScore,
		record.Decision,
		amount,
		reasonsJSON,
		conditionsJSON,
		createdAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.NewDuplicatePrequalificationError(input.ApplicationID)
		}
		return nil, apperrors.NewDatabaseInsertFailedError(err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return nil, apperrors.NewDatabaseInsertFailedError(fmt.Errorf("rows affected: %w", err))
	}
	if inserted == 0 {
		return nil, apperrors.NewDuplicatePrequalificationError(input.ApplicationID)
	}

	h.writeAuditLog(ctx, record, createdAt)
	indexed := h.index(ctx, record)

	h.logger.Info("prequalification recorded", map[string]interface{}{
		"prequalificationId": record.ID,
		"applicationId":      record.ApplicationID,
		"vendorId":           record.VendorID,
		"decision":           record.Decision,
		"indexed":            indexed,
	})

	return &Output{
		PrequalificationID: record.ID,
		CreatedAt:          createdAt,
		Indexed:            indexed,
	}, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func (h *Handler) writeAuditLog(ctx context.Context, record models.Prequalification, createdAt string) {
	details, err := json.Marshal(map[string]interface{}{
		"applicationId":   record.ApplicationID,
		"vendorId":        record.VendorID,
		"decision":        record.Decision,
		"confidenceScore": record.ConfidenceScore,
	})
	if err != nil {
		details = []byte("{}")
	}

	_, err = h.db.ExecContext(ctx, `
		INSERT INTO audit_log (event_type, resource_type, resource_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		"prequalification_recorded",
		"prequalification",
		record.ID,
		details,
		createdAt,
	)
	if err != nil {
		h.logger.Warn("audit log insert failed", map[string]interface{}{
			"error":              err,
			"prequalificationId": record.ID,
		})
	}
}

func (h *Handler) index(ctx context.Context, record models.Prequalification) bool {
	if h.indexer == nil {
		return false
	}

	if err := h.indexer.IndexDocument(ctx, h.config.Index, record.ID, record); err != nil {
		h.logger.Warn("search indexing failed", map[string]interface{}{
			"error": apperrors.NewIndexWriteFailedError(h.config.Index, err),
			"index": h.config.Index,
		})
		return false
	}
	return true
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
