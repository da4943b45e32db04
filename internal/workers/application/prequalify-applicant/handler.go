// internal/workers/application/prequalify-applicant/handler.go
package prequalifyapplicant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"vendorhub-workers/internal/common/camunda"
	apperrors "vendorhub-workers/internal/common/errors"
	"vendorhub-workers/internal/common/logger"
	"vendorhub-workers/internal/common/metrics"
	"vendorhub-workers/internal/common/validation"
	"vendorhub-workers/internal/prequal"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/cespare/xxhash/v2"
	"github.com/redis/go-redis/v9"
)

const (
	TaskType = "prequalify-applicant"

	cacheKeyPrefix = "prequal:result:" + prequal.RulesVersion + ":"
)

var profileSchema = validation.MustCompile(prequal.ProfileSchema)

type Handler struct {
	config       *Config
	redis        *redis.Client
	logger       logger.Logger
	errorHandler *apperrors.ErrorHandler
	encode       func(v interface{}) ([]byte, error)
}

// NewHandler builds the handler. redisClient may be nil, in which case every
// evaluation runs uncached.
func NewHandler(config *Config, redisClient *redis.Client, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		redis:        redisClient,
		logger:       log,
		errorHandler: apperrors.NewErrorHandler(log),
		encode:       json.Marshal,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	input, err := ParseInput([]byte(job.Variables))
	if err != nil {
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return
	}

	output, err := h.execute(ctx, input)
	if err != nil {
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return
	}

	if err := camunda.CompleteJob(ctx, client, job, output); err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err,
		})
	}
}

// ParseInput validates raw job variables against the profile schema and
// decodes them.
func ParseInput(raw []byte) (*Input, error) {
	res, err := profileSchema.Validate(raw)
	if err != nil {
		return nil, apperrors.NewParseError(err)
	}
	if !res.Valid {
		return nil, apperrors.NewPrequalInputInvalidError(res.GetErrorMessages())
	}

	var input Input
	if err := json.Unmarshal(raw, &input); err != nil {
		return nil, apperrors.NewParseError(err)
	}
	input.Profile = input.Profile.Normalized()
	return &input, nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	profile := input.Profile.Normalized()
	key, err := CacheKey(profile)
	if err != nil {
		return nil, apperrors.NewParseError(err)
	}

	if result, ok := h.lookup(ctx, key); ok {
		h.logger.Debug("cached result", map[string]interface{}{
			"applicationId": input.ApplicationID,
			"cacheKey":      key,
		})
		metrics.RecordDecision(string(result.Decision), result.ConfidenceScore)
		return newOutput(result, true), nil
	}

	result := prequal.Evaluate(profile)
	h.store(ctx, key, result)
	metrics.RecordDecision(string(result.Decision), result.ConfidenceScore)

	h.logger.Info("applicant pre-qualified", map[string]interface{}{
		"applicationId":   input.ApplicationID,
		"vendorId":        input.VendorID,
		"score":           result.Score,
		"confidenceScore": result.ConfidenceScore,
		"decision":        result.Decision,
	})

	return newOutput(result, false), nil
}

// CacheKey derives the result cache key from the normalized profile.
func CacheKey(profile prequal.Profile) (string, error) {
	data, err := json.Marshal(profile.Normalized())
	if err != nil {
		return "", fmt.Errorf("marshal profile: %w", err)
	}
	return fmt.Sprintf("%s%016x", cacheKeyPrefix, xxhash.Sum64(data)), nil
}

func (h *Handler) lookup(ctx context.Context, key string) (prequal.Result, bool) {
	if h.redis == nil {
		return prequal.Result{}, false
	}

	val, err := h.redis.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		metrics.RecordCacheLookup("miss")
		return prequal.Result{}, false
	case err != nil:
		metrics.RecordCacheLookup("error")
		h.logger.Warn("result cache read failed", map[string]interface{}{
			"cacheKey": key,
			"error":    err,
		})
		return prequal.Result{}, false
	}

	var result prequal.Result
	if err := json.Unmarshal(val, &result); err != nil {
		metrics.RecordCacheLookup("error")
		h.logger.Warn("discarding unreadable cached result", map[string]interface{}{
			"cacheKey": key,
			"error":    err,
		})
		return prequal.Result{}, false
	}

	metrics.RecordCacheLookup("hit")
	return result, true
}

func (h *Handler) store(ctx context.Context, key string, result prequal.Result) {
	if h.redis == nil {
		return
	}

	data, err := h.encode(result)
	if err != nil {
		h.logger.Warn("result cache encode failed", map[string]interface{}{
			"cacheKey": key,
			"error":    err,
		})
		return
	}
	if err := h.redis.Set(ctx, key, data, h.config.CacheTTL).Err(); err != nil {
		h.logger.Warn("result cache write failed", map[string]interface{}{
			"cacheKey": key,
			"error":    err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
