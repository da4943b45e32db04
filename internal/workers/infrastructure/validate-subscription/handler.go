// internal/workers/infrastructure/validate-subscription/handler.go
package validatesubscription

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"vendorhub-workers/internal/common/camunda"
	apperrors "vendorhub-workers/internal/common/errors"
	"vendorhub-workers/internal/common/logger"
	"vendorhub-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"
)

const (
	TaskType = "validate-subscription"
)

var (
	validTiers = map[string]bool{
		models.TierBasic: true, models.TierPro: true, models.TierPremium: true,
	}
	validStatuses = map[string]bool{
		models.SubscriptionActive: true, models.SubscriptionTrialing: true,
	}
)

type Handler struct {
	config       *Config
	db           *sql.DB
	redis        *redis.Client
	logger       logger.Logger
	errorHandler *apperrors.ErrorHandler
	now          func() time.Time
}

func NewHandler(config *Config, db *sql.DB, redis *redis.Client, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		db:           db,
		redis:        redis,
		logger:       log,
		errorHandler: apperrors.NewErrorHandler(log),
		now:          time.Now,
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
	}
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.VendorID == "" {
		return nil, apperrors.NewSubscriptionInvalidError("vendorId is required")
	}

	if h.config.DemoPrefix != "" && strings.HasPrefix(input.VendorID, h.config.DemoPrefix) {
		h.logger.Debug("demo vendor, skipping subscription lookup", map[string]interface{}{
			"vendorId": input.VendorID,
		})
		return &Output{IsValid: true, TierLevel: models.TierDemo, IsDemo: true}, nil
	}

	cacheKey := "sub:" + input.VendorID
	if sub, ok := h.cached(ctx, cacheKey); ok {
		if err := h.check(sub); err != nil {
			return nil, err
		}
		return &Output{IsValid: true, TierLevel: sub.Tier}, nil
	}

	var (
		sub       models.Subscription
		periodEnd sql.NullTime
	)
	query := `SELECT vendor_id, tier, status, current_period_end FROM vendor_subscriptions WHERE vendor_id = $1`
	err := h.db.QueryRowContext(ctx, query, input.VendorID).Scan(
		&sub.VendorID, &sub.Tier, &sub.Status, &periodEnd,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewSubscriptionInvalidError(fmt.Sprintf("no subscription for vendor %s", input.VendorID))
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperrors.NewQueryTimeoutError("subscription")
		}
		return nil, apperrors.NewSubscriptionCheckFailedError(err)
	}
	if periodEnd.Valid {
		sub.CurrentPeriodEnd = periodEnd.Time
	}

	if err := h.check(sub); err != nil {
		return nil, err
	}

	if h.redis != nil {
		data, _ := json.Marshal(sub)
		if err := h.redis.Set(ctx, cacheKey, data, h.config.CacheTTL).Err(); err != nil {
			h.logger.Warn("subscription cache write failed", map[string]interface{}{
				"vendorId": input.VendorID,
				"error":    err,
			})
		}
	}

	return &Output{IsValid: true, TierLevel: sub.Tier}, nil
}

func (h *Handler) cached(ctx context.Context, key string) (models.Subscription, bool) {
	if h.redis == nil {
		return models.Subscription{}, false
	}
	val, err := h.redis.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			h.logger.Warn("subscription cache read failed", map[string]interface{}{
				"cacheKey": key,
				"error":    err,
			})
		}
		return models.Subscription{}, false
	}
	var sub models.Subscription
	if err := json.Unmarshal(val, &sub); err != nil {
		return models.Subscription{}, false
	}
	return sub, true
}

// check rejects unknown tiers, inactive statuses and lapsed periods. A zero
// period end means the subscription does not lapse.
func (h *Handler) check(sub models.Subscription) error {
	if !validStatuses[sub.Status] {
		return apperrors.NewSubscriptionInvalidError(fmt.Sprintf("subscription status %q", sub.Status))
	}
	if !validTiers[sub.Tier] {
		return apperrors.NewSubscriptionInvalidError(fmt.Sprintf("unknown tier %q", sub.Tier))
	}
	if !sub.CurrentPeriodEnd.IsZero() && h.now().After(sub.CurrentPeriodEnd) {
		return apperrors.NewSubscriptionExpiredError(
			fmt.Sprintf("period ended %s", sub.CurrentPeriodEnd.UTC().Format(time.RFC3339)))
	}
	return nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
