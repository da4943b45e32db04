// internal/workers/application/send-notification/models.go
package sendnotification

import "github.com/shopspring/decimal"

type Input struct {
	RecipientID       string                 `json:"recipientId"`
	RecipientType     string                 `json:"recipientType"` // "applicant" or "vendor"
	NotificationType  string                 `json:"notificationType"`
	ApplicationID     string                 `json:"applicationId,omitempty"`
	ConfidenceScore   int                    `json:"confidenceScore,omitempty"`
	RecommendedAmount *decimal.Decimal       `json:"recommendedAmount,omitempty"`
	Metadata          map[string]interface{} `json:"metadata,omitempty"`
}

type Output struct {
	NotificationID string `json:"notificationId"`
	Status         string `json:"status"` // "sent", "failed", "disabled"
	SentAt         string `json:"sentAt"` // ISO 8601
}

// Notification types
const (
	TypePrequalApproved     = "prequal_approved"
	TypePrequalConditional  = "prequal_conditional"
	TypePrequalDeclined     = "prequal_declined"
	TypeNewPrequalification = "new_prequalification"
)

// Statuses
const (
	StatusSent     = "sent"
	StatusFailed   = "failed"
	StatusDisabled = "disabled"
)

// Recipient types
const (
	RecipientTypeApplicant = "applicant"
	RecipientTypeVendor    = "vendor"
)
