// internal/workers/application/record-prequalification/models.go
package recordprequalification

import "github.com/shopspring/decimal"

type Input struct {
	ApplicationID     string           `json:"applicationId"`
	VendorID          string           `json:"vendorId"`
	Approved          bool             `json:"approved"`
	ConfidenceScore   int              `json:"confidenceScore"`
	Score             int              `json:"score"`
	Decision          string           `json:"decision"`
	RecommendedAmount *decimal.Decimal `json:"recommendedAmount,omitempty"`
	Reasons           []string         `json:"reasons"`
	Conditions        []string         `json:"conditions,omitempty"`
}

type Output struct {
	PrequalificationID string `json:"prequalificationId"`
	CreatedAt          string `json:"createdAt"` // ISO 8601
	Indexed            bool   `json:"indexed"`
}
