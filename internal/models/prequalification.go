package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Prequalification is one stored evaluation, as written to the
// prequalifications table and the search index.
type Prequalification struct {
	ID                string           `json:"id"`
	ApplicationID     string           `json:"applicationId"`
	VendorID          string           `json:"vendorId"`
	Approved          bool             `json:"approved"`
	ConfidenceScore   int              `json:"confidenceScore"`
	RawScore          int              `json:"rawScore"`
	Decision          string           `json:"decision"`
	RecommendedAmount *decimal.Decimal `json:"recommendedAmount,omitempty"`
	Reasons           []string         `json:"reasons"`
	Conditions        []string         `json:"conditions,omitempty"`
	CreatedAt         time.Time        `json:"createdAt"`
}
