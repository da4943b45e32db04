package models

import "time"

// Subscription is a vendor's plan as stored in vendor_subscriptions.
type Subscription struct {
	VendorID         string    `json:"vendorId"`
	Tier             string    `json:"tier"`
	Status           string    `json:"status"`
	CurrentPeriodEnd time.Time `json:"currentPeriodEnd"`
}

const (
	TierBasic   = "basic"
	TierPro     = "pro"
	TierPremium = "premium"
	TierDemo    = "demo"

	SubscriptionActive   = "active"
	SubscriptionTrialing = "trialing"
)
