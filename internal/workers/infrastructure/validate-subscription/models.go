// internal/workers/infrastructure/validate-subscription/models.go
package validatesubscription

type Input struct {
	VendorID string `json:"vendorId"`
}

type Output struct {
	IsValid   bool   `json:"isValid"`
	TierLevel string `json:"tierLevel"`
	IsDemo    bool   `json:"isDemo"`
}
