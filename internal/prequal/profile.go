// internal/prequal/profile.go
package prequal

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Industry is a normalized industry tag such as "professional_services".
type Industry string

const (
	IndustryHealthcare           Industry = "healthcare"
	IndustryTechnology           Industry = "technology"
	IndustryProfessionalServices Industry = "professional_services"
	IndustryRestaurant           Industry = "restaurant"
	IndustryRetail               Industry = "retail"
	IndustryConstruction         Industry = "construction"
	IndustryManufacturing        Industry = "manufacturing"
	IndustryTransportation       Industry = "transportation"
	IndustryRealEstate           Industry = "real_estate"
	IndustryAgriculture          Industry = "agriculture"
	IndustryOther                Industry = "other"
)

// Risk classifies an industry for the score adjustment.
type Risk int

const (
	RiskNeutral Risk = iota
	RiskLow
	RiskHigh
)

var industryRisk = map[Industry]Risk{
	IndustryHealthcare:           RiskLow,
	IndustryTechnology:           RiskLow,
	IndustryProfessionalServices: RiskLow,
	IndustryRestaurant:           RiskHigh,
	IndustryRetail:               RiskHigh,
	IndustryConstruction:         RiskHigh,
}

// NormalizeIndustry lower-cases and trims a raw tag and maps spaces and
// hyphens to underscores, so "Professional Services" and
// "professional-services" both become "professional_services".
func NormalizeIndustry(raw string) Industry {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.NewReplacer(" ", "_", "-", "_").Replace(s)
	return Industry(s)
}

// Risk reports the catalog risk class. Tags outside the catalog are neutral.
func (i Industry) Risk() Risk {
	return industryRisk[NormalizeIndustry(string(i))]
}

// Collateral is the applicant's collateral answer.
type Collateral string

const (
	CollateralYes     Collateral = "yes"
	CollateralNo      Collateral = "no"
	CollateralPartial Collateral = "partial"
)

// Profile is the business and financial data an applicant submits.
type Profile struct {
	AnnualRevenue            decimal.Decimal `json:"annualRevenue"`
	MonthsInBusiness         int             `json:"monthsInBusiness"`
	CreditScore              int             `json:"creditScore"`
	Industry                 Industry        `json:"industry"`
	LoanAmount               decimal.Decimal `json:"loanAmount"`
	CollateralAvailable      Collateral      `json:"collateralAvailable"`
	PersonalGuaranteeOffered bool            `json:"personalGuaranteeOffered"`
}

// Normalized returns a copy with the industry tag and collateral answer
// normalized. Evaluate normalizes on its own; callers use this when the
// profile is used as a lookup key.
func (p Profile) Normalized() Profile {
	p.Industry = NormalizeIndustry(string(p.Industry))
	p.CollateralAvailable = Collateral(strings.ToLower(strings.TrimSpace(string(p.CollateralAvailable))))
	return p
}

// DecodeProfile decodes a JSON profile document. The document is expected to
// have passed ProfileSchema already.
func DecodeProfile(data []byte) (Profile, error) {
	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return Profile{}, err
	}
	return p.Normalized(), nil
}

// Decision is the three-way outcome derived from the raw score.
type Decision string

const (
	DecisionApproved    Decision = "approved"
	DecisionConditional Decision = "conditional"
	DecisionDeclined    Decision = "declined"
)

// Breakdown holds the points each factor contributed.
type Breakdown struct {
	Revenue        int `json:"revenue"`
	TimeInBusiness int `json:"timeInBusiness"`
	Credit         int `json:"credit"`
	LoanToRevenue  int `json:"loanToRevenue"`
	Industry       int `json:"industry"`
	Collateral     int `json:"collateral"`
	Guarantee      int `json:"guarantee"`
}

// Total sums all factor points.
func (b Breakdown) Total() int {
	return b.Revenue + b.TimeInBusiness + b.Credit + b.LoanToRevenue + b.Industry + b.Collateral + b.Guarantee
}

// Result is the outcome of an evaluation.
type Result struct {
	Approved          bool             `json:"approved"`
	ConfidenceScore   int              `json:"confidenceScore"`
	Score             int              `json:"score"`
	Decision          Decision         `json:"decision"`
	Reasons           []string         `json:"reasons"`
	RecommendedAmount *decimal.Decimal `json:"recommendedAmount,omitempty"`
	Conditions        []string         `json:"conditions,omitempty"`
	Breakdown         Breakdown        `json:"breakdown"`
}
