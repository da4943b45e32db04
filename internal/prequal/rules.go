// internal/prequal/rules.go
package prequal

import "github.com/shopspring/decimal"

// Conditions attached by the individual factors.
const (
	ConditionAdditionalDocumentation = "Additional financial documentation required"
	ConditionCollateralOrCosigner    = "Collateral or co-signer required"
	ConditionPersonalGuarantee       = "Personal guarantee required"
	ConditionStrongCollateral        = "Strong collateral and personal guarantee required"
	ConditionHigherRate              = "Higher interest rate may apply"
	ConditionSignificantCollateral   = "Significant collateral required"
	ConditionCashFlowAnalysis        = "Detailed cash flow analysis required"
	ConditionStrongJustification     = "Strong justification and collateral required"
	ConditionIndustryRequirements    = "Industry-specific requirements may apply"
)

const (
	MinCreditScore = 300
	MaxCreditScore = 850
)

var (
	revenueStrong   = decimal.NewFromInt(500000)
	revenueGood     = decimal.NewFromInt(250000)
	revenueModerate = decimal.NewFromInt(100000)

	ratioConservative = decimal.RequireFromString("0.25")
	ratioReasonable   = decimal.RequireFromString("0.5")
	ratioHigh         = decimal.RequireFromString("0.75")
)

// outcome is what a single factor contributes. An empty reason or condition
// contributes nothing to the respective list.
type outcome struct {
	points    int
	reason    string
	condition string
}

func scoreRevenue(revenue decimal.Decimal) outcome {
	switch {
	case revenue.GreaterThanOrEqual(revenueStrong):
		return outcome{points: 30, reason: "Strong annual revenue"}
	case revenue.GreaterThanOrEqual(revenueGood):
		return outcome{points: 20, reason: "Good annual revenue"}
	case revenue.GreaterThanOrEqual(revenueModerate):
		return outcome{points: 10, reason: "Moderate annual revenue", condition: ConditionAdditionalDocumentation}
	default:
		return outcome{reason: "Low annual revenue", condition: ConditionCollateralOrCosigner}
	}
}

func scoreTimeInBusiness(months int) outcome {
	switch {
	case months >= 24:
		return outcome{points: 25, reason: "Established business history"}
	case months >= 12:
		return outcome{points: 15, reason: "Solid business history"}
	case months >= 6:
		return outcome{points: 8, reason: "Limited business history", condition: ConditionPersonalGuarantee}
	default:
		return outcome{reason: "Very limited business history", condition: ConditionStrongCollateral}
	}
}

func scoreCredit(score int) outcome {
	switch score = clamp(score, MinCreditScore, MaxCreditScore); {
	case score >= 750:
		return outcome{points: 25, reason: "Excellent credit score"}
	case score >= 700:
		return outcome{points: 20, reason: "Good credit score"}
	case score >= 650:
		return outcome{points: 15, reason: "Fair credit score"}
	case score >= 600:
		return outcome{points: 10, reason: "Below average credit score", condition: ConditionHigherRate}
	default:
		return outcome{reason: "Poor credit score", condition: ConditionSignificantCollateral}
	}
}

// scoreLoanToRevenue compares loan/revenue against each tier as
// loan <= revenue*t so no division happens. ok is false when the ratio is
// undefined because revenue or loan is not positive.
func scoreLoanToRevenue(loan, revenue decimal.Decimal) (o outcome, ok bool) {
	if !revenue.IsPositive() || !loan.IsPositive() {
		return outcome{}, false
	}
	switch {
	case loan.LessThanOrEqual(revenue.Mul(ratioConservative)):
		return outcome{points: 20, reason: "Conservative loan-to-revenue ratio"}, true
	case loan.LessThanOrEqual(revenue.Mul(ratioReasonable)):
		return outcome{points: 15, reason: "Reasonable loan-to-revenue ratio"}, true
	case loan.LessThanOrEqual(revenue.Mul(ratioHigh)):
		return outcome{points: 10, reason: "High loan-to-revenue ratio", condition: ConditionCashFlowAnalysis}, true
	default:
		return outcome{reason: "Very high loan-to-revenue ratio", condition: ConditionStrongJustification}, true
	}
}

func scoreIndustry(industry Industry) outcome {
	switch industry.Risk() {
	case RiskLow:
		return outcome{points: 5, reason: "Low-risk industry"}
	case RiskHigh:
		return outcome{points: -5, reason: "Higher-risk industry", condition: ConditionIndustryRequirements}
	default:
		return outcome{}
	}
}

func scoreCollateral(c Collateral) outcome {
	if c == CollateralYes {
		return outcome{points: 5, reason: "Collateral available"}
	}
	return outcome{}
}

func scoreGuarantee(offered bool) outcome {
	if offered {
		return outcome{points: 5, reason: "Personal guarantee provided"}
	}
	return outcome{}
}

func clamp(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
