// Package prequal scores an applicant's business and financial profile into a
// pre-qualification decision. Evaluate is a pure function: it performs no I/O,
// keeps no state and is safe for concurrent use.
package prequal

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	// ApprovalThreshold applies to the raw score, before clamping.
	ApprovalThreshold = 60
	// ConditionalThreshold is the lowest raw score that still gets a
	// reduced amount offer.
	ConditionalThreshold = 40
	MaxReasons           = 5

	// RulesVersion identifies the factor tables and thresholds. Bump it
	// whenever either changes so cached results from older rules are not
	// served.
	RulesVersion = "v1"
)

var reducedAmountFactor = decimal.RequireFromString("0.7")

// Evaluate scores a profile. It is total over its input: zero or negative
// amounts, out-of-range credit scores and unknown industries all produce a
// result rather than an error.
func Evaluate(p Profile) Result {
	p = p.Normalized()

	var (
		b          Breakdown
		reasons    []string
		conditions []string
	)
	apply := func(o outcome) int {
		if o.reason != "" {
			reasons = append(reasons, o.reason)
		}
		if o.condition != "" {
			conditions = append(conditions, o.condition)
		}
		return o.points
	}

	b.Revenue = apply(scoreRevenue(p.AnnualRevenue))
	b.TimeInBusiness = apply(scoreTimeInBusiness(p.MonthsInBusiness))
	b.Credit = apply(scoreCredit(p.CreditScore))
	if o, ok := scoreLoanToRevenue(p.LoanAmount, p.AnnualRevenue); ok {
		b.LoanToRevenue = apply(o)
	}
	b.Industry = apply(scoreIndustry(p.Industry))
	b.Collateral = apply(scoreCollateral(p.CollateralAvailable))
	b.Guarantee = apply(scoreGuarantee(p.PersonalGuaranteeOffered))

	score := b.Total()
	result := Result{
		Approved:        score >= ApprovalThreshold,
		ConfidenceScore: clamp(score, 0, 100),
		Score:           score,
		Decision:        decide(score),
		Breakdown:       b,
	}

	// No amount is offered against a zero or negative request.
	if p.LoanAmount.IsPositive() {
		switch result.Decision {
		case DecisionApproved:
			amount := p.LoanAmount
			result.RecommendedAmount = &amount
		case DecisionConditional:
			amount := p.LoanAmount.Mul(reducedAmountFactor)
			result.RecommendedAmount = &amount
			conditions = append(conditions, ReducedAmountCondition(amount))
		}
	}

	if len(reasons) > MaxReasons {
		reasons = reasons[:MaxReasons]
	}
	result.Reasons = reasons
	if len(conditions) > 0 {
		result.Conditions = conditions
	}
	return result
}

// ReducedAmountCondition formats the condition offered with a reduced amount.
func ReducedAmountCondition(amount decimal.Decimal) string {
	return fmt.Sprintf("Consider a reduced loan amount of $%s", amount.StringFixed(2))
}

func decide(score int) Decision {
	switch {
	case score >= ApprovalThreshold:
		return DecisionApproved
	case score >= ConditionalThreshold:
		return DecisionConditional
	default:
		return DecisionDeclined
	}
}
