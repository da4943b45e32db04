// internal/workers/application/prequalify-applicant/models.go
package prequalifyapplicant

import "vendorhub-workers/internal/prequal"

type Input struct {
	ApplicationID string `json:"applicationId"`
	VendorID      string `json:"vendorId"`
	prequal.Profile
}

// Output carries amounts as plain JSON numbers so BPMN expressions can
// compare them.
type Output struct {
	Approved          bool              `json:"approved"`
	ConfidenceScore   int               `json:"confidenceScore"`
	Score             int               `json:"score"`
	Decision          string            `json:"decision"`
	Reasons           []string          `json:"reasons"`
	RecommendedAmount *float64          `json:"recommendedAmount,omitempty"`
	Conditions        []string          `json:"conditions,omitempty"`
	Breakdown         prequal.Breakdown `json:"breakdown"`
	Cached            bool              `json:"cached"`
}

func newOutput(result prequal.Result, cached bool) *Output {
	out := &Output{
		Approved:        result.Approved,
		ConfidenceScore: result.ConfidenceScore,
		Score:           result.Score,
		Decision:        string(result.Decision),
		Reasons:         result.Reasons,
		Conditions:      result.Conditions,
		Breakdown:       result.Breakdown,
		Cached:          cached,
	}
	if out.Reasons == nil {
		out.Reasons = []string{}
	}
	if result.RecommendedAmount != nil {
		amount := result.RecommendedAmount.Round(2).InexactFloat64()
		out.RecommendedAmount = &amount
	}
	return out
}
