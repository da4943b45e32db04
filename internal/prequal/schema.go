package prequal

// ProfileSchema is the JSON Schema a raw profile document must satisfy before
// DecodeProfile. Credit score has no range here since Evaluate clamps it.
// Extra properties are allowed so job variables can carry other fields.
var ProfileSchema = map[string]interface{}{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type":    "object",
	"required": []interface{}{
		"annualRevenue",
		"monthsInBusiness",
		"creditScore",
		"industry",
		"loanAmount",
		"collateralAvailable",
		"personalGuaranteeOffered",
	},
	"properties": map[string]interface{}{
		"annualRevenue": map[string]interface{}{
			"type":    "number",
			"minimum": 0,
		},
		"monthsInBusiness": map[string]interface{}{
			"type":    "integer",
			"minimum": 0,
		},
		"creditScore": map[string]interface{}{
			"type": "integer",
		},
		"industry": map[string]interface{}{
			"type":      "string",
			"minLength": 1,
		},
		"loanAmount": map[string]interface{}{
			"type":    "number",
			"minimum": 0,
		},
		"collateralAvailable": map[string]interface{}{
			"type": "string",
			"enum": []interface{}{"yes", "no", "partial"},
		},
		"personalGuaranteeOffered": map[string]interface{}{
			"type": "boolean",
		},
	},
}
