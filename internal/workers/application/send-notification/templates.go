// internal/workers/application/send-notification/templates.go
package sendnotification

import (
	"fmt"
	"strings"

	"vendorhub-workers/internal/models"
)

var defaultTemplates = map[string]models.NotificationTemplate{
	TypePrequalApproved: {
		Type:    TypePrequalApproved,
		Subject: "You're pre-qualified",
		Body:    "Good news! Application {{applicationId}} is pre-qualified for ${{recommendedAmount}} (confidence {{confidenceScore}}/100).",
		SMS:     true,
	},
	TypePrequalConditional: {
		Type:    TypePrequalConditional,
		Subject: "Your pre-qualification needs a few more details",
		Body:    "Application {{applicationId}} may qualify for ${{recommendedAmount}} with conditions. Confidence {{confidenceScore}}/100.",
	},
	TypePrequalDeclined: {
		Type:    TypePrequalDeclined,
		Subject: "Your pre-qualification result",
		Body:    "We could not pre-qualify application {{applicationId}} at this time. Confidence {{confidenceScore}}/100.",
	},
	TypeNewPrequalification: {
		Type:    TypeNewPrequalification,
		Subject: "New pre-qualified applicant",
		Body:    "Application {{applicationId}} finished pre-qualification with confidence {{confidenceScore}}/100.",
		SMS:     true,
	},
}

// renderTemplate substitutes {{key}} placeholders. Placeholders without a
// value render empty.
func renderTemplate(tmpl string, data map[string]interface{}) string {
	result := tmpl

	for k, v := range data {
		placeholder := "{{" + k + "}}"
		value := ""
		switch t := v.(type) {
		case nil:
		case string:
			value = t
		case int:
			value = fmt.Sprintf("%d", t)
		default:
			value = fmt.Sprintf("%v", t)
		}
		result = strings.ReplaceAll(result, placeholder, value)
	}

	for {
		start := strings.Index(result, "{{")
		if start == -1 {
			break
		}
		end := strings.Index(result[start:], "}}")
		if end == -1 {
			break
		}
		end += start + 2
		result = result[:start] + result[end:]
	}

	return result
}
