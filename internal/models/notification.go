package models

type NotificationTemplate struct {
	Type    string `json:"type"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	// SMS marks templates that are also delivered as a text message.
	SMS bool `json:"sms"`
}
