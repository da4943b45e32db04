// internal/workers/application/send-notification/handler_test.go
package sendnotification

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	apperrors "vendorhub-workers/internal/common/errors"
	"vendorhub-workers/internal/common/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Implementations
// ==========================

type MockSESService struct {
	SendEmailFunc func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
	calls         int
}

func (m *MockSESService) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	m.calls++
	if m.SendEmailFunc == nil {
		return &ses.SendEmailOutput{}, nil
	}
	return m.SendEmailFunc(ctx, params, optFns...)
}

type MockSNSService struct {
	PublishFunc func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
	calls       int
}

func (m *MockSNSService) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	m.calls++
	if m.PublishFunc == nil {
		return &sns.PublishOutput{}, nil
	}
	return m.PublishFunc(ctx, params, optFns...)
}

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		EmailEnabled: true,
		SMSEnabled:   true,
		FromEmail:    "noreply@vendorhub.example",
		Timeout:      30 * time.Second,
	}
}

func createTestInput(notificationType string) *Input {
	amount := decimal.RequireFromString("105000")
	return &Input{
		RecipientID:       "applicant-001",
		RecipientType:     RecipientTypeApplicant,
		NotificationType:  notificationType,
		ApplicationID:     "app-001",
		ConfidenceScore:   72,
		RecommendedAmount: &amount,
		Metadata: map[string]interface{}{
			"vendorName": "Acme Equipment",
		},
	}
}

func expectContact(mock sqlmock.Sqlmock, table, id, email string, phone interface{}) {
	mock.ExpectQuery(`SELECT email, phone FROM ` + table + ` WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"email", "phone"}).AddRow(email, phone))
}

type testLogger struct {
	t *testing.T
}

func (tl *testLogger) Debug(msg string, fields map[string]interface{}) {
	tl.t.Logf("DEBUG: %s %v", msg, fields)
}

func (tl *testLogger) Info(msg string, fields map[string]interface{}) {
	tl.t.Logf("INFO: %s %v", msg, fields)
}

func (tl *testLogger) Warn(msg string, fields map[string]interface{}) {
	tl.t.Logf("WARN: %s %v", msg, fields)
}

func (tl *testLogger) Error(msg string, fields map[string]interface{}) {
	tl.t.Logf("ERROR: %s %v", msg, fields)
}

func (tl *testLogger) WithFields(fields map[string]interface{}) logger.Logger {
	return tl
}

func (tl *testLogger) WithError(err error) logger.Logger {
	return tl.WithFields(map[string]interface{}{"error": err})
}

func (tl *testLogger) With(fields map[string]interface{}) logger.Logger {
	return tl
}

func newTestLogger(t *testing.T) logger.Logger {
	return &testLogger{t: t}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	tests := []struct {
		name             string
		notificationType string
		emailEnabled     bool
		smsEnabled       bool
		expectedStatus   string
		expectedEmails   int
		expectedSMS      int
	}{
		{
			name:             "approved sends email and SMS",
			notificationType: TypePrequalApproved,
			emailEnabled:     true,
			smsEnabled:       true,
			expectedStatus:   StatusSent,
			expectedEmails:   1,
			expectedSMS:      1,
		},
		{
			name:             "conditional is email only",
			notificationType: TypePrequalConditional,
			emailEnabled:     true,
			smsEnabled:       true,
			expectedStatus:   StatusSent,
			expectedEmails:   1,
		},
		{
			name:             "declined is email only",
			notificationType: TypePrequalDeclined,
			emailEnabled:     true,
			smsEnabled:       true,
			expectedStatus:   StatusSent,
			expectedEmails:   1,
		},
		{
			name:             "SMS alone for approved",
			notificationType: TypePrequalApproved,
			smsEnabled:       true,
			expectedStatus:   StatusSent,
			expectedSMS:      1,
		},
		{
			name:             "no SMS for declined when email disabled",
			notificationType: TypePrequalDeclined,
			smsEnabled:       true,
			expectedStatus:   StatusDisabled,
		},
		{
			name:             "all channels disabled",
			notificationType: TypePrequalApproved,
			expectedStatus:   StatusDisabled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			expectContact(mock, "applicants", "applicant-001", "owner@acme.example", "+15555550100")

			mockSES := &MockSESService{
				SendEmailFunc: func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
					assert.Equal(t, "owner@acme.example", params.Destination.ToAddresses[0])
					assert.Equal(t, "noreply@vendorhub.example", *params.Source)
					return &ses.SendEmailOutput{}, nil
				},
			}
			mockSNS := &MockSNSService{
				PublishFunc: func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
					assert.Equal(t, "+15555550100", *params.PhoneNumber)
					return &sns.PublishOutput{}, nil
				},
			}

			config := createTestConfig()
			config.EmailEnabled = tt.emailEnabled
			config.SMSEnabled = tt.smsEnabled
			handler := NewHandler(config, db, mockSES, mockSNS, newTestLogger(t))

			output, err := handler.Execute(context.Background(), createTestInput(tt.notificationType))

			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, output.Status)
			assert.NotEmpty(t, output.NotificationID)
			_, err = time.Parse(time.RFC3339, output.SentAt)
			assert.NoError(t, err)
			assert.Equal(t, tt.expectedEmails, mockSES.calls)
			assert.Equal(t, tt.expectedSMS, mockSNS.calls)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestHandler_Execute_RendersDecisionDetails(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectContact(mock, "applicants", "applicant-001", "owner@acme.example", nil)

	var subject, body string
	mockSES := &MockSESService{
		SendEmailFunc: func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			subject = *params.Message.Subject.Data
			body = *params.Message.Body.Text.Data
			return &ses.SendEmailOutput{}, nil
		},
	}
	mockSNS := &MockSNSService{}

	handler := NewHandler(createTestConfig(), db, mockSES, mockSNS, newTestLogger(t))

	output, err := handler.Execute(context.Background(), createTestInput(TypePrequalApproved))

	require.NoError(t, err)
	assert.Equal(t, StatusSent, output.Status)
	assert.Equal(t, "You're pre-qualified", subject)
	assert.Contains(t, body, "app-001")
	assert.Contains(t, body, "$105000.00")
	assert.Contains(t, body, "72/100")
	assert.NotContains(t, body, "{{")
	// NULL phone means no SMS even for approved
	assert.Equal(t, 0, mockSNS.calls)
}

func TestHandler_Execute_VendorRecipient(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectContact(mock, "vendors", "vendor-001", "sales@acme.example", "+15555550199")

	mockSES := &MockSESService{}
	mockSNS := &MockSNSService{}
	handler := NewHandler(createTestConfig(), db, mockSES, mockSNS, newTestLogger(t))

	input := createTestInput(TypeNewPrequalification)
	input.RecipientID = "vendor-001"
	input.RecipientType = RecipientTypeVendor

	output, err := handler.Execute(context.Background(), input)

	require.NoError(t, err)
	assert.Equal(t, StatusSent, output.Status)
	assert.Equal(t, 1, mockSES.calls)
	assert.Equal(t, 1, mockSNS.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_RecipientNotFound(t *testing.T) {
	tests := []struct {
		name          string
		recipientType string
		setupMock     func(mock sqlmock.Sqlmock)
	}{
		{
			name:          "no applicant row",
			recipientType: RecipientTypeApplicant,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT email, phone FROM applicants`).
					WithArgs("applicant-001").
					WillReturnError(sql.ErrNoRows)
			},
		},
		{
			name:          "unknown recipient type",
			recipientType: "franchisor",
			setupMock:     func(mock sqlmock.Sqlmock) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()
			tt.setupMock(mock)

			mockSES := &MockSESService{}
			handler := NewHandler(createTestConfig(), db, mockSES, &MockSNSService{}, newTestLogger(t))

			input := createTestInput(TypePrequalDeclined)
			input.RecipientType = tt.recipientType

			output, err := handler.Execute(context.Background(), input)

			require.NoError(t, err)
			assert.Equal(t, StatusDisabled, output.Status)
			assert.Equal(t, 0, mockSES.calls)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestHandler_Execute_MalformedContact(t *testing.T) {
	tests := []struct {
		name           string
		email          string
		phone          string
		expectedStatus string
		expectedEmails int
		expectedSMS    int
	}{
		{
			name:           "malformed email still texts",
			email:          "owner@",
			phone:          "+15555550100",
			expectedStatus: StatusSent,
			expectedEmails: 0,
			expectedSMS:    1,
		},
		{
			name:           "short phone still emails",
			email:          "owner@acme.example",
			phone:          "12345",
			expectedStatus: StatusSent,
			expectedEmails: 1,
			expectedSMS:    0,
		},
		{
			name:           "nothing usable",
			email:          "not-an-email",
			phone:          "555",
			expectedStatus: StatusDisabled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()
			expectContact(mock, "applicants", "applicant-001", tt.email, tt.phone)

			mockSES := &MockSESService{}
			mockSNS := &MockSNSService{}
			handler := NewHandler(createTestConfig(), db, mockSES, mockSNS, newTestLogger(t))

			output, err := handler.Execute(context.Background(), createTestInput(TypePrequalApproved))

			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, output.Status)
			assert.Equal(t, tt.expectedEmails, mockSES.calls)
			assert.Equal(t, tt.expectedSMS, mockSNS.calls)
		})
	}
}

func TestHandler_Execute_ChannelFailures(t *testing.T) {
	tests := []struct {
		name    string
		sesErr  error
		snsErr  error
		smsOnly bool
	}{
		{name: "email failure", sesErr: errors.New("MessageRejected")},
		{name: "SMS failure", snsErr: errors.New("Throttling"), smsOnly: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			expectContact(mock, "applicants", "applicant-001", "owner@acme.example", "+15555550100")

			mockSES := &MockSESService{
				SendEmailFunc: func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
					return nil, tt.sesErr
				},
			}
			mockSNS := &MockSNSService{
				PublishFunc: func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
					return nil, tt.snsErr
				},
			}

			config := createTestConfig()
			config.EmailEnabled = !tt.smsOnly
			handler := NewHandler(config, db, mockSES, mockSNS, newTestLogger(t))

			output, err := handler.Execute(context.Background(), createTestInput(TypePrequalApproved))

			require.NoError(t, err)
			assert.Equal(t, StatusFailed, output.Status)
			assert.NotEmpty(t, output.NotificationID)
		})
	}
}

func TestHandler_Execute_UnknownNotificationType(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	handler := NewHandler(createTestConfig(), db, &MockSESService{}, &MockSNSService{}, newTestLogger(t))

	output, err := handler.Execute(context.Background(), createTestInput("new_application"))

	assert.Nil(t, output)
	require.Error(t, err)
	stdErr := apperrors.Normalize(err)
	assert.Equal(t, apperrors.ErrCodeNotificationSendFailed, stdErr.Code)
	assert.False(t, stdErr.Retryable)
	assert.Equal(t, 0, apperrors.ConvertToBPMNError(stdErr).Retries)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_SendSMS_SenderID(t *testing.T) {
	var attrs int
	mockSNS := &MockSNSService{
		PublishFunc: func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
			attrs = len(params.MessageAttributes)
			assert.Equal(t, "VENDORHUB", *params.MessageAttributes["AWS.SNS.SMS.SenderID"].StringValue)
			return &sns.PublishOutput{}, nil
		},
	}

	config := createTestConfig()
	config.SenderID = "VENDORHUB"
	handler := NewHandler(config, nil, &MockSESService{}, mockSNS, newTestLogger(t))

	require.NoError(t, handler.sendSMS(context.Background(), "+15555550100", "hello"))
	assert.Equal(t, 1, attrs)
}

// ==========================
// Template Tests
// ==========================

func TestHandler_RenderTemplate(t *testing.T) {
	tests := []struct {
		name     string
		template string
		data     map[string]interface{}
		expected string
	}{
		{
			name:     "string and int values",
			template: "Application {{applicationId}} scored {{confidenceScore}}",
			data:     map[string]interface{}{"applicationId": "app-1", "confidenceScore": 64},
			expected: "Application app-1 scored 64",
		},
		{
			name:     "missing placeholder renders empty",
			template: "Amount: ${{recommendedAmount}}!",
			data:     map[string]interface{}{},
			expected: "Amount: $!",
		},
		{
			name:     "nil value renders empty",
			template: "Vendor {{vendorName}}.",
			data:     map[string]interface{}{"vendorName": nil},
			expected: "Vendor .",
		},
		{
			name:     "float metadata",
			template: "Rate {{rate}}",
			data:     map[string]interface{}{"rate": 7.5},
			expected: "Rate 7.5",
		},
		{
			name:     "unterminated placeholder kept",
			template: "Hello {{name",
			data:     map[string]interface{}{},
			expected: "Hello {{name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, renderTemplate(tt.template, tt.data))
		})
	}
}

func TestDefaultTemplates(t *testing.T) {
	for _, notificationType := range []string{
		TypePrequalApproved, TypePrequalConditional, TypePrequalDeclined, TypeNewPrequalification,
	} {
		tmpl, ok := defaultTemplates[notificationType]
		require.True(t, ok, notificationType)
		assert.Equal(t, notificationType, tmpl.Type)
		assert.NotEmpty(t, tmpl.Subject)
		assert.True(t, strings.Contains(tmpl.Body, "{{applicationId}}"), notificationType)
	}

	assert.True(t, defaultTemplates[TypePrequalApproved].SMS)
	assert.True(t, defaultTemplates[TypeNewPrequalification].SMS)
	assert.False(t, defaultTemplates[TypePrequalConditional].SMS)
	assert.False(t, defaultTemplates[TypePrequalDeclined].SMS)
}
