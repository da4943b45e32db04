package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"vendorId", "amount"},
	"properties": map[string]interface{}{
		"vendorId": map[string]interface{}{"type": "string", "minLength": 1},
		"amount":   map[string]interface{}{"type": "number", "minimum": 0},
		"tier":     map[string]interface{}{"type": "string", "enum": []interface{}{"basic", "pro"}},
	},
}

func TestSchema_Validate(t *testing.T) {
	schema := MustCompile(testSchema)

	tests := []struct {
		name           string
		document       string
		expectedValid  bool
		expectedFields []string
		expectedCodes  []string
	}{
		{
			name:          "valid document",
			document:      `{"vendorId": "v-1", "amount": 10.5, "tier": "pro"}`,
			expectedValid: true,
		},
		{
			name:           "missing required field",
			document:       `{"vendorId": "v-1"}`,
			expectedValid:  false,
			expectedFields: []string{"amount"},
			expectedCodes:  []string{"REQUIRED"},
		},
		{
			name:           "wrong type",
			document:       `{"vendorId": 12, "amount": 1}`,
			expectedValid:  false,
			expectedFields: []string{"vendorId"},
			expectedCodes:  []string{"INVALID_TYPE"},
		},
		{
			name:           "below minimum",
			document:       `{"vendorId": "v-1", "amount": -1}`,
			expectedValid:  false,
			expectedFields: []string{"amount"},
			expectedCodes:  []string{"NUMBER_GTE"},
		},
		{
			name:           "not in enum",
			document:       `{"vendorId": "v-1", "amount": 1, "tier": "gold"}`,
			expectedValid:  false,
			expectedFields: []string{"tier"},
			expectedCodes:  []string{"ENUM"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := schema.Validate([]byte(tt.document))
			require.NoError(t, err)

			assert.Equal(t, tt.expectedValid, result.Valid)
			for _, field := range tt.expectedFields {
				assert.True(t, result.HasErrors(field), "expected error on %s, got %v", field, result.Errors)
			}
			for i, code := range tt.expectedCodes {
				assert.Equal(t, code, result.Errors[i].Code)
			}
			if tt.expectedValid {
				assert.Empty(t, result.Errors)
			}
		})
	}
}

func TestSchema_Validate_MalformedJSON(t *testing.T) {
	schema := MustCompile(testSchema)

	_, err := schema.Validate([]byte(`{"vendorId": `))
	assert.Error(t, err)
}

func TestValidateJSON(t *testing.T) {
	result, err := ValidateJSON(testSchema, []byte(`{}`))
	require.NoError(t, err)

	assert.False(t, result.Valid)
	assert.Len(t, result.Errors, 2)
	assert.Len(t, result.GetErrorMessages(), 2)
}

func TestCompile_InvalidSchema(t *testing.T) {
	_, err := Compile(map[string]interface{}{"type": 42})
	assert.Error(t, err)

	assert.Panics(t, func() {
		MustCompile(map[string]interface{}{"type": 42})
	})
}

func TestValidationResult_GetErrorsForField(t *testing.T) {
	vr := &ValidationResult{
		Errors: []ValidationError{
			{Field: "profile.industry", Message: "bad"},
			{Field: "profile", Message: "bad"},
			{Field: "profileId", Message: "bad"},
			{Field: "items[0]", Message: "bad"},
		},
	}

	assert.Len(t, vr.GetErrorsForField("profile"), 2)
	assert.Len(t, vr.GetErrorsForField("items"), 1)
	assert.False(t, vr.HasErrors("industry"))
}

func TestValidateEmailAndPhone(t *testing.T) {
	assert.True(t, ValidateEmail("owner@acme-supply.com"))
	assert.False(t, ValidateEmail("owner@"))
	assert.True(t, ValidatePhone("+1 (555) 123-4567"))
	assert.False(t, ValidatePhone("12345"))
}
