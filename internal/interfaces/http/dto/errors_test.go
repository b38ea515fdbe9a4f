package dto

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		expected int
	}{
		{"validation error", ErrCodeValidation, http.StatusBadRequest},
		{"unauthorized", ErrCodeUnauthorized, http.StatusUnauthorized},
		{"not found", ErrCodeNotFound, http.StatusNotFound},
		{"rate limited", ErrCodeRateLimited, http.StatusTooManyRequests},
		{"internal", ErrCodeInternal, http.StatusInternalServerError},

		{"duplicate purchase", "DUPLICATE_PURCHASE", http.StatusConflict},
		{"self purchase", "SELF_PURCHASE", http.StatusForbidden},
		{"email taken", "EMAIL_TAKEN", http.StatusConflict},
		{"invalid credentials", "INVALID_CREDENTIALS", http.StatusUnauthorized},
		{"account locked", "ACCOUNT_LOCKED", http.StatusForbidden},
		{"token expired", "TOKEN_EXPIRED", http.StatusUnauthorized},
		{"token max refresh", "TOKEN_MAX_REFRESH", http.StatusUnauthorized},
		{"developer not found", "DEVELOPER_NOT_FOUND", http.StatusNotFound},
		{"domain not found", "NOT_FOUND", http.StatusNotFound},
		{"invalid state", "INVALID_STATE", http.StatusUnprocessableEntity},

		{"unknown invalid prefix", "INVALID_PRICE", http.StatusBadRequest},
		{"unknown code", "SOMETHING_ELSE", http.StatusInternalServerError},
		{"empty code", "", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNewErrorResponse(t *testing.T) {
	resp := NewErrorResponse("NOT_FOUND", "model missing")
	assert.False(t, resp.Success)
	assert.Nil(t, resp.Data)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
	assert.Equal(t, "model missing", resp.Error.Message)
}

func TestNewValidationErrorResponse(t *testing.T) {
	details := []ValidationDetail{
		{Field: "email", Message: "invalid format"},
		{Field: "password", Message: "too short"},
	}
	resp := NewValidationErrorResponse("validation failed", "req-123", details)
	assert.False(t, resp.Success)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "req-123", resp.Error.RequestID)
	assert.Len(t, resp.Error.Details, 2)
	assert.Equal(t, "email", resp.Error.Details[0].Field)
}

func TestNewSuccessResponse(t *testing.T) {
	resp := NewSuccessResponse(map[string]string{"id": "abc"})
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Error)
	assert.NotNil(t, resp.Data)
}
