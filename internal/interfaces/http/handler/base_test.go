package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modelmart/backend/internal/domain/shared"
)

func TestGetRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("from context", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		c.Set(RequestIDKey, "ctx-request-id")

		assert.Equal(t, "ctx-request-id", getRequestID(c))
	})

	t.Run("from header when context empty", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		c.Request.Header.Set(RequestIDKey, "header-request-id")

		assert.Equal(t, "header-request-id", getRequestID(c))
	})

	t.Run("empty when absent", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		assert.Equal(t, "", getRequestID(c))
	})
}

func TestBaseHandler_HandleError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := &BaseHandler{}

	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "duplicate purchase maps to conflict",
			err:            shared.ErrDuplicatePurchase,
			expectedStatus: http.StatusConflict,
			expectedCode:   "DUPLICATE_PURCHASE",
		},
		{
			name:           "self purchase maps to forbidden",
			err:            shared.ErrSelfPurchase,
			expectedStatus: http.StatusForbidden,
			expectedCode:   "SELF_PURCHASE",
		},
		{
			name:           "not found maps to 404",
			err:            shared.NewDomainError("NOT_FOUND", "Model not found"),
			expectedStatus: http.StatusNotFound,
			expectedCode:   "NOT_FOUND",
		},
		{
			name:           "invalid credentials maps to 401",
			err:            shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password"),
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   "INVALID_CREDENTIALS",
		},
		{
			name:           "unknown INVALID code maps to 400",
			err:            shared.NewDomainError("INVALID_PRICE", "Price cannot be negative"),
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "INVALID_PRICE",
		},
		{
			name:           "plain error maps to 500",
			err:            errors.New("database exploded"),
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   "ERR_INTERNAL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			h.HandleError(c, tt.err)

			assert.Equal(t, tt.expectedStatus, w.Code)

			var response map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.False(t, response["success"].(bool))

			errInfo := response["error"].(map[string]interface{})
			assert.Equal(t, tt.expectedCode, errInfo["code"])
		})
	}
}

func TestBaseHandler_HandleError_NilIsNoop(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := &BaseHandler{}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	h.HandleError(c, nil)

	assert.Empty(t, w.Body.String())
}

func TestBaseHandler_WrappedDomainError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := &BaseHandler{}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	wrapped := shared.NewDomainError("EMAIL_TAKEN", "An account with this email already exists")
	h.HandleError(c, errors.Join(errors.New("register failed"), wrapped))

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "EMAIL_TAKEN")
}
