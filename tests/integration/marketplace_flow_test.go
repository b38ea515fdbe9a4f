// Package integration provides integration testing for the marketplace backend API.
// This file exercises the full register -> publish -> purchase flow over HTTP
// against a real PostgreSQL database.
package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/modelmart/backend/internal/application/catalog"
	identityapp "github.com/modelmart/backend/internal/application/identity"
	ledgerapp "github.com/modelmart/backend/internal/application/ledger"
	infraauth "github.com/modelmart/backend/internal/infrastructure/auth"
	"github.com/modelmart/backend/internal/infrastructure/cache"
	"github.com/modelmart/backend/internal/infrastructure/config"
	"github.com/modelmart/backend/internal/infrastructure/persistence"
	"github.com/modelmart/backend/internal/infrastructure/storage"
	"github.com/modelmart/backend/internal/interfaces/http/handler"
	"github.com/modelmart/backend/internal/interfaces/http/middleware"
	"github.com/modelmart/backend/internal/interfaces/http/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// TestMain handles shared container cleanup after all tests run
func TestMain(m *testing.M) {
	code := m.Run()
	CleanupSharedContainer()
	if code != 0 {
		panic(fmt.Sprintf("tests failed with code %d", code))
	}
}

// MarketTestServer wraps the test database and HTTP engine for API testing
type MarketTestServer struct {
	DB     *TestDB
	Engine *gin.Engine
}

// NewMarketTestServer wires repositories, services and handlers against a
// fresh PostgreSQL container, mirroring the production route layout.
func NewMarketTestServer(t *testing.T) *MarketTestServer {
	t.Helper()

	gin.SetMode(gin.TestMode)
	testDB := NewTestDB(t)

	userRepo := persistence.NewGormUserRepository(testDB.DB)
	modelRepo := persistence.NewGormModelRepository(testDB.DB)
	purchaseRepo := persistence.NewGormPurchaseRepository(testDB.DB)

	jwtService := infraauth.NewJWTService(config.JWTConfig{
		Secret:                 "integration-test-secret-key-1234567890",
		RefreshSecret:          "integration-test-refresh-secret-key-42",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "modelmart-test",
		MaxRefreshCount:        10,
	})
	blacklist := infraauth.NewInMemoryTokenBlacklist()

	log := zap.NewNop()
	authService := identityapp.NewAuthService(userRepo, jwtService, blacklist, identityapp.DefaultAuthServiceConfig(), log)
	modelService := catalogapp.NewModelService(modelRepo, userRepo, storage.NewStubObjectStorage(), log)
	purchaseService := ledgerapp.NewPurchaseService(purchaseRepo, modelRepo, userRepo, log,
		ledgerapp.WithEntitlementCache(cache.NewInMemoryEntitlementCache()))

	authHandler := handler.NewAuthHandler(authService)
	modelHandler := handler.NewModelHandler(modelService)
	purchaseHandler := handler.NewPurchaseHandler(purchaseService)

	middleware.SetupValidator()

	engine := gin.New()
	engine.Use(middleware.RequestID())

	jwtMW := middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: blacklist,
		Logger:         log,
	})

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	authGroup := router.NewDomainGroup("auth", "/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)

	catalogGroup := router.NewDomainGroup("catalog", "/models")
	catalogGroup.GET("", modelHandler.List)
	catalogGroup.GET("/:id", modelHandler.Get)

	publishGroup := router.NewDomainGroup("publish", "/models")
	publishGroup.Use(jwtMW)
	publishGroup.POST("", modelHandler.Create)

	ledgerGroup := router.NewDomainGroup("ledger", "/purchases")
	ledgerGroup.Use(jwtMW)
	ledgerGroup.POST("", purchaseHandler.Record)
	ledgerGroup.GET("/status", purchaseHandler.Status)
	ledgerGroup.GET("/history", purchaseHandler.History)

	r.Register(authGroup).
		Register(catalogGroup).
		Register(publishGroup).
		Register(ledgerGroup)
	r.Setup()

	return &MarketTestServer{DB: testDB, Engine: engine}
}

func (s *MarketTestServer) request(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.Engine.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// registerAndLogin creates an account over HTTP and returns its access token and user ID.
func (s *MarketTestServer) registerAndLogin(t *testing.T, email, displayName string) (token, userID string) {
	t.Helper()

	w := s.request(t, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"email":        email,
		"password":     "Password123",
		"display_name": displayName,
	})
	require.Equal(t, http.StatusCreated, w.Code, "register failed: %s", w.Body.String())

	w = s.request(t, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"email":    email,
		"password": "Password123",
	})
	require.Equal(t, http.StatusOK, w.Code, "login failed: %s", w.Body.String())

	resp := decodeEnvelope(t, w)
	data := resp["data"].(map[string]any)
	tokenPair := data["token"].(map[string]any)
	user := data["user"].(map[string]any)
	return tokenPair["access_token"].(string), user["id"].(string)
}

func TestMarketplacePurchaseFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	srv := NewMarketTestServer(t)

	devToken, devID := srv.registerAndLogin(t, "developer@example.com", "Dev")
	buyerToken, _ := srv.registerAndLogin(t, "buyer@example.com", "Buyer")

	// Developer publishes a model
	w := srv.request(t, http.MethodPost, "/api/v1/models", devToken, map[string]any{
		"name":        "Sentiment Analyzer",
		"category":    "LLM",
		"price":       "49.99",
		"description": "Classifies sentiment of short text",
	})
	require.Equal(t, http.StatusCreated, w.Code, "create model failed: %s", w.Body.String())
	created := decodeEnvelope(t, w)["data"].(map[string]any)
	modelID := created["id"].(string)
	assert.Equal(t, devID, created["developer_id"])
	assert.Equal(t, "49.99", created["price"])

	// Anonymous listing sees the model
	w = srv.request(t, http.MethodGet, "/api/v1/models", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	listing := decodeEnvelope(t, w)["data"].(map[string]any)
	assert.Equal(t, float64(1), listing["total"])

	// Buyer has not purchased yet
	w = srv.request(t, http.MethodGet, "/api/v1/purchases/status?model_id="+modelID, buyerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	status := decodeEnvelope(t, w)["data"].(map[string]any)
	assert.Equal(t, false, status["purchased"])

	// Buyer purchases the model
	w = srv.request(t, http.MethodPost, "/api/v1/purchases", buyerToken, map[string]any{
		"model_id": modelID,
	})
	require.Equal(t, http.StatusCreated, w.Code, "purchase failed: %s", w.Body.String())
	purchase := decodeEnvelope(t, w)["data"].(map[string]any)
	assert.Equal(t, modelID, purchase["model_id"])
	assert.Equal(t, "Sentiment Analyzer", purchase["model_name"])

	// Status flips and history records it
	w = srv.request(t, http.MethodGet, "/api/v1/purchases/status?model_id="+modelID, buyerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	status = decodeEnvelope(t, w)["data"].(map[string]any)
	assert.Equal(t, true, status["purchased"])

	w = srv.request(t, http.MethodGet, "/api/v1/purchases/history", buyerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	history := decodeEnvelope(t, w)["data"].([]any)
	require.Len(t, history, 1)

	// Buying the same model twice is rejected
	w = srv.request(t, http.MethodPost, "/api/v1/purchases", buyerToken, map[string]any{
		"model_id": modelID,
	})
	require.Equal(t, http.StatusConflict, w.Code)
	errObj := decodeEnvelope(t, w)["error"].(map[string]any)
	assert.Equal(t, "DUPLICATE_PURCHASE", errObj["code"])

	// Developers cannot buy their own models
	w = srv.request(t, http.MethodPost, "/api/v1/purchases", devToken, map[string]any{
		"model_id": modelID,
	})
	require.Equal(t, http.StatusForbidden, w.Code)
	errObj = decodeEnvelope(t, w)["error"].(map[string]any)
	assert.Equal(t, "SELF_PURCHASE", errObj["code"])

	// Purchase count on the model was bumped
	w = srv.request(t, http.MethodGet, "/api/v1/models/"+modelID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	model := decodeEnvelope(t, w)["data"].(map[string]any)
	assert.Equal(t, float64(1), model["purchase_count"])
}

func TestMarketplaceAuthRequired(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	srv := NewMarketTestServer(t)

	w := srv.request(t, http.MethodPost, "/api/v1/purchases", "", map[string]any{
		"model_id": "5b2acf1e-8d7a-4b3f-9d55-0f2e6a1c9b77",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = srv.request(t, http.MethodPost, "/api/v1/models", "", map[string]any{
		"name":     "Unauthorized Model",
		"category": "LLM",
		"price":    "1.00",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
