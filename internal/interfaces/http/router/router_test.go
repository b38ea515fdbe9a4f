package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewRouter(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	assert.NotNil(t, r)
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)
}

func TestRouterWithAPIVersion(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithAPIVersion("v2"))

	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithAPIVersion("v1"))

	group := NewDomainGroup("catalog", "/models")
	group.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	r.Register(group)
	r.Setup()

	req := httptest.NewRequest("GET", "/api/v1/models/ping", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestRouterUse(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	r.Use(func(c *gin.Context) {
		c.Header("X-API-Middleware", "applied")
		c.Next()
	})

	group := NewDomainGroup("ledger", "/purchases")
	group.GET("/history", func(c *gin.Context) {
		c.String(http.StatusOK, "history")
	})

	r.Register(group).Setup()

	// Middleware runs for API routes
	req := httptest.NewRequest("GET", "/api/v1/purchases/history", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, "applied", w.Header().Get("X-API-Middleware"))

	// Routes outside the API prefix are untouched
	engine.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	req = httptest.NewRequest("GET", "/health", nil)
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("X-API-Middleware"))
}

func TestDomainGroup(t *testing.T) {
	t.Run("creates group with name and prefix", func(t *testing.T) {
		g := NewDomainGroup("catalog", "/models")
		assert.Equal(t, "catalog", g.Name())
		assert.Equal(t, "/models", g.Prefix())
	})

	t.Run("registers each method", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("catalog", "/models")
		g.GET("", func(c *gin.Context) { c.String(http.StatusOK, "list") }).
			POST("", func(c *gin.Context) { c.String(http.StatusCreated, "created") }).
			PUT("/:id", func(c *gin.Context) { c.String(http.StatusOK, "updated") }).
			DELETE("/:id", func(c *gin.Context) { c.String(http.StatusNoContent, "") })

		api := engine.Group("/api/v1")
		g.RegisterRoutes(api)

		tests := []struct {
			method string
			path   string
			status int
		}{
			{"GET", "/api/v1/models", http.StatusOK},
			{"POST", "/api/v1/models", http.StatusCreated},
			{"PUT", "/api/v1/models/123", http.StatusOK},
			{"DELETE", "/api/v1/models/123", http.StatusNoContent},
		}
		for _, tt := range tests {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code, "%s %s", tt.method, tt.path)
		}
	})

	t.Run("applies middleware", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("ledger", "/purchases")

		g.Use(func(c *gin.Context) {
			c.Header("X-Test-Middleware", "applied")
			c.Next()
		})

		g.GET("/status", func(c *gin.Context) {
			c.String(http.StatusOK, "ok")
		})

		api := engine.Group("/api/v1")
		g.RegisterRoutes(api)

		req := httptest.NewRequest("GET", "/api/v1/purchases/status", nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, "applied", w.Header().Get("X-Test-Middleware"))
	})

	t.Run("creates subgroups", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("identity", "/auth")

		sessions := g.Group("sessions", "/sessions")
		sessions.GET("", func(c *gin.Context) {
			c.String(http.StatusOK, "sessions list")
		})

		api := engine.Group("/api/v1")
		g.RegisterRoutes(api)

		req := httptest.NewRequest("GET", "/api/v1/auth/sessions", nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "sessions list", w.Body.String())
	})
}

func TestMultipleDomainGroups(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	catalog := NewDomainGroup("catalog", "/models")
	catalog.GET("", func(c *gin.Context) {
		c.String(http.StatusOK, "models")
	})

	ledger := NewDomainGroup("ledger", "/purchases")
	ledger.GET("/history", func(c *gin.Context) {
		c.String(http.StatusOK, "purchases")
	})

	r.Register(catalog).Register(ledger)
	r.Setup()

	req1 := httptest.NewRequest("GET", "/api/v1/models", nil)
	w1 := httptest.NewRecorder()
	engine.ServeHTTP(w1, req1)
	assert.Equal(t, http.StatusOK, w1.Code)
	assert.Equal(t, "models", w1.Body.String())

	req2 := httptest.NewRequest("GET", "/api/v1/purchases/history", nil)
	w2 := httptest.NewRecorder()
	engine.ServeHTTP(w2, req2)
	assert.Equal(t, http.StatusOK, w2.Code)
	assert.Equal(t, "purchases", w2.Body.String())
}
