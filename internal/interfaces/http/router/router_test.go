package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/erp/ledgercore/internal/infrastructure/cache"
	"github.com/erp/ledgercore/internal/infrastructure/config"
	"github.com/erp/ledgercore/internal/interfaces/http/handler"
	"github.com/erp/ledgercore/internal/interfaces/http/middleware"
	"github.com/erp/ledgercore/tests/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"
)

type echoRoutes struct{ calls int }

func (e *echoRoutes) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/echo", func(c *gin.Context) {
		e.calls++
		c.Status(http.StatusCreated)
	})
	rg.GET("/panic", func(c *gin.Context) { panic("boom") })
}

func newTestEngine(t *testing.T) (*gin.Engine, *echoRoutes) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = store.Close() })

	engine, err := NewEngine(EngineOptions{
		Logger:         zap.NewNop(),
		HTTP:           config.HTTPConfig{MaxBodySize: 1 << 10},
		ServiceName:    "ledgercore-test",
		Meter:          noop.NewMeterProvider().Meter("test"),
		Profiling:      true,
		Idempotency:    store,
		IdempotencyTTL: time.Minute,
	})
	require.NoError(t, err)

	echo := &echoRoutes{}
	NewRouter(engine).
		RegisterRoot(handler.NewHealthHandler(testutil.NewSQLiteDB(t), "ledgercore", "test")).
		Register(echo).
		Setup()
	return engine, echo
}

func TestRouter_HealthRoutes(t *testing.T) {
	engine, _ := newTestEngine(t)

	for _, path := range []string{"/health/live", "/health/ready", "/health/info"} {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader), path)
	}

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health/live", nil))
	assert.Equal(t, http.StatusNotFound, w.Code, "health checks live outside the versioned API")
}

func TestRouter_MiddlewareStack(t *testing.T) {
	engine, echo := newTestEngine(t)

	post := func(body, key, actor string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/echo", strings.NewReader(body))
		if key != "" {
			req.Header.Set(middleware.IdempotencyKeyHeader, key)
		}
		if actor != "" {
			req.Header.Set(middleware.ActorHeader, actor)
		}
		engine.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusCreated, post("{}", "once", ""))
	assert.Equal(t, http.StatusConflict, post("{}", "once", ""))
	assert.Equal(t, http.StatusBadRequest, post("{}", "", "not-a-uuid"))
	assert.Equal(t, http.StatusRequestEntityTooLarge, post(strings.Repeat("x", 2<<10), "", ""))
	assert.Equal(t, 1, echo.calls)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
}
