package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

var testRegistry = prometheus.NewRegistry()

func init() {
	SetMetricsRegisterer(testRegistry)
}

func newEcho(mw ...echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	e.Use(mw...)
	e.GET("/api/products", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/panic", func(echo.Context) error { panic("boom") })
	return e
}

func do(e *echo.Echo, method, target, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if origin != "" {
		req.Header.Set(echo.HeaderOrigin, origin)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestCORSAllowedOrigin(t *testing.T) {
	e := newEcho(CORS([]string{"http://localhost:3000/"}))

	rec := do(e, http.MethodGet, "/api/products", "http://localhost:3000")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))

	rec = do(e, http.MethodGet, "/api/products", "http://evil.example")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

func TestCORSPreflightWildcard(t *testing.T) {
	e := newEcho(CORS([]string{"*"}))

	rec := do(e, http.MethodOptions, "/api/products", "http://dashboard.local")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://dashboard.local", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	assert.Contains(t, rec.Header().Get(echo.HeaderAccessControlAllowMethods), http.MethodPost)
}

func TestRecoverAnswers500(t *testing.T) {
	e := newEcho(Recover(nil))

	rec := do(e, http.MethodGet, "/panic", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal Server Error")
}

func TestMetricsLabelsByRouteTemplate(t *testing.T) {
	e := newEcho(Metrics(nil, 0))
	e.GET("/health", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	do(e, http.MethodGet, "/api/products?product_name=Stik+Bawang", "")
	do(e, http.MethodGet, "/api/products", "")
	do(e, http.MethodGet, "/health", "")
	do(e, http.MethodGet, "/nowhere", "")

	m := loadHTTPMetrics()
	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("/api/products", http.MethodGet, "200")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.requests.WithLabelValues("/health", http.MethodGet, "200")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.inFlight))
}

func TestStatusClass(t *testing.T) {
	assert.Equal(t, "2xx", statusClass(204))
	assert.Equal(t, "4xx", statusClass(429))
	assert.Equal(t, "5xx", statusClass(0))
}
