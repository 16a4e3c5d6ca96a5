package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordRequest("/x", "GET", 200, time.Millisecond)
		m.RecordError("/x", "GET", "NOT_FOUND")
		m.RecordAuthzDecision("admin", false, "no_token")
		m.RecordCompensation("create_identity", true)
	})
}

func TestAuthzDecisionCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordAuthzDecision("admin", false, "no_token")
	m.RecordAuthzDecision("admin", false, "no_token")
	m.RecordAuthzDecision("admin", true, "")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.authz.WithLabelValues("admin", "denied", "no_token")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.authz.WithLabelValues("admin", "allowed", "none")))
}

func TestRequestLoggerRecordsRouteAndIdentity(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	core, logs := observer.New(zapcore.InfoLevel)

	app := fiber.New()
	app.Use(RequestLogger(zap.New(core), m))
	app.Get("/api/models/:id", func(c *fiber.Ctx) error {
		c.Locals(IdentityLocalKey, "id-1")
		return c.SendStatus(http.StatusNoContent)
	})
	app.Get("/metrics", Handler(reg))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/models/42", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.requests.WithLabelValues("/api/models/:id", "GET", "204")))
	entries := logs.FilterMessage("http_request").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "id-1", entries[0].ContextMap()["identity_id"])

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.True(t, strings.Contains(string(body), "vrcface_http_requests_total"))
}
