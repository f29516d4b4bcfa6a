package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscrowTransitionCounter(t *testing.T) {
	m := New()
	m.EscrowTransition("release")
	m.EscrowTransition("release")
	m.EscrowTransition("refund")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.escrow.WithLabelValues("release")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.escrow.WithLabelValues("refund")))

	var nilMetrics *Metrics
	nilMetrics.EscrowTransition("release")
	nilMetrics.Workflow("accept_proposal", errors.New("x"))
}

func TestMiddlewareAndHandler(t *testing.T) {
	m := New()
	app := fiber.New()
	app.Use(m.Middleware())
	app.Get("/metrics", m.Handler())
	app.Get("/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })

	resp, err := app.Test(httptest.NewRequest("GET", "/ping", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `freelancehub_http_requests_total{method="GET",route="/ping",status="200"} 1`)
}
