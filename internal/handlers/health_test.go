package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/TallerAbierto/craftshare/internal/testutil"
)

type stubHealthChecker struct {
	err error
}

func (s stubHealthChecker) Health(ctx context.Context) error { return s.err }

func TestHealthHandler_AllHealthy(t *testing.T) {
	handler := NewHealthHandler(stubHealthChecker{}, stubHealthChecker{})

	req := testutil.NewTestRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()

	handler.Health(rr, req)

	testutil.AssertStatusCode(t, rr, http.StatusOK)
	testutil.AssertJSONContains(t, rr.Body.Bytes(), "status", "healthy")
}

func TestHealthHandler_RedisDown(t *testing.T) {
	handler := NewHealthHandler(stubHealthChecker{}, stubHealthChecker{err: errors.New("connection refused")})

	req := testutil.NewTestRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()

	handler.Health(rr, req)

	testutil.AssertStatusCode(t, rr, http.StatusServiceUnavailable)
	testutil.AssertJSONContains(t, rr.Body.Bytes(), "status", "unhealthy")
}

func TestHealthHandler_Ready_DatabaseDown(t *testing.T) {
	handler := NewHealthHandler(stubHealthChecker{err: errors.New("no route to host")}, stubHealthChecker{})

	req := testutil.NewTestRequest(http.MethodGet, "/health/ready", nil)
	rr := httptest.NewRecorder()

	handler.Ready(rr, req)

	testutil.AssertStatusCode(t, rr, http.StatusServiceUnavailable)
}

func TestHealthHandler_Live(t *testing.T) {
	handler := NewHealthHandler(stubHealthChecker{}, stubHealthChecker{})

	req := testutil.NewTestRequest(http.MethodGet, "/health/live", nil)
	rr := httptest.NewRecorder()

	handler.Live(rr, req)

	testutil.AssertStatusCode(t, rr, http.StatusOK)
}
