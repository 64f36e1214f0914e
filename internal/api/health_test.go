package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func healthRouter(checks map[string]HealthChecker) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	registerHealthRoutes(r, "linktrack", "0.1.0", checks)
	return r
}

func TestHealth_AllChecksPass(t *testing.T) {
	r := healthRouter(map[string]HealthChecker{
		"database": func() error { return nil },
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", http.NoBody)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp healthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Status != statusHealthy || resp.Service != "linktrack" {
		t.Fatalf("resp = %+v", resp)
	}
	if resp.Checks["database"].Status != statusHealthy {
		t.Fatalf("database check = %+v", resp.Checks["database"])
	}
}

func TestHealth_FailingCheck(t *testing.T) {
	r := healthRouter(map[string]HealthChecker{
		"database": func() error { return errors.New("connection refused") },
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", http.NoBody)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}

	var resp healthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Status != statusUnhealthy {
		t.Fatalf("status = %q", resp.Status)
	}
	if resp.Checks["database"].Message != "connection refused" {
		t.Fatalf("check message = %q", resp.Checks["database"].Message)
	}
}

func TestHealth_Head(t *testing.T) {
	r := healthRouter(nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodHead, "/health", http.NoBody)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}
