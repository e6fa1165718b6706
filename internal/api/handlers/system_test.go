package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ndewijer/finpilot-backend/internal/model"
	"github.com/ndewijer/finpilot-backend/internal/testutil"
)

func TestSystemHandler_Health(t *testing.T) {
	t.Run("returns healthy status when database is connected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := NewSystemHandler(testutil.NewTestServices(t, db).System)

		req := httptest.NewRequest(http.MethodGet, "/api/system/health", nil)
		w := httptest.NewRecorder()

		handler.Health(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		resp := decodeBody[model.HealthStatus](t, w)
		if resp.Status != "healthy" {
			t.Errorf("Expected status 'healthy', got '%s'", resp.Status)
		}
		if resp.Database != "connected" {
			t.Errorf("Expected database 'connected', got '%s'", resp.Database)
		}
		if resp.Quotes != "configured" || resp.Advisor != "configured" {
			t.Errorf("Expected providers configured, got quotes=%s advisor=%s", resp.Quotes, resp.Advisor)
		}
	})

	t.Run("reports missing provider keys without failing", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svcs := testutil.NewTestServicesWith(t, db,
			testutil.NewFakeQuoteProvider(),
			testutil.NewFakeNewsProvider(nil).WithoutAPIKey(),
			testutil.NewFakeAdvisor().Unconfigured(),
		)
		handler := NewSystemHandler(svcs.System)

		req := httptest.NewRequest(http.MethodGet, "/api/system/health", nil)
		w := httptest.NewRecorder()

		handler.Health(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}
		resp := decodeBody[model.HealthStatus](t, w)
		if resp.Quotes != "not_configured" || resp.Advisor != "not_configured" {
			t.Errorf("Expected providers not_configured, got quotes=%s advisor=%s", resp.Quotes, resp.Advisor)
		}
	})

	t.Run("returns 503 when database is disconnected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := NewSystemHandler(testutil.NewTestServices(t, db).System)

		// Close the database connection to simulate failure
		db.Close()

		req := httptest.NewRequest(http.MethodGet, "/api/system/health", nil)
		w := httptest.NewRecorder()

		handler.Health(w, req)

		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("Expected 503, got %d: %s", w.Code, w.Body.String())
		}
		resp := decodeBody[model.HealthStatus](t, w)
		if resp.Error == "" {
			t.Error("Expected error message in response")
		}
	})
}
