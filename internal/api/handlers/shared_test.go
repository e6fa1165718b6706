package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/finpilot-backend/internal/api/request"
	"github.com/ndewijer/finpilot-backend/internal/api/response"
	"github.com/ndewijer/finpilot-backend/internal/testutil"
	"github.com/ndewijer/finpilot-backend/internal/validation"
)

// decodeError reads an ErrorResponse from a recorded response.
func decodeError(t *testing.T, w *httptest.ResponseRecorder) response.ErrorResponse {
	t.Helper()
	var resp response.ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode error response: %v (body %q)", err, w.Body.String())
	}
	return resp
}

// decodeBody reads a JSON response body into T.
func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatalf("Failed to decode response: %v (body %q)", err, w.Body.String())
	}
	return out
}

// TestParseJSON tests the generic body decoder.
// This is an internal test because parseJSON is unexported.
func TestParseJSON(t *testing.T) {
	t.Run("decodes a valid body", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/", `{"message": "hello"}`)

		got, err := parseJSON[request.ChatRequest](req)

		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if got.Message != "hello" {
			t.Errorf("Expected message 'hello', got '%s'", got.Message)
		}
	})

	t.Run("rejects unknown fields", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/", `{"message": "hello", "extra": 1}`)

		_, err := parseJSON[request.ChatRequest](req)

		if err == nil {
			t.Fatal("Expected error for unknown field")
		}
	})

	t.Run("reports an empty body", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/", nil)

		_, err := parseJSON[request.ChatRequest](req)

		if !errors.Is(err, errEmptyBody) {
			t.Errorf("Expected empty body error, got %v", err)
		}
	})

	t.Run("reports malformed JSON", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/", `{"message":`)

		_, err := parseJSON[request.ChatRequest](req)

		if err == nil || !strings.HasPrefix(err.Error(), "malformed JSON") {
			t.Errorf("Expected malformed JSON error, got %v", err)
		}
	})
}

func TestSessionFrom(t *testing.T) {
	t.Run("responds 401 without a session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		w := httptest.NewRecorder()

		_, ok := sessionFrom(w, req)

		if ok {
			t.Fatal("Expected no session")
		}
		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", w.Code)
		}
	})
}

func TestRespondValidation(t *testing.T) {
	t.Run("lists field errors as details", func(t *testing.T) {
		w := httptest.NewRecorder()
		err := validation.ValidateChat(request.ChatRequest{})

		respondValidation(w, err)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("Expected 400, got %d", w.Code)
		}
		resp := decodeError(t, w)
		details, ok := resp.Details.(map[string]any)
		if !ok {
			t.Fatalf("Expected field map in details, got %T", resp.Details)
		}
		if _, ok := details["message"]; !ok {
			t.Errorf("Expected 'message' field error, got %v", details)
		}
	})
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		amount string
		want   string
	}{
		{"2000", "$2,000.00"},
		{"1234.5", "$1,234.50"},
		{"0", "$0.00"},
		{"-250.5", "-$250.50"},
		{"92233720368547758.08", "$92233720368547758.08"},
		{"-1e20", "-$100000000000000000000.00"},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			got := formatMoney(decimal.RequireFromString(tt.amount))
			if got != tt.want {
				t.Errorf("formatMoney(%s) = %q, want %q", tt.amount, got, tt.want)
			}
		})
	}
}
