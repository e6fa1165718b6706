package request

import (
	"testing"

	"github.com/ndewijer/finpilot-backend/internal/model"
)

func TestParseNewsQuery(t *testing.T) {
	t.Run("default values when no parameters provided", func(t *testing.T) {
		q, err := ParseNewsQuery("", "")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		if q.Category != model.NewsCategoryGeneral {
			t.Errorf("Expected default category general, got '%s'", q.Category)
		}

		if q.MinID != nil {
			t.Errorf("Expected nil MinID, got %d", *q.MinID)
		}
	})

	t.Run("category is case insensitive", func(t *testing.T) {
		q, err := ParseNewsQuery("Crypto", "")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		if q.Category != model.NewsCategoryCrypto {
			t.Errorf("Expected crypto, got '%s'", q.Category)
		}
	})

	t.Run("min id enables pagination", func(t *testing.T) {
		q, err := ParseNewsQuery("general", "12345")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		if q.MinID == nil || *q.MinID != 12345 {
			t.Errorf("Expected MinID 12345, got %v", q.MinID)
		}
	})

	tests := []struct {
		name     string
		category string
		minID    string
	}{
		{"unknown category", "sports", ""},
		{"non numeric min id", "general", "abc"},
		{"zero min id", "general", "0"},
		{"negative min id", "general", "-5"},
	}

	for _, tt := range tests {
		t.Run("rejects "+tt.name, func(t *testing.T) {
			if _, err := ParseNewsQuery(tt.category, tt.minID); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}

func TestParseMonthlyContribution(t *testing.T) {
	t.Run("empty is zero", func(t *testing.T) {
		amount, err := ParseMonthlyContribution("")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if !amount.IsZero() {
			t.Errorf("Expected zero, got %s", amount)
		}
	})

	t.Run("parses decimal", func(t *testing.T) {
		amount, err := ParseMonthlyContribution("250.50")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if amount.String() != "250.5" {
			t.Errorf("Expected 250.5, got %s", amount)
		}
	})

	t.Run("rejects negative", func(t *testing.T) {
		if _, err := ParseMonthlyContribution("-1"); err == nil {
			t.Error("Expected error, got nil")
		}
	})

	t.Run("rejects garbage", func(t *testing.T) {
		if _, err := ParseMonthlyContribution("lots"); err == nil {
			t.Error("Expected error, got nil")
		}
	})
}
