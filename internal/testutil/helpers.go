package testutil

import (
	"database/sql"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ndewijer/finpilot-backend/internal/repository"
	"github.com/ndewijer/finpilot-backend/internal/service"
	"github.com/ndewijer/finpilot-backend/internal/session"
)

// Services bundles the services wired the way the server wires them,
// with fakes in place of the external providers.
type Services struct {
	Holdings *service.HoldingService
	News     *service.NewsService
	Advisor  *service.AdvisorService
	Goals    *service.GoalService
	Users    *service.UserService
	Stocks   *service.StockService
	System   *service.SystemService
	Sessions *session.Manager

	Quotes       *FakeQuoteProvider
	NewsProvider *FakeNewsProvider
	Model        *FakeAdvisor
	Clock        *Clock
}

// NewTestServices wires every service against db and fresh fakes.
// The news clock starts at a fixed instant.
func NewTestServices(t *testing.T, db *sql.DB) *Services {
	t.Helper()
	return NewTestServicesWith(t, db, NewFakeQuoteProvider(), NewFakeNewsProvider(nil), NewFakeAdvisor())
}

// NewTestServicesWith wires every service against db and the given fakes.
func NewTestServicesWith(
	t *testing.T,
	db *sql.DB,
	quotes *FakeQuoteProvider,
	news *FakeNewsProvider,
	advisor *FakeAdvisor,
) *Services {
	t.Helper()

	log := zerolog.Nop()
	clock := NewClock(time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC))

	sessions, err := session.NewManager("", time.Hour)
	if err != nil {
		t.Fatalf("Failed to create session manager: %v", err)
	}

	holdingRepo := repository.NewHoldingRepository(db)
	stockRepo := repository.NewStockRepository(db)
	goalRepo := repository.NewGoalRepository(db)

	holdings := service.NewHoldingService(holdingRepo, stockRepo, quotes, log)
	advisorSvc := service.NewAdvisorService(advisor, holdings, goalRepo, log)

	return &Services{
		Holdings: holdings,
		News:     service.NewNewsService(repository.NewNewsCacheRepository(db), news, log).WithClock(clock.Now),
		Advisor:  advisorSvc,
		Goals:    service.NewGoalService(goalRepo, holdings, advisorSvc, log),
		Users:    service.NewUserService(repository.NewUserRepository(db), sessions, log),
		Stocks:   service.NewStockService(stockRepo),
		System:   service.NewSystemService(db, news, advisor),
		Sessions: sessions,

		Quotes:       quotes,
		NewsProvider: news,
		Model:        advisor,
		Clock:        clock,
	}
}

// MakeID generates a UUID string for use in tests.
//
// Example usage:
//
//	id := testutil.MakeID()
//	// Returns: "550e8400-e29b-41d4-a716-446655440000"
func MakeID() string {
	return uuid.New().String()
}

// MakeSymbol generates a stock ticker symbol for testing.
//
// Example usage:
//
//	symbol := testutil.MakeSymbol("AAPL")
//	// Returns: "AAPL1A2B"
func MakeSymbol(base string) string {
	if base == "" {
		base = "TEST"
	}
	return base + randomAlphanumeric(4)
}

// MakeEmail generates a unique email address for testing.
//
// Example usage:
//
//	email := testutil.MakeEmail("ada")
//	// Returns: "ada.x7k2p9@example.com"
func MakeEmail(base string) string {
	if base == "" {
		base = "user"
	}
	return base + "." + strings.ToLower(randomAlphanumeric(6)) + "@example.com"
}

// randomAlphanumeric generates a random alphanumeric string of specified length.
func randomAlphanumeric(length int) string {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, length)
	for i := range result {
		//nolint:gosec // G404: Using math/rand for test data generation is acceptable
		result[i] = charset[rand.Intn(len(charset))]
	}
	return string(result)
}
