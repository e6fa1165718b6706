package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/finpilot-backend/internal/model"
	"github.com/ndewijer/finpilot-backend/internal/repository"
	"github.com/ndewijer/finpilot-backend/internal/session"
)

// TestPassword is the plain password of every user created by UserBuilder.
const TestPassword = "correct-horse-battery"

// UserBuilder provides a fluent interface for creating test users.
//
// Example usage:
//
//	// Simple creation with defaults
//	user := testutil.NewUser().Build(t, db)
//
//	// Customized user
//	user := testutil.NewUser().
//	    WithEmail("ada@example.com").
//	    WithDisplayName("Ada").
//	    Build(t, db)
type UserBuilder struct {
	ID          string
	Email       string
	DisplayName string
	Password    string
}

// NewUser creates a UserBuilder with sensible defaults.
func NewUser() *UserBuilder {
	return &UserBuilder{
		ID:          MakeID(),
		Email:       MakeEmail("user"),
		DisplayName: "Test User",
		Password:    TestPassword,
	}
}

// WithEmail sets a custom email.
func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.Email = email
	return b
}

// WithDisplayName sets a custom display name.
func (b *UserBuilder) WithDisplayName(name string) *UserBuilder {
	b.DisplayName = name
	return b
}

// WithPassword sets a custom password.
func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.Password = password
	return b
}

// Build creates the user in the database and returns it.
func (b *UserBuilder) Build(t *testing.T, db *sql.DB) model.User {
	t.Helper()

	hash, err := session.HashPassword(b.Password)
	if err != nil {
		t.Fatalf("Failed to hash test password: %v", err)
	}

	user := model.User{
		ID:           b.ID,
		Email:        b.Email,
		DisplayName:  b.DisplayName,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := repository.NewUserRepository(db).InsertUser(context.Background(), user); err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// SessionFor returns the session a signed-in user would carry.
func SessionFor(user model.User) session.Session {
	return session.Session{UserID: user.ID, Email: user.Email}
}

// HoldingBuilder provides a fluent interface for creating test holdings.
//
// Example usage:
//
//	holding := testutil.NewHolding(user.ID).
//	    WithSymbol("AAPL").
//	    WithShares("10").
//	    WithAvgCost("150").
//	    Build(t, db)
type HoldingBuilder struct {
	ID        string
	UserID    string
	Symbol    string
	Name      string
	Shares    decimal.Decimal
	AvgCost   decimal.Decimal
	AssetType model.AssetType
	CreatedAt time.Time
}

// NewHolding creates a HoldingBuilder for userID with sensible defaults.
func NewHolding(userID string) *HoldingBuilder {
	symbol := MakeSymbol("TST")
	return &HoldingBuilder{
		ID:        MakeID(),
		UserID:    userID,
		Symbol:    symbol,
		Name:      symbol + " Inc.",
		Shares:    decimal.NewFromInt(10),
		AvgCost:   decimal.NewFromInt(100),
		AssetType: model.AssetTypeStock,
		CreatedAt: time.Now().UTC(),
	}
}

// WithSymbol sets a custom symbol.
func (b *HoldingBuilder) WithSymbol(symbol string) *HoldingBuilder {
	b.Symbol = symbol
	b.Name = symbol + " Inc."
	return b
}

// WithShares sets the share count from a decimal string.
func (b *HoldingBuilder) WithShares(shares string) *HoldingBuilder {
	b.Shares = decimal.RequireFromString(shares)
	return b
}

// WithAvgCost sets the average cost from a decimal string.
func (b *HoldingBuilder) WithAvgCost(cost string) *HoldingBuilder {
	b.AvgCost = decimal.RequireFromString(cost)
	return b
}

// WithAssetType sets a custom asset type.
func (b *HoldingBuilder) WithAssetType(assetType model.AssetType) *HoldingBuilder {
	b.AssetType = assetType
	return b
}

// WithCreatedAt sets the creation time, which decides list order.
func (b *HoldingBuilder) WithCreatedAt(createdAt time.Time) *HoldingBuilder {
	b.CreatedAt = createdAt
	return b
}

// Build creates the holding in the database and returns it.
func (b *HoldingBuilder) Build(t *testing.T, db *sql.DB) model.Holding {
	t.Helper()

	holding := model.Holding{
		ID:        b.ID,
		UserID:    b.UserID,
		Symbol:    b.Symbol,
		Name:      b.Name,
		Shares:    b.Shares,
		AvgCost:   b.AvgCost,
		AssetType: b.AssetType,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.CreatedAt,
	}

	if err := repository.NewHoldingRepository(db).InsertHolding(context.Background(), holding); err != nil {
		t.Fatalf("Failed to create test holding: %v", err)
	}

	return holding
}

// GoalBuilder provides a fluent interface for creating test goals.
//
// Example usage:
//
//	// Unscored goal
//	goal := testutil.NewGoal(user.ID).WithTarget("10000").Build(t, db)
//
//	// Goal that was already analyzed
//	goal := testutil.NewGoal(user.ID).WithScore(80, "On track.").Build(t, db)
type GoalBuilder struct {
	ID            string
	UserID        string
	Name          string
	TargetAmount  decimal.Decimal
	CurrentAmount decimal.Decimal
	Deadline      *time.Time
	Icon          string
	Score         *int
	Insight       *string
	CreatedAt     time.Time
}

// NewGoal creates a GoalBuilder for userID with sensible defaults.
func NewGoal(userID string) *GoalBuilder {
	return &GoalBuilder{
		ID:            MakeID(),
		UserID:        userID,
		Name:          "Emergency Fund " + randomAlphanumeric(4),
		TargetAmount:  decimal.NewFromInt(10000),
		CurrentAmount: decimal.NewFromInt(2500),
		Icon:          model.DefaultGoalIcon,
		CreatedAt:     time.Now().UTC(),
	}
}

// WithName sets a custom name.
func (b *GoalBuilder) WithName(name string) *GoalBuilder {
	b.Name = name
	return b
}

// WithTarget sets the target amount from a decimal string.
func (b *GoalBuilder) WithTarget(amount string) *GoalBuilder {
	b.TargetAmount = decimal.RequireFromString(amount)
	return b
}

// WithCurrent sets the saved amount from a decimal string.
func (b *GoalBuilder) WithCurrent(amount string) *GoalBuilder {
	b.CurrentAmount = decimal.RequireFromString(amount)
	return b
}

// WithDeadline sets the deadline.
func (b *GoalBuilder) WithDeadline(deadline time.Time) *GoalBuilder {
	b.Deadline = &deadline
	return b
}

// WithScore marks the goal as already analyzed.
func (b *GoalBuilder) WithScore(score int, insight string) *GoalBuilder {
	b.Score = &score
	b.Insight = &insight
	return b
}

// WithCreatedAt sets the creation time, which decides list order.
func (b *GoalBuilder) WithCreatedAt(createdAt time.Time) *GoalBuilder {
	b.CreatedAt = createdAt
	return b
}

// Build creates the goal in the database and returns it.
func (b *GoalBuilder) Build(t *testing.T, db *sql.DB) model.Goal {
	t.Helper()

	goal := model.Goal{
		ID:               b.ID,
		UserID:           b.UserID,
		Name:             b.Name,
		TargetAmount:     b.TargetAmount,
		CurrentAmount:    b.CurrentAmount,
		Deadline:         b.Deadline,
		Icon:             b.Icon,
		ProbabilityScore: b.Score,
		AIInsight:        b.Insight,
		CreatedAt:        b.CreatedAt,
		UpdatedAt:        b.CreatedAt,
	}

	if err := repository.NewGoalRepository(db).InsertGoal(context.Background(), goal); err != nil {
		t.Fatalf("Failed to create test goal: %v", err)
	}

	return goal
}
