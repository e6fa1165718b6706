package apperrors

import "errors"

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrUserNotFound indicates that a user with the given ID or email does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrHoldingNotFound indicates that the holding does not exist or belongs to another user.
	ErrHoldingNotFound = errors.New("holding not found")

	// ErrGoalNotFound indicates that the goal does not exist or belongs to another user.
	ErrGoalNotFound = errors.New("goal not found")

	// ErrStockNotFound indicates that a symbol is not in the stock catalog.
	ErrStockNotFound = errors.New("stock not found")

	// ErrQuoteNotFound indicates that the quote provider had no price for a symbol.
	ErrQuoteNotFound = errors.New("quote not found")
)

// Business logic errors represent validation failures or constraint violations.
var (
	// ErrInvalidUUID indicates that a provided ID is not a valid UUID format.
	ErrInvalidUUID = errors.New("invalid UUID format")

	// ErrEmptyID indicates that a required ID parameter is empty or missing.
	ErrEmptyID = errors.New("ID cannot be empty")

	// ErrDuplicateEmail indicates that an account with the email already exists.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrDuplicateHolding indicates that the user already holds the symbol.
	ErrDuplicateHolding = errors.New("holding for symbol already exists")

	// ErrInvalidCredentials is returned for any failed login, whatever the cause.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrUnauthorized indicates a request without a usable session.
	ErrUnauthorized = errors.New("unauthorized")

	ErrInvalidSymbol       = errors.New("symbol is required")
	ErrInvalidNewsCategory = errors.New("invalid news category")
	ErrInvalidContribution = errors.New("monthly_contribution must be a non-negative number")
)

// Operation failure errors represent system-level failures when retrieving or processing data.
var (
	ErrFailedToRetrieveHoldings = errors.New("failed to retrieve holdings")
	ErrFailedToRetrieveGoals    = errors.New("failed to retrieve goals")
	ErrFailedToRetrieveStocks   = errors.New("failed to retrieve stocks")
	ErrFailedToCreateSession    = errors.New("failed to create session")
)
