package request

// ChatRequest represents a message to the financial advisor
type ChatRequest struct {
	Message string `json:"message" validate:"required,max=2000"`
}

// RefreshNewsRequest represents the request body for a forced news refresh
type RefreshNewsRequest struct {
	Category string `json:"category" validate:"omitempty,news_category"`
}
