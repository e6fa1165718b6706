package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultGoalIcon is used when a goal is created without an icon.
const DefaultGoalIcon = "🎯"

// Goal is a user's savings target.
// ProbabilityScore and AIInsight stay nil until the goal has been analyzed.
type Goal struct {
	ID               string          `json:"id"`
	UserID           string          `json:"user_id"`
	Name             string          `json:"name"`
	TargetAmount     decimal.Decimal `json:"target_amount"`
	CurrentAmount    decimal.Decimal `json:"current_amount"`
	Deadline         *time.Time      `json:"deadline,omitempty"`
	Icon             string          `json:"icon"`
	ProbabilityScore *int            `json:"probability_score"`
	AIInsight        *string         `json:"ai_insight"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// NeedsAnalysis reports whether the goal has never been scored.
func (g Goal) NeedsAnalysis() bool {
	return g.ProbabilityScore == nil
}

// AnalysisSource records where a GoalAnalysis came from.
type AnalysisSource string

const (
	AnalysisSourceAdvisor       AnalysisSource = "advisor"
	AnalysisSourceNotConfigured AnalysisSource = "not_configured"
	AnalysisSourceUnavailable   AnalysisSource = "unavailable"
)

// GoalAnalysis is the advisor's verdict on a goal.
type GoalAnalysis struct {
	Score          int            `json:"score"`
	Insight        string         `json:"insight"`
	Recommendation string         `json:"recommendation"`
	Source         AnalysisSource `json:"source"`
}
