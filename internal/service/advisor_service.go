package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/ndewijer/finpilot-backend/internal/model"
	"github.com/ndewijer/finpilot-backend/internal/repository"
	"github.com/ndewijer/finpilot-backend/internal/session"
)

// Fixed results returned when the advisor cannot be used.
var (
	AnalysisNotConfigured = model.GoalAnalysis{
		Score:          0,
		Insight:        "AI configuration missing.",
		Recommendation: "Please configure your API key.",
		Source:         model.AnalysisSourceNotConfigured,
	}
	AnalysisUnavailable = model.GoalAnalysis{
		Score:          50,
		Insight:        "Analysis unavailable.",
		Recommendation: "Review your goal manually.",
		Source:         model.AnalysisSourceUnavailable,
	}
)

// Fixed chat replies used when the advisor cannot be used.
const (
	ChatReplyNotConfigured = "I'm sorry, my AI brain hasn't been connected yet. Please add the GEMINI_API_KEY to your configuration."
	ChatReplyUnavailable   = "I'm having trouble connecting to my financial knowledge base right now. Please try again later."
)

// AssumedAnnualReturn is the portfolio return the advisor is told to assume.
const AssumedAnnualReturn = "7%"

// AdvisorService produces goal feasibility analyses and chat answers with the language model.
type AdvisorService struct {
	advisor        Advisor
	holdingService *HoldingService
	goalRepo       *repository.GoalRepository
	log            zerolog.Logger
}

// NewAdvisorService creates a new AdvisorService with the provided dependencies.
func NewAdvisorService(
	advisor Advisor,
	holdingService *HoldingService,
	goalRepo *repository.GoalRepository,
	log zerolog.Logger,
) *AdvisorService {
	return &AdvisorService{
		advisor:        advisor,
		holdingService: holdingService,
		goalRepo:       goalRepo,
		log:            log.With().Str("component", "advisor").Logger(),
	}
}

// Configured reports whether analyses come from the model rather than fallbacks.
func (s *AdvisorService) Configured() bool {
	return s.advisor != nil && s.advisor.Configured()
}

// AnalyzeGoalFeasibility asks the advisor how likely goal is to be reached.
//
// Without a configured advisor it returns AnalysisNotConfigured and makes no call.
// A failed call or an answer that cannot be decoded returns AnalysisUnavailable.
//
// Parameters:
//   - ctx: request context
//   - goal: the goal to analyze
//   - portfolioValue: current market value of the user's holdings
//   - monthlyContribution: expected monthly savings, sent as an annual figure
//
// Returns:
//   - model.GoalAnalysis: the verdict, Source tells whether it came from the advisor
func (s *AdvisorService) AnalyzeGoalFeasibility(
	ctx context.Context,
	goal model.Goal,
	portfolioValue decimal.Decimal,
	monthlyContribution decimal.Decimal,
) model.GoalAnalysis {
	if !s.Configured() {
		return AnalysisNotConfigured
	}

	text, err := s.advisor.GenerateJSON(ctx, BuildGoalPrompt(goal, portfolioValue, monthlyContribution))
	if err != nil {
		s.log.Warn().Err(err).Str("goal_id", goal.ID).Msg("Goal analysis request failed")
		return AnalysisUnavailable
	}

	analysis, err := ParseGoalAnalysis(text)
	if err != nil {
		s.log.Warn().Err(err).Str("goal_id", goal.ID).Msg("Goal analysis response could not be decoded")
		return AnalysisUnavailable
	}

	return analysis
}

// BuildGoalPrompt renders the feasibility prompt for goal.
func BuildGoalPrompt(goal model.Goal, portfolioValue, monthlyContribution decimal.Decimal) string {
	deadline := "None"
	if goal.Deadline != nil {
		deadline = goal.Deadline.Format("2006-01-02")
	}
	annualContribution := monthlyContribution.Mul(decimal.NewFromInt(12))

	var b strings.Builder
	b.WriteString("Analyze the feasibility of this financial goal:\n")
	fmt.Fprintf(&b, "Goal: %s\n", goal.Name)
	fmt.Fprintf(&b, "Target: $%s\n", goal.TargetAmount.String())
	fmt.Fprintf(&b, "Current Saved: $%s\n", goal.CurrentAmount.String())
	fmt.Fprintf(&b, "Deadline: %s\n\n", deadline)
	fmt.Fprintf(&b, "Portfolio Total Value: $%s\n", portfolioValue.String())
	fmt.Fprintf(&b, "Annual Contribution (Est): $%s\n\n", annualContribution.String())
	b.WriteString("Task:\n")
	fmt.Fprintf(&b, "1. Calculate a probability score (0-100) of achieving this goal based on current progress "+
		"and standard market returns (assume %s annual return on portfolio).\n", AssumedAnnualReturn)
	b.WriteString("2. Provide a 1-sentence insight on the status.\n")
	b.WriteString("3. Provide a 1-sentence actionable recommendation.\n\n")
	b.WriteString("Return ONLY a JSON object in this format:\n")
	b.WriteString(`{"score": number, "insight": "string", "recommendation": "string"}`)
	b.WriteString("\n")
	return b.String()
}

type analysisResponse struct {
	Score          *float64 `json:"score"`
	Insight        string   `json:"insight"`
	Recommendation string   `json:"recommendation"`
}

// ParseGoalAnalysis decodes the advisor's answer.
// The score is rounded and clamped to 0..100; a missing score is an error.
func ParseGoalAnalysis(text string) (model.GoalAnalysis, error) {
	var resp analysisResponse
	if err := json.Unmarshal([]byte(ExtractJSONPayload(text)), &resp); err != nil {
		return model.GoalAnalysis{}, fmt.Errorf("invalid analysis JSON: %w", err)
	}
	if resp.Score == nil || math.IsNaN(*resp.Score) {
		return model.GoalAnalysis{}, errors.New("analysis JSON has no score")
	}

	score := int(math.Round(math.Max(0, math.Min(100, *resp.Score))))

	return model.GoalAnalysis{
		Score:          score,
		Insight:        strings.TrimSpace(resp.Insight),
		Recommendation: strings.TrimSpace(resp.Recommendation),
		Source:         model.AnalysisSourceAdvisor,
	}, nil
}

// ExtractJSONPayload strips markdown code fences from a model answer and
// isolates the outermost JSON object. Text without an object is returned trimmed.
func ExtractJSONPayload(text string) string {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "```") {
		lines := strings.Split(trimmed, "\n")
		if len(lines) >= 2 {
			lines = lines[1:]
			if strings.TrimSpace(lines[len(lines)-1]) == "```" {
				lines = lines[:len(lines)-1]
			}
			trimmed = strings.Join(lines, "\n")
		}
	}

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start >= 0 && end > start {
		trimmed = trimmed[start : end+1]
	}
	return strings.TrimSpace(trimmed)
}

// AdvisorContext is the user data handed to the chat advisor.
type AdvisorContext struct {
	UserName       string           `json:"userName"`
	PortfolioValue decimal.Decimal  `json:"portfolioValue"`
	Holdings       []HoldingContext `json:"holdings"`
	Goals          []GoalContext    `json:"goals"`
}

// HoldingContext is one holding as seen by the chat advisor.
type HoldingContext struct {
	Symbol string           `json:"symbol"`
	Value  *decimal.Decimal `json:"value"`
}

// GoalContext is one goal as seen by the chat advisor.
type GoalContext struct {
	Name    string          `json:"name"`
	Target  decimal.Decimal `json:"target"`
	Current decimal.Decimal `json:"current"`
}

// BuildAdvisorContext gathers the user's priced holdings and goals for the chat advisor.
func (s *AdvisorService) BuildAdvisorContext(ctx context.Context, sess session.Session) (AdvisorContext, error) {
	holdings, err := s.holdingService.GetHoldingsWithPrices(ctx, sess)
	if err != nil {
		return AdvisorContext{}, err
	}
	goals, err := s.goalRepo.GetGoals(ctx, sess.UserID)
	if err != nil {
		return AdvisorContext{}, fmt.Errorf("failed to load goals: %w", err)
	}

	advisorCtx := AdvisorContext{
		UserName:       sess.Email,
		PortfolioValue: Summarize(holdings).TotalValue,
		Holdings:       make([]HoldingContext, len(holdings)),
		Goals:          make([]GoalContext, len(goals)),
	}
	for i, h := range holdings {
		advisorCtx.Holdings[i] = HoldingContext{Symbol: h.Symbol, Value: h.MarketValue}
	}
	for i, g := range goals {
		advisorCtx.Goals[i] = GoalContext{Name: g.Name, Target: g.TargetAmount, Current: g.CurrentAmount}
	}

	return advisorCtx, nil
}

// Chat answers a user's question using their portfolio as context.
func (s *AdvisorService) Chat(ctx context.Context, sess session.Session, message string) (string, error) {
	if !s.Configured() {
		return ChatReplyNotConfigured, nil
	}

	advisorCtx, err := s.BuildAdvisorContext(ctx, sess)
	if err != nil {
		return "", err
	}

	return s.GetFinancialAdvisorResponse(ctx, advisorCtx, message), nil
}

// GetFinancialAdvisorResponse answers message given userContext.
// It never fails: an unconfigured or failing advisor yields a fixed reply.
func (s *AdvisorService) GetFinancialAdvisorResponse(ctx context.Context, userContext any, message string) string {
	if !s.Configured() {
		return ChatReplyNotConfigured
	}

	contextJSON, err := json.MarshalIndent(userContext, "", "  ")
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to encode advisor context")
		contextJSON = []byte("{}")
	}

	prompt := fmt.Sprintf(`You are FinPilot, an expert AI Financial Advisor.
Your goal is to provide accurate, helpful, and personalized financial advice.

Current User Context:
%s

User Question: %q

Provide a concise, professional, and encouraging response.
If the user asks about their specific data (like "how much money do I have?"), use the provided context.
Do not make up numbers if they aren't in the context.
Format your response with markdown if helpful.
`, contextJSON, message)

	reply, err := s.advisor.GenerateText(ctx, prompt)
	if err != nil {
		s.log.Warn().Err(err).Msg("Advisor chat request failed")
		return ChatReplyUnavailable
	}

	return reply
}
