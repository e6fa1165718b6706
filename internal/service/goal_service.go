package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/ndewijer/finpilot-backend/internal/api/request"
	"github.com/ndewijer/finpilot-backend/internal/apperrors"
	"github.com/ndewijer/finpilot-backend/internal/model"
	"github.com/ndewijer/finpilot-backend/internal/repository"
	"github.com/ndewijer/finpilot-backend/internal/session"
)

// maxConcurrentAnalyses caps parallel advisor calls while evaluating a goal list.
const maxConcurrentAnalyses = 4

// GoalService handles savings goals and their feasibility scores.
//
// A goal is scored at most once automatically: GetGoals evaluates only goals
// without a stored score and persists advisor-sourced results. Fallback results
// are returned to the caller but never stored, so the goal is retried on the
// next read. ReanalyzeGoal forces a new evaluation.
type GoalService struct {
	goalRepo       *repository.GoalRepository
	holdingService *HoldingService
	advisorService *AdvisorService
	log            zerolog.Logger
}

// NewGoalService creates a new GoalService with the provided dependencies.
func NewGoalService(
	goalRepo *repository.GoalRepository,
	holdingService *HoldingService,
	advisorService *AdvisorService,
	log zerolog.Logger,
) *GoalService {
	return &GoalService{
		goalRepo:       goalRepo,
		holdingService: holdingService,
		advisorService: advisorService,
		log:            log.With().Str("component", "goals").Logger(),
	}
}

// GetGoals returns the user's goals, newest first, scoring those that have never been scored.
//
// Parameters:
//   - ctx: request context
//   - sess: the signed-in user
//   - monthlyContribution: expected monthly savings used for new analyses
//
// Returns:
//   - []model.Goal: every goal; previously unscored goals carry their fresh score
//   - error: if the goals could not be loaded
func (s *GoalService) GetGoals(ctx context.Context, sess session.Session, monthlyContribution decimal.Decimal) ([]model.Goal, error) {
	goals, err := s.goalRepo.GetGoals(ctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrFailedToRetrieveGoals, err)
	}

	pending := 0
	for _, g := range goals {
		if g.NeedsAnalysis() {
			pending++
		}
	}
	if pending == 0 {
		return goals, nil
	}

	portfolioValue := s.portfolioValue(ctx, sess)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentAnalyses)
	for i, goal := range goals {
		if !goal.NeedsAnalysis() {
			continue
		}
		g.Go(func() error {
			goals[i] = s.evaluate(gctx, goal, portfolioValue, monthlyContribution)
			return nil
		})
	}
	_ = g.Wait()

	return goals, nil
}

// GetGoal returns one of the user's goals as stored.
func (s *GoalService) GetGoal(ctx context.Context, sess session.Session, goalID string) (model.Goal, error) {
	return s.goalRepo.GetGoal(ctx, sess.UserID, goalID)
}

// CreateGoal stores a new goal and scores it immediately.
func (s *GoalService) CreateGoal(
	ctx context.Context,
	sess session.Session,
	req request.CreateGoalRequest,
	monthlyContribution decimal.Decimal,
) (model.Goal, error) {
	icon := strings.TrimSpace(req.Icon)
	if icon == "" {
		icon = model.DefaultGoalIcon
	}

	deadline, err := parseDeadline(req.Deadline)
	if err != nil {
		return model.Goal{}, err
	}

	now := time.Now().UTC()
	goal := model.Goal{
		ID:            uuid.New().String(),
		UserID:        sess.UserID,
		Name:          strings.TrimSpace(req.Name),
		TargetAmount:  req.TargetAmount,
		CurrentAmount: req.CurrentAmount,
		Deadline:      deadline,
		Icon:          icon,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.goalRepo.InsertGoal(ctx, goal); err != nil {
		return model.Goal{}, fmt.Errorf("failed to create goal: %w", err)
	}

	s.log.Info().Str("user_id", sess.UserID).Str("goal_id", goal.ID).Msg("Goal created")

	return s.evaluate(ctx, goal, s.portfolioValue(ctx, sess), monthlyContribution), nil
}

// UpdateGoal changes the provided fields of a goal. The stored score is kept.
func (s *GoalService) UpdateGoal(ctx context.Context, sess session.Session, goalID string, req request.UpdateGoalRequest) (model.Goal, error) {
	goal, err := s.goalRepo.GetGoal(ctx, sess.UserID, goalID)
	if err != nil {
		return model.Goal{}, err
	}

	if req.Name != nil {
		goal.Name = strings.TrimSpace(*req.Name)
	}
	if req.TargetAmount != nil {
		goal.TargetAmount = *req.TargetAmount
	}
	if req.CurrentAmount != nil {
		goal.CurrentAmount = *req.CurrentAmount
	}
	if req.Deadline != nil {
		goal.Deadline, err = parseDeadline(req.Deadline)
		if err != nil {
			return model.Goal{}, err
		}
	}
	if req.Icon != nil {
		goal.Icon = strings.TrimSpace(*req.Icon)
		if goal.Icon == "" {
			goal.Icon = model.DefaultGoalIcon
		}
	}
	goal.UpdatedAt = time.Now().UTC()

	if err := s.goalRepo.UpdateGoal(ctx, goal); err != nil {
		return model.Goal{}, err
	}

	return goal, nil
}

// DeleteGoal removes one of the user's goals.
func (s *GoalService) DeleteGoal(ctx context.Context, sess session.Session, goalID string) error {
	return s.goalRepo.DeleteGoal(ctx, sess.UserID, goalID)
}

// ReanalyzeGoal scores a goal again regardless of any stored score.
//
// Returns:
//   - model.Goal: the goal, with the new score applied
//   - model.GoalAnalysis: the full verdict including the recommendation
//   - error: apperrors.ErrGoalNotFound if the goal does not belong to the user
func (s *GoalService) ReanalyzeGoal(
	ctx context.Context,
	sess session.Session,
	goalID string,
	monthlyContribution decimal.Decimal,
) (model.Goal, model.GoalAnalysis, error) {
	goal, err := s.goalRepo.GetGoal(ctx, sess.UserID, goalID)
	if err != nil {
		return model.Goal{}, model.GoalAnalysis{}, err
	}

	analysis := s.advisorService.AnalyzeGoalFeasibility(ctx, goal, s.portfolioValue(ctx, sess), monthlyContribution)
	return s.apply(ctx, goal, analysis), analysis, nil
}

// evaluate analyzes goal and applies the result.
func (s *GoalService) evaluate(ctx context.Context, goal model.Goal, portfolioValue, monthlyContribution decimal.Decimal) model.Goal {
	analysis := s.advisorService.AnalyzeGoalFeasibility(ctx, goal, portfolioValue, monthlyContribution)
	return s.apply(ctx, goal, analysis)
}

// apply copies analysis onto goal and persists it when it came from the advisor.
func (s *GoalService) apply(ctx context.Context, goal model.Goal, analysis model.GoalAnalysis) model.Goal {
	score := analysis.Score
	insight := analysis.Insight
	goal.ProbabilityScore = &score
	goal.AIInsight = &insight

	if analysis.Source != model.AnalysisSourceAdvisor {
		return goal
	}

	if err := s.goalRepo.UpdateGoalAnalysis(ctx, goal.ID, score, insight); err != nil {
		s.log.Warn().Err(err).Str("goal_id", goal.ID).Msg("Failed to store goal analysis")
	}
	return goal
}

// portfolioValue is the current market value of the user's holdings.
// Valuation problems are logged and count as zero.
func (s *GoalService) portfolioValue(ctx context.Context, sess session.Session) decimal.Decimal {
	holdings, err := s.holdingService.GetHoldingsWithPrices(ctx, sess)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", sess.UserID).Msg("Valuing portfolio for goal analysis failed")
		return decimal.Zero
	}
	return Summarize(holdings).TotalValue
}

// parseDeadline parses an optional YYYY-MM-DD date. Nil or empty means no deadline.
func parseDeadline(value *string) (*time.Time, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	d, err := time.Parse("2006-01-02", strings.TrimSpace(*value))
	if err != nil {
		return nil, fmt.Errorf("invalid deadline: %w", err)
	}
	return &d, nil
}
