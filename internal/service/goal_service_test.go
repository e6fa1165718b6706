package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/finpilot-backend/internal/api/request"
	"github.com/ndewijer/finpilot-backend/internal/apperrors"
	"github.com/ndewijer/finpilot-backend/internal/model"
	"github.com/ndewijer/finpilot-backend/internal/repository"
	"github.com/ndewijer/finpilot-backend/internal/testutil"
)

func storedScore(t *testing.T, svcs *testutil.Services, user model.User, goalID string) *int {
	t.Helper()
	goal, err := svcs.Goals.GetGoal(context.Background(), testutil.SessionFor(user), goalID)
	require.NoError(t, err)
	return goal.ProbabilityScore
}

// TestGoalService_GetGoals tests lazy feasibility evaluation.
//
// WHY: Advisor calls are slow and billed. A goal must be scored once and then
// served from storage, while fallback scores must not be stored so the goal is
// retried once the advisor works again.
func TestGoalService_GetGoals(t *testing.T) {
	ctx := context.Background()

	t.Run("scores unscored goals once and stores the result", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svcs := testutil.NewTestServices(t, db)
		user := testutil.NewUser().Build(t, db)
		goal := testutil.NewGoal(user.ID).Build(t, db)
		sess := testutil.SessionFor(user)

		// Execute
		first, err := svcs.Goals.GetGoals(ctx, sess, dec("500"))
		require.NoError(t, err)
		second, err := svcs.Goals.GetGoals(ctx, sess, dec("500"))
		require.NoError(t, err)

		// Assert
		require.Len(t, first, 1)
		require.NotNil(t, first[0].ProbabilityScore)
		assert.Equal(t, 80, *first[0].ProbabilityScore)
		assert.Equal(t, "On track.", *first[0].AIInsight)
		require.Len(t, second, 1)
		assert.Equal(t, 80, *second[0].ProbabilityScore)
		assert.Equal(t, 1, svcs.Model.Calls())

		score := storedScore(t, svcs, user, goal.ID)
		require.NotNil(t, score)
		assert.Equal(t, 80, *score)
	})

	t.Run("already scored goals are not evaluated", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svcs := testutil.NewTestServices(t, db)
		user := testutil.NewUser().Build(t, db)
		testutil.NewGoal(user.ID).WithScore(35, "Behind schedule.").Build(t, db)

		goals, err := svcs.Goals.GetGoals(ctx, testutil.SessionFor(user), dec("0"))

		require.NoError(t, err)
		require.Len(t, goals, 1)
		assert.Equal(t, 35, *goals[0].ProbabilityScore)
		assert.Equal(t, 0, svcs.Model.Calls())
	})

	t.Run("fallback scores are returned but not stored", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		advisor := testutil.NewFakeAdvisor().WithError(errors.New("unavailable"))
		svcs := testutil.NewTestServicesWith(t, db, testutil.NewFakeQuoteProvider(), testutil.NewFakeNewsProvider(nil), advisor)
		user := testutil.NewUser().Build(t, db)
		goal := testutil.NewGoal(user.ID).Build(t, db)

		// Execute
		goals, err := svcs.Goals.GetGoals(ctx, testutil.SessionFor(user), dec("0"))

		// Assert
		require.NoError(t, err)
		require.Len(t, goals, 1)
		assert.Equal(t, 50, *goals[0].ProbabilityScore)
		assert.Nil(t, storedScore(t, svcs, user, goal.ID))
	})

	t.Run("unconfigured advisor makes no calls", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		advisor := testutil.NewFakeAdvisor().Unconfigured()
		svcs := testutil.NewTestServicesWith(t, db, testutil.NewFakeQuoteProvider(), testutil.NewFakeNewsProvider(nil), advisor)
		user := testutil.NewUser().Build(t, db)
		goal := testutil.NewGoal(user.ID).Build(t, db)

		goals, err := svcs.Goals.GetGoals(ctx, testutil.SessionFor(user), dec("0"))

		require.NoError(t, err)
		assert.Equal(t, 0, *goals[0].ProbabilityScore)
		assert.Equal(t, "AI configuration missing.", *goals[0].AIInsight)
		assert.Equal(t, 0, advisor.Calls())
		assert.Nil(t, storedScore(t, svcs, user, goal.ID))
	})

	t.Run("evaluates many goals and keeps order", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svcs := testutil.NewTestServices(t, db)
		user := testutil.NewUser().Build(t, db)
		base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		var ids []string
		for i := 0; i < 6; i++ {
			g := testutil.NewGoal(user.ID).WithCreatedAt(base.Add(time.Duration(i) * time.Hour)).Build(t, db)
			ids = append([]string{g.ID}, ids...)
		}

		goals, err := svcs.Goals.GetGoals(ctx, testutil.SessionFor(user), dec("0"))

		require.NoError(t, err)
		require.Len(t, goals, 6)
		for i, g := range goals {
			assert.Equal(t, ids[i], g.ID)
			assert.NotNil(t, g.ProbabilityScore)
		}
		assert.Equal(t, 6, svcs.Model.Calls())
	})
}

func TestGoalService_CreateGoal(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults icon and scores immediately", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svcs := testutil.NewTestServices(t, db)
		user := testutil.NewUser().Build(t, db)
		deadline := "2030-12-31"

		// Execute
		goal, err := svcs.Goals.CreateGoal(ctx, testutil.SessionFor(user), request.CreateGoalRequest{
			Name:          " Retirement ",
			TargetAmount:  dec("1000000"),
			CurrentAmount: dec("50000"),
			Deadline:      &deadline,
		}, dec("1000"))

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "Retirement", goal.Name)
		assert.Equal(t, model.DefaultGoalIcon, goal.Icon)
		require.NotNil(t, goal.Deadline)
		assert.Equal(t, "2030-12-31", goal.Deadline.Format("2006-01-02"))
		require.NotNil(t, goal.ProbabilityScore)
		assert.Equal(t, 80, *goal.ProbabilityScore)
		assert.Contains(t, svcs.Model.Prompts()[0], "Annual Contribution (Est): $12000")

		stored := storedScore(t, svcs, user, goal.ID)
		require.NotNil(t, stored)
		assert.Equal(t, 80, *stored)
	})

	t.Run("invalid deadline is rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svcs := testutil.NewTestServices(t, db)
		user := testutil.NewUser().Build(t, db)
		deadline := "next year"

		_, err := svcs.Goals.CreateGoal(ctx, testutil.SessionFor(user), request.CreateGoalRequest{
			Name:         "Trip",
			TargetAmount: dec("3000"),
			Deadline:     &deadline,
		}, dec("0"))

		assert.Error(t, err)
		testutil.AssertRowCount(t, db, "goals", 0)
	})
}

func TestGoalService_UpdateGoal(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	svcs := testutil.NewTestServices(t, db)
	user := testutil.NewUser().Build(t, db)
	goal := testutil.NewGoal(user.ID).
		WithDeadline(time.Date(2028, 1, 1, 0, 0, 0, 0, time.UTC)).
		WithScore(60, "Fine.").
		Build(t, db)
	sess := testutil.SessionFor(user)

	t.Run("changes only provided fields and keeps the score", func(t *testing.T) {
		current := dec("9000")

		updated, err := svcs.Goals.UpdateGoal(ctx, sess, goal.ID, request.UpdateGoalRequest{CurrentAmount: &current})

		require.NoError(t, err)
		assert.Equal(t, goal.Name, updated.Name)
		assert.True(t, updated.CurrentAmount.Equal(current))
		assert.Equal(t, 60, *updated.ProbabilityScore)
		assert.NotNil(t, updated.Deadline)
	})

	t.Run("empty deadline clears it", func(t *testing.T) {
		empty := ""

		updated, err := svcs.Goals.UpdateGoal(ctx, sess, goal.ID, request.UpdateGoalRequest{Deadline: &empty})

		require.NoError(t, err)
		assert.Nil(t, updated.Deadline)
		stored, err := svcs.Goals.GetGoal(ctx, sess, goal.ID)
		require.NoError(t, err)
		assert.Nil(t, stored.Deadline)
	})

	t.Run("unknown goal", func(t *testing.T) {
		_, err := svcs.Goals.UpdateGoal(ctx, sess, testutil.MakeID(), request.UpdateGoalRequest{})
		assert.ErrorIs(t, err, apperrors.ErrGoalNotFound)
	})
}

func TestGoalService_ReanalyzeGoal(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	advisor := testutil.NewFakeAdvisor().WithJSONReply(`{"score": 91, "insight": "Ahead.", "recommendation": "Relax."}`)
	svcs := testutil.NewTestServicesWith(t, db, testutil.NewFakeQuoteProvider(), testutil.NewFakeNewsProvider(nil), advisor)
	user := testutil.NewUser().Build(t, db)
	goal := testutil.NewGoal(user.ID).WithScore(20, "Behind.").Build(t, db)

	updated, analysis, err := svcs.Goals.ReanalyzeGoal(ctx, testutil.SessionFor(user), goal.ID, dec("100"))

	require.NoError(t, err)
	assert.Equal(t, 91, analysis.Score)
	assert.Equal(t, "Relax.", analysis.Recommendation)
	assert.Equal(t, 91, *updated.ProbabilityScore)
	assert.Equal(t, 91, *storedScore(t, svcs, user, goal.ID))
	assert.Equal(t, 1, advisor.Calls())
}

func TestGoalService_DeleteGoal(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	svcs := testutil.NewTestServices(t, db)
	owner := testutil.NewUser().Build(t, db)
	other := testutil.NewUser().Build(t, db)
	goal := testutil.NewGoal(owner.ID).Build(t, db)

	err := svcs.Goals.DeleteGoal(ctx, testutil.SessionFor(other), goal.ID)
	assert.ErrorIs(t, err, apperrors.ErrGoalNotFound)

	require.NoError(t, svcs.Goals.DeleteGoal(ctx, testutil.SessionFor(owner), goal.ID))
	_, err = repository.NewGoalRepository(db).GetGoal(ctx, owner.ID, goal.ID)
	assert.ErrorIs(t, err, apperrors.ErrGoalNotFound)
}
