package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ndewijer/finpilot-backend/internal/model"
	"github.com/ndewijer/finpilot-backend/internal/testutil"
)

func TestGoalHandler_Goals(t *testing.T) {
	// WHY: listing goals is where unscored goals get their first analysis.
	// The score must be stored so the next listing does not call the model.
	t.Run("scores unscored goals once", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svcs := testutil.NewTestServices(t, db)
		handler := NewGoalHandler(svcs.Goals)
		user := testutil.NewUser().Build(t, db)
		testutil.NewGoal(user.ID).WithName("House").WithTarget("50000").Build(t, db)

		// Execute
		for range 2 {
			req := testutil.WithSession(
				testutil.NewRequestWithQueryParams(http.MethodGet, "/api/goals", map[string]string{"monthly_contribution": "500"}),
				testutil.SessionFor(user),
			)
			w := httptest.NewRecorder()
			handler.Goals(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
			}
			goals := decodeBody[[]model.Goal](t, w)
			if len(goals) != 1 || goals[0].ProbabilityScore == nil || *goals[0].ProbabilityScore != 80 {
				t.Fatalf("Expected one goal scored 80, got %+v", goals)
			}
		}

		// Assert
		if svcs.Model.Calls() != 1 {
			t.Errorf("Expected 1 model call, got %d", svcs.Model.Calls())
		}
	})

	t.Run("returns 400 for an invalid monthly contribution", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := NewGoalHandler(testutil.NewTestServices(t, db).Goals)
		user := testutil.NewUser().Build(t, db)

		for _, value := range []string{"abc", "-5"} {
			req := testutil.WithSession(
				testutil.NewRequestWithQueryParams(http.MethodGet, "/api/goals", map[string]string{"monthly_contribution": value}),
				testutil.SessionFor(user),
			)
			w := httptest.NewRecorder()
			handler.Goals(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("monthly_contribution=%s: expected 400, got %d", value, w.Code)
			}
		}
	})
}

func TestGoalHandler_CreateGoal(t *testing.T) {
	t.Run("creates and analyzes a goal", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svcs := testutil.NewTestServices(t, db)
		handler := NewGoalHandler(svcs.Goals)
		user := testutil.NewUser().Build(t, db)
		body := map[string]any{"name": "Car", "target_amount": "20000", "deadline": "2027-06-30"}

		req := testutil.WithSession(testutil.NewJSONRequest(t, http.MethodPost, "/api/goals?monthly_contribution=1000", body), testutil.SessionFor(user))
		w := httptest.NewRecorder()

		handler.CreateGoal(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
		}
		goal := decodeBody[model.Goal](t, w)
		if goal.Icon != "🎯" {
			t.Errorf("Expected default icon, got '%s'", goal.Icon)
		}
		if goal.AIInsight == nil || *goal.AIInsight != "On track." {
			t.Errorf("Expected stored insight, got %v", goal.AIInsight)
		}
		prompts := svcs.Model.Prompts()
		if len(prompts) != 1 || !strings.Contains(prompts[0], "Annual Contribution (Est): $12000") {
			t.Errorf("Expected prompt with annual contribution, got %v", prompts)
		}
	})

	t.Run("returns 400 for a bad deadline", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := NewGoalHandler(testutil.NewTestServices(t, db).Goals)
		user := testutil.NewUser().Build(t, db)
		body := map[string]any{"name": "Car", "target_amount": "20000", "deadline": "30/06/2027"}

		req := testutil.WithSession(testutil.NewJSONRequest(t, http.MethodPost, "/api/goals", body), testutil.SessionFor(user))
		w := httptest.NewRecorder()

		handler.CreateGoal(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
		testutil.AssertRowCount(t, db, "goals", 0)
	})
}

func TestGoalHandler_UpdateGoal(t *testing.T) {
	t.Run("changes only provided fields", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := NewGoalHandler(testutil.NewTestServices(t, db).Goals)
		user := testutil.NewUser().Build(t, db)
		goal := testutil.NewGoal(user.ID).WithName("House").WithTarget("50000").WithScore(70, "Fine.").Build(t, db)

		req := testutil.WithSession(testutil.NewJSONRequest(t, http.MethodPut, "/api/goals/"+goal.ID, map[string]any{"name": "Bigger house"}), testutil.SessionFor(user))
		req = testutil.WithURLParams(req, map[string]string{"uuid": goal.ID})
		w := httptest.NewRecorder()

		handler.UpdateGoal(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}
		updated := decodeBody[model.Goal](t, w)
		if updated.Name != "Bigger house" || updated.TargetAmount.String() != "50000" {
			t.Errorf("Unexpected goal after update: %+v", updated)
		}
		if updated.ProbabilityScore == nil || *updated.ProbabilityScore != 70 {
			t.Errorf("Expected score kept at 70, got %v", updated.ProbabilityScore)
		}
	})

	t.Run("returns 404 for a missing goal", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := NewGoalHandler(testutil.NewTestServices(t, db).Goals)
		user := testutil.NewUser().Build(t, db)
		id := testutil.MakeID()

		req := testutil.WithSession(testutil.NewJSONRequest(t, http.MethodPut, "/api/goals/"+id, map[string]any{"name": "x"}), testutil.SessionFor(user))
		req = testutil.WithURLParams(req, map[string]string{"uuid": id})
		w := httptest.NewRecorder()

		handler.UpdateGoal(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", w.Code)
		}
	})
}

func TestGoalHandler_DeleteGoal(t *testing.T) {
	t.Run("deletes the goal", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := NewGoalHandler(testutil.NewTestServices(t, db).Goals)
		user := testutil.NewUser().Build(t, db)
		goal := testutil.NewGoal(user.ID).Build(t, db)

		req := testutil.WithSession(httptest.NewRequest(http.MethodDelete, "/api/goals/"+goal.ID, nil), testutil.SessionFor(user))
		req = testutil.WithURLParams(req, map[string]string{"uuid": goal.ID})
		w := httptest.NewRecorder()

		handler.DeleteGoal(w, req)

		if w.Code != http.StatusNoContent {
			t.Fatalf("Expected 204, got %d: %s", w.Code, w.Body.String())
		}
		testutil.AssertRowCount(t, db, "goals", 0)
	})
}

func TestGoalHandler_AnalyzeGoal(t *testing.T) {
	t.Run("rescores an already scored goal", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svcs := testutil.NewTestServices(t, db)
		svcs.Model.WithJSONReply(`{"score": 35, "insight": "Behind.", "recommendation": "Save more."}`)
		handler := NewGoalHandler(svcs.Goals)
		user := testutil.NewUser().Build(t, db)
		goal := testutil.NewGoal(user.ID).WithScore(90, "Great.").Build(t, db)

		req := testutil.WithSession(httptest.NewRequest(http.MethodPost, "/api/goals/"+goal.ID+"/analyze", nil), testutil.SessionFor(user))
		req = testutil.WithURLParams(req, map[string]string{"uuid": goal.ID})
		w := httptest.NewRecorder()

		handler.AnalyzeGoal(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}
		resp := decodeBody[AnalyzeResponse](t, w)
		if resp.Analysis.Score != 35 || resp.Analysis.Recommendation != "Save more." {
			t.Errorf("Unexpected analysis: %+v", resp.Analysis)
		}
		if resp.Goal.ProbabilityScore == nil || *resp.Goal.ProbabilityScore != 35 {
			t.Errorf("Expected goal score 35, got %v", resp.Goal.ProbabilityScore)
		}
	})
}
