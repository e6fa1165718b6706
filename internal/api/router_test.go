package api_test

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/finpilot-backend/internal/api"
	"github.com/ndewijer/finpilot-backend/internal/config"
	"github.com/ndewijer/finpilot-backend/internal/session"
	"github.com/ndewijer/finpilot-backend/internal/testutil"
)

func newTestRouter(t *testing.T) (http.Handler, *testutil.Services, *sql.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	svcs := testutil.NewTestServices(t, db)
	cfg := &config.Config{CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost:5173"}}}

	router := api.NewRouter(api.Services{
		System:   svcs.System,
		Users:    svcs.Users,
		Stocks:   svcs.Stocks,
		Holdings: svcs.Holdings,
		Goals:    svcs.Goals,
		News:     svcs.News,
		Advisor:  svcs.Advisor,
	}, svcs.Sessions, cfg, zerolog.Nop())
	return router, svcs, db
}

func TestRouter_PublicRoutes(t *testing.T) {
	router, _, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/system/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("Content-Type"))
}

func TestRouter_ProtectedRoutesRequireSession(t *testing.T) {
	router, _, _ := newTestRouter(t)

	routes := []struct{ method, path string }{
		{http.MethodGet, "/api/auth/me"},
		{http.MethodGet, "/api/stocks"},
		{http.MethodGet, "/api/quote/AAPL"},
		{http.MethodGet, "/api/holdings"},
		{http.MethodGet, "/api/holdings/summary"},
		{http.MethodGet, "/api/goals"},
		{http.MethodGet, "/api/news"},
		{http.MethodPost, "/api/news/refresh"},
		{http.MethodGet, "/api/news/next-refresh"},
		{http.MethodPost, "/api/advisor/chat"},
	}

	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(rt.method, rt.path, nil))
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestRouter_AcceptsIssuedToken(t *testing.T) {
	router, svcs, db := newTestRouter(t)

	user := testutil.NewUser().Build(t, db)
	token, err := svcs.Sessions.Issue(session.Session{UserID: user.ID, Email: user.Email})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/holdings", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestRouter_InvalidUUIDIsRejected(t *testing.T) {
	router, svcs, db := newTestRouter(t)

	user := testutil.NewUser().Build(t, db)
	token, err := svcs.Sessions.Issue(session.Session{UserID: user.ID, Email: user.Email})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodDelete, "/api/goals/not-a-uuid", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
