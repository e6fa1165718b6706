package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/ndewijer/finpilot-backend/internal/api/request"
	"github.com/ndewijer/finpilot-backend/internal/api/response"
	"github.com/ndewijer/finpilot-backend/internal/apperrors"
	"github.com/ndewijer/finpilot-backend/internal/model"
	"github.com/ndewijer/finpilot-backend/internal/service"
	"github.com/ndewijer/finpilot-backend/internal/validation"
)

// NewsHandler handles market news requests.
type NewsHandler struct {
	newsService *service.NewsService
}

// NewNewsHandler creates a new NewsHandler with the provided service dependency.
func NewNewsHandler(newsService *service.NewsService) *NewsHandler {
	return &NewsHandler{
		newsService: newsService,
	}
}

// NextRefreshResponse tells the client when the cached page of a category turns stale.
type NextRefreshResponse struct {
	Category      model.NewsCategory `json:"category"`
	State         model.CacheState   `json:"cache_state"`
	NextRefreshAt *time.Time         `json:"next_refresh_at"`
}

// News handles GET requests for market news.
// Without min_id the cached first page is served; with min_id the provider is
// queried directly and nothing is cached.
//
// Endpoint: GET /api/news?category=&min_id=
// Response: 200 OK with model.NewsFeed (items may be empty when the provider is unavailable)
// Error: 400 Bad Request if category or min_id is invalid
func (h *NewsHandler) News(w http.ResponseWriter, r *http.Request) {
	q, err := request.ParseNewsQuery(r.URL.Query().Get("category"), r.URL.Query().Get("min_id"))
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidNewsCategory.Error(), err.Error())
		return
	}

	items := h.newsService.GetMarketNews(r.Context(), q.Category, q.MinID)
	response.RespondJSON(w, http.StatusOK, h.newsService.Feed(r.Context(), q.Category, items))
}

// Refresh handles POST requests to refetch a category regardless of the cache.
// The body is optional and defaults to the general category.
//
// Endpoint: POST /api/news/refresh
// Request Body: RefreshNewsRequest (optionally category)
// Response: 200 OK with model.NewsFeed
// Error: 400 Bad Request if the category is invalid
func (h *NewsHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	category := model.NewsCategoryGeneral

	req, err := parseJSON[request.RefreshNewsRequest](r)
	switch {
	case errors.Is(err, errEmptyBody):
		// no body: refresh the default category
	case err != nil:
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	default:
		if err := validation.ValidateRefreshNews(req); err != nil {
			respondValidation(w, err)
			return
		}
		if req.Category != "" {
			category = model.NewsCategory(req.Category)
		}
	}

	items := h.newsService.RefreshMarketNews(r.Context(), category)
	response.RespondJSON(w, http.StatusOK, h.newsService.Feed(r.Context(), category, items))
}

// NextRefresh handles GET requests for the refresh time of a category.
//
// Endpoint: GET /api/news/next-refresh?category=
// Response: 200 OK with NextRefreshResponse; next_refresh_at is null when nothing is cached
// Error: 400 Bad Request if the category is invalid
func (h *NewsHandler) NextRefresh(w http.ResponseWriter, r *http.Request) {
	q, err := request.ParseNewsQuery(r.URL.Query().Get("category"), "")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidNewsCategory.Error(), err.Error())
		return
	}

	resp := NextRefreshResponse{
		Category: q.Category,
		State:    h.newsService.State(r.Context(), q.Category),
	}
	if next, ok := h.newsService.NextRefreshTime(r.Context(), q.Category); ok {
		resp.NextRefreshAt = &next
	}

	response.RespondJSON(w, http.StatusOK, resp)
}
