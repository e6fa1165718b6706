package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/ndewijer/finpilot-backend/internal/model"
	"github.com/ndewijer/finpilot-backend/internal/repository"
)

const (
	// NewsCacheKeyPrefix prefixes the per-category cache key.
	NewsCacheKeyPrefix = "finnhub_news_cache"

	// NewsCacheDuration is how long a stored page is served without refetching.
	NewsCacheDuration = 6 * time.Hour

	// NewsPageSize caps the number of items kept per category.
	NewsPageSize = 12

	// NewsFetchTimeout bounds a shared first-page fetch and its store.
	NewsFetchTimeout = 10 * time.Second
)

// NewsCacheKey returns the storage key of a category.
func NewsCacheKey(category model.NewsCategory) string {
	return NewsCacheKeyPrefix + "_" + string(category)
}

// IsValid reports whether entry may be served for category at now.
// An entry is valid while it is younger than NewsCacheDuration and was stored for the same category.
func IsValid(entry model.NewsCacheEntry, category model.NewsCategory, now time.Time) bool {
	return entry.Category == category && now.Sub(entry.Timestamp) < NewsCacheDuration
}

// NewsService serves market news through a persisted per-category cache.
//
// Reads never fail: provider and storage problems are logged and degrade to an
// empty page. A failed fetch leaves the previously stored entry in place.
type NewsService struct {
	cacheRepo *repository.NewsCacheRepository
	provider  NewsProvider
	now       func() time.Time
	group     singleflight.Group
	log       zerolog.Logger
}

// NewNewsService creates a new NewsService using the wall clock.
func NewNewsService(cacheRepo *repository.NewsCacheRepository, provider NewsProvider, log zerolog.Logger) *NewsService {
	return &NewsService{
		cacheRepo: cacheRepo,
		provider:  provider,
		now:       time.Now,
		log:       log.With().Str("component", "news").Logger(),
	}
}

// WithClock replaces the clock used for timestamps and freshness checks.
func (s *NewsService) WithClock(now func() time.Time) *NewsService {
	s.now = now
	return s
}

// GetMarketNews returns up to NewsPageSize items of a category.
//
// With minID set the call is a pagination request: it always goes to the
// provider and its result is never stored. Otherwise a fresh cached page is
// returned without network access, and a missing or stale page is fetched and stored.
//
// Parameters:
//   - ctx: request context, propagated into the provider call
//   - category: news category
//   - minID: optional lower bound on item ids (pagination)
//
// Returns:
//   - []model.NewsItem: the page, empty when nothing could be obtained
func (s *NewsService) GetMarketNews(ctx context.Context, category model.NewsCategory, minID *int64) []model.NewsItem {
	if minID != nil {
		items, err := s.fetch(ctx, category, *minID)
		if err != nil {
			return []model.NewsItem{}
		}
		return items
	}

	if entry, ok := s.load(ctx, category); ok && IsValid(entry, category, s.now()) {
		return entry.Data
	}

	return s.fetchAndStore(ctx, category)
}

// RefreshMarketNews ignores any cached page and performs one fetch for category.
// A successful fetch replaces the stored page; a failed one keeps it and returns empty.
func (s *NewsService) RefreshMarketNews(ctx context.Context, category model.NewsCategory) []model.NewsItem {
	s.log.Info().Str("category", string(category)).Msg("Refreshing market news")
	return s.fetchAndStore(ctx, category)
}

// NextRefreshTime returns when the stored page of category turns stale.
// The bool is false when nothing is stored.
func (s *NewsService) NextRefreshTime(ctx context.Context, category model.NewsCategory) (time.Time, bool) {
	entry, ok := s.load(ctx, category)
	if !ok {
		return time.Time{}, false
	}
	return entry.Timestamp.Add(NewsCacheDuration), true
}

// State reports whether category is empty, fresh or stale right now.
func (s *NewsService) State(ctx context.Context, category model.NewsCategory) model.CacheState {
	entry, ok := s.load(ctx, category)
	switch {
	case !ok:
		return model.CacheStateEmpty
	case IsValid(entry, category, s.now()):
		return model.CacheStateFresh
	default:
		return model.CacheStateStale
	}
}

// DueForRefresh reports whether a stored page exists and has reached its refresh time.
// Categories that were never fetched are not due.
func (s *NewsService) DueForRefresh(ctx context.Context, category model.NewsCategory) bool {
	next, ok := s.NextRefreshTime(ctx, category)
	return ok && !s.now().Before(next)
}

// ClearNewsCache removes the stored page of the given categories, or of all categories when none are given.
func (s *NewsService) ClearNewsCache(ctx context.Context, categories ...model.NewsCategory) error {
	if len(categories) == 0 {
		categories = model.NewsCategories
	}

	var errs []error
	for _, category := range categories {
		if err := s.cacheRepo.Delete(ctx, NewsCacheKey(category)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Feed bundles a page with its cache state and next refresh time for the API.
func (s *NewsService) Feed(ctx context.Context, category model.NewsCategory, items []model.NewsItem) model.NewsFeed {
	feed := model.NewsFeed{
		Category: category,
		Items:    items,
		State:    s.State(ctx, category),
	}
	if next, ok := s.NextRefreshTime(ctx, category); ok {
		feed.NextRefreshAt = &next
	}
	return feed
}

// load reads the stored entry of category. Unreadable entries count as missing.
func (s *NewsService) load(ctx context.Context, category model.NewsCategory) (model.NewsCacheEntry, bool) {
	entry, ok, err := s.cacheRepo.Get(ctx, NewsCacheKey(category))
	if err != nil {
		s.log.Warn().Err(err).Str("category", string(category)).Msg("Ignoring unreadable news cache entry")
		return model.NewsCacheEntry{}, false
	}
	return entry, ok
}

// fetchAndStore fetches the first page of category and stores it.
// Concurrent calls for one category share a single provider request. The shared
// request is detached from any one caller, so a caller that goes away only gets
// an empty page itself while the others still receive and store the result.
func (s *NewsService) fetchAndStore(ctx context.Context, category model.NewsCategory) []model.NewsItem {
	ch := s.group.DoChan(string(category), func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), NewsFetchTimeout)
		defer cancel()

		items, err := s.fetch(fetchCtx, category, 0)
		if err != nil {
			return []model.NewsItem{}, nil
		}

		entry := model.NewsCacheEntry{
			Data:      items,
			Timestamp: s.now(),
			Category:  category,
		}
		if err := s.cacheRepo.Put(fetchCtx, NewsCacheKey(category), entry); err != nil {
			s.log.Warn().Err(err).Str("category", string(category)).Msg("Failed to store news cache entry")
		}

		return items, nil
	})

	select {
	case res := <-ch:
		return res.Val.([]model.NewsItem)
	case <-ctx.Done():
		s.log.Debug().Err(ctx.Err()).Str("category", string(category)).Msg("News read abandoned")
		return []model.NewsItem{}
	}
}

// fetch calls the provider and trims the result to NewsPageSize.
func (s *NewsService) fetch(ctx context.Context, category model.NewsCategory, minID int64) ([]model.NewsItem, error) {
	if !s.provider.HasAPIKey() {
		s.log.Debug().Str("category", string(category)).Msg("News provider not configured")
		return nil, errors.New("news provider not configured")
	}

	items, err := s.provider.GetNews(ctx, category, minID)
	if err != nil {
		s.log.Warn().Err(err).Str("category", string(category)).Int64("min_id", minID).Msg("Market news request failed")
		return nil, err
	}

	if items == nil {
		items = []model.NewsItem{}
	}
	if len(items) > NewsPageSize {
		items = items[:NewsPageSize]
	}
	return items, nil
}
