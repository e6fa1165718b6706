package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/ndewijer/finpilot-backend/internal/model"
)

// newsRefreshTimeout bounds one run over all categories.
const newsRefreshTimeout = 2 * time.Minute

// NewsRefresher is the part of the news service the refresh job needs.
type NewsRefresher interface {
	DueForRefresh(ctx context.Context, category model.NewsCategory) bool
	RefreshMarketNews(ctx context.Context, category model.NewsCategory) []model.NewsItem
}

// NewsRefreshJob refetches every category whose cached page has reached its refresh time.
// Categories nobody has read yet are left alone.
type NewsRefreshJob struct {
	news       NewsRefresher
	categories []model.NewsCategory
	log        zerolog.Logger
}

// NewNewsRefreshJob creates a job covering all news categories.
func NewNewsRefreshJob(news NewsRefresher, log zerolog.Logger) *NewsRefreshJob {
	return &NewsRefreshJob{
		news:       news,
		categories: model.NewsCategories,
		log:        log.With().Str("job", "news_refresh").Logger(),
	}
}

// Name returns the job name
func (j *NewsRefreshJob) Name() string {
	return "news_refresh"
}

// Run refreshes the due categories one after another.
func (j *NewsRefreshJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), newsRefreshTimeout)
	defer cancel()

	refreshed := 0
	for _, category := range j.categories {
		if !j.news.DueForRefresh(ctx, category) {
			continue
		}
		items := j.news.RefreshMarketNews(ctx, category)
		refreshed++
		j.log.Debug().Str("category", string(category)).Int("items", len(items)).Msg("Category refreshed")
	}

	if refreshed > 0 {
		j.log.Info().Int("categories", refreshed).Msg("News refresh completed")
	}
	return ctx.Err()
}
