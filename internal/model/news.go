package model

import "time"

// NewsCategory is a market news feed offered by the news provider.
type NewsCategory string

const (
	NewsCategoryGeneral NewsCategory = "general"
	NewsCategoryForex   NewsCategory = "forex"
	NewsCategoryCrypto  NewsCategory = "crypto"
	NewsCategoryMerger  NewsCategory = "merger"
)

// NewsCategories lists the supported categories.
var NewsCategories = []NewsCategory{
	NewsCategoryGeneral,
	NewsCategoryForex,
	NewsCategoryCrypto,
	NewsCategoryMerger,
}

// IsValid reports whether the category is one of NewsCategories.
func (c NewsCategory) IsValid() bool {
	for _, cat := range NewsCategories {
		if c == cat {
			return true
		}
	}
	return false
}

// NewsItem is a single market news article.
type NewsItem struct {
	ID       int64  `json:"id" msgpack:"id"`
	Category string `json:"category" msgpack:"category"`
	Datetime int64  `json:"datetime" msgpack:"datetime"`
	Headline string `json:"headline" msgpack:"headline"`
	Image    string `json:"image" msgpack:"image"`
	Related  string `json:"related" msgpack:"related"`
	Source   string `json:"source" msgpack:"source"`
	Summary  string `json:"summary" msgpack:"summary"`
	URL      string `json:"url" msgpack:"url"`
}

// NewsCacheEntry is the persisted first page of a category.
type NewsCacheEntry struct {
	Data      []NewsItem   `msgpack:"data"`
	Timestamp time.Time    `msgpack:"timestamp"`
	Category  NewsCategory `msgpack:"category"`
}

// CacheState describes a category's cache from the point of view of a reader.
type CacheState string

const (
	CacheStateEmpty CacheState = "empty"
	CacheStateFresh CacheState = "fresh"
	CacheStateStale CacheState = "stale"
)

// NewsFeed is what the news endpoints return for a category.
type NewsFeed struct {
	Category      NewsCategory `json:"category"`
	Items         []NewsItem   `json:"items"`
	State         CacheState   `json:"cache_state"`
	NextRefreshAt *time.Time   `json:"next_refresh_at,omitempty"`
}
