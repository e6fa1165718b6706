// Package finnhub is the client for the quote and market news provider.
package finnhub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ndewijer/finpilot-backend/internal/model"
)

// DefaultBaseURL is the public Finnhub REST endpoint.
const DefaultBaseURL = "https://finnhub.io/api/v1"

// RequestTimeout bounds every provider call.
const RequestTimeout = 10 * time.Second

// ErrNotConfigured is returned by calls made without an API key.
var ErrNotConfigured = errors.New("finnhub api key not configured")

// Client fetches quotes and market news from Finnhub.
// A client without an API key never touches the network.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	log        zerolog.Logger
}

// NewClient creates a new Finnhub client.
//
// Parameters:
//   - apiKey: Finnhub token; empty disables the client
//   - baseURL: API root, DefaultBaseURL when empty
//   - log: parent logger
//
// Returns:
//   - *Client: A new client instance ready for use
func NewClient(apiKey, baseURL string, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: RequestTimeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  strings.TrimSpace(apiKey),
		log:     log.With().Str("client", "finnhub").Logger(),
	}
}

// HasAPIKey reports whether a credential is configured. It performs no I/O.
func (c *Client) HasAPIKey() bool {
	return c.apiKey != ""
}

// GetQuote fetches the latest quote for symbol.
// It never returns an error: every failure is logged and folded into the result status.
//
// Parameters:
//   - ctx: request context, cancels the outbound call
//   - symbol: ticker symbol (e.g., "AAPL")
//
// Returns:
//   - model.QuoteResult: ok with a quote, or not_configured, unavailable, not_found
func (c *Client) GetQuote(ctx context.Context, symbol string) model.QuoteResult {
	if !c.HasAPIKey() {
		return model.QuoteResult{Status: model.QuoteStatusNotConfigured}
	}

	var q quoteResponse
	if err := c.get(ctx, "/quote", url.Values{"symbol": {symbol}}, &q); err != nil {
		c.log.Warn().Err(err).Str("symbol", symbol).Msg("Quote request failed")
		return model.QuoteResult{Status: model.QuoteStatusUnavailable}
	}

	if !q.Current.IsPositive() {
		c.log.Debug().Str("symbol", symbol).Msg("No price reported for symbol")
		return model.QuoteResult{Status: model.QuoteStatusNotFound}
	}

	return model.QuoteResult{
		Status: model.QuoteStatusOK,
		Quote: &model.Quote{
			Symbol:        symbol,
			Price:         q.Current,
			Change:        q.Change,
			ChangePercent: q.ChangePercent,
			High:          q.High,
			Low:           q.Low,
			Open:          q.Open,
			PreviousClose: q.PreviousClose,
		},
	}
}

// GetNews fetches market news for a category.
//
// Parameters:
//   - ctx: request context, cancels the outbound call
//   - category: news category
//   - minID: when positive, only items with a larger id are returned
//
// Returns:
//   - []model.NewsItem: items in provider order
//   - error: ErrNotConfigured without a key, or the transport/decode failure
func (c *Client) GetNews(ctx context.Context, category model.NewsCategory, minID int64) ([]model.NewsItem, error) {
	if !c.HasAPIKey() {
		return nil, ErrNotConfigured
	}

	params := url.Values{"category": {string(category)}}
	if minID > 0 {
		params.Set("minId", strconv.FormatInt(minID, 10))
	}

	var raw []newsResponse
	if err := c.get(ctx, "/news", params, &raw); err != nil {
		return nil, err
	}

	items := make([]model.NewsItem, len(raw))
	for i, n := range raw {
		items[i] = model.NewsItem{
			ID:       n.ID,
			Category: n.Category,
			Datetime: n.Datetime,
			Headline: n.Headline,
			Image:    n.Image,
			Related:  n.Related,
			Source:   n.Source,
			Summary:  n.Summary,
			URL:      n.URL,
		}
	}

	return items, nil
}

// get performs a single authenticated GET against the API and decodes the JSON body into out.
//
// Returns:
//   - error: If the request fails, the status is not 2xx, or the body is not valid JSON
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	params.Set("token", c.apiKey)
	endpoint := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// url.Error would leak the token through the request URL
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			return fmt.Errorf("finnhub %s: %w", path, urlErr.Err)
		}
		return fmt.Errorf("finnhub %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("failed to read finnhub response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("finnhub %s returned status %d", path, resp.StatusCode)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode finnhub response: %w", err)
	}

	return nil
}
