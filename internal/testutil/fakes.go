package testutil

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/finpilot-backend/internal/model"
)

// FakeQuoteProvider returns canned quote results per symbol.
// Symbols without an entry report model.QuoteStatusNotFound.
type FakeQuoteProvider struct {
	mu      sync.Mutex
	results map[string]model.QuoteResult
	calls   atomic.Int64
}

// NewFakeQuoteProvider creates an empty FakeQuoteProvider.
func NewFakeQuoteProvider() *FakeQuoteProvider {
	return &FakeQuoteProvider{results: make(map[string]model.QuoteResult)}
}

// WithPrice registers a successful quote for symbol.
func (f *FakeQuoteProvider) WithPrice(symbol, price, changePercent string) *FakeQuoteProvider {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results[symbol] = model.QuoteResult{
		Status: model.QuoteStatusOK,
		Quote: &model.Quote{
			Symbol:        symbol,
			Price:         decimal.RequireFromString(price),
			ChangePercent: decimal.RequireFromString(changePercent),
		},
	}
	return f
}

// WithStatus registers a failed lookup for symbol.
func (f *FakeQuoteProvider) WithStatus(symbol string, status model.QuoteStatus) *FakeQuoteProvider {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results[symbol] = model.QuoteResult{Status: status}
	return f
}

// GetQuote implements service.QuoteProvider.
func (f *FakeQuoteProvider) GetQuote(_ context.Context, symbol string) model.QuoteResult {
	f.calls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.results[symbol]; ok {
		return r
	}
	return model.QuoteResult{Status: model.QuoteStatusNotFound}
}

// Calls returns how many lookups were made.
func (f *FakeQuoteProvider) Calls() int {
	return int(f.calls.Load())
}

// FakeNewsProvider serves a fixed list of news items, optionally failing.
type FakeNewsProvider struct {
	mu      sync.Mutex
	items   []model.NewsItem
	err     error
	noKey   bool
	minIDs  []int64
	calls   atomic.Int64
	onFetch func()
	delay   time.Duration
}

// NewFakeNewsProvider creates a FakeNewsProvider returning items.
func NewFakeNewsProvider(items []model.NewsItem) *FakeNewsProvider {
	return &FakeNewsProvider{items: items}
}

// WithError makes every fetch fail with err.
func (f *FakeNewsProvider) WithError(err error) *FakeNewsProvider {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
	return f
}

// WithoutAPIKey makes the provider report a missing API key.
func (f *FakeNewsProvider) WithoutAPIKey() *FakeNewsProvider {
	f.noKey = true
	return f
}

// WithDelay makes every fetch take d, or fail early with the context error
// when the caller's context ends first.
func (f *FakeNewsProvider) WithDelay(d time.Duration) *FakeNewsProvider {
	f.delay = d
	return f
}

// OnFetch registers a hook run at the start of every fetch.
func (f *FakeNewsProvider) OnFetch(fn func()) *FakeNewsProvider {
	f.onFetch = fn
	return f
}

// HasAPIKey implements service.NewsProvider.
func (f *FakeNewsProvider) HasAPIKey() bool {
	return !f.noKey
}

// GetNews implements service.NewsProvider.
func (f *FakeNewsProvider) GetNews(ctx context.Context, _ model.NewsCategory, minID int64) ([]model.NewsItem, error) {
	f.calls.Add(1)
	if f.onFetch != nil {
		f.onFetch()
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.minIDs = append(f.minIDs, minID)
	if f.err != nil {
		return nil, f.err
	}
	out := make([]model.NewsItem, len(f.items))
	copy(out, f.items)
	return out, nil
}

// Calls returns how many fetches were made.
func (f *FakeNewsProvider) Calls() int {
	return int(f.calls.Load())
}

// MinIDs returns the minID of every fetch in call order.
func (f *FakeNewsProvider) MinIDs() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int64(nil), f.minIDs...)
}

// MakeNewsItems builds n news items with descending ids starting at firstID.
func MakeNewsItems(category model.NewsCategory, firstID int64, n int) []model.NewsItem {
	items := make([]model.NewsItem, n)
	base := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC).Unix()
	for i := range items {
		id := firstID - int64(i)
		items[i] = model.NewsItem{
			ID:       id,
			Category: string(category),
			Datetime: base - int64(i*60),
			Headline: "Headline " + strconv.FormatInt(id, 10),
			Source:   "Test Wire",
			Summary:  "Summary",
			URL:      "https://news.example.com/" + strconv.FormatInt(id, 10),
		}
	}
	return items
}

// FakeAdvisor returns a canned model answer and counts calls.
type FakeAdvisor struct {
	mu         sync.Mutex
	configured bool
	jsonReply  string
	textReply  string
	err        error
	prompts    []string
	calls      atomic.Int64
}

// NewFakeAdvisor creates a configured FakeAdvisor.
func NewFakeAdvisor() *FakeAdvisor {
	return &FakeAdvisor{
		configured: true,
		jsonReply:  `{"score": 80, "insight": "On track.", "recommendation": "Keep saving."}`,
		textReply:  "You are doing fine.",
	}
}

// Unconfigured makes the advisor report a missing API key.
func (f *FakeAdvisor) Unconfigured() *FakeAdvisor {
	f.configured = false
	return f
}

// WithJSONReply sets the answer to GenerateJSON.
func (f *FakeAdvisor) WithJSONReply(reply string) *FakeAdvisor {
	f.jsonReply = reply
	return f
}

// WithTextReply sets the answer to GenerateText.
func (f *FakeAdvisor) WithTextReply(reply string) *FakeAdvisor {
	f.textReply = reply
	return f
}

// WithError makes every generation fail with err.
func (f *FakeAdvisor) WithError(err error) *FakeAdvisor {
	f.err = err
	return f
}

// Configured implements service.Advisor.
func (f *FakeAdvisor) Configured() bool {
	return f.configured
}

// GenerateJSON implements service.Advisor.
func (f *FakeAdvisor) GenerateJSON(_ context.Context, prompt string) (string, error) {
	return f.generate(prompt, f.jsonReply)
}

// GenerateText implements service.Advisor.
func (f *FakeAdvisor) GenerateText(_ context.Context, prompt string) (string, error) {
	return f.generate(prompt, f.textReply)
}

func (f *FakeAdvisor) generate(prompt, reply string) (string, error) {
	f.calls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return reply, nil
}

// Calls returns how many generations were requested.
func (f *FakeAdvisor) Calls() int {
	return int(f.calls.Load())
}

// Prompts returns every prompt received, in call order.
func (f *FakeAdvisor) Prompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.prompts...)
}

// Clock is a manually advanced time source.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock creates a Clock stopped at now.
func NewClock(now time.Time) *Clock {
	return &Clock{now: now}
}

// Now returns the current fake time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// FinnhubServer is an httptest server speaking the quote and news endpoints.
//
// Example usage:
//
//	srv := testutil.NewFinnhubServer(t).
//	    WithQuote("AAPL", `{"c":200,"d":5,"dp":2.56,"h":201,"l":195,"o":196,"pc":195,"t":1700000000}`)
//	client := finnhub.NewClient("test-key", srv.URL(), zerolog.Nop())
type FinnhubServer struct {
	server     *httptest.Server
	mu         sync.Mutex
	quotes     map[string]string
	news       []model.NewsItem
	status     int
	quoteCalls atomic.Int64
	newsCalls  atomic.Int64
}

// NewFinnhubServer starts a FinnhubServer that is closed when the test ends.
func NewFinnhubServer(t *testing.T) *FinnhubServer {
	t.Helper()

	f := &FinnhubServer{quotes: make(map[string]string), status: http.StatusOK}

	mux := http.NewServeMux()
	mux.HandleFunc("/quote", f.handleQuote)
	mux.HandleFunc("/news", f.handleNews)
	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)

	return f
}

// URL is the base URL to pass to finnhub.NewClient.
func (f *FinnhubServer) URL() string {
	return f.server.URL
}

// WithQuote registers the raw JSON body returned for symbol.
func (f *FinnhubServer) WithQuote(symbol, body string) *FinnhubServer {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.quotes[symbol] = body
	return f
}

// WithNews sets the items returned by the news endpoint.
func (f *FinnhubServer) WithNews(items []model.NewsItem) *FinnhubServer {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.news = items
	return f
}

// WithStatus makes every endpoint answer with status.
func (f *FinnhubServer) WithStatus(status int) *FinnhubServer {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = status
	return f
}

// QuoteCalls returns how many quote requests were served.
func (f *FinnhubServer) QuoteCalls() int {
	return int(f.quoteCalls.Load())
}

// NewsCalls returns how many news requests were served.
func (f *FinnhubServer) NewsCalls() int {
	return int(f.newsCalls.Load())
}

func (f *FinnhubServer) handleQuote(w http.ResponseWriter, r *http.Request) {
	f.quoteCalls.Add(1)
	f.mu.Lock()
	status := f.status
	body, ok := f.quotes[r.URL.Query().Get("symbol")]
	f.mu.Unlock()

	if status != http.StatusOK {
		w.WriteHeader(status)
		return
	}
	if !ok {
		// Unknown symbols are answered with an all-zero quote
		body = `{"c":0,"d":null,"dp":null,"h":0,"l":0,"o":0,"pc":0,"t":0}`
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

func (f *FinnhubServer) handleNews(w http.ResponseWriter, r *http.Request) {
	f.newsCalls.Add(1)
	f.mu.Lock()
	status := f.status
	items := f.news
	f.mu.Unlock()

	if status != http.StatusOK {
		w.WriteHeader(status)
		return
	}

	var minID int64
	if v := r.URL.Query().Get("minId"); v != "" {
		minID, _ = strconv.ParseInt(v, 10, 64)
	}

	out := make([]model.NewsItem, 0, len(items))
	for _, item := range items {
		if item.ID > minID {
			out = append(out, item)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}
