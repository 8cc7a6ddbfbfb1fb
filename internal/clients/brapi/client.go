// Package brapi provides a client for the brapi.dev B3 quote API
package brapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/andresilva/b3folio/internal/common"
	"github.com/andresilva/b3folio/internal/interfaces"
	"github.com/andresilva/b3folio/internal/models"
)

const (
	DefaultBaseURL   = "https://brapi.dev/api"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 10 // requests per second
)

// Compile-time interface check
var _ interfaces.QuoteClient = (*Client)(nil)

// Client implements the QuoteClient interface
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new brapi client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("brapi API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// quoteResponse mirrors the brapi /quote payload.
type quoteResponse struct {
	Results []struct {
		Symbol                     string  `json:"symbol"`
		LongName                   string  `json:"longName"`
		Currency                   string  `json:"currency"`
		RegularMarketPrice         float64 `json:"regularMarketPrice"`
		RegularMarketChange        float64 `json:"regularMarketChange"`
		RegularMarketChangePercent float64 `json:"regularMarketChangePercent"`
		RegularMarketPreviousClose float64 `json:"regularMarketPreviousClose"`
		HistoricalDataPrice        []struct {
			Date     int64   `json:"date"`
			Close    float64 `json:"close"`
			AdjClose float64 `json:"adjustedClose"`
		} `json:"historicalDataPrice"`
	} `json:"results"`
	Error   bool   `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// get performs a rate-limited GET request
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	if c.apiKey != "" {
		params.Set("token", c.apiKey)
	}

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("url", c.baseURL+path).Msg("brapi API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// GetQuote fetches the latest quote for a single B3 ticker.
func (c *Client) GetQuote(ctx context.Context, ticker string) (*models.Quote, error) {
	quotes, err := c.GetQuotes(ctx, []string{ticker})
	if err != nil {
		return nil, err
	}
	if len(quotes) == 0 {
		return nil, fmt.Errorf("no quote returned for %s", ticker)
	}
	return quotes[0], nil
}

// GetQuotes fetches quotes for multiple tickers in one request.
func (c *Client) GetQuotes(ctx context.Context, tickers []string) ([]*models.Quote, error) {
	if len(tickers) == 0 {
		return nil, nil
	}

	path := "/quote/" + strings.Join(tickers, ",")

	var resp quoteResponse
	if err := c.get(ctx, path, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Error {
		return nil, fmt.Errorf("brapi quote failed: %s", resp.Message)
	}

	now := time.Now()
	quotes := make([]*models.Quote, 0, len(resp.Results))
	for _, r := range resp.Results {
		quotes = append(quotes, &models.Quote{
			Ticker:        r.Symbol,
			Name:          r.LongName,
			Price:         r.RegularMarketPrice,
			Change:        r.RegularMarketChange,
			ChangePct:     r.RegularMarketChangePercent,
			PreviousClose: r.RegularMarketPreviousClose,
			Currency:      r.Currency,
			UpdatedAt:     now,
		})
	}
	return quotes, nil
}

// GetMonthlyHistory returns monthly closes for a ticker between fromMonth and
// toMonth inclusive ("2006-01" format), oldest first. brapi returns daily or
// monthly bars depending on range; bars are bucketed by month keeping the
// last close of each.
func (c *Client) GetMonthlyHistory(ctx context.Context, ticker string, fromMonth, toMonth string) ([]models.MonthlyClose, error) {
	params := url.Values{}
	params.Set("range", "max")
	params.Set("interval", "1mo")

	path := "/quote/" + ticker

	var resp quoteResponse
	if err := c.get(ctx, path, params, &resp); err != nil {
		return nil, err
	}
	if resp.Error || len(resp.Results) == 0 {
		return nil, fmt.Errorf("brapi history failed for %s: %s", ticker, resp.Message)
	}

	byMonth := map[string]float64{}
	var months []string
	for _, bar := range resp.Results[0].HistoricalDataPrice {
		month := time.Unix(bar.Date, 0).UTC().Format("2006-01")
		if fromMonth != "" && month < fromMonth {
			continue
		}
		if toMonth != "" && month > toMonth {
			continue
		}
		px := bar.AdjClose
		if px == 0 {
			px = bar.Close
		}
		if _, seen := byMonth[month]; !seen {
			months = append(months, month)
		}
		byMonth[month] = px // last bar in the month wins
	}

	history := make([]models.MonthlyClose, 0, len(months))
	for _, m := range months {
		history = append(history, models.MonthlyClose{Month: m, Close: byMonth[m]})
	}
	return history, nil
}
