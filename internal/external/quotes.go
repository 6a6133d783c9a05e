package external

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kjannette/holdings-tracker/internal/httputil"
)

// ErrQuoteUnavailable matches every *QuoteError.
var ErrQuoteUnavailable = errors.New("quote unavailable")

// QuoteError reports a failed price lookup for one ticker.
type QuoteError struct {
	Ticker string
	Err    error
}

func (e *QuoteError) Error() string {
	return fmt.Sprintf("quote unavailable for %s: %v", e.Ticker, e.Err)
}

func (e *QuoteError) Unwrap() error { return e.Err }

func (e *QuoteError) Is(target error) bool { return target == ErrQuoteUnavailable }

type QuoteOptions struct {
	BaseURL     string
	APIKey      string
	Timeout     time.Duration
	MaxAttempts int
}

// QuoteClient resolves a ticker to its current price with
// GET {BaseURL}/stock/{ticker}?apikey={APIKey}, expecting {"price": <number>}.
type QuoteClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	retry      httputil.RetryConfig
	log        *zap.Logger
}

func NewQuoteClient(opts QuoteOptions, log *zap.Logger) *QuoteClient {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	attempts := opts.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	if log == nil {
		log = zap.NewNop()
	}

	c := &QuoteClient{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		apiKey:     opts.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		log:        log.Named("quotes"),
		retry: httputil.RetryConfig{
			MaxAttempts: attempts,
			BaseDelay:   250 * time.Millisecond,
			MaxDelay:    2 * time.Second,
		},
	}
	c.retry.OnRetry = func(attempt int, err error, delay time.Duration) {
		c.log.Warn("quote request failed, retrying",
			zap.Int("attempt", attempt),
			zap.Int("maxAttempts", attempts),
			zap.Duration("delay", delay),
			zap.Error(err))
	}
	return c
}

// GetPrice performs one lookup. Every failure is a *QuoteError.
func (c *QuoteClient) GetPrice(ctx context.Context, ticker string) (float64, error) {
	if strings.TrimSpace(ticker) == "" {
		return 0, &QuoteError{Ticker: ticker, Err: errors.New("empty ticker")}
	}

	endpoint := c.quoteURL(ticker)
	resp, err := httputil.Do(ctx, c.httpClient, c.retry, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		return req, nil
	})
	if err != nil {
		return 0, &QuoteError{Ticker: ticker, Err: fmt.Errorf("fetch: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.log.Debug("quote provider returned non-200",
			zap.String("ticker", ticker),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body))
		return 0, &QuoteError{Ticker: ticker, Err: fmt.Errorf("provider returned status %d", resp.StatusCode)}
	}

	var data struct {
		Price *float64 `json:"price"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return 0, &QuoteError{Ticker: ticker, Err: fmt.Errorf("decode: %w", err)}
	}

	if data.Price == nil {
		return 0, &QuoteError{Ticker: ticker, Err: errors.New("response has no price field")}
	}
	price := *data.Price
	if math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		return 0, &QuoteError{Ticker: ticker, Err: fmt.Errorf("invalid price: %f", price)}
	}

	return price, nil
}

func (c *QuoteClient) quoteURL(ticker string) string {
	q := url.Values{}
	q.Set("apikey", c.apiKey)
	return c.baseURL + "/stock/" + url.PathEscape(ticker) + "?" + q.Encode()
}
