package coingecko

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"FinCast/internal/domain/models"
	drepo "FinCast/internal/domain/repository"
	"FinCast/internal/service/ratelimit"
	"FinCast/pkg/http"
	"FinCast/pkg/logger"
	"FinCast/pkg/util"
)

const (
	DefaultBaseURL = "https://api.coingecko.com/api/v3"
	demoKeyHeader  = "x-cg-demo-api-key"
	limiterKey     = "coingecko"
)

// Client fetches daily price history from the CoinGecko market_chart endpoint.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *ratelimit.Limiter
	burst   float64
	perSec  float64
	log     *logger.Logger
}

var _ drepo.HistoryFetcher = (*Client)(nil)

// Option configures Client.
type Option func(*options)

type options struct {
	baseURL       string
	apiKey        string
	timeout       time.Duration
	ratePerMinute float64
	burst         float64
	limiter       *ratelimit.Limiter
	log           *logger.Logger
	httpOpts      []http.ClientOption
}

// WithBaseURL overrides the API root.
func WithBaseURL(u string) Option {
	return func(o *options) { o.baseURL = u }
}

// WithAPIKey sets the demo API key header.
func WithAPIKey(key string) Option {
	return func(o *options) { o.apiKey = key }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithRate paces requests to ratePerMinute with the given burst.
func WithRate(ratePerMinute, burst float64) Option {
	return func(o *options) {
		o.ratePerMinute = ratePerMinute
		o.burst = burst
	}
}

// WithLimiter shares a limiter between clients.
func WithLimiter(l *ratelimit.Limiter) Option {
	return func(o *options) { o.limiter = l }
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithHTTPOptions passes options through to the underlying http client.
func WithHTTPOptions(opts ...http.ClientOption) Option {
	return func(o *options) { o.httpOpts = append(o.httpOpts, opts...) }
}

// New creates a CoinGecko client.
func New(opts ...Option) *Client {
	o := &options{
		baseURL:       DefaultBaseURL,
		timeout:       30 * time.Second,
		ratePerMinute: 25,
		burst:         5,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.limiter == nil {
		o.limiter = ratelimit.New()
	}
	if o.log == nil {
		o.log = logger.Nop()
	}

	httpOpts := []http.ClientOption{http.WithTimeout(o.timeout)}
	if o.apiKey != "" {
		httpOpts = append(httpOpts, http.WithHeader(demoKeyHeader, o.apiKey))
	}
	httpOpts = append(httpOpts, o.httpOpts...)

	return &Client{
		baseURL: strings.TrimRight(o.baseURL, "/"),
		http:    http.NewClient(httpOpts...),
		limiter: o.limiter,
		burst:   o.burst,
		perSec:  o.ratePerMinute / 60,
		log:     o.log,
	}
}

// marketChart is the subset of the market_chart payload we read.
type marketChart struct {
	Prices [][]json.Number `json:"prices"`
}

// Fetch returns the daily series for assetID over the last windowDays days.
func (c *Client) Fetch(ctx context.Context, assetID, currency string, windowDays int) (models.Series, error) {
	if windowDays < 1 {
		return nil, fmt.Errorf("coingecko %s: %w: window_days must be >= 1, got %d", assetID, models.ErrConfiguration, windowDays)
	}
	if err := c.limiter.Wait(ctx, limiterKey, c.burst, c.perSec); err != nil {
		return nil, fmt.Errorf("coingecko %s: %w", assetID, err)
	}

	req := &http.RequestOptions{
		Method: http.MethodGet,
		URL:    fmt.Sprintf("%s/coins/%s/market_chart", c.baseURL, assetID),
		QueryParams: map[string][]string{
			"vs_currency": {strings.ToLower(currency)},
			"days":        {strconv.Itoa(windowDays)},
			"interval":    {"daily"},
		},
	}

	var payload marketChart
	if err := c.http.SendAndParse(ctx, req, &payload); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("coingecko %s: %w", assetID, err)
		}
		return nil, fmt.Errorf("coingecko %s: %w: %v", assetID, models.ErrDataUnavailable, err)
	}

	samples, err := parsePrices(payload.Prices)
	if err != nil {
		return nil, fmt.Errorf("coingecko %s: %w: %v", assetID, models.ErrDataUnavailable, err)
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("coingecko %s: %w: no price points", assetID, models.ErrDataUnavailable)
	}

	series := models.NewDailySeries(samples)
	c.log.Debug("coingecko history fetched",
		logger.String("asset_id", assetID),
		logger.Int("samples", len(samples)),
		logger.Int("days", len(series)),
	)
	return series, nil
}

func parsePrices(raw [][]json.Number) ([]models.PricePoint, error) {
	out := make([]models.PricePoint, 0, len(raw))
	for i, pair := range raw {
		if len(pair) < 2 {
			return nil, fmt.Errorf("point %d: expected [timestamp, price]", i)
		}
		ms, err := pair[0].Float64()
		if err != nil {
			return nil, fmt.Errorf("point %d: timestamp: %w", i, err)
		}
		price, err := pair[1].Float64()
		if err != nil {
			return nil, fmt.Errorf("point %d: price: %w", i, err)
		}
		if math.IsNaN(price) || price <= 0 {
			return nil, fmt.Errorf("point %d: non-positive price %v", i, price)
		}
		out = append(out, models.PricePoint{Date: util.UnixMilli(int64(ms)), Price: price})
	}
	return out, nil
}
