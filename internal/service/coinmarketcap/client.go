package coinmarketcap

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"FinCast/internal/domain/models"
	drepo "FinCast/internal/domain/repository"
	"FinCast/pkg/http"
)

const (
	DefaultBaseURL = "https://pro-api.coinmarketcap.com"
	apiKeyHeader   = "X-CMC_PRO_API_KEY"
)

// Client reads latest quotes from CoinMarketCap.
type Client struct {
	baseURL string
	ids     map[string]int
	http    *http.Client
}

var _ drepo.QuoteProvider = (*Client)(nil)

// New creates a client. A missing API key is a configuration error.
func New(baseURL, apiKey string, ids map[string]int, timeout time.Duration, opts ...http.ClientOption) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("%w: coinmarketcap api key is not set (CMC_API_KEY)", models.ErrConfiguration)
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	upper := make(map[string]int, len(ids))
	for sym, id := range ids {
		upper[strings.ToUpper(sym)] = id
	}
	httpOpts := append([]http.ClientOption{
		http.WithTimeout(timeout),
		http.WithHeader(apiKeyHeader, apiKey),
	}, opts...)

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		ids:     upper,
		http:    http.NewClient(httpOpts...),
	}, nil
}

type quote struct {
	Price            *float64 `json:"price"`
	PercentChange24h float64  `json:"percent_change_24h"`
}

type quotesResponse struct {
	Status struct {
		ErrorCode    int    `json:"error_code"`
		ErrorMessage string `json:"error_message"`
	} `json:"status"`
	Data map[string]struct {
		Symbol string           `json:"symbol"`
		Quote  map[string]quote `json:"quote"`
	} `json:"data"`
}

// Quotes returns the latest quote per symbol in currency.
func (c *Client) Quotes(ctx context.Context, symbols []string, currency string) (map[string]models.Quote, error) {
	ids := make([]string, 0, len(symbols))
	for _, sym := range symbols {
		id, ok := c.ids[strings.ToUpper(sym)]
		if !ok {
			return nil, fmt.Errorf("coinmarketcap: %w: %s has no id", models.ErrUnknownSymbol, sym)
		}
		ids = append(ids, strconv.Itoa(id))
	}
	sort.Strings(ids)
	conv := strings.ToUpper(currency)

	var resp quotesResponse
	err := c.http.SendAndParse(ctx, &http.RequestOptions{
		Method: http.MethodGet,
		URL:    c.baseURL + "/v1/cryptocurrency/quotes/latest",
		QueryParams: map[string][]string{
			"id":      {strings.Join(ids, ",")},
			"convert": {conv},
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("coinmarketcap: %w: %v", models.ErrDataUnavailable, err)
	}
	if resp.Status.ErrorCode != 0 {
		return nil, fmt.Errorf("coinmarketcap: %w: %s", models.ErrDataUnavailable, resp.Status.ErrorMessage)
	}

	out := make(map[string]models.Quote, len(symbols))
	for _, sym := range symbols {
		s := strings.ToUpper(sym)
		entry, ok := resp.Data[strconv.Itoa(c.ids[s])]
		if !ok {
			return nil, fmt.Errorf("coinmarketcap: %w: no quote for %s", models.ErrDataUnavailable, s)
		}
		q, ok := entry.Quote[conv]
		if !ok || q.Price == nil {
			return nil, fmt.Errorf("coinmarketcap: %w: no %s price for %s", models.ErrDataUnavailable, conv, s)
		}
		out[s] = models.Quote{Symbol: s, Price: *q.Price, PercentChange24h: q.PercentChange24h}
	}
	return out, nil
}
