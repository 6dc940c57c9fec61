// Package pricing provides trading-post item prices with a TTL cache.
//
// Prices come from the GW2 commerce API and are expressed in gold (the API
// reports copper; 10000 copper = 1 gold).
package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultBaseURL is the GW2 commerce prices endpoint.
const DefaultBaseURL = "https://api.guildwars2.com/v2/commerce/prices"

// copperPerGold converts API copper values to gold.
const copperPerGold = 10000

// Source supplies the current market price of an item, in gold.
type Source interface {
	Fetch(ctx context.Context, item Item) (float64, error)
}

// Client fetches item prices from the GW2 commerce API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a GW2 commerce API client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: log.Logger,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithBaseURL overrides the API endpoint. Used in tests.
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// priceResponse mirrors the commerce prices payload. Only the lowest sell
// offer is of interest.
type priceResponse struct {
	Sells struct {
		UnitPrice *int64 `json:"unit_price"`
	} `json:"sells"`
}

// Fetch returns the item's minimum sell price on the trading post, in gold.
// Any transport error, non-2xx status, unparsable body, or missing price
// field results in an error wrapping ErrPriceUnavailable.
func (c *Client) Fetch(ctx context.Context, item Item) (float64, error) {
	if !item.Known() {
		return 0, fmt.Errorf("%w: %d", ErrUnknownItem, int(item))
	}

	url := fmt.Sprintf("%s/%d", c.baseURL, int(item))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: building request: %v", ErrPriceUnavailable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPriceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn().
			Int("status", resp.StatusCode).
			Stringer("item", item).
			Msg("Commerce API returned non-success status")
		return 0, fmt.Errorf("%w: unexpected status %d", ErrPriceUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("%w: reading body: %v", ErrPriceUnavailable, err)
	}

	var payload priceResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return 0, fmt.Errorf("%w: decoding body: %v", ErrPriceUnavailable, err)
	}
	if payload.Sells.UnitPrice == nil {
		return 0, fmt.Errorf("%w: response missing sells.unit_price", ErrPriceUnavailable)
	}

	price := float64(*payload.Sells.UnitPrice) / copperPerGold

	c.logger.Debug().
		Stringer("item", item).
		Float64("price_gold", price).
		Msg("Fetched item price")

	return price, nil
}
