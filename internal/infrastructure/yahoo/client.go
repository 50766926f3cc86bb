package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/dramscan/backend/internal/domain"
	"golang.org/x/time/rate"
)

const (
	searchPath  = "/ShoppingWebService/V3/itemSearch"
	resultCount = 30
)

// Client handles communication with the Yahoo! Shopping item search API (v3)
type Client struct {
	httpClient  *http.Client
	appID       string
	baseURL     string
	rateLimiter *rate.Limiter
	debug       bool
}

// NewClient creates a new Yahoo! Shopping search client.
// requestsPerSecond throttles outbound calls to stay inside the API quota.
func NewClient(appID, baseURL string, requestsPerSecond float64) *Client {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		appID:       appID,
		baseURL:     baseURL,
		rateLimiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 5),
	}
}

// SetDebug enables or disables debug logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// Source identifies this client to the aggregator
func (c *Client) Source() domain.Source {
	return domain.SourceYahoo
}

// searchResponse mirrors the itemSearch v3 payload
type searchResponse struct {
	TotalResultsAvailable int          `json:"totalResultsAvailable"`
	Hits                  []hitPayload `json:"hits"`
}

type hitPayload struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	Price int    `json:"price"`
	URL   string `json:"url"`
	Image struct {
		Medium string `json:"medium"`
	} `json:"image"`
	Seller struct {
		Name string `json:"name"`
	} `json:"seller"`
}

// Search runs an item search and returns the raw listings in the order the
// marketplace returned them
func (c *Client) Search(ctx context.Context, query string) ([]domain.Listing, error) {
	if c.debug {
		log.Printf("[YAHOO] Search called with query: %q", query)
	}

	// Wait for rate limiter
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	// Build request URL
	params := url.Values{}
	params.Add("appid", c.appID)
	params.Add("query", query)
	params.Add("results", fmt.Sprintf("%d", resultCount))

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, searchPath, params.Encode())

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "DramScan/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMarketplaceFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		if c.debug {
			log.Printf("[YAHOO] API error - Status: %d, Body: %s", resp.StatusCode, string(body))
		}
		return nil, fmt.Errorf("%w: status %d", domain.ErrMarketplaceFailure, resp.StatusCode)
	}

	var searchResp searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", domain.ErrMarketplaceFailure, err)
	}

	listings := make([]domain.Listing, 0, len(searchResp.Hits))
	for _, hit := range searchResp.Hits {
		listings = append(listings, toListing(hit))
	}

	if c.debug {
		log.Printf("[YAHOO] Found %d listings for query: %q", len(listings), query)
	}

	return listings, nil
}

// toListing converts an itemSearch hit to the domain listing
func toListing(hit hitPayload) domain.Listing {
	listing := domain.Listing{
		Source:     domain.SourceYahoo,
		ExternalID: hit.Code,
		Title:      hit.Name,
		URL:        hit.URL,
		Image:      hit.Image.Medium,
		SellerName: hit.Seller.Name,
	}

	// A zero price means the store did not publish one; treat it as unknown
	if hit.Price > 0 {
		price := hit.Price
		listing.Price = &price
	}

	return listing
}
