package rakuten

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
	searchPath  = "/services/api/IchibaItem/Search/20220601"
	resultCount = 30
)

// Client handles communication with the Rakuten Ichiba item search API
type Client struct {
	httpClient    *http.Client
	applicationID string
	baseURL       string
	rateLimiter   *rate.Limiter
	debug         bool
}

// NewClient creates a new Rakuten Ichiba search client.
// requestsPerSecond throttles outbound calls to stay inside the API quota.
func NewClient(applicationID, baseURL string, requestsPerSecond float64) *Client {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		applicationID: applicationID,
		baseURL:       baseURL,
		rateLimiter:   rate.NewLimiter(rate.Limit(requestsPerSecond), 5),
	}
}

// SetDebug enables or disables debug logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// Source identifies this client to the aggregator
func (c *Client) Source() domain.Source {
	return domain.SourceRakuten
}

// searchResponse mirrors the Ichiba search API payload
type searchResponse struct {
	Items []struct {
		Item itemPayload `json:"Item"`
	} `json:"Items"`
	Count int `json:"count"`
}

type itemPayload struct {
	ItemCode        string `json:"itemCode"`
	ItemName        string `json:"itemName"`
	ItemPrice       int    `json:"itemPrice"`
	ItemURL         string `json:"itemUrl"`
	ShopName        string `json:"shopName"`
	MediumImageURLs []struct {
		ImageURL string `json:"imageUrl"`
	} `json:"mediumImageUrls"`
}

// Search runs an Ichiba keyword search and returns the raw listings in the
// order the marketplace returned them
func (c *Client) Search(ctx context.Context, query string) ([]domain.Listing, error) {
	if c.debug {
		log.Printf("[RAKUTEN] Search called with query: %q", query)
	}

	// Wait for rate limiter
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	// Build request URL
	params := url.Values{}
	params.Add("applicationId", c.applicationID)
	params.Add("keyword", query)
	params.Add("format", "json")
	params.Add("hits", fmt.Sprintf("%d", resultCount))

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
			log.Printf("[RAKUTEN] API error - Status: %d, Body: %s", resp.StatusCode, string(body))
		}
		return nil, fmt.Errorf("%w: status %d", domain.ErrMarketplaceFailure, resp.StatusCode)
	}

	var searchResp searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", domain.ErrMarketplaceFailure, err)
	}

	listings := make([]domain.Listing, 0, len(searchResp.Items))
	for _, wrapped := range searchResp.Items {
		listings = append(listings, toListing(wrapped.Item))
	}

	if c.debug {
		log.Printf("[RAKUTEN] Found %d listings for query: %q", len(listings), query)
	}

	return listings, nil
}

// toListing converts an Ichiba item payload to the domain listing
func toListing(item itemPayload) domain.Listing {
	listing := domain.Listing{
		Source:     domain.SourceRakuten,
		ExternalID: item.ItemCode,
		Title:      item.ItemName,
		URL:        item.ItemURL,
		SellerName: item.ShopName,
	}

	// The API reports 0 when the shop hides the price; treat it as unknown
	if item.ItemPrice > 0 {
		price := item.ItemPrice
		listing.Price = &price
	}

	if len(item.MediumImageURLs) > 0 {
		listing.Image = item.MediumImageURLs[0].ImageURL
	}

	return listing
}
