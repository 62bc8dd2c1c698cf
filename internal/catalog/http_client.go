package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// HTTPClient consumes a catalog service over its JSON API. Every call
// carries a bounded timeout.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) ProductInfo(ctx context.Context, productID int64) (*Product, error) {
	url := fmt.Sprintf("%s/products/%d", c.baseURL, productID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build product request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, ErrProductNotFound
	default:
		return nil, fmt.Errorf("catalog returned status %d", resp.StatusCode)
	}

	var product Product
	if err := json.NewDecoder(resp.Body).Decode(&product); err != nil {
		return nil, fmt.Errorf("decode product response: %w", err)
	}

	return &product, nil
}

func (c *HTTPClient) DecrementStock(ctx context.Context, productID int64, quantity int) error {
	return c.postStock(ctx, productID, "decrement", quantity)
}

func (c *HTTPClient) Restock(ctx context.Context, productID int64, quantity int) error {
	return c.postStock(ctx, productID, "restock", quantity)
}

func (c *HTTPClient) postStock(ctx context.Context, productID int64, action string, quantity int) error {
	body, err := json.Marshal(map[string]int{"quantity": quantity})
	if err != nil {
		return fmt.Errorf("marshal stock request: %w", err)
	}

	url := fmt.Sprintf("%s/products/%d/stock/%s", c.baseURL, productID, action)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build stock request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("catalog request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		return ErrProductNotFound
	case http.StatusConflict:
		return ErrInsufficientStock
	default:
		return fmt.Errorf("catalog returned status %d", resp.StatusCode)
	}
}
