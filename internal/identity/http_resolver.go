package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// HTTPResolver consumes the identity service's verification endpoint.
type HTTPResolver struct {
	baseURL string
	client  *http.Client
}

func NewHTTPResolver(baseURL string, timeout time.Duration) *HTTPResolver {
	return &HTTPResolver{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (r *HTTPResolver) ResolveEmail(ctx context.Context, credential string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/principal", nil)
	if err != nil {
		return "", fmt.Errorf("build principal request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+credential)

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("identity request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return "", ErrUnauthorized
	default:
		return "", fmt.Errorf("identity returned status %d", resp.StatusCode)
	}

	var payload struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode principal response: %w", err)
	}
	if payload.Email == "" {
		return "", ErrUnauthorized
	}

	return payload.Email, nil
}

func (r *HTTPResolver) Exists(ctx context.Context, email string) (bool, error) {
	endpoint := fmt.Sprintf("%s/users/%s", r.baseURL, url.PathEscape(email))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("build user request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("identity request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("identity returned status %d", resp.StatusCode)
	}
}
