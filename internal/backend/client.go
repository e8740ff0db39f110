// Package backend is the HTTP client for the authoritative order service.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/smartmenu-nz/pos-terminal/internal/pos"
)

// HTTPClient implements pos.Backend over the order service REST API.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	if baseURL == "" {
		baseURL = "http://localhost:8084"
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request failed: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("order service request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return pos.ErrNotFound
	case resp.StatusCode == http.StatusConflict:
		// the store re-checked the expected status and a sibling
		// terminal got there first
		return pos.ErrPrecondition
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("order service returned status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *HTTPClient) ListOrders(ctx context.Context, restaurantID string, statuses []string) ([]pos.Order, error) {
	q := url.Values{}
	q.Set("restaurant_id", restaurantID)
	if len(statuses) > 0 {
		q.Set("status", strings.Join(statuses, ","))
	}

	var out struct {
		Orders []pos.Order `json:"orders"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/orders?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return out.Orders, nil
}

func (c *HTTPClient) UpdateStatus(ctx context.Context, id uuid.UUID, newStatus, expectedStatus, reason string) (*pos.Order, error) {
	body := map[string]string{
		"status":          newStatus,
		"expected_status": expectedStatus,
	}
	if reason != "" {
		body["reason"] = reason
	}

	var out pos.Order
	if err := c.do(ctx, http.MethodPut, "/api/orders/"+id.String()+"/status", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Void(ctx context.Context, id uuid.UUID, reason, voidedBy string) error {
	body := map[string]string{
		"reason":    reason,
		"voided_by": voidedBy,
	}
	return c.do(ctx, http.MethodPost, "/api/orders/"+id.String()+"/void", body, nil)
}

func (c *HTTPClient) SetEstimatedTime(ctx context.Context, id uuid.UUID, minutes int) error {
	body := map[string]int{"estimated_minutes": minutes}
	return c.do(ctx, http.MethodPut, "/api/orders/"+id.String()+"/estimated-time", body, nil)
}

func (c *HTTPClient) PaymentStatus(ctx context.Context, intentRef string) (string, error) {
	var out struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/payments/status/"+url.PathEscape(intentRef), nil, &out); err != nil {
		return "", err
	}
	return out.Status, nil
}

func (c *HTTPClient) ListServiceRequests(ctx context.Context, restaurantID string, statuses []string) ([]pos.ServiceRequest, error) {
	q := url.Values{}
	q.Set("restaurant_id", restaurantID)
	if len(statuses) > 0 {
		q.Set("status", strings.Join(statuses, ","))
	}

	var out struct {
		Requests []pos.ServiceRequest `json:"requests"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/service-requests?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return out.Requests, nil
}

func (c *HTTPClient) UpdateServiceRequest(ctx context.Context, id uuid.UUID, status, staffID string) (*pos.ServiceRequest, error) {
	body := map[string]string{
		"status":   status,
		"staff_id": staffID,
	}

	var out pos.ServiceRequest
	if err := c.do(ctx, http.MethodPatch, "/api/service-requests/"+id.String(), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Profile(ctx context.Context, restaurantID string) (*pos.RestaurantProfile, error) {
	var out pos.RestaurantProfile
	if err := c.do(ctx, http.MethodGet, "/api/restaurants/"+url.PathEscape(restaurantID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
