// Package scanner talks to the external similarity-scan service. The scan
// itself is opaque to us: on success the external process appends Match
// rows referencing images by their stored filename.
package scanner

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 5 * time.Minute},
	}
}

type Result struct {
	Message string `json:"message"`
}

// Trigger kicks off a scan run and waits for the external service to
// acknowledge it.
func (c *Client) Trigger(ctx context.Context) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/images/scan", nil)
	if err != nil {
		return nil, fmt.Errorf("build scan request: %w", err)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scan service unreachable: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scan service returned %s", res.Status)
	}

	var result Result
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode scan response: %w", err)
	}
	return &result, nil
}
