package screenshotone

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"
)

// Usage is the account quota reported by the service
type Usage struct {
	Total       int `json:"total"`
	Available   int `json:"available"`
	Used        int `json:"used"`
	Concurrency struct {
		Limit     int   `json:"limit"`
		Remaining int   `json:"remaining"`
		Reset     int64 `json:"reset"`
	} `json:"concurrency"`
}

// ResetAt returns when the concurrency window resets. The service reports
// the reset time in nanoseconds since the epoch.
func (u *Usage) ResetAt() time.Time {
	if u.Concurrency.Reset <= 0 {
		return time.Time{}
	}
	return time.Unix(0, u.Concurrency.Reset)
}

// Usage fetches the current account quota
func (c *Client) Usage(ctx context.Context) (*Usage, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	params := url.Values{}
	params.Set("access_key", c.accessKey)

	body, err := c.get(ctx, "/usage", params)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch usage: %w", err)
	}

	var usage Usage
	if err := json.Unmarshal(body, &usage); err != nil {
		return nil, fmt.Errorf("failed to decode usage: %w", err)
	}
	return &usage, nil
}
